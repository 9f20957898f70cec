package crossdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjae/safety-inspector/internal/types"
)

func item(id string, v types.CheckValue) types.ChecklistItem {
	return types.ChecklistItem{ID: id, Value: v}
}

func levelPtr(l types.RiskLevel) *types.RiskLevel { return &l }

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func TestAnalyze_EmptyHistory(t *testing.T) {
	doc := &types.Document{
		DocType:   types.DocTypeDailyChecklist,
		Checklist: []types.ChecklistItem{item("fall_01", types.CheckUnchecked)},
	}
	assert.Nil(t, NewAnalyzer(nil).Analyze(doc, nil))
}

func TestAnalyze_MeasureRegression(t *testing.T) {
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Checklist: []types.ChecklistItem{
			item("fall_02", types.CheckUnchecked),
			item("fire_02", types.CheckUnchecked),
			item("elec_02", types.CheckChecked),
		},
	}
	history := []types.Report{{
		InspectionDate: strPtr("2025-03-13"),
		Checklist: []types.ChecklistItem{
			item("fall_02", types.CheckChecked),
			item("fire_02", types.CheckChecked),
			item("elec_02", types.CheckChecked),
		},
	}}

	issues := NewAnalyzer(nil).Analyze(doc, history)
	require.Len(t, issues, 1)
	assert.Equal(t, "cross_doc_measure_regression", issues[0].RuleID)
	assert.Equal(t, types.SeverityWarn, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "2025-03-13")
	assert.Contains(t, issues[0].Message, "fall_02")
	assert.Contains(t, issues[0].Message, "fire_02")
	assert.NotContains(t, issues[0].Message, "elec_02")
}

func TestAnalyze_RegressionOnlyAgainstMostRecent(t *testing.T) {
	doc := &types.Document{
		DocType:   types.DocTypeDailyChecklist,
		Checklist: []types.ChecklistItem{item("fall_02", types.CheckUnchecked)},
	}
	// Most recent report also unchecked; the older checked report does not
	// count as a regression source.
	history := []types.Report{
		{Checklist: []types.ChecklistItem{item("fall_02", types.CheckUnchecked)}},
		{Checklist: []types.ChecklistItem{item("fall_02", types.CheckChecked)}},
	}

	assert.Empty(t, NewAnalyzer(nil).Analyze(doc, history))
}

func TestAnalyze_RiskOscillation(t *testing.T) {
	doc := &types.Document{
		DocType:           types.DocTypeDailyChecklist,
		DeclaredRiskLevel: levelPtr(types.RiskHigh),
		Checklist:         []types.ChecklistItem{item("fall_01", types.CheckChecked)},
	}
	// Sequence newest→oldest: high, low, high, low → direction flips twice.
	history := []types.Report{
		{DeclaredRiskLevel: levelPtr(types.RiskLow)},
		{DeclaredRiskLevel: levelPtr(types.RiskHigh)},
		{DeclaredRiskLevel: levelPtr(types.RiskLow)},
	}

	issues := NewAnalyzer(nil).Analyze(doc, history)
	require.Len(t, issues, 1)
	assert.Equal(t, "cross_doc_risk_oscillation", issues[0].RuleID)
	assert.Equal(t, types.SeverityInfo, issues[0].Severity)
}

func TestAnalyze_SteadyRiskIsQuiet(t *testing.T) {
	doc := &types.Document{
		DocType:           types.DocTypeDailyChecklist,
		DeclaredRiskLevel: levelPtr(types.RiskMedium),
		Checklist:         []types.ChecklistItem{item("fall_01", types.CheckChecked)},
	}
	history := []types.Report{
		{DeclaredRiskLevel: levelPtr(types.RiskMedium)},
		{DeclaredRiskLevel: levelPtr(types.RiskLow)},
		{DeclaredRiskLevel: levelPtr(types.RiskLow)},
	}

	// One direction change only: below the flip threshold.
	assert.Empty(t, NewAnalyzer(nil).Analyze(doc, history))
}

func TestAnalyze_WorkerCountJump(t *testing.T) {
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Fields:  types.DocumentFields{WorkerCount: intPtr(40)},
	}
	history := []types.Report{
		{WorkerCount: intPtr(10)},
		{WorkerCount: intPtr(12)},
		{WorkerCount: intPtr(11)},
	}

	issues := NewAnalyzer(nil).Analyze(doc, history)
	require.Len(t, issues, 1)
	assert.Equal(t, "cross_doc_worker_count_shift", issues[0].RuleID)
	assert.Contains(t, issues[0].Message, "40")
	assert.Contains(t, issues[0].Message, "11")
}

func TestAnalyze_WorkerCountDrop(t *testing.T) {
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Fields:  types.DocumentFields{WorkerCount: intPtr(3)},
	}
	history := []types.Report{
		{WorkerCount: intPtr(10)},
		{WorkerCount: intPtr(12)},
	}

	issues := NewAnalyzer(nil).Analyze(doc, history)
	require.Len(t, issues, 1)
	assert.Equal(t, "cross_doc_worker_count_shift", issues[0].RuleID)
}

func TestAnalyze_WorkerCountWithinRange(t *testing.T) {
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Fields:  types.DocumentFields{WorkerCount: intPtr(20)},
	}
	history := []types.Report{
		{WorkerCount: intPtr(10)},
		{WorkerCount: intPtr(12)},
	}

	assert.Empty(t, NewAnalyzer(nil).Analyze(doc, history))
}

func TestAnalyze_WorkerCountNeedsTwoSamples(t *testing.T) {
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Fields:  types.DocumentFields{WorkerCount: intPtr(50)},
	}
	history := []types.Report{{WorkerCount: intPtr(5)}}

	assert.Empty(t, NewAnalyzer(nil).Analyze(doc, history))
}

func TestAnalyze_WindowCapsHistory(t *testing.T) {
	cfg := &Config{WindowSize: 2, OscillationFlips: 2, WorkerCountJumpFactor: 3.0}
	doc := &types.Document{
		DocType:           types.DocTypeDailyChecklist,
		DeclaredRiskLevel: levelPtr(types.RiskHigh),
		Checklist:         []types.ChecklistItem{item("fall_01", types.CheckChecked)},
	}
	// Flips exist only beyond the window; trimmed history sees too few levels.
	history := []types.Report{
		{DeclaredRiskLevel: levelPtr(types.RiskLow)},
		{DeclaredRiskLevel: levelPtr(types.RiskHigh)},
		{DeclaredRiskLevel: levelPtr(types.RiskLow)},
		{DeclaredRiskLevel: levelPtr(types.RiskHigh)},
	}

	issues := NewAnalyzer(cfg).Analyze(doc, history)
	// Window of 2 keeps high, low, high: one flip, below threshold.
	assert.Empty(t, issues)
}

func TestMedianOf(t *testing.T) {
	assert.Equal(t, 11, medianOf([]int{12, 10, 11}))
	assert.Equal(t, 12, medianOf([]int{10, 12}))
	assert.Equal(t, 7, medianOf([]int{7}))
}
