package pattern

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjae/safety-inspector/internal/types"
)

func strPtr(s string) *string { return &s }

func checklist(v types.CheckValue) []types.ChecklistItem {
	return []types.ChecklistItem{
		{ID: "fall_01", Value: v},
		{ID: "fall_02", Value: v},
		{ID: "fire_01", Value: v},
		{ID: "fire_02", Value: v},
	}
}

func allCheckedDoc(date string) *types.Document {
	return &types.Document{
		DocType:       types.DocTypeDailyChecklist,
		Fields:        types.DocumentFields{InspectionDate: strPtr(date)},
		InspectorName: strPtr("박영수"),
		Checklist:     checklist(types.CheckChecked),
	}
}

func allCheckedHistory(n int) []types.Report {
	reports := make([]types.Report, n)
	for i := range reports {
		reports[i] = types.Report{
			InspectorName:  strPtr("박영수"),
			InspectionDate: strPtr(fmt.Sprintf("2025-02-%02d", n-i)),
			Checklist:      checklist(types.CheckChecked),
		}
	}
	return reports
}

func TestAnalyze_AlwaysApprove(t *testing.T) {
	doc := allCheckedDoc("2025-03-01")
	issues := NewAnalyzer(nil).Analyze(doc, allCheckedHistory(9))

	var ruleIDs []string
	for _, issue := range issues {
		ruleIDs = append(ruleIDs, issue.RuleID)
	}
	assert.Contains(t, ruleIDs, "pattern_always_approve")
}

func TestAnalyze_AlwaysApproveNeedsFullStreak(t *testing.T) {
	doc := allCheckedDoc("2025-03-01")

	// One break inside the streak resets it.
	history := allCheckedHistory(9)
	history[4].Checklist = checklist(types.CheckUnchecked)

	for _, issue := range NewAnalyzer(nil).Analyze(doc, history) {
		assert.NotEqual(t, "pattern_always_approve", issue.RuleID)
	}
}

func TestAnalyze_AlwaysApproveNeedsEnoughHistory(t *testing.T) {
	doc := allCheckedDoc("2025-03-01")
	issues := NewAnalyzer(nil).Analyze(doc, allCheckedHistory(5))
	for _, issue := range issues {
		assert.NotEqual(t, "pattern_always_approve", issue.RuleID)
	}
}

func TestAnalyze_AlwaysApproveRequiresCurrentAllChecked(t *testing.T) {
	doc := allCheckedDoc("2025-03-01")
	doc.Checklist[2].Value = types.CheckNotApplicable

	for _, issue := range NewAnalyzer(nil).Analyze(doc, allCheckedHistory(12)) {
		assert.NotEqual(t, "pattern_always_approve", issue.RuleID)
	}
}

func TestAnalyze_IsolatedDocumentIsQuiet(t *testing.T) {
	doc := allCheckedDoc("2025-03-01")
	assert.Empty(t, NewAnalyzer(nil).Analyze(doc, nil))
}

func TestAnalyze_CopyPaste(t *testing.T) {
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Fields: types.DocumentFields{
			InspectionDate:  strPtr("2025-03-03"),
			WorkDescription: strPtr("철골 볼트 체결 작업"),
		},
		Checklist: []types.ChecklistItem{
			{ID: "fall_01", Value: types.CheckChecked},
			{ID: "fall_02", Value: types.CheckChecked},
			{ID: "fire_01", Value: types.CheckNotApplicable},
		},
	}
	history := []types.Report{
		{
			InspectionDate:  strPtr("2025-03-02"),
			WorkDescription: strPtr("철골  볼트 체결 작업"), // whitespace noise only
			Checklist:       doc.Checklist,
		},
		{
			InspectionDate:  strPtr("2025-03-01"),
			WorkDescription: strPtr("철골 볼트 체결 작업"),
			Checklist:       doc.Checklist,
		},
	}

	issues := NewAnalyzer(nil).Analyze(doc, history)
	require.Len(t, issues, 1)
	assert.Equal(t, "pattern_copy_paste", issues[0].RuleID)
	assert.Equal(t, types.SeverityWarn, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "2 earlier submissions")
}

func TestAnalyze_CopyPasteIgnoresSameDate(t *testing.T) {
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Fields: types.DocumentFields{
			InspectionDate:  strPtr("2025-03-03"),
			WorkDescription: strPtr("배관 용접"),
		},
		Checklist: checklist(types.CheckChecked),
	}
	// Both identical reports carry the document's own date: re-submissions of
	// the same inspection, not a copy pattern.
	history := []types.Report{
		{InspectionDate: strPtr("2025-03-03"), WorkDescription: strPtr("배관 용접"), Checklist: doc.Checklist},
		{InspectionDate: strPtr("2025-03-03"), WorkDescription: strPtr("배관 용접"), Checklist: doc.Checklist},
	}

	for _, issue := range NewAnalyzer(nil).Analyze(doc, history) {
		assert.NotEqual(t, "pattern_copy_paste", issue.RuleID)
	}
}

func TestAnalyze_CopyPasteNeedsMatchingDescription(t *testing.T) {
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Fields: types.DocumentFields{
			InspectionDate:  strPtr("2025-03-03"),
			WorkDescription: strPtr("전기 판넬 점검"),
		},
		Checklist: checklist(types.CheckChecked),
	}
	history := []types.Report{
		{InspectionDate: strPtr("2025-03-02"), WorkDescription: strPtr("조적 작업"), Checklist: doc.Checklist},
		{InspectionDate: strPtr("2025-03-01"), WorkDescription: strPtr("미장 작업"), Checklist: doc.Checklist},
	}

	for _, issue := range NewAnalyzer(nil).Analyze(doc, history) {
		assert.NotEqual(t, "pattern_copy_paste", issue.RuleID)
	}
}

func TestChecklistSimilarity(t *testing.T) {
	a := []types.ChecklistItem{
		{ID: "x1", Value: types.CheckChecked},
		{ID: "x2", Value: types.CheckChecked},
	}
	b := []types.ChecklistItem{
		{ID: "x1", Value: types.CheckChecked},
		{ID: "x2", Value: types.CheckUnchecked},
	}
	assert.InDelta(t, 0.5, checklistSimilarity(a, b), 1e-9)
	assert.InDelta(t, 1.0, checklistSimilarity(a, a), 1e-9)

	c := []types.ChecklistItem{{ID: "x3", Value: types.CheckChecked}}
	assert.InDelta(t, 0.0, checklistSimilarity(a, c), 1e-9)
}

func TestDescriptionsMatch(t *testing.T) {
	assert.True(t, descriptionsMatch(strPtr("철골 조립"), strPtr("  철골   조립 ")))
	assert.True(t, descriptionsMatch(nil, nil))
	assert.False(t, descriptionsMatch(strPtr("철골 조립"), nil))
	assert.False(t, descriptionsMatch(strPtr("철골 조립"), strPtr("배관 용접")))
}
