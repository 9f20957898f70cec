package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjae/safety-inspector/internal/sanitize"
	"github.com/minjae/safety-inspector/internal/types"
)

type fakeProjects struct {
	context *ProjectContext
	err     error
	calls   int
}

func (f *fakeProjects) GetProjectContext(_ context.Context, _ uuid.UUID) (*ProjectContext, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.context, nil
}

type fakeHistory struct {
	project   []types.Report
	inspector []types.Report
	err       error
}

func (f *fakeHistory) ListProjectReports(_ context.Context, _ uuid.UUID, _ int) ([]types.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.project, nil
}

func (f *fakeHistory) ListInspectorReports(_ context.Context, _ uuid.UUID, _ string, _ int) ([]types.Report, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.inspector, nil
}

func strPtr(s string) *string { return &s }

func violatingRaw() map[string]any {
	return map[string]any{
		"doc_type":            "daily_checklist",
		"inspector_name":      "이철수",
		"declared_risk_level": "low",
		"fields": map[string]any{
			"site_name":       "테스트 현장",
			"inspection_date": "2025-03-14",
		},
		"checklist": []any{
			map[string]any{"id": "fall_01", "value": "checked"},
			map[string]any{"id": "fall_02", "value": "unchecked"},
			map[string]any{"id": "ppe_03", "value": "unchecked"},
		},
	}
}

func TestValidate_FatalSanitizeErrorsPropagate(t *testing.T) {
	e := New(Options{})

	_, err := e.Validate(context.Background(), nil, uuid.Nil)
	var schemaErr *sanitize.SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	_, err = e.Validate(context.Background(), map[string]any{"doc_type": "recipe"}, uuid.Nil)
	var nonSafety *sanitize.NonSafetyDocumentError
	assert.ErrorAs(t, err, &nonSafety)
}

func TestValidate_WithoutProvidersRunsCoreStages(t *testing.T) {
	e := New(Options{})

	result, err := e.Validate(context.Background(), violatingRaw(), uuid.Nil)
	require.NoError(t, err)
	require.NotNil(t, result.Document)
	require.NotNil(t, result.Risk)

	// Provider-less stages report zero issues but still appear in order.
	require.Len(t, result.Stages, 5)
	assert.Equal(t, StageRules, result.Stages[0].Stage)
	assert.Equal(t, StageStructured, result.Stages[1].Stage)
	assert.Equal(t, StageRisk, result.Stages[2].Stage)
	assert.Equal(t, StagePattern, result.Stages[3].Stage)
	assert.Equal(t, StageCrossDoc, result.Stages[4].Stage)

	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "fall_protection", result.Issues[0].RuleID)
}

func TestValidate_AggregationOrder(t *testing.T) {
	projectID := uuid.New()
	plan := &types.MasterSafetyPlan{
		Risks: []types.PlanItem{{Name: "크레인 전도"}},
	}
	history := &fakeHistory{
		project: []types.Report{{
			InspectionDate: strPtr("2025-03-13"),
			Checklist: []types.ChecklistItem{
				{ID: "fall_02", Value: types.CheckChecked},
			},
		}},
	}

	e := New(Options{
		Projects: &fakeProjects{context: &ProjectContext{MasterPlan: plan}},
		History:  history,
	})

	result, err := e.Validate(context.Background(), violatingRaw(), projectID)
	require.NoError(t, err)

	// rules → structured → risk → pattern → cross_doc, within-stage order
	// preserved.
	var ruleIDs []string
	for _, issue := range result.Issues {
		ruleIDs = append(ruleIDs, issue.RuleID)
	}
	assert.Equal(t, []string{
		"fall_protection",
		"structured_uncovered_risk",
		"risk_matrix_inconsistency",
		"cross_doc_measure_regression",
	}, ruleIDs)
}

func TestValidate_IssueIDsAssignedAfterAggregation(t *testing.T) {
	e := New(Options{})

	result, err := e.Validate(context.Background(), violatingRaw(), uuid.Nil)
	require.NoError(t, err)
	require.NotEmpty(t, result.Issues)

	seen := map[string]bool{}
	for _, issue := range result.Issues {
		_, err := uuid.Parse(issue.ID)
		assert.NoError(t, err, "issue id %q is not a uuid", issue.ID)
		assert.False(t, seen[issue.ID], "duplicate issue id")
		seen[issue.ID] = true
	}
}

func TestValidate_FailingProviderDegradesStage(t *testing.T) {
	projectID := uuid.New()
	e := New(Options{
		Projects: &fakeProjects{err: errors.New("connection refused")},
		History:  &fakeHistory{err: errors.New("connection refused")},
	})

	result, err := e.Validate(context.Background(), violatingRaw(), projectID)
	require.NoError(t, err)

	byStage := map[string]StageDiagnostic{}
	for _, s := range result.Stages {
		byStage[s.Stage] = s
	}
	assert.True(t, byStage[StageStructured].Failed)
	assert.True(t, byStage[StagePattern].Failed)
	assert.True(t, byStage[StageCrossDoc].Failed)
	assert.False(t, byStage[StageRules].Failed)
	assert.False(t, byStage[StageRisk].Failed)

	// The core findings still come through.
	require.NotEmpty(t, result.Issues)
	assert.Equal(t, "fall_protection", result.Issues[0].RuleID)
}

func TestValidate_NilProjectIDSkipsHistoryStages(t *testing.T) {
	projects := &fakeProjects{context: &ProjectContext{}}
	e := New(Options{Projects: projects, History: &fakeHistory{}})

	_, err := e.Validate(context.Background(), violatingRaw(), uuid.Nil)
	require.NoError(t, err)
	assert.Zero(t, projects.calls)
}

func TestValidate_NoInspectorSkipsPatternStage(t *testing.T) {
	raw := violatingRaw()
	delete(raw, "inspector_name")

	history := &fakeHistory{err: errors.New("should not be consulted for pattern")}
	e := New(Options{History: history})

	result, err := e.Validate(context.Background(), raw, uuid.New())
	require.NoError(t, err)

	byStage := map[string]StageDiagnostic{}
	for _, s := range result.Stages {
		byStage[s.Stage] = s
	}
	// Pattern skipped cleanly; cross_doc did consult the provider and degraded.
	assert.False(t, byStage[StagePattern].Failed)
	assert.Zero(t, byStage[StagePattern].IssueCount)
	assert.True(t, byStage[StageCrossDoc].Failed)
}

func TestValidate_DeterministicModuloIDs(t *testing.T) {
	e := New(Options{})

	first, err := e.Validate(context.Background(), violatingRaw(), uuid.Nil)
	require.NoError(t, err)
	second, err := e.Validate(context.Background(), violatingRaw(), uuid.Nil)
	require.NoError(t, err)

	require.Equal(t, len(first.Issues), len(second.Issues))
	for i := range first.Issues {
		a, b := first.Issues[i], second.Issues[i]
		assert.Equal(t, a.RuleID, b.RuleID)
		assert.Equal(t, a.Severity, b.Severity)
		assert.Equal(t, a.Message, b.Message)
	}
	assert.Equal(t, first.Risk.RiskScore, second.Risk.RiskScore)
}

func TestRunStage_ContainsPanic(t *testing.T) {
	result := runStage("pattern", func() ([]types.ValidationIssue, error) {
		panic("index out of range")
	})

	require.Error(t, result.err)
	var stageErr *StageError
	require.ErrorAs(t, result.err, &stageErr)
	assert.Equal(t, "pattern", stageErr.Stage)
	assert.Empty(t, result.issues)
}

func TestStageError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := &StageError{Stage: "cross_doc", Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "cross_doc")
}
