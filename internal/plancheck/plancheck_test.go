package plancheck

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minjae/safety-inspector/internal/types"
)

func strPtr(s string) *string { return &s }

func TestValidate_NilPlanProducesNothing(t *testing.T) {
	doc := &types.Document{DocType: types.DocTypeDailyChecklist}
	assert.Nil(t, NewValidator().Validate(doc, nil))
}

func TestValidate_UncoveredRisk(t *testing.T) {
	plan := &types.MasterSafetyPlan{
		ProjectName: "교량 보수",
		Risks: []types.PlanItem{
			{Name: "크레인 전도", Keywords: []string{"크레인", "양중"}},
		},
	}
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Fields:  types.DocumentFields{WorkDescription: strPtr("비계 해체 작업")},
	}

	issues := NewValidator().Validate(doc, plan)
	require.Len(t, issues, 1)
	assert.Equal(t, "structured_uncovered_risk", issues[0].RuleID)
	assert.Equal(t, types.SeverityWarn, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "크레인 전도")
	require.NotNil(t, issues[0].Confidence)
	assert.InDelta(t, 0.8, *issues[0].Confidence, 1e-9)
}

func TestValidate_CoverageByChecklistID(t *testing.T) {
	plan := &types.MasterSafetyPlan{
		Risks: []types.PlanItem{
			{Name: "추락", ChecklistIDs: []string{"fall_01"}},
		},
	}
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Checklist: []types.ChecklistItem{
			{ID: "fall_01", Value: types.CheckNotApplicable},
		},
	}

	// NotApplicable is still an answer: the item was considered.
	assert.Empty(t, NewValidator().Validate(doc, plan))
}

func TestValidate_UnsetChecklistIDIsNotCoverage(t *testing.T) {
	plan := &types.MasterSafetyPlan{
		Risks: []types.PlanItem{
			{Name: "밀폐공간", ChecklistIDs: []string{"confined_01"}},
		},
	}
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Checklist: []types.ChecklistItem{
			{ID: "confined_01", Value: types.CheckUnset},
		},
	}

	issues := NewValidator().Validate(doc, plan)
	require.Len(t, issues, 1)
	assert.Equal(t, "structured_uncovered_risk", issues[0].RuleID)
}

func TestValidate_CoverageByKeyword(t *testing.T) {
	plan := &types.MasterSafetyPlan{
		RequiredPPE: []types.PlanItem{
			{Name: "안전대", Keywords: []string{"안전대", "harness"}},
		},
	}
	doc := &types.Document{
		DocType: types.DocTypeDailyChecklist,
		Checklist: []types.ChecklistItem{
			{ID: "ppe_03", NameKo: "안전대 착용 여부", Value: types.CheckChecked},
		},
	}

	assert.Empty(t, NewValidator().Validate(doc, plan))
}

func TestValidate_KeywordInWorkDescription(t *testing.T) {
	plan := &types.MasterSafetyPlan{
		CriticalProcedures: []types.PlanItem{
			{Name: "정전 작업 허가", Keywords: []string{"정전"}},
		},
	}
	doc := &types.Document{
		DocType: types.DocTypeWorkPermit,
		Fields:  types.DocumentFields{WorkDescription: strPtr("배전반 정전 후 케이블 교체")},
	}

	assert.Empty(t, NewValidator().Validate(doc, plan))
}

func TestValidate_ProcedureFindingsAreInfo(t *testing.T) {
	plan := &types.MasterSafetyPlan{
		CriticalProcedures: []types.PlanItem{
			{Name: "가스 농도 측정"},
		},
	}
	doc := &types.Document{DocType: types.DocTypeDailyChecklist}

	issues := NewValidator().Validate(doc, plan)
	require.Len(t, issues, 1)
	assert.Equal(t, "structured_missing_procedure", issues[0].RuleID)
	assert.Equal(t, types.SeverityInfo, issues[0].Severity)
}

func TestValidate_AllCategoriesReported(t *testing.T) {
	plan := &types.MasterSafetyPlan{
		Risks:              []types.PlanItem{{Name: "용접 화재"}},
		RequiredPPE:        []types.PlanItem{{Name: "방진 마스크"}},
		CriticalProcedures: []types.PlanItem{{Name: "밀폐공간 출입 절차"}},
	}
	doc := &types.Document{DocType: types.DocTypeDailyChecklist}

	issues := NewValidator().Validate(doc, plan)
	require.Len(t, issues, 3)
	assert.Equal(t, "structured_uncovered_risk", issues[0].RuleID)
	assert.Equal(t, "structured_missing_ppe", issues[1].RuleID)
	assert.Equal(t, "structured_missing_procedure", issues[2].RuleID)
}
