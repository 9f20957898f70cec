package types

import (
	"time"

	"github.com/google/uuid"
)

// PlanItem is one named requirement in a master safety plan. Coverage is
// established either by a checklist id appearing in the document or by a
// keyword match against the document's free-text fields.
type PlanItem struct {
	Name         string   `json:"name"`
	Keywords     []string `json:"keywords,omitempty"`
	ChecklistIDs []string `json:"checklist_ids,omitempty"`
}

// MasterSafetyPlan is the project-level structured safety baseline the
// plan validator compares documents against. It is owned by the persistence
// collaborator and read-only inside the engine.
type MasterSafetyPlan struct {
	ProjectName        string     `json:"project_name,omitempty"`
	Risks              []PlanItem `json:"risks,omitempty"`
	RequiredPPE        []PlanItem `json:"required_ppe,omitempty"`
	CriticalProcedures []PlanItem `json:"critical_procedures,omitempty"`
}

// Project is a persisted construction project. The engine only reads it
// for plan and history context and never writes it.
type Project struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	ContextText *string           `json:"context_text,omitempty"`
	MasterPlan  *MasterSafetyPlan `json:"master_plan,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Report is the canonical summary of a previously filed document under a
// project, sufficient to re-derive checklist vectors and declared risk
// levels for cross-document and pattern analysis. Full binary content stays
// with the persistence collaborator.
type Report struct {
	ID                uuid.UUID       `json:"id"`
	ProjectID         uuid.UUID       `json:"project_id"`
	DocType           DocType         `json:"doc_type"`
	InspectorName     *string         `json:"inspector_name,omitempty"`
	InspectionDate    *string         `json:"inspection_date,omitempty"`
	SiteName          *string         `json:"site_name,omitempty"`
	WorkDescription   *string         `json:"work_description,omitempty"`
	WorkerCount       *int            `json:"worker_count,omitempty"`
	DeclaredRiskLevel *RiskLevel      `json:"declared_risk_level,omitempty"`
	Checklist         []ChecklistItem `json:"checklist,omitempty"`
	CreatedAt         time.Time       `json:"created_at"`
}

// ChecklistValue returns the recorded value for a taxonomy id in a prior
// report, mirroring Document.ChecklistValue.
func (r *Report) ChecklistValue(id string) (CheckValue, bool) {
	for _, item := range r.Checklist {
		if item.ID == id {
			return item.Value, true
		}
	}
	return CheckUnset, false
}
