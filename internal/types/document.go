// Package types provides type definitions for structured data used throughout the safety-inspector system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// CheckValue is the answer recorded for a single checklist question.
type CheckValue string

// Checklist answer states.
const (
	CheckChecked       CheckValue = "checked"
	CheckUnchecked     CheckValue = "unchecked"
	CheckNotApplicable CheckValue = "not_applicable"
	CheckUnset         CheckValue = "unset"
)

// IsExplicit reports whether the value carries evidence either way.
// Unset and NotApplicable answers are treated as "no evidence" by the
// rule engine and the risk calculator.
func (v CheckValue) IsExplicit() bool {
	return v == CheckChecked || v == CheckUnchecked
}

// ParseCheckValue normalizes a raw extracted answer into a CheckValue.
// The extractor is probabilistic and emits a variety of spellings,
// including Korean form labels, so unrecognized input maps to Unset
// rather than failing.
func ParseCheckValue(raw string) CheckValue {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "checked", "check", "true", "yes", "y", "o", "v", "done", "pass", "양호", "예", "이행", "완료":
		return CheckChecked
	case "unchecked", "false", "no", "n", "x", "fail", "불량", "아니오", "미이행", "미완료":
		return CheckUnchecked
	case "not_applicable", "na", "n/a", "not applicable", "해당없음", "해당 없음":
		return CheckNotApplicable
	default:
		return CheckUnset
	}
}

// SignatureStatus describes whether a required signature was found on the document.
type SignatureStatus string

// Signature states.
const (
	SignaturePresent SignatureStatus = "present"
	SignatureMissing SignatureStatus = "missing"
	SignatureUnknown SignatureStatus = "unknown"
)

// ParseSignatureStatus normalizes a raw extracted signature indicator.
func ParseSignatureStatus(raw string) SignatureStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "present", "signed", "true", "yes", "o", "서명", "서명함":
		return SignaturePresent
	case "missing", "unsigned", "false", "no", "x", "미서명":
		return SignatureMissing
	default:
		return SignatureUnknown
	}
}

// DocType identifies the kind of safety document that was scanned.
type DocType string

// Recognized document types. Anything else coerces to DocTypeUnknown.
const (
	DocTypeDailyChecklist DocType = "daily_checklist"
	DocTypeRiskAssessment DocType = "risk_assessment"
	DocTypeTBMLog         DocType = "tbm_log"
	DocTypeWorkPermit     DocType = "work_permit"
	DocTypeUnknown        DocType = "unknown"
)

// ParseDocType coerces a raw extracted document type. Unrecognized values
// become DocTypeUnknown so that one bad field never rejects the document.
func ParseDocType(raw string) DocType {
	switch DocType(strings.ToLower(strings.TrimSpace(raw))) {
	case DocTypeDailyChecklist, DocTypeRiskAssessment, DocTypeTBMLog, DocTypeWorkPermit:
		return DocType(strings.ToLower(strings.TrimSpace(raw)))
	default:
		return DocTypeUnknown
	}
}

// ChecklistItem is one yes/no/NA safety-inspection question with a stable
// taxonomy id (e.g. fall_01, ppe_03) grouped by category.
type ChecklistItem struct {
	ID       string     `json:"id"`
	Category string     `json:"category,omitempty"`
	NameKo   string     `json:"name_ko,omitempty"`
	Value    CheckValue `json:"value"`
}

// DocumentFields holds the core extracted fields. Each is nullable because
// the upstream extractor regularly fails to read individual cells.
type DocumentFields struct {
	InspectionDate  *string `json:"inspection_date,omitempty"`
	SiteName        *string `json:"site_name,omitempty"`
	WorkDescription *string `json:"work_description,omitempty"`
	WorkerCount     *int    `json:"worker_count,omitempty"`
}

// Signatures holds the status of the two signatures a safety inspection
// document is required to carry.
type Signatures struct {
	Supervisor  SignatureStatus `json:"supervisor"`
	SiteManager SignatureStatus `json:"site_manager"`
}

// Document is the canonical, sanitized representation of one safety
// inspection document. It is produced once by the sanitizer and consumed
// read-only by every analyzer; re-validation produces a fresh Document.
type Document struct {
	DocType           DocType         `json:"doc_type"`
	Fields            DocumentFields  `json:"fields"`
	Signatures        Signatures      `json:"signatures"`
	InspectorName     *string         `json:"inspector_name,omitempty"`
	DeclaredRiskLevel *RiskLevel      `json:"declared_risk_level,omitempty"`
	Checklist         []ChecklistItem `json:"checklist"`
}

// ChecklistValue returns the recorded value for a taxonomy id. The second
// return is false when the item does not appear in the checklist at all,
// which analyzers must treat as "no evidence" rather than a violation.
func (d *Document) ChecklistValue(id string) (CheckValue, bool) {
	for _, item := range d.Checklist {
		if item.ID == id {
			return item.Value, true
		}
	}
	return CheckUnset, false
}

// ChecklistMap returns the checklist as an id-keyed map for repeated lookups.
func (d *Document) ChecklistMap() map[string]CheckValue {
	m := make(map[string]CheckValue, len(d.Checklist))
	for _, item := range d.Checklist {
		m[item.ID] = item.Value
	}
	return m
}
