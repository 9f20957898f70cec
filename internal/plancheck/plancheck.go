// Package plancheck compares a document against a project's machine-readable
// master safety plan and reports plan requirements with no corresponding
// evidence in the document.
package plancheck

import (
	"fmt"
	"strings"

	"github.com/minjae/safety-inspector/internal/types"
)

// Validator checks document coverage of master-plan requirements. It is a
// non-critical stage: the engine converts any failure here into zero issues
// rather than aborting validation.
type Validator struct{}

// NewValidator creates a plan validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate emits one structured_* finding per plan item with no evidence in
// the document. A nil or empty plan produces no findings.
func (v *Validator) Validate(doc *types.Document, plan *types.MasterSafetyPlan) []types.ValidationIssue {
	if plan == nil {
		return nil
	}

	var issues []types.ValidationIssue
	issues = append(issues, v.checkItems(doc, plan.Risks, "structured_uncovered_risk",
		"Plan hazard not addressed",
		"The master safety plan names the hazard %q but the document's checklist and fields do not reference it")...)
	issues = append(issues, v.checkItems(doc, plan.RequiredPPE, "structured_missing_ppe",
		"Required PPE not documented",
		"The master safety plan requires %q but the document does not record it")...)
	issues = append(issues, v.checkItems(doc, plan.CriticalProcedures, "structured_missing_procedure",
		"Critical procedure not documented",
		"The master safety plan lists the critical procedure %q but the document does not reference it")...)
	return issues
}

func (v *Validator) checkItems(doc *types.Document, items []types.PlanItem, ruleID, title, msgFormat string) []types.ValidationIssue {
	var issues []types.ValidationIssue
	for _, item := range items {
		if covered(doc, item) {
			continue
		}
		severity := types.SeverityWarn
		if ruleID == "structured_missing_procedure" {
			severity = types.SeverityInfo
		}
		issues = append(issues, types.ValidationIssue{
			RuleID:     ruleID,
			Severity:   severity,
			Title:      title,
			Message:    fmt.Sprintf(msgFormat, item.Name),
			Confidence: types.Float64Ptr(0.8),
		})
	}
	return issues
}

// covered reports whether the document shows any evidence for a plan item:
// a listed checklist id with an explicit or not-applicable answer, or a
// keyword (or the item name) appearing in the checklist names or free-text
// fields. The match is descriptive, not a compliance verdict.
func covered(doc *types.Document, item types.PlanItem) bool {
	for _, id := range item.ChecklistIDs {
		if v, ok := doc.ChecklistValue(id); ok && v != types.CheckUnset {
			return true
		}
	}

	keywords := append([]string{item.Name}, item.Keywords...)
	var haystack strings.Builder
	if doc.Fields.WorkDescription != nil {
		haystack.WriteString(*doc.Fields.WorkDescription)
		haystack.WriteString(" ")
	}
	if doc.Fields.SiteName != nil {
		haystack.WriteString(*doc.Fields.SiteName)
		haystack.WriteString(" ")
	}
	for _, ci := range doc.Checklist {
		if ci.Value == types.CheckUnset {
			continue
		}
		haystack.WriteString(ci.NameKo)
		haystack.WriteString(" ")
		haystack.WriteString(ci.Category)
		haystack.WriteString(" ")
	}
	text := strings.ToLower(haystack.String())

	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
