package types

// Severity classifies how serious a validation finding is.
type Severity string

// Issue severities.
const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
	SeverityInfo  Severity = "info"
)

// ValidationIssue is a single descriptive finding about a document.
// Findings are non-judgmental: they state that an inconsistency exists,
// never that a regulation was violated.
//
// RuleID is namespaced by origin (pattern_*, risk_matrix_*, structured_*,
// cross_doc_*, unprefixed = base rule engine). Downstream consumers group
// findings by that prefix, so analyzers must preserve it exactly.
type ValidationIssue struct {
	ID         string   `json:"id"`
	RuleID     string   `json:"rule_id"`
	Severity   Severity `json:"severity"`
	Title      string   `json:"title"`
	Message    string   `json:"message"`
	Confidence *float64 `json:"confidence,omitempty"`
}

// Float64Ptr returns a pointer to v, for optional confidence values.
func Float64Ptr(v float64) *float64 { return &v }
