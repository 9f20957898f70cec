package types

import "strings"

// RiskLevel is the four-step ordered scale used both for the document's
// self-declared level and for the calculated level.
type RiskLevel string

// Risk levels in ascending order of severity.
const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Ordinal returns the position of the level on the ordered scale
// (low=0 .. critical=3). Unknown levels return -1.
func (l RiskLevel) Ordinal() int {
	switch l {
	case RiskLow:
		return 0
	case RiskMedium:
		return 1
	case RiskHigh:
		return 2
	case RiskCritical:
		return 3
	default:
		return -1
	}
}

// Distance returns the absolute ordinal distance between two levels.
func (l RiskLevel) Distance(other RiskLevel) int {
	d := l.Ordinal() - other.Ordinal()
	if d < 0 {
		d = -d
	}
	return d
}

// ParseRiskLevel normalizes a raw extracted risk level. The second return is
// false when the input does not name a known level (including Korean labels).
func ParseRiskLevel(raw string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "low", "하", "낮음":
		return RiskLow, true
	case "medium", "mid", "중", "보통":
		return RiskMedium, true
	case "high", "상", "높음":
		return RiskHigh, true
	case "critical", "심각", "매우높음", "매우 높음":
		return RiskCritical, true
	default:
		return "", false
	}
}

// RiskFactor is one additive contribution to the calculated risk score.
// Impacts are order-independent; the total is clamped to [0,100]. Factor
// severity uses the same four-step scale as risk levels.
type RiskFactor struct {
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Impact      int       `json:"impact"`
	Severity    RiskLevel `json:"severity"`
}

// RiskCalculation is the full output of the risk matrix calculator.
type RiskCalculation struct {
	CalculatedRisk RiskLevel    `json:"calculated_risk"`
	DocumentedRisk *RiskLevel   `json:"documented_risk,omitempty"`
	RiskScore      int          `json:"risk_score"`
	Factors        []RiskFactor `json:"factors"`
	Inconsistency  bool         `json:"inconsistency"`
	Recommendation string       `json:"recommendation,omitempty"`
}
