// Package risk computes an objective 0-100 risk score for a document and
// compares it against the document's self-declared risk level.
package risk

import (
	"fmt"
	"sort"
	"strings"

	"github.com/minjae/safety-inspector/internal/types"
)

// Config holds the risk-weight tables and thresholds. All values are
// injected so tests can run against alternate tables; the calculator never
// reads package-level mutable state.
//
// The threshold values (inconsistency distance, N/A ratio, unset escalation)
// are product-calibrated heuristics, which is why they live here instead of
// as constants.
type Config struct {
	// BaseRisks maps hazardous-work checklist ids to their base score
	// contribution when marked Checked.
	BaseRisks map[string]int
	// HazardNames maps hazardous-work ids to display names for factors.
	HazardNames map[string]string
	// Countermeasures maps a hazardous-work id to the checklist ids of its
	// required countermeasures.
	Countermeasures map[string][]string
	// ViolationWeight is added per required countermeasure that is
	// explicitly Unchecked while its hazard is Checked.
	ViolationWeight int
	// SignatureGapScore is added per missing required signature.
	SignatureGapScore int
	// EmptyChecklistPenalty is added when the checklist is empty.
	EmptyChecklistPenalty int
	// NARatioThreshold and NARatioPenalty flag overuse of "not applicable"
	// as an evasion pattern.
	NARatioThreshold float64
	NARatioPenalty   int
	// UnsetItemPenalty is added per Unset item; severity escalates once the
	// unset count exceeds UnsetEscalationCount.
	UnsetItemPenalty     int
	UnsetEscalationCount int
	// MediumThreshold..CriticalThreshold map the clamped score to a level:
	// score < MediumThreshold is low, >= CriticalThreshold is critical.
	MediumThreshold   int
	HighThreshold     int
	CriticalThreshold int
	// InconsistencyDistance is the minimum ordinal distance between the
	// calculated and declared levels before an inconsistency is flagged.
	InconsistencyDistance int
}

// DefaultConfig returns the built-in weight tables. Confined-space entry
// carries the highest base risk, then fall and electrical work, then hot
// work, then excavation.
func DefaultConfig() *Config {
	return &Config{
		BaseRisks: map[string]int{
			"confined_01": 25,
			"fall_01":     20,
			"elec_01":     20,
			"fire_01":     15,
			"excav_01":    12,
		},
		HazardNames: map[string]string{
			"confined_01": "confined-space entry",
			"fall_01":     "work at height",
			"elec_01":     "electrical work",
			"fire_01":     "hot work",
			"excav_01":    "excavation work",
		},
		Countermeasures: map[string][]string{
			"confined_01": {"confined_02", "confined_03"},
			"fall_01":     {"fall_02", "ppe_03"},
			"elec_01":     {"elec_02"},
			"fire_01":     {"fire_02"},
			"excav_01":    {"excav_02", "excav_03"},
		},
		ViolationWeight:       15,
		SignatureGapScore:     10,
		EmptyChecklistPenalty: 30,
		NARatioThreshold:      0.60,
		NARatioPenalty:        15,
		UnsetItemPenalty:      2,
		UnsetEscalationCount:  3,
		MediumThreshold:       21,
		HighThreshold:         41,
		CriticalThreshold:     61,
		InconsistencyDistance: 2,
	}
}

// Calculator computes RiskCalculations from immutable documents and a fixed
// configuration table.
type Calculator struct {
	cfg *Config
}

// NewCalculator creates a calculator. A nil config uses DefaultConfig.
func NewCalculator(cfg *Config) *Calculator {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Calculator{cfg: cfg}
}

// Calculate sums the four independent contributions (high-risk work,
// safety-measure violations, signature gaps, completeness), clamps the total
// to [0,100], maps it to a level and compares against the declared level.
func (c *Calculator) Calculate(doc *types.Document) *types.RiskCalculation {
	var factors []types.RiskFactor
	factors = append(factors, c.highRiskWorkFactors(doc)...)
	factors = append(factors, c.violationFactors(doc)...)
	factors = append(factors, c.signatureFactors(doc)...)
	factors = append(factors, c.completenessFactors(doc)...)

	score := 0
	for _, f := range factors {
		if f.Impact > 0 {
			score += f.Impact
		}
	}
	if score > 100 {
		score = 100
	}

	calc := &types.RiskCalculation{
		CalculatedRisk: c.levelForScore(score),
		DocumentedRisk: doc.DeclaredRiskLevel,
		RiskScore:      score,
		Factors:        factors,
	}

	if doc.DeclaredRiskLevel != nil {
		distance := calc.CalculatedRisk.Distance(*doc.DeclaredRiskLevel)
		if distance >= c.cfg.InconsistencyDistance {
			calc.Inconsistency = true
			calc.Recommendation = c.recommendation(calc, *doc.DeclaredRiskLevel)
		}
	}

	return calc
}

// Issues converts a RiskCalculation into risk_matrix_* findings: one Warn
// when the declared and calculated levels diverge, plus one Info summarizing
// critical factors regardless of the inconsistency flag.
func (c *Calculator) Issues(calc *types.RiskCalculation) []types.ValidationIssue {
	var issues []types.ValidationIssue

	if calc.Inconsistency && calc.DocumentedRisk != nil {
		issues = append(issues, types.ValidationIssue{
			RuleID:   "risk_matrix_inconsistency",
			Severity: types.SeverityWarn,
			Title:    "Declared risk level differs from calculated risk",
			Message: fmt.Sprintf("The document declares %q risk but the calculated level is %q (score %d). %s",
				*calc.DocumentedRisk, calc.CalculatedRisk, calc.RiskScore, calc.Recommendation),
			Confidence: types.Float64Ptr(0.85),
		})
	}

	var critical []string
	for _, f := range calc.Factors {
		if f.Severity == types.RiskCritical {
			critical = append(critical, f.Description)
		}
	}
	if len(critical) > 0 {
		issues = append(issues, types.ValidationIssue{
			RuleID:   "risk_matrix_critical_factors",
			Severity: types.SeverityInfo,
			Title:    "Critical risk factors present",
			Message:  "Critical contributions to the risk score: " + strings.Join(critical, "; "),
		})
	}

	return issues
}

func (c *Calculator) highRiskWorkFactors(doc *types.Document) []types.RiskFactor {
	var factors []types.RiskFactor
	for _, item := range doc.Checklist {
		if item.Value != types.CheckChecked {
			continue
		}
		base, ok := c.cfg.BaseRisks[item.ID]
		if !ok {
			continue
		}
		factors = append(factors, types.RiskFactor{
			Category:    "high_risk_work",
			Description: fmt.Sprintf("%s performed (%s)", c.hazardName(item.ID), item.ID),
			Impact:      base,
			Severity:    severityForImpact(base),
		})
	}
	sortFactors(factors)
	return factors
}

// violationFactors adds the configured weight for every required
// countermeasure that is explicitly Unchecked while its hazard is Checked.
// Absent or Unset countermeasures carry no evidence and add nothing here;
// completeness scoring covers them.
func (c *Calculator) violationFactors(doc *types.Document) []types.RiskFactor {
	values := doc.ChecklistMap()
	var factors []types.RiskFactor

	hazards := make([]string, 0, len(c.cfg.Countermeasures))
	for hazardID := range c.cfg.Countermeasures {
		hazards = append(hazards, hazardID)
	}
	sort.Strings(hazards)

	for _, hazardID := range hazards {
		if values[hazardID] != types.CheckChecked {
			continue
		}
		for _, cmID := range c.cfg.Countermeasures[hazardID] {
			if values[cmID] != types.CheckUnchecked {
				continue
			}
			factors = append(factors, types.RiskFactor{
				Category:    "safety_violation",
				Description: fmt.Sprintf("required countermeasure %s not in place for %s", cmID, c.hazardName(hazardID)),
				Impact:      c.cfg.ViolationWeight,
				Severity:    types.RiskHigh,
			})
		}
	}
	return factors
}

func (c *Calculator) signatureFactors(doc *types.Document) []types.RiskFactor {
	var factors []types.RiskFactor
	if doc.Signatures.Supervisor == types.SignatureMissing {
		factors = append(factors, types.RiskFactor{
			Category:    "documentation",
			Description: "supervisor signature missing",
			Impact:      c.cfg.SignatureGapScore,
			Severity:    types.RiskMedium,
		})
	}
	if doc.Signatures.SiteManager == types.SignatureMissing {
		factors = append(factors, types.RiskFactor{
			Category:    "documentation",
			Description: "site manager signature missing",
			Impact:      c.cfg.SignatureGapScore,
			Severity:    types.RiskMedium,
		})
	}
	return factors
}

func (c *Calculator) completenessFactors(doc *types.Document) []types.RiskFactor {
	var factors []types.RiskFactor

	if len(doc.Checklist) == 0 {
		return append(factors, types.RiskFactor{
			Category:    "completeness",
			Description: "checklist is empty",
			Impact:      c.cfg.EmptyChecklistPenalty,
			Severity:    types.RiskHigh,
		})
	}

	naCount, unsetCount, filled := 0, 0, 0
	for _, item := range doc.Checklist {
		switch item.Value {
		case types.CheckUnset:
			unsetCount++
		case types.CheckNotApplicable:
			naCount++
			filled++
		default:
			filled++
		}
	}

	if filled > 0 {
		ratio := float64(naCount) / float64(filled)
		if ratio > c.cfg.NARatioThreshold {
			factors = append(factors, types.RiskFactor{
				Category: "completeness",
				Description: fmt.Sprintf("%.0f%% of answered items marked not-applicable (threshold %.0f%%)",
					ratio*100, c.cfg.NARatioThreshold*100),
				Impact:   c.cfg.NARatioPenalty,
				Severity: types.RiskMedium,
			})
		}
	}

	if unsetCount > 0 {
		severity := types.RiskLow
		if unsetCount > c.cfg.UnsetEscalationCount {
			severity = types.RiskMedium
		}
		factors = append(factors, types.RiskFactor{
			Category:    "completeness",
			Description: fmt.Sprintf("%d checklist item(s) left unanswered", unsetCount),
			Impact:      unsetCount * c.cfg.UnsetItemPenalty,
			Severity:    severity,
		})
	}

	return factors
}

func (c *Calculator) levelForScore(score int) types.RiskLevel {
	switch {
	case score < c.cfg.MediumThreshold:
		return types.RiskLow
	case score < c.cfg.HighThreshold:
		return types.RiskMedium
	case score < c.cfg.CriticalThreshold:
		return types.RiskHigh
	default:
		return types.RiskCritical
	}
}

// recommendation names the top contributing factors and states directionally
// whether the document under- or over-estimates its own risk.
func (c *Calculator) recommendation(calc *types.RiskCalculation, declared types.RiskLevel) string {
	var top []string
	for _, f := range calc.Factors {
		if f.Severity == types.RiskHigh || f.Severity == types.RiskCritical {
			top = append(top, f.Description)
		}
	}
	if len(top) > 3 {
		top = top[:3]
	}

	direction := "over-estimates"
	if calc.CalculatedRisk.Ordinal() > declared.Ordinal() {
		direction = "under-estimates"
	}

	if len(top) == 0 {
		return fmt.Sprintf("The document %s the risk of the described work.", direction)
	}
	return fmt.Sprintf("The document %s the risk of the described work; main contributing factors: %s.",
		direction, strings.Join(top, "; "))
}

func (c *Calculator) hazardName(id string) string {
	if name, ok := c.cfg.HazardNames[id]; ok {
		return name
	}
	return id
}

// severityForImpact buckets a base-risk impact into a factor severity.
func severityForImpact(impact int) types.RiskLevel {
	switch {
	case impact >= 25:
		return types.RiskCritical
	case impact >= 15:
		return types.RiskHigh
	case impact >= 8:
		return types.RiskMedium
	default:
		return types.RiskLow
	}
}

func sortFactors(factors []types.RiskFactor) {
	sort.SliceStable(factors, func(i, j int) bool { return factors[i].Impact > factors[j].Impact })
}
