// Package rules implements the stateless IF/THEN consistency checks over a
// single document's checklist, modeled on KOSHA-style safety logic.
package rules

import (
	"fmt"
	"strings"

	"github.com/minjae/safety-inspector/internal/types"
)

// Rule is one declarative safety-logic check. Rules are independent and
// order-irrelevant; each evaluates against the full checklist and fires at
// most once.
//
// A rule has two forms. The violation form fires when the hazard item is
// Checked and none of its mitigation items is Checked while at least one is
// explicitly Unchecked. The contradiction form fires when the hazard item is
// explicitly Unchecked but a mitigation item is Checked (protective measures
// reported for work that reportedly was not performed). Items absent from
// the checklist, Unset, or NotApplicable carry no evidence and never fire a
// rule on their own.
type Rule struct {
	ID            string   // base rule id; the contradiction form appends "_contradiction"
	Title         string   // short human title for the finding
	HazardID      string   // checklist id marking the hazardous work
	HazardName    string   // display name for the hazard item
	MitigationIDs []string // satisfying any one mitigation suffices
	Violation     string   // message template for the violation form
	Contradiction string   // message template for the contradiction form
}

// DefaultRules returns the built-in rule table. The table is constructed
// fresh per call so callers can inject modified copies in tests without
// sharing mutable package state.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:            "fall_protection",
			Title:         "Height work without fall protection",
			HazardID:      "fall_01",
			HazardName:    "work at height",
			MitigationIDs: []string{"fall_02", "ppe_03"},
			Violation:     "Work at height is marked performed but no fall-arrest measure (guardrail/safety net or harness) is marked in place",
			Contradiction: "A fall-protection measure is marked in place although work at height is marked not performed",
		},
		{
			ID:            "fire_watch",
			Title:         "Hot work without fire extinguisher",
			HazardID:      "fire_01",
			HazardName:    "hot work",
			MitigationIDs: []string{"fire_02"},
			Violation:     "Hot work is marked performed but no fire extinguisher is marked placed at the work location",
			Contradiction: "A fire extinguisher is marked placed for hot work that is marked not performed",
		},
		{
			ID:            "confined_space_entry",
			Title:         "Confined-space entry without atmosphere control",
			HazardID:      "confined_01",
			HazardName:    "confined-space entry",
			MitigationIDs: []string{"confined_02", "confined_03"},
			Violation:     "Confined-space entry is marked performed but neither oxygen measurement nor ventilation is marked done",
			Contradiction: "Oxygen measurement or ventilation is marked done although confined-space entry is marked not performed",
		},
		{
			ID:            "excavation_protection",
			Title:         "Excavation without collapse protection",
			HazardID:      "excav_01",
			HazardName:    "excavation work",
			MitigationIDs: []string{"excav_02", "excav_03"},
			Violation:     "Excavation work is marked performed but neither shoring nor an exit ladder is marked provided",
			Contradiction: "Shoring or an exit ladder is marked provided for excavation work that is marked not performed",
		},
		{
			ID:            "electrical_loto",
			Title:         "Electrical work without lockout/tagout",
			HazardID:      "elec_01",
			HazardName:    "electrical work",
			MitigationIDs: []string{"elec_02"},
			Violation:     "Electrical work is marked performed but lockout/tagout is not marked applied",
			Contradiction: "Lockout/tagout is marked applied although electrical work is marked not performed",
		},
	}
}

// Engine evaluates a fixed rule table against documents. The table is
// injected at construction and never mutated.
type Engine struct {
	rules []Rule
}

// NewEngine creates a rule engine over the given table. A nil table uses
// DefaultRules.
func NewEngine(rules []Rule) *Engine {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Engine{rules: rules}
}

// Evaluate runs every rule against the document's checklist and returns the
// findings. Rule ids are unprefixed: the base rule engine owns the
// unnamespaced portion of the rule-id space.
func (e *Engine) Evaluate(doc *types.Document) []types.ValidationIssue {
	values := doc.ChecklistMap()
	var issues []types.ValidationIssue

	for _, rule := range e.rules {
		hazard, hazardPresent := values[rule.HazardID]
		if !hazardPresent || !hazard.IsExplicit() {
			continue
		}

		var checkedMitigations, uncheckedMitigations []string
		for _, id := range rule.MitigationIDs {
			v, present := values[id]
			if !present {
				continue
			}
			switch v {
			case types.CheckChecked:
				checkedMitigations = append(checkedMitigations, id)
			case types.CheckUnchecked:
				uncheckedMitigations = append(uncheckedMitigations, id)
			}
		}

		switch hazard {
		case types.CheckChecked:
			// Violation form: hazard performed, no mitigation checked,
			// and at least one mitigation explicitly denied.
			if len(checkedMitigations) == 0 && len(uncheckedMitigations) > 0 {
				issues = append(issues, types.ValidationIssue{
					RuleID:   rule.ID,
					Severity: types.SeverityError,
					Title:    rule.Title,
					Message: fmt.Sprintf("%s (%s is checked; %s unchecked)",
						rule.Violation, rule.HazardID, strings.Join(uncheckedMitigations, ", ")),
				})
			}
		case types.CheckUnchecked:
			// Contradiction form: mitigation reported for work that was
			// reportedly not done.
			if len(checkedMitigations) > 0 {
				issues = append(issues, types.ValidationIssue{
					RuleID:   rule.ID + "_contradiction",
					Severity: types.SeverityWarn,
					Title:    fmt.Sprintf("Contradictory answers for %s", rule.HazardName),
					Message: fmt.Sprintf("%s (%s is unchecked; %s checked)",
						rule.Contradiction, rule.HazardID, strings.Join(checkedMitigations, ", ")),
				})
			}
		}
	}

	return issues
}
