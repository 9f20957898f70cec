// Package pattern derives statistical anomaly signals from one inspector's
// historical submission pattern. Findings are deliberately non-accusatory:
// they describe the statistical pattern and suggest re-verification, never
// intent.
package pattern

import (
	"fmt"
	"strings"

	"github.com/minjae/safety-inspector/internal/types"
)

// Config holds the detection thresholds. The defaults are product
// calibrations, not engineering invariants, so they are injectable.
type Config struct {
	// AlwaysApproveWindow is the number of consecutive submissions
	// (including the current document) that must be uniformly Checked.
	AlwaysApproveWindow int
	// CopyPasteSimilarity is the minimum checklist-vector similarity for a
	// prior report to count as a near-duplicate.
	CopyPasteSimilarity float64
	// CopyPasteMinMatches is how many near-duplicate prior reports on
	// distinct dates are needed before the pattern is flagged.
	CopyPasteMinMatches int
}

// DefaultConfig returns the built-in detection thresholds.
func DefaultConfig() *Config {
	return &Config{
		AlwaysApproveWindow: 10,
		CopyPasteSimilarity: 0.90,
		CopyPasteMinMatches: 2,
	}
}

// Analyzer evaluates an inspector's submission history. Non-critical: the
// engine degrades a failure here to zero issues.
type Analyzer struct {
	cfg *Config
}

// NewAnalyzer creates an analyzer. A nil config uses DefaultConfig.
func NewAnalyzer(cfg *Config) *Analyzer {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Analyzer{cfg: cfg}
}

// Analyze returns pattern_* findings for the current document given the
// inspector's prior submissions (most recent first).
func (a *Analyzer) Analyze(doc *types.Document, history []types.Report) []types.ValidationIssue {
	var issues []types.ValidationIssue
	if issue := a.alwaysApprove(doc, history); issue != nil {
		issues = append(issues, *issue)
	}
	if issue := a.copyPaste(doc, history); issue != nil {
		issues = append(issues, *issue)
	}
	return issues
}

// alwaysApprove fires when the current document and the inspector's last
// N-1 submissions all answer every checklist item Checked. Uniform approval
// across many inspections regardless of context suggests the checklist is
// being filled rather than performed.
func (a *Analyzer) alwaysApprove(doc *types.Document, history []types.Report) *types.ValidationIssue {
	if len(doc.Checklist) == 0 || !allChecked(doc.Checklist) {
		return nil
	}

	needed := a.cfg.AlwaysApproveWindow - 1
	if needed < 0 {
		needed = 0
	}
	if len(history) < needed {
		return nil
	}

	streak := 0
	for _, r := range history {
		if len(r.Checklist) == 0 || !allChecked(r.Checklist) {
			break
		}
		streak++
		if streak >= needed {
			break
		}
	}
	if streak < needed {
		return nil
	}

	return &types.ValidationIssue{
		RuleID:   "pattern_always_approve",
		Severity: types.SeverityWarn,
		Title:    "Uniformly approved checklists over consecutive inspections",
		Message: fmt.Sprintf("The last %d submissions by this inspector answer every checklist item as compliant; uniform results over many inspections can indicate the checks are not being re-performed on site",
			a.cfg.AlwaysApproveWindow),
		Confidence: types.Float64Ptr(0.75),
	}
}

// copyPaste fires when the current document's checklist vector and work
// description closely match multiple prior submissions on different dates,
// suggesting reuse rather than re-inspection.
func (a *Analyzer) copyPaste(doc *types.Document, history []types.Report) *types.ValidationIssue {
	if len(doc.Checklist) == 0 {
		return nil
	}

	matches := 0
	seenDates := map[string]bool{}
	if doc.Fields.InspectionDate != nil {
		seenDates[*doc.Fields.InspectionDate] = true
	}

	for _, r := range history {
		if len(r.Checklist) == 0 {
			continue
		}
		date := ""
		if r.InspectionDate != nil {
			date = *r.InspectionDate
		}
		if date != "" && seenDates[date] {
			continue
		}
		if checklistSimilarity(doc.Checklist, r.Checklist) < a.cfg.CopyPasteSimilarity {
			continue
		}
		if !descriptionsMatch(doc.Fields.WorkDescription, r.WorkDescription) {
			continue
		}
		matches++
		if date != "" {
			seenDates[date] = true
		}
	}

	if matches < a.cfg.CopyPasteMinMatches {
		return nil
	}

	return &types.ValidationIssue{
		RuleID:   "pattern_copy_paste",
		Severity: types.SeverityWarn,
		Title:    "Near-identical submissions across multiple dates",
		Message: fmt.Sprintf("This document's checklist answers and work description closely match %d earlier submissions on other dates; identical records across inspections are worth re-verifying against current site conditions",
			matches),
		Confidence: types.Float64Ptr(0.7),
	}
}

func allChecked(items []types.ChecklistItem) bool {
	for _, item := range items {
		if item.Value != types.CheckChecked {
			return false
		}
	}
	return true
}

// checklistSimilarity is the fraction of matching (id, value) pairs over the
// union of both checklists' ids.
func checklistSimilarity(a, b []types.ChecklistItem) float64 {
	av := make(map[string]types.CheckValue, len(a))
	for _, item := range a {
		av[item.ID] = item.Value
	}
	bv := make(map[string]types.CheckValue, len(b))
	for _, item := range b {
		bv[item.ID] = item.Value
	}

	union := make(map[string]bool, len(av)+len(bv))
	for id := range av {
		union[id] = true
	}
	for id := range bv {
		union[id] = true
	}
	if len(union) == 0 {
		return 0
	}

	matching := 0
	for id := range union {
		va, okA := av[id]
		vb, okB := bv[id]
		if okA && okB && va == vb {
			matching++
		}
	}
	return float64(matching) / float64(len(union))
}

// descriptionsMatch compares normalized work descriptions. Two missing
// descriptions count as a match: an empty field copied forward is still a
// copy.
func descriptionsMatch(a, b *string) bool {
	na, nb := "", ""
	if a != nil {
		na = normalizeText(*a)
	}
	if b != nil {
		nb = normalizeText(*b)
	}
	return na == nb
}

func normalizeText(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
