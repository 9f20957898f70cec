// Package crossdoc detects contradictions between a document and other
// reports already filed under the same project.
package crossdoc

import (
	"fmt"
	"strings"

	"github.com/minjae/safety-inspector/internal/types"
)

// Config holds the comparison-window heuristics. Injected rather than
// package-global so tests can tighten or relax them.
type Config struct {
	// WindowSize caps how many prior reports are compared.
	WindowSize int
	// OscillationFlips is the number of declared-risk direction changes
	// inside the window before oscillation is flagged.
	OscillationFlips int
	// WorkerCountJumpFactor flags worker-count changes beyond this multiple
	// of the historical median.
	WorkerCountJumpFactor float64
}

// DefaultConfig returns the built-in window heuristics.
func DefaultConfig() *Config {
	return &Config{
		WindowSize:            10,
		OscillationFlips:      2,
		WorkerCountJumpFactor: 3.0,
	}
}

// Analyzer compares a document against the project's recent report history.
// Non-critical: the engine degrades a failure here to zero issues.
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

// Analyze returns cross_doc_* findings for temporal inconsistencies between
// the document and prior reports. History is expected most-recent-first, as
// returned by the persistence collaborator.
func (a *Analyzer) Analyze(doc *types.Document, history []types.Report) []types.ValidationIssue {
	if len(history) == 0 {
		return nil
	}
	if len(history) > a.cfg.WindowSize {
		history = history[:a.cfg.WindowSize]
	}

	var issues []types.ValidationIssue
	issues = append(issues, a.measureRegressions(doc, history)...)
	issues = append(issues, a.riskOscillation(doc, history)...)
	issues = append(issues, a.workerCountJump(doc, history)...)
	return issues
}

// measureRegressions flags checklist items that the most recent prior report
// marked done (Checked) and the current document explicitly marks not done.
// A hazard that was reported handled and shortly after reappears unhandled
// deserves a second look. One finding summarizes all regressed items.
func (a *Analyzer) measureRegressions(doc *types.Document, history []types.Report) []types.ValidationIssue {
	previous := history[0]
	var regressed []string
	for _, item := range doc.Checklist {
		if item.Value != types.CheckUnchecked {
			continue
		}
		if prev, ok := previous.ChecklistValue(item.ID); ok && prev == types.CheckChecked {
			regressed = append(regressed, item.ID)
		}
	}
	if len(regressed) == 0 {
		return nil
	}
	date := "the previous report"
	if previous.InspectionDate != nil {
		date = fmt.Sprintf("the report dated %s", *previous.InspectionDate)
	}
	return []types.ValidationIssue{{
		RuleID:   "cross_doc_measure_regression",
		Severity: types.SeverityWarn,
		Title:    "Previously completed items now marked not done",
		Message: fmt.Sprintf("Items marked done in %s are marked not done here (%s); the change may be genuine but is worth confirming",
			date, strings.Join(regressed, ", ")),
		Confidence: types.Float64Ptr(0.7),
	}}
}

// riskOscillation flags declared risk levels that flip direction repeatedly
// across the window without the work description changing.
func (a *Analyzer) riskOscillation(doc *types.Document, history []types.Report) []types.ValidationIssue {
	levels := make([]types.RiskLevel, 0, len(history)+1)
	if doc.DeclaredRiskLevel != nil {
		levels = append(levels, *doc.DeclaredRiskLevel)
	}
	for _, r := range history {
		if r.DeclaredRiskLevel != nil {
			levels = append(levels, *r.DeclaredRiskLevel)
		}
	}
	if len(levels) < 3 {
		return nil
	}

	flips := 0
	prevDir := 0
	for i := 1; i < len(levels); i++ {
		d := levels[i-1].Ordinal() - levels[i].Ordinal()
		dir := 0
		if d > 0 {
			dir = 1
		} else if d < 0 {
			dir = -1
		}
		if dir != 0 && prevDir != 0 && dir != prevDir {
			flips++
		}
		if dir != 0 {
			prevDir = dir
		}
	}

	if flips < a.cfg.OscillationFlips {
		return nil
	}
	return []types.ValidationIssue{{
		RuleID:   "cross_doc_risk_oscillation",
		Severity: types.SeverityInfo,
		Title:    "Declared risk level oscillates across reports",
		Message: fmt.Sprintf("The declared risk level changed direction %d times over the last %d reports without accompanying context; the declarations may not track actual site conditions",
			flips, len(levels)),
		Confidence: types.Float64Ptr(0.6),
	}}
}

// workerCountJump flags a current worker count far outside the historical
// median for the project.
func (a *Analyzer) workerCountJump(doc *types.Document, history []types.Report) []types.ValidationIssue {
	if doc.Fields.WorkerCount == nil {
		return nil
	}
	var counts []int
	for _, r := range history {
		if r.WorkerCount != nil && *r.WorkerCount > 0 {
			counts = append(counts, *r.WorkerCount)
		}
	}
	if len(counts) < 2 {
		return nil
	}

	median := medianOf(counts)
	current := float64(*doc.Fields.WorkerCount)
	if median == 0 {
		return nil
	}
	if current <= float64(median)*a.cfg.WorkerCountJumpFactor && current >= float64(median)/a.cfg.WorkerCountJumpFactor {
		return nil
	}
	return []types.ValidationIssue{{
		RuleID:   "cross_doc_worker_count_shift",
		Severity: types.SeverityInfo,
		Title:    "Worker count differs sharply from project history",
		Message: fmt.Sprintf("This document records %d workers while the recent median for the project is %d; a large crew change usually warrants updated risk context",
			*doc.Fields.WorkerCount, median),
		Confidence: types.Float64Ptr(0.6),
	}}
}

func medianOf(values []int) int {
	sorted := make([]int, len(values))
	copy(sorted, values)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	return sorted[len(sorted)/2]
}
