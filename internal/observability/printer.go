// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/minjae/safety-inspector/internal/engine"
	"github.com/minjae/safety-inspector/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintDocument outputs a human-readable summary of the sanitized document.
func (p *Printer) PrintDocument(doc *types.Document) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type:      %s\n", doc.DocType))
	sb.WriteString(fmt.Sprintf("Site:      %s\n", stringOr(doc.Fields.SiteName, "(not read)")))
	sb.WriteString(fmt.Sprintf("Date:      %s\n", stringOr(doc.Fields.InspectionDate, "(not read)")))
	sb.WriteString(fmt.Sprintf("Inspector: %s\n", stringOr(doc.InspectorName, "(not read)")))
	if doc.DeclaredRiskLevel != nil {
		sb.WriteString(fmt.Sprintf("Declared:  %s\n", *doc.DeclaredRiskLevel))
	}
	sb.WriteString("\n")

	counts := map[types.CheckValue]int{}
	for _, item := range doc.Checklist {
		counts[item.Value]++
	}
	sb.WriteString(fmt.Sprintf("Checklist: %d items (%d checked, %d unchecked, %d n/a, %d unset)",
		len(doc.Checklist), counts[types.CheckChecked], counts[types.CheckUnchecked],
		counts[types.CheckNotApplicable], counts[types.CheckUnset]))

	p.printBox("SANITIZED DOCUMENT", sb.String())
}

// PrintRiskCalculation outputs the score, level comparison and top factors.
func (p *Printer) PrintRiskCalculation(calc *types.RiskCalculation) {
	if calc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Score:      %d/100 → %s\n", calc.RiskScore, calc.CalculatedRisk))
	if calc.DocumentedRisk != nil {
		marker := ""
		if calc.Inconsistency {
			marker = "  ⚠ inconsistent"
		}
		sb.WriteString(fmt.Sprintf("Declared:   %s%s\n", *calc.DocumentedRisk, marker))
	}

	if len(calc.Factors) > 0 {
		sb.WriteString("\nFactors:\n")
		count := min(len(calc.Factors), maxItemsToShow)
		for i := 0; i < count; i++ {
			f := calc.Factors[i]
			sb.WriteString(fmt.Sprintf("  +%d  %s\n", f.Impact, f.Description))
		}
		if len(calc.Factors) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(calc.Factors)-maxItemsToShow))
		}
	}

	if calc.Recommendation != "" {
		sb.WriteString("\n")
		sb.WriteString(calc.Recommendation)
	}

	p.printBox("RISK CALCULATION", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintIssues outputs the aggregated findings grouped in pipeline order.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintIssues(issues []types.ValidationIssue) {
	if len(issues) == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ NO FINDINGS")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d findings:\n\n", len(issues)))

	for i, issue := range issues {
		message := issue.Message
		if len(message) > 45 {
			message = message[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("⚠ [%s] %s\n", issue.Severity, issue.RuleID))
		sb.WriteString(fmt.Sprintf("  %s\n", message))
		if i < len(issues)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("VALIDATION FINDINGS", sb.String())
}

// PrintStages outputs per-stage diagnostic counts, marking degraded stages.
func (p *Printer) PrintStages(stages []engine.StageDiagnostic) {
	if len(stages) == 0 {
		return
	}

	var sb strings.Builder
	for _, s := range stages {
		status := fmt.Sprintf("%d finding(s)", s.IssueCount)
		if s.Failed {
			status = "degraded (skipped)"
		}
		sb.WriteString(fmt.Sprintf("%-12s %s\n", s.Stage, status))
	}

	p.printBox("PIPELINE STAGES", strings.TrimSuffix(sb.String(), "\n"))
}

func stringOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
