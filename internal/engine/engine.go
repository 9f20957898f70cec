// Package engine orchestrates the multi-stage validation pipeline: it fans a
// sanitized document out to the five analyzers, contains non-critical stage
// failures, and aggregates the issue streams into one ordered list.
package engine

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/minjae/safety-inspector/internal/crossdoc"
	"github.com/minjae/safety-inspector/internal/pattern"
	"github.com/minjae/safety-inspector/internal/plancheck"
	"github.com/minjae/safety-inspector/internal/risk"
	"github.com/minjae/safety-inspector/internal/rules"
	"github.com/minjae/safety-inspector/internal/sanitize"
	"github.com/minjae/safety-inspector/internal/types"
)

// ProjectContext is what the persistence collaborator knows about a project:
// a structured master plan, free-text legacy context, or neither. Structured
// takes precedence when both are present.
type ProjectContext struct {
	MasterPlan  *types.MasterSafetyPlan
	ContextText *string
}

// ProjectContextProvider fetches project-level plan context. Implemented by
// the database layer; faked in tests.
type ProjectContextProvider interface {
	GetProjectContext(ctx context.Context, projectID uuid.UUID) (*ProjectContext, error)
}

// HistoryProvider fetches canonical summaries of prior reports, most recent
// first.
type HistoryProvider interface {
	ListProjectReports(ctx context.Context, projectID uuid.UUID, limit int) ([]types.Report, error)
	ListInspectorReports(ctx context.Context, projectID uuid.UUID, inspectorName string, limit int) ([]types.Report, error)
}

// StageDiagnostic reports what one stage contributed, for transparency in
// the caller-facing result. A degraded stage shows Failed=true and zero
// issues; the failure itself never reaches the caller.
type StageDiagnostic struct {
	Stage      string `json:"stage"`
	IssueCount int    `json:"issue_count"`
	Failed     bool   `json:"failed,omitempty"`
}

// ValidationResult is the complete output of one validation request.
type ValidationResult struct {
	Document *types.Document          `json:"document"`
	Issues   []types.ValidationIssue  `json:"issues"`
	Risk     *types.RiskCalculation   `json:"risk"`
	Stages   []StageDiagnostic        `json:"stages"`
}

// Stage names, in the aggregation order the report layer depends on.
const (
	StageRules      = "rules"
	StageStructured = "structured"
	StageRisk       = "risk"
	StagePattern    = "pattern"
	StageCrossDoc   = "cross_doc"
)

// defaultHistoryWindow caps how many prior reports each history-dependent
// stage fetches when no override is configured.
const defaultHistoryWindow = 20

// Engine fuses the five analyzers. The analyzers and their configuration
// tables are injected at construction and treated as immutable afterward, so
// one Engine may serve concurrent validation requests.
type Engine struct {
	rules    *rules.Engine
	risk     *risk.Calculator
	plan     *plancheck.Validator
	crossDoc *crossdoc.Analyzer
	pattern  *pattern.Analyzer

	projects ProjectContextProvider
	history  HistoryProvider

	historyWindow int
}

// Options configures an Engine. Nil analyzer fields fall back to defaults;
// nil providers disable the corresponding history-dependent stages.
type Options struct {
	Rules    *rules.Engine
	Risk     *risk.Calculator
	Plan     *plancheck.Validator
	CrossDoc *crossdoc.Analyzer
	Pattern  *pattern.Analyzer
	Projects ProjectContextProvider
	History  HistoryProvider

	// HistoryWindow overrides how many prior reports the history-dependent
	// stages fetch. Zero or negative uses the default.
	HistoryWindow int
}

// New creates an Engine from options.
func New(opts Options) *Engine {
	e := &Engine{
		rules:         opts.Rules,
		risk:          opts.Risk,
		plan:          opts.Plan,
		crossDoc:      opts.CrossDoc,
		pattern:       opts.Pattern,
		projects:      opts.Projects,
		history:       opts.History,
		historyWindow: opts.HistoryWindow,
	}
	if e.historyWindow <= 0 {
		e.historyWindow = defaultHistoryWindow
	}
	if e.rules == nil {
		e.rules = rules.NewEngine(nil)
	}
	if e.risk == nil {
		e.risk = risk.NewCalculator(nil)
	}
	if e.plan == nil {
		e.plan = plancheck.NewValidator()
	}
	if e.crossDoc == nil {
		e.crossDoc = crossdoc.NewAnalyzer(nil)
	}
	if e.pattern == nil {
		e.pattern = pattern.NewAnalyzer(nil)
	}
	return e
}

// Validate sanitizes a raw extraction record and runs the full pipeline.
// The two fatal error kinds (*sanitize.SchemaError and
// *sanitize.NonSafetyDocumentError) abort before any issue list is produced;
// everything else degrades per stage.
func (e *Engine) Validate(ctx context.Context, raw map[string]any, projectID uuid.UUID) (*ValidationResult, error) {
	doc, err := sanitize.Sanitize(raw)
	if err != nil {
		return nil, err
	}
	return e.ValidateDocument(ctx, doc, projectID)
}

// ValidateDocument runs the pipeline over an already-canonical document.
// The rule engine and risk calculator are pure and always run; the plan,
// pattern and cross-document stages run concurrently when a project id and
// the matching provider are available, and any failure in them is contained
// as an empty contribution.
func (e *Engine) ValidateDocument(ctx context.Context, doc *types.Document, projectID uuid.UUID) (*ValidationResult, error) {
	ruleIssues := e.rules.Evaluate(doc)

	riskCalc := e.risk.Calculate(doc)
	riskIssues := e.risk.Issues(riskCalc)

	// The three history-dependent stages block on independent reads against
	// the persistence collaborator, so they are issued concurrently. Their
	// goroutines never return errors: failures are contained per stage.
	var structured, patternRes, crossRes stageResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		structured = e.runStructured(gctx, doc, projectID)
		return nil
	})
	g.Go(func() error {
		patternRes = e.runPattern(gctx, doc, projectID)
		return nil
	})
	g.Go(func() error {
		crossRes = e.runCrossDoc(gctx, doc, projectID)
		return nil
	})
	_ = g.Wait()

	// Aggregation order is a contract with the report layer: rules,
	// structured, risk, pattern, cross-document.
	ordered := []stageResult{
		{name: StageRules, issues: ruleIssues},
		structured,
		{name: StageRisk, issues: riskIssues},
		patternRes,
		crossRes,
	}

	result := &ValidationResult{
		Document: doc,
		Risk:     riskCalc,
		Issues:   []types.ValidationIssue{},
	}
	for _, stage := range ordered {
		if stage.err != nil {
			log.Printf("[WARN] validation stage %s degraded: %v", stage.name, stage.err)
			result.Stages = append(result.Stages, StageDiagnostic{Stage: stage.name, Failed: true})
			continue
		}
		for _, issue := range stage.issues {
			issue.ID = uuid.New().String()
			result.Issues = append(result.Issues, issue)
		}
		result.Stages = append(result.Stages, StageDiagnostic{Stage: stage.name, IssueCount: len(stage.issues)})
	}

	return result, nil
}

// stageResult is the per-stage Result<issues, StageError>: a failed stage
// carries an error and contributes nothing, making the degrade-gracefully
// contract explicit instead of scattered through call sites.
type stageResult struct {
	name   string
	issues []types.ValidationIssue
	err    error
}

// StageError marks a non-critical stage failure. It never propagates to the
// caller; it exists so logs can carry the stage name alongside the cause.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// runStructured, runPattern and runCrossDoc fetch their external inputs and
// analyze inside a containment wrapper. Each one that fails is skipped for
// this invocation only.

func (e *Engine) runStructured(ctx context.Context, doc *types.Document, projectID uuid.UUID) stageResult {
	if e.projects == nil || projectID == uuid.Nil {
		return stageResult{name: StageStructured}
	}
	return runStage(StageStructured, func() ([]types.ValidationIssue, error) {
		pc, err := e.projects.GetProjectContext(ctx, projectID)
		if err != nil {
			return nil, err
		}
		if pc == nil || pc.MasterPlan == nil {
			return nil, nil
		}
		return e.plan.Validate(doc, pc.MasterPlan), nil
	})
}

func (e *Engine) runPattern(ctx context.Context, doc *types.Document, projectID uuid.UUID) stageResult {
	if e.history == nil || projectID == uuid.Nil || doc.InspectorName == nil {
		return stageResult{name: StagePattern}
	}
	return runStage(StagePattern, func() ([]types.ValidationIssue, error) {
		reports, err := e.history.ListInspectorReports(ctx, projectID, *doc.InspectorName, e.historyWindow)
		if err != nil {
			return nil, err
		}
		return e.pattern.Analyze(doc, reports), nil
	})
}

func (e *Engine) runCrossDoc(ctx context.Context, doc *types.Document, projectID uuid.UUID) stageResult {
	if e.history == nil || projectID == uuid.Nil {
		return stageResult{name: StageCrossDoc}
	}
	return runStage(StageCrossDoc, func() ([]types.ValidationIssue, error) {
		reports, err := e.history.ListProjectReports(ctx, projectID, e.historyWindow)
		if err != nil {
			return nil, err
		}
		return e.crossDoc.Analyze(doc, reports), nil
	})
}

// runStage executes one non-critical stage and converts any error or panic
// into a StageError result. A stage failure must never abort the other
// stages or the overall validation.
func runStage(name string, fn func() ([]types.ValidationIssue, error)) (result stageResult) {
	result.name = name
	defer func() {
		if r := recover(); r != nil {
			result.issues = nil
			result.err = &StageError{Stage: name, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	issues, err := fn()
	if err != nil {
		return stageResult{name: name, err: &StageError{Stage: name, Err: err}}
	}
	return stageResult{name: name, issues: issues}
}
