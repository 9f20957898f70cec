package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minjae/safety-inspector/internal/types"
)

// StoredReport is a filed report together with its validation output, as
// persisted after a validation run.
type StoredReport struct {
	Report types.Report            `json:"report"`
	Issues []types.ValidationIssue `json:"issues"`
	Risk   *types.RiskCalculation  `json:"risk,omitempty"`
}

// SaveReport persists a validated document with its issues and risk
// calculation under a project, returning the new report id. The engine
// itself never writes; this runs after validation completes.
func (db *DB) SaveReport(ctx context.Context, projectID uuid.UUID, doc *types.Document, issues []types.ValidationIssue, riskCalc *types.RiskCalculation) (uuid.UUID, error) {
	id := uuid.New()

	checklistJSON, err := json.Marshal(doc.Checklist)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal checklist: %w", err)
	}
	signaturesJSON, err := json.Marshal(doc.Signatures)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal signatures: %w", err)
	}
	if issues == nil {
		issues = []types.ValidationIssue{}
	}
	issuesJSON, err := json.Marshal(issues)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal issues: %w", err)
	}
	var riskJSON []byte
	if riskCalc != nil {
		riskJSON, err = json.Marshal(riskCalc)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal risk calculation: %w", err)
		}
	}

	var declaredRisk *string
	if doc.DeclaredRiskLevel != nil {
		s := string(*doc.DeclaredRiskLevel)
		declaredRisk = &s
	}

	_, err = db.pool.Exec(ctx,
		`INSERT INTO reports (id, project_id, doc_type, inspector_name, inspection_date,
			site_name, work_description, worker_count, declared_risk,
			checklist, signatures, issues, risk)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		id, projectID, string(doc.DocType), doc.InspectorName, doc.Fields.InspectionDate,
		doc.Fields.SiteName, doc.Fields.WorkDescription, doc.Fields.WorkerCount, declaredRisk,
		checklistJSON, signaturesJSON, issuesJSON, riskJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save report: %w", err)
	}
	return id, nil
}

// GetReport retrieves one stored report with its validation output.
// Returns nil when not found.
func (db *DB) GetReport(ctx context.Context, reportID uuid.UUID) (*StoredReport, error) {
	var stored StoredReport
	var declaredRisk *string
	var checklistJSON, issuesJSON, riskJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, project_id, doc_type, inspector_name, inspection_date,
			site_name, work_description, worker_count, declared_risk,
			checklist, issues, risk, created_at
		 FROM reports WHERE id = $1`,
		reportID,
	).Scan(&stored.Report.ID, &stored.Report.ProjectID, &stored.Report.DocType,
		&stored.Report.InspectorName, &stored.Report.InspectionDate,
		&stored.Report.SiteName, &stored.Report.WorkDescription,
		&stored.Report.WorkerCount, &declaredRisk,
		&checklistJSON, &issuesJSON, &riskJSON, &stored.Report.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	if declaredRisk != nil {
		if level, ok := types.ParseRiskLevel(*declaredRisk); ok {
			stored.Report.DeclaredRiskLevel = &level
		}
	}
	if err := json.Unmarshal(checklistJSON, &stored.Report.Checklist); err != nil {
		return nil, fmt.Errorf("failed to parse checklist for report %s: %w", reportID, err)
	}
	if err := json.Unmarshal(issuesJSON, &stored.Issues); err != nil {
		return nil, fmt.Errorf("failed to parse issues for report %s: %w", reportID, err)
	}
	if len(riskJSON) > 0 {
		var rc types.RiskCalculation
		if err := json.Unmarshal(riskJSON, &rc); err != nil {
			return nil, fmt.Errorf("failed to parse risk calculation for report %s: %w", reportID, err)
		}
		stored.Risk = &rc
	}
	return &stored, nil
}

// ListProjectReports implements engine.HistoryProvider: canonical summaries
// of prior reports under a project, most recent first.
func (db *DB) ListProjectReports(ctx context.Context, projectID uuid.UUID, limit int) ([]types.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, doc_type, inspector_name, inspection_date,
			site_name, work_description, worker_count, declared_risk, checklist, created_at
		 FROM reports WHERE project_id = $1
		 ORDER BY created_at DESC LIMIT $2`,
		projectID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list project reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

// ListInspectorReports implements engine.HistoryProvider: one inspector's
// prior submissions under a project, most recent first.
func (db *DB) ListInspectorReports(ctx context.Context, projectID uuid.UUID, inspectorName string, limit int) ([]types.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.pool.Query(ctx,
		`SELECT id, project_id, doc_type, inspector_name, inspection_date,
			site_name, work_description, worker_count, declared_risk, checklist, created_at
		 FROM reports WHERE project_id = $1 AND inspector_name = $2
		 ORDER BY created_at DESC LIMIT $3`,
		projectID, inspectorName, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list inspector reports: %w", err)
	}
	defer rows.Close()
	return scanReports(rows)
}

func scanReports(rows pgx.Rows) ([]types.Report, error) {
	var reports []types.Report
	for rows.Next() {
		var r types.Report
		var docType string
		var declaredRisk *string
		var checklistJSON []byte

		if err := rows.Scan(&r.ID, &r.ProjectID, &docType, &r.InspectorName,
			&r.InspectionDate, &r.SiteName, &r.WorkDescription, &r.WorkerCount,
			&declaredRisk, &checklistJSON, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}

		r.DocType = types.ParseDocType(docType)
		if declaredRisk != nil {
			if level, ok := types.ParseRiskLevel(*declaredRisk); ok {
				r.DeclaredRiskLevel = &level
			}
		}
		if err := json.Unmarshal(checklistJSON, &r.Checklist); err != nil {
			return nil, fmt.Errorf("failed to parse checklist for report %s: %w", r.ID, err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}
