package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/minjae/safety-inspector/internal/engine"
	"github.com/minjae/safety-inspector/internal/types"
)

// CreateProject inserts a project with an optional free-text context and an
// optional structured master plan, returning its id.
func (db *DB) CreateProject(ctx context.Context, name string, contextText *string, plan *types.MasterSafetyPlan) (uuid.UUID, error) {
	id := uuid.New()

	var planJSON []byte
	if plan != nil {
		var err error
		planJSON, err = json.Marshal(plan)
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to marshal master plan: %w", err)
		}
	}

	_, err := db.pool.Exec(ctx,
		`INSERT INTO projects (id, name, context_text, master_plan)
		 VALUES ($1, $2, $3, $4)`,
		id, name, contextText, planJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to create project: %w", err)
	}
	return id, nil
}

// GetProject retrieves a project by id. Returns nil when not found.
func (db *DB) GetProject(ctx context.Context, projectID uuid.UUID) (*types.Project, error) {
	var p types.Project
	var planJSON []byte

	err := db.pool.QueryRow(ctx,
		`SELECT id, name, context_text, master_plan, created_at
		 FROM projects WHERE id = $1`,
		projectID,
	).Scan(&p.ID, &p.Name, &p.ContextText, &planJSON, &p.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	if len(planJSON) > 0 {
		var plan types.MasterSafetyPlan
		if err := json.Unmarshal(planJSON, &plan); err != nil {
			return nil, fmt.Errorf("failed to parse master plan for project %s: %w", projectID, err)
		}
		p.MasterPlan = &plan
	}
	return &p, nil
}

// GetProjectContext implements engine.ProjectContextProvider. A structured
// master plan takes precedence over legacy free-text context when both are
// stored.
func (db *DB) GetProjectContext(ctx context.Context, projectID uuid.UUID) (*engine.ProjectContext, error) {
	project, err := db.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found: %s", projectID)
	}
	return &engine.ProjectContext{
		MasterPlan:  project.MasterPlan,
		ContextText: project.ContextText,
	}, nil
}
