// Package db provides PostgreSQL access for projects, master safety plans
// and filed inspection reports. The validation engine reads through the
// interfaces in internal/engine; writing the validated document and its
// issues is the caller's job, done here after validation completes.
package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a PostgreSQL connection pool.
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database.
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool.
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the schema if it does not exist yet. Plans, checklists,
// issues and risk calculations are stored as JSONB documents; the columns
// the analyzers query on are lifted out.
func (db *DB) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS projects (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			context_text TEXT,
			master_plan JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS reports (
			id UUID PRIMARY KEY,
			project_id UUID NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
			doc_type TEXT NOT NULL DEFAULT 'unknown',
			inspector_name TEXT,
			inspection_date TEXT,
			site_name TEXT,
			work_description TEXT,
			worker_count INT,
			declared_risk TEXT,
			checklist JSONB NOT NULL DEFAULT '[]',
			signatures JSONB,
			issues JSONB NOT NULL DEFAULT '[]',
			risk JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_project_created
			ON reports(project_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_inspector
			ON reports(project_id, inspector_name, created_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
