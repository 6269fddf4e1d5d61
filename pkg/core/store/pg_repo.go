package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS dd_projects (
	id           TEXT PRIMARY KEY,
	project_name TEXT NOT NULL,
	status       TEXT NOT NULL,
	parameters   JSONB NOT NULL,
	metrics      JSONB,
	scenarios    JSONB,
	created_at   TIMESTAMPTZ NOT NULL,
	updated_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dd_projects_created_at ON dd_projects (created_at DESC);
`

// PGProjectRepo stores projects in Postgres with JSONB documents.
type PGProjectRepo struct {
	pool *pgxpool.Pool
}

var _ ProjectRepo = (*PGProjectRepo)(nil)

// NewPGProjectRepo uses the given pool, or the shared pool from InitDB when
// nil, and creates the table if needed.
func NewPGProjectRepo(ctx context.Context, p *pgxpool.Pool) (*PGProjectRepo, error) {
	if p == nil {
		p = GetPool()
	}
	if p == nil {
		return nil, fmt.Errorf("database pool not initialized")
	}
	if _, err := p.Exec(ctx, pgSchema); err != nil {
		return nil, fmt.Errorf("failed to create dd_projects: %w", err)
	}
	return &PGProjectRepo{pool: p}, nil
}

func (r *PGProjectRepo) Save(ctx context.Context, p *Project) error {
	if err := p.validate(); err != nil {
		return err
	}
	c, err := encode(p)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO dd_projects (id, project_name, status, parameters, metrics, scenarios, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id)
		DO UPDATE SET
			project_name = EXCLUDED.project_name,
			status = EXCLUDED.status,
			parameters = EXCLUDED.parameters,
			metrics = EXCLUDED.metrics,
			scenarios = EXCLUDED.scenarios,
			updated_at = EXCLUDED.updated_at
		RETURNING created_at;
	`
	err = r.pool.QueryRow(ctx, query, p.ID, p.Name, p.Status, c.parameters, c.metrics, c.scenarios, p.CreatedAt, p.UpdatedAt).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

const pgSelect = `SELECT id, project_name, status, parameters, metrics, scenarios, created_at, updated_at FROM dd_projects`

func scanProject(row pgx.Row) (*Project, error) {
	var p Project
	var c columns
	if err := row.Scan(&p.ID, &p.Name, &p.Status, &c.parameters, &c.metrics, &c.scenarios, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := decode(&p, c); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PGProjectRepo) Load(ctx context.Context, id string) (*Project, error) {
	p, err := scanProject(r.pool.QueryRow(ctx, pgSelect+` WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return p, nil
}

func (r *PGProjectRepo) List(ctx context.Context) ([]*Project, error) {
	rows, err := r.pool.Query(ctx, pgSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGProjectRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM dd_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Close is a no-op; the shared pool is closed with store.Close.
func (r *PGProjectRepo) Close() error { return nil }
