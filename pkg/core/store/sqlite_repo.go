package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// sqliteTime has fixed-width fractions so TEXT ordering matches time order.
const sqliteTime = "2006-01-02T15:04:05.000000000Z"

// SQLiteProjectRepo stores projects in a local SQLite file.
type SQLiteProjectRepo struct {
	conn *sql.DB
}

var _ ProjectRepo = (*SQLiteProjectRepo)(nil)

// NewSQLiteProjectRepo opens (creating if needed) the database at path.
func NewSQLiteProjectRepo(path string) (*SQLiteProjectRepo, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}
	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite database: %w", err)
	}
	if _, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS dd_projects (
			id TEXT PRIMARY KEY,
			project_name TEXT NOT NULL,
			status TEXT NOT NULL,
			parameters TEXT NOT NULL,
			metrics TEXT,
			scenarios TEXT,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_dd_projects_created_at ON dd_projects(created_at);
	`); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize database tables: %w", err)
	}
	return &SQLiteProjectRepo{conn: conn}, nil
}

func (r *SQLiteProjectRepo) Save(ctx context.Context, p *Project) error {
	if err := p.validate(); err != nil {
		return err
	}
	c, err := encode(p)
	if err != nil {
		return err
	}

	var created string
	err = r.conn.QueryRowContext(ctx, `
		INSERT INTO dd_projects (id, project_name, status, parameters, metrics, scenarios, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_name = excluded.project_name,
			status = excluded.status,
			parameters = excluded.parameters,
			metrics = excluded.metrics,
			scenarios = excluded.scenarios,
			updated_at = excluded.updated_at
		RETURNING created_at`,
		p.ID, p.Name, p.Status, string(c.parameters), string(c.metrics), string(c.scenarios),
		p.CreatedAt.UTC().Format(sqliteTime), p.UpdatedAt.UTC().Format(sqliteTime),
	).Scan(&created)
	if err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	if p.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
		return fmt.Errorf("failed to parse created_at: %w", err)
	}
	return nil
}

const sqliteSelect = `SELECT id, project_name, status, parameters, metrics, scenarios, created_at, updated_at FROM dd_projects`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLite(row rowScanner) (*Project, error) {
	var p Project
	var params string
	var metricsJSON, scenariosJSON sql.NullString
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Status, &params, &metricsJSON, &scenariosJSON, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = time.Parse(sqliteTime, created); err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(sqliteTime, updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	c := columns{parameters: []byte(params)}
	if metricsJSON.Valid {
		c.metrics = []byte(metricsJSON.String)
	}
	if scenariosJSON.Valid {
		c.scenarios = []byte(scenariosJSON.String)
	}
	if err := decode(&p, c); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *SQLiteProjectRepo) Load(ctx context.Context, id string) (*Project, error) {
	p, err := scanSQLite(r.conn.QueryRowContext(ctx, sqliteSelect+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return p, nil
}

func (r *SQLiteProjectRepo) List(ctx context.Context) ([]*Project, error) {
	rows, err := r.conn.QueryContext(ctx, sqliteSelect+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var out []*Project
	for rows.Next() {
		p, err := scanSQLite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.conn.ExecContext(ctx, `DELETE FROM dd_projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

func (r *SQLiteProjectRepo) Close() error {
	return r.conn.Close()
}
