// Package store persists saved feasibility projects: the assumption set plus
// the headline metrics and scenario results of its last run.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dev_feasibility/pkg/core/assumption"
	"dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/returns"

	json "github.com/goccy/go-json"
)

// Review statuses.
const (
	StatusUnderReview = "Under Review"
	StatusApproved    = "Approved"
	StatusRejected    = "Rejected"
	StatusOnHold      = "On Hold"
)

var ErrNotFound = errors.New("project not found")

// Project is one saved analysis. Metrics and Scenarios omit the cash-flow
// ledger, which is recomputed from the assumptions on demand.
type Project struct {
	ID          string                     `json:"id"`
	Name        string                     `json:"project_name"`
	Status      string                     `json:"status"`
	Assumptions *assumption.Set            `json:"parameters"`
	Metrics     *returns.Result            `json:"metrics,omitempty"`
	Scenarios   map[string]*returns.Result `json:"scenarios,omitempty"`
	CreatedAt   time.Time                  `json:"created_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
}

// ProjectRepo is implemented by the Postgres and SQLite stores.
type ProjectRepo interface {
	// Save inserts or replaces a project by ID. CreatedAt is kept on update.
	Save(ctx context.Context, p *Project) error
	Load(ctx context.Context, id string) (*Project, error)
	// List returns every project, newest first.
	List(ctx context.Context) ([]*Project, error)
	Delete(ctx context.Context, id string) error
	Close() error
}

func headline(r *returns.Result) *returns.Result {
	if r == nil {
		return nil
	}
	out := *r
	out.CashFlowModel = nil
	return &out
}

// NewProject snapshots an assumption set and its analysis.
func NewProject(set *assumption.Set, an *feasibility.Analysis) *Project {
	p := &Project{
		ID:          set.ID,
		Name:        set.ProjectName,
		Status:      StatusUnderReview,
		Assumptions: set,
		CreatedAt:   set.CreatedAt,
		UpdatedAt:   time.Now(),
	}
	if an != nil {
		p.Metrics = headline(an.Returns)
		p.Scenarios = make(map[string]*returns.Result, len(an.Scenarios))
		for name, r := range an.Scenarios {
			p.Scenarios[name] = headline(r)
		}
	}
	return p
}

func (p *Project) validate() error {
	if p.ID == "" {
		return fmt.Errorf("project id is required")
	}
	if p.Assumptions == nil {
		return fmt.Errorf("project %s has no assumptions", p.ID)
	}
	if p.Status == "" {
		p.Status = StatusUnderReview
	}
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return nil
}

// columns are the JSON documents stored alongside the scalar columns.
type columns struct {
	parameters []byte
	metrics    []byte
	scenarios  []byte
}

func encode(p *Project) (columns, error) {
	var c columns
	var err error
	if c.parameters, err = json.Marshal(p.Assumptions); err != nil {
		return c, fmt.Errorf("failed to marshal parameters: %w", err)
	}
	if c.metrics, err = json.Marshal(p.Metrics); err != nil {
		return c, fmt.Errorf("failed to marshal metrics: %w", err)
	}
	if c.scenarios, err = json.Marshal(p.Scenarios); err != nil {
		return c, fmt.Errorf("failed to marshal scenarios: %w", err)
	}
	return c, nil
}

func decode(p *Project, c columns) error {
	p.Assumptions = &assumption.Set{}
	if err := json.Unmarshal(c.parameters, p.Assumptions); err != nil {
		return fmt.Errorf("failed to unmarshal parameters for %s: %w", p.ID, err)
	}
	if len(c.metrics) > 0 {
		if err := json.Unmarshal(c.metrics, &p.Metrics); err != nil {
			return fmt.Errorf("failed to unmarshal metrics for %s: %w", p.ID, err)
		}
	}
	if len(c.scenarios) > 0 {
		if err := json.Unmarshal(c.scenarios, &p.Scenarios); err != nil {
			return fmt.Errorf("failed to unmarshal scenarios for %s: %w", p.ID, err)
		}
	}
	return nil
}
