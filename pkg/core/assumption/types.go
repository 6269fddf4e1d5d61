// Package assumption holds the project document a user edits: the cost,
// financing and returns assumptions of one development, read from lenient
// JSON or Hjson and validated before any engine runs.
package assumption

import (
	"encoding/json"
	"fmt"
	"time"

	"dev_feasibility/pkg/core/costs"
	"dev_feasibility/pkg/core/loan"
	"dev_feasibility/pkg/core/returns"
	"dev_feasibility/pkg/core/utils"

	"github.com/google/uuid"
)

// Set is every assumption for one project. Costs and Financing are optional
// sections; Returns always runs.
type Set struct {
	ID          string                `json:"id"`
	ProjectName string                `json:"project_name"`
	Scenario    string                `json:"scenario,omitempty"`
	Costs       *costs.Assumptions    `json:"costs,omitempty"`
	Financing   *loan.DualPhaseTerms  `json:"financing,omitempty"`
	Returns     returns.ProjectParams `json:"returns"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSet creates a set with default returns assumptions and a fresh ID.
func NewSet(projectName string) *Set {
	now := time.Now()
	return &Set{
		ID:          uuid.NewString(),
		ProjectName: projectName,
		Returns:     returns.DefaultProjectParams(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// document keeps sections raw so absent ones can be told apart from empty
// ones and present ones decode over their defaults.
type document struct {
	ID          string          `json:"id"`
	ProjectName string          `json:"project_name"`
	Scenario    string          `json:"scenario"`
	Costs       json.RawMessage `json:"costs"`
	Financing   json.RawMessage `json:"financing"`
	Returns     json.RawMessage `json:"returns"`
}

func present(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

// Parse reads a project document. Input may be strict JSON, Hjson (comments,
// unquoted keys) or damaged JSON that json-repair can fix. Missing fields take
// their defaults; the result is validated.
func Parse(data []byte) (*Set, error) {
	var doc document
	if _, err := utils.SmartParse(string(data), &doc); err != nil {
		return nil, fmt.Errorf("parse assumptions: %w", err)
	}

	s := NewSet(doc.ProjectName)
	if doc.ID != "" {
		s.ID = doc.ID
	}
	s.Scenario = doc.Scenario

	if present(doc.Costs) {
		c := costs.DefaultAssumptions()
		if err := json.Unmarshal(doc.Costs, &c); err != nil {
			return nil, fmt.Errorf("parse costs section: %w", err)
		}
		if c.ProjectName == "" {
			c.ProjectName = s.ProjectName
		}
		s.Costs = &c
	}
	if present(doc.Financing) {
		f := loan.DefaultDualPhaseTerms()
		if err := json.Unmarshal(doc.Financing, &f); err != nil {
			return nil, fmt.Errorf("parse financing section: %w", err)
		}
		s.Financing = &f
	}
	if present(doc.Returns) {
		if err := json.Unmarshal(doc.Returns, &s.Returns); err != nil {
			return nil, fmt.Errorf("parse returns section: %w", err)
		}
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate runs each section's domain checks.
func (s *Set) Validate() error {
	if s.Scenario != "" {
		if _, ok := returns.ScenarioByName(s.Scenario); !ok {
			return fmt.Errorf("unknown scenario %q", s.Scenario)
		}
	}
	if s.Costs != nil {
		if err := s.Costs.Validate(); err != nil {
			return err
		}
	}
	if s.Financing != nil {
		if err := s.Financing.Construction().Validate(); err != nil {
			return err
		}
		if err := s.Financing.Investment().Validate(); err != nil {
			return err
		}
	}
	return s.Returns.Validate()
}

// Touch marks the set as edited.
func (s *Set) Touch() { s.UpdatedAt = time.Now() }

// ToJSON serializes the set in canonical JSON.
func (s *Set) ToJSON() ([]byte, error) {
	return json.Marshal(s)
}
