package assumption

import (
	"errors"
	"testing"

	"dev_feasibility/pkg/core/fin"
	"dev_feasibility/pkg/core/returns"
)

const hjsonProject = `
# Caloundra industrial estate
project_name: Caloundra Warehouse
scenario: base
returns: {
  purchase_price: 5000000
  acquisition_costs: 250000
  construction_cost: 10000000
  construction_duration_months: 18
  estimated_monthly_rent: 150000
}
financing: {
  total_development_cost: 8500000
  completion_value: 10200000
  construction_duration_months: 14
}
`

func TestParseHjson(t *testing.T) {
	s, err := Parse([]byte(hjsonProject))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s.ProjectName != "Caloundra Warehouse" {
		t.Errorf("Unexpected project name %q", s.ProjectName)
	}
	if s.ID == "" {
		t.Error("Expected a generated ID")
	}
	want := returns.ExampleProject()
	if s.Returns != want {
		t.Errorf("Returns section should overlay defaults:\n got %+v\nwant %+v", s.Returns, want)
	}
	if s.Costs != nil {
		t.Error("Absent costs section should stay nil")
	}
	if s.Financing == nil || s.Financing.ConstructionLTC != 65 || s.Financing.InvestmentTermYears != 25 {
		t.Errorf("Financing should keep benchmark defaults, got %+v", s.Financing)
	}
}

func TestParseRepairsDamagedJSON(t *testing.T) {
	damaged := `{"project_name": "Repair", "returns": {"holding_period_years": 7, "exit_cap_rate": 6.0,}, "id": "p-1"`
	s, err := Parse([]byte(damaged))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s.ID != "p-1" || s.Returns.HoldingPeriodYears != 7 || s.Returns.ExitCapRate != 6.0 {
		t.Errorf("Unexpected parse result %+v", s)
	}
	if s.Returns.OccupancyRate != 95 {
		t.Errorf("Unspecified occupancy should default to 95, got %f", s.Returns.OccupancyRate)
	}
}

func TestParseCostsSection(t *testing.T) {
	s, err := Parse([]byte(`{"project_name": "Costs", "costs": {"land_area_sqm": 8500, "land_price_per_sqm": 350}}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if s.Costs == nil || s.Costs.LandAreaSqm != 8500 {
		t.Fatalf("Costs section not decoded: %+v", s.Costs)
	}
	if s.Costs.ProjectName != "Costs" {
		t.Errorf("Cost project name should inherit the document name, got %q", s.Costs.ProjectName)
	}
}

func TestParseRejectsInvalidAssumptions(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"occupancy", `{"returns": {"occupancy_rate": 140}}`},
		{"holding", `{"returns": {"holding_period_years": 0}}`},
		{"ltc", `{"financing": {"construction_ltc": 0}}`},
		{"negative land", `{"costs": {"land_area_sqm": -5}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			if !errors.Is(err, fin.ErrInvalidAssumption) {
				t.Errorf("Expected ErrInvalidAssumption, got %v", err)
			}
		})
	}
}

func TestParseRejectsUnknownScenario(t *testing.T) {
	if _, err := Parse([]byte(`{"scenario": "apocalyptic"}`)); err == nil {
		t.Error("Expected unknown scenario to be rejected")
	}
}

func TestRoundTrip(t *testing.T) {
	s := NewSet("Round Trip")
	s.Returns = returns.ExampleProject()
	data, err := s.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	back, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if back.ID != s.ID || back.Returns != s.Returns {
		t.Errorf("Round trip lost data: %+v", back)
	}
}
