package costs

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"dev_feasibility/pkg/core/fin"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func TestEstimateSunshineCoastWarehouse(t *testing.T) {
	b, err := Estimate(SunshineCoastWarehouse())
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}

	// Land: 8,500 × 350 = 2,975,000 + 6% acquisition = 3,153,500
	if !approx(b.LandCosts.Total, 3153500, 0.01) {
		t.Errorf("Expected land total 3,153,500, got %f", b.LandCosts.Total)
	}
	// Contingency base = 5,250,000 construction + 825,000 site works
	if !approx(b.Contingency.Total, 607500, 0.01) {
		t.Errorf("Expected contingency 607,500, got %f", b.Contingency.Total)
	}
	if !approx(b.Summary.TotalHardCosts, 9836000, 0.01) {
		t.Errorf("Expected hard costs 9,836,000, got %f", b.Summary.TotalHardCosts)
	}
	// 13.3% of 5.25M + 38,000 fixed
	if !approx(b.ProfessionalFees.Total, 736250, 0.01) {
		t.Errorf("Expected professional fees 736,250, got %f", b.ProfessionalFees.Total)
	}
	// DA: 1,450 + 2,200 × 0.80
	if !approx(b.GovernmentCharges.DevelopmentApplication, 3210, 0.01) {
		t.Errorf("Expected DA fee 3,210, got %f", b.GovernmentCharges.DevelopmentApplication)
	}
	if !approx(b.GovernmentCharges.Total, 227285, 0.01) {
		t.Errorf("Expected government charges 227,285, got %f", b.GovernmentCharges.Total)
	}
	if !approx(b.Summary.TotalSoftCosts, 1016035, 0.01) {
		t.Errorf("Expected soft costs 1,016,035, got %f", b.Summary.TotalSoftCosts)
	}
	if !approx(b.Summary.TotalDevelopmentCost, 10852035, 0.01) {
		t.Errorf("Expected TDC 10,852,035, got %f", b.Summary.TotalDevelopmentCost)
	}
	if !approx(b.Summary.CostPerSqmLand, 1276.71, 0.001) {
		t.Errorf("Expected cost per sqm land 1,276.71, got %f", b.Summary.CostPerSqmLand)
	}
	if !approx(b.Summary.HardCostPct+b.Summary.SoftCostPct, 100, 1e-9) {
		t.Errorf("Hard/soft split should sum to 100, got %f", b.Summary.HardCostPct+b.Summary.SoftCostPct)
	}
}

func TestProfessionalFeesExcludeSiteWorksAndContingency(t *testing.T) {
	a := DefaultAssumptions()
	a.GrossFloorArea = 1000
	a.ConstructionRatePerSqm = 1000
	a.LegalFees, a.ValuationFees = 0, 0

	without, _ := Estimate(a)
	a.SiteWorks.Earthworks = 500000
	a.DesignContingencyPct = 20
	with, _ := Estimate(a)

	if without.ProfessionalFees.Total != with.ProfessionalFees.Total {
		t.Errorf("Professional fees moved with site works: %f vs %f",
			without.ProfessionalFees.Total, with.ProfessionalFees.Total)
	}
	// 13.3% of 1,000,000
	if !approx(with.ProfessionalFees.Total, 133000, 0.01) {
		t.Errorf("Expected 133,000, got %f", with.ProfessionalFees.Total)
	}
}

func TestBenchmarkRateAndCouncilFallback(t *testing.T) {
	a := DefaultAssumptions()
	a.PropertyType = ColdStorage
	a.Location = "gold_coast"
	a.GrossFloorArea = 100

	b, err := Estimate(a)
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if b.ConstructionCosts.RatePerSqm != 2500 {
		t.Errorf("Expected cold storage typical rate 2,500, got %f", b.ConstructionCosts.RatePerSqm)
	}
	if b.Location != DefaultCouncil {
		t.Errorf("Expected fallback council %s, got %s", DefaultCouncil, b.Location)
	}
	// GFA under the DA threshold pays only the base fee
	if b.GovernmentCharges.DevelopmentApplication != 1547 {
		t.Errorf("Expected Brisbane base DA fee, got %f", b.GovernmentCharges.DevelopmentApplication)
	}
	if a.Location != "gold_coast" {
		t.Error("Estimate must not mutate the caller's assumptions")
	}
}

func TestZeroAreasProduceZeroPerSqm(t *testing.T) {
	b, err := Estimate(DefaultAssumptions())
	if err != nil {
		t.Fatalf("Estimate failed: %v", err)
	}
	if b.Summary.CostPerSqmGFA != 0 || b.Summary.CostPerSqmLand != 0 {
		t.Errorf("Expected zero per-sqm metrics, got %f / %f", b.Summary.CostPerSqmGFA, b.Summary.CostPerSqmLand)
	}
}

func TestFinanceCostsOnlyWhenIncluded(t *testing.T) {
	a := DefaultAssumptions()
	a.FinanceCosts = 100000
	off, _ := Estimate(a)
	a.IncludeFinanceCosts = true
	on, _ := Estimate(a)
	if !approx(on.Summary.TotalSoftCosts-off.Summary.TotalSoftCosts, 100000, 1e-6) {
		t.Errorf("Expected finance costs to add 100,000, diff %f", on.Summary.TotalSoftCosts-off.Summary.TotalSoftCosts)
	}
}

func TestEstimateRejectsInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		field string
		mut   func(*Assumptions)
	}{
		{"negative land area", "land_area_sqm", func(a *Assumptions) { a.LandAreaSqm = -1 }},
		{"negative gfa", "gross_floor_area", func(a *Assumptions) { a.GrossFloorArea = -10 }},
		{"contingency over 100", "design_contingency_pct", func(a *Assumptions) { a.DesignContingencyPct = 120 }},
		{"negative fee pct", "architect_pct", func(a *Assumptions) { a.Fees.ArchitectPct = -1 }},
		{"negative site works", "site_works.fencing", func(a *Assumptions) { a.SiteWorks.Fencing = -5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := DefaultAssumptions()
			tt.mut(&a)
			_, err := Estimate(a)
			if !errors.Is(err, fin.ErrInvalidAssumption) {
				t.Fatalf("Expected ErrInvalidAssumption, got %v", err)
			}
			var ae *fin.AssumptionError
			if errors.As(err, &ae) && ae.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, ae.Field)
			}
		})
	}
}

// With several bad fields, the first in declaration order is reported.
func TestValidateReportsFirstBadFieldInOrder(t *testing.T) {
	a := DefaultAssumptions()
	a.Fees.EnvironmentalPct = -1
	a.Fees.StructuralEngineerPct = 150
	a.Fees.GeotechnicalPct = -2
	a.SiteWorks.Signage = -1
	a.SiteWorks.Earthworks = -3
	for i := 0; i < 50; i++ {
		var ae *fin.AssumptionError
		if err := a.Validate(); !errors.As(err, &ae) || ae.Field != "structural_engineer_pct" {
			t.Fatalf("Run %d: expected structural_engineer_pct, got %v", i, err)
		}
	}

	a.Fees = DefaultFeeRates()
	for i := 0; i < 50; i++ {
		var ae *fin.AssumptionError
		if err := a.Validate(); !errors.As(err, &ae) || ae.Field != "site_works.earthworks" {
			t.Fatalf("Run %d: expected site_works.earthworks, got %v", i, err)
		}
	}
}

// Roll-up identity over randomized positive inputs.
func TestRollUpIdentity(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 200; i++ {
		a := DefaultAssumptions()
		a.LandAreaSqm = rng.Float64() * 50000
		a.LandPricePerSqm = rng.Float64() * 1000
		a.GrossFloorArea = rng.Float64() * 20000
		a.ConstructionRatePerSqm = rng.Float64() * 3000
		a.SiteWorks.Earthworks = rng.Float64() * 1e6
		a.MarketingCosts = rng.Float64() * 1e5
		a.IncludeFinanceCosts = i%2 == 0
		a.FinanceCosts = rng.Float64() * 1e6

		b, err := Estimate(a)
		if err != nil {
			t.Fatalf("iteration %d: %v", i, err)
		}
		s := b.Summary
		if s.TotalDevelopmentCost != s.TotalHardCosts+s.TotalSoftCosts {
			t.Fatalf("iteration %d: TDC %f != hard %f + soft %f", i, s.TotalDevelopmentCost, s.TotalHardCosts, s.TotalSoftCosts)
		}
	}
}

func TestSummaryTable(t *testing.T) {
	a := SunshineCoastWarehouse()
	a.IncludeFinanceCosts = true
	a.FinanceCosts = 250000
	b, _ := Estimate(a)
	rows := SummaryTable(b)

	var sawFinance bool
	var total *float64
	for _, r := range rows {
		if r.Item == "Finance Costs" {
			sawFinance = true
		}
		if r.Item == "Total Development Cost" {
			total = r.Amount
		}
	}
	if !sawFinance {
		t.Error("Expected a Finance Costs row")
	}
	if total == nil || *total != b.Summary.TotalDevelopmentCost {
		t.Errorf("Total row mismatch: %v", total)
	}
	if rows[0].Category != "HARD COSTS" || rows[0].Amount != nil {
		t.Errorf("Expected HARD COSTS header first, got %+v", rows[0])
	}
}
