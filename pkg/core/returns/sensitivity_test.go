package returns

import (
	"errors"
	"math"
	"testing"

	"dev_feasibility/pkg/core/fin"
)

func TestThreeScenarios(t *testing.T) {
	results, err := exampleModel(t).ThreeScenarios()
	if err != nil {
		t.Fatalf("ThreeScenarios failed: %v", err)
	}
	pess, base, opt := results[ScenarioPessimistic], results[ScenarioBase], results[ScenarioOptimistic]
	if pess == nil || base == nil || opt == nil {
		t.Fatalf("Missing scenario in %v", results)
	}
	if pess.IRR == nil || base.IRR == nil || opt.IRR == nil {
		t.Fatal("Expected all three IRRs to be defined")
	}
	if !(*pess.IRR <= *base.IRR && *base.IRR <= *opt.IRR) {
		t.Errorf("Scenario ordering broken: %f / %f / %f", *pess.IRR, *base.IRR, *opt.IRR)
	}
	if !approx(*pess.IRR, 2.44785, 1e-3) || !approx(*opt.IRR, 25.24135, 1e-3) {
		t.Errorf("Unexpected scenario IRRs %f / %f", *pess.IRR, *opt.IRR)
	}
}

func TestScenarioOrderingAcrossInputs(t *testing.T) {
	for _, rent := range []float64{110000, 150000, 200000} {
		for _, months := range []int{6, 12, 24} {
			p := ExampleProject()
			p.MonthlyRent = rent
			p.ConstructionMonths = months
			m, _ := NewModel(p)
			res, err := m.ThreeScenarios()
			if err != nil {
				t.Fatalf("rent %f months %d: %v", rent, months, err)
			}
			pess, base, opt := res[ScenarioPessimistic].IRR, res[ScenarioBase].IRR, res[ScenarioOptimistic].IRR
			if pess == nil || base == nil || opt == nil {
				continue
			}
			if *pess > *base || *base > *opt {
				t.Errorf("rent %f months %d: %f / %f / %f", rent, months, *pess, *base, *opt)
			}
		}
	}
}

func TestScenarioApplyClamps(t *testing.T) {
	p := ExampleProject()
	p.OccupancyRate = 99
	p.ExitCapRate = 0.3
	opt, _ := ScenarioByName(ScenarioOptimistic)
	got := opt.Apply(p)
	if got.OccupancyRate != 100 {
		t.Errorf("Occupancy should cap at 100, got %f", got.OccupancyRate)
	}
	if got.ExitCapRate != 0 {
		t.Errorf("Cap rate should floor at 0, got %f", got.ExitCapRate)
	}
	if p.OccupancyRate != 99 {
		t.Error("Apply must not modify its input")
	}
}

func TestSensitivitySweep(t *testing.T) {
	m := exampleModel(t)
	s, err := m.Sensitivity(VarRent, 30, 11)
	if err != nil {
		t.Fatalf("Sensitivity failed: %v", err)
	}
	if len(s.Adjustments) != 11 || len(s.IRR) != 11 {
		t.Fatalf("Expected 11 points, got %d/%d", len(s.Adjustments), len(s.IRR))
	}
	if s.Adjustments[0] != -30 || s.Adjustments[5] != 0 || s.Adjustments[10] != 30 {
		t.Errorf("Unexpected adjustments %v", s.Adjustments)
	}
	base, _ := m.Returns()
	if s.IRR[5] == nil || !approx(*s.IRR[5], *base.IRR, 1e-9) {
		t.Errorf("Zero adjustment should reproduce base IRR")
	}
	for i := 1; i < len(s.IRR); i++ {
		if s.IRR[i] != nil && s.IRR[i-1] != nil && *s.IRR[i] < *s.IRR[i-1] {
			t.Errorf("IRR should rise with rent at step %d", i)
		}
	}
	if lo, hi, ok := s.Range(); !ok || hi <= lo {
		t.Errorf("Expected a positive IRR range, got %f..%f", lo, hi)
	}
}

func TestSensitivityRejectsBadInput(t *testing.T) {
	m := exampleModel(t)
	if _, err := m.Sensitivity("vacancy", 20, 5); !errors.Is(err, fin.ErrInvalidAssumption) {
		t.Errorf("Expected unknown variable to be rejected, got %v", err)
	}
	if _, err := m.Sensitivity(VarRent, 20, 1); !errors.Is(err, fin.ErrInvalidAssumption) {
		t.Errorf("Expected single step to be rejected, got %v", err)
	}
	for _, steps := range []int{MaxSensitivitySteps + 1, 1 << 62} {
		var ae *fin.AssumptionError
		if _, err := m.Sensitivity(VarRent, 20, steps); !errors.As(err, &ae) || ae.Field != "steps" {
			t.Errorf("Expected %d steps to be rejected on steps, got %v", steps, err)
		}
	}
	r, err := m.Sensitivity(VarRent, 20, MaxSensitivitySteps)
	if err != nil {
		t.Fatalf("Expected %d steps to be accepted: %v", MaxSensitivitySteps, err)
	}
	if len(r.IRR) != MaxSensitivitySteps {
		t.Errorf("Expected %d points, got %d", MaxSensitivitySteps, len(r.IRR))
	}
}

func TestTornadoRanking(t *testing.T) {
	m := exampleModel(t)
	tornado, err := m.Tornado(20)
	if err != nil {
		t.Fatalf("Tornado failed: %v", err)
	}
	if len(tornado.TornadoData) != len(Variables) {
		t.Fatalf("Expected %d items, got %d", len(Variables), len(tornado.TornadoData))
	}
	for i := 1; i < len(tornado.TornadoData); i++ {
		if tornado.TornadoData[i].Impact > tornado.TornadoData[i-1].Impact {
			t.Errorf("Item %d out of order", i)
		}
	}

	top, ok := tornado.MostCritical()
	if !ok || top.Variable != VarRent {
		t.Errorf("Expected rent to be most critical, got %+v", top)
	}
	if !approx(top.Impact, 12.6243, 1e-3) {
		t.Errorf("Expected rent impact 12.62, got %f", top.Impact)
	}
	if top.LowLabel != "-20%" || top.HighLabel != "+20%" {
		t.Errorf("Unexpected labels %s / %s", top.LowLabel, top.HighLabel)
	}
	for _, item := range tornado.TornadoData {
		if item.LowIRR == nil || item.HighIRR == nil {
			continue
		}
		if want := math.Abs(*item.HighIRR - *item.LowIRR); item.Impact != want {
			t.Errorf("%s: impact %f, want %f", item.Variable, item.Impact, want)
		}
	}

	again, _ := m.Tornado(20)
	for i := range tornado.TornadoData {
		if tornado.TornadoData[i].Variable != again.TornadoData[i].Variable {
			t.Fatalf("Ranking changed between runs at %d", i)
		}
	}
}

func TestSensitivityBand(t *testing.T) {
	tests := []struct {
		impact float64
		want   string
	}{
		{12.6, "High"}, {10, "Medium"}, {5.4, "Medium"}, {5, "Low"}, {0, "Low"},
	}
	for _, tt := range tests {
		if got := SensitivityBand(tt.impact); got != tt.want {
			t.Errorf("SensitivityBand(%f) = %s, want %s", tt.impact, got, tt.want)
		}
	}
}
