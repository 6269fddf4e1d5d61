package returns

import (
	"fmt"
	"math"
	"sort"

	"dev_feasibility/pkg/core/fin"
)

// Sensitivity variables.
const (
	VarPurchasePrice    = "purchase_price"
	VarConstructionCost = "construction_cost"
	VarRent             = "rent"
	VarOccupancy        = "occupancy"
	VarExitCap          = "exit_cap"
)

// Variables is the fixed tornado set, in display order.
var Variables = []string{VarPurchasePrice, VarConstructionCost, VarRent, VarOccupancy, VarExitCap}

var variableLabels = map[string]string{
	VarPurchasePrice:    "Land Cost",
	VarConstructionCost: "Construction Cost",
	VarRent:             "Rental Income",
	VarOccupancy:        "Occupancy Rate",
	VarExitCap:          "Exit Cap Rate",
}

// VariableLabel is the display name of a sensitivity variable.
func VariableLabel(v string) string {
	if l, ok := variableLabels[v]; ok {
		return l
	}
	return v
}

// perturb scales one input by (1 + pct/100). Occupancy is capped at 100.
func perturb(p ProjectParams, variable string, pct float64) (ProjectParams, error) {
	f := 1 + pct/100
	switch variable {
	case VarPurchasePrice:
		p.PurchasePrice *= f
	case VarConstructionCost:
		p.ConstructionCost *= f
	case VarRent:
		p.MonthlyRent *= f
	case VarOccupancy:
		p.OccupancyRate = clamp(p.OccupancyRate*f, 0, 100)
	case VarExitCap:
		p.ExitCapRate *= f
	default:
		return p, fin.Invalid("variable", 0, fmt.Sprintf("unknown sensitivity variable %q", variable))
	}
	return p, nil
}

// irrAt is the IRR with one variable moved, nil when undefined.
func (m *Model) irrAt(variable string, pct float64) (*float64, error) {
	p, err := perturb(m.p, variable, pct)
	if err != nil {
		return nil, err
	}
	moved, err := NewModel(p)
	if err != nil {
		return nil, err
	}
	r, err := moved.Returns()
	if err != nil {
		return nil, err
	}
	return r.IRR, nil
}

// =============================================================================
// ONE-VARIABLE SWEEP
// =============================================================================

type SensitivityResult struct {
	Variable    string     `json:"variable"`
	Adjustments []float64  `json:"adjustments"`
	IRR         []*float64 `json:"irr"`
}

// Range is the IRR spread over defined points, and false if fewer than two
// points are defined.
func (s *SensitivityResult) Range() (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	n := 0
	for _, v := range s.IRR {
		if v == nil {
			continue
		}
		lo, hi = math.Min(lo, *v), math.Max(hi, *v)
		n++
	}
	return lo, hi, n >= 2
}

// MaxSensitivitySteps bounds a single sweep.
const MaxSensitivitySteps = 101

// Sensitivity sweeps one variable over `steps` evenly spaced adjustments in
// [−rangePct, +rangePct].
func (m *Model) Sensitivity(variable string, rangePct float64, steps int) (*SensitivityResult, error) {
	if steps < 2 {
		return nil, fin.Invalid("steps", float64(steps), "need at least two points")
	}
	if steps > MaxSensitivitySteps {
		return nil, fin.Invalid("steps", float64(steps), fmt.Sprintf("at most %d points", MaxSensitivitySteps))
	}
	if err := fin.Within("range_pct", rangePct, 0, 100); err != nil {
		return nil, err
	}
	out := &SensitivityResult{
		Variable:    variable,
		Adjustments: make([]float64, steps),
		IRR:         make([]*float64, steps),
	}
	for i := 0; i < steps; i++ {
		adj := -rangePct + 2*rangePct*float64(i)/float64(steps-1)
		irr, err := m.irrAt(variable, adj)
		if err != nil {
			return nil, err
		}
		out.Adjustments[i] = adj
		out.IRR[i] = irr
	}
	return out, nil
}

// =============================================================================
// TORNADO
// =============================================================================

type TornadoItem struct {
	Variable  string   `json:"variable"`
	LowIRR    *float64 `json:"low_irr"`
	HighIRR   *float64 `json:"high_irr"`
	Impact    float64  `json:"impact"`
	LowLabel  string   `json:"low_label"`
	HighLabel string   `json:"high_label"`
}

type TornadoResult struct {
	BaseIRR     *float64      `json:"base_irr"`
	TornadoData []TornadoItem `json:"tornado_data"`
}

// Tornado moves every variable to ±rangePct and ranks by |high − low| IRR.
// Impact is 0 when either end has no IRR. Ties keep display order.
func (m *Model) Tornado(rangePct float64) (*TornadoResult, error) {
	if err := fin.Within("range_pct", rangePct, 0, 100); err != nil {
		return nil, err
	}
	base, err := m.Returns()
	if err != nil {
		return nil, err
	}

	items := make([]TornadoItem, 0, len(Variables))
	for _, v := range Variables {
		low, err := m.irrAt(v, -rangePct)
		if err != nil {
			return nil, err
		}
		high, err := m.irrAt(v, rangePct)
		if err != nil {
			return nil, err
		}
		item := TornadoItem{
			Variable:  v,
			LowIRR:    low,
			HighIRR:   high,
			LowLabel:  fmt.Sprintf("-%g%%", rangePct),
			HighLabel: fmt.Sprintf("+%g%%", rangePct),
		}
		if low != nil && high != nil {
			item.Impact = math.Abs(*high - *low)
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Impact > items[j].Impact })

	return &TornadoResult{BaseIRR: base.IRR, TornadoData: items}, nil
}

// MostCritical is the variable with the largest IRR swing.
func (t *TornadoResult) MostCritical() (TornadoItem, bool) {
	if len(t.TornadoData) == 0 {
		return TornadoItem{}, false
	}
	return t.TornadoData[0], true
}

// SensitivityBand buckets a tornado impact in IRR points.
func SensitivityBand(impact float64) string {
	switch {
	case impact > 10:
		return "High"
	case impact > 5:
		return "Medium"
	default:
		return "Low"
	}
}
