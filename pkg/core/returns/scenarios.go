package returns

import "math"

// Scenario names.
const (
	ScenarioPessimistic = "pessimistic"
	ScenarioBase        = "base"
	ScenarioOptimistic  = "optimistic"
)

// ScenarioAdjustment shifts the four market-sensitive inputs. Multipliers
// scale; deltas are percentage points.
type ScenarioAdjustment struct {
	Name                 string  `json:"name"`
	ConstructionMultiple float64 `json:"construction_multiplier"`
	RentMultiple         float64 `json:"rent_multiplier"`
	OccupancyDelta       float64 `json:"occupancy_delta"`
	ExitCapDelta         float64 `json:"exit_cap_delta"`
}

// Scenarios are ordered pessimistic, base, optimistic.
var Scenarios = []ScenarioAdjustment{
	{ScenarioPessimistic, 1.15, 0.85, -5, 1.0},
	{ScenarioBase, 1, 1, 0, 0},
	{ScenarioOptimistic, 0.90, 1.20, 3, -0.5},
}

// ScenarioByName looks up one of the three named scenarios.
func ScenarioByName(name string) (ScenarioAdjustment, bool) {
	for _, s := range Scenarios {
		if s.Name == name {
			return s, true
		}
	}
	return ScenarioAdjustment{}, false
}

// Apply returns adjusted params. Occupancy stays within [0, 100] and the cap
// rate never goes negative.
func (a ScenarioAdjustment) Apply(p ProjectParams) ProjectParams {
	p.ConstructionCost *= a.ConstructionMultiple
	p.MonthlyRent *= a.RentMultiple
	p.OccupancyRate = clamp(p.OccupancyRate+a.OccupancyDelta, 0, 100)
	p.ExitCapRate = math.Max(0, p.ExitCapRate+a.ExitCapDelta)
	return p
}

func clamp(v, lo, hi float64) float64 { return math.Min(hi, math.Max(lo, v)) }

// Scenario reruns the full engine under one adjustment.
func (m *Model) Scenario(a ScenarioAdjustment) (*Result, error) {
	adjusted, err := NewModel(a.Apply(m.p))
	if err != nil {
		return nil, err
	}
	return adjusted.Returns()
}

// ThreeScenarios runs pessimistic, base and optimistic independently.
func (m *Model) ThreeScenarios() (map[string]*Result, error) {
	out := make(map[string]*Result, len(Scenarios))
	for _, s := range Scenarios {
		r, err := m.Scenario(s)
		if err != nil {
			return nil, err
		}
		out[s.Name] = r
	}
	return out, nil
}
