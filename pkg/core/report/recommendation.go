// Package report turns a feasibility analysis into an investment
// recommendation and exportable PDF and XLSX documents.
package report

import (
	"fmt"

	"dev_feasibility/pkg/core/feasibility"
	"dev_feasibility/pkg/core/returns"
	"dev_feasibility/pkg/core/utils"
)

// Recommendation grades.
const (
	StrongBuy = "STRONG BUY"
	Buy       = "BUY"
	Hold      = "HOLD"
	Pass      = "PASS"
)

// Hurdles used by the metric assessments.
const (
	TargetIRR            = 15.0
	TargetEquityMultiple = 2.0
	MinDSCR              = 1.25
)

// Recommend grades a project on IRR alone. An undefined IRR is a pass.
//
//	IRR ≥ 20 → STRONG BUY, ≥ 15 → BUY, ≥ 12 → HOLD, else PASS
func Recommend(irr *float64) string {
	if irr == nil {
		return Pass
	}
	switch {
	case *irr >= 20:
		return StrongBuy
	case *irr >= 15:
		return Buy
	case *irr >= 12:
		return Hold
	default:
		return Pass
	}
}

// RecommendationColor is the RGB used for the grade banner.
func RecommendationColor(grade string) (r, g, b int) {
	switch grade {
	case StrongBuy:
		return 0x45, 0xB7, 0xD1
	case Buy:
		return 0x4E, 0xCD, 0xC4
	case Hold:
		return 0xFF, 0xA0, 0x7A
	default:
		return 0xFF, 0x6B, 0x6B
	}
}

// Conclusion is the closing paragraph for a grade.
func Conclusion(grade string) string {
	switch grade {
	case StrongBuy:
		return "The strong projected returns and manageable risk profile make this a compelling opportunity. Proceed to final due diligence and contract negotiation."
	case Buy:
		return "The projected returns meet the investment criteria. Execution risks remain, but the fundamental opportunity is sound. Proceed while monitoring the key assumptions."
	case Hold:
		return "The projected returns are marginally acceptable. Look for cost reductions or revenue upside before proceeding, and negotiate terms further."
	default:
		return "The projected returns do not meet the investment criteria at current assumptions. Pass, or substantially renegotiate cost or revenue terms."
	}
}

// MetricRow is one line of the key metrics table.
type MetricRow struct {
	Metric     string `json:"metric"`
	Value      string `json:"value"`
	Assessment string `json:"assessment"`
}

func assess(ok bool, good, bad string) string {
	if ok {
		return good
	}
	return bad
}

// KeyMetrics formats the headline returns with pass/fail assessments.
func KeyMetrics(r *returns.Result) []MetricRow {
	irrOK := r.IRR != nil && *r.IRR >= TargetIRR
	npvOK := r.NPV != nil && *r.NPV > 0
	emOK := r.EquityMultiple != nil && *r.EquityMultiple >= TargetEquityMultiple
	dscrOK := r.AvgDSCR != nil && *r.AvgDSCR >= MinDSCR

	dscr := "N/A"
	if r.AvgDSCR != nil {
		dscr = fmt.Sprintf("%.2fx", *r.AvgDSCR)
	}
	return []MetricRow{
		{"IRR", utils.FormatPercentage(r.IRR), assess(irrOK, "Strong", "Below Target")},
		{"NPV", utils.FormatCurrency(r.NPV), assess(npvOK, "Positive", "Negative")},
		{"Equity Multiple", utils.FormatMultiple(r.EquityMultiple), assess(emOK, "Good", "Below 2x")},
		{"Equity Required", utils.Money(r.TotalEquityInvested), ""},
		{"Total Profit", utils.Money(r.TotalProfit), ""},
		{"DSCR (Avg)", dscr, assess(dscrOK, "Healthy", "Low")},
	}
}

type RiskRow struct {
	Category    string `json:"category"`
	Probability string `json:"probability"`
	Impact      string `json:"impact"`
	Mitigation  string `json:"mitigation"`
}

// RiskMatrix is the standard development risk register. When a tornado is
// available the impact of the matching variable is taken from its band.
func RiskMatrix(t *returns.TornadoResult) []RiskRow {
	rows := []RiskRow{
		{"Construction Cost Overrun", "Medium", "High", "Fixed-price contracts, contingency buffer"},
		{"Market Rental Decline", "Low", "High", "Conservative rent assumptions, multi-tenant strategy"},
		{"Financing Risk", "Low", "Medium", "Pre-arranged facilities, strong covenant"},
		{"Timing/Delay Risk", "Medium", "Medium", "Experienced contractor, buffer in schedule"},
		{"Market Competition", "Medium", "Low", "Strong location, quality product"},
	}
	if t == nil {
		return rows
	}
	byVariable := map[string]int{returns.VarConstructionCost: 0, returns.VarRent: 1}
	for _, item := range t.TornadoData {
		if i, ok := byVariable[item.Variable]; ok {
			rows[i].Impact = returns.SensitivityBand(item.Impact)
		}
	}
	return rows
}

// ScenarioAssumptions describes each named scenario in words.
func ScenarioAssumptions() []string {
	out := make([]string, 0, len(returns.Scenarios))
	for _, s := range returns.Scenarios {
		if s.Name == returns.ScenarioBase {
			out = append(out, "Base Case: current parameter assumptions")
			continue
		}
		out = append(out, fmt.Sprintf("%s: %+.0f%% construction cost, %+.0f%% rent, %+.0fpts occupancy, %+.1fpts exit cap",
			scenarioTitle(s.Name),
			(s.ConstructionMultiple-1)*100,
			(s.RentMultiple-1)*100,
			s.OccupancyDelta,
			s.ExitCapDelta))
	}
	return out
}

func scenarioTitle(name string) string {
	switch name {
	case returns.ScenarioPessimistic:
		return "Pessimistic"
	case returns.ScenarioOptimistic:
		return "Optimistic"
	default:
		return "Base Case"
	}
}

// Summary is the text-only digest shared by the PDF, XLSX and API.
type Summary struct {
	ProjectName    string      `json:"project_name"`
	Recommendation string      `json:"recommendation"`
	Conclusion     string      `json:"conclusion"`
	Metrics        []MetricRow `json:"metrics"`
	Risks          []RiskRow   `json:"risks"`
}

func Summarize(an *feasibility.Analysis) Summary {
	grade := Recommend(an.Returns.IRR)
	return Summary{
		ProjectName:    an.ProjectName,
		Recommendation: grade,
		Conclusion:     Conclusion(grade),
		Metrics:        KeyMetrics(an.Returns),
		Risks:          RiskMatrix(an.Tornado),
	}
}
