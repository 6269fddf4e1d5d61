// Package returns builds the annual equity cash-flow ledger of a development
// (development, operating years, exit sale) and derives investment returns
// from it, along with scenario, sensitivity and tornado sweeps.
package returns

import "dev_feasibility/pkg/core/fin"

const (
	// DiscountRate is the NPV hurdle.
	DiscountRate = 0.12

	softCostPct          = 0.07
	constructionSpread   = 0.015
	defaultDurationMonth = 12
)

// ProjectParams are the assumptions behind one returns run. Percentages are
// whole numbers (6.0 = 6%).
type ProjectParams struct {
	PurchasePrice         float64 `json:"purchase_price"`
	AcquisitionCosts      float64 `json:"acquisition_costs"`
	ConstructionCost      float64 `json:"construction_cost"`
	ConstructionMonths    int     `json:"construction_duration_months"`
	ContingencyPct        float64 `json:"contingency_percentage"`
	EquityPct             float64 `json:"equity_percentage"`
	DebtPct               float64 `json:"debt_percentage"`
	InterestRate          float64 `json:"interest_rate"`
	LoanTermYears         int     `json:"loan_term_years"`
	MonthlyRent           float64 `json:"estimated_monthly_rent"`
	RentGrowthRate        float64 `json:"rent_growth_rate"`
	OccupancyRate         float64 `json:"occupancy_rate"`
	OperatingExpenseRatio float64 `json:"operating_expense_ratio"`
	HoldingPeriodYears    int     `json:"holding_period_years"`
	ExitCapRate           float64 `json:"exit_cap_rate"`
}

// DefaultProjectParams carries every non-money default.
func DefaultProjectParams() ProjectParams {
	return ProjectParams{
		ConstructionMonths:    defaultDurationMonth,
		ContingencyPct:        10,
		EquityPct:             30,
		DebtPct:               70,
		InterestRate:          6.0,
		LoanTermYears:         25,
		RentGrowthRate:        3.0,
		OccupancyRate:         95,
		OperatingExpenseRatio: 30,
		HoldingPeriodYears:    10,
		ExitCapRate:           6.5,
	}
}

// ExampleProject is a $10M build on a $5M site held for ten years.
func ExampleProject() ProjectParams {
	p := DefaultProjectParams()
	p.PurchasePrice = 5_000_000
	p.AcquisitionCosts = 250_000
	p.ConstructionCost = 10_000_000
	p.ConstructionMonths = 18
	p.MonthlyRent = 150_000
	return p
}

// Validate rejects input outside the modelled domain.
func (p ProjectParams) Validate() error {
	if p.HoldingPeriodYears <= 0 {
		return fin.Invalid("holding_period_years", float64(p.HoldingPeriodYears), "must be at least one year")
	}
	if p.ConstructionMonths <= 0 {
		return fin.Invalid("construction_duration_months", float64(p.ConstructionMonths), "must be at least one month")
	}
	if p.LoanTermYears <= 0 {
		return fin.Invalid("loan_term_years", float64(p.LoanTermYears), "must be at least one year")
	}
	return fin.FirstError(
		fin.NonNegative("purchase_price", p.PurchasePrice),
		fin.NonNegative("acquisition_costs", p.AcquisitionCosts),
		fin.NonNegative("construction_cost", p.ConstructionCost),
		fin.NonNegative("estimated_monthly_rent", p.MonthlyRent),
		fin.Within("contingency_percentage", p.ContingencyPct, 0, 100),
		fin.Within("equity_percentage", p.EquityPct, 0, 100),
		fin.Within("debt_percentage", p.DebtPct, 0, 100),
		fin.Within("interest_rate", p.InterestRate, 0, 100),
		fin.Within("occupancy_rate", p.OccupancyRate, 0, 100),
		fin.Within("operating_expense_ratio", p.OperatingExpenseRatio, 0, 100),
		fin.NonNegative("exit_cap_rate", p.ExitCapRate),
		fin.Within("rent_growth_rate", p.RentGrowthRate, -100, 100),
	)
}
