package loan

import (
	"time"

	"dev_feasibility/pkg/core/fin"
)

// DualPhaseTerms describes a construction facility refinanced into an
// investment loan at practical completion.
type DualPhaseTerms struct {
	TotalDevelopmentCost float64 `json:"total_development_cost"`
	CompletionValue      float64 `json:"completion_value"`
	DurationMonths       int     `json:"construction_duration_months"`

	ConstructionLTC              float64   `json:"construction_ltc"`
	ConstructionRate             float64   `json:"construction_rate"`
	ConstructionEstablishmentFee float64   `json:"construction_establishment_fee"`
	ConstructionLineFee          float64   `json:"construction_line_fee"`
	CapitalizeInterest           bool      `json:"capitalize_interest"`
	DrawCurve                    DrawCurve `json:"draw_schedule_type"`
	CustomDraws                  []float64 `json:"custom_draw_schedule,omitempty"`

	InvestmentLVR              float64   `json:"investment_lvr"`
	InvestmentRate             float64   `json:"investment_rate"`
	InvestmentTermYears        int       `json:"investment_term_years"`
	InterestOnlyYears          int       `json:"interest_only_years"`
	InvestmentEstablishmentFee float64   `json:"investment_establishment_fee"`
	StartDate                  time.Time `json:"start_date"`

	ExpectedAnnualNOI float64 `json:"expected_annual_noi"`
}

func DefaultDualPhaseTerms() DualPhaseTerms {
	c, i := DefaultConstructionTerms(), DefaultInvestmentTerms()
	return DualPhaseTerms{
		DurationMonths:               c.DurationMonths,
		ConstructionLTC:              c.LoanToCostPct,
		ConstructionRate:             c.InterestRateAnnual,
		ConstructionEstablishmentFee: c.EstablishmentFeePct,
		ConstructionLineFee:          c.LineFeePct,
		CapitalizeInterest:           true,
		DrawCurve:                    DrawSCurve,
		InvestmentLVR:                i.LoanToValuePct,
		InvestmentRate:               i.InterestRateAnnual,
		InvestmentTermYears:          i.LoanTermYears,
		InterestOnlyYears:            i.InterestOnlyYears,
		InvestmentEstablishmentFee:   i.EstablishmentFeePct,
	}
}

// SunshineCoastExample is a 14-month warehouse build refinanced at 60% LVR.
func SunshineCoastExample() DualPhaseTerms {
	t := DefaultDualPhaseTerms()
	t.TotalDevelopmentCost = 8_500_000
	t.CompletionValue = 10_200_000
	t.DurationMonths = 14
	t.ConstructionLTC = 65
	t.ConstructionRate = 8.5
	t.InvestmentLVR = 60
	t.InvestmentRate = 6.75
	t.InvestmentTermYears = 25
	t.InterestOnlyYears = 5
	t.ExpectedAnnualNOI = 650_000
	return t
}

func (t DualPhaseTerms) Construction() ConstructionTerms {
	return ConstructionTerms{
		TotalDevelopmentCost: t.TotalDevelopmentCost,
		DurationMonths:       t.DurationMonths,
		LoanToCostPct:        t.ConstructionLTC,
		InterestRateAnnual:   t.ConstructionRate,
		EstablishmentFeePct:  t.ConstructionEstablishmentFee,
		LineFeePct:           t.ConstructionLineFee,
		CapitalizeInterest:   t.CapitalizeInterest,
		DrawCurve:            t.DrawCurve,
		CustomDraws:          t.CustomDraws,
	}
}

func (t DualPhaseTerms) Investment() InvestmentTerms {
	return InvestmentTerms{
		PropertyValue:       t.CompletionValue,
		LoanToValuePct:      t.InvestmentLVR,
		InterestRateAnnual:  t.InvestmentRate,
		LoanTermYears:       t.InvestmentTermYears,
		InterestOnlyYears:   t.InterestOnlyYears,
		EstablishmentFeePct: t.InvestmentEstablishmentFee,
		StartDate:           t.StartDate,
	}
}

// =============================================================================
// RESULT
// =============================================================================

type ProjectSummary struct {
	TotalDevelopmentCost float64 `json:"total_development_cost"`
	CompletionValue      float64 `json:"completion_value"`
	DevelopmentMargin    float64 `json:"development_margin"`
	DevelopmentMarginPct float64 `json:"development_margin_pct"`
}

type RefinanceAnalysis struct {
	ConstructionPayoff       float64 `json:"construction_loan_payoff"`
	InvestmentLoanAmount     float64 `json:"investment_loan_amount"`
	CashDifference           float64 `json:"cash_difference"`
	Feasible                 bool    `json:"refinance_feasible"`
	EquityRelease            float64 `json:"equity_release"`
	AdditionalEquityRequired float64 `json:"additional_equity_required"`
}

type EquityAnalysis struct {
	InitialEquity         float64 `json:"initial_equity_required"`
	AdditionalForInterest float64 `json:"additional_for_interest"`
	TotalEquityRequired   float64 `json:"total_equity_required"`
	EquityPctOfCost       float64 `json:"equity_pct_of_cost"`
	EquityRelease         float64 `json:"equity_release_at_refinance"`
	NetEquityInvested     float64 `json:"net_equity_invested"`
}

type DebtMetrics struct {
	ConstructionLTC float64 `json:"construction_ltc"`
	InvestmentLVR   float64 `json:"investment_lvr"`
	DSCR            float64 `json:"dscr"`
	DSCRAdequate    bool    `json:"dscr_adequate"`
}

type FinancingCosts struct {
	ConstructionInterest float64 `json:"construction_interest"`
	ConstructionFees     float64 `json:"construction_fees"`
	InvestmentFees       float64 `json:"investment_fees"`
	TotalUpfrontCosts    float64 `json:"total_upfront_costs"`
}

// DualPhaseResult is the full refinance reconciliation.
type DualPhaseResult struct {
	Project        ProjectSummary       `json:"project_summary"`
	Construction   *ConstructionSummary `json:"construction_phase"`
	Investment     *InvestmentSummary   `json:"investment_phase"`
	Refinance      RefinanceAnalysis    `json:"refinance_analysis"`
	Equity         EquityAnalysis       `json:"equity_analysis"`
	Debt           DebtMetrics          `json:"debt_metrics"`
	FinancingCosts FinancingCosts       `json:"total_financing_costs"`
}

// AnalyzeDualPhase runs both loans and reconciles the refinance.
//
// FORMULA:
//
//	CashDifference = InvestmentLoan − ConstructionPayoff
//	Feasible       = CashDifference ≥ 0
func AnalyzeDualPhase(t DualPhaseTerms) (*DualPhaseResult, error) {
	if err := fin.FirstError(
		fin.NonNegative("total_development_cost", t.TotalDevelopmentCost),
		fin.NonNegative("completion_value", t.CompletionValue),
		fin.NonNegative("expected_annual_noi", t.ExpectedAnnualNOI),
	); err != nil {
		return nil, err
	}
	construction, err := NewConstructionLoan(t.Construction())
	if err != nil {
		return nil, err
	}
	investment, err := NewInvestmentLoan(t.Investment())
	if err != nil {
		return nil, err
	}

	cs := construction.Summary()
	is := investment.Summary()

	payoff := cs.Totals.LoanAtCompletion
	refinanced := is.Parameters.LoanAmount
	diff := refinanced - payoff

	r := &DualPhaseResult{
		Project: ProjectSummary{
			TotalDevelopmentCost: t.TotalDevelopmentCost,
			CompletionValue:      t.CompletionValue,
			DevelopmentMargin:    t.CompletionValue - t.TotalDevelopmentCost,
		},
		Construction: cs,
		Investment:   is,
		Refinance: RefinanceAnalysis{
			ConstructionPayoff:   payoff,
			InvestmentLoanAmount: refinanced,
			CashDifference:       diff,
			Feasible:             diff >= 0,
		},
	}
	if t.TotalDevelopmentCost > 0 {
		r.Project.DevelopmentMarginPct = r.Project.DevelopmentMargin / t.TotalDevelopmentCost * 100
	}
	if diff > 0 {
		r.Refinance.EquityRelease = diff
	} else {
		r.Refinance.AdditionalEquityRequired = -diff
	}

	e := &r.Equity
	e.InitialEquity = t.TotalDevelopmentCost - construction.LoanAmount()
	if !t.CapitalizeInterest {
		e.AdditionalForInterest = cs.Interest.TotalInterest
	}
	e.TotalEquityRequired = e.InitialEquity + e.AdditionalForInterest
	if t.TotalDevelopmentCost > 0 {
		e.EquityPctOfCost = e.TotalEquityRequired / t.TotalDevelopmentCost * 100
	}
	e.EquityRelease = r.Refinance.EquityRelease
	e.NetEquityInvested = e.TotalEquityRequired - e.EquityRelease

	r.Debt = DebtMetrics{
		ConstructionLTC: t.ConstructionLTC,
		InvestmentLVR:   t.InvestmentLVR,
	}
	if t.ExpectedAnnualNOI > 0 {
		r.Debt.DSCR = investment.DSCR(t.ExpectedAnnualNOI)
	}
	r.Debt.DSCRAdequate = r.Debt.DSCR >= DSCRThreshold

	r.FinancingCosts = FinancingCosts{
		ConstructionInterest: cs.Interest.TotalInterest,
		ConstructionFees:     cs.Fees.TotalFees,
		InvestmentFees:       is.Totals.EstablishmentFee,
		TotalUpfrontCosts:    cs.Fees.TotalFees + is.Totals.EstablishmentFee,
	}
	return r, nil
}

// ComparisonRow is one line of the side-by-side loan table. Value is a
// float64, an int or a "Yes"/"No" string.
type ComparisonRow struct {
	Category  string      `json:"category"`
	Parameter string      `json:"parameter"`
	Value     interface{} `json:"value"`
	Unit      string      `json:"unit"`
}

// ComparisonTable flattens the result for display.
func (r *DualPhaseResult) ComparisonTable() []ComparisonRow {
	cp, ip := r.Construction.Parameters, r.Investment.Parameters
	feasible := "No"
	if r.Refinance.Feasible {
		feasible = "Yes"
	}
	const (
		construction = "Construction Loan"
		investment   = "Investment Loan"
		refinance    = "Refinance Analysis"
		equity       = "Equity Analysis"
	)
	return []ComparisonRow{
		{construction, "Loan Amount", cp.LoanAmount, "AUD"},
		{construction, "LTC Ratio", cp.LoanToCostPct, "%"},
		{construction, "Interest Rate", cp.InterestRateAnnual, "% p.a."},
		{construction, "Duration", cp.DurationMonths, "months"},
		{construction, "Total Interest", r.Construction.Interest.TotalInterest, "AUD"},
		{construction, "Total Fees", r.Construction.Fees.TotalFees, "AUD"},
		{construction, "Loan at Completion", r.Construction.Totals.LoanAtCompletion, "AUD"},

		{investment, "Loan Amount", ip.LoanAmount, "AUD"},
		{investment, "LVR Ratio", ip.LoanToValuePct, "%"},
		{investment, "Interest Rate", ip.InterestRateAnnual, "% p.a."},
		{investment, "Loan Term", ip.LoanTermYears, "years"},
		{investment, "IO Period", ip.InterestOnlyYears, "years"},
		{investment, "Monthly IO Payment", r.Investment.Payments.MonthlyIO, "AUD"},
		{investment, "Monthly P&I Payment", r.Investment.Payments.MonthlyPI, "AUD"},

		{refinance, "Cash Out / Shortfall", r.Refinance.CashDifference, "AUD"},
		{refinance, "Refinance Feasible", feasible, ""},

		{equity, "Total Equity Required", r.Equity.TotalEquityRequired, "AUD"},
		{equity, "Equity % of Cost", r.Equity.EquityPctOfCost, "%"},
	}
}
