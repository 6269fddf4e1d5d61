package returns

import (
	"dev_feasibility/pkg/core/fin"
	"dev_feasibility/pkg/core/loan"
)

// Ledger period tags.
const (
	PeriodDevelopment = "Development"
	PeriodOperating   = "Operating"
	PeriodExit        = "Exit"
)

// Mobilization, peak and finishing shares for builds of up to a year.
var shortBuildProfile = []float64{0.05, 0.05, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.10, 0.075, 0.075}

type DevelopmentCost struct {
	LandCost             float64 `json:"land_cost"`
	AcquisitionCosts     float64 `json:"acquisition_costs"`
	TotalLand            float64 `json:"total_land"`
	HardCosts            float64 `json:"hard_costs"`
	Contingency          float64 `json:"contingency"`
	SoftCosts            float64 `json:"soft_costs"`
	TotalConstruction    float64 `json:"total_construction"`
	TotalDevelopmentCost float64 `json:"total_development_cost"`
}

// Financing rates are decimals.
type Financing struct {
	EquityRequired   float64 `json:"equity_required"`
	DebtAmount       float64 `json:"debt_amount"`
	ConstructionRate float64 `json:"construction_loan_rate"`
	PermanentRate    float64 `json:"permanent_loan_rate"`
	LoanTermYears    int     `json:"loan_term_years"`
}

type Draw struct {
	Month              int     `json:"month"`
	DrawPct            float64 `json:"draw_pct"`
	DrawAmount         float64 `json:"draw_amount"`
	CumulativeDraw     float64 `json:"cumulative_draw"`
	MonthlyInterest    float64 `json:"monthly_interest"`
	CumulativeInterest float64 `json:"cumulative_interest"`
	OutstandingBalance float64 `json:"outstanding_balance"`
}

// CashFlowEntry is one ledger row. Exit fields are set on the exit row only.
type CashFlowEntry struct {
	Year               int     `json:"year"`
	Period             string  `json:"period"`
	EquityInvested     float64 `json:"equity_invested"`
	NOI                float64 `json:"noi"`
	DebtService        float64 `json:"debt_service"`
	CashFlow           float64 `json:"cash_flow"`
	CumulativeCashFlow float64 `json:"cumulative_cash_flow"`
	ExitValue          float64 `json:"exit_value,omitempty"`
	LoanPayoff         float64 `json:"loan_payoff,omitempty"`
	EquityProceeds     float64 `json:"equity_proceeds,omitempty"`
}

type CashFlowModel struct {
	DevelopmentCosts      DevelopmentCost `json:"development_costs"`
	Financing             Financing       `json:"financing"`
	ConstructionDraws     []Draw          `json:"construction_draws"`
	CapitalizedInterest   float64         `json:"capitalized_interest"`
	TotalLoanAtCompletion float64         `json:"total_loan_at_completion"`
	AnnualCashFlows       []CashFlowEntry `json:"annual_cash_flows"`
	ExitValue             float64         `json:"exit_value"`
	RemainingLoan         float64         `json:"remaining_loan"`
	EquityProceeds        float64         `json:"equity_proceeds"`
}

// Result holds the return metrics. A nil metric is undefined for this ledger
// (no IRR root, no equity invested, no debt service).
type Result struct {
	IRR                 *float64       `json:"irr"`
	NPV                 *float64       `json:"npv"`
	EquityMultiple      *float64       `json:"equity_multiple"`
	CashOnCash          *float64       `json:"cash_on_cash_return"`
	AvgDSCR             *float64       `json:"avg_dscr"`
	ProfitMargin        *float64       `json:"profit_margin"`
	TotalEquityInvested float64        `json:"total_equity_invested"`
	TotalEquityReturned float64        `json:"total_equity_returned"`
	TotalProfit         float64        `json:"total_profit"`
	CashFlowModel       *CashFlowModel `json:"cash_flow_model"`
}

// Model is a validated, immutable set of project parameters. Every method
// recomputes from the parameters.
type Model struct {
	p ProjectParams
}

func NewModel(p ProjectParams) (*Model, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Model{p: p}, nil
}

func (m *Model) Params() ProjectParams { return m.p }

// =============================================================================
// DEVELOPMENT PHASE
// =============================================================================

// DevelopmentCost rolls up land and construction.
//
// FORMULA:
//
//	TotalConstruction = Hard × (1 + Contingency% + 7%)
//	TDC               = Land + Acquisition + TotalConstruction
func (m *Model) DevelopmentCost() DevelopmentCost {
	hard := m.p.ConstructionCost
	c := DevelopmentCost{
		LandCost:         m.p.PurchasePrice,
		AcquisitionCosts: m.p.AcquisitionCosts,
		TotalLand:        m.p.PurchasePrice + m.p.AcquisitionCosts,
		HardCosts:        hard,
		Contingency:      hard * m.p.ContingencyPct / 100,
		SoftCosts:        hard * softCostPct,
	}
	c.TotalConstruction = c.HardCosts + c.Contingency + c.SoftCosts
	c.TotalDevelopmentCost = c.TotalLand + c.TotalConstruction
	return c
}

// Financing splits TDC into equity and debt. The construction facility
// prices 150bps over the permanent rate.
func (m *Model) Financing(tdc float64) Financing {
	perm := m.p.InterestRate / 100
	return Financing{
		EquityRequired:   tdc * m.p.EquityPct / 100,
		DebtAmount:       tdc * m.p.DebtPct / 100,
		ConstructionRate: perm + constructionSpread,
		PermanentRate:    perm,
		LoanTermYears:    m.p.LoanTermYears,
	}
}

func (m *Model) drawProfile() []float64 {
	n := m.p.ConstructionMonths
	profile := make([]float64, n)
	if n <= len(shortBuildProfile) {
		copy(profile, shortBuildProfile[:n])
	} else {
		for i := range profile {
			profile[i] = 1.0 / float64(n)
		}
	}
	sum := 0.0
	for _, v := range profile {
		sum += v
	}
	for i := range profile {
		profile[i] /= sum
	}
	return profile
}

// ConstructionDraws draws total construction cost month by month. Interest
// accrues on the closing cumulative draw and is capitalized.
func (m *Model) ConstructionDraws() []Draw {
	costs := m.DevelopmentCost()
	rate := m.Financing(costs.TotalDevelopmentCost).ConstructionRate / 12

	profile := m.drawProfile()
	draws := make([]Draw, 0, len(profile))
	var drawn, interest float64
	for i, pct := range profile {
		amount := costs.TotalConstruction * pct
		drawn += amount
		monthly := drawn * rate
		interest += monthly
		draws = append(draws, Draw{
			Month:              i + 1,
			DrawPct:            pct * 100,
			DrawAmount:         amount,
			CumulativeDraw:     drawn,
			MonthlyInterest:    monthly,
			CumulativeInterest: interest,
			OutstandingBalance: drawn + interest,
		})
	}
	return draws
}

// =============================================================================
// OPERATING PHASE
// =============================================================================

// AnnualNOI returns holding+1 values. Index 0 is the stub year left after
// construction (zero when the build runs a year or more).
//
// FORMULA: NOI_y = Rent × 12 × (1+g)^y × Occupancy × (1 − Opex)
func (m *Model) AnnualNOI() []float64 {
	occupancy := m.p.OccupancyRate / 100
	margin := 1 - m.p.OperatingExpenseRatio/100
	growth := 1 + m.p.RentGrowthRate/100

	noi := make([]float64, m.p.HoldingPeriodYears+1)
	if stub := 12 - m.p.ConstructionMonths; stub > 0 {
		noi[0] = m.p.MonthlyRent * 12 * occupancy * float64(stub) / 12 * margin
	}
	rent := m.p.MonthlyRent * 12
	for y := 1; y < len(noi); y++ {
		rent *= growth
		noi[y] = rent * occupancy * margin
	}
	return noi
}

// permanentLoan amortizes the completion balance with no IO period.
func (m *Model) permanentLoan(balance float64) (loan.Amortization, error) {
	l, err := loan.NewInvestmentLoan(loan.InvestmentTerms{
		PropertyValue:      balance,
		LoanToValuePct:     100,
		InterestRateAnnual: m.p.InterestRate,
		LoanTermYears:      m.p.LoanTermYears,
	})
	if err != nil {
		return nil, err
	}
	return l.Schedule(), nil
}

// ExitValue capitalizes final-year NOI. A zero cap rate yields no value.
func (m *Model) ExitValue(finalNOI float64) float64 {
	if m.p.ExitCapRate == 0 {
		return 0
	}
	return finalNOI / (m.p.ExitCapRate / 100)
}

// =============================================================================
// LEDGER
// =============================================================================

// CashFlow builds the ledger: year 0 equity out, one operating row per
// holding year, then an exit row dated the final year whose cash flow is the
// sale proceeds net of the loan payoff. The final year's operating cash flow
// stays on its operating row.
func (m *Model) CashFlow() (*CashFlowModel, error) {
	costs := m.DevelopmentCost()
	financing := m.Financing(costs.TotalDevelopmentCost)
	draws := m.ConstructionDraws()
	capitalized := draws[len(draws)-1].CumulativeInterest
	completion := financing.DebtAmount + capitalized

	schedule, err := m.permanentLoan(completion)
	if err != nil {
		return nil, err
	}
	noi := m.AnnualNOI()
	holding := m.p.HoldingPeriodYears

	rows := make([]CashFlowEntry, 0, holding+2)
	cumulative := -financing.EquityRequired
	rows = append(rows, CashFlowEntry{
		Year:               0,
		Period:             PeriodDevelopment,
		EquityInvested:     -financing.EquityRequired,
		CashFlow:           -financing.EquityRequired,
		CumulativeCashFlow: cumulative,
	})

	for y := 1; y <= holding; y++ {
		debtService := schedule.YearDebtService(y)
		cf := noi[y] - debtService
		cumulative += cf
		rows = append(rows, CashFlowEntry{
			Year:               y,
			Period:             PeriodOperating,
			NOI:                noi[y],
			DebtService:        debtService,
			CashFlow:           cf,
			CumulativeCashFlow: cumulative,
		})
	}

	finalNOI := noi[len(noi)-1]
	exitValue := m.ExitValue(finalNOI)
	payoff := schedule.BalanceAfter(holding * 12)
	proceeds := exitValue - payoff
	rows = append(rows, CashFlowEntry{
		Year:               holding,
		Period:             PeriodExit,
		NOI:                finalNOI,
		ExitValue:          exitValue,
		LoanPayoff:         payoff,
		EquityProceeds:     proceeds,
		CashFlow:           proceeds,
		CumulativeCashFlow: cumulative + proceeds,
	})

	return &CashFlowModel{
		DevelopmentCosts:      costs,
		Financing:             financing,
		ConstructionDraws:     draws,
		CapitalizedInterest:   capitalized,
		TotalLoanAtCompletion: completion,
		AnnualCashFlows:       rows,
		ExitValue:             exitValue,
		RemainingLoan:         payoff,
		EquityProceeds:        proceeds,
	}, nil
}

// Returns derives metrics from the ledger. The IRR vector is every row's
// cash flow in order. A solver failure leaves that metric nil and the rest
// populated.
func (m *Model) Returns() (*Result, error) {
	model, err := m.CashFlow()
	if err != nil {
		return nil, err
	}
	rows := model.AnnualCashFlows

	flows := make([]float64, len(rows))
	for i, r := range rows {
		flows[i] = r.CashFlow
	}

	res := &Result{CashFlowModel: model}
	if irr, err := fin.IRR(flows); err == nil {
		res.IRR = fin.Ptr(irr * 100)
	}
	if npv, err := fin.NPV(DiscountRate, flows); err == nil {
		res.NPV = fin.Ptr(npv)
	}

	invested := -rows[0].EquityInvested
	returned := model.EquityProceeds
	res.TotalEquityInvested = invested
	res.TotalEquityReturned = returned
	res.TotalProfit = returned - invested
	if invested > 0 {
		res.EquityMultiple = fin.Ptr(returned / invested)
		res.CashOnCash = fin.Ptr(rows[1].CashFlow / invested * 100)
	}

	var dscrSum float64
	var dscrYears int
	for _, r := range rows {
		if r.Period == PeriodOperating && r.DebtService > 0 {
			dscrSum += r.NOI / r.DebtService
			dscrYears++
		}
	}
	if dscrYears > 0 {
		res.AvgDSCR = fin.Ptr(dscrSum / float64(dscrYears))
	}

	if tdc := model.DevelopmentCosts.TotalDevelopmentCost; tdc > 0 {
		res.ProfitMargin = fin.Ptr((model.ExitValue - tdc) / tdc * 100)
	}
	return res, nil
}
