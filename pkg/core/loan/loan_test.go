package loan

import (
	"errors"
	"math"
	"testing"
	"time"

	"dev_feasibility/pkg/core/fin"
)

func approx(a, b, tol float64) bool { return math.Abs(a-b) <= tol }

func sunshineConstruction(t *testing.T) *ConstructionLoan {
	t.Helper()
	c, err := NewConstructionLoan(SunshineCoastExample().Construction())
	if err != nil {
		t.Fatalf("NewConstructionLoan failed: %v", err)
	}
	return c
}

func sunshineInvestment(t *testing.T) *InvestmentLoan {
	t.Helper()
	terms := SunshineCoastExample().Investment()
	terms.StartDate = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	l, err := NewInvestmentLoan(terms)
	if err != nil {
		t.Fatalf("NewInvestmentLoan failed: %v", err)
	}
	return l
}

// =============================================================================
// CONSTRUCTION
// =============================================================================

func TestConstructionSunshineCoast(t *testing.T) {
	s := sunshineConstruction(t).Summary()

	if !approx(s.Parameters.LoanAmount, 5525000, 1e-6) {
		t.Errorf("Expected loan 5,525,000, got %f", s.Parameters.LoanAmount)
	}
	if !approx(s.Interest.TotalInterest, 273947.9167, 1e-3) {
		t.Errorf("Expected interest 273,947.92, got %f", s.Interest.TotalInterest)
	}
	if !approx(s.Fees.TotalFees, 82875, 1e-6) {
		t.Errorf("Expected fees 82,875, got %f", s.Fees.TotalFees)
	}
	if !approx(s.Totals.LoanAtCompletion, 5881822.9167, 1e-3) {
		t.Errorf("Expected loan at completion 5,881,822.92, got %f", s.Totals.LoanAtCompletion)
	}
	if !approx(s.Totals.EquityRequired, 2975000, 1e-6) {
		t.Errorf("Expected equity 2,975,000, got %f", s.Totals.EquityRequired)
	}
	if !approx(s.Metrics.EffectiveInterestRate, 5.535714, 1e-5) {
		t.Errorf("Expected effective rate 5.5357, got %f", s.Metrics.EffectiveInterestRate)
	}
	if !approx(s.Metrics.WeightedAverageTermMonths, 7.5, 1e-9) {
		t.Errorf("Expected weighted average term 7.5, got %f", s.Metrics.WeightedAverageTermMonths)
	}
	if !approx(s.DrawSchedule[0].DrawPercentage/100, 0.01392922914967068, 1e-12) {
		t.Errorf("Unexpected first S-curve draw %f", s.DrawSchedule[0].DrawPercentage)
	}
}

func TestConstructionLinearCurve(t *testing.T) {
	c, err := NewConstructionLoan(ConstructionTerms{
		TotalDevelopmentCost: 1_000_000,
		DurationMonths:       12,
		LoanToCostPct:        60,
		InterestRateAnnual:   9,
		EstablishmentFeePct:  1,
		LineFeePct:           0.5,
		CapitalizeInterest:   true,
		DrawCurve:            DrawLinear,
	})
	if err != nil {
		t.Fatalf("NewConstructionLoan failed: %v", err)
	}
	s := c.Summary()

	// 50,000/month; interest = 50,000 × 0.0075 × Σ(m − 0.5) = 375 × 72
	if !approx(s.Interest.TotalInterest, 27000, 1e-6) {
		t.Errorf("Expected interest 27,000, got %f", s.Interest.TotalInterest)
	}
	if !approx(s.Totals.LoanAtCompletion, 636000, 1e-6) {
		t.Errorf("Expected loan at completion 636,000, got %f", s.Totals.LoanAtCompletion)
	}
	if !approx(s.Metrics.EffectiveInterestRate, 6.0, 1e-9) {
		t.Errorf("Expected effective rate 6.0, got %f", s.Metrics.EffectiveInterestRate)
	}
	if !approx(s.Metrics.WeightedAverageTermMonths, 6.5, 1e-9) {
		t.Errorf("Expected weighted average term 6.5, got %f", s.Metrics.WeightedAverageTermMonths)
	}
}

func TestDrawCompleteness(t *testing.T) {
	curves := []struct {
		name  string
		curve DrawCurve
		draws []float64
	}{
		{"linear", DrawLinear, nil},
		{"s_curve", DrawSCurve, nil},
		{"custom padded", DrawCustom, []float64{10, 20, 30}},
		{"custom truncated", DrawCustom, []float64{5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5, 5}},
		{"custom all zero", DrawCustom, []float64{0, 0}},
	}
	for _, tc := range curves {
		for _, months := range []int{1, 6, 14, 36} {
			terms := DefaultConstructionTerms()
			terms.TotalDevelopmentCost = 7_300_000
			terms.DurationMonths = months
			terms.DrawCurve = tc.curve
			terms.CustomDraws = tc.draws

			c, err := NewConstructionLoan(terms)
			if err != nil {
				t.Fatalf("%s/%d: %v", tc.name, months, err)
			}
			schedule := c.Schedule()
			if len(schedule) != months {
				t.Fatalf("%s/%d: expected %d entries, got %d", tc.name, months, months, len(schedule))
			}
			pct := 0.0
			for i, e := range schedule {
				pct += e.DrawPercentage / 100
				if e.Month != i+1 {
					t.Errorf("%s/%d: month %d out of order", tc.name, months, e.Month)
				}
			}
			if !approx(pct, 1, 1e-6) {
				t.Errorf("%s/%d: draw percentages sum to %f", tc.name, months, pct)
			}
			last := schedule[len(schedule)-1]
			if !approx(last.CumulativeDrawn, c.LoanAmount(), 1e-6) {
				t.Errorf("%s/%d: drew %f of %f", tc.name, months, last.CumulativeDrawn, c.LoanAmount())
			}
		}
	}
}

func TestCustomDrawsPadWithZeros(t *testing.T) {
	terms := DefaultConstructionTerms()
	terms.TotalDevelopmentCost = 1_000_000
	terms.DurationMonths = 4
	terms.DrawCurve = DrawCustom
	terms.CustomDraws = []float64{1, 3}

	c, _ := NewConstructionLoan(terms)
	profile := c.DrawProfile()
	want := []float64{0.25, 0.75, 0, 0}
	for i := range want {
		if !approx(profile[i], want[i], 1e-12) {
			t.Errorf("month %d: expected %f, got %f", i+1, want[i], profile[i])
		}
	}
}

func TestInterestNotCapitalized(t *testing.T) {
	terms := SunshineCoastExample().Construction()
	terms.CapitalizeInterest = false
	c, _ := NewConstructionLoan(terms)
	s := c.Summary()

	// Outstanding is drawn balance only; completion = loan + fees.
	if !approx(s.Totals.LoanAtCompletion, 5525000+82875, 1e-6) {
		t.Errorf("Expected completion 5,607,875, got %f", s.Totals.LoanAtCompletion)
	}
	if s.Interest.InterestCapitalized {
		t.Error("Expected interest_capitalized false")
	}
}

// The line fee is charged once on the limit, not accrued on undrawn funds.
func TestLineFeeIsFlat(t *testing.T) {
	short := SunshineCoastExample().Construction()
	long := short
	long.DurationMonths = 36

	a, _ := NewConstructionLoan(short)
	b, _ := NewConstructionLoan(long)
	if a.LineFee() != b.LineFee() {
		t.Errorf("Line fee should not depend on duration: %f vs %f", a.LineFee(), b.LineFee())
	}
	if !approx(a.LineFee(), 5525000*0.005, 1e-9) {
		t.Errorf("Expected 0.5%% of the limit, got %f", a.LineFee())
	}
}

func TestConstructionValidation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		mut   func(*ConstructionTerms)
	}{
		{"zero duration", "construction_duration_months", func(c *ConstructionTerms) { c.DurationMonths = 0 }},
		{"negative duration", "construction_duration_months", func(c *ConstructionTerms) { c.DurationMonths = -3 }},
		{"zero ltc", "loan_to_cost_pct", func(c *ConstructionTerms) { c.LoanToCostPct = 0 }},
		{"ltc over 100", "loan_to_cost_pct", func(c *ConstructionTerms) { c.LoanToCostPct = 120 }},
		{"negative rate", "interest_rate_annual", func(c *ConstructionTerms) { c.InterestRateAnnual = -1 }},
		{"negative cost", "total_development_cost", func(c *ConstructionTerms) { c.TotalDevelopmentCost = -1 }},
		{"unknown curve", "draw_schedule_type", func(c *ConstructionTerms) { c.DrawCurve = "bell" }},
		{"empty custom", "custom_draw_schedule", func(c *ConstructionTerms) { c.DrawCurve = DrawCustom }},
		{"negative custom draw", "custom_draw_schedule[1]", func(c *ConstructionTerms) {
			c.DrawCurve = DrawCustom
			c.CustomDraws = []float64{10, -5}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := SunshineCoastExample().Construction()
			tt.mut(&terms)
			_, err := NewConstructionLoan(terms)
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

func TestZeroCostConstruction(t *testing.T) {
	terms := DefaultConstructionTerms()
	c, err := NewConstructionLoan(terms)
	if err != nil {
		t.Fatalf("zero TDC should be valid: %v", err)
	}
	s := c.Summary()
	if s.Metrics.EffectiveInterestRate != 0 || s.Metrics.WeightedAverageTermMonths != 0 {
		t.Errorf("Expected zero metrics, got %+v", s.Metrics)
	}
}

// =============================================================================
// INVESTMENT
// =============================================================================

func TestInvestmentSunshineCoast(t *testing.T) {
	l := sunshineInvestment(t)
	s := l.Summary()

	if !approx(s.Parameters.LoanAmount, 6120000, 1e-6) {
		t.Errorf("Expected loan 6,120,000, got %f", s.Parameters.LoanAmount)
	}
	if !approx(s.Payments.MonthlyIO, 34425, 1e-6) {
		t.Errorf("Expected IO payment 34,425, got %f", s.Payments.MonthlyIO)
	}
	if !approx(s.Payments.MonthlyPI, 46534.2774, 1e-3) {
		t.Errorf("Expected P&I payment 46,534.28, got %f", s.Payments.MonthlyPI)
	}
	if !approx(s.Totals.TotalInterest, 7113726.575, 0.01) {
		t.Errorf("Expected total interest 7,113,726.58, got %f", s.Totals.TotalInterest)
	}
	if !approx(s.Totals.TotalPayments, 13233726.575, 0.01) {
		t.Errorf("Expected total payments 13,233,726.58, got %f", s.Totals.TotalPayments)
	}
	if !approx(s.Metrics.Year1DebtService, 413100, 1e-6) {
		t.Errorf("Expected year-1 debt service 413,100, got %f", s.Metrics.Year1DebtService)
	}
	if s.ByPhase.InterestOnly.Months != 60 || s.ByPhase.PrincipalAndInterest.Months != 240 {
		t.Errorf("Unexpected phase split %d/%d", s.ByPhase.InterestOnly.Months, s.ByPhase.PrincipalAndInterest.Months)
	}
	if s.FullyInterestOnly {
		t.Error("Amortizing loan flagged as fully interest-only")
	}
	if !approx(s.Totals.TotalPrincipalRepaid, 6120000, 1e-2) {
		t.Errorf("Expected full principal repaid, got %f", s.Totals.TotalPrincipalRepaid)
	}
}

func TestAmortizationTerminalBalance(t *testing.T) {
	for _, tc := range []struct {
		rate    float64
		term    int
		ioYears int
	}{
		{6.75, 25, 5}, {0, 10, 0}, {12, 5, 4}, {3.1, 30, 0},
	} {
		terms := DefaultInvestmentTerms()
		terms.PropertyValue = 4_000_000
		terms.InterestRateAnnual = tc.rate
		terms.LoanTermYears = tc.term
		terms.InterestOnlyYears = tc.ioYears

		l, err := NewInvestmentLoan(terms)
		if err != nil {
			t.Fatalf("%+v: %v", tc, err)
		}
		schedule := l.Schedule()
		prev := l.LoanAmount()
		for _, e := range schedule {
			if e.Balance > prev+1e-9 {
				t.Fatalf("%+v: balance rose at period %d", tc, e.Period)
			}
			prev = e.Balance
		}
		if final := schedule[len(schedule)-1].Balance; !approx(final, 0, 1e-2) {
			t.Errorf("%+v: terminal balance %f", tc, final)
		}
	}
}

func TestScheduleDatesAndPhases(t *testing.T) {
	schedule := sunshineInvestment(t).Schedule()
	start := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

	if !schedule[0].Date.Equal(start) {
		t.Errorf("First payment should fall on the start date, got %v", schedule[0].Date)
	}
	if !schedule[2].Date.Equal(start.AddDate(0, 0, 60)) {
		t.Errorf("Expected 30-day steps, got %v", schedule[2].Date)
	}
	if schedule[59].Phase != PhaseInterestOnly || schedule[60].Phase != PhasePrincipalInterest {
		t.Errorf("Phase boundary misplaced: %s / %s", schedule[59].Phase, schedule[60].Phase)
	}
}

func TestFullyInterestOnlyIsSurfaced(t *testing.T) {
	terms := DefaultInvestmentTerms()
	terms.PropertyValue = 1_000_000
	terms.LoanTermYears = 5
	terms.InterestOnlyYears = 5

	l, err := NewInvestmentLoan(terms)
	if err != nil {
		t.Fatalf("NewInvestmentLoan failed: %v", err)
	}
	s := l.Summary()
	if !s.FullyInterestOnly {
		t.Error("Expected FullyInterestOnly")
	}
	if s.Payments.MonthlyPI != 0 {
		t.Errorf("Expected no P&I payment, got %f", s.Payments.MonthlyPI)
	}
	if !approx(s.Totals.OutstandingAtMaturity, 600000, 1e-6) {
		t.Errorf("Expected full principal outstanding, got %f", s.Totals.OutstandingAtMaturity)
	}
	if s.Totals.TotalPrincipalRepaid != 0 {
		t.Errorf("Expected nothing repaid, got %f", s.Totals.TotalPrincipalRepaid)
	}
}

func TestAmortizationHelpers(t *testing.T) {
	schedule := sunshineInvestment(t).Schedule()

	if !approx(schedule.YearDebtService(5), 413100, 1e-6) {
		t.Errorf("Year 5 is still interest-only, got %f", schedule.YearDebtService(5))
	}
	if !approx(schedule.YearDebtService(6), 46534.2774*12, 1e-2) {
		t.Errorf("Year 6 should be P&I, got %f", schedule.YearDebtService(6))
	}
	if schedule.YearDebtService(26) != 0 {
		t.Errorf("No debt service past maturity, got %f", schedule.YearDebtService(26))
	}
	if !approx(schedule.BalanceAfter(0), 6120000, 1e-6) {
		t.Errorf("Expected opening balance, got %f", schedule.BalanceAfter(0))
	}
	if !approx(schedule.BalanceAfter(60), 6120000, 1e-6) {
		t.Errorf("Balance should be untouched after the IO period, got %f", schedule.BalanceAfter(60))
	}
	if schedule.BalanceAfter(1000) != schedule[len(schedule)-1].Balance {
		t.Error("BalanceAfter should clamp to maturity")
	}
}

func TestDSCR(t *testing.T) {
	l := sunshineInvestment(t)
	if got := l.DSCR(650000); !approx(got, 1.5734688937, 1e-9) {
		t.Errorf("Expected DSCR 1.5735, got %f", got)
	}
	if got := l.DSCR(0); got != 0 {
		t.Errorf("Expected 0 for zero NOI, got %f", got)
	}

	terms := DefaultInvestmentTerms()
	terms.PropertyValue = 1_000_000
	terms.InterestRateAnnual = 0
	terms.InterestOnlyYears = 25
	free, _ := NewInvestmentLoan(terms)
	if got := free.DSCR(100000); got != 0 {
		t.Errorf("Expected 0 with no debt service, got %f", got)
	}
}

func TestInvestmentValidation(t *testing.T) {
	tests := []struct {
		name string
		mut  func(*InvestmentTerms)
	}{
		{"zero lvr", func(i *InvestmentTerms) { i.LoanToValuePct = 0 }},
		{"lvr over 100", func(i *InvestmentTerms) { i.LoanToValuePct = 101 }},
		{"zero term", func(i *InvestmentTerms) { i.LoanTermYears = 0 }},
		{"io longer than term", func(i *InvestmentTerms) { i.InterestOnlyYears = 30 }},
		{"negative io", func(i *InvestmentTerms) { i.InterestOnlyYears = -1 }},
		{"negative rate", func(i *InvestmentTerms) { i.InterestRateAnnual = -0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			terms := DefaultInvestmentTerms()
			terms.PropertyValue = 1_000_000
			tt.mut(&terms)
			if _, err := NewInvestmentLoan(terms); !errors.Is(err, fin.ErrInvalidAssumption) {
				t.Errorf("Expected ErrInvalidAssumption, got %v", err)
			}
		})
	}
}

// =============================================================================
// DUAL PHASE
// =============================================================================

func TestDualPhaseSunshineCoast(t *testing.T) {
	r, err := AnalyzeDualPhase(SunshineCoastExample())
	if err != nil {
		t.Fatalf("AnalyzeDualPhase failed: %v", err)
	}

	if !approx(r.Refinance.CashDifference, 238177.0833, 1e-3) {
		t.Errorf("Expected cash difference 238,177.08, got %f", r.Refinance.CashDifference)
	}
	if !r.Refinance.Feasible {
		t.Error("Expected refinance to be feasible")
	}
	if r.Refinance.EquityRelease != r.Refinance.CashDifference || r.Refinance.AdditionalEquityRequired != 0 {
		t.Errorf("Release/additional mismatch: %+v", r.Refinance)
	}
	if !approx(r.Debt.DSCR, 1.5734688937, 1e-9) || !r.Debt.DSCRAdequate {
		t.Errorf("Expected adequate DSCR 1.5735, got %+v", r.Debt)
	}
	if !approx(r.Project.DevelopmentMargin, 1700000, 1e-6) || !approx(r.Project.DevelopmentMarginPct, 20, 1e-9) {
		t.Errorf("Unexpected margin %+v", r.Project)
	}
	if !approx(r.Equity.TotalEquityRequired, 2975000, 1e-6) || !approx(r.Equity.EquityPctOfCost, 35, 1e-9) {
		t.Errorf("Unexpected equity %+v", r.Equity)
	}
	if !approx(r.Equity.NetEquityInvested, 2975000-238177.0833, 1e-3) {
		t.Errorf("Unexpected net equity %f", r.Equity.NetEquityInvested)
	}
	// 82,875 construction + 0.5% of 6.12M
	if !approx(r.FinancingCosts.TotalUpfrontCosts, 82875+30600, 1e-6) {
		t.Errorf("Unexpected upfront costs %f", r.FinancingCosts.TotalUpfrontCosts)
	}
}

func TestDualPhaseCustomDraws(t *testing.T) {
	terms := SunshineCoastExample()
	terms.DrawCurve = DrawCustom
	terms.CustomDraws = []float64{10, 10, 10, 10, 10, 10, 10, 5, 5, 5, 5, 5, 3, 2}

	r, err := AnalyzeDualPhase(terms)
	if err != nil {
		t.Fatalf("AnalyzeDualPhase failed: %v", err)
	}
	sched := r.Construction.DrawSchedule
	if len(sched) != 14 {
		t.Fatalf("Expected 14 draws, got %d", len(sched))
	}
	// 10% of the 5,525,000 facility in month 1, 2% in month 14
	if !approx(sched[0].DrawAmount, 552500, 1e-6) || !approx(sched[13].DrawAmount, 110500, 1e-6) {
		t.Errorf("Custom profile not applied: first %f, last %f", sched[0].DrawAmount, sched[13].DrawAmount)
	}

	direct, err := NewConstructionLoan(terms.Construction())
	if err != nil {
		t.Fatalf("NewConstructionLoan failed: %v", err)
	}
	if want := direct.Summary().Interest.TotalInterest; !approx(r.Construction.Interest.TotalInterest, want, 1e-9) {
		t.Errorf("Expected interest %f, got %f", want, r.Construction.Interest.TotalInterest)
	}

	terms.CustomDraws = nil
	var ae *fin.AssumptionError
	if _, err := AnalyzeDualPhase(terms); !errors.As(err, &ae) || ae.Field != "custom_draw_schedule" {
		t.Errorf("Expected missing custom draws to be rejected, got %v", err)
	}
}

func TestDualPhaseShortfall(t *testing.T) {
	terms := SunshineCoastExample()
	terms.InvestmentLVR = 50
	terms.CapitalizeInterest = false

	r, err := AnalyzeDualPhase(terms)
	if err != nil {
		t.Fatalf("AnalyzeDualPhase failed: %v", err)
	}
	if r.Refinance.Feasible {
		t.Error("5.1M cannot refinance a 5.6M payoff")
	}
	if !approx(r.Refinance.AdditionalEquityRequired, -r.Refinance.CashDifference, 1e-9) || r.Refinance.EquityRelease != 0 {
		t.Errorf("Shortfall mismatch: %+v", r.Refinance)
	}
	if !approx(r.Equity.AdditionalForInterest, r.Construction.Interest.TotalInterest, 1e-9) {
		t.Errorf("Uncapitalized interest should be funded by equity, got %f", r.Equity.AdditionalForInterest)
	}
}

func TestDualPhaseDSCRZeroWithoutNOI(t *testing.T) {
	terms := SunshineCoastExample()
	terms.ExpectedAnnualNOI = 0
	r, err := AnalyzeDualPhase(terms)
	if err != nil {
		t.Fatalf("AnalyzeDualPhase failed: %v", err)
	}
	if r.Debt.DSCR != 0 || r.Debt.DSCRAdequate {
		t.Errorf("Expected zero, inadequate DSCR, got %+v", r.Debt)
	}
}

func TestComparisonTable(t *testing.T) {
	r, _ := AnalyzeDualPhase(SunshineCoastExample())
	rows := r.ComparisonTable()
	if len(rows) != 18 {
		t.Fatalf("Expected 18 rows, got %d", len(rows))
	}
	byParam := map[string]interface{}{}
	for _, row := range rows {
		byParam[row.Category+"/"+row.Parameter] = row.Value
	}
	if byParam["Refinance Analysis/Refinance Feasible"] != "Yes" {
		t.Errorf("Expected feasible Yes, got %v", byParam["Refinance Analysis/Refinance Feasible"])
	}
	if byParam["Construction Loan/Duration"] != 14 {
		t.Errorf("Expected duration 14, got %v", byParam["Construction Loan/Duration"])
	}
	if v, ok := byParam["Investment Loan/Monthly IO Payment"].(float64); !ok || !approx(v, 34425, 1e-6) {
		t.Errorf("Unexpected IO payment row %v", byParam["Investment Loan/Monthly IO Payment"])
	}
}
