package loan

import (
	"time"

	"dev_feasibility/pkg/core/fin"
)

const (
	PhaseInterestOnly      = "Interest Only"
	PhasePrincipalInterest = "Principal & Interest"
	scheduleStepDays       = 30
)

// InvestmentTerms are the post-completion loan inputs.
type InvestmentTerms struct {
	PropertyValue       float64   `json:"property_value"`
	LoanToValuePct      float64   `json:"loan_to_value_pct"`
	InterestRateAnnual  float64   `json:"interest_rate_annual"`
	LoanTermYears       int       `json:"loan_term_years"`
	InterestOnlyYears   int       `json:"interest_only_years"`
	EstablishmentFeePct float64   `json:"establishment_fee_pct"`
	StartDate           time.Time `json:"start_date"`
}

func DefaultInvestmentTerms() InvestmentTerms {
	b := AUBenchmarks.Investment
	return InvestmentTerms{
		LoanToValuePct:      b.LVRTypical,
		InterestRateAnnual:  b.RateTypical,
		LoanTermYears:       defaultLoanTermYears,
		InterestOnlyYears:   defaultInterestOnlyYears,
		EstablishmentFeePct: b.EstablishmentFeePct,
	}
}

// Validate enforces LVR in (0, 100], a positive term and an IO period that
// fits inside it.
func (t InvestmentTerms) Validate() error {
	if t.LoanToValuePct <= 0 {
		return fin.Invalid("loan_to_value_pct", t.LoanToValuePct, "must be greater than zero")
	}
	if t.LoanTermYears <= 0 {
		return fin.Invalid("loan_term_years", float64(t.LoanTermYears), "must be at least one year")
	}
	if t.InterestOnlyYears < 0 || t.InterestOnlyYears > t.LoanTermYears {
		return fin.Invalid("interest_only_years", float64(t.InterestOnlyYears), "must be between zero and the loan term")
	}
	return fin.FirstError(
		fin.NonNegative("property_value", t.PropertyValue),
		fin.Within("loan_to_value_pct", t.LoanToValuePct, 0, maxRatioPct),
		fin.Within("interest_rate_annual", t.InterestRateAnnual, 0, maxRatePct),
		fin.Within("establishment_fee_pct", t.EstablishmentFeePct, 0, maxRatePct),
	)
}

// AmortizationEntry is one month of the investment loan.
type AmortizationEntry struct {
	Period    int       `json:"period"`
	Date      time.Time `json:"date"`
	Payment   float64   `json:"payment"`
	Principal float64   `json:"principal"`
	Interest  float64   `json:"interest"`
	Balance   float64   `json:"balance"`
	Phase     string    `json:"phase"`
}

// Amortization is a full schedule with lookups used by the returns ledger.
type Amortization []AmortizationEntry

// YearDebtService sums payments in loan year y (1-based). Years past maturity
// carry no debt service.
func (a Amortization) YearDebtService(year int) float64 {
	total := 0.0
	for i := (year - 1) * 12; i < year*12 && i < len(a); i++ {
		if i >= 0 {
			total += a[i].Payment
		}
	}
	return total
}

// BalanceAfter is the balance once `periods` payments have been made.
func (a Amortization) BalanceAfter(periods int) float64 {
	if len(a) == 0 {
		return 0
	}
	if periods <= 0 {
		return a[0].Balance + a[0].Principal
	}
	if periods > len(a) {
		periods = len(a)
	}
	return a[periods-1].Balance
}

// InvestmentLoan is a validated investment facility.
type InvestmentLoan struct {
	terms InvestmentTerms
}

func NewInvestmentLoan(terms InvestmentTerms) (*InvestmentLoan, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if terms.StartDate.IsZero() {
		terms.StartDate = time.Now().Truncate(24 * time.Hour)
	}
	return &InvestmentLoan{terms: terms}, nil
}

func (l *InvestmentLoan) Terms() InvestmentTerms { return l.terms }

func (l *InvestmentLoan) LoanAmount() float64 {
	return l.terms.PropertyValue * l.terms.LoanToValuePct / 100
}

func (l *InvestmentLoan) MonthlyRate() float64 { return fin.MonthlyRate(l.terms.InterestRateAnnual) }

func (l *InvestmentLoan) TotalMonths() int { return l.terms.LoanTermYears * 12 }

func (l *InvestmentLoan) IOMonths() int { return l.terms.InterestOnlyYears * 12 }

// AmortMonths is zero for a fully interest-only loan.
func (l *InvestmentLoan) AmortMonths() int {
	if m := l.TotalMonths() - l.IOMonths(); m > 0 {
		return m
	}
	return 0
}

func (l *InvestmentLoan) EstablishmentFee() float64 {
	return l.LoanAmount() * l.terms.EstablishmentFeePct / 100
}

// IOPayment = Loan × r
func (l *InvestmentLoan) IOPayment() float64 { return l.LoanAmount() * l.MonthlyRate() }

// PIPayment is the level annuity over the amortizing months, or 0 when the
// loan never amortizes.
func (l *InvestmentLoan) PIPayment() float64 {
	p, err := fin.Payment(l.LoanAmount(), l.MonthlyRate(), l.AmortMonths())
	if err != nil {
		return 0
	}
	return p
}

// Schedule builds the IO then P&I schedule. Dates step 30 days from the start.
func (l *InvestmentLoan) Schedule() Amortization {
	r := l.MonthlyRate()
	io := l.IOPayment()
	pi := l.PIPayment()
	balance := l.LoanAmount()
	date := l.terms.StartDate

	schedule := make(Amortization, 0, l.TotalMonths())
	for period := 1; period <= l.TotalMonths(); period++ {
		interest := balance * r
		entry := AmortizationEntry{Period: period, Date: date, Interest: interest}

		if period <= l.IOMonths() {
			entry.Payment = io
			entry.Phase = PhaseInterestOnly
		} else {
			entry.Payment = pi
			entry.Principal = pi - interest
			balance -= entry.Principal
			if balance < 0 {
				balance = 0
			}
			entry.Phase = PhasePrincipalInterest
		}
		entry.Balance = balance
		schedule = append(schedule, entry)
		date = date.AddDate(0, 0, scheduleStepDays)
	}
	return schedule
}

// =============================================================================
// SUMMARY
// =============================================================================

type InvestmentParameters struct {
	PropertyValue      float64 `json:"property_value"`
	LoanToValuePct     float64 `json:"loan_to_value_pct"`
	LoanAmount         float64 `json:"loan_amount"`
	InterestRateAnnual float64 `json:"interest_rate_annual"`
	LoanTermYears      int     `json:"loan_term_years"`
	InterestOnlyYears  int     `json:"interest_only_years"`
}

type InvestmentPayments struct {
	MonthlyIO float64 `json:"monthly_io_payment"`
	MonthlyPI float64 `json:"monthly_pi_payment"`
	AnnualIO  float64 `json:"annual_io_payment"`
	AnnualPI  float64 `json:"annual_pi_payment"`
}

// InvestmentTotals reports what the schedule actually repays. A fully
// interest-only loan shows the whole principal outstanding at maturity.
type InvestmentTotals struct {
	TotalPayments         float64 `json:"total_payments"`
	TotalInterest         float64 `json:"total_interest"`
	TotalPrincipalRepaid  float64 `json:"total_principal_repaid"`
	OutstandingAtMaturity float64 `json:"outstanding_at_maturity"`
	EstablishmentFee      float64 `json:"establishment_fee"`
}

type PhaseTotals struct {
	Months         int     `json:"months"`
	TotalPayments  float64 `json:"total_payments"`
	TotalInterest  float64 `json:"total_interest"`
	TotalPrincipal float64 `json:"total_principal"`
}

type InvestmentByPhase struct {
	InterestOnly         PhaseTotals `json:"interest_only"`
	PrincipalAndInterest PhaseTotals `json:"principal_and_interest"`
}

type InvestmentMetrics struct {
	Year1DebtService     float64 `json:"year1_debt_service"`
	InterestPctOfLoan    float64 `json:"interest_as_pct_of_loan"`
	TotalCostOfBorrowing float64 `json:"total_cost_of_borrowing"`
}

type InvestmentSummary struct {
	Parameters        InvestmentParameters `json:"loan_parameters"`
	Payments          InvestmentPayments   `json:"payments"`
	Totals            InvestmentTotals     `json:"totals"`
	ByPhase           InvestmentByPhase    `json:"by_phase"`
	Metrics           InvestmentMetrics    `json:"metrics"`
	FullyInterestOnly bool                 `json:"fully_interest_only"`
	Schedule          Amortization         `json:"schedule,omitempty"`
}

// Summary rolls the schedule up by phase.
func (l *InvestmentLoan) Summary() *InvestmentSummary {
	schedule := l.Schedule()
	loan := l.LoanAmount()

	s := &InvestmentSummary{
		Parameters: InvestmentParameters{
			PropertyValue:      l.terms.PropertyValue,
			LoanToValuePct:     l.terms.LoanToValuePct,
			LoanAmount:         loan,
			InterestRateAnnual: l.terms.InterestRateAnnual,
			LoanTermYears:      l.terms.LoanTermYears,
			InterestOnlyYears:  l.terms.InterestOnlyYears,
		},
		Payments: InvestmentPayments{
			MonthlyIO: l.IOPayment(),
			MonthlyPI: l.PIPayment(),
			AnnualIO:  l.IOPayment() * 12,
			AnnualPI:  l.PIPayment() * 12,
		},
		FullyInterestOnly: l.AmortMonths() == 0,
		Schedule:          schedule,
	}
	s.ByPhase.InterestOnly.Months = l.IOMonths()
	s.ByPhase.PrincipalAndInterest.Months = l.AmortMonths()

	for _, e := range schedule {
		s.Totals.TotalPayments += e.Payment
		s.Totals.TotalInterest += e.Interest
		phase := &s.ByPhase.PrincipalAndInterest
		if e.Phase == PhaseInterestOnly {
			phase = &s.ByPhase.InterestOnly
		}
		phase.TotalPayments += e.Payment
		phase.TotalInterest += e.Interest
		phase.TotalPrincipal += e.Principal
	}

	s.Totals.OutstandingAtMaturity = schedule.BalanceAfter(len(schedule))
	s.Totals.TotalPrincipalRepaid = loan - s.Totals.OutstandingAtMaturity
	s.Totals.EstablishmentFee = l.EstablishmentFee()

	s.Metrics.Year1DebtService = schedule.YearDebtService(1)
	if loan > 0 {
		s.Metrics.InterestPctOfLoan = s.Totals.TotalInterest / loan * 100
	}
	s.Metrics.TotalCostOfBorrowing = s.Totals.TotalInterest + s.Totals.EstablishmentFee
	return s
}

// DSCR divides annual NOI by year-1 debt service (the IO payment while an
// IO period is running). Returns 0 when either side is zero.
func (l *InvestmentLoan) DSCR(annualNOI float64) float64 {
	debtService := l.Schedule().YearDebtService(1)
	if debtService <= 0 || annualNOI <= 0 {
		return 0
	}
	return annualNOI / debtService
}
