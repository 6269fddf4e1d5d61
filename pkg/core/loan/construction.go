package loan

import (
	"fmt"
	"math"

	"dev_feasibility/pkg/core/fin"
)

// DrawCurve selects how the facility is drawn across the build.
type DrawCurve string

const (
	DrawLinear DrawCurve = "linear"
	DrawSCurve DrawCurve = "s_curve"
	DrawCustom DrawCurve = "custom"
)

// ConstructionTerms are the construction facility inputs.
type ConstructionTerms struct {
	TotalDevelopmentCost float64   `json:"total_development_cost"`
	DurationMonths       int       `json:"construction_duration_months"`
	LoanToCostPct        float64   `json:"loan_to_cost_pct"`
	InterestRateAnnual   float64   `json:"interest_rate_annual"`
	EstablishmentFeePct  float64   `json:"establishment_fee_pct"`
	LineFeePct           float64   `json:"line_fee_pct"`
	CapitalizeInterest   bool      `json:"capitalize_interest"`
	DrawCurve            DrawCurve `json:"draw_schedule_type"`
	CustomDraws          []float64 `json:"custom_draw_schedule,omitempty"`
}

// DefaultConstructionTerms returns benchmark-typical terms on an S-curve.
func DefaultConstructionTerms() ConstructionTerms {
	b := AUBenchmarks.Construction
	return ConstructionTerms{
		DurationMonths:      defaultConstructionMonths,
		LoanToCostPct:       b.LTCTypical,
		InterestRateAnnual:  b.RateTypical,
		EstablishmentFeePct: b.EstablishmentFeePct,
		LineFeePct:          b.LineFeePct,
		CapitalizeInterest:  true,
		DrawCurve:           DrawSCurve,
	}
}

// Validate enforces the construction domain: a positive duration, an LTC in
// (0, 100], and non-negative cost, rate and fees.
func (t ConstructionTerms) Validate() error {
	if t.DurationMonths <= 0 {
		return fin.Invalid("construction_duration_months", float64(t.DurationMonths), "must be at least one month")
	}
	if t.LoanToCostPct <= 0 {
		return fin.Invalid("loan_to_cost_pct", t.LoanToCostPct, "must be greater than zero")
	}
	err := fin.FirstError(
		fin.NonNegative("total_development_cost", t.TotalDevelopmentCost),
		fin.Within("loan_to_cost_pct", t.LoanToCostPct, 0, maxRatioPct),
		fin.Within("interest_rate_annual", t.InterestRateAnnual, 0, maxRatePct),
		fin.Within("establishment_fee_pct", t.EstablishmentFeePct, 0, maxRatePct),
		fin.Within("line_fee_pct", t.LineFeePct, 0, maxRatePct),
	)
	if err != nil {
		return err
	}
	switch t.DrawCurve {
	case "", DrawLinear, DrawSCurve:
	case DrawCustom:
		if len(t.CustomDraws) == 0 {
			return fin.Invalid("custom_draw_schedule", 0, "custom curve needs draw percentages")
		}
		for i, d := range t.CustomDraws {
			if d < 0 || math.IsNaN(d) {
				return fin.Invalid(fmt.Sprintf("custom_draw_schedule[%d]", i), d, "must not be negative")
			}
		}
	default:
		return fin.Invalid("draw_schedule_type", 0, fmt.Sprintf("unknown draw curve %q", t.DrawCurve))
	}
	return nil
}

// DrawEntry is one month of the draw schedule.
type DrawEntry struct {
	Month              int     `json:"month"`
	DrawAmount         float64 `json:"draw_amount"`
	DrawPercentage     float64 `json:"draw_percentage"`
	CumulativeDrawn    float64 `json:"cumulative_drawn"`
	Interest           float64 `json:"interest"`
	CumulativeInterest float64 `json:"cumulative_interest"`
	TotalOutstanding   float64 `json:"total_outstanding"`
}

// ConstructionLoan is a validated construction facility.
type ConstructionLoan struct {
	terms ConstructionTerms
}

// NewConstructionLoan validates terms. A zero-duration facility is rejected
// here rather than surfacing later as NaN.
func NewConstructionLoan(terms ConstructionTerms) (*ConstructionLoan, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if terms.DrawCurve == "" {
		terms.DrawCurve = DrawSCurve
	}
	terms.CustomDraws = append([]float64(nil), terms.CustomDraws...)
	return &ConstructionLoan{terms: terms}, nil
}

func (c *ConstructionLoan) Terms() ConstructionTerms { return c.terms }

func (c *ConstructionLoan) LoanAmount() float64 {
	return c.terms.TotalDevelopmentCost * c.terms.LoanToCostPct / 100
}

func (c *ConstructionLoan) MonthlyRate() float64 { return fin.MonthlyRate(c.terms.InterestRateAnnual) }

func (c *ConstructionLoan) EstablishmentFee() float64 {
	return c.LoanAmount() * c.terms.EstablishmentFeePct / 100
}

// LineFee is charged once on the facility limit. It is not accrued on the
// undrawn balance over the term.
func (c *ConstructionLoan) LineFee() float64 {
	return c.LoanAmount() * c.terms.LineFeePct / 100
}

// =============================================================================
// DRAW CURVES
// =============================================================================

// DrawProfile returns one fraction per month, summing to 1.
func (c *ConstructionLoan) DrawProfile() []float64 {
	n := c.terms.DurationMonths
	switch c.terms.DrawCurve {
	case DrawLinear:
		return linearProfile(n)
	case DrawCustom:
		return customProfile(c.terms.CustomDraws, n)
	default:
		return sCurveProfile(n)
	}
}

func linearProfile(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1.0 / float64(n)
	}
	return out
}

// sCurveProfile samples a logistic curve on linspace(-4, 4, n+1) and takes
// its first difference: slow start, fastest mid-build, slow finish.
func sCurveProfile(n int) []float64 {
	cumulative := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		x := -4 + 8*float64(i)/float64(n)
		cumulative[i] = 1 / (1 + math.Exp(-x))
	}
	monthly := make([]float64, n)
	sum := 0.0
	for i := 0; i < n; i++ {
		monthly[i] = cumulative[i+1] - cumulative[i]
		sum += monthly[i]
	}
	for i := range monthly {
		monthly[i] /= sum
	}
	return monthly
}

// customProfile truncates or zero-pads to n months, then renormalizes. An
// all-zero schedule falls back to linear.
func customProfile(draws []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, draws)
	sum := 0.0
	for _, d := range out {
		sum += d
	}
	if sum == 0 {
		return linearProfile(n)
	}
	for i := range out {
		out[i] /= sum
	}
	return out
}

// =============================================================================
// SCHEDULE
// =============================================================================

// Schedule builds the month-by-month draw schedule.
//
// FORMULA (average-balance interest):
//
//	month 1:  I = (D_1 / 2) × r
//	month m:  I = (Σ D_1..m-1 + D_m / 2) × r
//
// Outstanding includes cumulative interest only when interest is capitalized.
func (c *ConstructionLoan) Schedule() []DrawEntry {
	loan := c.LoanAmount()
	r := c.MonthlyRate()
	profile := c.DrawProfile()

	schedule := make([]DrawEntry, 0, len(profile))
	var drawn, interestToDate float64
	for i, pct := range profile {
		draw := loan * pct
		prior := drawn
		drawn += draw

		interest := (prior + draw/2) * r
		interestToDate += interest

		outstanding := drawn
		if c.terms.CapitalizeInterest {
			outstanding += interestToDate
		}

		schedule = append(schedule, DrawEntry{
			Month:              i + 1,
			DrawAmount:         draw,
			DrawPercentage:     pct * 100,
			CumulativeDrawn:    drawn,
			Interest:           interest,
			CumulativeInterest: interestToDate,
			TotalOutstanding:   outstanding,
		})
	}
	return schedule
}

// =============================================================================
// SUMMARY
// =============================================================================

type ConstructionParameters struct {
	TotalDevelopmentCost float64 `json:"total_development_cost"`
	LoanToCostPct        float64 `json:"loan_to_cost_pct"`
	LoanAmount           float64 `json:"loan_amount"`
	InterestRateAnnual   float64 `json:"interest_rate_annual"`
	DurationMonths       int     `json:"construction_duration_months"`
}

type ConstructionFees struct {
	EstablishmentFee float64 `json:"establishment_fee"`
	LineFee          float64 `json:"line_fee"`
	TotalFees        float64 `json:"total_fees"`
}

type ConstructionInterest struct {
	TotalInterest          float64 `json:"total_interest"`
	InterestCapitalized    bool    `json:"interest_capitalized"`
	AverageMonthlyInterest float64 `json:"average_monthly_interest"`
}

type ConstructionTotals struct {
	TotalDrawn       float64 `json:"total_drawn"`
	TotalInterest    float64 `json:"total_interest"`
	TotalFees        float64 `json:"total_fees"`
	LoanAtCompletion float64 `json:"total_loan_at_completion"`
	EquityRequired   float64 `json:"equity_required"`
}

type ConstructionMetrics struct {
	EffectiveInterestRate     float64 `json:"effective_interest_rate"`
	WeightedAverageTermMonths float64 `json:"weighted_average_loan_term_months"`
	InterestPctOfLoan         float64 `json:"interest_as_pct_of_loan"`
}

// ConstructionSummary is the full construction-phase result.
type ConstructionSummary struct {
	Parameters   ConstructionParameters `json:"loan_parameters"`
	Fees         ConstructionFees       `json:"fees"`
	Interest     ConstructionInterest   `json:"interest"`
	Totals       ConstructionTotals     `json:"totals"`
	Metrics      ConstructionMetrics    `json:"metrics"`
	DrawSchedule []DrawEntry            `json:"draw_schedule"`
}

// Summary rolls the schedule up.
//
// FORMULA:
//
//	LoanAtCompletion = Outstanding_final + EstablishmentFee + LineFee
//	EffectiveRate    = (Interest + Fees) / Loan × 12 / Months × 100
func (c *ConstructionLoan) Summary() *ConstructionSummary {
	schedule := c.Schedule()
	final := schedule[len(schedule)-1]
	loan := c.LoanAmount()
	months := float64(c.terms.DurationMonths)

	fees := ConstructionFees{
		EstablishmentFee: c.EstablishmentFee(),
		LineFee:          c.LineFee(),
	}
	fees.TotalFees = fees.EstablishmentFee + fees.LineFee

	// Loan floors at 1 so a zero-cost project reports zero metrics.
	denom := math.Max(loan, 1)
	var drawnMonths float64
	for _, e := range schedule {
		drawnMonths += e.CumulativeDrawn
	}

	return &ConstructionSummary{
		Parameters: ConstructionParameters{
			TotalDevelopmentCost: c.terms.TotalDevelopmentCost,
			LoanToCostPct:        c.terms.LoanToCostPct,
			LoanAmount:           loan,
			InterestRateAnnual:   c.terms.InterestRateAnnual,
			DurationMonths:       c.terms.DurationMonths,
		},
		Fees: fees,
		Interest: ConstructionInterest{
			TotalInterest:          final.CumulativeInterest,
			InterestCapitalized:    c.terms.CapitalizeInterest,
			AverageMonthlyInterest: final.CumulativeInterest / months,
		},
		Totals: ConstructionTotals{
			TotalDrawn:       final.CumulativeDrawn,
			TotalInterest:    final.CumulativeInterest,
			TotalFees:        fees.TotalFees,
			LoanAtCompletion: final.TotalOutstanding + fees.TotalFees,
			EquityRequired:   c.terms.TotalDevelopmentCost - loan,
		},
		Metrics: ConstructionMetrics{
			EffectiveInterestRate:     (final.CumulativeInterest + fees.TotalFees) / denom * (12 / months) * 100,
			WeightedAverageTermMonths: drawnMonths / denom / float64(len(schedule)) * months,
			InterestPctOfLoan:         final.CumulativeInterest / denom * 100,
		},
		DrawSchedule: schedule,
	}
}
