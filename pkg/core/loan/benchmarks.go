// Package loan models the two debt phases of a development: a construction
// facility drawn progressively with capitalized interest, and the investment
// loan that refinances it at completion.
package loan

// =============================================================================
// AUSTRALIAN LOAN BENCHMARKS (2024-2025)
// Defaults for every term struct come from here.
// =============================================================================

type ConstructionBenchmark struct {
	RateMin             float64 `json:"rate_min"`
	RateMax             float64 `json:"rate_max"`
	RateTypical         float64 `json:"rate_typical"`
	LTCMin              float64 `json:"ltc_min"`
	LTCMax              float64 `json:"ltc_max"`
	LTCTypical          float64 `json:"ltc_typical"`
	EstablishmentFeePct float64 `json:"establishment_fee_pct"`
	LineFeePct          float64 `json:"line_fee_pct"`
}

type InvestmentBenchmark struct {
	RateMin             float64 `json:"rate_min"`
	RateMax             float64 `json:"rate_max"`
	RateTypical         float64 `json:"rate_typical"`
	LVRMin              float64 `json:"lvr_min"`
	LVRMax              float64 `json:"lvr_max"`
	LVRTypical          float64 `json:"lvr_typical"`
	EstablishmentFeePct float64 `json:"establishment_fee_pct"`
}

// Benchmarks groups both phases, as served by the API.
type Benchmarks struct {
	Construction ConstructionBenchmark `json:"construction"`
	Investment   InvestmentBenchmark   `json:"investment"`
}

var AUBenchmarks = Benchmarks{
	Construction: ConstructionBenchmark{
		RateMin:             7.5,
		RateMax:             10.0,
		RateTypical:         8.5,
		LTCMin:              50,
		LTCMax:              75,
		LTCTypical:          65,
		EstablishmentFeePct: 1.0,
		LineFeePct:          0.5,
	},
	Investment: InvestmentBenchmark{
		RateMin:             6.0,
		RateMax:             8.0,
		RateTypical:         6.75,
		LVRMin:              50,
		LVRMax:              70,
		LVRTypical:          60,
		EstablishmentFeePct: 0.5,
	},
}

const (
	defaultConstructionMonths = 12
	defaultLoanTermYears      = 25
	defaultInterestOnlyYears  = 5

	// DSCRThreshold is the minimum coverage lenders accept.
	DSCRThreshold = 1.25

	maxRatioPct = 100.0
	maxRatePct  = 100.0
)
