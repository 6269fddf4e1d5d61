// Package fin provides the numeric primitives shared by the feasibility engine:
// discounting, IRR root-finding, annuity payments and rate conversion.
// Every function is pure and safe for concurrent use.
package fin

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

const (
	irrPolishIterations = 20
	irrTolerance        = 1e-10
	realRootTolerance   = 1e-9
)

// =============================================================================
// RATE CONVERSION
// =============================================================================

// MonthlyRate converts an annual percentage (e.g. 6.75) to a monthly decimal rate.
//
// FORMULA: r = annual / 100 / 12
func MonthlyRate(annualPct float64) float64 {
	return annualPct / 100 / 12
}

// =============================================================================
// DISCOUNTING
// =============================================================================

// NPV discounts a cash-flow vector whose first entry sits at t = 0.
//
// FORMULA: NPV = Σ CF_t / (1 + r)^t,  t = 0..n-1
func NPV(rate float64, flows []float64) (float64, error) {
	if rate <= -1 {
		return 0, ErrNonConvergence
	}
	total := npvAt(flows, rate)
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0, ErrNonConvergence
	}
	return total, nil
}

func npvAt(flows []float64, rate float64) float64 {
	if len(flows) == 0 {
		return 0
	}
	return floats.Dot(flows, discountFactors(rate, len(flows)))
}

func discountFactors(rate float64, n int) []float64 {
	factors := make([]float64, n)
	for t := range factors {
		factors[t] = math.Pow(1+rate, -float64(t))
	}
	return factors
}

// IRR finds the rate at which NPV is zero. The result is a decimal (0.12 = 12%).
//
// With x = 1/(1+r), NPV is the polynomial Σ CF_t x^t. Its roots are the
// eigenvalues of the companion matrix; every real positive root is a
// candidate rate and the one closest to zero wins, refined by Newton steps.
// A vector without both an inflow and an outflow has no root and returns
// ErrNonConvergence.
func IRR(flows []float64) (float64, error) {
	if !hasSignChange(flows) {
		return 0, ErrNonConvergence
	}

	roots, ok := polyRoots(flows)
	if !ok {
		return 0, ErrNonConvergence
	}
	best, found := 0.0, false
	for _, x := range roots {
		if math.Abs(imag(x)) > realRootTolerance*math.Max(1, cmplx.Abs(x)) || real(x) <= 0 {
			continue
		}
		r := 1/real(x) - 1
		if !found || math.Abs(r) < math.Abs(best) {
			best, found = r, true
		}
	}
	if !found {
		return 0, ErrNonConvergence
	}
	return polishIRR(flows, best), nil
}

func hasSignChange(flows []float64) bool {
	pos, neg := false, false
	for _, cf := range flows {
		if cf > 0 {
			pos = true
		} else if cf < 0 {
			neg = true
		}
	}
	return pos && neg
}

// polyRoots returns the roots of Σ c_t x^t. Zero roots (leading zero flows)
// are dropped since they map to no finite rate.
func polyRoots(c []float64) ([]complex128, bool) {
	lo, hi := 0, len(c)-1
	for lo <= hi && c[lo] == 0 {
		lo++
	}
	for hi >= lo && c[hi] == 0 {
		hi--
	}
	c = c[lo : hi+1]
	deg := len(c) - 1
	if deg < 1 {
		return nil, false
	}

	// Companion matrix of the monic polynomial x^d + a_{d-1} x^{d-1} + ... + a_0.
	companion := mat.NewDense(deg, deg, nil)
	lead := c[deg]
	for j := 0; j < deg; j++ {
		companion.Set(0, j, -c[deg-1-j]/lead)
	}
	for i := 1; i < deg; i++ {
		companion.Set(i, i-1, 1)
	}

	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenNone) {
		return nil, false
	}
	return eig.Values(nil), true
}

func npvDerivative(flows []float64, rate float64) float64 {
	total := 0.0
	for t, cf := range flows {
		if t == 0 {
			continue
		}
		total -= float64(t) * cf / math.Pow(1+rate, float64(t+1))
	}
	return total
}

// polishIRR tightens an eigenvalue root with Newton steps. It keeps r when a
// step would leave the domain.
func polishIRR(flows []float64, r float64) float64 {
	for i := 0; i < irrPolishIterations; i++ {
		d := npvDerivative(flows, r)
		if d == 0 || math.IsNaN(d) {
			return r
		}
		next := r - npvAt(flows, r)/d
		if next <= -1 || math.IsNaN(next) || math.IsInf(next, 0) {
			return r
		}
		if math.Abs(next-r) < irrTolerance {
			return next
		}
		r = next
	}
	return r
}

// =============================================================================
// ANNUITY
// =============================================================================

// Payment is the level periodic payment that retires principal over n periods.
//
// FORMULA: PMT = P × r(1+r)^n / ((1+r)^n − 1)
//
// With r = 0 the payment is P / n. n <= 0 has no defined payment.
func Payment(principal, rate float64, n int) (float64, error) {
	if n <= 0 {
		return 0, ErrNonConvergence
	}
	if rate == 0 {
		return principal / float64(n), nil
	}
	growth := math.Pow(1+rate, float64(n))
	return principal * rate * growth / (growth - 1), nil
}

// SafeDiv returns a / b, or 0 when b is 0.
func SafeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// Ptr returns a pointer to v. Used for optional metrics.
func Ptr(v float64) *float64 { return &v }
