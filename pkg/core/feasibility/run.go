// Package feasibility composes the cost, loan and returns engines into one
// analysis of a project.
package feasibility

import (
	"context"
	"errors"
	"fmt"
	"time"

	"dev_feasibility/pkg/core/assumption"
	"dev_feasibility/pkg/core/costs"
	"dev_feasibility/pkg/core/fin"
	"dev_feasibility/pkg/core/loan"
	"dev_feasibility/pkg/core/metrics"
	"dev_feasibility/pkg/core/returns"

	"golang.org/x/sync/errgroup"
)

const DefaultTornadoRange = 20.0

// Analysis is the full output for one assumption set.
type Analysis struct {
	ID          string    `json:"id"`
	ProjectName string    `json:"project_name"`
	Scenario    string    `json:"scenario"`
	GeneratedAt time.Time `json:"generated_at"`

	Costs       *costs.Breakdown      `json:"costs,omitempty"`
	CostSummary []costs.SummaryRow    `json:"cost_summary,omitempty"`
	Financing   *loan.DualPhaseResult `json:"financing,omitempty"`

	Params    returns.ProjectParams      `json:"params"`
	Returns   *returns.Result            `json:"returns"`
	Scenarios map[string]*returns.Result `json:"scenarios"`
	Tornado   *returns.TornadoResult     `json:"tornado"`
}

// Options tune a run.
type Options struct {
	TornadoRange float64
}

// Run evaluates every section of the set. The three scenarios and the tornado
// sweep are independent and run concurrently. When the set has a cost section,
// the estimate fills a financing TDC of zero and any zero land, acquisition or
// construction figure of the returns inputs.
func Run(ctx context.Context, set *assumption.Set, opts Options) (*Analysis, error) {
	start := time.Now()
	a, err := run(ctx, set, opts)
	result := metrics.ResultSuccess
	switch {
	case errors.Is(err, fin.ErrInvalidAssumption):
		result = metrics.ResultInvalid
	case err != nil:
		result = metrics.ResultError
	}
	metrics.ObserveCalculation("feasibility", result, time.Since(start))
	return a, err
}

func run(ctx context.Context, set *assumption.Set, opts Options) (*Analysis, error) {
	if opts.TornadoRange == 0 {
		opts.TornadoRange = DefaultTornadoRange
	}
	a := &Analysis{
		ID:          set.ID,
		ProjectName: set.ProjectName,
		Scenario:    set.Scenario,
		GeneratedAt: time.Now(),
	}

	if set.Costs != nil {
		b, err := costs.Estimate(*set.Costs)
		if err != nil {
			return nil, fmt.Errorf("cost estimate: %w", err)
		}
		a.Costs = b
		a.CostSummary = costs.SummaryTable(b)
	}

	if set.Financing != nil {
		terms := *set.Financing
		if terms.TotalDevelopmentCost == 0 && a.Costs != nil {
			terms.TotalDevelopmentCost = a.Costs.Summary.TotalDevelopmentCost
		}
		f, err := loan.AnalyzeDualPhase(terms)
		if err != nil {
			return nil, fmt.Errorf("financing: %w", err)
		}
		a.Financing = f
	}

	baseParams := set.Returns
	if a.Costs != nil {
		baseParams = withEstimate(baseParams, a.Costs)
	}
	params := baseParams
	if adj, ok := returns.ScenarioByName(set.Scenario); ok {
		params = adj.Apply(params)
	}
	a.Params = params
	model, err := returns.NewModel(params)
	if err != nil {
		return nil, fmt.Errorf("returns: %w", err)
	}
	if a.Returns, err = model.Returns(); err != nil {
		return nil, fmt.Errorf("returns: %w", err)
	}
	if a.Returns.IRR == nil {
		metrics.IncUndefinedIRR()
	}

	// Scenarios and the tornado always start from the unadjusted inputs.
	base, err := returns.NewModel(baseParams)
	if err != nil {
		return nil, fmt.Errorf("returns: %w", err)
	}
	scenarioResults := make([]*returns.Result, len(returns.Scenarios))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range returns.Scenarios {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := base.Scenario(s)
			if err != nil {
				return fmt.Errorf("scenario %s: %w", s.Name, err)
			}
			scenarioResults[i] = r
			return nil
		})
	}
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		t, err := base.Tornado(opts.TornadoRange)
		if err != nil {
			return fmt.Errorf("tornado: %w", err)
		}
		a.Tornado = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	a.Scenarios = make(map[string]*returns.Result, len(scenarioResults))
	for i, s := range returns.Scenarios {
		a.Scenarios[s.Name] = scenarioResults[i]
	}
	return a, nil
}

// withEstimate copies the estimated land purchase, acquisition costs and
// construction (base build plus site works) into the zero-valued money inputs
// of p. Figures the caller supplied are kept.
func withEstimate(p returns.ProjectParams, b *costs.Breakdown) returns.ProjectParams {
	if p.PurchasePrice == 0 {
		p.PurchasePrice = b.LandCosts.PurchasePrice
	}
	if p.AcquisitionCosts == 0 {
		p.AcquisitionCosts = b.LandCosts.AcquisitionCosts
	}
	if p.ConstructionCost == 0 {
		p.ConstructionCost = b.ConstructionCosts.BaseCost + b.SiteWorks.Total
	}
	return p
}
