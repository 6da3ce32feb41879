// Package target derives group productivity targets per specialty, bands
// providers by percent-to-target, and estimates planning incentive dollars.
package target

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/calculation"
	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/match"
	"github.com/compbench/compbench/internal/percentile"
)

// Request carries the inputs for a target run. Compensation supplies the
// component inclusion and normalization rules used for the alignment check;
// nil means defaults.
type Request struct {
	Providers    []domain.Provider
	Market       []domain.MarketRow
	Synonyms     domain.SynonymMap
	Settings     domain.TargetSettings
	Compensation *domain.OptimizerSettings
}

// Engine computes productivity targets. Stateless between runs; planning
// estimates never feed back into the rate optimizer.
type Engine struct{}

// NewEngine creates a target engine.
func NewEngine() *Engine {
	return &Engine{}
}

type cohort struct {
	row      *domain.MarketRow
	included []calculation.Candidate
}

// Run executes the target derivation for every matched specialty.
func (e *Engine) Run(req Request) (*domain.TargetResult, error) {
	if err := req.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("target: invalid settings: %w", err)
	}
	if len(req.Providers) == 0 {
		return nil, fmt.Errorf("target: no providers supplied")
	}
	if len(req.Market) == 0 {
		return nil, fmt.Errorf("target: no market rows supplied")
	}

	comp := domain.DefaultOptimizerSettings()
	if req.Compensation != nil {
		comp = *req.Compensation
	}
	comp.ResolveComponents()

	cohorts := make(map[string]*cohort)
	var exclusions []domain.ProviderExclusion

	for i := range req.Providers {
		p := req.Providers[i]
		m := match.Resolve(p.Specialty, req.Market, req.Synonyms)
		cand := calculation.Candidate{Provider: p, Match: m}
		reasons := calculation.ExclusionReasonsFor(cand, req.Settings.Rules)
		if len(reasons) > 0 {
			exclusions = append(exclusions, domain.ProviderExclusion{
				ProviderID:   p.ID,
				ProviderName: p.Name,
				Specialty:    p.Specialty,
				Reasons:      reasons,
			})
			continue
		}
		name := m.Row.Specialty
		c, ok := cohorts[name]
		if !ok {
			c = &cohort{row: m.Row}
			cohorts[name] = c
		}
		c.included = append(c.included, cand)
	}

	order := make([]string, 0, len(cohorts))
	for name := range cohorts {
		order = append(order, name)
	}
	sort.Strings(order)

	result := &domain.TargetResult{Exclusions: exclusions}
	for _, name := range order {
		sr := e.solveSpecialty(cohorts[name], &req.Settings, &comp)
		result.TotalPlanningIncentive = result.TotalPlanningIncentive.Add(sr.PlanningIncentive)
		result.Specialties = append(result.Specialties, sr)
	}
	return result, nil
}

// solveSpecialty derives the group target and per-provider banding for one
// specialty.
func (e *Engine) solveSpecialty(c *cohort, s *domain.TargetSettings, comp *domain.OptimizerSettings) domain.SpecialtyTargetResult {
	sr := domain.SpecialtyTargetResult{
		Specialty:       c.row.Specialty,
		MarketSpecialty: c.row.Specialty,
		BandCounts:      make(map[domain.PerformanceBand]int),
	}

	sr.GroupTarget = groupTarget(c.row, s).Round(0)
	sr.PlanningRate = planningRate(c.row, s).Round(2)

	var payPcts, prodPcts []decimal.Decimal
	for i := range c.included {
		cand := c.included[i]
		p := cand.Provider

		providerTarget := sr.GroupTarget.Mul(p.ClinicalFTE)
		actual := p.WRVUs

		pr := domain.TargetProviderResult{
			ProviderID:   p.ID,
			ProviderName: p.Name,
			Included:     true,
			Target:       providerTarget.Round(0),
			Actual:       actual,
		}
		if providerTarget.GreaterThan(decimal.Zero) {
			pr.Ratio = actual.Div(providerTarget).Round(4)
		}
		pr.Band = domain.BandFor(pr.Ratio)
		sr.BandCounts[pr.Band]++

		if surplus := actual.Sub(providerTarget); surplus.GreaterThan(decimal.Zero) {
			pr.PlanningIncentive = surplus.Mul(sr.PlanningRate).Round(0)
			sr.PlanningIncentive = sr.PlanningIncentive.Add(pr.PlanningIncentive)
		}
		sr.Providers = append(sr.Providers, pr)

		share := decimal.NewFromInt(1)
		if comp.NormalizeToFullFTE && p.ClinicalFTE.GreaterThan(decimal.Zero) {
			share = p.ClinicalFTE
		}
		baseline := calculation.ComposeTCC(&p, comp, calculation.ModeBaseline, decimal.Zero)
		pay := percentile.PercentileOf(c.row.TCC, baseline.Div(share))
		prod := percentile.PercentileOf(c.row.Productivity, actual.Div(share))
		if pay.Known && prod.Known {
			payPcts = append(payPcts, pay.Percentile)
			prodPcts = append(prodPcts, prod.Percentile)
		}
	}

	sr.MeanPayPercentile = calculation.Mean(payPcts).Round(1)
	sr.MeanProductivityPercentile = calculation.Mean(prodPcts).Round(1)
	sr.Aligned = sr.MeanPayPercentile.Sub(sr.MeanProductivityPercentile).Abs().
		LessThanOrEqual(s.AlignmentTolerance)
	return sr
}

// groupTarget derives the specialty's productivity target at a 1.0 clinical
// share, by the configured approach.
func groupTarget(row *domain.MarketRow, s *domain.TargetSettings) decimal.Decimal {
	switch s.Approach {
	case domain.ApproachPayPerUnit:
		pay, payOK := percentile.ValueAt(row.TCC, s.TargetPercentile)
		rate, rateOK := percentile.ValueAt(row.Rate, s.TargetPercentile)
		if !payOK || !rateOK || rate.LessThanOrEqual(decimal.Zero) {
			return decimal.Zero
		}
		return pay.Div(rate)
	default:
		v, ok := percentile.ValueAt(row.Productivity, s.TargetPercentile)
		if !ok {
			return decimal.Zero
		}
		return v
	}
}

// planningRate resolves the budgeting rate: manual override first, otherwise
// the market rate at the configured percentile.
func planningRate(row *domain.MarketRow, s *domain.TargetSettings) decimal.Decimal {
	if s.PlanningRateOverride != nil {
		return *s.PlanningRateOverride
	}
	v, ok := percentile.ValueAt(row.Rate, s.PlanningRatePercentile)
	if !ok {
		return decimal.Zero
	}
	return v
}
