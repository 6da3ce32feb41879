// Package sweep re-evaluates a provider population at fixed market rate
// percentiles for sensitivity comparison, without running the rate search.
package sweep

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/calculation"
	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/match"
	"github.com/compbench/compbench/internal/percentile"
)

// Request carries the inputs for a sweep. Settings provides the composition,
// eligibility, and normalization rules; the optimizer's search controls are
// ignored because every rate is fixed by the caller.
type Request struct {
	Providers   []domain.Provider
	Market      []domain.MarketRow
	Synonyms    domain.SynonymMap
	Settings    domain.OptimizerSettings
	Percentiles []decimal.Decimal

	// Optional restriction to specific market specialties.
	SpecialtyFilter []string
}

// Progress reports the per-specialty loop position.
type Progress struct {
	SpecialtyIndex   int
	TotalSpecialties int
	SpecialtyName    string
}

// Runner evaluates sweep requests. Stateless between runs.
type Runner struct{}

// NewRunner creates a sweep runner.
func NewRunner() *Runner {
	return &Runner{}
}

type cohortMember struct {
	fixedTCC    decimal.Decimal
	units       decimal.Decimal
	baselineTCC decimal.Decimal
	share       decimal.Decimal
	prodPct     percentile.Estimate
}

type cohort struct {
	row     *domain.MarketRow
	members []cohortMember
}

// Run evaluates every requested percentile for every matched specialty. An
// empty percentile list is a run error; the loop checks ctx between
// specialties and a cancelled run returns no result.
func (r *Runner) Run(ctx context.Context, req Request, onProgress func(Progress)) (*domain.SweepResult, error) {
	settings := req.Settings
	settings.ResolveComponents()
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("sweep: invalid settings: %w", err)
	}
	if len(req.Percentiles) == 0 {
		return nil, fmt.Errorf("sweep: no percentiles requested")
	}
	for _, p := range req.Percentiles {
		if p.LessThan(decimal.NewFromInt(1)) || p.GreaterThan(decimal.NewFromInt(99)) {
			return nil, fmt.Errorf("sweep: percentile %s outside [1,99]", p.String())
		}
	}

	cohorts, order := buildCohorts(req.Providers, req.Market, req.Synonyms, &settings, req.SpecialtyFilter)

	result := &domain.SweepResult{
		Specialties: order,
		BySpecialty: make(map[string][]domain.SweepRow, len(order)),
	}

	for i, name := range order {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if onProgress != nil {
			onProgress(Progress{SpecialtyIndex: i, TotalSpecialties: len(order), SpecialtyName: name})
		}

		c := cohorts[name]
		rows := make([]domain.SweepRow, 0, len(req.Percentiles))
		for _, pct := range req.Percentiles {
			rate, ok := percentile.ValueAt(c.row.Rate, pct)
			if !ok {
				continue
			}
			rows = append(rows, evaluate(c, pct, rate))
		}
		result.BySpecialty[name] = rows
	}

	return result, nil
}

// buildCohorts matches, filters, and precomputes the fixed composition for
// every eligible provider, grouped by market specialty in sorted order.
func buildCohorts(providers []domain.Provider, market []domain.MarketRow, synonyms domain.SynonymMap, s *domain.OptimizerSettings, filter []string) (map[string]*cohort, []string) {
	allowed := map[string]bool{}
	for _, f := range filter {
		allowed[match.Normalize(f)] = true
	}

	cohorts := make(map[string]*cohort)
	for i := range providers {
		p := providers[i]
		m := match.Resolve(p.Specialty, market, synonyms)
		if m.Row == nil {
			continue
		}
		if len(allowed) > 0 && !allowed[match.Normalize(m.Row.Specialty)] {
			continue
		}
		cand := calculation.Candidate{Provider: p, Match: m}
		if len(calculation.ExclusionReasonsFor(cand, s.Rules)) > 0 {
			continue
		}

		share := decimal.NewFromInt(1)
		if s.NormalizeToFullFTE && p.ClinicalFTE.GreaterThan(decimal.Zero) {
			share = p.ClinicalFTE
		}
		units := calculation.EffectiveWRVUs(&p, s)
		member := cohortMember{
			fixedTCC:    calculation.ComposeTCC(&p, s, calculation.ModeModeled, decimal.Zero),
			units:       units,
			baselineTCC: calculation.ComposeTCC(&p, s, calculation.ModeBaseline, decimal.Zero),
			share:       share,
			prodPct:     percentile.PercentileOf(m.Row.Productivity, units.Div(share)),
		}

		name := m.Row.Specialty
		c, ok := cohorts[name]
		if !ok {
			c = &cohort{row: m.Row}
			cohorts[name] = c
		}
		c.members = append(c.members, member)
	}

	order := make([]string, 0, len(cohorts))
	for name := range cohorts {
		order = append(order, name)
	}
	sort.Strings(order)
	return cohorts, order
}

// evaluate computes one sweep row for a cohort at a fixed rate.
func evaluate(c *cohort, pct, rate decimal.Decimal) domain.SweepRow {
	var payPcts, prodPcts []decimal.Decimal
	incentive := decimal.Zero
	spend := decimal.Zero

	for i := range c.members {
		m := &c.members[i]
		modeled := m.fixedTCC.Add(m.units.Mul(rate))
		incentive = incentive.Add(m.units.Mul(rate))
		spend = spend.Add(modeled.Sub(m.baselineTCC))

		pay := percentile.PercentileOf(c.row.TCC, modeled.Div(m.share))
		if pay.Known && m.prodPct.Known {
			payPcts = append(payPcts, pay.Percentile)
			prodPcts = append(prodPcts, m.prodPct.Percentile)
		}
	}

	row := domain.SweepRow{
		Percentile:                 pct,
		Rate:                       rate.Round(2),
		MeanModeledPayPercentile:   calculation.Mean(payPcts).Round(1),
		MeanProductivityPercentile: calculation.Mean(prodPcts).Round(1),
		IncentiveDollars:           incentive.Round(0),
		SpendImpact:                spend.Round(0),
	}
	row.Gap = row.MeanModeledPayPercentile.Sub(row.MeanProductivityPercentile)
	return row
}
