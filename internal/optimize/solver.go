package optimize

import (
	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/calculation"
	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/percentile"
)

var (
	two     = decimal.NewFromInt(2)
	three   = decimal.NewFromInt(3)
	hundred = decimal.NewFromInt(100)
)

// specialtyGroup collects one market specialty's cohort for the rate search.
type specialtyGroup struct {
	marketSpecialty string
	row             *domain.MarketRow
	included        []providerEval
	excluded        []calculation.Candidate
}

// currentRate derives the specialty's current conversion factor: the settings
// override when present, otherwise the mean factor of included providers that
// carry one, otherwise the market rate median.
func (g *specialtyGroup) currentRate(s *domain.OptimizerSettings) (decimal.Decimal, string) {
	if r, ok := s.CurrentRates[g.marketSpecialty]; ok && r.GreaterThan(decimal.Zero) {
		return r, ""
	}
	var factors []decimal.Decimal
	for i := range g.included {
		if cf := g.included[i].candidate.Provider.ConversionFactor; cf.GreaterThan(decimal.Zero) {
			factors = append(factors, cf)
		}
	}
	if len(factors) > 0 {
		return calculation.Mean(factors), ""
	}
	if v, ok := percentile.ValueAt(g.row.Rate, decimal.NewFromInt(50)); ok {
		return v, "no current conversion factor on file; market median used as the starting rate"
	}
	return decimal.Zero, "no current conversion factor available"
}

// rateBounds intersects the percent-change band around the current rate with
// [0, rate at the max recommended percentile]. ok is false when the domain is
// empty and the specialty is infeasible.
func (g *specialtyGroup) rateBounds(current decimal.Decimal, s *domain.OptimizerSettings) (lo, hi decimal.Decimal, ok bool) {
	one := decimal.NewFromInt(1)
	lo = current.Mul(one.Sub(s.MaxDecreasePct))
	hi = current.Mul(one.Add(s.MaxIncreasePct))
	if lo.IsNegative() {
		lo = decimal.Zero
	}
	if ceiling, capOK := percentile.ValueAt(g.row.Rate, s.MaxRatePercentile); capOK && ceiling.LessThan(hi) {
		hi = ceiling
	}
	if lo.GreaterThan(hi) {
		return lo, hi, false
	}
	return lo, hi, true
}

// searchRate minimizes the aggregate objective over [lo, hi] by ternary
// search. Modeled pay is monotone in rate, which makes the error unimodal, so
// shrinking the interval around the better of two interior probes converges
// to the minimizer. Terminates at the tolerance or the iteration cap.
func searchRate(evals []providerEval, s *domain.OptimizerSettings, lo, hi decimal.Decimal) (decimal.Decimal, int) {
	iters := 0
	for iters < s.MaxIterations && hi.Sub(lo).GreaterThan(s.SearchTolerance) {
		iters++
		third := hi.Sub(lo).Div(three)
		m1 := lo.Add(third)
		m2 := hi.Sub(third)
		if objective(evals, s, m1).GreaterThan(objective(evals, s, m2)) {
			lo = m1
		} else {
			hi = m2
		}
	}
	return lo.Add(hi).Div(two), iters
}

// solve runs the full search for one specialty and assembles its result.
func solve(g *specialtyGroup, s *domain.OptimizerSettings) domain.SpecialtyResult {
	result := domain.SpecialtyResult{
		Specialty:       g.marketSpecialty,
		MarketSpecialty: g.marketSpecialty,
		Status:          domain.SearchConverged,
		IncludedCount:   len(g.included),
		ExcludedCount:   len(g.excluded),
	}

	current, note := g.currentRate(s)
	result.CurrentRate = current.Round(2)
	result.Note = note

	recommended := result.CurrentRate
	switch {
	case len(g.included) == 0 || current.LessThanOrEqual(decimal.Zero):
		result.Action = domain.ActionNoRecommendation
	default:
		lo, hi, ok := g.rateBounds(current, s)
		if !ok {
			result.Status = domain.SearchInfeasible
			result.Note = "candidate rate bounds cross; current rate retained"
		} else {
			raw, iters := searchRate(g.included, s, lo, hi)
			recommended = roundIntoBand(raw, lo, hi)
			result.Iterations = iters
		}
	}
	result.RecommendedRate = recommended

	if current.GreaterThan(decimal.Zero) {
		result.RateChangePct = recommended.Sub(current).Div(current).Mul(hundred).Round(2)
	}

	fillMetrics(&result, g, s, recommended)
	if result.Action == "" {
		result.Action = deriveAction(&result, s)
	}
	result.Flags = EvaluateGovernance(&result)
	result.Explanation = explain(&result)
	result.Providers = providerContexts(g, s, recommended)
	return result
}

// fillMetrics computes the cohort metrics and dollar aggregates at the
// recommended rate.
func fillMetrics(r *domain.SpecialtyResult, g *specialtyGroup, s *domain.OptimizerSettings, rate decimal.Decimal) {
	var prodPcts, modeledPcts, baselinePcts []decimal.Decimal
	spend := decimal.Zero
	incentive := decimal.Zero

	for i := range g.included {
		ev := &g.included[i]
		modeled := ev.modeledTCC(rate)
		spend = spend.Add(modeled.Sub(ev.baselineTCC))
		incentive = incentive.Add(ev.units.Mul(rate))

		pay := ev.payPctAt(rate)
		base := percentile.PercentileOf(g.row.TCC, ev.baselineTCC.Div(ev.share))
		if ev.prodPct.Known && pay.Known {
			prodPcts = append(prodPcts, ev.prodPct.Percentile)
			modeledPcts = append(modeledPcts, pay.Percentile)
		}
		if base.Known {
			baselinePcts = append(baselinePcts, base.Percentile)
		}
	}

	r.MeanProductivityPercentile = calculation.Mean(prodPcts).Round(1)
	r.MeanModeledPayPercentile = calculation.Mean(modeledPcts).Round(1)
	r.MeanBaselinePayPercentile = calculation.Mean(baselinePcts).Round(1)
	r.Gap = r.MeanModeledPayPercentile.Sub(r.MeanProductivityPercentile)
	r.SpendImpact = spend.Round(0)
	r.IncentiveDollars = incentive.Round(0)

	cur := percentile.PercentileOf(g.row.Rate, r.CurrentRate)
	rec := percentile.PercentileOf(g.row.Rate, r.RecommendedRate)
	r.RatePercentilesKnown = cur.Known && rec.Known
	if r.RatePercentilesKnown {
		r.CurrentRatePercentile = cur.Percentile.Round(1)
		r.RecommendedRatePercentile = rec.Percentile.Round(1)
	}
}

// deriveAction maps the rate change to a recommendation direction. Small
// cohorts get no recommendation regardless of the search outcome.
func deriveAction(r *domain.SpecialtyResult, s *domain.OptimizerSettings) domain.RecommendedAction {
	if r.IncludedCount < s.MinProvidersForRecommendation {
		return domain.ActionNoRecommendation
	}
	holdBand := decimal.NewFromFloat(0.5) // percent
	switch {
	case r.RateChangePct.GreaterThan(holdBand):
		return domain.ActionIncrease
	case r.RateChangePct.LessThan(holdBand.Neg()):
		return domain.ActionDecrease
	default:
		return domain.ActionHold
	}
}

// providerContexts builds the audit detail for every provider in the group,
// included or excluded, at the recommended rate.
func providerContexts(g *specialtyGroup, s *domain.OptimizerSettings, rate decimal.Decimal) []domain.ProviderContext {
	contexts := make([]domain.ProviderContext, 0, len(g.included)+len(g.excluded))

	for i := range g.included {
		ev := &g.included[i]
		pay := ev.payPctAt(rate)
		base := percentile.PercentileOf(g.row.TCC, ev.baselineTCC.Div(ev.share))
		ctx := domain.ProviderContext{
			ProviderID:       ev.candidate.Provider.ID,
			ProviderName:     ev.candidate.Provider.Name,
			Included:         true,
			MatchStatus:      ev.candidate.Match.Status,
			BaselineTCC:      ev.baselineTCC.Round(0),
			ModeledTCC:       ev.modeledTCC(rate).Round(0),
			PercentilesKnown: ev.prodPct.Known && pay.Known,
		}
		if ctx.PercentilesKnown {
			ctx.ProductivityPercentile = ev.prodPct.Percentile.Round(1)
			ctx.ModeledPayPercentile = pay.Percentile.Round(1)
		}
		if base.Known {
			ctx.BaselinePayPercentile = base.Percentile.Round(1)
		}
		contexts = append(contexts, ctx)
	}

	for _, c := range g.excluded {
		p := c.Provider
		contexts = append(contexts, domain.ProviderContext{
			ProviderID:   p.ID,
			ProviderName: p.Name,
			Included:     false,
			Reasons:      calculation.ExclusionReasonsFor(c, s.Rules),
			MatchStatus:  c.Match.Status,
			BaselineTCC:  calculation.ComposeTCC(&p, s, calculation.ModeBaseline, decimal.Zero).Round(0),
		})
	}

	return contexts
}

func clamp(v, lo, hi decimal.Decimal) decimal.Decimal {
	if v.LessThan(lo) {
		return lo
	}
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

// roundIntoBand rounds a searched rate to cents without escaping the bounds:
// a value pinned at an edge rounds toward the interior instead. Bands
// narrower than a cent keep the clamped value unrounded.
func roundIntoBand(v, lo, hi decimal.Decimal) decimal.Decimal {
	r := clamp(v, lo, hi).Round(2)
	if r.GreaterThan(hi) {
		r = hi.RoundDown(2)
	}
	if r.LessThan(lo) {
		r = lo.RoundUp(2)
		if r.GreaterThan(hi) {
			return clamp(v, lo, hi)
		}
	}
	return r
}
