package optimize

import (
	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/calculation"
	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/percentile"
)

// providerEval caches everything about an included provider that does not
// change across candidate rates, so each objective evaluation is a multiply
// and two table lookups per provider.
type providerEval struct {
	candidate calculation.Candidate

	// Modeled TCC at rate r is fixedTCC + units*r.
	fixedTCC    decimal.Decimal
	units       decimal.Decimal
	baselineTCC decimal.Decimal

	// Divisor applied before percentile lookups; 1 when normalization is
	// off or the clinical share is zero.
	share decimal.Decimal

	prodPct percentile.Estimate
}

func newProviderEval(c calculation.Candidate, s *domain.OptimizerSettings) providerEval {
	p := c.Provider
	share := decimal.NewFromInt(1)
	if s.NormalizeToFullFTE && p.ClinicalFTE.GreaterThan(decimal.Zero) {
		share = p.ClinicalFTE
	}
	ev := providerEval{
		candidate:   c,
		fixedTCC:    calculation.ComposeTCC(&p, s, calculation.ModeModeled, decimal.Zero),
		units:       calculation.EffectiveWRVUs(&p, s),
		baselineTCC: calculation.ComposeTCC(&p, s, calculation.ModeBaseline, decimal.Zero),
		share:       share,
	}
	if c.Match.Row != nil {
		ev.prodPct = percentile.PercentileOf(c.Match.Row.Productivity, ev.units.Div(share))
	}
	return ev
}

// modeledTCC returns total modeled compensation at a candidate rate.
func (ev *providerEval) modeledTCC(rate decimal.Decimal) decimal.Decimal {
	return ev.fixedTCC.Add(ev.units.Mul(rate))
}

// payPctAt looks up the modeled pay percentile at a candidate rate.
func (ev *providerEval) payPctAt(rate decimal.Decimal) percentile.Estimate {
	if ev.candidate.Match.Row == nil {
		return percentile.Estimate{}
	}
	return percentile.PercentileOf(ev.candidate.Match.Row.TCC, ev.modeledTCC(rate).Div(ev.share))
}

// objective computes the aggregate percentile error for a cohort at a
// candidate rate. Providers without usable benchmark data contribute nothing.
func objective(evals []providerEval, s *domain.OptimizerSettings, rate decimal.Decimal) decimal.Decimal {
	alignTotal := decimal.Zero
	targetTotal := decimal.Zero
	n := 0

	for i := range evals {
		ev := &evals[i]
		pay := ev.payPctAt(rate)
		if !pay.Known || !ev.prodPct.Known {
			continue
		}
		n++
		alignTotal = alignTotal.Add(metricError(pay.Percentile.Sub(ev.prodPct.Percentile), s.Metric))
		targetTotal = targetTotal.Add(metricError(pay.Percentile.Sub(s.TargetPercentile), s.Metric))
	}
	if n == 0 {
		return decimal.Zero
	}

	count := decimal.NewFromInt(int64(n))
	alignErr := alignTotal.Div(count)
	targetErr := targetTotal.Div(count)

	switch s.Objective {
	case domain.ObjectiveFixedTarget:
		return targetErr
	case domain.ObjectiveHybrid:
		return s.AlignWeight.Mul(alignErr).
			Add(decimal.NewFromInt(1).Sub(s.AlignWeight).Mul(targetErr))
	default:
		return alignErr
	}
}

func metricError(diff decimal.Decimal, metric domain.ErrorMetric) decimal.Decimal {
	if metric == domain.MetricAbsolute {
		return diff.Abs()
	}
	return diff.Mul(diff)
}
