package optimize

import (
	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/domain"
)

var (
	p25 = decimal.NewFromInt(25)
	p75 = decimal.NewFromInt(75)

	underpayGapThreshold = decimal.NewFromInt(-15)
	fmvGapThreshold      = decimal.NewFromInt(15)
)

// EvaluateGovernance derives the policy flags from a specialty's modeled
// outputs. The checks are independent booleans; none excludes another. The
// rate-based flags stay unset when the market row has no usable rate
// benchmark, so a missing benchmark never reads as a breach.
func EvaluateGovernance(r *domain.SpecialtyResult) domain.GovernanceFlags {
	return domain.GovernanceFlags{
		UnderpayRisk:  r.Gap.LessThan(underpayGapThreshold),
		RateBelow25th: r.RatePercentilesKnown && r.CurrentRatePercentile.LessThan(p25),
		WithinPolicyBand: r.RatePercentilesKnown &&
			inBand(r.MeanModeledPayPercentile) &&
			inBand(r.RecommendedRatePercentile),
		FMVCheckSuggested: r.MeanModeledPayPercentile.GreaterThan(p75) ||
			r.Gap.GreaterThan(fmvGapThreshold),
	}
}

func inBand(pct decimal.Decimal) bool {
	return pct.GreaterThanOrEqual(p25) && pct.LessThanOrEqual(p75)
}
