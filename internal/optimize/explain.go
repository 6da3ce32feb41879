package optimize

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/domain"
)

// explain builds the natural-language narrative for a specialty result from
// its computed numbers: a headline, up to three supporting bullets, and
// next-step suggestions.
func explain(r *domain.SpecialtyResult) domain.Explanation {
	e := domain.Explanation{Headline: headline(r)}
	e.Bullets = bullets(r)
	e.NextSteps = nextSteps(r)
	return e
}

func headline(r *domain.SpecialtyResult) string {
	switch {
	case r.Status == domain.SearchInfeasible:
		return fmt.Sprintf("%s: rate bounds conflict, holding at $%s per wRVU", r.Specialty, r.CurrentRate.StringFixed(2))
	case r.Action == domain.ActionNoRecommendation:
		return fmt.Sprintf("%s: too few included providers for a recommendation", r.Specialty)
	case r.Action == domain.ActionHold:
		return fmt.Sprintf("%s: current rate of $%s per wRVU is close to optimal", r.Specialty, r.CurrentRate.StringFixed(2))
	case r.Action == domain.ActionIncrease:
		return fmt.Sprintf("%s: increase the conversion factor %s%% to $%s per wRVU",
			r.Specialty, r.RateChangePct.StringFixed(1), r.RecommendedRate.StringFixed(2))
	default:
		return fmt.Sprintf("%s: decrease the conversion factor %s%% to $%s per wRVU",
			r.Specialty, r.RateChangePct.Abs().StringFixed(1), r.RecommendedRate.StringFixed(2))
	}
}

func bullets(r *domain.SpecialtyResult) []string {
	var out []string
	if r.IncludedCount > 0 {
		out = append(out, fmt.Sprintf("Mean modeled pay lands at the %s percentile against a productivity rank of %s (gap %s)",
			ordinal(r.MeanModeledPayPercentile), ordinal(r.MeanProductivityPercentile), r.Gap.StringFixed(1)))
	}
	if !r.SpendImpact.IsZero() {
		direction := "adds"
		if r.SpendImpact.IsNegative() {
			direction = "saves"
		}
		out = append(out, fmt.Sprintf("Modeled plan %s $%s against baseline compensation for %d providers",
			direction, r.SpendImpact.Abs().StringFixed(0), r.IncludedCount))
	}
	if r.ExcludedCount > 0 {
		out = append(out, fmt.Sprintf("%d providers excluded from the search; see the exclusion audit", r.ExcludedCount))
	}
	if len(out) > 3 {
		out = out[:3]
	}
	return out
}

func nextSteps(r *domain.SpecialtyResult) []string {
	var out []string
	if r.Flags.FMVCheckSuggested {
		out = append(out, "Route through fair-market-value review before adoption")
	}
	if r.Flags.UnderpayRisk {
		out = append(out, "Review underpay risk: pay rank trails productivity rank by more than 15 points")
	}
	if r.Flags.RateBelow25th {
		if r.RecommendedRatePercentile.GreaterThanOrEqual(p25) {
			out = append(out, "Current rate sits below the 25th market percentile; the recommended rate clears the floor")
		} else {
			out = append(out, "Current rate sits below the 25th market percentile; confirm the benchmark match")
		}
	}
	if r.Action == domain.ActionNoRecommendation && r.Status != domain.SearchInfeasible {
		out = append(out, "Add providers or relax exclusion rules to enable a recommendation")
	}
	if len(out) == 0 && r.Flags.Clean() {
		out = append(out, "No governance flags raised; recommendation is ready for committee review")
	}
	return out
}

// ordinal renders a percentile for prose, flagging out-of-range estimates the
// way dashboards display them.
func ordinal(pct decimal.Decimal) string {
	switch {
	case pct.LessThan(decimal.NewFromInt(25)):
		return "<25th"
	case pct.GreaterThan(decimal.NewFromInt(90)):
		return ">90th"
	default:
		return pct.StringFixed(0) + "th"
	}
}
