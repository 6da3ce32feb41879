package optimize

import (
	"context"
	"fmt"
	"sort"

	"github.com/compbench/compbench/internal/calculation"
	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/match"
)

// Engine runs the full optimization pipeline: match, filter, per-specialty
// search, governance, budget. It is stateless between runs.
type Engine struct{}

// NewEngine creates an optimization engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Run executes an optimization over the request's roster. The per-specialty
// loop checks ctx between specialties and reports through onProgress (nil
// allowed); cancellation returns no result, never a partial one.
func (e *Engine) Run(ctx context.Context, req RunRequest, onProgress ProgressFunc) (*domain.RunResult, error) {
	settings := req.Settings
	settings.ResolveComponents()
	if err := settings.Validate(); err != nil {
		return nil, &RunError{Operation: "run", Message: "invalid settings", Cause: err}
	}
	if len(req.Providers) == 0 {
		return nil, &RunError{Operation: "run", Message: "no providers supplied"}
	}
	if len(req.Market) == 0 {
		return nil, &RunError{Operation: "run", Message: "no market rows supplied"}
	}

	candidates := matchAll(req.Providers, req.Market, req.Synonyms)
	outcome := calculation.FilterProviders(candidates, settings.Rules)
	groups, order := groupBySpecialty(candidates, &settings)

	result := &domain.RunResult{
		Specialties: make([]domain.SpecialtyResult, 0, len(order)),
		Exclusions:  outcome.Excluded,
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
		result.Specialties = append(result.Specialties, solve(groups[name], &settings))
	}

	result.Summary = summarize(result, &settings, len(req.Providers), len(outcome.Included))
	return result, nil
}

// matchAll resolves every roster provider against the market table.
func matchAll(providers []domain.Provider, market []domain.MarketRow, synonyms domain.SynonymMap) []calculation.Candidate {
	candidates := make([]calculation.Candidate, 0, len(providers))
	for _, p := range providers {
		candidates = append(candidates, calculation.Candidate{
			Provider: p,
			Match:    match.Resolve(p.Specialty, market, synonyms),
		})
	}
	return candidates
}

// groupBySpecialty buckets matched candidates under their market specialty
// label. Providers without a match never form a group; they surface only in
// the exclusion audit. The returned order is sorted for determinism.
func groupBySpecialty(candidates []calculation.Candidate, s *domain.OptimizerSettings) (map[string]*specialtyGroup, []string) {
	groups := make(map[string]*specialtyGroup)
	for _, c := range candidates {
		if c.Match.Row == nil {
			continue
		}
		name := c.Match.Row.Specialty
		g, ok := groups[name]
		if !ok {
			g = &specialtyGroup{marketSpecialty: name, row: c.Match.Row}
			groups[name] = g
		}
		if len(calculation.ExclusionReasonsFor(c, s.Rules)) == 0 {
			g.included = append(g.included, newProviderEval(c, s))
		} else {
			g.excluded = append(g.excluded, c)
		}
	}

	order := make([]string, 0, len(groups))
	for name := range groups {
		order = append(order, name)
	}
	sort.Strings(order)
	return groups, order
}

// summarize rolls the per-specialty results into the run summary.
func summarize(result *domain.RunResult, s *domain.OptimizerSettings, providerCount, includedCount int) domain.RunSummary {
	summary := domain.RunSummary{
		ProviderCount:  providerCount,
		IncludedCount:  includedCount,
		ExcludedCount:  providerCount - includedCount,
		SpecialtyCount: len(result.Specialties),
	}

	for i := range result.Specialties {
		sr := &result.Specialties[i]
		summary.TotalSpendImpact = summary.TotalSpendImpact.Add(sr.SpendImpact)
		summary.TotalIncentiveDollars = summary.TotalIncentiveDollars.Add(sr.IncentiveDollars)
	}

	if s.BudgetCap != nil {
		budget := Reconcile(summary.TotalIncentiveDollars, *s.BudgetCap)
		summary.Budget = &budget
	}

	summary.TopExclusionReasons = calculation.TopExclusionReasons(result.Exclusions)
	summary.KeyMessages = keyMessages(&summary, result)
	if note := AdvisoryMetricNote(s, includedCount); note != "" {
		summary.KeyMessages = append(summary.KeyMessages, note)
	}
	return summary
}

func keyMessages(summary *domain.RunSummary, result *domain.RunResult) []string {
	var msgs []string
	msgs = append(msgs, fmt.Sprintf("Optimized %d specialties covering %d of %d providers",
		summary.SpecialtyCount, summary.IncludedCount, summary.ProviderCount))

	direction := "adds"
	if summary.TotalSpendImpact.IsNegative() {
		direction = "saves"
	}
	msgs = append(msgs, fmt.Sprintf("Recommended rates %s $%s against baseline compensation",
		direction, summary.TotalSpendImpact.Abs().StringFixed(0)))

	if summary.Budget != nil {
		switch summary.Budget.Status {
		case domain.BudgetOver:
			msgs = append(msgs, fmt.Sprintf("Incentive spend exceeds the budget cap by $%s",
				summary.Budget.DeltaDollars.StringFixed(0)))
		case domain.BudgetWithin:
			msgs = append(msgs, "Incentive spend is within the budget cap")
		default:
			msgs = append(msgs, fmt.Sprintf("Incentive spend is $%s under the budget cap",
				summary.Budget.DeltaDollars.Abs().StringFixed(0)))
		}
	}

	flagged := 0
	infeasible := 0
	for i := range result.Specialties {
		if !result.Specialties[i].Flags.Clean() {
			flagged++
		}
		if result.Specialties[i].Status == domain.SearchInfeasible {
			infeasible++
		}
	}
	if flagged > 0 {
		msgs = append(msgs, fmt.Sprintf("%d specialties carry governance flags", flagged))
	}
	if infeasible > 0 {
		msgs = append(msgs, fmt.Sprintf("%d specialties had infeasible rate bounds", infeasible))
	}
	if len(summary.TopExclusionReasons) > 0 {
		top := summary.TopExclusionReasons[0]
		msgs = append(msgs, fmt.Sprintf("Top exclusion reason: %s (%d providers)", top.Reason.Describe(), top.Count))
	}
	return msgs
}

// AdvisoryMetricNote surfaces the metric guidance for the caller: squared
// error emphasizes large misalignments and suits larger cohorts, absolute
// error spreads adjustment evenly and suits small cohorts or fixed-target
// objectives. Advisory only; never auto-applied.
func AdvisoryMetricNote(s *domain.OptimizerSettings, cohortSize int) string {
	if s.Metric == domain.MetricSquared && (cohortSize < 5 || s.Objective == domain.ObjectiveFixedTarget) {
		return "absolute error metric is usually a better fit for small cohorts or fixed-target objectives"
	}
	if s.Metric == domain.MetricAbsolute && cohortSize >= 20 && s.Objective == domain.ObjectiveAlign {
		return "squared error metric emphasizes outliers and is usually a better fit for larger cohorts"
	}
	return ""
}
