package calculation

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/match"
)

// Candidate pairs a roster provider with its market match for filtering and
// downstream computation.
type Candidate struct {
	Provider domain.Provider
	Match    match.Result
}

// FilterOutcome partitions candidates into included and excluded sets. Every
// candidate lands in exactly one set.
type FilterOutcome struct {
	Included []Candidate
	Excluded []domain.ProviderExclusion
}

// ExclusionReasonsFor evaluates every exclusion rule independently and
// accumulates the reasons that apply. Zero reasons means included.
func ExclusionReasonsFor(c Candidate, rules domain.ExclusionRules) []domain.ExclusionReason {
	var reasons []domain.ExclusionReason

	if c.Match.Status == domain.MatchMissing {
		reasons = append(reasons, domain.ReasonMissingMarketMatch)
	}
	if rules.MinClinicalFTE.GreaterThan(decimal.Zero) &&
		c.Provider.ClinicalFTE.LessThan(rules.MinClinicalFTE) {
		reasons = append(reasons, domain.ReasonBelowMinClinicalFTE)
	}
	if rules.MinWRVUsPerFTE.GreaterThan(decimal.Zero) {
		// A zero clinical share can never meet a positive per-share
		// threshold; the guard also avoids the division.
		perFTE, ok := c.Provider.WRVUsPerClinicalFTE()
		if !ok || perFTE.LessThan(rules.MinWRVUsPerFTE) {
			reasons = append(reasons, domain.ReasonBelowMinWRVUsPerFTE)
		}
	}
	for _, role := range rules.ExcludedRoles {
		if strings.EqualFold(strings.TrimSpace(role), strings.TrimSpace(c.Provider.Role)) {
			reasons = append(reasons, domain.ReasonExcludedRole)
			break
		}
	}

	return reasons
}

// FilterProviders applies the exclusion rules to every candidate.
func FilterProviders(candidates []Candidate, rules domain.ExclusionRules) FilterOutcome {
	outcome := FilterOutcome{}
	for _, c := range candidates {
		reasons := ExclusionReasonsFor(c, rules)
		if len(reasons) == 0 {
			outcome.Included = append(outcome.Included, c)
			continue
		}
		outcome.Excluded = append(outcome.Excluded, domain.ProviderExclusion{
			ProviderID:   c.Provider.ID,
			ProviderName: c.Provider.Name,
			Specialty:    c.Provider.Specialty,
			Reasons:      reasons,
		})
	}
	return outcome
}

// TopExclusionReasons aggregates exclusion reasons by count, descending, with
// ties broken by reason name for a stable order.
func TopExclusionReasons(exclusions []domain.ProviderExclusion) []domain.ReasonCount {
	counts := make(map[domain.ExclusionReason]int)
	for _, ex := range exclusions {
		for _, r := range ex.Reasons {
			counts[r]++
		}
	}
	out := make([]domain.ReasonCount, 0, len(counts))
	for r, n := range counts {
		out = append(out, domain.ReasonCount{Reason: r, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}
