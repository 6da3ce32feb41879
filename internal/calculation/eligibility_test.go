package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compbench/compbench/internal/domain"
	"github.com/compbench/compbench/internal/match"
)

func matchedCandidate(p domain.Provider) Candidate {
	row := &domain.MarketRow{Specialty: p.Specialty}
	return Candidate{Provider: p, Match: match.Result{Row: row, Status: domain.MatchExact}}
}

func TestExclusionReasonsAccumulate(t *testing.T) {
	rules := domain.ExclusionRules{
		MinClinicalFTE: decimal.NewFromFloat(0.5),
		MinWRVUsPerFTE: decimal.NewFromInt(1000),
		ExcludedRoles:  []string{"Resident"},
	}

	c := Candidate{
		Provider: domain.Provider{
			ID:          "MD-1",
			ClinicalFTE: decimal.NewFromFloat(0.25),
			WRVUs:       decimal.NewFromInt(100),
			Role:        "resident",
		},
		Match: match.Result{Status: domain.MatchMissing},
	}

	reasons := ExclusionReasonsFor(c, rules)
	assert.ElementsMatch(t, []domain.ExclusionReason{
		domain.ReasonMissingMarketMatch,
		domain.ReasonBelowMinClinicalFTE,
		domain.ReasonBelowMinWRVUsPerFTE,
		domain.ReasonExcludedRole,
	}, reasons)
}

func TestExclusionZeroFTENeverMeetsPerShareThreshold(t *testing.T) {
	rules := domain.ExclusionRules{MinWRVUsPerFTE: decimal.NewFromInt(1000)}

	c := matchedCandidate(domain.Provider{
		ID:          "MD-2",
		Specialty:   "Family Medicine",
		ClinicalFTE: decimal.Zero,
		WRVUs:       decimal.NewFromInt(5000),
	})

	reasons := ExclusionReasonsFor(c, rules)
	assert.Equal(t, []domain.ExclusionReason{domain.ReasonBelowMinWRVUsPerFTE}, reasons)
}

func TestExclusionThresholdsInactiveWhenZero(t *testing.T) {
	c := matchedCandidate(domain.Provider{
		ID:          "MD-3",
		Specialty:   "Family Medicine",
		ClinicalFTE: decimal.Zero,
		WRVUs:       decimal.Zero,
	})

	reasons := ExclusionReasonsFor(c, domain.ExclusionRules{})
	assert.Empty(t, reasons)
}

func TestFilterProvidersPartitions(t *testing.T) {
	rules := domain.ExclusionRules{MinClinicalFTE: decimal.NewFromFloat(0.5)}

	candidates := []Candidate{
		matchedCandidate(domain.Provider{ID: "MD-1", Name: "A", Specialty: "FM",
			ClinicalFTE: decimal.NewFromInt(1)}),
		matchedCandidate(domain.Provider{ID: "MD-2", Name: "B", Specialty: "FM",
			ClinicalFTE: decimal.NewFromFloat(0.2)}),
	}

	outcome := FilterProviders(candidates, rules)
	require.Len(t, outcome.Included, 1)
	require.Len(t, outcome.Excluded, 1)
	assert.Equal(t, "MD-1", outcome.Included[0].Provider.ID)
	assert.Equal(t, "MD-2", outcome.Excluded[0].ProviderID)
	assert.Equal(t, []domain.ExclusionReason{domain.ReasonBelowMinClinicalFTE}, outcome.Excluded[0].Reasons)
}

func TestTopExclusionReasonsOrdering(t *testing.T) {
	exclusions := []domain.ProviderExclusion{
		{ProviderID: "1", Reasons: []domain.ExclusionReason{domain.ReasonBelowMinClinicalFTE, domain.ReasonExcludedRole}},
		{ProviderID: "2", Reasons: []domain.ExclusionReason{domain.ReasonBelowMinClinicalFTE}},
		{ProviderID: "3", Reasons: []domain.ExclusionReason{domain.ReasonMissingMarketMatch}},
	}

	top := TopExclusionReasons(exclusions)
	require.Len(t, top, 3)
	assert.Equal(t, domain.ReasonBelowMinClinicalFTE, top[0].Reason)
	assert.Equal(t, 2, top[0].Count)
	// Ties break on the reason name for stability.
	assert.Equal(t, domain.ReasonExcludedRole, top[1].Reason)
	assert.Equal(t, domain.ReasonMissingMarketMatch, top[2].Reason)
}
