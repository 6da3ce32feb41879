package optimize

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compbench/compbench/internal/domain"
)

func testMarket() []domain.MarketRow {
	return []domain.MarketRow{
		{
			Specialty: "Family Medicine",
			TCC: domain.PercentilePoints{
				P25: decimal.NewFromInt(200000), P50: decimal.NewFromInt(240000),
				P75: decimal.NewFromInt(280000), P90: decimal.NewFromInt(320000),
			},
			Productivity: domain.PercentilePoints{
				P25: decimal.NewFromInt(4000), P50: decimal.NewFromInt(4800),
				P75: decimal.NewFromInt(5600), P90: decimal.NewFromInt(6400),
			},
			Rate: domain.PercentilePoints{
				P25: decimal.NewFromInt(40), P50: decimal.NewFromInt(45),
				P75: decimal.NewFromInt(50), P90: decimal.NewFromInt(55),
			},
		},
	}
}

func testSettings() domain.OptimizerSettings {
	s := domain.DefaultOptimizerSettings()
	s.CurrentRates = map[string]decimal.Decimal{
		"Family Medicine": decimal.NewFromInt(45),
	}
	return s
}

// fmProvider builds a 1.0 FTE family medicine provider at the median
// productivity, with the given base salary.
func fmProvider(id string, base int64) domain.Provider {
	return domain.Provider{
		ID:          id,
		Name:        id,
		Specialty:   "Family Medicine",
		ClinicalFTE: decimal.NewFromInt(1),
		WRVUs:       decimal.NewFromInt(4800),
		BaseSalary:  decimal.NewFromInt(base),
	}
}

func runEngine(t *testing.T, providers []domain.Provider, settings domain.OptimizerSettings) *domain.RunResult {
	t.Helper()
	engine := NewEngine()
	result, err := engine.Run(context.Background(), RunRequest{
		Providers: providers,
		Market:    testMarket(),
		Settings:  settings,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, result)
	return result
}

func TestRunRecommendsWithinBounds(t *testing.T) {
	// Underpaid cohort: the optimum sits above the band, so the search must
	// stop at the ceiling. Current 45 with a 10% band allows at most 49.50.
	providers := []domain.Provider{fmProvider("MD-1", 0), fmProvider("MD-2", 0)}

	result := runEngine(t, providers, testSettings())
	require.Len(t, result.Specialties, 1)
	sr := result.Specialties[0]

	assert.Equal(t, domain.SearchConverged, sr.Status)
	lo := decimal.NewFromFloat(40.5)
	hi := decimal.NewFromFloat(49.5)
	assert.True(t, sr.RecommendedRate.GreaterThanOrEqual(lo), "recommended %s below band", sr.RecommendedRate)
	assert.True(t, sr.RecommendedRate.LessThanOrEqual(hi), "recommended %s above band", sr.RecommendedRate)
	assert.Equal(t, domain.ActionIncrease, sr.Action)
	assert.True(t, sr.RecommendedRate.GreaterThan(sr.CurrentRate))
}

func TestRunFractionalBoundsAreNeverExceeded(t *testing.T) {
	// Fractional current rates produce band edges with more than two
	// decimals; rounding the searched rate to cents must stay inside them.
	providers := []domain.Provider{fmProvider("MD-1", 0), fmProvider("MD-2", 0)}
	one := decimal.NewFromInt(1)

	for _, current := range []decimal.Decimal{
		decimal.NewFromFloat(44.287),
		decimal.NewFromFloat(45.009),
		decimal.NewFromFloat(45.333),
	} {
		settings := testSettings()
		settings.CurrentRates["Family Medicine"] = current
		floor := current.Mul(one.Sub(settings.MaxDecreasePct))
		ceiling := current.Mul(one.Add(settings.MaxIncreasePct))

		result := runEngine(t, providers, settings)
		require.Len(t, result.Specialties, 1)
		sr := result.Specialties[0]

		assert.True(t, sr.RecommendedRate.LessThanOrEqual(ceiling),
			"current %s: recommended %s exceeds ceiling %s", current, sr.RecommendedRate, ceiling)
		assert.True(t, sr.RecommendedRate.GreaterThanOrEqual(floor),
			"current %s: recommended %s below floor %s", current, sr.RecommendedRate, floor)
	}
}

func TestRunFixedTargetObjective(t *testing.T) {
	// Aiming pay at the 75th percentile needs a rate above the band, so the
	// search stops at the 10% ceiling instead of holding at the align optimum.
	settings := testSettings()
	settings.Objective = domain.ObjectiveFixedTarget
	settings.TargetPercentile = decimal.NewFromInt(75)

	providers := []domain.Provider{fmProvider("MD-1", 24000), fmProvider("MD-2", 24000)}

	result := runEngine(t, providers, settings)
	require.Len(t, result.Specialties, 1)
	sr := result.Specialties[0]

	assert.Equal(t, domain.ActionIncrease, sr.Action)
	assert.True(t, sr.RecommendedRate.Equal(decimal.NewFromFloat(49.5)),
		"recommended %s not at the band ceiling", sr.RecommendedRate)
	assert.True(t, sr.MeanModeledPayPercentile.GreaterThan(decimal.NewFromInt(50)))
}

func TestRunHybridObjectiveBlendsAlignAndTarget(t *testing.T) {
	// Equal weights on alignment (optimum rate 45) and a 75th-percentile
	// target (optimum above the band) settle at the pay percentile midway
	// between the two goals: 62.5, reached near a rate of 49.17.
	settings := testSettings()
	settings.Objective = domain.ObjectiveHybrid
	settings.TargetPercentile = decimal.NewFromInt(75)
	settings.AlignWeight = decimal.NewFromFloat(0.5)

	providers := []domain.Provider{fmProvider("MD-1", 24000), fmProvider("MD-2", 24000)}

	result := runEngine(t, providers, settings)
	require.Len(t, result.Specialties, 1)
	sr := result.Specialties[0]

	assert.Equal(t, domain.ActionIncrease, sr.Action)
	assert.True(t, sr.RecommendedRate.Sub(decimal.NewFromFloat(49.17)).Abs().LessThanOrEqual(decimal.NewFromFloat(0.02)),
		"recommended %s not near the blended optimum", sr.RecommendedRate)
	assert.True(t, sr.MeanModeledPayPercentile.Sub(decimal.NewFromFloat(62.5)).Abs().LessThan(decimal.NewFromInt(1)))
}

func TestRunIsDeterministic(t *testing.T) {
	providers := []domain.Provider{
		fmProvider("MD-1", 0),
		fmProvider("MD-2", 24000),
		fmProvider("MD-3", 100000),
	}

	first := runEngine(t, providers, testSettings())
	second := runEngine(t, providers, testSettings())

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestRunWithoutRateBenchmarkSuppressesRateFlags(t *testing.T) {
	// A market row with no rate points still optimizes against TCC and
	// productivity, but the rate percentiles are unknown and must not raise
	// rate-based governance flags.
	market := testMarket()
	market[0].Rate = domain.PercentilePoints{}

	providers := []domain.Provider{fmProvider("MD-1", 0), fmProvider("MD-2", 0)}

	engine := NewEngine()
	result, err := engine.Run(context.Background(), RunRequest{
		Providers: providers,
		Market:    market,
		Settings:  testSettings(),
	}, nil)
	require.NoError(t, err)
	require.Len(t, result.Specialties, 1)
	sr := result.Specialties[0]

	assert.False(t, sr.RatePercentilesKnown)
	assert.True(t, sr.CurrentRatePercentile.IsZero())
	assert.False(t, sr.Flags.RateBelow25th)
	assert.False(t, sr.Flags.WithinPolicyBand)
}

func TestRunRecommendsDecreaseForOverpaidCohort(t *testing.T) {
	providers := []domain.Provider{fmProvider("MD-1", 100000), fmProvider("MD-2", 100000)}

	result := runEngine(t, providers, testSettings())
	require.Len(t, result.Specialties, 1)
	sr := result.Specialties[0]

	assert.Equal(t, domain.ActionDecrease, sr.Action)
	assert.True(t, sr.RecommendedRate.GreaterThanOrEqual(decimal.NewFromFloat(40.5)))
	assert.True(t, sr.RecommendedRate.LessThan(sr.CurrentRate))
	assert.True(t, sr.Gap.GreaterThan(decimal.Zero))
}

func TestRunHoldsWhenAligned(t *testing.T) {
	// Base 24000 plus 4800 wRVUs at $45 lands exactly on the median TCC, so
	// the current rate is already optimal.
	providers := []domain.Provider{fmProvider("MD-1", 24000), fmProvider("MD-2", 24000)}

	result := runEngine(t, providers, testSettings())
	require.Len(t, result.Specialties, 1)
	sr := result.Specialties[0]

	assert.Equal(t, domain.ActionHold, sr.Action)
	assert.True(t, sr.RecommendedRate.Sub(decimal.NewFromInt(45)).Abs().LessThan(decimal.NewFromFloat(0.1)),
		"recommended %s not near 45", sr.RecommendedRate)
}

func TestRunInfeasibleBoundsKeepCurrentRate(t *testing.T) {
	settings := testSettings()
	// Current rate far above the 75th-percentile ceiling with no room to
	// decrease: the band floor exceeds the cap.
	settings.CurrentRates["Family Medicine"] = decimal.NewFromInt(60)
	settings.MaxDecreasePct = decimal.NewFromFloat(0.05)

	providers := []domain.Provider{fmProvider("MD-1", 24000), fmProvider("MD-2", 24000)}

	result := runEngine(t, providers, settings)
	require.Len(t, result.Specialties, 1)
	sr := result.Specialties[0]

	assert.Equal(t, domain.SearchInfeasible, sr.Status)
	assert.True(t, sr.RecommendedRate.Equal(sr.CurrentRate))
	assert.NotEmpty(t, sr.Note)
}

func TestRunSmallCohortGetsNoRecommendation(t *testing.T) {
	providers := []domain.Provider{fmProvider("MD-1", 0)}

	result := runEngine(t, providers, testSettings())
	require.Len(t, result.Specialties, 1)
	assert.Equal(t, domain.ActionNoRecommendation, result.Specialties[0].Action)
}

func TestRunMissingMatchGoesToAudit(t *testing.T) {
	providers := []domain.Provider{
		fmProvider("MD-1", 24000),
		fmProvider("MD-2", 24000),
		{
			ID: "MD-3", Name: "MD-3", Specialty: "Dermatology",
			ClinicalFTE: decimal.NewFromInt(1),
			WRVUs:       decimal.NewFromInt(4000),
			BaseSalary:  decimal.NewFromInt(300000),
		},
	}

	result := runEngine(t, providers, testSettings())

	// No group forms for the unmatched specialty.
	require.Len(t, result.Specialties, 1)
	assert.Equal(t, "Family Medicine", result.Specialties[0].Specialty)

	require.Len(t, result.Exclusions, 1)
	assert.Equal(t, "MD-3", result.Exclusions[0].ProviderID)
	assert.Contains(t, result.Exclusions[0].Reasons, domain.ReasonMissingMarketMatch)
	assert.Equal(t, 2, result.Summary.IncludedCount)
	assert.Equal(t, 1, result.Summary.ExcludedCount)
}

func TestRunCancellationReturnsNoResult(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	engine := NewEngine()
	result, err := engine.Run(ctx, RunRequest{
		Providers: []domain.Provider{fmProvider("MD-1", 24000)},
		Market:    testMarket(),
		Settings:  testSettings(),
	}, nil)

	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunReportsProgress(t *testing.T) {
	var seen []string
	engine := NewEngine()
	_, err := engine.Run(context.Background(), RunRequest{
		Providers: []domain.Provider{fmProvider("MD-1", 24000), fmProvider("MD-2", 24000)},
		Market:    testMarket(),
		Settings:  testSettings(),
	}, func(p Progress) {
		seen = append(seen, p.SpecialtyName)
		assert.Equal(t, 1, p.TotalSpecialties)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Family Medicine"}, seen)
}

func TestRunBudgetReconciliation(t *testing.T) {
	settings := testSettings()
	cap := decimal.NewFromInt(1000)
	settings.BudgetCap = &cap

	providers := []domain.Provider{fmProvider("MD-1", 24000), fmProvider("MD-2", 24000)}

	result := runEngine(t, providers, settings)
	require.NotNil(t, result.Summary.Budget)
	assert.Equal(t, domain.BudgetOver, result.Summary.Budget.Status)
	assert.True(t, result.Summary.Budget.DeltaDollars.Equal(
		result.Summary.TotalIncentiveDollars.Sub(cap)))
}

func TestRunRejectsInvalidInput(t *testing.T) {
	engine := NewEngine()

	_, err := engine.Run(context.Background(), RunRequest{
		Market:   testMarket(),
		Settings: testSettings(),
	}, nil)
	require.Error(t, err)

	_, err = engine.Run(context.Background(), RunRequest{
		Providers: []domain.Provider{fmProvider("MD-1", 24000)},
		Settings:  testSettings(),
	}, nil)
	require.Error(t, err)

	bad := testSettings()
	bad.Objective = "bogus"
	_, err = engine.Run(context.Background(), RunRequest{
		Providers: []domain.Provider{fmProvider("MD-1", 24000)},
		Market:    testMarket(),
		Settings:  bad,
	}, nil)
	require.Error(t, err)
	var runErr *RunError
	assert.ErrorAs(t, err, &runErr)
}
