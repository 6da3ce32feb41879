package optimize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/compbench/compbench/internal/domain"
)

func TestGovernanceUnderpayRisk(t *testing.T) {
	r := &domain.SpecialtyResult{
		Gap:                       decimal.NewFromInt(-20),
		RatePercentilesKnown:      true,
		CurrentRatePercentile:     decimal.NewFromInt(50),
		RecommendedRatePercentile: decimal.NewFromInt(50),
		MeanModeledPayPercentile:  decimal.NewFromInt(40),
	}
	flags := EvaluateGovernance(r)
	assert.True(t, flags.UnderpayRisk)
	assert.False(t, flags.FMVCheckSuggested)
	assert.False(t, flags.Clean())
}

func TestGovernanceGapBoundaryIsNotUnderpay(t *testing.T) {
	r := &domain.SpecialtyResult{
		Gap:                       decimal.NewFromInt(-15),
		RatePercentilesKnown:      true,
		CurrentRatePercentile:     decimal.NewFromInt(50),
		RecommendedRatePercentile: decimal.NewFromInt(50),
		MeanModeledPayPercentile:  decimal.NewFromInt(35),
	}
	flags := EvaluateGovernance(r)
	assert.False(t, flags.UnderpayRisk)
}

func TestGovernanceFMVFromHighPay(t *testing.T) {
	r := &domain.SpecialtyResult{
		Gap:                       decimal.NewFromInt(5),
		RatePercentilesKnown:      true,
		CurrentRatePercentile:     decimal.NewFromInt(60),
		RecommendedRatePercentile: decimal.NewFromInt(60),
		MeanModeledPayPercentile:  decimal.NewFromInt(80),
	}
	flags := EvaluateGovernance(r)
	assert.True(t, flags.FMVCheckSuggested)
	assert.False(t, flags.UnderpayRisk)
}

func TestGovernanceFMVFromPositiveGap(t *testing.T) {
	r := &domain.SpecialtyResult{
		Gap:                       decimal.NewFromInt(20),
		RatePercentilesKnown:      true,
		CurrentRatePercentile:     decimal.NewFromInt(50),
		RecommendedRatePercentile: decimal.NewFromInt(50),
		MeanModeledPayPercentile:  decimal.NewFromInt(70),
	}
	flags := EvaluateGovernance(r)
	assert.True(t, flags.FMVCheckSuggested)
}

func TestGovernanceRateBelow25th(t *testing.T) {
	r := &domain.SpecialtyResult{
		Gap:                       decimal.Zero,
		RatePercentilesKnown:      true,
		CurrentRatePercentile:     decimal.NewFromInt(20),
		RecommendedRatePercentile: decimal.NewFromInt(30),
		MeanModeledPayPercentile:  decimal.NewFromInt(50),
	}
	flags := EvaluateGovernance(r)
	assert.True(t, flags.RateBelow25th)
	assert.True(t, flags.WithinPolicyBand)
}

func TestGovernanceWithinPolicyBandNeedsBoth(t *testing.T) {
	r := &domain.SpecialtyResult{
		RatePercentilesKnown:      true,
		CurrentRatePercentile:     decimal.NewFromInt(50),
		RecommendedRatePercentile: decimal.NewFromInt(80),
		MeanModeledPayPercentile:  decimal.NewFromInt(50),
	}
	flags := EvaluateGovernance(r)
	assert.False(t, flags.WithinPolicyBand)

	r.RecommendedRatePercentile = decimal.NewFromInt(75)
	flags = EvaluateGovernance(r)
	assert.True(t, flags.WithinPolicyBand)
}

func TestGovernanceCleanResult(t *testing.T) {
	r := &domain.SpecialtyResult{
		Gap:                       decimal.NewFromInt(2),
		RatePercentilesKnown:      true,
		CurrentRatePercentile:     decimal.NewFromInt(50),
		RecommendedRatePercentile: decimal.NewFromInt(55),
		MeanModeledPayPercentile:  decimal.NewFromInt(52),
	}
	flags := EvaluateGovernance(r)
	assert.True(t, flags.Clean())
	assert.True(t, flags.WithinPolicyBand)
}

func TestGovernanceRateFlagsNeedABenchmark(t *testing.T) {
	// No usable rate benchmark leaves the percentiles at zero; that zero must
	// not read as a sub-25th rate, and the policy band cannot be confirmed.
	r := &domain.SpecialtyResult{
		Gap:                      decimal.Zero,
		MeanModeledPayPercentile: decimal.NewFromInt(50),
	}
	flags := EvaluateGovernance(r)
	assert.False(t, flags.RateBelow25th)
	assert.False(t, flags.WithinPolicyBand)
	assert.True(t, flags.Clean())
}

func TestGovernanceCleanIgnoresPolicyBand(t *testing.T) {
	assert.True(t, domain.GovernanceFlags{WithinPolicyBand: true}.Clean())
	assert.False(t, domain.GovernanceFlags{UnderpayRisk: true}.Clean())
	assert.False(t, domain.GovernanceFlags{RateBelow25th: true}.Clean())
	assert.False(t, domain.GovernanceFlags{FMVCheckSuggested: true}.Clean())
}

func TestReconcileBudget(t *testing.T) {
	over := Reconcile(decimal.NewFromInt(110000), decimal.NewFromInt(100000))
	assert.Equal(t, domain.BudgetOver, over.Status)
	assert.True(t, over.DeltaDollars.Equal(decimal.NewFromInt(10000)))

	within := Reconcile(decimal.NewFromInt(96000), decimal.NewFromInt(100000))
	assert.Equal(t, domain.BudgetWithin, within.Status)
	assert.True(t, within.DeltaDollars.Equal(decimal.NewFromInt(-4000)))

	exact := Reconcile(decimal.NewFromInt(100000), decimal.NewFromInt(100000))
	assert.Equal(t, domain.BudgetWithin, exact.Status)

	under := Reconcile(decimal.NewFromInt(80000), decimal.NewFromInt(100000))
	assert.Equal(t, domain.BudgetUnder, under.Status)
	assert.True(t, under.DeltaDollars.Equal(decimal.NewFromInt(-20000)))
}
