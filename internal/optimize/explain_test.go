package optimize

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/compbench/compbench/internal/domain"
)

func TestNextStepsRateFloorMessageAdapts(t *testing.T) {
	r := &domain.SpecialtyResult{
		Specialty:                 "Family Medicine",
		Status:                    domain.SearchConverged,
		Action:                    domain.ActionIncrease,
		RatePercentilesKnown:      true,
		CurrentRatePercentile:     decimal.NewFromInt(20),
		RecommendedRatePercentile: decimal.NewFromInt(32),
		Flags:                     domain.GovernanceFlags{RateBelow25th: true},
	}

	// The recommended rate clears the 25th-percentile floor.
	steps := nextSteps(r)
	assert.Contains(t, steps, "Current rate sits below the 25th market percentile; the recommended rate clears the floor")

	// Still below the floor after the search: point at the benchmark instead.
	r.RecommendedRatePercentile = decimal.NewFromInt(22)
	steps = nextSteps(r)
	assert.Contains(t, steps, "Current rate sits below the 25th market percentile; confirm the benchmark match")
}

func TestNextStepsCleanResult(t *testing.T) {
	r := &domain.SpecialtyResult{
		Specialty: "Family Medicine",
		Status:    domain.SearchConverged,
		Action:    domain.ActionHold,
		Flags:     domain.GovernanceFlags{WithinPolicyBand: true},
	}
	steps := nextSteps(r)
	assert.Equal(t, []string{"No governance flags raised; recommendation is ready for committee review"}, steps)
}
