package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TargetApproach selects how the group productivity target is derived.
type TargetApproach string

const (
	// ApproachProductivityPercentile reads the market productivity value at
	// the configured percentile directly.
	ApproachProductivityPercentile TargetApproach = "productivity_percentile"
	// ApproachPayPerUnit derives the target as (market pay at percentile) /
	// (market rate at percentile): the productivity implied by a pay goal.
	ApproachPayPerUnit TargetApproach = "pay_per_unit"
)

// PerformanceBand buckets a provider by percent-to-target.
type PerformanceBand string

const (
	BandBelow80    PerformanceBand = "<80%"
	Band80To99     PerformanceBand = "80-99%"
	Band100To119   PerformanceBand = "100-119%"
	BandAtLeast120 PerformanceBand = ">=120%"
)

// TargetSettings configures the productivity target engine.
type TargetSettings struct {
	Approach         TargetApproach  `yaml:"approach" json:"approach"`
	TargetPercentile decimal.Decimal `yaml:"target_percentile" json:"target_percentile"`

	// Alignment check tolerance in percentile points.
	AlignmentTolerance decimal.Decimal `yaml:"alignment_tolerance" json:"alignment_tolerance"`

	// Planning rate: market rate at this percentile unless an override is
	// supplied.
	PlanningRatePercentile decimal.Decimal  `yaml:"planning_rate_percentile" json:"planning_rate_percentile"`
	PlanningRateOverride   *decimal.Decimal `yaml:"planning_rate_override,omitempty" json:"planning_rate_override,omitempty"`

	Rules ExclusionRules `yaml:"rules" json:"rules"`
}

// DefaultTargetSettings returns the documented defaults.
func DefaultTargetSettings() TargetSettings {
	return TargetSettings{
		Approach:               ApproachProductivityPercentile,
		TargetPercentile:       decimal.NewFromInt(50),
		AlignmentTolerance:     decimal.NewFromInt(10),
		PlanningRatePercentile: decimal.NewFromInt(50),
	}
}

// Validate rejects target settings outside allowed ranges.
func (s *TargetSettings) Validate() error {
	if s.Approach != ApproachProductivityPercentile && s.Approach != ApproachPayPerUnit {
		return fmt.Errorf("approach must be 'productivity_percentile' or 'pay_per_unit'")
	}
	if s.TargetPercentile.LessThan(decimal.NewFromInt(1)) || s.TargetPercentile.GreaterThan(decimal.NewFromInt(99)) {
		return fmt.Errorf("target percentile must be between 1 and 99")
	}
	if s.AlignmentTolerance.LessThan(decimal.Zero) {
		return fmt.Errorf("alignment tolerance cannot be negative")
	}
	if s.PlanningRateOverride == nil {
		if s.PlanningRatePercentile.LessThan(decimal.NewFromInt(1)) || s.PlanningRatePercentile.GreaterThan(decimal.NewFromInt(99)) {
			return fmt.Errorf("planning rate percentile must be between 1 and 99")
		}
	} else if s.PlanningRateOverride.LessThan(decimal.Zero) {
		return fmt.Errorf("planning rate override cannot be negative")
	}
	return nil
}

// TargetProviderResult is one provider's actual-vs-target outcome.
type TargetProviderResult struct {
	ProviderID   string            `json:"provider_id"`
	ProviderName string            `json:"provider_name"`
	Included     bool              `json:"included"`
	Reasons      []ExclusionReason `json:"reasons,omitempty"`

	Target decimal.Decimal `json:"target"`
	Actual decimal.Decimal `json:"actual"`

	// Ratio = actual / target; zero when the target is zero.
	Ratio decimal.Decimal `json:"ratio"`
	Band  PerformanceBand `json:"band"`

	PlanningIncentive decimal.Decimal `json:"planning_incentive"`
}

// SpecialtyTargetResult is the target engine output for one specialty.
type SpecialtyTargetResult struct {
	Specialty       string `json:"specialty"`
	MarketSpecialty string `json:"market_specialty"`

	// GroupTarget is the productivity target at a 1.0 clinical share.
	GroupTarget decimal.Decimal `json:"group_target"`

	MeanPayPercentile          decimal.Decimal `json:"mean_pay_percentile"`
	MeanProductivityPercentile decimal.Decimal `json:"mean_productivity_percentile"`
	Aligned                    bool            `json:"aligned"`

	PlanningRate      decimal.Decimal `json:"planning_rate"`
	PlanningIncentive decimal.Decimal `json:"planning_incentive"`

	Providers  []TargetProviderResult  `json:"providers"`
	BandCounts map[PerformanceBand]int `json:"band_counts"`
}

// TargetResult is the complete productivity target engine output.
type TargetResult struct {
	Specialties            []SpecialtyTargetResult `json:"specialties"`
	TotalPlanningIncentive decimal.Decimal         `json:"total_planning_incentive"`
	Exclusions             []ProviderExclusion     `json:"exclusions,omitempty"`
}

// BandFor buckets a ratio into its performance band.
func BandFor(ratio decimal.Decimal) PerformanceBand {
	switch {
	case ratio.LessThan(decimal.NewFromFloat(0.80)):
		return BandBelow80
	case ratio.LessThan(decimal.NewFromFloat(1.00)):
		return Band80To99
	case ratio.LessThan(decimal.NewFromFloat(1.20)):
		return Band100To119
	default:
		return BandAtLeast120
	}
}
