package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ObjectiveKind selects what the rate search minimizes.
type ObjectiveKind string

const (
	ObjectiveAlign       ObjectiveKind = "align"        // pay percentile vs productivity percentile
	ObjectiveFixedTarget ObjectiveKind = "fixed_target" // pay percentile vs configured target
	ObjectiveHybrid      ObjectiveKind = "hybrid"       // weighted blend of both
)

// ErrorMetric selects how per-provider percentile errors aggregate.
type ErrorMetric string

const (
	MetricSquared  ErrorMetric = "squared"
	MetricAbsolute ErrorMetric = "absolute"
)

// Built-in pay component keys for the inclusion map.
const (
	ComponentQuality      = "quality"
	ComponentOther        = "other_incentive"
	ComponentNonClinical  = "non_clinical"
	ComponentProductivity = "productivity"
)

// ComponentInclusion controls whether a built-in component enters total cash
// compensation and whether its recorded amount is treated as per-1.0-share.
type ComponentInclusion struct {
	Included       bool `yaml:"included" json:"included"`
	NormalizeByFTE bool `yaml:"normalize_by_fte,omitempty" json:"normalize_by_fte,omitempty"`
}

// PayLayerType identifies how an additional pay layer is evaluated.
type PayLayerType string

const (
	LayerPercentOfBase PayLayerType = "percent_of_base"
	LayerPerFTEDollar  PayLayerType = "per_fte_dollar"
	LayerFlat          PayLayerType = "flat"
	LayerFromField     PayLayerType = "from_field"
)

// PayLayer is a named add-on evaluated on top of the built-in components.
type PayLayer struct {
	Name           string          `yaml:"name" json:"name"`
	Type           PayLayerType    `yaml:"type" json:"type"`
	Value          decimal.Decimal `yaml:"value,omitempty" json:"value,omitempty"`
	Field          string          `yaml:"field,omitempty" json:"field,omitempty"`
	NormalizeByFTE bool            `yaml:"normalize_by_fte,omitempty" json:"normalize_by_fte,omitempty"`
}

// ExclusionRules holds the eligibility thresholds applied before optimization.
type ExclusionRules struct {
	MinClinicalFTE decimal.Decimal `yaml:"min_clinical_fte" json:"min_clinical_fte"`
	MinWRVUsPerFTE decimal.Decimal `yaml:"min_wrvus_per_fte" json:"min_wrvus_per_fte"`
	ExcludedRoles  []string        `yaml:"excluded_roles,omitempty" json:"excluded_roles,omitempty"`
}

// OptimizerSettings is the fully-resolved configuration for an optimization
// run. Construct via DefaultOptimizerSettings and adjust, or load through the
// config package which applies the same resolution; every consumer sees
// resolved values, never per-use fallbacks.
type OptimizerSettings struct {
	Objective        ObjectiveKind   `yaml:"objective" json:"objective"`
	TargetPercentile decimal.Decimal `yaml:"target_percentile" json:"target_percentile"`
	AlignWeight      decimal.Decimal `yaml:"align_weight" json:"align_weight"`
	Metric           ErrorMetric     `yaml:"metric" json:"metric"`

	Rules ExclusionRules `yaml:"rules" json:"rules"`

	// Candidate rate bounds as fractional change from the current rate.
	MaxDecreasePct decimal.Decimal `yaml:"max_decrease_pct" json:"max_decrease_pct"`
	MaxIncreasePct decimal.Decimal `yaml:"max_increase_pct" json:"max_increase_pct"`

	// Recommended rates never exceed the market rate at this percentile.
	MaxRatePercentile decimal.Decimal `yaml:"max_rate_percentile" json:"max_rate_percentile"`

	// Canonical component inclusion map. Legacy boolean flags are merged in
	// by ResolveComponents before a run starts.
	Components map[string]ComponentInclusion `yaml:"components,omitempty" json:"components,omitempty"`

	// When set, quality pay is modeled as this fraction of clinical base
	// instead of the recorded amount.
	QualityPercentOfBase *decimal.Decimal `yaml:"quality_percent_of_base,omitempty" json:"quality_percent_of_base,omitempty"`

	Layers []PayLayer `yaml:"layers,omitempty" json:"layers,omitempty"`

	// Scales recorded wRVUs for the run only; 0.05 means +5%.
	ProductivityGrowthPct decimal.Decimal `yaml:"productivity_growth_pct,omitempty" json:"productivity_growth_pct,omitempty"`

	// Optional cap on aggregate modeled incentive dollars.
	BudgetCap *decimal.Decimal `yaml:"budget_cap,omitempty" json:"budget_cap,omitempty"`

	// Per-specialty current conversion factor overrides. Without an entry a
	// specialty's current rate is the mean factor of its included providers.
	CurrentRates map[string]decimal.Decimal `yaml:"current_rates,omitempty" json:"current_rates,omitempty"`

	// Normalize TCC and wRVUs to a 1.0 clinical share before percentile
	// lookups.
	NormalizeToFullFTE bool `yaml:"normalize_to_full_fte" json:"normalize_to_full_fte"`

	// Below this many included providers a specialty gets no recommendation.
	MinProvidersForRecommendation int `yaml:"min_providers_for_recommendation" json:"min_providers_for_recommendation"`

	// Search termination controls.
	SearchTolerance decimal.Decimal `yaml:"search_tolerance,omitempty" json:"search_tolerance,omitempty"`
	MaxIterations   int             `yaml:"max_iterations,omitempty" json:"max_iterations,omitempty"`

	// Legacy inclusion flags, superseded by Components. Kept so older
	// scenario files continue to load; merged once by ResolveComponents.
	IncludeQuality         *bool `yaml:"include_quality,omitempty" json:"include_quality,omitempty"`
	IncludeOtherIncentives *bool `yaml:"include_other_incentives,omitempty" json:"include_other_incentives,omitempty"`
	IncludeNonClinical     *bool `yaml:"include_non_clinical,omitempty" json:"include_non_clinical,omitempty"`
}

// DefaultOptimizerSettings returns the documented defaults.
func DefaultOptimizerSettings() OptimizerSettings {
	return OptimizerSettings{
		Objective:         ObjectiveAlign,
		TargetPercentile:  decimal.NewFromInt(50),
		AlignWeight:       decimal.NewFromFloat(0.5),
		Metric:            MetricSquared,
		MaxDecreasePct:    decimal.NewFromFloat(0.10),
		MaxIncreasePct:    decimal.NewFromFloat(0.10),
		MaxRatePercentile: decimal.NewFromInt(75),
		Components: map[string]ComponentInclusion{
			ComponentQuality:      {Included: true},
			ComponentOther:        {Included: true},
			ComponentNonClinical:  {Included: false},
			ComponentProductivity: {Included: true},
		},
		NormalizeToFullFTE:            true,
		MinProvidersForRecommendation: 2,
		SearchTolerance:               decimal.NewFromFloat(0.01),
		MaxIterations:                 80,
	}
}

// ResolveComponents merges the legacy boolean flags into the canonical
// inclusion map and back-fills defaults for anything still absent. It runs
// once per run, before any computation. Precedence: an explicit Components
// entry wins over a legacy flag, and a legacy flag wins over the default.
func (s *OptimizerSettings) ResolveComponents() {
	if s.Components == nil {
		s.Components = make(map[string]ComponentInclusion, 4)
	}
	merge := func(key string, flag *bool) {
		if flag == nil {
			return
		}
		if _, ok := s.Components[key]; ok {
			return
		}
		s.Components[key] = ComponentInclusion{Included: *flag}
	}
	merge(ComponentQuality, s.IncludeQuality)
	merge(ComponentOther, s.IncludeOtherIncentives)
	merge(ComponentNonClinical, s.IncludeNonClinical)
	for key, def := range DefaultOptimizerSettings().Components {
		if _, ok := s.Components[key]; !ok {
			s.Components[key] = def
		}
	}
}

// Validate rejects settings outside allowed ranges. The engine refuses to run
// on any violation rather than clamping.
func (s *OptimizerSettings) Validate() error {
	one := decimal.NewFromInt(1)
	if s.Objective != ObjectiveAlign && s.Objective != ObjectiveFixedTarget && s.Objective != ObjectiveHybrid {
		return fmt.Errorf("objective must be 'align', 'fixed_target', or 'hybrid'")
	}
	if s.Metric != MetricSquared && s.Metric != MetricAbsolute {
		return fmt.Errorf("metric must be 'squared' or 'absolute'")
	}
	if s.Objective != ObjectiveAlign {
		if s.TargetPercentile.LessThan(one) || s.TargetPercentile.GreaterThan(decimal.NewFromInt(99)) {
			return fmt.Errorf("target percentile must be between 1 and 99")
		}
	}
	if s.Objective == ObjectiveHybrid {
		if s.AlignWeight.LessThan(decimal.Zero) || s.AlignWeight.GreaterThan(one) {
			return fmt.Errorf("align weight must be between 0 and 1")
		}
	}
	if s.MaxDecreasePct.LessThan(decimal.Zero) || s.MaxDecreasePct.GreaterThan(one) {
		return fmt.Errorf("max decrease percent must be between 0 and 1")
	}
	if s.MaxIncreasePct.LessThan(decimal.Zero) {
		return fmt.Errorf("max increase percent cannot be negative")
	}
	if s.MaxRatePercentile.LessThan(one) || s.MaxRatePercentile.GreaterThan(decimal.NewFromInt(99)) {
		return fmt.Errorf("max rate percentile must be between 1 and 99")
	}
	if s.Rules.MinClinicalFTE.LessThan(decimal.Zero) {
		return fmt.Errorf("minimum clinical FTE cannot be negative")
	}
	if s.Rules.MinWRVUsPerFTE.LessThan(decimal.Zero) {
		return fmt.Errorf("minimum wRVUs per FTE cannot be negative")
	}
	if s.QualityPercentOfBase != nil {
		if s.QualityPercentOfBase.LessThan(decimal.Zero) || s.QualityPercentOfBase.GreaterThan(one) {
			return fmt.Errorf("quality percent of base must be between 0 and 1")
		}
	}
	if s.ProductivityGrowthPct.LessThan(decimal.NewFromInt(-1)) {
		return fmt.Errorf("productivity growth cannot be below -100%%")
	}
	if s.BudgetCap != nil && s.BudgetCap.LessThan(decimal.Zero) {
		return fmt.Errorf("budget cap cannot be negative")
	}
	for i, layer := range s.Layers {
		if err := layer.Validate(); err != nil {
			return fmt.Errorf("layer %d (%s): %w", i, layer.Name, err)
		}
	}
	if s.MinProvidersForRecommendation < 0 {
		return fmt.Errorf("minimum providers for recommendation cannot be negative")
	}
	if s.MaxIterations < 0 {
		return fmt.Errorf("max iterations cannot be negative")
	}
	return nil
}

// Validate checks a single pay layer definition.
func (l *PayLayer) Validate() error {
	switch l.Type {
	case LayerPercentOfBase:
		if l.Value.LessThan(decimal.Zero) || l.Value.GreaterThan(decimal.NewFromInt(1)) {
			return fmt.Errorf("percent_of_base value must be between 0 and 1")
		}
	case LayerPerFTEDollar, LayerFlat:
		if l.Value.LessThan(decimal.Zero) {
			return fmt.Errorf("dollar value cannot be negative")
		}
	case LayerFromField:
		if l.Field == "" {
			return fmt.Errorf("from_field layer requires a field name")
		}
	default:
		return fmt.Errorf("layer type must be 'percent_of_base', 'per_fte_dollar', 'flat', or 'from_field'")
	}
	return nil
}
