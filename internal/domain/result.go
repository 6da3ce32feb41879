package domain

import (
	"github.com/shopspring/decimal"
)

// ExclusionReason is a stable identifier for why a provider was excluded from
// optimization. Reasons accumulate; a provider may carry several.
type ExclusionReason string

const (
	ReasonBelowMinClinicalFTE ExclusionReason = "below_min_clinical_fte"
	ReasonBelowMinWRVUsPerFTE ExclusionReason = "below_min_wrvus_per_fte"
	ReasonExcludedRole        ExclusionReason = "excluded_role"
	ReasonMissingMarketMatch  ExclusionReason = "missing_market_match"
)

// Describe returns the display string for an exclusion reason.
func (r ExclusionReason) Describe() string {
	switch r {
	case ReasonBelowMinClinicalFTE:
		return "below minimum clinical FTE"
	case ReasonBelowMinWRVUsPerFTE:
		return "below minimum productivity per unit share"
	case ReasonExcludedRole:
		return "excluded role"
	case ReasonMissingMarketMatch:
		return "no market specialty match"
	default:
		return string(r)
	}
}

// SearchStatus describes the outcome of a specialty's rate search.
type SearchStatus string

const (
	SearchConverged  SearchStatus = "converged"
	SearchInfeasible SearchStatus = "infeasible"
)

// RecommendedAction is the direction derived from the recommended rate change.
type RecommendedAction string

const (
	ActionIncrease         RecommendedAction = "increase"
	ActionDecrease         RecommendedAction = "decrease"
	ActionHold             RecommendedAction = "hold"
	ActionNoRecommendation RecommendedAction = "no_recommendation"
)

// GovernanceFlags are independent policy signals derived from a specialty's
// modeled outputs. Absence of all flags is itself reportable.
type GovernanceFlags struct {
	UnderpayRisk      bool `json:"underpay_risk"`
	RateBelow25th     bool `json:"rate_below_25th"`
	WithinPolicyBand  bool `json:"within_policy_band"`
	FMVCheckSuggested bool `json:"fmv_check_suggested"`
}

// Clean reports whether no adverse governance flag is raised.
// WithinPolicyBand is informational and does not count against a clean
// result.
func (g GovernanceFlags) Clean() bool {
	return !g.UnderpayRisk && !g.RateBelow25th && !g.FMVCheckSuggested
}

// Explanation is the generated narrative for a specialty result, built from
// the computed numbers.
type Explanation struct {
	Headline  string   `json:"headline"`
	Bullets   []string `json:"bullets,omitempty"`
	NextSteps []string `json:"next_steps,omitempty"`
}

// ProviderContext carries one provider's modeled figures inside a specialty
// result, whether included or excluded.
type ProviderContext struct {
	ProviderID   string            `json:"provider_id"`
	ProviderName string            `json:"provider_name"`
	Included     bool              `json:"included"`
	Reasons      []ExclusionReason `json:"reasons,omitempty"`
	MatchStatus  MatchStatus       `json:"match_status"`

	BaselineTCC decimal.Decimal `json:"baseline_tcc"`
	ModeledTCC  decimal.Decimal `json:"modeled_tcc"`

	ProductivityPercentile decimal.Decimal `json:"productivity_percentile"`
	BaselinePayPercentile  decimal.Decimal `json:"baseline_pay_percentile"`
	ModeledPayPercentile   decimal.Decimal `json:"modeled_pay_percentile"`
	PercentilesKnown       bool            `json:"percentiles_known"`
}

// SpecialtyResult is the optimizer output for one market specialty.
type SpecialtyResult struct {
	Specialty       string       `json:"specialty"`
	MarketSpecialty string       `json:"market_specialty"`
	Status          SearchStatus `json:"status"`
	Note            string       `json:"note,omitempty"`

	CurrentRate     decimal.Decimal `json:"current_rate"`
	RecommendedRate decimal.Decimal `json:"recommended_rate"`
	RateChangePct   decimal.Decimal `json:"rate_change_pct"`

	// Rate percentiles are meaningful only when the market row carries a
	// usable rate benchmark.
	CurrentRatePercentile     decimal.Decimal `json:"current_rate_percentile"`
	RecommendedRatePercentile decimal.Decimal `json:"recommended_rate_percentile"`
	RatePercentilesKnown      bool            `json:"rate_percentiles_known"`

	MeanProductivityPercentile decimal.Decimal `json:"mean_productivity_percentile"`
	MeanModeledPayPercentile   decimal.Decimal `json:"mean_modeled_pay_percentile"`
	MeanBaselinePayPercentile  decimal.Decimal `json:"mean_baseline_pay_percentile"`

	// Gap = mean modeled pay percentile − mean productivity percentile.
	Gap decimal.Decimal `json:"gap"`

	Action RecommendedAction `json:"action"`

	SpendImpact      decimal.Decimal `json:"spend_impact"`
	IncentiveDollars decimal.Decimal `json:"incentive_dollars"`

	Flags       GovernanceFlags `json:"flags"`
	Explanation Explanation     `json:"explanation"`

	Providers     []ProviderContext `json:"providers"`
	IncludedCount int               `json:"included_count"`
	ExcludedCount int               `json:"excluded_count"`
	Iterations    int               `json:"iterations"`
}

// ReasonCount is one entry of the top-exclusion-reasons report.
type ReasonCount struct {
	Reason ExclusionReason `json:"reason"`
	Count  int             `json:"count"`
}

// ProviderExclusion is one audit entry: a provider and every reason that
// excluded it.
type ProviderExclusion struct {
	ProviderID   string            `json:"provider_id"`
	ProviderName string            `json:"provider_name"`
	Specialty    string            `json:"specialty"`
	Reasons      []ExclusionReason `json:"reasons"`
}

// BudgetStatus classifies aggregate incentive spend against the cap.
type BudgetStatus string

const (
	BudgetOver   BudgetStatus = "over"
	BudgetUnder  BudgetStatus = "under"
	BudgetWithin BudgetStatus = "within"
)

// BudgetResult is the reconciler output. Reporting only; it never feeds back
// into the per-specialty search.
type BudgetResult struct {
	Status       BudgetStatus    `json:"status"`
	CapDollars   decimal.Decimal `json:"cap_dollars"`
	TotalDollars decimal.Decimal `json:"total_dollars"`
	DeltaDollars decimal.Decimal `json:"delta_dollars"`
}

// RunSummary aggregates a full optimization run.
type RunSummary struct {
	ProviderCount  int `json:"provider_count"`
	IncludedCount  int `json:"included_count"`
	ExcludedCount  int `json:"excluded_count"`
	SpecialtyCount int `json:"specialty_count"`

	TotalSpendImpact      decimal.Decimal `json:"total_spend_impact"`
	TotalIncentiveDollars decimal.Decimal `json:"total_incentive_dollars"`

	Budget *BudgetResult `json:"budget,omitempty"`

	KeyMessages         []string      `json:"key_messages,omitempty"`
	TopExclusionReasons []ReasonCount `json:"top_exclusion_reasons,omitempty"`
}

// RunResult is the complete optimizer output: summary, per-specialty detail,
// and the exclusion audit. A result is a snapshot; identical inputs reproduce
// it exactly.
type RunResult struct {
	Summary     RunSummary          `json:"summary"`
	Specialties []SpecialtyResult   `json:"specialties"`
	Exclusions  []ProviderExclusion `json:"exclusions,omitempty"`
}

// SweepRow is the sweep runner's output for one specialty at one fixed rate
// percentile.
type SweepRow struct {
	Percentile decimal.Decimal `json:"percentile"`
	Rate       decimal.Decimal `json:"rate"`

	MeanModeledPayPercentile   decimal.Decimal `json:"mean_modeled_pay_percentile"`
	MeanProductivityPercentile decimal.Decimal `json:"mean_productivity_percentile"`
	Gap                        decimal.Decimal `json:"gap"`

	IncentiveDollars decimal.Decimal `json:"incentive_dollars"`
	SpendImpact      decimal.Decimal `json:"spend_impact"`
}

// SweepResult groups sweep rows by market specialty. Specialties preserves a
// deterministic iteration order for BySpecialty.
type SweepResult struct {
	Specialties []string              `json:"specialties"`
	BySpecialty map[string][]SweepRow `json:"by_specialty"`
}
