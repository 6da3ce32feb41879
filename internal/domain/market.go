package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// PercentilePoints holds the four published benchmark values for one
// dimension of a market specialty. Values are assumed non-decreasing in
// percentile order; a non-positive value marks a missing cell.
type PercentilePoints struct {
	P25 decimal.Decimal `yaml:"p25" json:"p25"`
	P50 decimal.Decimal `yaml:"p50" json:"p50"`
	P75 decimal.Decimal `yaml:"p75" json:"p75"`
	P90 decimal.Decimal `yaml:"p90" json:"p90"`
}

// MarketRow is one specialty's benchmark record across the three dimensions
// the engine consumes.
type MarketRow struct {
	Specialty string `yaml:"specialty" json:"specialty"`
	Role      string `yaml:"role,omitempty" json:"role,omitempty"`
	Region    string `yaml:"region,omitempty" json:"region,omitempty"`

	TCC          PercentilePoints `yaml:"tcc" json:"tcc"`
	Productivity PercentilePoints `yaml:"productivity" json:"productivity"`
	Rate         PercentilePoints `yaml:"rate" json:"rate"`
}

// SynonymMap maps free-text specialty names to canonical market specialty
// labels. Lookups are case-insensitive.
type SynonymMap map[string]string

// Lookup resolves a free-text specialty through the map.
func (m SynonymMap) Lookup(specialty string) (string, bool) {
	if m == nil {
		return "", false
	}
	needle := strings.ToLower(strings.TrimSpace(specialty))
	for from, to := range m {
		if strings.ToLower(strings.TrimSpace(from)) == needle {
			return to, true
		}
	}
	return "", false
}

// MatchStatus describes how a provider's specialty was resolved to a market
// row.
type MatchStatus string

const (
	MatchExact      MatchStatus = "exact"
	MatchNormalized MatchStatus = "normalized"
	MatchSynonym    MatchStatus = "synonym"
	MatchMissing    MatchStatus = "missing"
)
