// Package match resolves free-text provider specialties to market table rows.
package match

import (
	"strings"

	"github.com/compbench/compbench/internal/domain"
)

// Result pairs the matched market row (nil when Missing) with how it was
// found. Every downstream stage keys off Status.
type Result struct {
	Row    *domain.MarketRow
	Status domain.MatchStatus
}

// Resolve matches a provider specialty against the market table: exact
// case-insensitive match first, then match after normalization, then the
// synonym map. First successful rule wins; Missing excludes the provider from
// optimization but keeps it in the audit output.
func Resolve(specialty string, market []domain.MarketRow, synonyms domain.SynonymMap) Result {
	if row := findExact(specialty, market); row != nil {
		return Result{Row: row, Status: domain.MatchExact}
	}
	if row := findNormalized(specialty, market); row != nil {
		return Result{Row: row, Status: domain.MatchNormalized}
	}
	if canonical, ok := synonyms.Lookup(specialty); ok {
		if row := findExact(canonical, market); row != nil {
			return Result{Row: row, Status: domain.MatchSynonym}
		}
		if row := findNormalized(canonical, market); row != nil {
			return Result{Row: row, Status: domain.MatchSynonym}
		}
	}
	return Result{Status: domain.MatchMissing}
}

func findExact(specialty string, market []domain.MarketRow) *domain.MarketRow {
	needle := strings.ToLower(strings.TrimSpace(specialty))
	if needle == "" {
		return nil
	}
	for i := range market {
		if strings.ToLower(strings.TrimSpace(market[i].Specialty)) == needle {
			return &market[i]
		}
	}
	return nil
}

func findNormalized(specialty string, market []domain.MarketRow) *domain.MarketRow {
	needle := Normalize(specialty)
	if needle == "" {
		return nil
	}
	for i := range market {
		if Normalize(market[i].Specialty) == needle {
			return &market[i]
		}
	}
	return nil
}

// Normalize lowercases, strips punctuation, and collapses whitespace so that
// "Cardiology - General" and "cardiology general" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
