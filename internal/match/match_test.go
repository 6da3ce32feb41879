package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/compbench/compbench/internal/domain"
)

func testMarket() []domain.MarketRow {
	return []domain.MarketRow{
		{Specialty: "Family Medicine"},
		{Specialty: "Cardiology - General"},
		{Specialty: "Orthopedic Surgery"},
	}
}

func TestResolveExact(t *testing.T) {
	r := Resolve("Family Medicine", testMarket(), nil)
	require.NotNil(t, r.Row)
	assert.Equal(t, domain.MatchExact, r.Status)
	assert.Equal(t, "Family Medicine", r.Row.Specialty)

	// Case and surrounding whitespace do not matter for an exact match.
	r = Resolve("  family medicine ", testMarket(), nil)
	require.NotNil(t, r.Row)
	assert.Equal(t, domain.MatchExact, r.Status)
}

func TestResolveNormalized(t *testing.T) {
	r := Resolve("cardiology general", testMarket(), nil)
	require.NotNil(t, r.Row)
	assert.Equal(t, domain.MatchNormalized, r.Status)
	assert.Equal(t, "Cardiology - General", r.Row.Specialty)

	r = Resolve("Orthopedic  Surgery!", testMarket(), nil)
	require.NotNil(t, r.Row)
	assert.Equal(t, domain.MatchNormalized, r.Status)
}

func TestResolveSynonym(t *testing.T) {
	synonyms := domain.SynonymMap{
		"Family Practice": "Family Medicine",
		"Ortho":           "orthopedic surgery",
	}

	r := Resolve("Family Practice", testMarket(), synonyms)
	require.NotNil(t, r.Row)
	assert.Equal(t, domain.MatchSynonym, r.Status)
	assert.Equal(t, "Family Medicine", r.Row.Specialty)

	// The canonical side may itself need normalization.
	r = Resolve("ortho", testMarket(), synonyms)
	require.NotNil(t, r.Row)
	assert.Equal(t, domain.MatchSynonym, r.Status)
	assert.Equal(t, "Orthopedic Surgery", r.Row.Specialty)
}

func TestResolveMissing(t *testing.T) {
	r := Resolve("Dermatology", testMarket(), domain.SynonymMap{"Family Practice": "Family Medicine"})
	assert.Nil(t, r.Row)
	assert.Equal(t, domain.MatchMissing, r.Status)

	r = Resolve("", testMarket(), nil)
	assert.Nil(t, r.Row)
	assert.Equal(t, domain.MatchMissing, r.Status)
}

func TestResolvePrecedence(t *testing.T) {
	// A synonym entry must not shadow a direct match.
	synonyms := domain.SynonymMap{"Family Medicine": "Cardiology - General"}
	r := Resolve("Family Medicine", testMarket(), synonyms)
	require.NotNil(t, r.Row)
	assert.Equal(t, domain.MatchExact, r.Status)
	assert.Equal(t, "Family Medicine", r.Row.Specialty)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"Cardiology - General", "cardiology general"},
		{"cardiology general", "cardiology general"},
		{"  ORTHOPEDIC   SURGERY  ", "orthopedic surgery"},
		{"OB/GYN", "ob gyn"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.out, Normalize(tc.in), "input %q", tc.in)
	}
}
