package calculation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/compbench/compbench/internal/domain"
)

func testProvider() domain.Provider {
	return domain.Provider{
		ID:                   "MD-1",
		ClinicalFTE:          decimal.NewFromInt(1),
		WRVUs:                decimal.NewFromInt(5000),
		BaseSalary:           decimal.NewFromInt(200000),
		QualityPay:           decimal.NewFromInt(10000),
		OtherIncentivePay:    decimal.NewFromInt(5000),
		NonClinicalPay:       decimal.NewFromInt(20000),
		RecordedIncentivePay: decimal.NewFromInt(30000),
	}
}

func resolvedDefaults() domain.OptimizerSettings {
	s := domain.DefaultOptimizerSettings()
	s.ResolveComponents()
	return s
}

func TestComposeBaselineUsesRecordedIncentive(t *testing.T) {
	p := testProvider()
	s := resolvedDefaults()

	// Defaults include quality and other incentives, exclude non-clinical.
	got := ComposeTCC(&p, &s, ModeBaseline, decimal.Zero)
	want := decimal.NewFromInt(200000 + 10000 + 5000 + 30000)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestComposeModeledSubstitutesUnitsTimesRate(t *testing.T) {
	p := testProvider()
	s := resolvedDefaults()

	rate := decimal.NewFromInt(45)
	got := ComposeTCC(&p, &s, ModeModeled, rate)
	want := decimal.NewFromInt(200000 + 10000 + 5000 + 5000*45)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestComposeComponentToggles(t *testing.T) {
	p := testProvider()
	s := resolvedDefaults()
	s.Components[domain.ComponentQuality] = domain.ComponentInclusion{Included: false}
	s.Components[domain.ComponentNonClinical] = domain.ComponentInclusion{Included: true}

	got := ComposeTCC(&p, &s, ModeBaseline, decimal.Zero)
	want := decimal.NewFromInt(200000 + 5000 + 20000 + 30000)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestComposeQualityPercentOfBase(t *testing.T) {
	p := testProvider()
	s := resolvedDefaults()
	pct := decimal.NewFromFloat(0.03)
	s.QualityPercentOfBase = &pct

	got := ComposeTCC(&p, &s, ModeBaseline, decimal.Zero)
	// 3% of base replaces the recorded quality amount.
	want := decimal.NewFromInt(200000 + 6000 + 5000 + 30000)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestComposeNormalizeByFTE(t *testing.T) {
	p := testProvider()
	p.ClinicalFTE = decimal.NewFromFloat(0.5)
	s := resolvedDefaults()
	s.Components[domain.ComponentQuality] = domain.ComponentInclusion{Included: true, NormalizeByFTE: true}

	got := ComposeTCC(&p, &s, ModeBaseline, decimal.Zero)
	// Quality is treated as a per-1.0-share amount, scaled to the half share.
	want := decimal.NewFromInt(200000 + 5000 + 5000 + 30000)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestComposePayLayers(t *testing.T) {
	p := testProvider()
	p.ExtraComponents = []domain.PayComponent{{Name: "call_pay", Amount: decimal.NewFromInt(12000)}}
	s := resolvedDefaults()
	s.Components = map[string]domain.ComponentInclusion{}
	s.Layers = []domain.PayLayer{
		{Name: "stipend", Type: domain.LayerFlat, Value: decimal.NewFromInt(6000)},
		{Name: "supervision", Type: domain.LayerPercentOfBase, Value: decimal.NewFromFloat(0.02)},
		{Name: "coverage", Type: domain.LayerPerFTEDollar, Value: decimal.NewFromInt(10000)},
		{Name: "call", Type: domain.LayerFromField, Field: "call_pay"},
		{Name: "unknown_field", Type: domain.LayerFromField, Field: "missing"},
	}

	got := ComposeTCC(&p, &s, ModeBaseline, decimal.Zero)
	want := decimal.NewFromInt(200000 + 6000 + 4000 + 10000 + 12000)
	assert.True(t, got.Equal(want), "got %s", got)
}

func TestEffectiveWRVUsGrowth(t *testing.T) {
	p := testProvider()
	s := resolvedDefaults()

	assert.True(t, EffectiveWRVUs(&p, &s).Equal(p.WRVUs))

	s.ProductivityGrowthPct = decimal.NewFromFloat(0.05)
	assert.True(t, EffectiveWRVUs(&p, &s).Equal(decimal.NewFromInt(5250)))
}

func TestMeanMedianSum(t *testing.T) {
	values := []decimal.Decimal{
		decimal.NewFromInt(10),
		decimal.NewFromInt(20),
		decimal.NewFromInt(40),
	}

	assert.True(t, Mean(values).Sub(decimal.NewFromFloat(23.3333)).Abs().LessThan(decimal.NewFromFloat(0.001)))
	assert.True(t, Median(values).Equal(decimal.NewFromInt(20)))
	assert.True(t, Sum(values).Equal(decimal.NewFromInt(70)))

	assert.True(t, Mean(nil).IsZero())
	assert.True(t, Median(nil).IsZero())
	assert.True(t, Sum(nil).IsZero())
}
