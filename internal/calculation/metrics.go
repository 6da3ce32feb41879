package calculation

import (
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
)

// Mean averages a cohort of decimal values. Empty input yields zero.
func Mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	m, err := stats.Mean(toFloats(values))
	if err != nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(m).Round(4)
}

// Median returns the cohort median. Empty input yields zero.
func Median(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	m, err := stats.Median(toFloats(values))
	if err != nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(m).Round(4)
}

func toFloats(values []decimal.Decimal) []float64 {
	fs := make([]float64, len(values))
	for i, v := range values {
		fs[i] = v.InexactFloat64()
	}
	return fs
}

// Sum totals a cohort of decimal values exactly.
func Sum(values []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
