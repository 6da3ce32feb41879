// Package percentile converts between raw benchmark values and market
// percentiles using the four published percentile points of a market row.
package percentile

import (
	"github.com/shopspring/decimal"

	"github.com/compbench/compbench/internal/domain"
)

// Estimate is the result of a value-to-percentile lookup. Percentile is not
// clamped to [0,100]; callers rank with it and display "<25" / ">90" from the
// range flags. Known is false when the benchmark row has fewer than two
// usable points.
type Estimate struct {
	Percentile decimal.Decimal
	BelowRange bool
	AboveRange bool
	Known      bool
}

type point struct {
	pct   decimal.Decimal
	value decimal.Decimal
}

// usablePoints filters the four benchmark points down to those carrying data.
// A non-positive value marks a missing cell.
func usablePoints(pts domain.PercentilePoints) []point {
	all := []point{
		{decimal.NewFromInt(25), pts.P25},
		{decimal.NewFromInt(50), pts.P50},
		{decimal.NewFromInt(75), pts.P75},
		{decimal.NewFromInt(90), pts.P90},
	}
	out := make([]point, 0, len(all))
	for _, p := range all {
		if p.value.GreaterThan(decimal.Zero) {
			out = append(out, p)
		}
	}
	return out
}

// Usable reports whether a benchmark row has enough points to interpolate.
func Usable(pts domain.PercentilePoints) bool {
	return len(usablePoints(pts)) >= 2
}

// ValueAt returns the benchmark value at percentile p. Within the known range
// it interpolates linearly between the bracketing points; outside it
// extrapolates on the slope of the nearest segment. The second return is
// false when the row has fewer than two usable points.
func ValueAt(pts domain.PercentilePoints, p decimal.Decimal) (decimal.Decimal, bool) {
	known := usablePoints(pts)
	if len(known) < 2 {
		return decimal.Zero, false
	}

	first, last := known[0], known[len(known)-1]
	if p.LessThanOrEqual(first.pct) {
		return extrapolate(known[0], known[1], p), true
	}
	if p.GreaterThanOrEqual(last.pct) {
		return extrapolate(known[len(known)-2], last, p), true
	}
	for i := 0; i < len(known)-1; i++ {
		lo, hi := known[i], known[i+1]
		if p.GreaterThanOrEqual(lo.pct) && p.LessThanOrEqual(hi.pct) {
			return extrapolate(lo, hi, p), true
		}
	}
	// Unreachable given sorted points; keep the nearest edge.
	return last.value, true
}

// extrapolate evaluates the line through lo and hi at percentile p. The
// percentile spacing between distinct points is never zero. Known points
// return their published value exactly, untouched by division rounding.
func extrapolate(lo, hi point, p decimal.Decimal) decimal.Decimal {
	if p.Equal(lo.pct) {
		return lo.value
	}
	if p.Equal(hi.pct) {
		return hi.value
	}
	slope := hi.value.Sub(lo.value).Div(hi.pct.Sub(lo.pct))
	return lo.value.Add(slope.Mul(p.Sub(lo.pct)))
}

// PercentileOf returns the market percentile of a raw value. Values outside
// the known range extrapolate on the nearest segment and set the matching
// range flag; the percentile stays finite and orderable for ranking. Flat
// segments resolve to the lower percentile edge.
func PercentileOf(pts domain.PercentilePoints, v decimal.Decimal) Estimate {
	known := usablePoints(pts)
	if len(known) < 2 {
		return Estimate{}
	}

	first, last := known[0], known[len(known)-1]
	if v.LessThan(first.value) {
		est := invert(known[0], known[1], v)
		est.BelowRange = true
		return est
	}
	if v.GreaterThan(last.value) {
		est := invert(known[len(known)-2], last, v)
		est.AboveRange = true
		return est
	}
	for i := 0; i < len(known)-1; i++ {
		lo, hi := known[i], known[i+1]
		if v.GreaterThanOrEqual(lo.value) && v.LessThanOrEqual(hi.value) {
			return invert(lo, hi, v)
		}
	}
	// Non-monotone row: no segment brackets v even though it is inside the
	// overall range. Best-effort, pin to the first point at or above v.
	for _, p := range known {
		if p.value.GreaterThanOrEqual(v) {
			return Estimate{Percentile: p.pct, Known: true}
		}
	}
	return Estimate{Percentile: last.pct, Known: true}
}

// invert solves the segment line for the percentile of v.
func invert(lo, hi point, v decimal.Decimal) Estimate {
	run := hi.value.Sub(lo.value)
	if run.IsZero() {
		return Estimate{Percentile: lo.pct, Known: true}
	}
	pct := lo.pct.Add(v.Sub(lo.value).Mul(hi.pct.Sub(lo.pct)).Div(run))
	return Estimate{Percentile: pct, Known: true}
}
