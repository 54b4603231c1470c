// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"
	"strconv"

	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Ties are resolved on the exact binary value with round-half-even, so 0.125
// becomes 0.12 and 2.675 (stored as 2.67499...) becomes 2.67.
func Round(val float64) float64 {
	return RoundTo(val, constants.DecimalPlaces)
}

// RoundTo rounds val to the given number of decimal places.
func RoundTo(val float64, places int) float64 {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return val
	}
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(val, 'f', places, 64), 64)
	if err != nil {
		return val
	}
	return rounded
}

// SumCents adds already-rounded currency amounts exactly and returns the
// total rounded to cents.
func SumCents(values []float64) float64 {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.Round(constants.DecimalPlaces).InexactFloat64()
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// IsFinite reports whether val is neither NaN nor infinite.
func IsFinite(val float64) bool {
	return !math.IsNaN(val) && !math.IsInf(val, 0)
}

// ApplyPercentage applies a percentage to a value
func ApplyPercentage(value, percentage float64) float64 {
	return value * (percentage / constants.PercentageMultiplier)
}

// Linspace returns n evenly spaced samples over [start, stop]. The last
// sample is exactly stop.
func Linspace(start, stop float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	samples := make([]float64, n)
	if n == 1 {
		samples[0] = start
		return samples
	}
	step := (stop - start) / float64(n-1)
	for i := range samples {
		samples[i] = float64(i)*step + start
	}
	samples[n-1] = stop
	return samples
}
