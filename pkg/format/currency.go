package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if amount < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Millions returns a currency string for an amount already expressed in
// millions of dollars (e.g., "$5,123.40M").
func Millions(amount float64) string {
	return Currency(amount) + "M"
}

// Percent renders a percentage with one decimal place (e.g., "63.5%").
func Percent(value float64) string {
	return fmt.Sprintf("%.1f%%", value)
}

// YearRange renders an inclusive year span with an en dash (e.g., "2025–2049").
func YearRange(first, last int) string {
	return fmt.Sprintf("%d–%d", first, last)
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
