// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/sustainment-impact/internal/forecast"
)

// FindAvailability finds an availability forecast by name in the results.
// Returns a pointer to the forecast if found, nil otherwise.
func FindAvailability(results forecast.Results, name string) *forecast.AvailabilityForecast {
	for i := range results.Availability {
		if results.Availability[i].Name == name {
			return &results.Availability[i]
		}
	}
	return nil
}

// FindTariff finds a tariff forecast by name in the results.
func FindTariff(results forecast.Results, name string) *forecast.TariffForecast {
	for i := range results.Tariff {
		if results.Tariff[i].Name == name {
			return &results.Tariff[i]
		}
	}
	return nil
}

// SumTotals adds the rounded yearly totals of a tariff forecast in float64.
func SumTotals(fc forecast.TariffForecast) float64 {
	var sum float64
	for _, row := range fc.Projection.Years {
		sum += row.TotalImpact
	}
	return sum
}
