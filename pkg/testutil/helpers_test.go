package testutil

import (
	"testing"

	"github.com/iwvelando/sustainment-impact/internal/forecast"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
)

func testResults() forecast.Results {
	return forecast.Results{
		Availability: []forecast.AvailabilityForecast{
			{Name: "Scenario A"},
			{Name: "Scenario B"},
		},
		Tariff: []forecast.TariffForecast{
			{
				Name: "Reference",
				Projection: tariff.Projection{
					Years: []tariff.YearlyImpact{
						{Year: 2025, TotalImpact: 233.10},
						{Year: 2026, TotalImpact: 239.12},
					},
				},
			},
		},
	}
}

func TestFindAvailability(t *testing.T) {
	results := testResults()

	tests := []struct {
		name        string
		searchName  string
		expectFound bool
	}{
		{"Find existing scenario A", "Scenario A", true},
		{"Find existing scenario B", "Scenario B", true},
		{"Tariff name is not an availability scenario", "Reference", false},
		{"Empty name", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindAvailability(results, tt.searchName)
			if tt.expectFound && (got == nil || got.Name != tt.searchName) {
				t.Errorf("FindAvailability(%q) = %v, expected match", tt.searchName, got)
			}
			if !tt.expectFound && got != nil {
				t.Errorf("FindAvailability(%q) = %v, expected nil", tt.searchName, got)
			}
		})
	}

	// The returned pointer refers to the slice element.
	FindAvailability(results, "Scenario B").Name = "Renamed"
	if results.Availability[1].Name != "Renamed" {
		t.Error("expected FindAvailability to return a pointer into the results")
	}
}

func TestFindTariff(t *testing.T) {
	results := testResults()

	if got := FindTariff(results, "Reference"); got == nil {
		t.Fatal("expected to find Reference")
	}
	if got := FindTariff(results, "Scenario A"); got != nil {
		t.Errorf("expected nil for availability name, got %v", got)
	}
}

func TestSumTotals(t *testing.T) {
	got := SumTotals(*FindTariff(testResults(), "Reference"))
	if got < 472.219 || got > 472.221 {
		t.Errorf("SumTotals() = %v, expected 472.22", got)
	}
}
