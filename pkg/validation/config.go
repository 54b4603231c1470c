// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/sustainment-impact/pkg/availability"
	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
)

// ValidateRange returns a warning when value lies outside [min, max].
func ValidateRange(label, field string, value, min, max float64) string {
	if value < min || value > max {
		return fmt.Sprintf("%s: %s %v is outside the documented range [%v, %v]", label, field, value, min, max)
	}
	return ""
}

// ValidateAvailabilityInputs checks availability inputs against their
// documented ranges. label prefixes every warning.
func ValidateAvailabilityInputs(label string, in availability.Inputs) []string {
	var warnings []string
	add := func(w string) {
		if w != "" {
			warnings = append(warnings, w)
		}
	}

	add(ValidateRange(label, "baseline availability", in.BaselineAvailabilityPct, 0, 100))
	add(ValidateRange(label, "sustainment increase", in.SustainmentIncreasePct, 0, 100))
	if in.LinearElasticity <= 0 {
		add(fmt.Sprintf("%s: linear elasticity %v should be positive", label, in.LinearElasticity))
	}
	if in.NonlinearExponent < 1 {
		add(fmt.Sprintf("%s: nonlinear exponent %v should be at least 1", label, in.NonlinearExponent))
	}
	if in.SustainmentIncreasePct > constants.CurveMaxIncreasePct && in.SustainmentIncreasePct <= 100 {
		add(fmt.Sprintf("%s: sustainment increase %v lies beyond the plotted curve (0-%v%%)",
			label, in.SustainmentIncreasePct, constants.CurveMaxIncreasePct))
	}

	return warnings
}

// ValidateTariffInputs checks tariff inputs against their documented ranges.
func ValidateTariffInputs(label string, in tariff.Inputs) []string {
	var warnings []string
	add := func(w string) {
		if w != "" {
			warnings = append(warnings, w)
		}
	}

	add(ValidateRange(label, "steel/aluminum tariff", in.SteelTariffPct, 0, 100))
	add(ValidateRange(label, "component tariff", in.ComponentTariffPct, 0, 100))
	add(ValidateRange(label, "China blanket tariff", in.ChinaTariffPct, 0, 100))
	add(ValidateRange(label, "pass-through", in.PassThroughPct, 0, 100))
	if in.BaseAircraftCost < 0 {
		add(fmt.Sprintf("%s: aircraft cost %v should not be negative", label, in.BaseAircraftCost))
	}
	if in.BaseSustainmentCost < 0 {
		add(fmt.Sprintf("%s: sustainment base cost %v should not be negative", label, in.BaseSustainmentCost))
	}
	if in.HorizonYears < constants.MinHorizonYears || in.HorizonYears > constants.MaxHorizonYears {
		add(fmt.Sprintf("%s: horizon of %d years is outside the documented range [%d, %d]",
			label, in.HorizonYears, constants.MinHorizonYears, constants.MaxHorizonYears))
	}

	return warnings
}
