// Package config defines conversion utilities for configuration objects.
package config

import (
	"github.com/iwvelando/sustainment-impact/pkg/availability"
	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
)

// ToInputs converts an AvailabilityScenario into model inputs.
func (s AvailabilityScenario) ToInputs() (availability.Inputs, error) {
	mode, err := availability.ParseElasticityMode(s.ElasticityMode)
	if err != nil {
		return availability.Inputs{}, err
	}
	return availability.Inputs{
		BaselineAvailabilityPct: s.BaselineAvailability,
		SustainmentIncreasePct:  s.SustainmentIncrease,
		Mode:                    mode,
		LinearElasticity:        valueOr(s.LinearElasticity, constants.DefaultLinearElasticity),
		NonlinearExponent:       valueOr(s.NonlinearExponent, constants.DefaultNonlinearExponent),
	}, nil
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

// ToInputs converts a TariffScenario into model inputs.
func (s TariffScenario) ToInputs() tariff.Inputs {
	return tariff.Inputs{
		SteelTariffPct:       s.SteelTariff,
		ComponentTariffPct:   s.ComponentTariff,
		ChinaTariffPct:       s.ChinaTariff,
		PassThroughPct:       s.PassThrough,
		BaseAircraftCost:     s.AircraftCost,
		ProcurementGrowthPct: s.ProcurementGrowth,
		BaseSustainmentCost:  s.SustainmentBase,
		HorizonYears:         s.HorizonYears,
	}
}
