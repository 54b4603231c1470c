// Package forecast defines the data structures related to a given forecast and
// includes functions for computing the forecasts.
package forecast

import (
	"fmt"
	"time"

	"github.com/iwvelando/sustainment-impact/internal/config"
	"github.com/iwvelando/sustainment-impact/pkg/availability"
	"github.com/iwvelando/sustainment-impact/pkg/optimization"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
	"go.uber.org/zap"
)

// AvailabilityForecast holds the evaluation of one availability scenario.
type AvailabilityForecast struct {
	Name          string                 `json:"name"`
	Inputs        availability.Inputs    `json:"inputs"`
	Result        availability.Result    `json:"result"`
	Chart         availability.Chart     `json:"chart"`
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// TariffForecast holds the projection of one tariff scenario.
type TariffForecast struct {
	Name          string                 `json:"name"`
	Inputs        tariff.Inputs          `json:"inputs"`
	Assumptions   tariff.Assumptions     `json:"assumptions"`
	Projection    tariff.Projection      `json:"projection"`
	Chart         tariff.Chart           `json:"chart"`
	Optimizations []optimization.Summary `json:"optimizations,omitempty"`
}

// Results holds every forecast produced from a configuration, in
// configuration order.
type Results struct {
	Availability []AvailabilityForecast `json:"availability"`
	Tariff       []TariffForecast       `json:"tariff"`
}

// Empty reports whether no scenario produced a forecast.
func (r Results) Empty() bool {
	return len(r.Availability) == 0 && len(r.Tariff) == 0
}

// Availability evaluates a single set of availability inputs.
func Availability(name string, in availability.Inputs) (AvailabilityForecast, error) {
	result, err := availability.Compute(in)
	if err != nil {
		return AvailabilityForecast{}, fmt.Errorf("availability scenario %s: %w", name, err)
	}
	return AvailabilityForecast{
		Name:   name,
		Inputs: in,
		Result: result,
		Chart:  availability.NewChart(in, result),
	}, nil
}

// Tariff projects a single set of tariff inputs under assumptions.
func Tariff(name string, assumptions tariff.Assumptions, in tariff.Inputs) (TariffForecast, error) {
	projection, err := tariff.NewModel(assumptions).Compute(in)
	if err != nil {
		return TariffForecast{}, fmt.Errorf("tariff scenario %s: %w", name, err)
	}
	return TariffForecast{
		Name:        name,
		Inputs:      in,
		Assumptions: assumptions,
		Projection:  projection,
		Chart:       tariff.NewChart(projection),
	}, nil
}

// GetForecast processes the forecasts for all active scenarios.
func GetForecast(logger *zap.Logger, conf config.Configuration) (Results, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	var results Results
	for _, scenario := range conf.Availability {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping availability scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		in, err := scenario.ToInputs()
		if err != nil {
			return results, fmt.Errorf("availability scenario %s: %w", scenario.Name, err)
		}
		fc, err := Availability(scenario.Name, in)
		if err != nil {
			return results, err
		}
		results.Availability = append(results.Availability, fc)
	}

	assumptions := conf.TariffAssumptions.Resolve()
	for _, scenario := range conf.Tariff {
		if !scenario.Active {
			logger.Debug(fmt.Sprintf("skipping tariff scenario %s because it is inactive", scenario.Name),
				zap.String("op", "forecast.GetForecast"),
			)
			continue
		}

		fc, err := Tariff(scenario.Name, assumptions, scenario.ToInputs())
		if err != nil {
			return results, err
		}
		results.Tariff = append(results.Tariff, fc)
	}

	logger.Debug("forecast computed",
		zap.String("op", "forecast.GetForecast"),
		zap.Int("availabilityScenarios", len(results.Availability)),
		zap.Int("tariffScenarios", len(results.Tariff)),
		zap.Duration("duration", time.Since(start)),
	)

	return results, nil
}
