package config

import (
	"fmt"
	"math"
)

const (
	OptimizerKindReadinessFloor = "readiness_floor"
	OptimizerKindBudgetCap      = "budget_cap"

	OptimizerFieldSustainmentIncrease = "sustainmentIncrease"
	OptimizerFieldPassThrough         = "passThrough"

	defaultToleranceAmount = 0.01
	defaultMaxIterations   = 50
	defaultSearchMin       = 0.0
	defaultSearchMax       = 100.0
)

// OptimizerConfig tunes the bisection searches applied to scenarios that set
// a readinessFloor or budgetCap.
type OptimizerConfig struct {
	Min           *float64 `yaml:"min,omitempty" mapstructure:"min"`
	Max           *float64 `yaml:"max,omitempty" mapstructure:"max"`
	Tolerance     float64  `yaml:"tolerance,omitempty" mapstructure:"tolerance"`
	MaxIterations int      `yaml:"maxIterations,omitempty" mapstructure:"maxIterations"`
}

// Normalize ensures defaults are applied before validation.
func (o *OptimizerConfig) Normalize() {
	if o == nil {
		return
	}
	if o.Min == nil {
		min := defaultSearchMin
		o.Min = &min
	}
	if o.Max == nil {
		max := defaultSearchMax
		o.Max = &max
	}
	if o.Tolerance <= 0 {
		o.Tolerance = defaultToleranceAmount
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = defaultMaxIterations
	}
}

// Validate returns an error when the optimizer configuration is unusable.
func (o *OptimizerConfig) Validate() error {
	if o == nil {
		return fmt.Errorf("optimizer configuration cannot be nil")
	}

	o.Normalize()

	if math.IsNaN(*o.Min) || math.IsInf(*o.Min, 0) || math.IsNaN(*o.Max) || math.IsInf(*o.Max, 0) {
		return fmt.Errorf("optimizer bounds must be finite")
	}
	if *o.Max <= *o.Min {
		return fmt.Errorf("optimizer maximum (%.2f) must exceed minimum (%.2f)", *o.Max, *o.Min)
	}
	if *o.Min < 0 {
		return fmt.Errorf("optimizer minimum (%.2f) must not be negative", *o.Min)
	}
	return nil
}

// Bounds returns the normalized search interval.
func (o *OptimizerConfig) Bounds() (float64, float64) {
	o.Normalize()
	return *o.Min, *o.Max
}

// HasDirectives reports whether any active scenario requests optimization.
func (c *Configuration) HasDirectives() bool {
	for _, s := range c.ActiveAvailability() {
		if s.ReadinessFloor > 0 {
			return true
		}
	}
	for _, s := range c.ActiveTariff() {
		if s.BudgetCap > 0 {
			return true
		}
	}
	return false
}
