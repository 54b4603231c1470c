// Package availability models how aircraft availability rates (A-rates)
// degrade when sustainment budgets are not increased to match tariff-driven
// cost increases.
//
// A fixed nominal sustainment budget buys proportionally fewer parts as costs
// rise; the part shortfall is then translated into an availability drop with
// either a linear or a nonlinear elasticity.
package availability

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/mathutil"
)

// ErrInvalidInput is returned when inputs would make the model produce a
// non-finite result.
var ErrInvalidInput = errors.New("invalid availability input")

// ElasticityMode selects how a part shortfall maps onto an availability drop.
type ElasticityMode string

const (
	Linear    ElasticityMode = "linear"
	Nonlinear ElasticityMode = "nonlinear"
)

// ParseElasticityMode accepts "linear" or "nonlinear" in any case. An empty
// string selects Linear.
func ParseElasticityMode(value string) (ElasticityMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", string(Linear):
		return Linear, nil
	case string(Nonlinear), "non-linear":
		return Nonlinear, nil
	default:
		return "", fmt.Errorf("%w: unknown elasticity mode %q", ErrInvalidInput, value)
	}
}

// Inputs are the assumptions driving one availability evaluation.
type Inputs struct {
	BaselineAvailabilityPct float64        `json:"baselineAvailability"`
	SustainmentIncreasePct  float64        `json:"sustainmentIncrease"`
	Mode                    ElasticityMode `json:"elasticityMode"`
	LinearElasticity        float64        `json:"linearElasticity"`
	NonlinearExponent       float64        `json:"nonlinearExponent"`
}

// DefaultInputs returns the dashboard's initial slider positions.
func DefaultInputs() Inputs {
	return Inputs{
		BaselineAvailabilityPct: constants.DefaultBaselineAvailabilityPct,
		SustainmentIncreasePct:  constants.DefaultSustainmentIncreasePct,
		Mode:                    Linear,
		LinearElasticity:        constants.DefaultLinearElasticity,
		NonlinearExponent:       constants.DefaultNonlinearExponent,
	}
}

// CurvePoint is one sample of the degradation curve. Both elasticity modes
// are evaluated at every point.
type CurvePoint struct {
	SustainmentIncreasePct   float64 `json:"sustainmentIncrease"`
	LinearAvailabilityPct    float64 `json:"linear"`
	NonlinearAvailabilityPct float64 `json:"nonlinear"`
}

// Result is the outcome of Compute.
type Result struct {
	PartReductionFraction float64      `json:"partReduction"`
	AvailabilityDropPct   float64      `json:"availabilityDrop"`
	NewAvailabilityPct    float64      `json:"newAvailability"`
	Curve                 []CurvePoint `json:"curve"`
}

// HeadlineDisplay formats NewAvailabilityPct the way the dashboard metric
// shows it.
func (r Result) HeadlineDisplay() string {
	return fmt.Sprintf(constants.HeadlineAvailabilityFormat, r.NewAvailabilityPct)
}

// PartReductionFraction returns 1 - 1/(1 + increase/100), the share of parts
// a fixed budget can no longer buy after costs rise by increasePct.
func PartReductionFraction(increasePct float64) (float64, error) {
	if !mathutil.IsFinite(increasePct) {
		return 0, fmt.Errorf("%w: sustainment increase must be finite, got %v", ErrInvalidInput, increasePct)
	}
	if increasePct <= constants.MinValidIncreasePct {
		return 0, fmt.Errorf("%w: sustainment increase must exceed %.0f%%, got %v",
			ErrInvalidInput, constants.MinValidIncreasePct, increasePct)
	}
	return 1 - 1/(1+increasePct/constants.PercentageMultiplier), nil
}

// LinearDrop converts a part reduction fraction into an availability drop in
// percentage points using a linear elasticity.
func LinearDrop(fraction, elasticity float64) float64 {
	return fraction * elasticity * constants.PercentageMultiplier
}

// NonlinearDrop converts a part reduction fraction into an availability drop
// in percentage points as fraction^exponent.
func NonlinearDrop(fraction, exponent float64) float64 {
	return math.Pow(fraction, exponent) * constants.PercentageMultiplier
}

// Drop applies the elasticity selected by in.Mode to fraction.
func (in Inputs) Drop(fraction float64) float64 {
	if in.Mode == Nonlinear {
		return NonlinearDrop(fraction, in.NonlinearExponent)
	}
	return LinearDrop(fraction, in.LinearElasticity)
}

// Compute evaluates the model for in. It is a pure function: identical inputs
// always yield identical results.
func Compute(in Inputs) (Result, error) {
	if err := in.checkFinite(); err != nil {
		return Result{}, err
	}
	if in.Mode != Linear && in.Mode != Nonlinear {
		return Result{}, fmt.Errorf("%w: unknown elasticity mode %q", ErrInvalidInput, in.Mode)
	}

	fraction, err := PartReductionFraction(in.SustainmentIncreasePct)
	if err != nil {
		return Result{}, err
	}

	drop := in.Drop(fraction)
	if !mathutil.IsFinite(drop) {
		return Result{}, fmt.Errorf("%w: %s elasticity is undefined for part reduction %v",
			ErrInvalidInput, in.Mode, fraction)
	}

	curve := Curve(in)
	for _, p := range curve {
		if !mathutil.IsFinite(p.LinearAvailabilityPct) || !mathutil.IsFinite(p.NonlinearAvailabilityPct) {
			return Result{}, fmt.Errorf("%w: curve is undefined at sustainment increase %v",
				ErrInvalidInput, p.SustainmentIncreasePct)
		}
	}

	return Result{
		PartReductionFraction: fraction,
		AvailabilityDropPct:   drop,
		NewAvailabilityPct:    math.Max(0, in.BaselineAvailabilityPct-drop),
		Curve:                 curve,
	}, nil
}

// Curve samples both elasticity modes over the fixed cost-increase domain.
// Curve points are not floored at zero, unlike the headline metric.
func Curve(in Inputs) []CurvePoint {
	xs := mathutil.Linspace(constants.CurveMinIncreasePct, constants.CurveMaxIncreasePct, constants.CurveSamples)
	points := make([]CurvePoint, len(xs))
	for i, x := range xs {
		// x is never below zero here, so the fraction is always defined.
		fraction := 1 - 1/(1+x/constants.PercentageMultiplier)
		points[i] = CurvePoint{
			SustainmentIncreasePct:   x,
			LinearAvailabilityPct:    in.BaselineAvailabilityPct - LinearDrop(fraction, in.LinearElasticity),
			NonlinearAvailabilityPct: in.BaselineAvailabilityPct - NonlinearDrop(fraction, in.NonlinearExponent),
		}
	}
	return points
}

func (in Inputs) checkFinite() error {
	fields := []struct {
		name  string
		value float64
	}{
		{"baseline availability", in.BaselineAvailabilityPct},
		{"sustainment increase", in.SustainmentIncreasePct},
		{"linear elasticity", in.LinearElasticity},
		{"nonlinear exponent", in.NonlinearExponent},
	}
	for _, f := range fields {
		if !mathutil.IsFinite(f.value) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidInput, f.name, f.value)
		}
	}
	return nil
}
