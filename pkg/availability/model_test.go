package availability

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeLinearExample(t *testing.T) {
	in := Inputs{
		BaselineAvailabilityPct: 70,
		SustainmentIncreasePct:  15,
		Mode:                    Linear,
		LinearElasticity:        0.5,
		NonlinearExponent:       1.8,
	}

	result, err := Compute(in)
	require.NoError(t, err)

	assert.InDelta(t, 0.130434782608, result.PartReductionFraction, 1e-9)
	assert.InDelta(t, 6.5217391304, result.AvailabilityDropPct, 1e-9)
	assert.InDelta(t, 63.4782608696, result.NewAvailabilityPct, 1e-9)
	assert.Equal(t, "63.5", result.HeadlineDisplay())
}

func TestComputeNonlinear(t *testing.T) {
	in := Inputs{
		BaselineAvailabilityPct: 70,
		SustainmentIncreasePct:  15,
		Mode:                    Nonlinear,
		LinearElasticity:        0.5,
		NonlinearExponent:       1.8,
	}

	result, err := Compute(in)
	require.NoError(t, err)

	fraction := 1 - 1/1.15
	expectedDrop := math.Pow(fraction, 1.8) * 100
	assert.Equal(t, expectedDrop, result.AvailabilityDropPct)
	assert.Equal(t, 70-expectedDrop, result.NewAvailabilityPct)
	assert.Less(t, result.AvailabilityDropPct, fraction*100, "exponent > 1 shrinks the drop for fractions below one")
}

func TestComputeZeroIncreaseKeepsBaseline(t *testing.T) {
	for _, mode := range []ElasticityMode{Linear, Nonlinear} {
		t.Run(string(mode), func(t *testing.T) {
			in := DefaultInputs()
			in.Mode = mode
			in.SustainmentIncreasePct = 0

			result, err := Compute(in)
			require.NoError(t, err)
			assert.Equal(t, 0.0, result.PartReductionFraction)
			assert.Equal(t, 0.0, result.AvailabilityDropPct)
			assert.Equal(t, in.BaselineAvailabilityPct, result.NewAvailabilityPct)
		})
	}
}

func TestComputeFloorsAtZero(t *testing.T) {
	in := Inputs{
		BaselineAvailabilityPct: 5,
		SustainmentIncreasePct:  100,
		Mode:                    Linear,
		LinearElasticity:        1.0,
		NonlinearExponent:       1,
	}

	result, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, 0.0, result.NewAvailabilityPct)
	assert.Greater(t, result.AvailabilityDropPct, in.BaselineAvailabilityPct)
}

func TestComputeBounds(t *testing.T) {
	for _, mode := range []ElasticityMode{Linear, Nonlinear} {
		for baseline := 0.0; baseline <= 100; baseline += 12.5 {
			for increase := 0.0; increase <= 100; increase += 5 {
				in := Inputs{
					BaselineAvailabilityPct: baseline,
					SustainmentIncreasePct:  increase,
					Mode:                    mode,
					LinearElasticity:        0.9,
					NonlinearExponent:       2.5,
				}
				result, err := Compute(in)
				require.NoError(t, err)
				assert.GreaterOrEqual(t, result.NewAvailabilityPct, 0.0)
				assert.LessOrEqual(t, result.NewAvailabilityPct, baseline)
			}
		}
	}
}

func TestComputeMonotonic(t *testing.T) {
	for _, mode := range []ElasticityMode{Linear, Nonlinear} {
		t.Run(string(mode), func(t *testing.T) {
			in := DefaultInputs()
			in.Mode = mode
			previous := math.Inf(1)
			for increase := 0.0; increase <= 100; increase += 0.5 {
				in.SustainmentIncreasePct = increase
				result, err := Compute(in)
				require.NoError(t, err)
				assert.LessOrEqual(t, result.NewAvailabilityPct, previous, "increase %v", increase)
				previous = result.NewAvailabilityPct
			}
		})
	}
}

func TestComputeIsDeterministic(t *testing.T) {
	in := DefaultInputs()
	in.Mode = Nonlinear
	first, err := Compute(in)
	require.NoError(t, err)
	second, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCurve(t *testing.T) {
	in := Inputs{
		BaselineAvailabilityPct: 20,
		SustainmentIncreasePct:  15,
		Mode:                    Linear,
		LinearElasticity:        1.0,
		NonlinearExponent:       1.0,
	}

	result, err := Compute(in)
	require.NoError(t, err)
	require.Len(t, result.Curve, 100)

	first := result.Curve[0]
	assert.Equal(t, 0.0, first.SustainmentIncreasePct)
	assert.Equal(t, 20.0, first.LinearAvailabilityPct)
	assert.Equal(t, 20.0, first.NonlinearAvailabilityPct)

	last := result.Curve[99]
	assert.Equal(t, 50.0, last.SustainmentIncreasePct)
	// 1 - 1/1.5 = 1/3 of parts lost; 20 - 33.3 stays negative on the curve.
	assert.InDelta(t, 20-100.0/3, last.LinearAvailabilityPct, 1e-9)
	assert.Less(t, last.NonlinearAvailabilityPct, 0.0)

	// The curve ignores the current increase and mode.
	in.SustainmentIncreasePct = 40
	in.Mode = Nonlinear
	other, err := Compute(in)
	require.NoError(t, err)
	assert.Equal(t, result.Curve, other.Curve)
}

func TestComputeInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		in   Inputs
	}{
		{
			name: "Division by zero",
			in:   Inputs{BaselineAvailabilityPct: 70, SustainmentIncreasePct: -100, Mode: Linear, LinearElasticity: 0.5, NonlinearExponent: 1.8},
		},
		{
			name: "Below minus one hundred",
			in:   Inputs{BaselineAvailabilityPct: 70, SustainmentIncreasePct: -150, Mode: Linear, LinearElasticity: 0.5, NonlinearExponent: 1.8},
		},
		{
			name: "NaN baseline",
			in:   Inputs{BaselineAvailabilityPct: math.NaN(), SustainmentIncreasePct: 10, Mode: Linear, LinearElasticity: 0.5, NonlinearExponent: 1.8},
		},
		{
			name: "Infinite elasticity",
			in:   Inputs{BaselineAvailabilityPct: 70, SustainmentIncreasePct: 10, Mode: Linear, LinearElasticity: math.Inf(1), NonlinearExponent: 1.8},
		},
		{
			name: "Fractional power of negative reduction",
			in:   Inputs{BaselineAvailabilityPct: 70, SustainmentIncreasePct: -20, Mode: Nonlinear, LinearElasticity: 0.5, NonlinearExponent: 1.8},
		},
		{
			name: "Negative exponent in linear mode",
			in:   Inputs{BaselineAvailabilityPct: 70, SustainmentIncreasePct: 15, Mode: Linear, LinearElasticity: 0.5, NonlinearExponent: -1},
		},
		{
			name: "Negative exponent in nonlinear mode",
			in:   Inputs{BaselineAvailabilityPct: 70, SustainmentIncreasePct: 15, Mode: Nonlinear, LinearElasticity: 0.5, NonlinearExponent: -1},
		},
		{
			name: "Unknown mode",
			in:   Inputs{BaselineAvailabilityPct: 70, SustainmentIncreasePct: 10, Mode: "quadratic", LinearElasticity: 0.5, NonlinearExponent: 1.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compute(tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput))
		})
	}
}

func TestComputeNegativeIncreaseLinear(t *testing.T) {
	in := DefaultInputs()
	in.SustainmentIncreasePct = -20

	result, err := Compute(in)
	require.NoError(t, err)
	assert.Less(t, result.PartReductionFraction, 0.0)
	assert.Greater(t, result.NewAvailabilityPct, in.BaselineAvailabilityPct)
}

func TestParseElasticityMode(t *testing.T) {
	tests := []struct {
		input    string
		expected ElasticityMode
		wantErr  bool
	}{
		{"", Linear, false},
		{"Linear", Linear, false},
		{"NONLINEAR", Nonlinear, false},
		{" non-linear ", Nonlinear, false},
		{"cubic", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			mode, err := ParseElasticityMode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestNewChart(t *testing.T) {
	in := DefaultInputs()
	result, err := Compute(in)
	require.NoError(t, err)

	chart := NewChart(in, result)
	assert.Equal(t, "Sustainment Cost Increase (%)", chart.XLabel)
	assert.Equal(t, "Resulting Aircraft Availability Rate (%)", chart.YLabel)
	assert.Equal(t, "Nonlinear Elasticity (exp=1.8)", chart.NonlinearLabel)
	assert.Equal(t, "63.5", chart.HeadlineDisplay)
}
