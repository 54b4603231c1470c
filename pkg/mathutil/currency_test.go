package mathutil

import (
	"math"
	"testing"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"Round up above midpoint", 1.235, 1.24},
		{"Round down below midpoint", 1.234, 1.23},
		{"No rounding needed", 1.23, 1.23},
		{"Large number", 12345.678, 12345.68},
		{"Negative number round up", -1.235, -1.24},
		{"Negative number round down", -1.234, -1.23},
		{"Zero", 0.0, 0.0},
		{"Very small positive", 0.001, 0.00},
		{"Very small negative", -0.001, 0.00},
		{"Exactly one cent", 0.01, 0.01},
		{"Nearly two cents", 0.019, 0.02},
		{"Exact binary tie rounds to even", 0.125, 0.12},
		{"Binary value below visible midpoint", 2.675, 2.67},
		{"Procurement example", 8.1, 8.10},
		{"Large negative", -12345.678, -12345.68},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Round(tt.input)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("Round(%v) = %v, expected %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestRoundNonFinite(t *testing.T) {
	if !math.IsNaN(Round(math.NaN())) {
		t.Errorf("Round(NaN) should stay NaN")
	}
	if !math.IsInf(Round(math.Inf(1)), 1) {
		t.Errorf("Round(+Inf) should stay +Inf")
	}
}

func TestRoundTo(t *testing.T) {
	if got := RoundTo(63.47826, 1); got != 63.5 {
		t.Errorf("RoundTo(63.47826, 1) = %v, expected 63.5", got)
	}
	if got := RoundTo(6.5217391, 3); got != 6.522 {
		t.Errorf("RoundTo(6.5217391, 3) = %v, expected 6.522", got)
	}
}

func TestSumCents(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", nil, 0},
		{"Single", []float64{233.10}, 233.10},
		{"Binary drift", []float64{0.1, 0.2}, 0.3},
		{"Many cents", []float64{0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01, 0.01}, 0.10},
		{"Mixed signs", []float64{100.25, -0.25}, 100.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SumCents(tt.values)
			if result != tt.expected {
				t.Errorf("SumCents(%v) = %v, expected %v", tt.values, result, tt.expected)
			}
		})
	}
}

func TestWithinTolerance(t *testing.T) {
	tests := []struct {
		name      string
		val1      float64
		val2      float64
		tolerance float64
		expected  bool
	}{
		{"Exactly equal", 100.0, 100.0, 0.01, true},
		{"Within tolerance", 100.0, 100.005, 0.01, true},
		{"Outside tolerance", 100.0, 100.02, 0.01, false},
		{"Negative values within tolerance", -50.0, -50.005, 0.01, true},
		{"Zero tolerance exact match", 42.0, 42.0, 0.0, true},
		{"Zero tolerance no match", 42.0, 42.001, 0.0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WithinTolerance(tt.val1, tt.val2, tt.tolerance)
			if result != tt.expected {
				t.Errorf("WithinTolerance(%v, %v, %v) = %v, expected %v",
					tt.val1, tt.val2, tt.tolerance, result, tt.expected)
			}
		})
	}
}

func TestIsFinite(t *testing.T) {
	if !IsFinite(1.5) {
		t.Errorf("IsFinite(1.5) = false")
	}
	if IsFinite(math.NaN()) || IsFinite(math.Inf(-1)) {
		t.Errorf("IsFinite should reject NaN and Inf")
	}
}

func TestApplyPercentage(t *testing.T) {
	tests := []struct {
		name       string
		value      float64
		percentage float64
		expected   float64
	}{
		{"Ten percent", 1000.0, 10.0, 100.0},
		{"Fifty percent", 200.0, 50.0, 100.0},
		{"Hundred percent", 500.0, 100.0, 500.0},
		{"Zero percent", 1000.0, 0.0, 0.0},
		{"Decimal percentage", 1000.0, 2.5, 25.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ApplyPercentage(tt.value, tt.percentage)
			if math.Abs(result-tt.expected) > 1e-9 {
				t.Errorf("ApplyPercentage(%v, %v) = %v, expected %v", tt.value, tt.percentage, result, tt.expected)
			}
		})
	}
}

func TestLinspace(t *testing.T) {
	samples := Linspace(0, 50, 100)
	if len(samples) != 100 {
		t.Fatalf("expected 100 samples, got %d", len(samples))
	}
	if samples[0] != 0 {
		t.Errorf("first sample = %v, expected 0", samples[0])
	}
	if samples[99] != 50 {
		t.Errorf("last sample = %v, expected 50", samples[99])
	}
	step := 50.0 / 99.0
	if math.Abs(samples[1]-step) > 1e-12 {
		t.Errorf("second sample = %v, expected %v", samples[1], step)
	}
	for i := 1; i < len(samples); i++ {
		if samples[i] <= samples[i-1] {
			t.Fatalf("samples not strictly increasing at %d", i)
		}
	}

	if Linspace(0, 1, 0) != nil {
		t.Errorf("expected nil for zero samples")
	}
	if single := Linspace(3, 9, 1); len(single) != 1 || single[0] != 3 {
		t.Errorf("expected single sample at start, got %v", single)
	}
}
