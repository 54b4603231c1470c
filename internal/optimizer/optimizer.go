// Package optimizer solves for the largest scenario input that still honors a
// readiness floor or a budget cap.
package optimizer

import (
	"fmt"

	"github.com/iwvelando/sustainment-impact/internal/config"
	"github.com/iwvelando/sustainment-impact/internal/forecast"
	"github.com/iwvelando/sustainment-impact/pkg/availability"
	"github.com/iwvelando/sustainment-impact/pkg/format"
	"github.com/iwvelando/sustainment-impact/pkg/mathutil"
	"github.com/iwvelando/sustainment-impact/pkg/optimization"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
	"go.uber.org/zap"
)

const (
	ScopeAvailability = "availability"
	ScopeTariff       = "tariff"
)

// Runner executes every optimizer directive found in a configuration.
type Runner struct {
	logger *zap.Logger
	conf   *config.Configuration
}

type evaluation struct {
	value    float64
	achieved float64
	feasible bool
}

// objective evaluates a candidate value.
type objective func(value float64) (evaluation, error)

// Result summarizes optimizer outcomes keyed by scenario name.
type Result struct {
	Availability map[string][]optimization.Summary
	Tariff       map[string][]optimization.Summary
}

// Empty indicates whether any optimizer summaries were produced.
func (r Result) Empty() bool {
	return len(r.Availability) == 0 && len(r.Tariff) == 0
}

// Apply attaches optimizer summaries to the provided forecast results.
func (r Result) Apply(results *forecast.Results) {
	if results == nil || r.Empty() {
		return
	}
	for i := range results.Availability {
		if summaries, ok := r.Availability[results.Availability[i].Name]; ok {
			results.Availability[i].Optimizations = append(results.Availability[i].Optimizations, summaries...)
		}
	}
	for i := range results.Tariff {
		if summaries, ok := r.Tariff[results.Tariff[i].Name]; ok {
			results.Tariff[i].Optimizations = append(results.Tariff[i].Optimizations, summaries...)
		}
	}
}

// NewRunner constructs a Runner for the provided configuration.
func NewRunner(logger *zap.Logger, conf *config.Configuration) (*Runner, error) {
	if conf == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := conf.Optimizer.Validate(); err != nil {
		return nil, err
	}
	return &Runner{logger: logger, conf: conf}, nil
}

// Run executes all optimizer directives. The configuration is left untouched.
func (r *Runner) Run() (*Result, error) {
	result := &Result{
		Availability: make(map[string][]optimization.Summary),
		Tariff:       make(map[string][]optimization.Summary),
	}

	for _, scenario := range r.conf.ActiveAvailability() {
		if scenario.ReadinessFloor <= 0 {
			continue
		}
		in, err := scenario.ToInputs()
		if err != nil {
			return nil, fmt.Errorf("availability scenario %s: %w", scenario.Name, err)
		}
		summary, err := ReadinessBreakEven(scenario.Name, in, scenario.ReadinessFloor, r.conf.Optimizer)
		if err != nil {
			return nil, fmt.Errorf("availability scenario %s: %w", scenario.Name, err)
		}
		result.Availability[scenario.Name] = append(result.Availability[scenario.Name], summary)
		r.log(summary)
	}

	model := tariff.NewModel(r.conf.TariffAssumptions.Resolve())
	for _, scenario := range r.conf.ActiveTariff() {
		if scenario.BudgetCap <= 0 {
			continue
		}
		summary, err := BudgetCapPassThrough(scenario.Name, model, scenario.ToInputs(), scenario.BudgetCap, r.conf.Optimizer)
		if err != nil {
			return nil, fmt.Errorf("tariff scenario %s: %w", scenario.Name, err)
		}
		result.Tariff[scenario.Name] = append(result.Tariff[scenario.Name], summary)
		r.log(summary)
	}

	return result, nil
}

func (r *Runner) log(summary optimization.Summary) {
	r.logger.Info("optimizer solved scenario field",
		zap.String("op", "optimizer.Run"),
		zap.String("scope", summary.Scope),
		zap.String("kind", summary.Kind),
		zap.String("scenario", summary.TargetName),
		zap.String("field", summary.Field),
		zap.Float64("original", summary.Original),
		zap.Float64("value", summary.Value),
		zap.Float64("limit", summary.Limit),
		zap.Float64("achieved", summary.Achieved),
		zap.Float64("headroom", summary.Headroom),
		zap.Int("iterations", summary.Iterations),
		zap.Bool("converged", summary.Converged),
	)
}

// ReadinessBreakEven finds the largest sustainment cost increase whose
// resulting availability stays at or above floor.
func ReadinessBreakEven(name string, in availability.Inputs, floor float64, cfg config.OptimizerConfig) (optimization.Summary, error) {
	eval := func(value float64) (evaluation, error) {
		candidate := in
		candidate.SustainmentIncreasePct = value
		res, err := availability.Compute(candidate)
		if err != nil {
			return evaluation{}, err
		}
		return evaluation{
			value:    value,
			achieved: res.NewAvailabilityPct,
			feasible: res.NewAvailabilityPct >= floor,
		}, nil
	}

	summary, feasible, err := maximize(eval, cfg)
	if err != nil {
		return optimization.Summary{}, err
	}
	summary.Scope = ScopeAvailability
	summary.Kind = config.OptimizerKindReadinessFloor
	summary.TargetName = name
	summary.Field = config.OptimizerFieldSustainmentIncrease
	summary.Original = in.SustainmentIncreasePct
	summary.Limit = floor
	summary.Headroom = summary.Achieved - floor

	lo, hi := cfg.Bounds()
	switch {
	case !feasible:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"readiness floor %s cannot be met for any increase between %s and %s",
			format.Percent(floor), format.Percent(lo), format.Percent(hi)))
	case !summary.Converged:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"search stopped after %d iterations without reaching tolerance", summary.Iterations))
	case summary.Value >= hi:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"readiness floor %s holds across the whole search range", format.Percent(floor)))
	case in.SustainmentIncreasePct > summary.Value:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"current increase of %s breaches the readiness floor", format.Percent(in.SustainmentIncreasePct)))
	}
	return summary, nil
}

// BudgetCapPassThrough finds the largest pass-through whose cumulative
// impact stays at or below budgetCap.
func BudgetCapPassThrough(name string, model tariff.Model, in tariff.Inputs, budgetCap float64, cfg config.OptimizerConfig) (optimization.Summary, error) {
	eval := func(value float64) (evaluation, error) {
		candidate := in
		candidate.PassThroughPct = value
		projection, err := model.Compute(candidate)
		if err != nil {
			return evaluation{}, err
		}
		return evaluation{
			value:    value,
			achieved: projection.CumulativeTotal,
			feasible: projection.CumulativeTotal <= budgetCap,
		}, nil
	}

	summary, feasible, err := maximize(eval, cfg)
	if err != nil {
		return optimization.Summary{}, err
	}
	summary.Scope = ScopeTariff
	summary.Kind = config.OptimizerKindBudgetCap
	summary.TargetName = name
	summary.Field = config.OptimizerFieldPassThrough
	summary.Original = in.PassThroughPct
	summary.Limit = budgetCap
	summary.Headroom = budgetCap - summary.Achieved

	lo, hi := cfg.Bounds()
	switch {
	case !feasible:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"budget cap %s cannot be met for any pass-through between %s and %s",
			format.Millions(budgetCap), format.Percent(lo), format.Percent(hi)))
	case !summary.Converged:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"search stopped after %d iterations without reaching tolerance", summary.Iterations))
	case summary.Value >= hi:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"budget cap %s holds across the whole search range", format.Millions(budgetCap)))
	case in.PassThroughPct > summary.Value:
		summary.Notes = append(summary.Notes, fmt.Sprintf(
			"current pass-through of %s exceeds the budget cap", format.Percent(in.PassThroughPct)))
	}
	return summary, nil
}

// maximize bisects for the largest feasible value within the configured
// bounds, assuming feasibility is lost monotonically as the value grows. The
// boolean reports whether any value in the bounds is feasible.
func maximize(eval objective, cfg config.OptimizerConfig) (optimization.Summary, bool, error) {
	if err := cfg.Validate(); err != nil {
		return optimization.Summary{}, false, err
	}
	minVal, maxVal := cfg.Bounds()

	lowerEval, err := eval(minVal)
	if err != nil {
		return optimization.Summary{}, false, err
	}
	if !lowerEval.feasible {
		return optimization.Summary{
			Value:     minVal,
			Achieved:  lowerEval.achieved,
			Converged: false,
		}, false, nil
	}

	upperEval, err := eval(maxVal)
	if err != nil {
		return optimization.Summary{}, false, err
	}
	if upperEval.feasible {
		return optimization.Summary{
			Value:     maxVal,
			Achieved:  upperEval.achieved,
			Converged: true,
		}, true, nil
	}

	iterations := 0
	best := lowerEval
	lower, upper := minVal, maxVal
	for iterations < cfg.MaxIterations && !mathutil.WithinTolerance(upper, lower, cfg.Tolerance) {
		mid := lower + (upper-lower)/2
		evalMid, err := eval(mid)
		if err != nil {
			return optimization.Summary{}, false, err
		}
		iterations++
		if evalMid.feasible {
			best = evalMid
			lower = mid
		} else {
			upper = mid
		}
	}

	return optimization.Summary{
		Value:      best.value,
		Achieved:   best.achieved,
		Iterations: iterations,
		Converged:  mathutil.WithinTolerance(upper, lower, cfg.Tolerance),
	}, true, nil
}
