package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/iwvelando/sustainment-impact/pkg/availability"
	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
)

// availabilityRequest mirrors the availability dashboard controls. The
// validate tags carry the documented input domain; the sliders only cover a
// narrower band of it.
type availabilityRequest struct {
	BaselineAvailability float64 `json:"baselineAvailability" validate:"gte=0,lte=100"`
	SustainmentIncrease  float64 `json:"sustainmentIncrease" validate:"gte=0,lte=100"`
	ElasticityMode       string  `json:"elasticityMode" validate:"omitempty,oneof=linear nonlinear Linear Nonlinear"`
	LinearElasticity     float64 `json:"linearElasticity" validate:"gt=0"`
	NonlinearExponent    float64 `json:"nonlinearExponent" validate:"gte=1"`
	ReadinessFloor       float64 `json:"readinessFloor" validate:"gte=0,lte=100"`
}

func defaultAvailabilityRequest() availabilityRequest {
	return availabilityRequest{
		BaselineAvailability: constants.DefaultBaselineAvailabilityPct,
		SustainmentIncrease:  constants.DefaultSustainmentIncreasePct,
		ElasticityMode:       string(availability.Linear),
		LinearElasticity:     constants.DefaultLinearElasticity,
		NonlinearExponent:    constants.DefaultNonlinearExponent,
	}
}

func (r availabilityRequest) inputs() (availability.Inputs, error) {
	mode, err := availability.ParseElasticityMode(r.ElasticityMode)
	if err != nil {
		return availability.Inputs{}, err
	}
	return availability.Inputs{
		BaselineAvailabilityPct: r.BaselineAvailability,
		SustainmentIncreasePct:  r.SustainmentIncrease,
		Mode:                    mode,
		LinearElasticity:        r.LinearElasticity,
		NonlinearExponent:       r.NonlinearExponent,
	}, nil
}

// tariffRequest mirrors the tariff dashboard controls.
type tariffRequest struct {
	SteelTariff       float64 `json:"steelTariff" validate:"gte=0,lte=100"`
	ComponentTariff   float64 `json:"componentTariff" validate:"gte=0,lte=100"`
	ChinaTariff       float64 `json:"chinaTariff" validate:"gte=0,lte=100"`
	PassThrough       float64 `json:"passThrough" validate:"gte=0,lte=100"`
	AircraftCost      float64 `json:"aircraftCost" validate:"gte=10,lte=300"`
	ProcurementGrowth float64 `json:"procurementGrowth" validate:"gte=0,lte=10"`
	SustainmentBase   float64 `json:"sustainmentBase" validate:"gte=100,lte=5000"`
	HorizonYears      int     `json:"horizonYears" validate:"gte=4,lte=25"`
	BudgetCap         float64 `json:"budgetCap" validate:"gte=0"`
}

func defaultTariffRequest() tariffRequest {
	return tariffRequest{
		SteelTariff:       constants.DefaultSteelTariffPct,
		ComponentTariff:   constants.DefaultComponentTariffPct,
		ChinaTariff:       constants.DefaultChinaTariffPct,
		PassThrough:       constants.DefaultPassThroughPct,
		AircraftCost:      constants.DefaultAircraftCost,
		ProcurementGrowth: constants.DefaultProcurementGrowthPct,
		SustainmentBase:   constants.DefaultSustainmentBaseCost,
		HorizonYears:      constants.DefaultHorizonYears,
	}
}

func (r tariffRequest) inputs() tariff.Inputs {
	return tariff.Inputs{
		SteelTariffPct:       r.SteelTariff,
		ComponentTariffPct:   r.ComponentTariff,
		ChinaTariffPct:       r.ChinaTariff,
		PassThroughPct:       r.PassThrough,
		BaseAircraftCost:     r.AircraftCost,
		ProcurementGrowthPct: r.ProcurementGrowth,
		BaseSustainmentCost:  r.SustainmentBase,
		HorizonYears:         r.HorizonYears,
	}
}

// sliderRange describes one dashboard control.
type sliderRange struct {
	Field   string  `json:"field"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

var availabilityRanges = []sliderRange{
	{"baselineAvailability", "Baseline Aircraft Availability Rate (%)", 50, 90, 1, constants.DefaultBaselineAvailabilityPct},
	{"sustainmentIncrease", "Tariff-Driven Sustainment Cost Increase (%)", 0, 50, 1, constants.DefaultSustainmentIncreasePct},
	{"linearElasticity", "Linear Elasticity (Availability per % Part Reduction)", 0.1, 1, 0.01, constants.DefaultLinearElasticity},
	{"nonlinearExponent", "Nonlinear Exponent", 1, 3, 0.01, constants.DefaultNonlinearExponent},
}

var tariffRanges = []sliderRange{
	{"steelTariff", "Steel/Aluminum Tariff (%)", 0, 50, 1, constants.DefaultSteelTariffPct},
	{"componentTariff", "Component Tariff (%)", 0, 50, 1, constants.DefaultComponentTariffPct},
	{"chinaTariff", "China Blanket Tariff (%)", 0, 30, 1, constants.DefaultChinaTariffPct},
	{"passThrough", "Pass-Through to DoD (%)", 0, 100, 1, constants.DefaultPassThroughPct},
	{"aircraftCost", "Base Aircraft Cost (USD Millions)", 10, 300, 1, constants.DefaultAircraftCost},
	{"procurementGrowth", "Annual Procurement Growth Rate (%)", 0, 10, 0.1, constants.DefaultProcurementGrowthPct},
	{"sustainmentBase", "Sustainment Base Cost (USD Millions)", 100, 5000, 1, constants.DefaultSustainmentBaseCost},
	{"horizonYears", "Forecast Horizon (Years)", constants.MinHorizonYears, constants.MaxHorizonYears, 1, constants.DefaultHorizonYears},
}

// requestValidator wraps validator.Validate and reports fields by their JSON
// names.
type requestValidator struct {
	validate *validator.Validate
}

func newRequestValidator() *requestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &requestValidator{validate: v}
}

// Struct validates s and flattens any failures into a single message.
func (v *requestValidator) Struct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		messages = append(messages, fieldMessage(fe))
	}
	return fmt.Errorf("invalid input: %s", strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}
