// Package tariff projects the cost impact of import tariffs on aircraft
// procurement and sustainment over a multi-year horizon.
package tariff

import (
	"errors"
	"fmt"
	"math"

	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/mathutil"
)

// ErrInvalidInput is returned when inputs would make the projection
// undefined or non-finite.
var ErrInvalidInput = errors.New("invalid tariff input")

// Inputs are the user-chosen assumptions of one projection. Currency amounts
// are in millions of dollars.
type Inputs struct {
	SteelTariffPct       float64 `json:"steelTariff"`
	ComponentTariffPct   float64 `json:"componentTariff"`
	ChinaTariffPct       float64 `json:"chinaTariff"`
	PassThroughPct       float64 `json:"passThrough"`
	BaseAircraftCost     float64 `json:"aircraftCost"`
	ProcurementGrowthPct float64 `json:"procurementGrowth"`
	BaseSustainmentCost  float64 `json:"sustainmentBase"`
	HorizonYears         int     `json:"horizonYears"`
}

// DefaultInputs returns the dashboard's initial slider positions.
func DefaultInputs() Inputs {
	return Inputs{
		SteelTariffPct:       constants.DefaultSteelTariffPct,
		ComponentTariffPct:   constants.DefaultComponentTariffPct,
		ChinaTariffPct:       constants.DefaultChinaTariffPct,
		PassThroughPct:       constants.DefaultPassThroughPct,
		BaseAircraftCost:     constants.DefaultAircraftCost,
		ProcurementGrowthPct: constants.DefaultProcurementGrowthPct,
		BaseSustainmentCost:  constants.DefaultSustainmentBaseCost,
		HorizonYears:         constants.DefaultHorizonYears,
	}
}

// Assumptions are the fixed model constants. They rarely change but can be
// overridden from configuration.
type Assumptions struct {
	StartYear                int     `json:"startYear" yaml:"startYear"`
	MaterialShare            float64 `json:"materialShare" yaml:"materialShare"`
	ComponentShare           float64 `json:"componentShare" yaml:"componentShare"`
	ChinaShare               float64 `json:"chinaShare" yaml:"chinaShare"`
	SustainmentEscalation    float64 `json:"sustainmentEscalation" yaml:"sustainmentEscalation"`
	SustainmentFixedFraction float64 `json:"sustainmentFixedFraction" yaml:"sustainmentFixedFraction"`
}

// DefaultAssumptions returns the reference constants.
func DefaultAssumptions() Assumptions {
	return Assumptions{
		StartYear:                constants.DefaultStartYear,
		MaterialShare:            constants.MaterialShare,
		ComponentShare:           constants.ComponentShare,
		ChinaShare:               constants.ChinaShare,
		SustainmentEscalation:    constants.SustainmentAnnualEscalation,
		SustainmentFixedFraction: constants.SustainmentFixedFraction,
	}
}

// YearlyImpact is one row of the projection. Every amount is rounded to
// cents independently.
type YearlyImpact struct {
	Year              int     `json:"year"`
	ProcurementImpact float64 `json:"procurement"`
	SustainmentImpact float64 `json:"sustainment"`
	TotalImpact       float64 `json:"total"`
}

// Projection is the ordered sequence of yearly impacts and their sum.
type Projection struct {
	Years           []YearlyImpact `json:"years"`
	CumulativeTotal float64        `json:"cumulativeTotal"`
}

// FirstYear returns the first projected year, or 0 for an empty projection.
func (p Projection) FirstYear() int {
	if len(p.Years) == 0 {
		return 0
	}
	return p.Years[0].Year
}

// LastYear returns the last projected year, or 0 for an empty projection.
func (p Projection) LastYear() int {
	if len(p.Years) == 0 {
		return 0
	}
	return p.Years[len(p.Years)-1].Year
}

// Model evaluates projections under a fixed set of Assumptions.
type Model struct {
	Assumptions Assumptions
}

// NewModel returns a Model using assumptions.
func NewModel(assumptions Assumptions) Model {
	return Model{Assumptions: assumptions}
}

// Compute projects in with DefaultAssumptions.
func Compute(in Inputs) (Projection, error) {
	return NewModel(DefaultAssumptions()).Compute(in)
}

// Compute projects in year by year. Totals are derived from the unrounded
// deltas and rounded separately; the cumulative total is the sum of the
// rounded yearly totals.
func (m Model) Compute(in Inputs) (Projection, error) {
	if err := in.check(); err != nil {
		return Projection{}, err
	}
	a := m.Assumptions

	tariffed := m.TariffedAircraftCost(in)
	passThrough := mathutil.ApplyPercentage(1, in.PassThroughPct)

	years := make([]YearlyImpact, 0, in.HorizonYears)
	totals := make([]float64, 0, in.HorizonYears)
	for i := 0; i < in.HorizonYears; i++ {
		growthFactor := math.Pow(1+in.ProcurementGrowthPct/constants.PercentageMultiplier, float64(i))
		procurement := tariffed * passThrough * growthFactor
		sustainment := in.BaseSustainmentCost * a.SustainmentFixedFraction * passThrough * math.Pow(1+a.SustainmentEscalation, float64(i))
		total := procurement + sustainment

		if !mathutil.IsFinite(total) {
			return Projection{}, fmt.Errorf("%w: projection overflowed in year %d", ErrInvalidInput, a.StartYear+i)
		}

		row := YearlyImpact{
			Year:              a.StartYear + i,
			ProcurementImpact: mathutil.Round(procurement),
			SustainmentImpact: mathutil.Round(sustainment),
			TotalImpact:       mathutil.Round(total),
		}
		years = append(years, row)
		totals = append(totals, row.TotalImpact)
	}

	return Projection{
		Years:           years,
		CumulativeTotal: mathutil.SumCents(totals),
	}, nil
}

// TariffedAircraftCost returns the added cost per aircraft from all three
// tariffs before pass-through and growth.
func (m Model) TariffedAircraftCost(in Inputs) float64 {
	a := m.Assumptions
	material := mathutil.ApplyPercentage(in.BaseAircraftCost*a.MaterialShare, in.SteelTariffPct)
	component := mathutil.ApplyPercentage(in.BaseAircraftCost*a.ComponentShare, in.ComponentTariffPct)
	china := mathutil.ApplyPercentage(in.BaseAircraftCost*a.ChinaShare, in.ChinaTariffPct)
	return material + component + china
}

func (in Inputs) check() error {
	if in.HorizonYears < 0 {
		return fmt.Errorf("%w: horizon must not be negative, got %d", ErrInvalidInput, in.HorizonYears)
	}
	if in.HorizonYears > constants.HorizonYearsLimit {
		return fmt.Errorf("%w: horizon must not exceed %d years, got %d",
			ErrInvalidInput, constants.HorizonYearsLimit, in.HorizonYears)
	}
	fields := []struct {
		name  string
		value float64
	}{
		{"steel tariff", in.SteelTariffPct},
		{"component tariff", in.ComponentTariffPct},
		{"china tariff", in.ChinaTariffPct},
		{"pass-through", in.PassThroughPct},
		{"aircraft cost", in.BaseAircraftCost},
		{"procurement growth", in.ProcurementGrowthPct},
		{"sustainment base", in.BaseSustainmentCost},
	}
	for _, f := range fields {
		if !mathutil.IsFinite(f.value) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidInput, f.name, f.value)
		}
	}
	return nil
}
