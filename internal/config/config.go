// Package config defines the data structures related to configuration and
// includes functions for loading, normalizing and validating the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
	"github.com/spf13/viper"
)

// Configuration holds all configuration for sustainment-impact.
type Configuration struct {
	Logging           LoggingConfig          `yaml:"logging,omitempty" mapstructure:"logging"`
	Output            OutputConfig           `yaml:"output,omitempty" mapstructure:"output"`
	Optimizer         OptimizerConfig        `yaml:"optimizer,omitempty" mapstructure:"optimizer"`
	TariffAssumptions TariffAssumptions      `yaml:"tariffAssumptions,omitempty" mapstructure:"tariffAssumptions"`
	Availability      []AvailabilityScenario `yaml:"availability,omitempty" mapstructure:"availability"`
	Tariff            []TariffScenario       `yaml:"tariff,omitempty" mapstructure:"tariff"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty" mapstructure:"level"`           // debug, info, warn, error
	Format     string `yaml:"format,omitempty" mapstructure:"format"`         // json, console
	OutputFile string `yaml:"outputFile,omitempty" mapstructure:"outputFile"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty" mapstructure:"format"` // pretty, csv, json, xlsx
	File   string `yaml:"file,omitempty" mapstructure:"file"`     // optional output path
}

// AvailabilityScenario holds one set of availability model assumptions.
type AvailabilityScenario struct {
	Name                 string  `yaml:"name" mapstructure:"name"`
	Active               bool    `yaml:"active" mapstructure:"active"`
	BaselineAvailability float64 `yaml:"baselineAvailability" mapstructure:"baselineAvailability"`
	SustainmentIncrease  float64 `yaml:"sustainmentIncrease" mapstructure:"sustainmentIncrease"`
	ElasticityMode       string  `yaml:"elasticityMode,omitempty" mapstructure:"elasticityMode"`
	LinearElasticity     *float64 `yaml:"linearElasticity,omitempty" mapstructure:"linearElasticity"`
	NonlinearExponent    *float64 `yaml:"nonlinearExponent,omitempty" mapstructure:"nonlinearExponent"`
	ReadinessFloor       float64 `yaml:"readinessFloor,omitempty" mapstructure:"readinessFloor"`
}

// TariffScenario holds one set of tariff projection assumptions. Costs are
// in millions of dollars.
type TariffScenario struct {
	Name              string  `yaml:"name" mapstructure:"name"`
	Active            bool    `yaml:"active" mapstructure:"active"`
	SteelTariff       float64 `yaml:"steelTariff" mapstructure:"steelTariff"`
	ComponentTariff   float64 `yaml:"componentTariff" mapstructure:"componentTariff"`
	ChinaTariff       float64 `yaml:"chinaTariff" mapstructure:"chinaTariff"`
	PassThrough       float64 `yaml:"passThrough" mapstructure:"passThrough"`
	AircraftCost      float64 `yaml:"aircraftCost" mapstructure:"aircraftCost"`
	ProcurementGrowth float64 `yaml:"procurementGrowth" mapstructure:"procurementGrowth"`
	SustainmentBase   float64 `yaml:"sustainmentBase" mapstructure:"sustainmentBase"`
	HorizonYears      int     `yaml:"horizonYears,omitempty" mapstructure:"horizonYears"`
	BudgetCap         float64 `yaml:"budgetCap,omitempty" mapstructure:"budgetCap"`
}

// TariffAssumptions optionally overrides the fixed tariff model constants.
// Unset fields keep their defaults.
type TariffAssumptions struct {
	StartYear                *int     `yaml:"startYear,omitempty" mapstructure:"startYear"`
	MaterialShare            *float64 `yaml:"materialShare,omitempty" mapstructure:"materialShare"`
	ComponentShare           *float64 `yaml:"componentShare,omitempty" mapstructure:"componentShare"`
	ChinaShare               *float64 `yaml:"chinaShare,omitempty" mapstructure:"chinaShare"`
	SustainmentEscalation    *float64 `yaml:"sustainmentEscalation,omitempty" mapstructure:"sustainmentEscalation"`
	SustainmentFixedFraction *float64 `yaml:"sustainmentFixedFraction,omitempty" mapstructure:"sustainmentFixedFraction"`
}

// Resolve merges the overrides onto the default assumptions.
func (t TariffAssumptions) Resolve() tariff.Assumptions {
	a := tariff.DefaultAssumptions()
	if t.StartYear != nil {
		a.StartYear = *t.StartYear
	}
	if t.MaterialShare != nil {
		a.MaterialShare = *t.MaterialShare
	}
	if t.ComponentShare != nil {
		a.ComponentShare = *t.ComponentShare
	}
	if t.ChinaShare != nil {
		a.ChinaShare = *t.ChinaShare
	}
	if t.SustainmentEscalation != nil {
		a.SustainmentEscalation = *t.SustainmentEscalation
	}
	if t.SustainmentFixedFraction != nil {
		a.SustainmentFixedFraction = *t.SustainmentFixedFraction
	}
	return a
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yml")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %w", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads a YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := viper.New()
	v.SetConfigType("yml")

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %w", err)
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %w", err)
	}
	configuration.Normalize()
	return &configuration, nil
}

// Normalize fills unset scenario fields with the dashboard defaults and
// canonicalizes names and modes.
func (c *Configuration) Normalize() {
	c.Optimizer.Normalize()

	for i := range c.Availability {
		s := &c.Availability[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			s.Name = fmt.Sprintf("availability %d", i+1)
		}
		s.ElasticityMode = strings.ToLower(strings.TrimSpace(s.ElasticityMode))
		if s.ElasticityMode == "" {
			s.ElasticityMode = "linear"
		}
		// Only absent parameters take the defaults; an explicit zero is kept so
		// that validation can report it.
		if s.LinearElasticity == nil {
			elasticity := constants.DefaultLinearElasticity
			s.LinearElasticity = &elasticity
		}
		if s.NonlinearExponent == nil {
			exponent := constants.DefaultNonlinearExponent
			s.NonlinearExponent = &exponent
		}
	}

	for i := range c.Tariff {
		s := &c.Tariff[i]
		s.Name = strings.TrimSpace(s.Name)
		if s.Name == "" {
			s.Name = fmt.Sprintf("tariff %d", i+1)
		}
		if s.HorizonYears == 0 {
			s.HorizonYears = constants.DefaultHorizonYears
		}
	}
}

// ActiveAvailability returns the active availability scenarios in order.
func (c *Configuration) ActiveAvailability() []AvailabilityScenario {
	var active []AvailabilityScenario
	for _, s := range c.Availability {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}

// ActiveTariff returns the active tariff scenarios in order.
func (c *Configuration) ActiveTariff() []TariffScenario {
	var active []TariffScenario
	for _, s := range c.Tariff {
		if s.Active {
			active = append(active, s)
		}
	}
	return active
}
