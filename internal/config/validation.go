package config

import (
	"fmt"

	"github.com/iwvelando/sustainment-impact/pkg/validation"
)

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	if len(c.ActiveAvailability()) == 0 && len(c.ActiveTariff()) == 0 {
		warnings = append(warnings, "no active availability or tariff scenarios are configured")
	}

	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			warnings = append(warnings, err.Error())
		}
	}

	seen := make(map[string]bool)
	for _, s := range c.Availability {
		label := fmt.Sprintf("Availability scenario '%s'", s.Name)
		if seen[s.Name] {
			warnings = append(warnings, fmt.Sprintf("%s: duplicate scenario name", label))
		}
		seen[s.Name] = true
		if !s.Active {
			continue
		}

		in, err := s.ToInputs()
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v", label, err))
			continue
		}
		warnings = append(warnings, validation.ValidateAvailabilityInputs(label, in)...)

		if s.ReadinessFloor < 0 || s.ReadinessFloor > 100 {
			warnings = append(warnings, validation.ValidateRange(label, "readiness floor", s.ReadinessFloor, 0, 100))
		} else if s.ReadinessFloor > s.BaselineAvailability {
			warnings = append(warnings, fmt.Sprintf("%s: readiness floor %v exceeds baseline availability %v and cannot be met",
				label, s.ReadinessFloor, s.BaselineAvailability))
		}
	}

	seen = make(map[string]bool)
	for _, s := range c.Tariff {
		label := fmt.Sprintf("Tariff scenario '%s'", s.Name)
		if seen[s.Name] {
			warnings = append(warnings, fmt.Sprintf("%s: duplicate scenario name", label))
		}
		seen[s.Name] = true
		if !s.Active {
			continue
		}

		warnings = append(warnings, validation.ValidateTariffInputs(label, s.ToInputs())...)
		if s.BudgetCap < 0 {
			warnings = append(warnings, fmt.Sprintf("%s: budget cap %v should not be negative", label, s.BudgetCap))
		}
	}

	if c.HasDirectives() {
		if err := c.Optimizer.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("optimizer: %v", err))
		}
	}

	return warnings
}
