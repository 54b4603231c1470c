// Package constants provides shared constants for the sustainment-impact application.
package constants

// Financial constants
const (
	// DecimalPlaces is the number of decimal places kept for currency amounts
	DecimalPlaces = 2

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Availability model constants
const (
	// CurveSamples is the number of points sampled for the degradation curve
	CurveSamples = 100

	// CurveMinIncreasePct is the lower bound of the sampled cost-increase domain
	CurveMinIncreasePct = 0.0

	// CurveMaxIncreasePct is the upper bound of the sampled cost-increase domain
	CurveMaxIncreasePct = 50.0

	// MinValidIncreasePct is the exclusive lower bound of the part reduction formula
	MinValidIncreasePct = -100.0

	// HeadlineAvailabilityFormat renders the availability headline metric
	HeadlineAvailabilityFormat = "%.1f"
)

// Tariff model constants
const (
	// DefaultStartYear is the first projected year
	DefaultStartYear = 2025

	// MaterialShare is the share of aircraft cost exposed to steel/aluminum tariffs
	MaterialShare = 0.15

	// ComponentShare is the share of aircraft cost exposed to component tariffs
	ComponentShare = 0.25

	// ChinaShare is the share of aircraft cost exposed to the China blanket tariff
	ChinaShare = 0.10

	// SustainmentAnnualEscalation is the annual escalation of the sustainment impact
	SustainmentAnnualEscalation = 0.025

	// SustainmentFixedFraction is the share of sustainment spending exposed to tariffs
	SustainmentFixedFraction = 0.25
)

// Dashboard defaults, matching the slider defaults of the web UI
const (
	DefaultBaselineAvailabilityPct = 70.0
	DefaultSustainmentIncreasePct  = 15.0
	DefaultLinearElasticity        = 0.5
	DefaultNonlinearExponent       = 1.8

	DefaultSteelTariffPct       = 25.0
	DefaultComponentTariffPct   = 25.0
	DefaultChinaTariffPct       = 20.0
	DefaultPassThroughPct       = 75.0
	DefaultAircraftCost         = 90.0
	DefaultProcurementGrowthPct = 4.0
	DefaultSustainmentBaseCost  = 1200.0
	DefaultHorizonYears         = 25
)

// Documented input ranges
const (
	MinHorizonYears = 4
	MaxHorizonYears = 25

	// HorizonYearsLimit bounds what the tariff model will project at all;
	// the documented range above only drives warnings and sliders.
	HorizonYearsLimit = 1000
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"

	// OutputFormatXLSX is the spreadsheet output format
	OutputFormatXLSX = "xlsx"
)

// Chart labels shared by the CLI and the web UI
const (
	AvailabilityXLabel     = "Sustainment Cost Increase (%)"
	AvailabilityYLabel     = "Resulting Aircraft Availability Rate (%)"
	AvailabilityChartTitle = "Aircraft Availability Degradation"
	TariffXLabel           = "Year"
	TariffYLabel           = "Cost Impact ($M)"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"

	// DefaultEnvFile is loaded by the server before environment overrides apply
	DefaultEnvFile = ".env"

	// EnvPrefix prefixes all environment overrides
	EnvPrefix = "SUSTAINMENT_IMPACT"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the web UI
	DefaultServerAddress = ":8080"

	// DefaultMaxUploadSizeBytes is the default maximum upload size for YAML configs (256 KB)
	DefaultMaxUploadSizeBytes int64 = 256 * 1024
)
