// Package output provides utilities for formatting and displaying forecast results.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/iwvelando/sustainment-impact/internal/forecast"
	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/format"
	"github.com/iwvelando/sustainment-impact/pkg/optimization"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const sparklineWidth = 50

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	noteStyle     = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#F59E0B"))
	headerStyle   = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle     = lipgloss.NewStyle().Padding(0, 1).Align(lipgloss.Right)
)

// Write renders results in the named output format.
func Write(w io.Writer, outputFormat string, results forecast.Results) error {
	switch outputFormat {
	case constants.OutputFormatPretty, "":
		return PrettyFormat(w, results)
	case constants.OutputFormatCSV:
		return CsvFormat(w, results)
	case constants.OutputFormatJSON:
		return JSONFormat(w, results)
	case constants.OutputFormatXLSX:
		return XlsxFormat(w, results)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable report.
func PrettyFormat(w io.Writer, results forecast.Results) error {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	for i, result := range results.Availability {
		if i > 0 {
			b.WriteString("\n")
		}
		writeAvailability(&b, p, result)
	}

	for i, result := range results.Tariff {
		if i > 0 || len(results.Availability) > 0 {
			b.WriteString("\n")
		}
		writeTariff(&b, p, result)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeAvailability(b *strings.Builder, p *message.Printer, result forecast.AvailabilityForecast) {
	in := result.Inputs
	res := result.Result

	b.WriteString(titleStyle.Render(fmt.Sprintf("--- Availability scenario %s ---", result.Name)) + "\n")
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-34s", label)) + " " + value + "\n")
	}
	field("Elasticity mode", string(in.Mode))
	field("Baseline availability", format.Percent(in.BaselineAvailabilityPct))
	field("Sustainment cost increase", format.Percent(in.SustainmentIncreasePct))
	field("Part reduction", p.Sprintf("%.2f%%", res.PartReductionFraction*constants.PercentageMultiplier))
	field("Availability drop", p.Sprintf("%.2f pts", res.AvailabilityDropPct))
	b.WriteString(headlineStyle.Render(fmt.Sprintf("%s: %s", result.Chart.HeadlineLabel, res.HeadlineDisplay())) + "\n")

	linear := make([]float64, len(res.Curve))
	nonlinear := make([]float64, len(res.Curve))
	for i, pt := range res.Curve {
		linear[i] = pt.LinearAvailabilityPct
		nonlinear[i] = pt.NonlinearAvailabilityPct
	}
	field(result.Chart.LinearLabel, Sparkline(linear, sparklineWidth, lipgloss.Color("#3B82F6")))
	field(result.Chart.NonlinearLabel, Sparkline(nonlinear, sparklineWidth, lipgloss.Color("#EF4444")))

	writeOptimizations(b, p, result.Optimizations)
}

func writeTariff(b *strings.Builder, p *message.Printer, result forecast.TariffForecast) {
	b.WriteString(titleStyle.Render(fmt.Sprintf("--- Tariff scenario %s ---", result.Name)) + "\n")
	b.WriteString(labelStyle.Render(result.Chart.TableTitle) + "\n")

	rows := make([][]string, 0, len(result.Projection.Years))
	for _, y := range result.Projection.Years {
		rows = append(rows, []string{
			fmt.Sprintf("%d", y.Year),
			p.Sprintf("%.2f", y.ProcurementImpact),
			p.Sprintf("%.2f", y.SustainmentImpact),
			p.Sprintf("%.2f", y.TotalImpact),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(labelStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(tariff.Columns...).
		Rows(rows...)
	b.WriteString(t.String() + "\n")

	b.WriteString(headlineStyle.Render(fmt.Sprintf("%s: %s", result.Chart.CumulativeLabel, result.Chart.CumulativeAmount)) + "\n")

	writeOptimizations(b, p, result.Optimizations)
}

func writeOptimizations(b *strings.Builder, p *message.Printer, summaries []optimization.Summary) {
	for _, s := range summaries {
		b.WriteString(p.Sprintf("Optimizer: %s solved to %.2f (current %.2f, limit %.2f, achieved %.2f, headroom %.2f, %d iterations)\n",
			s.Field, s.Value, s.Original, s.Limit, s.Achieved, s.Headroom, s.Iterations))
		for _, note := range s.Notes {
			b.WriteString(noteStyle.Render("  note: "+note) + "\n")
		}
	}
}

// CsvFormat outputs in comma-separated value format. Tariff scenarios are
// written as yearly tables and availability scenarios as their sampled
// curves, each block preceded by a scenario line.
func CsvFormat(w io.Writer, results forecast.Results) error {
	var b strings.Builder
	for i, result := range results.Availability {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, `"availability scenario","%s"`+"\n", csvEscape(result.Name))
		fmt.Fprintf(&b, `"new availability (%%)","%s"`+"\n", result.Result.HeadlineDisplay())
		b.WriteString(AvailabilityCSV(result))
	}
	for i, result := range results.Tariff {
		if i > 0 || len(results.Availability) > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, `"tariff scenario","%s"`+"\n", csvEscape(result.Name))
		b.WriteString(TariffCSV(result.Projection))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// TariffCSV renders the yearly impact table of p.
func TariffCSV(p tariff.Projection) string {
	var b strings.Builder
	for i, column := range tariff.Columns {
		if i > 0 {
			b.WriteString(",")
		}
		fmt.Fprintf(&b, `"%s"`, column)
	}
	b.WriteString("\n")
	for _, y := range p.Years {
		fmt.Fprintf(&b, `"%d","%.2f","%.2f","%.2f"`+"\n", y.Year, y.ProcurementImpact, y.SustainmentImpact, y.TotalImpact)
	}
	return b.String()
}

// AvailabilityCSV renders the sampled degradation curve of result.
func AvailabilityCSV(result forecast.AvailabilityForecast) string {
	var b strings.Builder
	fmt.Fprintf(&b, `"%s","%s","%s"`+"\n",
		result.Chart.XLabel, result.Chart.LinearLabel, csvEscape(result.Chart.NonlinearLabel))
	for _, pt := range result.Result.Curve {
		fmt.Fprintf(&b, `"%.4f","%.4f","%.4f"`+"\n",
			pt.SustainmentIncreasePct, pt.LinearAvailabilityPct, pt.NonlinearAvailabilityPct)
	}
	return b.String()
}

func csvEscape(value string) string {
	return strings.ReplaceAll(value, `"`, `""`)
}

// JSONFormat outputs the results as indented JSON.
func JSONFormat(w io.Writer, results forecast.Results) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
