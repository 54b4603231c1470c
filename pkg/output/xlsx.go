package output

import (
	"fmt"
	"io"

	"github.com/iwvelando/sustainment-impact/internal/forecast"
	"github.com/iwvelando/sustainment-impact/pkg/tariff"
	"github.com/xuri/excelize/v2"
)

const defaultSheet = "Sheet1"

// XlsxFormat writes results as a workbook with one sheet per scenario.
func XlsxFormat(w io.Writer, results forecast.Results) error {
	f, err := Workbook(results)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// Workbook builds the spreadsheet for results. The caller closes it.
func Workbook(results forecast.Results) (*excelize.File, error) {
	f := excelize.NewFile()
	first := -1

	for i, result := range results.Availability {
		sheet := fmt.Sprintf("Availability %d", i+1)
		index, err := f.NewSheet(sheet)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if first < 0 {
			first = index
		}
		if err := writeAvailabilitySheet(f, sheet, result); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	for i, result := range results.Tariff {
		sheet := fmt.Sprintf("Tariff %d", i+1)
		index, err := f.NewSheet(sheet)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("failed to create sheet %s: %w", sheet, err)
		}
		if first < 0 {
			first = index
		}
		if err := writeTariffSheet(f, sheet, result); err != nil {
			_ = f.Close()
			return nil, err
		}
	}

	if first >= 0 {
		f.SetActiveSheet(first)
		_ = f.DeleteSheet(defaultSheet)
	}
	return f, nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func setRow(f *excelize.File, sheet string, row int, values ...any) error {
	for i, v := range values {
		if err := f.SetCellValue(sheet, cellName(i+1, row), v); err != nil {
			return fmt.Errorf("failed to set cell %s!%s: %w", sheet, cellName(i+1, row), err)
		}
	}
	return nil
}

func writeAvailabilitySheet(f *excelize.File, sheet string, result forecast.AvailabilityForecast) error {
	in := result.Inputs
	rows := [][]any{
		{"Scenario", result.Name},
		{"Elasticity mode", string(in.Mode)},
		{"Baseline availability (%)", in.BaselineAvailabilityPct},
		{"Sustainment cost increase (%)", in.SustainmentIncreasePct},
		{result.Chart.HeadlineLabel, result.Result.HeadlineDisplay()},
		{},
		{result.Chart.XLabel, result.Chart.LinearLabel, result.Chart.NonlinearLabel},
	}
	for i, values := range rows {
		if err := setRow(f, sheet, i+1, values...); err != nil {
			return err
		}
	}

	row := len(rows) + 1
	for _, pt := range result.Result.Curve {
		if err := setRow(f, sheet, row, pt.SustainmentIncreasePct, pt.LinearAvailabilityPct, pt.NonlinearAvailabilityPct); err != nil {
			return err
		}
		row++
	}
	return nil
}

func writeTariffSheet(f *excelize.File, sheet string, result forecast.TariffForecast) error {
	if err := setRow(f, sheet, 1, "Scenario", result.Name); err != nil {
		return err
	}
	headers := make([]any, len(tariff.Columns))
	for i, column := range tariff.Columns {
		headers[i] = column
	}
	if err := setRow(f, sheet, 3, headers...); err != nil {
		return err
	}

	row := 4
	for _, y := range result.Projection.Years {
		if err := setRow(f, sheet, row, y.Year, y.ProcurementImpact, y.SustainmentImpact, y.TotalImpact); err != nil {
			return err
		}
		row++
	}

	return setRow(f, sheet, row+1, result.Chart.CumulativeLabel, result.Projection.CumulativeTotal)
}
