package tariff

import (
	"fmt"

	"github.com/iwvelando/sustainment-impact/pkg/constants"
	"github.com/iwvelando/sustainment-impact/pkg/format"
)

// Chart describes how a projection is plotted and summarized.
type Chart struct {
	Title            string `json:"title"`
	XLabel           string `json:"xLabel"`
	YLabel           string `json:"yLabel"`
	TableTitle       string `json:"tableTitle"`
	CumulativeLabel  string `json:"cumulativeLabel"`
	CumulativeAmount string `json:"cumulativeAmount"`
}

// Column headers of the yearly impact table.
var Columns = []string{"Year", "Procurement Impact ($M)", "Sustainment Impact ($M)", "Total Annual Impact ($M)"}

// NewChart returns the chart metadata for p.
func NewChart(p Projection) Chart {
	span := format.YearRange(p.FirstYear(), p.LastYear())
	return Chart{
		Title:            fmt.Sprintf("Projected Tariff-Related Cost Impact (%s)", span),
		XLabel:           constants.TariffXLabel,
		YLabel:           constants.TariffYLabel,
		TableTitle:       "Annual Tariff-Related Cost Impact",
		CumulativeLabel:  fmt.Sprintf("Total Cumulative Impact (%s)", span),
		CumulativeAmount: format.Millions(p.CumulativeTotal),
	}
}
