package availability

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/sustainment-impact/pkg/constants"
)

// Chart describes how the degradation curve is plotted.
type Chart struct {
	Title           string  `json:"title"`
	XLabel          string  `json:"xLabel"`
	YLabel          string  `json:"yLabel"`
	YMin            float64 `json:"yMin"`
	YMax            float64 `json:"yMax"`
	LinearLabel     string  `json:"linearLabel"`
	NonlinearLabel  string  `json:"nonlinearLabel"`
	HeadlineLabel   string  `json:"headlineLabel"`
	HeadlineDisplay string  `json:"headlineDisplay"`
}

// NewChart returns the chart metadata for in and its result.
func NewChart(in Inputs, result Result) Chart {
	return Chart{
		Title:           constants.AvailabilityChartTitle,
		XLabel:          constants.AvailabilityXLabel,
		YLabel:          constants.AvailabilityYLabel,
		YMin:            0,
		YMax:            100,
		LinearLabel:     "Linear Elasticity",
		NonlinearLabel:  fmt.Sprintf("Nonlinear Elasticity (exp=%s)", strconv.FormatFloat(in.NonlinearExponent, 'f', -1, 64)),
		HeadlineLabel:   "Estimated New Aircraft Availability Rate (%)",
		HeadlineDisplay: result.HeadlineDisplay(),
	}
}
