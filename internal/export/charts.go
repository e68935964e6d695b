package export

import (
	"fmt"
	"io"
	"math"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/fault.report/internal/fault"
	"github.com/banshee-data/fault.report/internal/units"
)

// missing is how echarts marks an absent data point.
const missing = "-"

func chartValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missing
	}
	return v
}

// WriteHTML renders a summary page of the table: a strike/dip scatter, fault
// areas and mean curvature per fault.
func WriteHTML(w io.Writer, t *fault.Table, title string) error {
	labels := make([]string, 0, t.Len())
	orient := make([]opts.ScatterData, 0, t.Len())
	areas := make([]opts.BarData, 0, t.Len())
	curv := make([]opts.BarData, 0, t.Len())

	for _, row := range t.Rows {
		r := row.Record
		labels = append(labels, row.Label)
		if !math.IsNaN(r.Strike) && !math.IsNaN(r.Dip) {
			orient = append(orient, opts.ScatterData{
				Name:  row.Label,
				Value: []interface{}{units.ConvertAngle(r.Strike, units.Degrees), units.ConvertAngle(r.Dip, units.Degrees)},
			})
		}
		areas = append(areas, opts.BarData{Name: row.Label, Value: chartValue(r.Area)})
		curv = append(curv, opts.BarData{Name: row.Label, Value: chartValue(r.CurvMean)})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Fault Orientation", Subtitle: fmt.Sprintf("faults=%d", t.Len())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: 360, Name: "Strike (deg)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 90, Name: "Dip (deg)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("faults", orient, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 10}))

	areaBar := charts.NewBar()
	areaBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Fault Area"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	areaBar.SetXAxis(labels).AddSeries("area", areas)

	curvBar := charts.NewBar()
	curvBar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Mean Curvature"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	curvBar.SetXAxis(labels).AddSeries("curv_mean", curv)

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(scatter, areaBar, curvBar)
	return page.Render(w)
}
