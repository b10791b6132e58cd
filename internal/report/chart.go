// Package report renders accumulation runs as charts: interactive
// go-echarts HTML for the API, and gonum/plot image files for offline
// use.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/fold-data/running.report/internal/db"
)

// RenderHTML writes an interactive line chart of the run's accumulator
// series, with the raw inputs as a second series for context.
func RenderHTML(w io.Writer, run db.Run) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Running accumulation",
			Width:     "1200px",
			Height:    "600px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s over %d values", run.Reducer, run.Count),
			Subtitle: fmt.Sprintf("run=%s seeded=%v", run.ID, run.Seeded),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "step"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "value"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	steps := make([]string, len(run.Points))
	accs := make([]opts.LineData, len(run.Points))
	inputs := make([]opts.LineData, len(run.Points))
	for i, p := range run.Points {
		steps[i] = strconv.Itoa(p.Index)
		accs[i] = opts.LineData{Value: p.Acc}
		inputs[i] = opts.LineData{Value: p.Input}
	}

	line.SetXAxis(steps).
		AddSeries("accumulator", accs).
		AddSeries("input", inputs)

	return line.Render(w)
}
