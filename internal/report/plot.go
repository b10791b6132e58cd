package report

import (
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/fold-data/running.report/internal/db"
)

// SavePlot writes the run's accumulator series to an image file. The
// format follows the file extension (.png, .svg, .pdf).
func SavePlot(run db.Run, path string) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s over %d values", run.Reducer, run.Count)
	p.X.Label.Text = "step"
	p.Y.Label.Text = "accumulator"

	pts := make(plotter.XYs, len(run.Points))
	for i, point := range run.Points {
		pts[i].X = float64(point.Index)
		pts[i].Y = point.Acc
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build line: %w", err)
	}
	line.Width = vg.Points(1)
	p.Add(line)
	p.Add(plotter.NewGrid())

	if err := p.Save(10*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
