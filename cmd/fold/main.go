// Command fold applies a named reducer to a value stream and prints the
// running accumulation, the final value, or a rendered chart.
//
// Input comes from -values, or from a CSV/JSON-lines file (use "-" for
// stdin). Examples:
//
//	fold -values 1,2,3 -reducer sum
//	fold -in speeds.csv -column speed -reducer max -last
//	fold -in events.jsonl -field value -reducer mean -plot mean.png
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fold-data/running.report/internal/db"
	"github.com/fold-data/running.report/internal/fold"
	"github.com/fold-data/running.report/internal/reduce"
	"github.com/fold-data/running.report/internal/report"
	"github.com/fold-data/running.report/internal/stream"
)

var (
	inPath    = flag.String("in", "", "Input file (CSV or JSON lines), '-' for stdin")
	format    = flag.String("format", "", "Input format: csv or jsonl (default: by file extension)")
	column    = flag.String("column", "", "CSV column index or header name (default: first column)")
	field     = flag.String("field", "", "JSON field name (default: value)")
	values    = flag.String("values", "", "Comma-separated values instead of a file")
	reducer   = flag.String("reducer", reduce.Sum, "Reducer to apply (see -list)")
	seedFlag  = flag.String("seed", "", "Seed value (default: reducer's own)")
	selector  = flag.String("select", "acc", "Output per step: acc, value or index")
	lastOnly  = flag.Bool("last", false, "Print only the final value")
	chartPath = flag.String("chart", "", "Write an HTML chart to this path")
	plotPath  = flag.String("plot", "", "Write a PNG/SVG/PDF plot to this path")
	list      = flag.Bool("list", false, "List available reducers and exit")
)

type options struct {
	inPath    string
	format    string
	column    string
	field     string
	values    string
	reducer   string
	seed      string
	selector  string
	lastOnly  bool
	chartPath string
	plotPath  string
}

// readValues loads the input stream according to the options.
func readValues(opts options, stdin io.Reader) ([]float64, error) {
	if opts.values != "" {
		return stream.ParseValues(opts.values)
	}
	if opts.inPath == "" {
		return nil, fmt.Errorf("no input: provide -in or -values")
	}

	var r io.Reader
	if opts.inPath == "-" {
		r = stdin
	} else {
		f, err := os.Open(opts.inPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	format := opts.format
	if format == "" {
		switch {
		case strings.HasSuffix(opts.inPath, ".jsonl"), strings.HasSuffix(opts.inPath, ".ndjson"):
			format = "jsonl"
		default:
			format = "csv"
		}
	}

	switch format {
	case "csv":
		return stream.ReadCSV(r, opts.column)
	case "jsonl":
		return stream.ReadJSONL(r, opts.field)
	default:
		return nil, fmt.Errorf("unknown format %q (want csv or jsonl)", format)
	}
}

// runFold reads the stream, applies the reducer and writes the result.
func runFold(opts options, stdin io.Reader, stdout io.Writer) error {
	vals, err := readValues(opts, stdin)
	if err != nil {
		return err
	}

	var seed *float64
	if opts.seed != "" {
		v, err := strconv.ParseFloat(opts.seed, 64)
		if err != nil {
			return fmt.Errorf("invalid seed %q: %w", opts.seed, err)
		}
		seed = &v
	}

	out, err := reduce.Apply(opts.reducer, fold.Values(vals), seed)
	if err != nil {
		return err
	}

	if opts.chartPath != "" || opts.plotPath != "" {
		run := asRun(opts.reducer, out)
		if opts.chartPath != "" {
			f, err := os.Create(opts.chartPath)
			if err != nil {
				return err
			}
			if err := report.RenderHTML(f, run); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
		}
		if opts.plotPath != "" {
			if err := report.SavePlot(run, opts.plotPath); err != nil {
				return err
			}
		}
	}

	if opts.lastOnly {
		last, err := out.Last()
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "%v\n", last)
		return nil
	}

	series, err := selectSeries(out.Points, opts.selector)
	if err != nil {
		return err
	}
	for _, v := range series {
		fmt.Fprintf(stdout, "%v\n", v)
	}
	return nil
}

// selectSeries applies the result-selection clause to the step points.
func selectSeries(points []reduce.Point, selector string) ([]float64, error) {
	var project func(reduce.Point) float64
	switch selector {
	case "", "acc":
		project = func(p reduce.Point) float64 { return p.Acc }
	case "value":
		project = func(p reduce.Point) float64 { return p.Input }
	case "index":
		project = func(p reduce.Point) float64 { return float64(p.Index) }
	default:
		return nil, fmt.Errorf("unknown select %q (want acc, value or index)", selector)
	}
	return fold.Collect(fold.Select(fold.Values(points), project)), nil
}

// asRun shapes an outcome as an unstored run for the report renderers.
func asRun(reducer string, out reduce.Outcome) db.Run {
	_, seeded := out.Seeded()
	run := db.Run{
		ID:      "local",
		Reducer: reducer,
		Seeded:  seeded,
		Count:   len(out.Points),
		Created: time.Now().UTC(),
		Points:  out.Points,
	}
	if final, err := out.Last(); err == nil {
		run.Final = &final
	}
	return run
}

func main() {
	flag.Parse()

	if *list {
		for _, name := range reduce.Names() {
			fmt.Println(name)
		}
		return
	}

	opts := options{
		inPath:    *inPath,
		format:    *format,
		column:    *column,
		field:     *field,
		values:    *values,
		reducer:   *reducer,
		seed:      *seedFlag,
		selector:  *selector,
		lastOnly:  *lastOnly,
		chartPath: *chartPath,
		plotPath:  *plotPath,
	}
	if err := runFold(opts, os.Stdin, os.Stdout); err != nil {
		log.Fatalf("fold: %v", err)
	}
}
