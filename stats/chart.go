package stats

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/lpjones/PACT/render"
)

// ErrNothingPlotted is returned when none of the requested metrics exist.
var ErrNothingPlotted = errors.New("stats: no metrics plotted")

// Input is one parsed log file.
type Input struct {
	Label   string
	Metrics Metrics
}

// Range is an explicit axis range.
type Range struct {
	Min float64
	Max float64
}

// ChartOptions configures Render.
type ChartOptions struct {
	// Primary metrics are drawn against the left axis and are required.
	Primary []string
	// Secondary metrics are drawn dashed against the right axis.
	Secondary []string

	Title  string
	XLabel string
	YLabel string

	PrimaryRange   *Range
	SecondaryRange *Range

	Format render.Format
	Width  int
	Height int
}

// Mean is the average of one plotted metric.
type Mean struct {
	Label  string
	Metric string
	Value  float64
}

// Missing names a requested metric that an input did not contain.
type Missing struct {
	Label  string
	Metric string
}

// Result describes what Render drew.
type Result struct {
	Means   []Mean
	Skipped []Missing
}

// Render draws every requested metric of every input into one chart.
func Render(w io.Writer, inputs []Input, opts ChartOptions) (*Result, error) {
	if len(opts.Primary) == 0 {
		return nil, errors.New("stats: at least one primary metric is required")
	}
	switch opts.Format {
	case render.FormatPNG, render.FormatSVG:
	default:
		return nil, fmt.Errorf("%w: %q", render.ErrUnsupportedFormat, opts.Format)
	}
	if opts.Width == 0 {
		opts.Width = 1000
	}
	if opts.Height == 0 {
		opts.Height = 600
	}

	res := &Result{}
	var series []chart.Series
	xs := newBounds()
	ys := [2]bounds{newBounds(), newBounds()}

	add := func(metrics []string, axis chart.YAxisType, secondary bool) {
		for _, in := range inputs {
			for _, name := range metrics {
				s, ok := in.Metrics[name]
				if !ok || len(s.X) == 0 {
					res.Skipped = append(res.Skipped, Missing{Label: in.Label, Metric: name})
					continue
				}
				res.Means = append(res.Means, Mean{Label: in.Label, Metric: name, Value: s.Mean()})

				label := in.Label
				if secondary || len(metrics) > 1 {
					label = in.Label + ": " + name
				}
				style := chart.Style{}
				k := 0
				if secondary {
					style.StrokeDashArray = []float64{5, 3}
					k = 1
				}
				series = append(series, chart.ContinuousSeries{
					Name:    label,
					XValues: s.X,
					YValues: s.Y,
					YAxis:   axis,
					Style:   style,
				})
				xs.add(s.X...)
				ys[k].add(s.Y...)
			}
		}
	}
	add(opts.Primary, chart.YAxisPrimary, false)
	add(opts.Secondary, chart.YAxisSecondary, true)

	if len(series) == 0 {
		return res, ErrNothingPlotted
	}

	yName := opts.YLabel
	if len(opts.Secondary) > 0 {
		yName = strings.Join(opts.Primary, " / ")
	}

	ch := chart.Chart{
		Title:      opts.Title,
		Width:      opts.Width,
		Height:     opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:  opts.XLabel,
			Range: xs.axis(nil),
		},
		YAxis: chart.YAxis{
			Name:  yName,
			Range: ys[0].axis(opts.PrimaryRange),
		},
		Series: series,
	}
	if len(opts.Secondary) > 0 {
		ch.YAxisSecondary = chart.YAxis{
			Name:  strings.Join(opts.Secondary, " / "),
			Range: ys[1].axis(opts.SecondaryRange),
		}
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	provider := chart.PNG
	if opts.Format == render.FormatSVG {
		provider = chart.SVG
	}
	if err := ch.Render(provider, w); err != nil {
		return res, err
	}
	return res, nil
}

type bounds struct{ lo, hi float64 }

func newBounds() bounds { return bounds{lo: math.Inf(1), hi: math.Inf(-1)} }

func (b *bounds) add(vs ...float64) {
	for _, v := range vs {
		b.lo = min(b.lo, v)
		b.hi = max(b.hi, v)
	}
}

// axis returns the explicit range if set, a widened range for a single
// value, and nil to let the chart autoscale otherwise.
func (b bounds) axis(explicit *Range) chart.Range {
	switch {
	case explicit != nil:
		return &chart.ContinuousRange{Min: explicit.Min, Max: explicit.Max}
	case math.IsInf(b.lo, 1):
		return nil
	case b.lo == b.hi:
		return &chart.ContinuousRange{Min: b.lo - 0.5, Max: b.hi + 0.5}
	default:
		return nil
	}
}
