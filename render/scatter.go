package render

import (
	"bytes"
	"image/png"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// dotStyle renders points only, without connecting lines.
func dotStyle(cat Category, width float64) chart.Style {
	return chart.Style{
		StrokeWidth: chart.Disabled,
		DotWidth:    width,
		DotColor:    drawing.Color{R: cat.Color.R, G: cat.Color.G, B: cat.Color.B, A: 153},
	}
}

func (r *Renderer) renderScatter(w io.Writer, p *Panel) error {
	cats, idx := categorize(p, r.opts.ColorBy)

	dotWidth := 2.0
	if r.opts.ColorBy == ColorByCPU {
		dotWidth = 1.2
	}

	xs := make([][]float64, len(cats))
	ys := make([][]float64, len(cats))
	for i, k := range idx {
		if k < 0 {
			continue
		}
		xs[k] = append(xs[k], p.X[i])
		ys[k] = append(ys[k], p.Y[i])
	}

	var series []chart.Series
	for k, cat := range cats {
		if len(xs[k]) == 0 {
			continue
		}
		series = append(series, chart.ContinuousSeries{
			Name:    cat.Label,
			XValues: xs[k],
			YValues: ys[k],
			Style:   dotStyle(cat, dotWidth),
		})
	}

	x0, x1 := extent(p.X)
	xFmt := r.xFormatter(p)
	yFmt := formatFixed(1)

	ch := chart.Chart{
		Title:      r.title(p),
		Width:      r.opts.Width,
		Height:     r.opts.Height,
		Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis: chart.XAxis{
			Name:           "Time (s)",
			Range:          &chart.ContinuousRange{Min: x0, Max: x1},
			ValueFormatter: func(v interface{}) string { return formatAny(v, xFmt) },
		},
		YAxis: chart.YAxis{
			Name:           "Virtual Address (GB)",
			Range:          &chart.ContinuousRange{Min: 0, Max: max(p.yMax()*1.05, 1.0)},
			ValueFormatter: func(v interface{}) string { return formatAny(v, yFmt) },
		},
		Series: series,
	}
	ch.Elements = []chart.Renderable{chart.Legend(&ch)}

	switch r.opts.Format {
	case FormatSVG:
		return ch.Render(chart.SVG, w)
	case FormatPNG:
		return ch.Render(chart.PNG, w)
	default:
		var buf bytes.Buffer
		if err := ch.Render(chart.PNG, &buf); err != nil {
			return err
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return err
		}
		return encodeRaster(w, img, r.opts.Format)
	}
}

func formatAny(v interface{}, f func(float64) string) string {
	if x, ok := v.(float64); ok {
		return f(x)
	}
	return ""
}
