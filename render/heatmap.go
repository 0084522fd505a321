package render

import "io"

// renderHeatmap bins the panel on a shared grid and paints each bin with
// the color of its dominant category. Empty bins stay white.
func (r *Renderer) renderHeatmap(w io.Writer, p *Panel) error {
	cats, idx := categorize(p, r.opts.ColorBy)

	g := NewGrid(p.X, p.Y, r.opts.Bins, r.opts.Bins)
	counts := Histogram2D(g, p.X, p.Y, idx, len(cats))
	winner := Argmax(counts, g.Cells())

	x0, x1 := g.XEdges[0], g.XEdges[g.BinsX()]
	y0, y1 := g.YEdges[0], g.YEdges[g.BinsY()]
	c := newCanvas(r.opts.Width, r.opts.Height, x0, x1, y0, y1)

	bx, by := g.BinsX(), g.BinsY()
	pw, ph := c.plot.Dx(), c.plot.Dy()
	for py := 0; py < ph; py++ {
		iy := (ph - 1 - py) * by / ph
		for px := 0; px < pw; px++ {
			ix := px * bx / pw
			if k := winner[ix*by+iy]; k >= 0 {
				c.img.SetRGBA(c.plot.Min.X+px, c.plot.Min.Y+py, cats[k].Color)
			}
		}
	}

	legend := cats
	if r.opts.ColorBy == ColorByCPU && len(legend) > MaxLegendEntries {
		legend = legend[:MaxLegendEntries]
	}

	c.axes(r.title(p), "Time (s)", "Virtual Address (GB)", r.xFormatter(p), formatFixed(1))
	c.legend(legend)

	if r.opts.ColorBy == ColorByEvent && p.Absolute {
		for _, pt := range p.Roots {
			if px, py := c.toPixel(pt.X, pt.Y); c.inPlot(px, py) {
				c.cross(px, py, 5, red)
			}
		}
		for _, pt := range p.Neighbors {
			if px, py := c.toPixel(pt.X, pt.Y); c.inPlot(px, py) {
				c.dot(px, py, 2, black)
			}
		}
	}

	return encodeRaster(w, c.img, r.opts.Format)
}
