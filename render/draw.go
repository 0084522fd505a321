package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

var face = basicfont.Face7x13

// canvas is an RGBA image with a data-to-pixel transform for its plot area.
type canvas struct {
	img  *image.RGBA
	plot image.Rectangle

	x0, x1 float64
	y0, y1 float64
}

const (
	marginLeft   = 80
	marginRight  = 20
	marginTop    = 36
	marginBottom = 52
)

func newCanvas(w, h int, x0, x1, y0, y1 float64) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return &canvas{
		img:  img,
		plot: image.Rect(marginLeft, marginTop, w-marginRight, h-marginBottom),
		x0:   x0,
		x1:   x1,
		y0:   y0,
		y1:   y1,
	}
}

func (c *canvas) toPixel(x, y float64) (int, int) {
	px := float64(c.plot.Min.X) + (x-c.x0)/(c.x1-c.x0)*float64(c.plot.Dx())
	py := float64(c.plot.Max.Y) - (y-c.y0)/(c.y1-c.y0)*float64(c.plot.Dy())
	return int(math.Round(px)), int(math.Round(py))
}

func (c *canvas) inPlot(px, py int) bool {
	return image.Pt(px, py).In(c.plot)
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r, image.NewUniform(col), image.Point{}, draw.Src)
}

func (c *canvas) frame(r image.Rectangle, col color.RGBA) {
	c.fill(image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+1), col)
	c.fill(image.Rect(r.Min.X, r.Max.Y-1, r.Max.X, r.Max.Y), col)
	c.fill(image.Rect(r.Min.X, r.Min.Y, r.Min.X+1, r.Max.Y), col)
	c.fill(image.Rect(r.Max.X-1, r.Min.Y, r.Max.X, r.Max.Y), col)
}

// cross draws an X of half-size s centered at (px, py).
func (c *canvas) cross(px, py, s int, col color.RGBA) {
	for d := -s; d <= s; d++ {
		for t := 0; t < 2; t++ {
			c.img.SetRGBA(px+d+t, py+d, col)
			c.img.SetRGBA(px+d+t, py-d, col)
		}
	}
}

func (c *canvas) dot(px, py, r int, col color.RGBA) {
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				c.img.SetRGBA(px+dx, py+dy, col)
			}
		}
	}
}

func textWidth(s string) int {
	return font.MeasureString(face, s).Ceil()
}

// text draws s with its baseline at y, starting at x.
func (c *canvas) text(x, y int, s string, col color.Color) {
	d := &font.Drawer{
		Dst:  c.img,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)},
	}
	d.DrawString(s)
}

func (c *canvas) textCentered(cx, y int, s string, col color.Color) {
	c.text(cx-textWidth(s)/2, y, s, col)
}

// textVertical draws s rotated a quarter turn counter-clockwise, centered
// vertically on cy with its left edge at x.
func (c *canvas) textVertical(x, cy int, s string, col color.Color) {
	w := textWidth(s)
	h := face.Metrics().Height.Ceil()
	tmp := &canvas{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	tmp.text(0, face.Metrics().Ascent.Ceil(), s, col)

	top := cy - w/2
	for ty := 0; ty < h; ty++ {
		for tx := 0; tx < w; tx++ {
			if p := tmp.img.RGBAAt(tx, ty); p.A != 0 {
				c.img.SetRGBA(x+ty, top+w-1-tx, p)
			}
		}
	}
}

// axes draws the plot frame, ticks, tick labels and axis names.
func (c *canvas) axes(title, xName, yName string, xFmt, yFmt func(float64) string) {
	c.frame(c.plot.Inset(-1), black)

	for _, v := range niceTicks(c.x0, c.x1, 6) {
		px, _ := c.toPixel(v, c.y0)
		c.fill(image.Rect(px, c.plot.Max.Y, px+1, c.plot.Max.Y+5), black)
		c.textCentered(px, c.plot.Max.Y+18, xFmt(v), black)
	}
	for _, v := range niceTicks(c.y0, c.y1, 6) {
		_, py := c.toPixel(c.x0, v)
		c.fill(image.Rect(c.plot.Min.X-5, py, c.plot.Min.X, py+1), black)
		lbl := yFmt(v)
		c.text(c.plot.Min.X-8-textWidth(lbl), py+4, lbl, black)
	}

	c.textCentered(c.plot.Min.X+c.plot.Dx()/2, c.plot.Max.Y+40, xName, black)
	c.textVertical(12, c.plot.Min.Y+c.plot.Dy()/2, yName, black)
	c.textCentered(c.plot.Min.X+c.plot.Dx()/2, marginTop-12, title, black)
}

// legend draws square swatches in the upper right corner of the plot.
func (c *canvas) legend(cats []Category) {
	if len(cats) == 0 {
		return
	}
	const row, sw, pad = 15, 9, 6
	wmax := 0
	for _, cat := range cats {
		wmax = max(wmax, textWidth(cat.Label))
	}
	box := image.Rect(0, 0, pad+sw+pad+wmax+pad, pad+len(cats)*row+pad/2).
		Add(image.Pt(c.plot.Max.X-8, c.plot.Min.Y+8))
	box = box.Sub(image.Pt(box.Dx(), 0))

	c.fill(box, white)
	c.frame(box, gray)
	for i, cat := range cats {
		y := box.Min.Y + pad + i*row
		c.fill(image.Rect(box.Min.X+pad, y, box.Min.X+pad+sw, y+sw), cat.Color)
		c.text(box.Min.X+pad+sw+pad, y+sw, cat.Label, black)
	}
}

// niceTicks picks about n round tick values inside [lo, hi].
func niceTicks(lo, hi float64, n int) []float64 {
	if !(hi > lo) || n < 2 {
		return nil
	}
	raw := (hi - lo) / float64(n-1)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	step := mag
	for _, m := range []float64{1, 2, 2.5, 5, 10} {
		if m*mag >= raw {
			step = m * mag
			break
		}
	}
	// Below one ULP of lo every tick would collapse onto the same value.
	if step <= math.Nextafter(lo, hi)-lo {
		return nil
	}
	first := math.Ceil(lo/step) * step
	var out []float64
	for i := 0; i <= 2*n; i++ {
		v := first + float64(i)*step
		if v > hi+step*1e-9 {
			break
		}
		out = append(out, v)
	}
	return out
}

func formatFixed(prec int) func(float64) string {
	return func(v float64) string { return fmt.Sprintf("%.*f", prec, v) }
}

func formatCycles(v float64) string {
	switch av := math.Abs(v); {
	case av >= 1e6:
		return fmt.Sprintf("%.3g", v)
	case av >= 10:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

func encodeRaster(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: 95})
	default:
		return fmt.Errorf("%w: raster %s", ErrUnsupportedFormat, f)
	}
}
