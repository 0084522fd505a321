package render

import (
	"fmt"
	"image/color"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/lpjones/PACT/trace"
)

// Category is one legend entry.
type Category struct {
	Label string
	Color color.RGBA
}

var (
	colorFast = color.RGBA{0x1f, 0x77, 0xb4, 0xff}
	colorSlow = color.RGBA{0xff, 0x7f, 0x0e, 0xff}

	white = color.RGBA{0xff, 0xff, 0xff, 0xff}
	black = color.RGBA{0x00, 0x00, 0x00, 0xff}
	red   = color.RGBA{0xff, 0x00, 0x00, 0xff}
	gray  = color.RGBA{0x80, 0x80, 0x80, 0xff}
)

// EventCategories are indexed by trace.Event.
var EventCategories = []Category{
	trace.EventFast: {Label: "Fast Mem Access", Color: colorFast},
	trace.EventSlow: {Label: "Slow Mem Access", Color: colorSlow},
}

var tab20 = [20]color.RGBA{
	{0x1f, 0x77, 0xb4, 0xff}, {0xae, 0xc7, 0xe8, 0xff},
	{0xff, 0x7f, 0x0e, 0xff}, {0xff, 0xbb, 0x78, 0xff},
	{0x2c, 0xa0, 0x2c, 0xff}, {0x98, 0xdf, 0x8a, 0xff},
	{0xd6, 0x27, 0x28, 0xff}, {0xff, 0x98, 0x96, 0xff},
	{0x94, 0x67, 0xbd, 0xff}, {0xc5, 0xb0, 0xd5, 0xff},
	{0x8c, 0x56, 0x4b, 0xff}, {0xc4, 0x9c, 0x94, 0xff},
	{0xe3, 0x77, 0xc2, 0xff}, {0xf7, 0xb6, 0xd2, 0xff},
	{0x7f, 0x7f, 0x7f, 0xff}, {0xc7, 0xc7, 0xc7, 0xff},
	{0xbc, 0xbd, 0x22, 0xff}, {0xdb, 0xdb, 0x8d, 0xff},
	{0x17, 0xbe, 0xcf, 0xff}, {0x9e, 0xda, 0xe5, 0xff},
}

// maxTab20 is the largest CPU count colored from tab20.
const maxTab20 = len(tab20)

// MaxLegendEntries caps the CPU legend.
const MaxLegendEntries = 50

// sampleAt returns the position of color i when n colors are spread evenly
// over [0, 1].
func sampleAt(i, n int) float64 {
	if n <= 1 {
		return 0
	}
	return float64(i) / float64(n-1)
}

func tab20Color(i, n int) color.RGBA {
	k := int(sampleAt(i, n) * float64(len(tab20)))
	return tab20[min(k, len(tab20)-1)]
}

// turbo evaluates the polynomial approximation of the Turbo colormap.
func turbo(x float64) color.RGBA {
	x = math.Max(0, math.Min(1, x))
	r := 0.13572138 + x*(4.61539260+x*(-42.66032258+x*(132.13108234+x*(-152.94239396+x*59.28637943))))
	g := 0.09140261 + x*(2.19418839+x*(4.84296658+x*(-14.18503333+x*(4.27729857+x*2.82956604))))
	b := 0.10667330 + x*(12.64194608+x*(-60.58204836+x*(110.36276771+x*(-89.90310912+x*27.34824973))))
	return color.RGBA{unit8(r), unit8(g), unit8(b), 0xff}
}

func unit8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// CPUPalette assigns one color per distinct CPU, in ascending CPU order.
func CPUPalette(cpus []uint32) []Category {
	n := len(cpus)
	out := make([]Category, n)
	for i, c := range cpus {
		col := tab20Color(i, n)
		if n > maxTab20 {
			col = turbo(sampleAt(i, n))
		}
		out[i] = Category{Label: fmt.Sprintf("CPU %d", c), Color: col}
	}
	return out
}

// categorize returns the legend and the category index of every point;
// points outside every category get -1.
func categorize(p *Panel, by ColorBy) ([]Category, []int) {
	idx := make([]int, p.Len())
	switch by {
	case ColorByCPU:
		set := roaring.New()
		set.AddMany(p.CPUs)
		cats := CPUPalette(set.ToArray())
		for i, c := range p.CPUs {
			idx[i] = int(set.Rank(c)) - 1
		}
		return cats, idx
	default:
		for i, e := range p.Events {
			idx[i] = -1
			if int(e) < len(EventCategories) {
				idx[i] = int(e)
			}
		}
		return EventCategories, idx
	}
}
