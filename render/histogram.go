package render

import "sort"

// Grid is a fixed set of bin edges shared by every category histogram.
type Grid struct {
	XEdges []float64
	YEdges []float64
}

// NewGrid spans the extent of xs and ys with bins equal-width bins per
// axis. A degenerate axis is widened by 0.5 on each side.
func NewGrid(xs, ys []float64, binsX, binsY int) Grid {
	x0, x1 := extent(xs)
	y0, y1 := extent(ys)
	return Grid{XEdges: linspace(x0, x1, binsX+1), YEdges: linspace(y0, y1, binsY+1)}
}

func linspace(lo, hi float64, n int) []float64 {
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}

// BinsX returns the number of bins along x.
func (g Grid) BinsX() int { return len(g.XEdges) - 1 }

// BinsY returns the number of bins along y.
func (g Grid) BinsY() int { return len(g.YEdges) - 1 }

// Cells returns BinsX*BinsY.
func (g Grid) Cells() int { return g.BinsX() * g.BinsY() }

// Cell returns the flat index ix*BinsY+iy of the bin holding (x, y).
// Bins are half-open except the last, which includes its right edge.
func (g Grid) Cell(x, y float64) (int, bool) {
	ix, ok := binOf(g.XEdges, x)
	if !ok {
		return 0, false
	}
	iy, ok := binOf(g.YEdges, y)
	if !ok {
		return 0, false
	}
	return ix*g.BinsY() + iy, true
}

func binOf(edges []float64, v float64) (int, bool) {
	last := len(edges) - 1
	if !(v >= edges[0] && v <= edges[last]) {
		return 0, false
	}
	if v == edges[last] {
		return last - 1, true
	}
	return sort.Search(len(edges), func(i int) bool { return edges[i] > v }) - 1, true
}

// Histogram2D counts points per category and cell. cat[i] < 0 skips point i.
func Histogram2D(g Grid, xs, ys []float64, cat []int, ncat int) [][]uint32 {
	counts := make([][]uint32, ncat)
	for c := range counts {
		counts[c] = make([]uint32, g.Cells())
	}
	for i := range xs {
		c := cat[i]
		if c < 0 || c >= ncat {
			continue
		}
		if cell, ok := g.Cell(xs[i], ys[i]); ok {
			counts[c][cell]++
		}
	}
	return counts
}

// Argmax returns, per cell, the category with the highest count, the lowest
// index winning ties. Cells with no points get -1.
func Argmax(counts [][]uint32, cells int) []int {
	out := make([]int, cells)
	for cell := range out {
		best, bestN := -1, uint32(0)
		for c := range counts {
			if n := counts[c][cell]; n > bestN {
				best, bestN = c, n
			}
		}
		out[cell] = best
	}
	return out
}
