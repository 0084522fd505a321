package render

import (
	"fmt"

	"github.com/lpjones/PACT/cluster"
	"github.com/lpjones/PACT/neighbor"
	"github.com/lpjones/PACT/timelog"
	"github.com/lpjones/PACT/trace"
)

// Point is a position in panel coordinates.
type Point struct {
	X float64
	Y float64
}

// Panel is the plotting data of one cluster.
type Panel struct {
	Index   int
	Cluster cluster.Cluster
	Percent float64

	X      []float64
	Y      []float64
	Events []trace.Event
	CPUs   []uint32

	// Absolute is set when X holds wall-clock seconds.
	Absolute bool

	Roots     []Point
	Neighbors []Point
}

// NewPanel normalizes a cluster's samples. With a non-nil time range, x is
// mapped onto it; otherwise x is cycles relative to the earliest sample.
func NewPanel(idx int, g cluster.Group, total int, tr *timelog.Range) (*Panel, error) {
	n := len(g.Samples)
	p := &Panel{
		Index:   idx,
		Cluster: g.Cluster,
		Y:       make([]float64, n),
		Events:  make([]trace.Event, n),
		CPUs:    make([]uint32, n),
	}
	if total > 0 {
		p.Percent = 100 * float64(n) / float64(total)
	}

	cycles := make([]uint64, n)
	var vaMin uint64
	for i, s := range g.Samples {
		cycles[i] = s.Cycle
		if i == 0 || s.VA < vaMin {
			vaMin = s.VA
		}
		p.Events[i] = s.Event
		p.CPUs[i] = s.CPU
	}
	for i, s := range g.Samples {
		p.Y[i] = float64(s.VA-vaMin) / cluster.GiB
	}

	if tr != nil {
		xs, err := tr.Map(cycles)
		if err != nil {
			return nil, fmt.Errorf("cluster %d: %w", idx, err)
		}
		p.X = xs
		p.Absolute = true
	} else {
		p.X = timelog.Relative(cycles)
	}
	return p, nil
}

// Len returns the number of points.
func (p *Panel) Len() int { return len(p.X) }

// AddOverlay places the neighbor observations whose root lies in the
// cluster. Offsets are measured from the cluster start.
func (p *Panel) AddOverlay(obs []neighbor.Observation) {
	roots, nbrs := neighbor.Overlay(obs, p.Cluster.Start, p.Cluster.End)
	for _, r := range roots {
		p.Roots = append(p.Roots, p.overlayPoint(r))
	}
	for _, n := range nbrs {
		p.Neighbors = append(p.Neighbors, p.overlayPoint(n))
	}
}

func (p *Panel) overlayPoint(pt neighbor.Point) Point {
	return Point{X: pt.Timestamp, Y: float64(pt.Addr-p.Cluster.Start) / cluster.GiB}
}

// Title is the default chart title.
func (p *Panel) Title() string {
	return fmt.Sprintf("Alloc Cluster %d: 0x%x - 0x%x (%d accesses, %.2f%%)",
		p.Index, p.Cluster.Start, p.Cluster.End, p.Len(), p.Percent)
}

func (p *Panel) yMax() float64 {
	m := 0.0
	for _, y := range p.Y {
		m = max(m, y)
	}
	return m
}

func extent(vs []float64) (lo, hi float64) {
	if len(vs) == 0 {
		return -0.5, 0.5
	}
	lo, hi = vs[0], vs[0]
	for _, v := range vs[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	if lo == hi {
		lo -= 0.5
		hi += 0.5
	}
	return lo, hi
}
