package render

import (
	"fmt"
	"io"
)

// Renderer draws panels with fixed options.
type Renderer struct {
	opts Options
}

// New validates opts and returns a Renderer.
func New(opts Options) (*Renderer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Renderer{opts: opts}, nil
}

// Options returns the renderer configuration.
func (r *Renderer) Options() Options { return r.opts }

// Render writes one chart for p.
func (r *Renderer) Render(w io.Writer, p *Panel) error {
	if p.Len() == 0 {
		return fmt.Errorf("render: cluster %d has no samples", p.Index)
	}
	if r.opts.Mode == ModeScatter {
		return r.renderScatter(w, p)
	}
	return r.renderHeatmap(w, p)
}

func (r *Renderer) title(p *Panel) string {
	if r.opts.Title != "" {
		return r.opts.Title
	}
	return p.Title()
}

func (r *Renderer) xFormatter(p *Panel) func(float64) string {
	if p.Absolute {
		return formatFixed(0)
	}
	return formatCycles
}
