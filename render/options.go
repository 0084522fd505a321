package render

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned for output extensions the selected
	// mode cannot produce.
	ErrUnsupportedFormat = errors.New("render: unsupported output format")
	// ErrUnknownColorBy is returned for an unrecognized color scheme.
	ErrUnknownColorBy = errors.New("render: unknown color-by option")
)

// ColorBy selects how points are categorized.
type ColorBy string

const (
	ColorByEvent ColorBy = "event"
	ColorByCPU   ColorBy = "cpu"
)

// ParseColorBy validates a color scheme name.
func ParseColorBy(s string) (ColorBy, error) {
	switch c := ColorBy(strings.ToLower(s)); c {
	case ColorByEvent, ColorByCPU:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownColorBy, s)
	}
}

// Mode selects the chart type.
type Mode string

const (
	ModeHeatmap Mode = "heatmap"
	ModeScatter Mode = "scatter"
)

// Format is an image encoding.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatSVG  Format = "svg"
)

// Ext returns the canonical file extension without the dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return "jpg"
	}
	return string(f)
}

// FormatFromName derives the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	switch ext {
	case "png":
		return FormatPNG, nil
	case "jpg", "jpeg":
		return FormatJPEG, nil
	case "svg":
		return FormatSVG, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// OutputName returns "<stem>-<idx>.<ext>" for the output path base, keeping
// base's directory and extension.
func OutputName(base string, idx int) string {
	ext := filepath.Ext(base)
	return fmt.Sprintf("%s-%d%s", strings.TrimSuffix(base, ext), idx, ext)
}

// Options configures a Renderer.
type Options struct {
	ColorBy ColorBy
	Mode    Mode
	Format  Format
	// Bins is the heatmap resolution on each axis.
	Bins int
	// Title replaces the generated per-cluster title when set.
	Title  string
	Width  int
	Height int
}

// DefaultBins is the heatmap resolution.
const DefaultBins = 300

// DefaultOptions returns event-colored PNG heatmaps at 1000x600.
func DefaultOptions() Options {
	return Options{
		ColorBy: ColorByEvent,
		Mode:    ModeHeatmap,
		Format:  FormatPNG,
		Bins:    DefaultBins,
		Width:   1000,
		Height:  600,
	}
}

func (o Options) validate() error {
	if _, err := ParseColorBy(string(o.ColorBy)); err != nil {
		return err
	}
	switch o.Mode {
	case ModeHeatmap:
		if o.Format == FormatSVG {
			return fmt.Errorf("%w: heatmap cannot be written as svg", ErrUnsupportedFormat)
		}
	case ModeScatter:
	default:
		return fmt.Errorf("render: unknown mode %q", o.Mode)
	}
	switch o.Format {
	case FormatPNG, FormatJPEG, FormatSVG:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, o.Format)
	}
	if o.Bins <= 0 {
		return fmt.Errorf("render: bins must be positive, got %d", o.Bins)
	}
	if o.Width <= 0 || o.Height <= 0 {
		return fmt.Errorf("render: invalid size %dx%d", o.Width, o.Height)
	}
	return nil
}
