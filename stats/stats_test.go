package stats

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpjones/PACT/render"
)

func TestPeriod(t *testing.T) {
	assert.Equal(t, 1, Period(nil))
	assert.Equal(t, 1, Period([]string{"a: [1]"}))
	assert.Equal(t, 3, Period([]string{"a: [1]", "\tb: [2]", "\tc: [3]", "a: [4]", "\tb: [5]"}))
	assert.Equal(t, 1, Period([]string{"a: [1]", "", "\tb: [2]"}))
}

func TestParse(t *testing.T) {
	lines := []string{
		"fast_free: [10] fast_used: [ 2.5 ]",
		"\tslow_free: [-3e2]",
		"fast_free: [+12]",
		"\tnoise: [abc] bad: []",
	}
	m := Parse(lines)

	assert.Equal(t, []string{"fast_free", "fast_used", "slow_free"}, m.Names())
	assert.Equal(t, []float64{0, 1}, m["fast_free"].X)
	assert.Equal(t, []float64{10, 12}, m["fast_free"].Y)
	assert.Equal(t, []float64{0.5}, m["slow_free"].X)
	assert.Equal(t, []float64{-300}, m["slow_free"].Y)
	assert.InDelta(t, 11.0, m["fast_free"].Mean(), 1e-12)
}

func TestSliceLines(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = string(rune('a' + i))
	}

	got, err := SliceLines(lines, 20, 50)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "d", "e"}, got)

	got, err = SliceLines(lines, -10, 500)
	require.NoError(t, err)
	assert.Len(t, got, 10)

	got, err = SliceLines(lines, 91, 92)
	require.NoError(t, err)
	assert.Equal(t, []string{"j"}, got)

	_, err = SliceLines(lines, 50, 50)
	require.ErrorIs(t, err, ErrInvalidRange)
	_, err = SliceLines(lines, math.NaN(), 50)
	require.ErrorIs(t, err, ErrInvalidRange)

	got, err = SliceLines(nil, 50, 10)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseReader(t *testing.T) {
	m, err := ParseReader(strings.NewReader("x: [1]\nx: [2]\nx: [3]\nx: [4]\n"), 50, 100)
	require.NoError(t, err)
	assert.Equal(t, []float64{3, 4}, m["x"].Y)
	assert.Equal(t, []float64{0, 1}, m["x"].X)

	m, err = ParseReader(strings.NewReader(""), 0, 100)
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestRender(t *testing.T) {
	a := Parse([]string{"used: [1] wrapped: [0]", "used: [2] wrapped: [5]", "used: [4] wrapped: [5]"})
	b := Parse([]string{"used: [3]", "used: [3]"})

	var buf bytes.Buffer
	res, err := Render(&buf, []Input{{"a.txt", a}, {"b.txt", b}}, ChartOptions{
		Primary:   []string{"used"},
		Secondary: []string{"wrapped"},
		Title:     "tier usage",
		Format:    render.FormatSVG,
	})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "<svg")
	assert.Equal(t, []Missing{{Label: "b.txt", Metric: "wrapped"}}, res.Skipped)
	require.Len(t, res.Means, 3)
	assert.Equal(t, Mean{Label: "a.txt", Metric: "used", Value: 7.0 / 3}, res.Means[0])
}

func TestRender_SinglePoint(t *testing.T) {
	var buf bytes.Buffer
	_, err := Render(&buf, []Input{{"a", Parse([]string{"v: [7]"})}}, ChartOptions{
		Primary: []string{"v"},
		Format:  render.FormatPNG,
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("\x89PNG"), buf.Bytes()[:4])
}

func TestRender_Errors(t *testing.T) {
	in := []Input{{"a", Parse([]string{"v: [7]"})}}

	_, err := Render(&bytes.Buffer{}, in, ChartOptions{Primary: []string{"missing"}, Format: render.FormatPNG})
	require.ErrorIs(t, err, ErrNothingPlotted)

	_, err = Render(&bytes.Buffer{}, in, ChartOptions{Format: render.FormatPNG})
	require.Error(t, err)

	_, err = Render(&bytes.Buffer{}, in, ChartOptions{Primary: []string{"v"}, Format: render.FormatJPEG})
	require.ErrorIs(t, err, render.ErrUnsupportedFormat)
}
