package timelog

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	tests := []struct {
		name string
		log  string
		want Range
	}{
		{"simple", "[10.0] start\n[11.5] mid\n[20.25] end\n", Range{10, 20.25}},
		{"no trailing newline", "[1] a\n[2] b", Range{1, 2}},
		{"trailing blank lines", "[1] a\n[5] b\n\n  \n", Range{1, 5}},
		{"single line", "[3.5] only\n", Range{3.5, 3.5}},
		{"long tail", "[1] a\n[9] " + strings.Repeat("x", 3*tailChunk) + "\n", Range{1, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRange(strings.NewReader(tt.log))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRange_Errors(t *testing.T) {
	_, err := ParseRange(strings.NewReader("no stamp\n[2] b\n"))
	require.ErrorIs(t, err, ErrNoTimestamp)

	_, err = ParseRange(strings.NewReader("[1] a\nno stamp\n"))
	require.ErrorIs(t, err, ErrNoTimestamp)

	_, err = ParseRange(strings.NewReader(""))
	require.ErrorIs(t, err, ErrNoTimestamp)
}

func TestRange_Scale(t *testing.T) {
	r := Range{Start: 100, End: 200}
	assert.Equal(t, Range{Start: 125, End: 150}, r.Scale(25, 50))
	assert.Equal(t, r, r.Scale(0, 100))
}

func TestRange_Map(t *testing.T) {
	r := Range{Start: 10, End: 20}

	got, err := r.Map([]uint64{1000, 1500, 2000})
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{10, 15, 20}, got, 1e-9)

	_, err = r.Map([]uint64{7, 7, 7})
	require.ErrorIs(t, err, ErrDegenerate)

	got, err = r.Map(nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRelative(t *testing.T) {
	assert.Equal(t, []float64{5, 0, 10}, Relative([]uint64{105, 100, 110}))
	assert.Nil(t, Relative(nil))
}
