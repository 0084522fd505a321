package pact

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePercent(t *testing.T) {
	tests := []struct {
		start, end float64
		ok         bool
	}{
		{0, 100, true},
		{25, 75, true},
		{50, 50, true},
		{-1, 50, false},
		{10, 101, false},
		{60, 40, false},
	}
	for _, tt := range tests {
		err := validatePercent(tt.start, tt.end)
		if tt.ok {
			assert.NoError(t, err)
			continue
		}
		var pe *ErrInvalidPercent
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, tt.start, pe.Start)
		assert.Equal(t, tt.end, pe.End)
	}
}

func TestValidatePercent_NaN(t *testing.T) {
	var pe *ErrInvalidPercent
	require.ErrorAs(t, validatePercent(math.NaN(), 100), &pe)
	assert.True(t, math.IsNaN(pe.Start))
	require.ErrorAs(t, validatePercent(0, math.NaN()), &pe)
	assert.True(t, math.IsNaN(pe.End))
}

func TestErrClusterRender_Unwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := error(&ErrClusterRender{Index: 2, Name: "out-2.png", cause: cause})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "cluster 2 (out-2.png): disk full", err.Error())
}
