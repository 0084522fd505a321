package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSample_RoundTrip(t *testing.T) {
	s := Sample{Cycle: 0x0102030405060708, VA: 0x7f00_dead_beef, IP: 0x401000, CPU: 17, Event: EventSlow}

	b := s.AppendTo(nil)
	require.Len(t, b, RecordSize)

	// Little-endian, packed.
	assert.Equal(t, byte(0x08), b[0])
	assert.Equal(t, byte(0x01), b[7])
	assert.Equal(t, byte(17), b[24])
	assert.Equal(t, byte(1), b[28])

	assert.Equal(t, s, DecodeSample(b))
}

func TestDecode_IgnoresPartialRecord(t *testing.T) {
	var buf []byte
	for i := range 3 {
		buf = Sample{Cycle: uint64(i), VA: uint64(i) * 64}.AppendTo(buf)
	}
	buf = append(buf, 0xaa, 0xbb, 0xcc)

	got := Decode(buf)
	require.Equal(t, 3, got.Len())
	assert.Equal(t, []uint64{0, 64, 128}, got.Addresses())
}

func TestSamples_CycleBounds(t *testing.T) {
	_, _, ok := Samples(nil).CycleBounds()
	assert.False(t, ok)

	lo, hi, ok := Samples{{Cycle: 50}, {Cycle: 10}, {Cycle: 90}}.CycleBounds()
	require.True(t, ok)
	assert.Equal(t, uint64(10), lo)
	assert.Equal(t, uint64(90), hi)
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "fast", EventFast.String())
	assert.Equal(t, "slow", EventSlow.String())
	assert.Equal(t, "event(7)", Event(7).String())
}
