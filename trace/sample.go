package trace

import (
	"encoding/binary"
	"fmt"
)

// RecordSize is the encoded size of one Sample.
const RecordSize = 29

// Event is the memory tier that served a sampled access.
type Event uint8

const (
	EventFast Event = 0
	EventSlow Event = 1
)

func (e Event) String() string {
	switch e {
	case EventFast:
		return "fast"
	case EventSlow:
		return "slow"
	default:
		return fmt.Sprintf("event(%d)", uint8(e))
	}
}

// Sample is one decoded trace record.
type Sample struct {
	Cycle uint64
	VA    uint64
	IP    uint64
	CPU   uint32
	Event Event
}

// DecodeSample decodes the record at the start of b.
// b must hold at least RecordSize bytes.
func DecodeSample(b []byte) Sample {
	_ = b[RecordSize-1]
	return Sample{
		Cycle: binary.LittleEndian.Uint64(b[0:]),
		VA:    binary.LittleEndian.Uint64(b[8:]),
		IP:    binary.LittleEndian.Uint64(b[16:]),
		CPU:   binary.LittleEndian.Uint32(b[24:]),
		Event: Event(b[28]),
	}
}

// AppendTo appends the encoded record to b.
func (s Sample) AppendTo(b []byte) []byte {
	b = binary.LittleEndian.AppendUint64(b, s.Cycle)
	b = binary.LittleEndian.AppendUint64(b, s.VA)
	b = binary.LittleEndian.AppendUint64(b, s.IP)
	b = binary.LittleEndian.AppendUint32(b, s.CPU)
	return append(b, byte(s.Event))
}

// Samples is a decoded record slice in file order.
type Samples []Sample

// Decode decodes every complete record in data. A trailing partial record
// is ignored.
func Decode(data []byte) Samples {
	n := len(data) / RecordSize
	out := make(Samples, n)
	for i := range out {
		out[i] = DecodeSample(data[i*RecordSize:])
	}
	return out
}

// Addresses returns the virtual address of every sample.
func (s Samples) Addresses() []uint64 {
	out := make([]uint64, len(s))
	for i := range s {
		out[i] = s[i].VA
	}
	return out
}

// CycleBounds returns the smallest and largest cycle. ok is false for an
// empty slice.
func (s Samples) CycleBounds() (lo, hi uint64, ok bool) {
	if len(s) == 0 {
		return 0, 0, false
	}
	lo, hi = s[0].Cycle, s[0].Cycle
	for _, x := range s[1:] {
		lo = min(lo, x.Cycle)
		hi = max(hi, x.Cycle)
	}
	return lo, hi, true
}

// Len returns the number of samples.
func (s Samples) Len() int { return len(s) }
