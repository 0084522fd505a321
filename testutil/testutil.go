package testutil

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/lpjones/PACT/neighbor"
	"github.com/lpjones/PACT/trace"
)

// RNG is a seeded, mutex-guarded random source.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset restarts the sequence from the initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Uint64n returns a pseudo-random number in [0,n).
func (r *RNG) Uint64n(n uint64) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uint64nLocked(n)
}

func (r *RNG) uint64nLocked(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	return r.rand.Uint64() % n
}

// Region describes one synthetic allocation.
type Region struct {
	Base    uint64
	Span    uint64
	Samples int
	// SlowRatio is the share of samples served by the slow tier.
	SlowRatio float64
}

// TraceConfig tunes ClusteredTraceWith.
type TraceConfig struct {
	StartCycle uint64
	CycleStep  uint64
	CPUs       int
}

// DefaultTraceConfig starts at cycle 1e6, 1000 cycles apart, on 4 CPUs.
func DefaultTraceConfig() TraceConfig {
	return TraceConfig{StartCycle: 1_000_000, CycleStep: 1000, CPUs: 4}
}

// ClusteredTrace generates samples inside each region, interleaved and
// ordered by cycle, using DefaultTraceConfig.
func (r *RNG) ClusteredTrace(regions ...Region) trace.Samples {
	return r.ClusteredTraceWith(DefaultTraceConfig(), regions...)
}

// ClusteredTraceWith is ClusteredTrace with explicit timing and CPU count.
func (r *RNG) ClusteredTraceWith(cfg TraceConfig, regions ...Region) trace.Samples {
	r.mu.Lock()
	defer r.mu.Unlock()

	cpus := max(cfg.CPUs, 1)
	var out trace.Samples
	for _, reg := range regions {
		for range reg.Samples {
			ev := trace.EventFast
			if r.rand.Float64() < reg.SlowRatio {
				ev = trace.EventSlow
			}
			out = append(out, trace.Sample{
				VA:    reg.Base + r.uint64nLocked(reg.Span+1),
				IP:    0x400000 + r.uint64nLocked(0x1000),
				CPU:   uint32(r.rand.Intn(cpus)),
				Event: ev,
			})
		}
	}
	r.rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	for i := range out {
		out[i].Cycle = cfg.StartCycle + uint64(i)*cfg.CycleStep
	}
	return out
}

// EncodeTrace returns the on-disk encoding of samples.
func EncodeTrace(samples trace.Samples) []byte {
	buf := make([]byte, 0, len(samples)*trace.RecordSize)
	for _, s := range samples {
		buf = s.AppendTo(buf)
	}
	return buf
}

// NeighborLog formats observations the way the sampler logs them.
func NeighborLog(obs []neighbor.Observation) string {
	var b strings.Builder
	for _, o := range obs {
		fmt.Fprintf(&b, "[%g] 0x%x Neighbors: ", o.Timestamp, o.Root)
		for _, n := range o.Neighbors {
			fmt.Fprintf(&b, "0x%x, ", n)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// DebugLog returns n timestamped lines spanning [start, end].
func DebugLog(start, end float64, n int) string {
	n = max(n, 2)
	var b strings.Builder
	for i := range n {
		ts := start + (end-start)*float64(i)/float64(n-1)
		fmt.Fprintf(&b, "[%f] pebs: tick %d\n", ts, i)
	}
	return b.String()
}

// SortedAddresses returns the distinct addresses of samples in order.
func SortedAddresses(samples trace.Samples) []uint64 {
	seen := make(map[uint64]struct{}, len(samples))
	var out []uint64
	for _, s := range samples {
		if _, ok := seen[s.VA]; !ok {
			seen[s.VA] = struct{}{}
			out = append(out, s.VA)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
