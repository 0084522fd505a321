package cluster

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpjones/PACT/trace"
)

func TestInfer_Example(t *testing.T) {
	got := Infer([]uint64{3 * GiB, 0, 1, 3*GiB + 1, 1}, DefaultGapThreshold)
	assert.Equal(t, []Cluster{{0, 1}, {3 * GiB, 3*GiB + 1}}, got)
}

func TestInfer_CutsAtExactGap(t *testing.T) {
	got := Infer([]uint64{0, DefaultGapThreshold}, DefaultGapThreshold)
	assert.Len(t, got, 2)

	got = Infer([]uint64{0, DefaultGapThreshold - 1}, DefaultGapThreshold)
	assert.Equal(t, []Cluster{{0, DefaultGapThreshold - 1}}, got)
}

func TestInfer_Empty(t *testing.T) {
	assert.Nil(t, Infer(nil, DefaultGapThreshold))
	assert.Equal(t, []Cluster{{42, 42}}, Infer([]uint64{42}, DefaultGapThreshold))
}

func TestInfer_GapInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	const gap = 1 << 20

	addrs := make([]uint64, 5000)
	for i := range addrs {
		base := uint64(rng.IntN(8)) * 16 * gap
		addrs[i] = base + rng.Uint64N(4*gap)
	}

	clusters := Infer(addrs, gap)
	require.NotEmpty(t, clusters)
	for i := 1; i < len(clusters); i++ {
		assert.GreaterOrEqual(t, clusters[i].Start-clusters[i-1].End, uint64(gap))
	}
	for _, a := range addrs {
		n := 0
		for _, c := range clusters {
			if c.Contains(a) {
				n++
			}
		}
		assert.Equal(t, 1, n, "address 0x%x", a)
	}
}

func TestAssign(t *testing.T) {
	clusters := []Cluster{{100, 200}, {1000, 1100}}
	samples := trace.Samples{
		{VA: 50},   // before all
		{VA: 100},  // first start
		{VA: 150},  // inside first
		{VA: 500},  // between
		{VA: 1100}, // second end
		{VA: 5000}, // after all
		{VA: 200},  // first end
	}

	groups := Assign(samples, clusters)
	require.Len(t, groups, 2)
	assert.Equal(t, []uint64{100, 150, 200}, groups[0].Samples.Addresses())
	assert.Equal(t, []uint64{1100}, groups[1].Samples.Addresses())
	assert.Equal(t, clusters[1], groups[1].Cluster)

	assert.Empty(t, Assign(samples, nil))
}

func TestFilter(t *testing.T) {
	groups := []Group{
		{Cluster: Cluster{0, 1}, Samples: make(trace.Samples, 3)},
		{Cluster: Cluster{10, 11}, Samples: make(trace.Samples, 5)},
		{Cluster: Cluster{20, 21}, Samples: nil},
	}
	kept := Filter(groups, 4)
	require.Len(t, kept, 1)
	assert.Equal(t, Cluster{10, 11}, kept[0].Cluster)

	assert.Len(t, Filter(groups, 0), 3)
}

func TestCoverage(t *testing.T) {
	groups := []Group{
		{Samples: make(trace.Samples, 25)},
		{Samples: make(trace.Samples, 50)},
	}
	shares, covered := Coverage(groups, 100)
	assert.Equal(t, []Share{{25, 25}, {50, 50}}, shares)
	assert.InDelta(t, 75.0, covered, 1e-9)

	_, covered = Coverage(nil, 0)
	assert.Zero(t, covered)
}

func TestCluster_String(t *testing.T) {
	c := Cluster{Start: 0x7f00, End: 0x7fff}
	assert.Equal(t, "0x7f00 - 0x7fff", c.String())
	assert.Equal(t, uint64(0xff), c.Span())
}
