// Package cluster infers allocation clusters from sampled virtual addresses.
//
// Addresses are deduplicated and sorted, then split wherever two successive
// unique addresses are at least the gap threshold apart. Each resulting run
// is an inclusive [Start, End] range.
package cluster

import (
	"fmt"
	"sort"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/lpjones/PACT/trace"
)

const (
	// GiB is 2^30 bytes.
	GiB = 1 << 30
	// DefaultGapThreshold separates clusters.
	DefaultGapThreshold uint64 = 2 * GiB
	// DefaultMinSamples is the smallest cluster worth plotting.
	DefaultMinSamples = 500
)

// Cluster is an inclusive virtual address range.
type Cluster struct {
	Start uint64
	End   uint64
}

// Contains reports whether va lies in the cluster.
func (c Cluster) Contains(va uint64) bool { return c.Start <= va && va <= c.End }

// Span returns End - Start in bytes.
func (c Cluster) Span() uint64 { return c.End - c.Start }

func (c Cluster) String() string { return fmt.Sprintf("0x%x - 0x%x", c.Start, c.End) }

// Infer splits addrs into clusters separated by at least gap bytes.
// The result is sorted by Start and empty for empty input.
func Infer(addrs []uint64, gap uint64) []Cluster {
	if len(addrs) == 0 {
		return nil
	}

	bm := roaring64.New()
	bm.AddMany(addrs)

	it := bm.Iterator()
	first := it.Next()
	cur := Cluster{Start: first, End: first}

	var out []Cluster
	for it.HasNext() {
		va := it.Next()
		if va-cur.End >= gap {
			out = append(out, cur)
			cur.Start = va
		}
		cur.End = va
	}
	return append(out, cur)
}

// Group is a cluster together with the samples that fall inside it.
type Group struct {
	Cluster Cluster
	Samples trace.Samples
}

// Assign distributes samples over clusters, which must be sorted and
// disjoint. A sample goes to the last cluster whose Start is not above its
// address, provided the address is not past that cluster's End. Samples
// outside every cluster are dropped. One group is returned per cluster,
// in cluster order; sample order is preserved within a group.
func Assign(samples trace.Samples, clusters []Cluster) []Group {
	groups := make([]Group, len(clusters))
	for i, c := range clusters {
		groups[i].Cluster = c
	}
	if len(clusters) == 0 {
		return groups
	}

	for _, s := range samples {
		i := sort.Search(len(clusters), func(i int) bool { return clusters[i].Start > s.VA }) - 1
		if i < 0 || s.VA > clusters[i].End {
			continue
		}
		groups[i].Samples = append(groups[i].Samples, s)
	}
	return groups
}

// Filter keeps the groups holding at least minSamples samples.
func Filter(groups []Group, minSamples int) []Group {
	out := make([]Group, 0, len(groups))
	for _, g := range groups {
		if len(g.Samples) >= minSamples {
			out = append(out, g)
		}
	}
	return out
}

// Share is one group's portion of the selected samples.
type Share struct {
	Count   int
	Percent float64
}

// Coverage returns each group's share of total and the combined share.
func Coverage(groups []Group, total int) (shares []Share, covered float64) {
	shares = make([]Share, len(groups))
	n := 0
	for i, g := range groups {
		shares[i] = Share{Count: len(g.Samples), Percent: percent(len(g.Samples), total)}
		n += len(g.Samples)
	}
	return shares, percent(n, total)
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
