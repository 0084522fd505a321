package pact

import (
	"fmt"
	"io"

	"github.com/lpjones/PACT/cluster"
)

// Report summarizes one run.
type Report struct {
	Trace        string  `json:"trace"`
	TotalRecords int64   `json:"total_records"`
	Selected     int     `json:"selected"`
	StartPercent float64 `json:"start_percent"`
	EndPercent   float64 `json:"end_percent"`
	Compression  string  `json:"compression"`

	GapThreshold uint64 `json:"gap_threshold"`
	MinSamples   int    `json:"min_samples"`
	Found        int    `json:"clusters_found"`

	TimeRange *TimeRange      `json:"time_range,omitempty"`
	Clusters  []ClusterReport `json:"clusters"`
	Coverage  float64         `json:"coverage_percent"`

	CatalogVersion uint64 `json:"catalog_version,omitempty"`
}

// TimeRange is the wall-clock span used for the x axis.
type TimeRange struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// ClusterReport describes one retained cluster.
type ClusterReport struct {
	Index   int     `json:"index"`
	Start   uint64  `json:"start"`
	End     uint64  `json:"end"`
	SizeGB  float64 `json:"size_gb"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
	Output  string  `json:"output,omitempty"`
}

// Outputs returns the written chart names in cluster order.
func (r *Report) Outputs() []string {
	out := make([]string, 0, len(r.Clusters))
	for _, c := range r.Clusters {
		if c.Output != "" {
			out = append(out, c.Output)
		}
	}
	return out
}

func printClusters(w io.Writer, groups []cluster.Group, gap uint64) {
	fmt.Fprintf(w, "Found %d allocation clusters (gap ≥ %g GB)\n", len(groups), float64(gap)/cluster.GiB)
	for i, g := range groups {
		fmt.Fprintf(w, "Cluster %d: %.4f GB   0x%x - 0x%x\n",
			i, float64(g.Cluster.Span())/cluster.GiB, g.Cluster.Start, g.Cluster.End)
	}
}

func printCoverage(w io.Writer, shares []cluster.Share, covered float64) {
	for i, s := range shares {
		fmt.Fprintf(w, "Cluster %d: %d (%.2f%%)\n", i, s.Count, s.Percent)
	}
	fmt.Fprintf(w, "Total in clusters: %.2f%%\n", covered)
}
