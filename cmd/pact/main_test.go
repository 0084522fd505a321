package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lpjones/PACT"
	"github.com/lpjones/PACT/cluster"
	"github.com/lpjones/PACT/codec"
	"github.com/lpjones/PACT/neighbor"
	"github.com/lpjones/PACT/testutil"
)

const base = uint64(0x7f0000000000)

func writeRun(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	samples := testutil.NewRNG(7).ClusteredTrace(
		testutil.Region{Base: base, Span: 16 << 20, Samples: 700, SlowRatio: 0.5},
		testutil.Region{Base: base + 4*cluster.GiB, Span: 16 << 20, Samples: 600},
		testutil.Region{Base: base + 12*cluster.GiB, Span: 1 << 20, Samples: 20},
	)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "samples.bin"), testutil.EncodeTrace(samples), 0o644))
	nbrs := testutil.NeighborLog([]neighbor.Observation{
		{Timestamp: 12, Root: base + 0x100, Neighbors: []uint64{base + 0x200}},
	})
	require.NoError(t, os.WriteFile(filepath.Join(dir, "neighbors.txt"), []byte(nbrs), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "debuglog.txt"), []byte(testutil.DebugLog(10, 20, 5)), 0o644))
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--settings", ""}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestPlot_Heatmap(t *testing.T) {
	dir := writeRun(t)
	out := filepath.Join(dir, "plots", "run.png")
	report := filepath.Join(dir, "report.json")

	stdout, _, err := execute(t, "", "plot",
		filepath.Join(dir, "samples.bin"), filepath.Join(dir, "neighbors.txt"),
		"--output", out, "--fast", "--report", report, "--jobs", "2")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Found 2 allocation clusters (gap ≥ 2 GB)")
	assert.Contains(t, stdout, "start=10.0, end=20.0")
	assert.Contains(t, stdout, "Saved cluster heatmap to "+filepath.Join(dir, "plots", "run-0.png"))
	assert.Contains(t, stdout, "Saved cluster heatmap to "+filepath.Join(dir, "plots", "run-1.png"))
	assert.FileExists(t, filepath.Join(dir, "plots", "run-0.png"))
	assert.FileExists(t, filepath.Join(dir, "plots", "run-1.png"))
	assert.NoFileExists(t, filepath.Join(dir, "plots", "run-2.png"))

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	var rep pact.Report
	require.NoError(t, codec.Default.Unmarshal(data, &rep))
	assert.Equal(t, 3, rep.Found)
	assert.Len(t, rep.Clusters, 2)
}

func TestPlot_ScatterCPU(t *testing.T) {
	dir := writeRun(t)
	stdout, _, err := execute(t, "", "plot",
		filepath.Join(dir, "samples.bin"), filepath.Join(dir, "neighbors.txt"),
		"-o", filepath.Join(dir, "s.svg"), "-c", "cpu", "--min-samples", "10")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Saved cluster scatter plot to "+filepath.Join(dir, "s-2.svg"))
	assert.FileExists(t, filepath.Join(dir, "s-2.svg"))
}

func TestPlot_Errors(t *testing.T) {
	dir := writeRun(t)
	trace := filepath.Join(dir, "samples.bin")
	nbrs := filepath.Join(dir, "neighbors.txt")

	_, _, err := execute(t, "", "plot", trace, nbrs)
	require.Error(t, err, "missing --output")

	_, _, err = execute(t, "", "plot", trace, nbrs, "-o", "x.png", "-c", "socket")
	require.ErrorIs(t, err, pact.ErrUnknownColorBy)

	_, _, err = execute(t, "", "plot", trace, nbrs, "-o", "x.png", "--start-percent", "80", "--end-percent", "20")
	var pe *pact.ErrInvalidPercent
	require.ErrorAs(t, err, &pe)

	_, _, err = execute(t, "", "plot", trace, "s3://bucket/neighbors.txt", "-o", "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "same store")

	_, _, err = execute(t, "", "plot", filepath.Join(dir, "missing.bin"), nbrs, "-o", "x.png")
	require.ErrorIs(t, err, pact.ErrNotFound)
}

func TestClusters(t *testing.T) {
	dir := writeRun(t)
	stdout, _, err := execute(t, "", "clusters", filepath.Join(dir, "samples.bin"), "--gap-gb", "1")
	require.NoError(t, err)

	assert.Contains(t, stdout, "Found 2 allocation clusters (gap ≥ 1 GB)")
	assert.Contains(t, stdout, "Cluster 0: 700 (53.03%)")
	assert.Contains(t, stdout, "Total in clusters: 98.48%")
}

func TestClusters_SettingsFile(t *testing.T) {
	dir := writeRun(t)
	settings := filepath.Join(dir, "pact.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("min_samples: 650\n"), 0o644))

	var stdout bytes.Buffer
	cmd := newRootCmd(&stdout, &bytes.Buffer{})
	cmd.SetArgs([]string{"--settings", settings, "clusters", filepath.Join(dir, "samples.bin")})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, stdout.String(), "Cluster 0: 700 (53.03%)")
	assert.NotContains(t, stdout.String(), "Cluster 1: 600")

	cmd = newRootCmd(&bytes.Buffer{}, &bytes.Buffer{})
	cmd.SetArgs([]string{"--settings", filepath.Join(dir, "nope.yaml"), "clusters", filepath.Join(dir, "samples.bin")})
	require.Error(t, cmd.Execute())
}

func TestStats(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	require.NoError(t, os.WriteFile(a, []byte("fast_free: [10]\nfast_free: [20] wrapped: [1]\n"), 0o644))
	require.NoError(t, os.WriteFile(b, []byte("fast_free: [4]\n"), 0o644))
	out := filepath.Join(dir, "stats.png")

	stdout, stderr, err := execute(t, "", "stats", "-f", a, "-f", b, "--g1", "fast_free", "--g2", "wrapped", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "fast_free 15\n")
	assert.Contains(t, stdout, "fast_free 4\n")
	assert.Contains(t, stdout, "wrapped 1\n")
	assert.Contains(t, stdout, "Saved plot to "+out)
	assert.Contains(t, stderr, "Warning: metric 'wrapped' not found in file 'b.txt'; skipping.")
	assert.FileExists(t, out)
}

func TestStats_Stdin(t *testing.T) {
	out := filepath.Join(t.TempDir(), "s.svg")
	stdout, _, err := execute(t, "x: [1]\nx: [3]\n", "stats", "--g1", "x", "-o", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "x 2\n")
	assert.FileExists(t, out)

	_, _, err = execute(t, "x: [1]\n", "stats", "--g1", "y", "-o", out)
	require.Error(t, err)

	_, _, err = execute(t, "x: [1]\n", "stats", "-f", "a", "-f", "b", "--labels", "one", "--g1", "x", "-o", out)
	require.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	_, err := newLogger(&bytes.Buffer{}, "debug", "json")
	require.NoError(t, err)
	_, err = newLogger(&bytes.Buffer{}, "loud", "text")
	require.Error(t, err)
	_, err = newLogger(&bytes.Buffer{}, "info", "xml")
	require.Error(t, err)
}
