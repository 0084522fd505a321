package pact

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lpjones/PACT/blobstore"
	"github.com/lpjones/PACT/catalog"
	"github.com/lpjones/PACT/cluster"
	"github.com/lpjones/PACT/codec"
	"github.com/lpjones/PACT/render"
	"github.com/lpjones/PACT/resource"
)

func TestApplyOptions_Defaults(t *testing.T) {
	o := applyOptions(nil)

	assert.NotNil(t, o.logger)
	assert.IsType(t, NoopMetricsCollector{}, o.metricsCollector)
	assert.Equal(t, codec.Default, o.codec)
	assert.Equal(t, cluster.DefaultGapThreshold, o.gapThreshold)
	assert.Equal(t, cluster.DefaultMinSamples, o.minSamples)
	assert.Equal(t, 0.0, o.startPercent)
	assert.Equal(t, 100.0, o.endPercent)
	assert.Equal(t, render.ColorByEvent, o.colorBy)
	assert.Equal(t, render.ModeHeatmap, o.mode)
	assert.Equal(t, render.DefaultBins, o.bins)
	assert.Equal(t, 1, o.resource.Workers())
	assert.IsType(t, catalog.Nop{}, o.catalog)
	assert.IsType(t, &blobstore.LocalStore{}, o.inputStore)
	assert.Same(t, o.inputStore, o.outputStore)
}

func TestApplyOptions_Overrides(t *testing.T) {
	in := blobstore.NewMemoryStore()
	out := blobstore.NewMemoryStore()
	rc := resource.NewController(resource.Config{MaxWorkers: 3})

	o := applyOptions([]Option{
		WithLogger(nil),
		WithMetricsCollector(nil),
		WithCodec(nil),
		WithGapThreshold(0),
		WithMinSamples(-5),
		WithPercentRange(10, 20),
		WithColorBy(render.ColorByCPU),
		WithMode(render.ModeScatter),
		WithBins(64),
		WithTitle("run"),
		WithSize(800, 400),
		WithWorkers(8),
		WithResourceController(rc),
		WithStdout(nil),
		WithInputStore(in),
		WithOutputStore(out),
		nil,
	})

	assert.NotNil(t, o.logger)
	assert.IsType(t, NoopMetricsCollector{}, o.metricsCollector)
	assert.Equal(t, codec.Default, o.codec)
	assert.Equal(t, cluster.DefaultGapThreshold, o.gapThreshold)
	assert.Equal(t, 0, o.minSamples)
	assert.Equal(t, 10.0, o.startPercent)
	assert.Equal(t, render.ColorByCPU, o.colorBy)
	assert.Equal(t, render.ModeScatter, o.mode)
	assert.Equal(t, 64, o.bins)
	assert.Equal(t, "run", o.title)
	assert.Equal(t, 800, o.width)
	assert.Same(t, rc, o.resource)
	assert.Equal(t, 3, o.resource.Workers())
	assert.Equal(t, io.Discard, o.stdout)
	assert.Same(t, in, o.inputStore)
	assert.Same(t, out, o.outputStore)
}
