package pact

import (
	"io"
	"log/slog"
	"os"

	"github.com/lpjones/PACT/blobstore"
	"github.com/lpjones/PACT/catalog"
	"github.com/lpjones/PACT/cluster"
	"github.com/lpjones/PACT/codec"
	"github.com/lpjones/PACT/render"
	"github.com/lpjones/PACT/resource"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	codec            codec.Codec

	gapThreshold uint64
	minSamples   int
	startPercent float64
	endPercent   float64

	colorBy render.ColorBy
	mode    render.Mode
	bins    int
	title   string
	width   int
	height  int

	workers  int
	resource *resource.Controller

	stdout      io.Writer
	inputStore  blobstore.BlobStore
	outputStore blobstore.BlobStore
	catalog     catalog.Recorder
}

// Option configures an Analyzer.
type Option func(*options)

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := pact.NewJSONLogger(slog.LevelInfo)
//	a := pact.New(pact.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
//	metrics := &pact.BasicMetricsCollector{}
//	a := pact.New(pact.WithMetricsCollector(metrics))
//	// ... run ...
//	fmt.Println(metrics.GetStats().RecordsParsed)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCodec sets the report codec. If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithGapThreshold sets the address gap, in bytes, that separates clusters.
func WithGapThreshold(bytes uint64) Option {
	return func(o *options) {
		if bytes > 0 {
			o.gapThreshold = bytes
		}
	}
}

// WithMinSamples drops clusters with fewer samples.
func WithMinSamples(n int) Option {
	return func(o *options) {
		o.minSamples = max(n, 0)
	}
}

// WithPercentRange analyzes only the [start, end) percent of the trace.
// The same share of the debug log's time span is used for the x axis.
func WithPercentRange(start, end float64) Option {
	return func(o *options) {
		o.startPercent = start
		o.endPercent = end
	}
}

// WithColorBy selects event or CPU coloring.
func WithColorBy(c render.ColorBy) Option {
	return func(o *options) {
		o.colorBy = c
	}
}

// WithMode selects heatmap or scatter charts.
func WithMode(m render.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithBins sets the heatmap resolution per axis.
func WithBins(n int) Option {
	return func(o *options) {
		o.bins = n
	}
}

// WithTitle replaces the generated chart titles.
func WithTitle(title string) Option {
	return func(o *options) {
		o.title = title
	}
}

// WithSize sets the chart size in pixels.
func WithSize(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithWorkers renders up to n clusters concurrently. Ignored when a
// resource controller is set.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithResourceController shares worker, memory and upload limits across
// analyzers.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.resource = rc
	}
}

// WithStdout sets where the run summary is printed.
func WithStdout(w io.Writer) Option {
	return func(o *options) {
		if w == nil {
			w = io.Discard
		}
		o.stdout = w
	}
}

// WithInputStore sets the store traces and logs are read from.
func WithInputStore(s blobstore.BlobStore) Option {
	return func(o *options) {
		o.inputStore = s
	}
}

// WithOutputStore sets the store charts are written to.
func WithOutputStore(s blobstore.BlobStore) Option {
	return func(o *options) {
		o.outputStore = s
	}
}

// WithCatalog records every successful run.
func WithCatalog(r catalog.Recorder) Option {
	return func(o *options) {
		o.catalog = r
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		codec:            codec.Default,
		gapThreshold:     cluster.DefaultGapThreshold,
		minSamples:       cluster.DefaultMinSamples,
		startPercent:     0,
		endPercent:       100,
		colorBy:          render.ColorByEvent,
		mode:             render.ModeHeatmap,
		bins:             render.DefaultBins,
		workers:          1,
		stdout:           os.Stdout,
		catalog:          catalog.Nop{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.inputStore == nil {
		o.inputStore = blobstore.NewLocalStore("")
	}
	if o.outputStore == nil {
		o.outputStore = o.inputStore
	}
	if o.resource == nil {
		o.resource = resource.NewController(resource.Config{MaxWorkers: int64(o.workers)})
	}
	return o
}
