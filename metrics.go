package pact

import (
	"sync/atomic"
	"time"
)

// MetricsCollector receives timings of each analysis stage.
// Implement this interface to integrate with monitoring systems.
type MetricsCollector interface {
	// RecordParse is called after the trace is decoded.
	RecordParse(records int, duration time.Duration, err error)

	// RecordCluster is called after clusters are inferred and filtered.
	RecordCluster(found, kept int, duration time.Duration)

	// RecordRender is called after each chart is drawn.
	RecordRender(duration time.Duration, err error)

	// RecordUpload is called after each chart is written to the output store.
	RecordUpload(bytes int64, duration time.Duration, err error)
}

// NoopMetricsCollector discards every measurement.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordParse(int, time.Duration, error)    {}
func (NoopMetricsCollector) RecordCluster(int, int, time.Duration)    {}
func (NoopMetricsCollector) RecordRender(time.Duration, error)        {}
func (NoopMetricsCollector) RecordUpload(int64, time.Duration, error) {}

// BasicMetricsCollector keeps in-memory counters.
type BasicMetricsCollector struct {
	ParseCount       atomic.Int64
	ParseErrors      atomic.Int64
	RecordsParsed    atomic.Int64
	ParseTotalNanos  atomic.Int64
	ClustersFound    atomic.Int64
	ClustersKept     atomic.Int64
	RenderCount      atomic.Int64
	RenderErrors     atomic.Int64
	RenderTotalNanos atomic.Int64
	UploadCount      atomic.Int64
	UploadErrors     atomic.Int64
	UploadBytes      atomic.Int64
}

// RecordParse implements MetricsCollector.
func (b *BasicMetricsCollector) RecordParse(records int, duration time.Duration, err error) {
	b.ParseCount.Add(1)
	b.ParseTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.ParseErrors.Add(1)
		return
	}
	b.RecordsParsed.Add(int64(records))
}

// RecordCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordCluster(found, kept int, _ time.Duration) {
	b.ClustersFound.Add(int64(found))
	b.ClustersKept.Add(int64(kept))
}

// RecordRender implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRender(duration time.Duration, err error) {
	b.RenderCount.Add(1)
	b.RenderTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RenderErrors.Add(1)
	}
}

// RecordUpload implements MetricsCollector.
func (b *BasicMetricsCollector) RecordUpload(bytes int64, _ time.Duration, err error) {
	b.UploadCount.Add(1)
	if err != nil {
		b.UploadErrors.Add(1)
		return
	}
	b.UploadBytes.Add(bytes)
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		ParseCount:      b.ParseCount.Load(),
		ParseErrors:     b.ParseErrors.Load(),
		RecordsParsed:   b.RecordsParsed.Load(),
		ParseTotalNanos: b.ParseTotalNanos.Load(),
		ClustersFound:   b.ClustersFound.Load(),
		ClustersKept:    b.ClustersKept.Load(),
		RenderCount:     b.RenderCount.Load(),
		RenderErrors:    b.RenderErrors.Load(),
		RenderAvgNanos:  avg(b.RenderTotalNanos.Load(), b.RenderCount.Load()),
		UploadCount:     b.UploadCount.Load(),
		UploadErrors:    b.UploadErrors.Load(),
		UploadBytes:     b.UploadBytes.Load(),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	ParseCount      int64
	ParseErrors     int64
	RecordsParsed   int64
	ParseTotalNanos int64
	ClustersFound   int64
	ClustersKept    int64
	RenderCount     int64
	RenderErrors    int64
	RenderAvgNanos  int64
	UploadCount     int64
	UploadErrors    int64
	UploadBytes     int64
}
