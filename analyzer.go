package pact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/lpjones/PACT/blobstore"
	"github.com/lpjones/PACT/cluster"
	"github.com/lpjones/PACT/neighbor"
	"github.com/lpjones/PACT/render"
	"github.com/lpjones/PACT/resource"
	"github.com/lpjones/PACT/timelog"
	"github.com/lpjones/PACT/trace"
)

// Input names the files of one sampler run inside the input store.
type Input struct {
	// Trace is the binary sample file.
	Trace string
	// Neighbors is the neighbor log. Empty skips the overlay.
	Neighbors string
	// DebugLog overrides the debuglog.txt next to the trace.
	DebugLog string
	// Output is the chart base name; charts are written as <stem>-<i>.<ext>.
	// Empty writes <trace stem>-<i>-<color>-<mode>.png next to the trace.
	Output string
	// URI identifies the trace in the run catalog. Defaults to Trace.
	URI string
}

// Analyzer runs the trace-to-charts pipeline.
type Analyzer struct {
	opts options
}

// New creates an Analyzer.
func New(optFns ...Option) *Analyzer {
	return &Analyzer{opts: applyOptions(optFns)}
}

// ClusterResult is the outcome of parsing and clustering.
type ClusterResult struct {
	Info     trace.Info
	Selected int
	Found    int
	Gap      uint64
	Groups   []cluster.Group
}

// WriteSummary prints the cluster table and per-cluster coverage.
func (r *ClusterResult) WriteSummary(w io.Writer) {
	printClusters(w, r.Groups, r.Gap)
	shares, covered := cluster.Coverage(r.Groups, r.Selected)
	printCoverage(w, shares, covered)
}

// Clusters reads the trace and returns the clusters that pass the sample
// minimum. It fails with ErrNoClusters when none does.
func (a *Analyzer) Clusters(ctx context.Context, in Input) (*ClusterResult, error) {
	if err := validatePercent(a.opts.startPercent, a.opts.endPercent); err != nil {
		return nil, err
	}

	samples, info, err := a.readTrace(ctx, in.Trace)
	if err != nil {
		return nil, err
	}
	defer a.opts.resource.ReleaseMemory(info.TotalRecords * trace.RecordSize)

	start := time.Now()
	clusters := cluster.Infer(samples.Addresses(), a.opts.gapThreshold)
	groups := cluster.Filter(cluster.Assign(samples, clusters), a.opts.minSamples)
	a.opts.metricsCollector.RecordCluster(len(clusters), len(groups), time.Since(start))
	a.opts.logger.LogClusters(ctx, len(clusters), len(groups), a.opts.gapThreshold)

	res := &ClusterResult{
		Info:     info,
		Selected: len(samples),
		Found:    len(clusters),
		Gap:      a.opts.gapThreshold,
		Groups:   groups,
	}
	if len(groups) == 0 {
		return res, ErrNoClusters
	}
	return res, nil
}

func (a *Analyzer) readTrace(ctx context.Context, name string) (trace.Samples, trace.Info, error) {
	start := time.Now()

	blob, err := a.opts.inputStore.Open(ctx, name)
	if err != nil {
		a.opts.logger.LogParse(ctx, name, 0, err)
		return nil, trace.Info{}, fmt.Errorf("open trace %s: %w", name, err)
	}
	defer blob.Close()

	rc := a.opts.resource
	if lim := rc.MemoryLimit(); lim > 0 && blob.Size() > lim {
		return nil, trace.Info{}, fmt.Errorf("trace %s is %d bytes, memory limit is %d", name, blob.Size(), lim)
	}
	if err := rc.AcquireMemory(ctx, blob.Size()); err != nil {
		return nil, trace.Info{}, err
	}

	samples, info, err := trace.ReadWithInfo(ctx, blob, trace.ReadOptions{
		StartPercent: a.opts.startPercent,
		EndPercent:   a.opts.endPercent,
	})
	// Decoded samples replace the raw reservation.
	rc.ReleaseMemory(blob.Size())
	if decoded := info.TotalRecords * trace.RecordSize; err == nil && !rc.TryAcquireMemory(decoded) {
		err = fmt.Errorf("decoded trace %s is %d bytes, memory limit is %d", name, decoded, rc.MemoryLimit())
	}

	a.opts.metricsCollector.RecordParse(len(samples), time.Since(start), err)
	a.opts.logger.LogParse(ctx, name, len(samples), err)
	if err != nil {
		return nil, info, err
	}
	return samples, info, nil
}

// Run analyzes one trace, writes one chart per retained cluster and prints
// the cluster table and coverage summary.
func (a *Analyzer) Run(ctx context.Context, in Input) (*Report, error) {
	o := a.opts
	out := o.stdout

	renderer, err := a.renderer(in)
	if err != nil {
		return nil, err
	}

	var observations []neighbor.Observation
	if in.Neighbors != "" {
		observations, err = a.readNeighbors(ctx, in.Neighbors)
		if err != nil {
			return nil, err
		}
	}

	res, err := a.Clusters(ctx, in)
	if err != nil {
		return nil, err
	}

	printClusters(out, res.Groups, o.gapThreshold)

	tr := a.timeRange(ctx, in)

	names, err := a.renderAll(ctx, renderer, in, res, tr, observations)
	if err != nil {
		return nil, err
	}

	kind := "heatmap"
	if renderer.Options().Mode == render.ModeScatter {
		kind = "scatter plot"
	}
	for _, name := range names {
		fmt.Fprintf(out, "Saved cluster %s to %s\n", kind, name)
	}

	shares, covered := cluster.Coverage(res.Groups, res.Selected)
	printCoverage(out, shares, covered)

	report := a.buildReport(in, res, tr, names, shares, covered)
	a.record(ctx, in, report)
	return report, nil
}

func (a *Analyzer) renderer(in Input) (*render.Renderer, error) {
	ro := render.DefaultOptions()
	ro.ColorBy = a.opts.colorBy
	ro.Mode = a.opts.mode
	ro.Bins = a.opts.bins
	ro.Title = a.opts.title
	if a.opts.width > 0 && a.opts.height > 0 {
		ro.Width, ro.Height = a.opts.width, a.opts.height
	}
	if in.Output != "" {
		f, err := render.FormatFromName(in.Output)
		if err != nil {
			return nil, err
		}
		ro.Format = f
	}
	return render.New(ro)
}

func (a *Analyzer) readNeighbors(ctx context.Context, name string) ([]neighbor.Observation, error) {
	blob, err := a.opts.inputStore.Open(ctx, name)
	if err != nil {
		a.opts.logger.LogParse(ctx, name, 0, err)
		return nil, fmt.Errorf("open neighbors %s: %w", name, err)
	}
	defer blob.Close()

	obs, err := neighbor.Parse(blobstore.NewSectionReader(ctx, blob))
	a.opts.logger.LogParse(ctx, name, len(obs), err)
	return obs, err
}

// timeRange loads the debug log. Any failure is reported and yields nil,
// which selects the relative x axis.
func (a *Analyzer) timeRange(ctx context.Context, in Input) *timelog.Range {
	out := a.opts.stdout
	name := in.DebugLog
	if name == "" {
		name = path.Join(path.Dir(in.Trace), timelog.DefaultName)
		// Object keys have no current directory; local paths keep the "./" form.
		if _, local := a.opts.inputStore.(*blobstore.LocalStore); local && !strings.Contains(name, "/") {
			name = "./" + name
		}
	}

	blob, err := a.opts.inputStore.Open(ctx, name)
	if errors.Is(err, blobstore.ErrNotFound) {
		fmt.Fprintf(out, "No debuglog found at %s. Using cycle-relative X axis.\n", name)
		return nil
	}
	if err == nil {
		defer blob.Close()
		var full timelog.Range
		full, err = timelog.ParseRange(blobstore.NewSectionReader(ctx, blob))
		if err == nil {
			tr := full.Scale(a.opts.startPercent, a.opts.endPercent)
			fmt.Fprintf(out, "start=%s, end=%s\n", formatSeconds(tr.Start), formatSeconds(tr.End))
			return &tr
		}
	}

	a.opts.logger.WarnContext(ctx, "debug log unusable", "name", name, "error", err)
	fmt.Fprintf(out, "Warning: failed to parse debuglog '%s': %v. Falling back to cycle-relative X axis.\n", name, err)
	return nil
}

func formatSeconds(v float64) string {
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// renderAll draws every group on the resource controller's worker slots.
// Names are returned in cluster order.
func (a *Analyzer) renderAll(ctx context.Context, r *render.Renderer, in Input, res *ClusterResult,
	tr *timelog.Range, obs []neighbor.Observation) ([]string, error) {
	names := make([]string, len(res.Groups))
	rc := a.opts.resource

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(rc.Workers())
	for i, grp := range res.Groups {
		names[i] = a.outputName(in, r.Options(), i)
		g.Go(func() error {
			if err := rc.AcquireWorker(gctx); err != nil {
				return err
			}
			defer rc.ReleaseWorker()

			if err := a.renderOne(gctx, r, i, grp, res.Selected, tr, obs, names[i]); err != nil {
				return &ErrClusterRender{Index: i, Name: names[i], cause: err}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return names, nil
}

func (a *Analyzer) renderOne(ctx context.Context, r *render.Renderer, idx int, grp cluster.Group, total int,
	tr *timelog.Range, obs []neighbor.Observation, name string) error {
	start := time.Now()

	p, err := render.NewPanel(idx, grp, total, tr)
	if err != nil {
		return err
	}
	if tr != nil && len(obs) > 0 {
		p.AddOverlay(obs)
	}

	var buf bytes.Buffer
	err = r.Render(&buf, p)
	a.opts.metricsCollector.RecordRender(time.Since(start), err)
	a.opts.logger.LogRender(ctx, idx, name, err)
	if err != nil {
		return err
	}
	return a.upload(ctx, name, &buf)
}

func (a *Analyzer) upload(ctx context.Context, name string, buf *bytes.Buffer) error {
	start := time.Now()
	size := int64(buf.Len())

	err := func() error {
		w, err := a.opts.outputStore.Create(ctx, name)
		if err != nil {
			return err
		}
		if _, err := io.Copy(resource.NewRateLimitedWriter(ctx, w, a.opts.resource), buf); err != nil {
			_ = w.Close()
			return err
		}
		return w.Close()
	}()

	a.opts.metricsCollector.RecordUpload(size, time.Since(start), err)
	a.opts.logger.LogUpload(ctx, name, size, err)
	return err
}

func (a *Analyzer) outputName(in Input, ro render.Options, idx int) string {
	if in.Output != "" {
		return render.OutputName(in.Output, idx)
	}
	stem := strings.TrimSuffix(path.Base(in.Trace), path.Ext(in.Trace))
	kind := "heatmap"
	if ro.Mode == render.ModeScatter {
		kind = "scatter"
	}
	return path.Join(path.Dir(in.Trace),
		fmt.Sprintf("%s-%d-%s-%s.%s", stem, idx, ro.ColorBy, kind, ro.Format.Ext()))
}

func (a *Analyzer) buildReport(in Input, res *ClusterResult, tr *timelog.Range, names []string,
	shares []cluster.Share, covered float64) *Report {
	rep := &Report{
		Trace:        in.Trace,
		TotalRecords: res.Info.TotalRecords,
		Selected:     res.Selected,
		StartPercent: a.opts.startPercent,
		EndPercent:   a.opts.endPercent,
		Compression:  res.Info.Compression.String(),
		GapThreshold: a.opts.gapThreshold,
		MinSamples:   a.opts.minSamples,
		Found:        res.Found,
		Coverage:     covered,
	}
	if tr != nil {
		rep.TimeRange = &TimeRange{Start: tr.Start, End: tr.End}
	}
	for i, g := range res.Groups {
		rep.Clusters = append(rep.Clusters, ClusterReport{
			Index:   i,
			Start:   g.Cluster.Start,
			End:     g.Cluster.End,
			SizeGB:  float64(g.Cluster.Span()) / cluster.GiB,
			Count:   shares[i].Count,
			Percent: shares[i].Percent,
			Output:  names[i],
		})
	}
	return rep
}

// record stores the report in the run catalog. Failures are logged only.
func (a *Analyzer) record(ctx context.Context, in Input, rep *Report) {
	uri := in.URI
	if uri == "" {
		uri = in.Trace
	}
	data, err := a.opts.codec.Marshal(rep)
	if err != nil {
		a.opts.logger.LogCatalog(ctx, uri, 0, err)
		return
	}
	version, err := a.opts.catalog.Record(ctx, uri, a.opts.codec.Name(), data)
	if version > 0 || err != nil {
		a.opts.logger.LogCatalog(ctx, uri, version, err)
	}
	rep.CatalogVersion = version
}
