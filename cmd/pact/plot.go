package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lpjones/PACT"
	"github.com/lpjones/PACT/catalog"
	"github.com/lpjones/PACT/codec"
	"github.com/lpjones/PACT/render"
)

type plotFlags struct {
	output       string
	colorBy      string
	fast         bool
	title        string
	startPercent float64
	endPercent   float64
	debugLog     string
	report       string
}

func newPlotCmd(a *app) *cobra.Command {
	var f plotFlags

	cmd := &cobra.Command{
		Use:   "plot <trace> <neighbors>",
		Short: "Render one chart per allocation cluster",
		Long: "Render one chart per allocation cluster found in a binary sample trace.\n" +
			"Inputs and outputs may be local paths, s3://bucket/key or minio://host/bucket/key.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.bindFlags(cmd, clusterFlagKeys, map[string]string{keyBins: "bins", keyJobs: "jobs"})
			return a.runPlot(cmd.Context(), f, args[0], args[1])
		},
	}

	fl := cmd.Flags()
	fl.StringVarP(&f.output, "output", "o", "", "Output image name (png, jpg or svg); clusters are written as <stem>-<i>.<ext>")
	fl.StringVarP(&f.colorBy, "color", "c", "event", "Color clusters by 'event' or 'cpu'")
	fl.BoolVar(&f.fast, "fast", false, "Use heatmap mode (faster to render large datasets)")
	fl.StringVar(&f.title, "title", "", "Plot title")
	fl.Float64Var(&f.startPercent, "start-percent", 0, "Start percent of the trace to read (0-100)")
	fl.Float64Var(&f.endPercent, "end-percent", 100, "End percent of the trace to read (0-100)")
	fl.StringVar(&f.debugLog, "debuglog", "", "Debug log (default: debuglog.txt next to the trace)")
	fl.StringVar(&f.report, "report", "", "Write the run report to this file")
	addClusterFlags(cmd)
	fl.Int("bins", 0, "Heatmap bins per axis")
	fl.Int("jobs", 0, "Clusters rendered concurrently")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

var clusterFlagKeys = map[string]string{keyGapGB: "gap-gb", keyMinSamples: "min-samples"}

// addClusterFlags registers the flags shared by plot and clusters.
func addClusterFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("gap-gb", 0, "Address gap in GiB that separates clusters")
	cmd.Flags().Int("min-samples", 0, "Minimum samples for a cluster to be kept")
}

func (a *app) analyzerOptions(start, end float64) ([]pact.Option, error) {
	gap, err := gapBytes(a.v)
	if err != nil {
		return nil, err
	}
	return []pact.Option{
		pact.WithLogger(a.logger),
		pact.WithStdout(a.stdout),
		pact.WithGapThreshold(gap),
		pact.WithMinSamples(a.v.GetInt(keyMinSamples)),
		pact.WithPercentRange(start, end),
	}, nil
}

func (a *app) runPlot(ctx context.Context, f plotFlags, tracePath, neighborsPath string) error {
	colorBy, err := render.ParseColorBy(f.colorBy)
	if err != nil {
		return err
	}
	mode := render.ModeScatter
	if f.fast {
		mode = render.ModeHeatmap
	}
	rc, err := codec.ByName(a.v.GetString(keyReportCodec))
	if err != nil {
		return err
	}

	rcon := a.resources()
	st := newStores(a.v)
	in, traceLoc, err := st.resolve(ctx, tracePath)
	if err != nil {
		return err
	}
	nbrLoc, err := st.sameStore(traceLoc, neighborsPath)
	if err != nil {
		return err
	}
	input := pact.Input{
		Trace:     traceLoc.Key,
		Neighbors: nbrLoc.Key,
		URI:       traceLoc.String(),
	}
	if f.debugLog != "" {
		dl, err := st.sameStore(traceLoc, f.debugLog)
		if err != nil {
			return err
		}
		input.DebugLog = dl.Key
	}
	out, outLoc, err := st.resolve(ctx, f.output)
	if err != nil {
		return err
	}
	input.Output = outLoc.Key

	opts, err := a.analyzerOptions(f.startPercent, f.endPercent)
	if err != nil {
		return err
	}
	opts = append(opts,
		pact.WithResourceController(rcon),
		pact.WithInputStore(in),
		pact.WithOutputStore(out),
		pact.WithColorBy(colorBy),
		pact.WithMode(mode),
		pact.WithBins(a.v.GetInt(keyBins)),
		pact.WithTitle(f.title),
		pact.WithCodec(rc),
	)
	if table := a.v.GetString(keyCatalogTable); table != "" {
		var copts []catalog.Option
		if r := a.v.GetString(keyCatalogRegion); r != "" {
			copts = append(copts, catalog.WithRegion(r))
		}
		if e := a.v.GetString(keyCatalogURL); e != "" {
			copts = append(copts, catalog.WithEndpoint(e))
		}
		if k := a.v.GetString(keyS3AccessKey); k != "" {
			copts = append(copts, catalog.WithStaticCredentials(k, a.v.GetString(keyS3SecretKey)))
		}
		cat, err := catalog.New(ctx, table, copts...)
		if err != nil {
			return err
		}
		opts = append(opts, pact.WithCatalog(cat))
	}

	report, err := pact.New(opts...).Run(ctx, input)
	if err != nil {
		return err
	}
	if f.report == "" {
		return nil
	}
	return a.writeReport(ctx, st, f.report, rc, report)
}

func (a *app) writeReport(ctx context.Context, st *stores, dst string, c codec.Codec, report *pact.Report) error {
	store, loc, err := st.resolve(ctx, dst)
	if err != nil {
		return err
	}
	w, err := store.Create(ctx, loc.Key)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if err := codec.Encode(w, c, report); err != nil {
		_ = w.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return w.Close()
}
