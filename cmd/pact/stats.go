package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lpjones/PACT/blobstore"
	"github.com/lpjones/PACT/render"
	"github.com/lpjones/PACT/stats"
)

type statsFlags struct {
	files        []string
	primary      []string
	secondary    []string
	labels       []string
	output       string
	title        string
	xlabel       string
	ylabel       string
	startPercent float64
	endPercent   float64
	yrange1      []string
	yrange2      []string
}

func newStatsCmd(a *app) *cobra.Command {
	var f statsFlags

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Plot sparse 'name: [value]' metrics from sampler logs",
		Example: `  pact stats -f stats1.txt -f stats2.txt --g1 fast_free,fast_used -o out.png
  cat stats.txt | pact stats --g1 fast_free -o out.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runStats(cmd.Context(), cmd.InOrStdin(), f)
		},
	}

	fl := cmd.Flags()
	fl.StringSliceVarP(&f.files, "file", "f", nil, "Input file(s); stdin when omitted")
	fl.StringSliceVar(&f.primary, "g1", nil, "Metrics for the left axis")
	fl.StringSliceVar(&f.secondary, "g2", nil, "Metrics for the right axis")
	fl.StringSliceVar(&f.labels, "labels", nil, "Labels for each input file")
	fl.StringVarP(&f.output, "out", "o", "", "Output image (png or svg)")
	fl.StringVar(&f.title, "title", "", "Plot title")
	fl.StringVar(&f.xlabel, "xlabel", "", "X axis label")
	fl.StringVar(&f.ylabel, "ylabel", "", "Y axis label")
	fl.Float64Var(&f.startPercent, "start-percent", 0, "Start percent of each file to read (0-100)")
	fl.Float64Var(&f.endPercent, "end-percent", 100, "End percent of each file to read (0-100)")
	fl.StringSliceVar(&f.yrange1, "yrange1", nil, "Left axis range as min,max")
	fl.StringSliceVar(&f.yrange2, "yrange2", nil, "Right axis range as min,max")
	_ = cmd.MarkFlagRequired("g1")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}

func (a *app) runStats(ctx context.Context, stdin io.Reader, f statsFlags) error {
	format, err := render.FormatFromName(f.output)
	if err != nil {
		return err
	}
	r1, err := parseRange("yrange1", f.yrange1)
	if err != nil {
		return err
	}
	r2, err := parseRange("yrange2", f.yrange2)
	if err != nil {
		return err
	}

	st := newStores(a.v)
	var inputs []stats.Input
	if len(f.files) == 0 {
		m, err := stats.ParseReader(stdin, f.startPercent, f.endPercent)
		if err != nil {
			return err
		}
		label := "stdin"
		if len(f.labels) > 0 {
			label = f.labels[0]
		}
		inputs = append(inputs, stats.Input{Label: label, Metrics: m})
	} else {
		if len(f.labels) > 0 && len(f.labels) != len(f.files) {
			return fmt.Errorf("--labels length (%d) must match number of files (%d)", len(f.labels), len(f.files))
		}
		for i, name := range f.files {
			m, err := a.readStats(ctx, st, name, f.startPercent, f.endPercent)
			if err != nil {
				return fmt.Errorf("error reading file '%s': %w", name, err)
			}
			label := path.Base(name)
			if len(f.labels) > 0 {
				label = f.labels[i]
			}
			inputs = append(inputs, stats.Input{Label: label, Metrics: m})
		}
	}

	if f.startPercent != 0 || f.endPercent != 100 {
		fmt.Fprintf(a.stderr, "Reading %d file(s) -> slice [%g%%, %g%%] applied to each\n",
			len(inputs), f.startPercent, f.endPercent)
	}

	var buf bytes.Buffer
	res, err := stats.Render(&buf, inputs, stats.ChartOptions{
		Primary:        f.primary,
		Secondary:      f.secondary,
		Title:          f.title,
		XLabel:         f.xlabel,
		YLabel:         f.ylabel,
		PrimaryRange:   r1,
		SecondaryRange: r2,
		Format:         format,
	})
	if res != nil {
		for _, s := range res.Skipped {
			fmt.Fprintf(a.stderr, "Warning: metric '%s' not found in file '%s'; skipping.\n", s.Metric, s.Label)
		}
		for _, m := range res.Means {
			fmt.Fprintln(a.stdout, m.Metric, strconv.FormatFloat(m.Value, 'g', -1, 64))
		}
	}
	if err != nil {
		return err
	}

	out, loc, err := st.resolve(ctx, f.output)
	if err != nil {
		return err
	}
	if err := out.Put(ctx, loc.Key, buf.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Saved plot to %s\n", f.output)
	return nil
}

func (a *app) readStats(ctx context.Context, st *stores, name string, start, end float64) (stats.Metrics, error) {
	store, loc, err := st.resolve(ctx, name)
	if err != nil {
		return nil, err
	}
	blob, err := store.Open(ctx, loc.Key)
	if err != nil {
		return nil, err
	}
	defer blob.Close()
	return stats.ParseReader(blobstore.NewSectionReader(ctx, blob), start, end)
}

func parseRange(flag string, vals []string) (*stats.Range, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	if len(vals) != 2 {
		return nil, fmt.Errorf("--%s needs min,max", flag)
	}
	lo, err := strconv.ParseFloat(vals[0], 64)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	hi, err := strconv.ParseFloat(vals[1], 64)
	if err != nil {
		return nil, fmt.Errorf("--%s: %w", flag, err)
	}
	return &stats.Range{Min: lo, Max: hi}, nil
}
