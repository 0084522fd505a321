package main

import (
	"github.com/spf13/cobra"

	"github.com/lpjones/PACT"
)

func newClustersCmd(a *app) *cobra.Command {
	var start, end float64

	cmd := &cobra.Command{
		Use:   "clusters <trace>",
		Short: "Print the allocation clusters of a trace",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.bindFlags(cmd, clusterFlagKeys)
			ctx := cmd.Context()
			rc := a.resources()
			in, loc, err := newStores(a.v).resolve(ctx, args[0])
			if err != nil {
				return err
			}
			opts, err := a.analyzerOptions(start, end)
			if err != nil {
				return err
			}
			opts = append(opts, pact.WithInputStore(in), pact.WithResourceController(rc))

			res, err := pact.New(opts...).Clusters(ctx, pact.Input{Trace: loc.Key})
			if err != nil {
				return err
			}
			res.WriteSummary(a.stdout)
			return nil
		},
	}

	cmd.Flags().Float64Var(&start, "start-percent", 0, "Start percent of the trace to read (0-100)")
	cmd.Flags().Float64Var(&end, "end-percent", 100, "End percent of the trace to read (0-100)")
	addClusterFlags(cmd)
	return cmd
}
