// Package pact analyzes memory-access traces recorded by the PACT PEBS
// sampler.
//
// An Analyzer reads the binary sample trace, groups sampled virtual
// addresses into allocation clusters separated by large address gaps, and
// renders one chart per cluster showing which memory tier (or CPU) served
// each access over time.
//
// # Quick Start
//
//	a := pact.New(
//	    pact.WithMode(render.ModeHeatmap),
//	    pact.WithColorBy(render.ColorByEvent),
//	    pact.WithPercentRange(0, 50),
//	)
//	report, err := a.Run(ctx, pact.Input{
//	    Trace:     "run1/pact_trace.bin",
//	    Neighbors: "run1/neighbors.txt",
//	    Output:    "plots/run1.png",
//	})
//
// Charts are written as plots/run1-0.png, plots/run1-1.png and so on.
//
// # Storage
//
// Inputs and outputs go through blobstore.BlobStore, so traces can be read
// from and charts written to local disk, S3 or MinIO:
//
//	s3Store, _ := s3.New(ctx, "traces", s3.WithPrefix("nightly/"))
//	a := pact.New(pact.WithInputStore(s3Store), pact.WithOutputStore(s3Store))
//
// # Time Axis
//
// When a debuglog.txt sits next to the trace, its first and last timestamps
// give the wall-clock span of the run and samples are placed in seconds.
// Otherwise the x axis shows cycles relative to the first sample.
package pact
