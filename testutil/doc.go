// Package testutil builds synthetic traces and logs for tests.
//
// This package is intended for use in tests only.
//
//	rng := testutil.NewRNG(seed)
//	samples := rng.ClusteredTrace(testutil.Region{Base: 0x7f0000000000, Span: 1 << 20, Samples: 1000})
//	data := testutil.EncodeTrace(samples)
package testutil
