// Package trace decodes the binary sample stream written by the PACT PEBS
// sampler (pact_trace.bin).
//
// The file is a flat array of 29-byte little-endian records with no header:
//
//	offset  size  field
//	0       8     cycle (TSC at sample time)
//	8       8     virtual address
//	16      8     instruction pointer
//	24      4     cpu id
//	28      1     event type (0 = fast tier, 1 = slow tier)
//
// Traces may also be stored zstd, lz4-frame or gzip compressed; Read detects
// the codec from the leading magic bytes.
package trace
