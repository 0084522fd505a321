// Package blobstore abstracts where traces are read from and where rendered
// charts are written to.
//
// # Built-in Implementations
//
//   - LocalStore: local file system; blobs are memory-mapped for reads and
//     written atomically through a temporary file.
//   - MemoryStore: in-process map, used by tests.
//   - s3.Store: Amazon S3 (range reads, multipart uploads).
//   - minio.Store: MinIO and other S3-compatible endpoints.
//
// Locations are addressed with URIs (see ParseLocation):
//
//	pact_trace.bin                     local path
//	s3://bucket/runs/42/pact_trace.bin S3 object
//	minio://host:9000/bucket/key       MinIO object
package blobstore
