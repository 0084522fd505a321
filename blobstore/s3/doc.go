// Package s3 implements blobstore.BlobStore on Amazon S3.
//
// # Usage
//
//	store, err := s3.New(ctx, "trace-bucket",
//	    s3.WithPrefix("runs/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
// Reads use ranged GETs so a percentage slice of a large trace only fetches
// the selected records. Rendered charts are uploaded with the transfer
// manager (multipart above the part size).
package s3
