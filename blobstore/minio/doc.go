// Package minio implements blobstore.BlobStore on MinIO and other
// S3-compatible servers using minio-go.
package minio
