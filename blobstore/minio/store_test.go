package minio

import (
	"context"
	"os"
	"testing"

	"github.com/lpjones/PACT/blobstore"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_KeyJoin(t *testing.T) {
	s := &Store{prefix: "runs/"}
	assert.Equal(t, "runs/a/plot-0.png", s.key("a/plot-0.png"))

	s = &Store{}
	assert.Equal(t, "plot-0.png", s.key("plot-0.png"))
}

func TestNew_InvalidEndpoint(t *testing.T) {
	_, err := New(Config{Endpoint: "http://not-a-host-port/"}, "bucket", "")
	assert.Error(t, err)
}

// TestStore_Integration requires a running MinIO instance (PACT_MINIO_ENDPOINT).
func TestStore_Integration(t *testing.T) {
	endpoint := os.Getenv("PACT_MINIO_ENDPOINT")
	if endpoint == "" {
		t.Skip("Skipping MinIO integration test: PACT_MINIO_ENDPOINT not set")
	}
	bucket := "pact-test"

	store, err := New(Config{Endpoint: endpoint, AccessKey: "minioadmin", SecretKey: "minioadmin"}, bucket, "it/")
	require.NoError(t, err)

	ctx := context.Background()
	exists, err := store.client.BucketExists(ctx, bucket)
	if err != nil {
		t.Skipf("MinIO not available: %v", err)
	}
	if !exists {
		require.NoError(t, store.client.MakeBucket(ctx, bucket, minio.MakeBucketOptions{}))
	}

	require.NoError(t, store.Put(ctx, "x.txt", []byte("hello minio")))

	blob, err := store.Open(ctx, "x.txt")
	require.NoError(t, err)
	got, err := blobstore.ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, "hello minio", string(got))

	names, err := store.List(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, names, "x.txt")

	require.NoError(t, store.Delete(ctx, "x.txt"))
	_, err = store.Open(ctx, "x.txt")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)
}
