package blobstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store BlobStore) {
	t.Helper()
	ctx := context.Background()

	data := []byte("hello world, this is a trace blob")

	w, err := store.Create(ctx, "runs/a.bin")
	require.NoError(t, err)
	n, err := w.Write(data)
	require.NoError(t, err)
	require.Equal(t, len(data), n)
	require.NoError(t, w.Sync())
	require.NoError(t, w.Close())

	require.NoError(t, store.Put(ctx, "runs/b.png", []byte("png")))

	blob, err := store.Open(ctx, "runs/a.bin")
	require.NoError(t, err)
	defer blob.Close()
	require.Equal(t, int64(len(data)), blob.Size())

	buf := make([]byte, 5)
	n, err = blob.ReadAt(ctx, buf, 6)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "world", string(buf))

	rc, err := blob.ReadRange(ctx, 13, 4)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "this", string(got))

	all, err := ReadAll(ctx, blob)
	require.NoError(t, err)
	assert.Equal(t, data, all)

	names, err := store.List(ctx, "runs/")
	require.NoError(t, err)
	assert.Equal(t, []string{"runs/a.bin", "runs/b.png"}, names)

	require.NoError(t, store.Delete(ctx, "runs/b.png"))
	require.NoError(t, store.Delete(ctx, "runs/b.png"))

	_, err = store.Open(ctx, "runs/b.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	exerciseStore(t, NewLocalStore(dir))

	// No temporary files survive a completed write.
	entries, err := os.ReadDir(filepath.Join(dir, "runs"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.bin", entries[0].Name())
}

func TestLocalStore_EmptyRoot(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore("")
	ctx := context.Background()

	name := filepath.Join(dir, "out.png")
	require.NoError(t, store.Put(ctx, name, []byte{1, 2, 3}))

	b, err := store.Open(ctx, name)
	require.NoError(t, err)
	defer b.Close()
	assert.Equal(t, int64(3), b.Size())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestMemoryStore_PutCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	data := []byte("abc")
	require.NoError(t, store.Put(ctx, "x", data))
	data[0] = 'z'

	b, err := store.Open(ctx, "x")
	require.NoError(t, err)
	got, err := ReadAll(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		raw     string
		want    Location
		wantErr bool
	}{
		{raw: "traces/pact_trace.bin", want: Location{Scheme: SchemeFile, Key: "traces/pact_trace.bin"}},
		{raw: "file:///tmp/t.bin", want: Location{Scheme: SchemeFile, Key: "/tmp/t.bin"}},
		{raw: "s3://bucket/runs/1/t.bin", want: Location{Scheme: SchemeS3, Bucket: "bucket", Key: "runs/1/t.bin"}},
		{raw: "minio://localhost:9000/bkt/a/b.bin", want: Location{Scheme: SchemeMinio, Endpoint: "localhost:9000", Bucket: "bkt", Key: "a/b.bin"}},
		{raw: "s3://bucket", wantErr: true},
		{raw: "minio://host/bucket", wantErr: true},
		{raw: "gs://bucket/key", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseLocation(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidLocation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocation_Sibling(t *testing.T) {
	loc, err := ParseLocation("s3://bucket/runs/1/pact_trace.bin")
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/runs/1/debuglog.txt", loc.Sibling("debuglog.txt").String())

	local := Location{Scheme: SchemeFile, Key: filepath.Join("data", "pact_trace.bin")}
	assert.Equal(t, filepath.Join("data", "debuglog.txt"), local.Sibling("debuglog.txt").Key)

	assert.True(t, loc.SameStore(loc.WithKey("other")))
	assert.False(t, loc.SameStore(local))
}
