package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"

	"github.com/lpjones/PACT/blobstore"
	"github.com/lpjones/PACT/blobstore/minio"
	"github.com/lpjones/PACT/blobstore/s3"
	"github.com/lpjones/PACT/internal/cache"
)

// stores opens one BlobStore per bucket and hands out blob names inside it.
// Remote stores share one block cache, bounded by cache.capacity_mb
// rather than memory_limit_mb.
type stores struct {
	v     *viper.Viper
	local blobstore.BlobStore
	open  map[string]blobstore.BlobStore
	cache cache.BlockCache
}

func newStores(v *viper.Viper) *stores {
	return &stores{
		v:     v,
		local: blobstore.NewLocalStore(""),
		open:  make(map[string]blobstore.BlobStore),
		cache: cache.NewLRU(v.GetInt64(keyCacheMB)<<20, nil),
	}
}

// resolve parses raw and returns the store serving it.
func (s *stores) resolve(ctx context.Context, raw string) (blobstore.BlobStore, blobstore.Location, error) {
	loc, err := blobstore.ParseLocation(raw)
	if err != nil {
		return nil, loc, err
	}
	if loc.Scheme == blobstore.SchemeFile {
		return s.local, loc, nil
	}

	id := string(loc.Scheme) + "://" + loc.Endpoint + "/" + loc.Bucket
	if st, ok := s.open[id]; ok {
		return st, loc, nil
	}

	var st blobstore.BlobStore
	switch loc.Scheme {
	case blobstore.SchemeS3:
		var opts []s3.Option
		if r := s.v.GetString(keyS3Region); r != "" {
			opts = append(opts, s3.WithRegion(r))
		}
		if e := s.v.GetString(keyS3Endpoint); e != "" {
			opts = append(opts, s3.WithEndpoint(e))
		}
		if k := s.v.GetString(keyS3AccessKey); k != "" {
			opts = append(opts, s3.WithStaticCredentials(k, s.v.GetString(keyS3SecretKey)))
		}
		st, err = s3.New(ctx, loc.Bucket, opts...)
	case blobstore.SchemeMinio:
		st, err = minio.New(minio.Config{
			Endpoint:  loc.Endpoint,
			AccessKey: s.v.GetString(keyMinioAccess),
			SecretKey: s.v.GetString(keyMinioSecret),
			Secure:    s.v.GetBool(keyMinioSecure),
		}, loc.Bucket, "")
	}
	if err != nil {
		return nil, loc, fmt.Errorf("open %s store for %s: %w", loc.Scheme, raw, err)
	}
	if s.v.GetInt64(keyCacheMB) > 0 {
		st = blobstore.NewCachingStore(st, s.cache, s.v.GetInt64(keyCacheBlockKB)<<10)
	}
	s.open[id] = st
	return st, loc, nil
}

// sameStore resolves raw and requires it to live next to base.
func (s *stores) sameStore(base blobstore.Location, raw string) (blobstore.Location, error) {
	loc, err := blobstore.ParseLocation(raw)
	if err != nil {
		return loc, err
	}
	if !loc.SameStore(base) {
		return loc, fmt.Errorf("%s must be in the same store as %s", raw, base)
	}
	return loc, nil
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
