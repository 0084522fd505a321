package blobstore

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// ErrInvalidLocation is returned for URIs that cannot name a blob.
var ErrInvalidLocation = errors.New("blobstore: invalid location")

// Scheme identifies the backend a Location lives in.
type Scheme string

const (
	SchemeFile  Scheme = "file"
	SchemeS3    Scheme = "s3"
	SchemeMinio Scheme = "minio"
)

// Location names one blob: a local path or an object in a bucket.
type Location struct {
	Scheme Scheme
	// Endpoint is the host[:port] of a MinIO server.
	Endpoint string
	Bucket   string
	// Key is the object key, or the file path for SchemeFile.
	Key string
}

// ParseLocation parses a plain path, file://, s3://bucket/key or
// minio://endpoint/bucket/key.
func ParseLocation(raw string) (Location, error) {
	if raw == "" {
		return Location{}, fmt.Errorf("%w: empty", ErrInvalidLocation)
	}
	if !strings.Contains(raw, "://") {
		return Location{Scheme: SchemeFile, Key: raw}, nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("%w: %w", ErrInvalidLocation, err)
	}

	switch Scheme(u.Scheme) {
	case SchemeFile:
		return Location{Scheme: SchemeFile, Key: u.Host + u.Path}, nil
	case SchemeS3:
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q needs bucket and key", ErrInvalidLocation, raw)
		}
		return Location{Scheme: SchemeS3, Bucket: u.Host, Key: key}, nil
	case SchemeMinio:
		bucket, key, ok := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || !ok || bucket == "" || key == "" {
			return Location{}, fmt.Errorf("%w: %q needs endpoint, bucket and key", ErrInvalidLocation, raw)
		}
		return Location{Scheme: SchemeMinio, Endpoint: u.Host, Bucket: bucket, Key: key}, nil
	default:
		return Location{}, fmt.Errorf("%w: unknown scheme %q", ErrInvalidLocation, u.Scheme)
	}
}

// Sibling returns the location of name in the same directory as l.
func (l Location) Sibling(name string) Location {
	out := l
	if l.Scheme == SchemeFile {
		out.Key = filepath.Join(filepath.Dir(l.Key), name)
	} else {
		out.Key = path.Join(path.Dir(l.Key), name)
	}
	return out
}

// WithKey returns l pointing at key.
func (l Location) WithKey(key string) Location {
	out := l
	out.Key = key
	return out
}

// SameStore reports whether l and o are served by the same BlobStore.
func (l Location) SameStore(o Location) bool {
	return l.Scheme == o.Scheme && l.Endpoint == o.Endpoint && l.Bucket == o.Bucket
}

// String renders l back into URI form.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeS3:
		return "s3://" + l.Bucket + "/" + l.Key
	case SchemeMinio:
		return "minio://" + l.Endpoint + "/" + l.Bucket + "/" + l.Key
	default:
		return l.Key
	}
}
