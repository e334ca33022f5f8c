// Package blob stores backup archives on the local filesystem or in S3.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNotFound is returned when a key does not exist
var ErrNotFound = errors.New("blob not found")

// Store is a minimal key/value object store
type Store interface {
	Put(ctx context.Context, key string, r io.Reader, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}

// Target is a parsed backup location: either s3://bucket/key or a local path
type Target struct {
	Bucket string
	Key    string
}

// IsS3 reports whether the target names an S3 object
func (t Target) IsS3() bool { return t.Bucket != "" }

// ParseTarget splits "s3://bucket/key" into bucket and key. Anything else is
// a filesystem path returned as the key.
func ParseTarget(location string) (Target, error) {
	rest, ok := strings.CutPrefix(location, "s3://")
	if !ok {
		if strings.TrimSpace(location) == "" {
			return Target{}, fmt.Errorf("empty backup location")
		}
		return Target{Key: location}, nil
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return Target{}, fmt.Errorf("invalid S3 location %q: want s3://bucket/key", location)
	}
	return Target{Bucket: bucket, Key: key}, nil
}

// Open returns the store holding a target's key. Filesystem keys are paths
// relative to the working directory.
func Open(ctx context.Context, t Target, cfg S3Config) (Store, error) {
	if !t.IsS3() {
		fs, err := NewFilesystem("")
		if err != nil {
			return nil, err
		}
		return fs, nil
	}
	cfg.Bucket = t.Bucket
	s, err := NewS3(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}
