// Package archive stores rendered event payloads in durable object storage
// so that published messages can be replayed or inspected after the fact.
package archive

import (
	"context"
	"errors"
	"io"
	"time"
)

// Driver identifies a concrete archive backend implementation.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local filesystem (default, dev)
	DriverS3         Driver = "s3"     // S3 / MinIO compatible
	DriverMemory     Driver = "memory" // in-memory (tests)
)

// PutOptions specifies optional parameters for Put.
type PutOptions struct {
	ContentType string            // MIME type, optional
	Metadata    map[string]string // user metadata (small, flat key-value)
}

// Info describes a stored object.
type Info struct {
	Key          string            `json:"key"`
	Size         int64             `json:"size_bytes"`
	ContentType  string            `json:"content_type,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	LastModified time.Time         `json:"last_modified"`
}

// Store is the minimal object-storage surface the archive needs. Semantics
// mirror a small subset of S3 so the S3 adapter is nearly 1:1 while the
// filesystem adapter can emulate them.
type Store interface {
	// Put stores a new object at key. MUST fail if the key already exists.
	Put(ctx context.Context, key string, r io.Reader, opts PutOptions) (Info, error)
	// Get retrieves the object contents and metadata.
	Get(ctx context.Context, key string) (Info, io.ReadCloser, error)
	// List returns objects whose key has the provided prefix, ordered by key ascending.
	List(ctx context.Context, prefix string) ([]Info, error)
	// SignedURL returns a time-limited read URL for the object. Backends
	// without signing support return ErrUnsupported.
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
	// Driver returns the configured backend driver.
	Driver() Driver
}

// DefaultSignedURLExpiry applies when SignedURL is called with a
// non-positive expiry.
const DefaultSignedURLExpiry = 15 * time.Minute

// ErrNotFound indicates the requested key does not exist.
var ErrNotFound = errors.New("archive: object not found")

// ErrUnsupported is returned when a backend lacks an optional capability.
var ErrUnsupported = errors.New("archive: unsupported operation")

func cloneMetadata(in map[string]string) map[string]string {
	if len(in) == 0 {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
