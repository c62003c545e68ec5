package storage

// Package storage contains the content-store abstraction backing the
// notarization service: durable byte storage addressed by sanitized keys of
// the form <storage_id>/<relative path>. Backends must not interpret key
// contents beyond the documented layout.

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	// ErrNotFound reports a key with no stored object.
	ErrNotFound = errors.New("object not found")
	// ErrInvalidKey reports identity components that would escape the
	// designated storage root (traversal sequences, absolute paths).
	ErrInvalidKey = errors.New("invalid storage key")
)

// ObjectInfo contains basic information about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ContentStore is the byte-level storage contract. Implementations create
// intermediate hierarchy as needed on Put and are safe for concurrent use;
// concurrent writers to the same key race (last writer wins).
type ContentStore interface {
	// Put writes the reader's content under key, overwriting any existing
	// object. size may be -1 if unknown.
	Put(ctx context.Context, key string, r io.Reader, size int64) (ObjectInfo, error)
	// Get returns the object's content and info, or ErrNotFound.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// Stat returns object info without reading content, or ErrNotFound.
	Stat(ctx context.Context, key string) (ObjectInfo, error)
	// Delete removes the object, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	// List returns all objects whose key starts with prefix, or ErrNotFound
	// if nothing is stored under it.
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
}
