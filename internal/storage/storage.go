// Package storage abstracts remote object storage for docvec.
//
// The pipeline needs exactly three operations: list objects under a prefix,
// download one object to a local path, and upload a local file to a key.
// "Key not found" is a legitimate absent-state signal (a missing checkpoint
// means a fresh index, not a failure) and is distinguished from transport
// errors via IsNotFound.
package storage

import (
	"context"
	"errors"
)

// Object describes one remote object returned by List.
type Object struct {
	Key  string
	Size int64
}

// Client is the remote object storage interface.
type Client interface {
	// List returns objects under bucket/prefix in listing order.
	List(ctx context.Context, bucket, prefix string) ([]Object, error)

	// Download fetches bucket/key into localPath, creating parent
	// directories as needed. A missing key returns an error for which
	// IsNotFound reports true.
	Download(ctx context.Context, bucket, key, localPath string) error

	// Upload stores the file at localPath as bucket/key.
	Upload(ctx context.Context, localPath, bucket, key string) error
}

// ErrNotFound indicates the requested key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// IsNotFound reports whether err signals a missing object rather than a
// transport failure.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
