// Package source resolves the set of PDF documents to ingest.
//
// Documents live in remote object storage; fetched copies are cached locally
// by file name and reused on later runs. The cache is plain memoization: a
// cached copy is never refreshed, even if the remote object changes.
package source

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/docstackhq/docvec/internal/errors"
	"github.com/docstackhq/docvec/internal/storage"
)

// Resolver lists remote PDF objects and materializes them as local files.
type Resolver struct {
	storage  storage.Client
	bucket   string
	prefix   string
	cacheDir string
}

// NewResolver creates a Resolver for bucket/prefix caching into cacheDir.
func NewResolver(client storage.Client, bucket, prefix, cacheDir string) *Resolver {
	return &Resolver{
		storage:  client,
		bucket:   bucket,
		prefix:   prefix,
		cacheDir: cacheDir,
	}
}

// Resolve lists all .pdf objects under the configured prefix and returns
// their local paths in remote-listing order. Objects already present in the
// cache directory are reused without a fetch; everything else is downloaded.
//
// A listing or fetch failure aborts the whole resolve: callers get either the
// complete document set or an error, never a partial one.
func (r *Resolver) Resolve(ctx context.Context) ([]string, error) {
	objects, err := r.storage.List(ctx, r.bucket, r.prefix)
	if err != nil {
		return nil, errors.FetchError("failed to list source documents", err).
			WithDetail("bucket", r.bucket).
			WithDetail("prefix", r.prefix)
	}

	if err := os.MkdirAll(r.cacheDir, 0o755); err != nil {
		return nil, errors.FetchError("failed to create cache directory", err).
			WithDetail("dir", r.cacheDir)
	}

	var paths []string
	for _, obj := range objects {
		if !strings.HasSuffix(strings.ToLower(obj.Key), ".pdf") {
			continue
		}

		localPath := filepath.Join(r.cacheDir, filepath.Base(obj.Key))

		if _, err := os.Stat(localPath); err == nil {
			slog.Debug("using cached document",
				slog.String("key", obj.Key),
				slog.String("path", localPath))
			paths = append(paths, localPath)
			continue
		}

		slog.Info("downloading document",
			slog.String("key", obj.Key),
			slog.Int64("size", obj.Size))
		if err := r.storage.Download(ctx, r.bucket, obj.Key, localPath); err != nil {
			return nil, errors.FetchError("failed to download source document", err).
				WithDetail("key", obj.Key)
		}
		paths = append(paths, localPath)
	}

	slog.Info("source documents resolved",
		slog.Int("count", len(paths)),
		slog.String("prefix", r.prefix))
	return paths, nil
}
