package embed

import (
	"context"

	"github.com/docstackhq/docvec/internal/errors"
)

// RetryEmbedder wraps an Embedder with exponential backoff retries for
// transient provider failures (throttling, timeouts, connection resets).
type RetryEmbedder struct {
	inner Embedder
	cfg   errors.RetryConfig
}

// NewRetryEmbedder creates a retrying embedder with maxRetries attempts.
func NewRetryEmbedder(inner Embedder, maxRetries int) *RetryEmbedder {
	cfg := errors.DefaultRetryConfig()
	if maxRetries > 0 {
		cfg.MaxRetries = maxRetries
	}
	return &RetryEmbedder{inner: inner, cfg: cfg}
}

// Embed generates an embedding, retrying transient failures.
func (r *RetryEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var vec []float32
	err := errors.WithRetry(ctx, r.cfg, func() error {
		var embedErr error
		vec, embedErr = r.inner.Embed(ctx, text)
		return embedErr
	})
	if err != nil {
		return nil, errors.EmbeddingError("embedding failed", err)
	}
	return vec, nil
}

// EmbedBatch generates embeddings, retrying the whole batch on failure.
func (r *RetryEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	var vectors [][]float32
	err := errors.WithRetry(ctx, r.cfg, func() error {
		var embedErr error
		vectors, embedErr = r.inner.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		return nil, errors.EmbeddingError("batch embedding failed", err)
	}
	return vectors, nil
}

// Dimensions returns the embedding dimension.
func (r *RetryEmbedder) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the model identifier.
func (r *RetryEmbedder) ModelName() string {
	return r.inner.ModelName()
}

// Close releases the inner embedder's resources.
func (r *RetryEmbedder) Close() error {
	return r.inner.Close()
}

// Verify interface implementation
var _ Embedder = (*RetryEmbedder)(nil)
