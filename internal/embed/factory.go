package embed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/docstackhq/docvec/internal/config"
)

// NewEmbedder creates an Embedder from configuration.
// The returned embedder is wrapped with retries and an LRU cache.
func NewEmbedder(ctx context.Context, cfg *config.Config) (Embedder, error) {
	var (
		inner Embedder
		err   error
	)

	switch cfg.Embeddings.Provider {
	case "bedrock":
		inner, err = NewBedrockEmbedder(ctx, BedrockConfig{
			Region:     cfg.Storage.Region,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create bedrock embedder: %w", err)
		}

	case "ollama":
		inner = NewOllamaEmbedder(OllamaConfig{
			Host:       cfg.Embeddings.OllamaHost,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
		})

	case "static":
		inner = NewStaticEmbedder()

	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Embeddings.Provider)
	}

	slog.Info("embedder created",
		slog.String("provider", cfg.Embeddings.Provider),
		slog.String("model", inner.ModelName()),
		slog.Int("dimensions", inner.Dimensions()))

	return NewCachedEmbedder(NewRetryEmbedder(inner, cfg.Embeddings.MaxRetries), cfg.Embeddings.CacheSize), nil
}
