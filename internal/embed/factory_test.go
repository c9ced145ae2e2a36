package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstackhq/docvec/internal/config"
)

func TestNewEmbedder_Static(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Embeddings.Provider = "static"

	e, err := NewEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, StaticDimensions, e.Dimensions())
	assert.Equal(t, "static-hash-v1", e.ModelName())

	// Wrapped embedder still produces deterministic vectors
	a, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	b, err := e.Embed(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewEmbedder_Ollama(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Embeddings.Provider = "ollama"
	cfg.Embeddings.Model = "nomic-embed-text"
	cfg.Embeddings.OllamaHost = "http://localhost:11434"

	e, err := NewEmbedder(context.Background(), cfg)
	require.NoError(t, err)
	defer func() { _ = e.Close() }()

	assert.Equal(t, "nomic-embed-text", e.ModelName())
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Embeddings.Provider = "openai"

	_, err := NewEmbedder(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown embedding provider")
}
