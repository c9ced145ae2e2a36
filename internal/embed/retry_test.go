package embed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docstackhq/docvec/internal/errors"
)

func TestRetryEmbedder_RecoversFromTransientFailure(t *testing.T) {
	mock := &mockEmbedder{failUntil: 2}
	r := NewRetryEmbedder(mock, 3)
	r.cfg.InitialDelay = 0 // keep the test fast

	vec, err := r.Embed(context.Background(), "page text")
	require.NoError(t, err)
	assert.NotNil(t, vec)
	assert.Equal(t, 3, mock.callCount())
}

func TestRetryEmbedder_ExhaustionYieldsEmbeddingError(t *testing.T) {
	mock := &mockEmbedder{failAlways: true}
	r := NewRetryEmbedder(mock, 2)
	r.cfg.InitialDelay = 0

	_, err := r.Embed(context.Background(), "page text")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeEmbeddingFailed, errors.GetCode(err))
	assert.False(t, errors.IsFatal(err))
}

func TestRetryEmbedder_BatchRetries(t *testing.T) {
	mock := &mockEmbedder{failUntil: 1}
	r := NewRetryEmbedder(mock, 3)
	r.cfg.InitialDelay = 0

	vectors, err := r.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	assert.Len(t, vectors, 2)
}

func TestRetryEmbedder_Delegates(t *testing.T) {
	mock := &mockEmbedder{}
	r := NewRetryEmbedder(mock, 0)

	assert.Equal(t, 4, r.Dimensions())
	assert.Equal(t, "mock-model", r.ModelName())
	require.NoError(t, r.Close())
	assert.True(t, mock.closed)
}
