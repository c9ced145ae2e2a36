package embed

import (
	"context"
	"fmt"
	"sync"
)

// mockEmbedder is a scriptable Embedder for wrapper tests.
type mockEmbedder struct {
	mu sync.Mutex

	// failUntil makes calls fail until this many calls have been made.
	failUntil int
	// failAlways makes every call fail.
	failAlways bool

	calls  int
	closed bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.failAlways || m.calls <= m.failUntil {
		return nil, fmt.Errorf("mock failure on call %d", m.calls)
	}
	// Encode call order into the vector so tests can tell results apart
	return []float32{float32(len(text)), float32(m.calls), 0, 0}, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := m.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		vectors[i] = vec
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimensions() int   { return 4 }
func (m *mockEmbedder) ModelName() string { return "mock-model" }

func (m *mockEmbedder) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

func (m *mockEmbedder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
