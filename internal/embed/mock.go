package embed

import (
	"context"
	"fmt"
	"sync"
)

// MockEmbedder is a deterministic Embedder for testing. It returns
// fixed vectors by exact text match and records calls.
type MockEmbedder struct {
	mu      sync.Mutex
	vectors map[string][]float32
	Err     error
	calls   int
}

// NewMockEmbedder creates a mock with the given text-to-vector mapping.
func NewMockEmbedder(vectors map[string][]float32) *MockEmbedder {
	return &MockEmbedder{vectors: vectors}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.Err != nil {
		return nil, m.Err
	}
	vec, ok := m.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no mock vector for %q", text)
	}
	return vec, nil
}

// CallCount returns the number of Embed calls made.
func (m *MockEmbedder) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}
