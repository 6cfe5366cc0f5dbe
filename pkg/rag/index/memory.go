package index

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MemoryIndex is a brute-force cosine index kept in process memory.
type MemoryIndex struct {
	mu     sync.RWMutex
	chunks []Chunk
}

var _ VectorIndex = (*MemoryIndex)(nil)

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// MemoryBuilder returns a Builder producing fresh in-memory indexes.
func MemoryBuilder() Builder {
	return func(ctx context.Context) (VectorIndex, error) {
		return NewMemoryIndex(), nil
	}
}

func (m *MemoryIndex) Add(ctx context.Context, chunks []Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range chunks {
		if len(m.chunks) > 0 && len(c.Vector) != len(m.chunks[0].Vector) {
			return fmt.Errorf("vector dimension mismatch: got %d, want %d", len(c.Vector), len(m.chunks[0].Vector))
		}
		m.chunks = append(m.chunks, c)
	}
	return nil
}

func (m *MemoryIndex) Search(ctx context.Context, vector []float32, k int) ([]Chunk, error) {
	if k <= 0 {
		k = 4
	}

	m.mu.RLock()
	scored := make([]Chunk, 0, len(m.chunks))
	for _, c := range m.chunks {
		if len(c.Vector) != len(vector) {
			continue
		}
		c.Score = dot(c.Vector, vector)
		scored = append(scored, c)
	}
	m.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

func (m *MemoryIndex) Close(ctx context.Context) error {
	m.mu.Lock()
	m.chunks = nil
	m.mu.Unlock()
	return nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
