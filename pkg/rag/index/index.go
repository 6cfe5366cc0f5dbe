package index

import "context"

// Chunk is one embedded passage fragment.
type Chunk struct {
	Text   string
	Index  int
	Vector []float32
	Score  float32
}

// VectorIndex stores chunk vectors for one RAG session and answers
// nearest-neighbour queries. Vectors are expected to be unit length.
type VectorIndex interface {
	Add(ctx context.Context, chunks []Chunk) error
	Search(ctx context.Context, vector []float32, k int) ([]Chunk, error)
	Close(ctx context.Context) error
}

// Builder creates an empty index for a new RAG session.
type Builder func(ctx context.Context) (VectorIndex, error)
