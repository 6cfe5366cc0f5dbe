package index

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryIndexSearchOrdersByCosine(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Add(ctx, []Chunk{
		{Text: "shire", Index: 0, Vector: []float32{1, 0, 0}},
		{Text: "mordor", Index: 1, Vector: []float32{0, 1, 0}},
		{Text: "rivendell", Index: 2, Vector: []float32{0.6, 0.8, 0}},
	}))

	got, err := idx.Search(ctx, []float32{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "mordor", got[0].Text)
	assert.Equal(t, "rivendell", got[1].Text)
	assert.InDelta(t, 1.0, got[0].Score, 1e-6)
}

func TestMemoryIndexRejectsDimensionMismatch(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	require.NoError(t, idx.Add(ctx, []Chunk{{Text: "a", Vector: []float32{1, 0}}}))
	assert.Error(t, idx.Add(ctx, []Chunk{{Text: "b", Vector: []float32{1, 0, 0}}}))
}

func TestMemoryIndexDefaultsAndClose(t *testing.T) {
	ctx := context.Background()
	idx := NewMemoryIndex()

	for i := 0; i < 6; i++ {
		require.NoError(t, idx.Add(ctx, []Chunk{{Index: i, Vector: []float32{1, 0}}}))
	}

	got, err := idx.Search(ctx, []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	require.NoError(t, idx.Close(ctx))
	assert.Equal(t, 0, idx.Len())
}
