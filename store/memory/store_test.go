package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/knowledge/store"
)

func seed(t *testing.T, s store.Store) {
	t.Helper()

	err := s.Upsert(context.Background(), "docs", []store.Chunk{
		{Id: "a", Text: "alpha", Embedding: []float32{1, 0, 0}},
		{Id: "b", Text: "beta", Embedding: []float32{0.9, 0.1, 0}},
		{Id: "c", Text: "gamma", Embedding: []float32{0, 1, 0}},
	})
	require.NoError(t, err)

	err = s.Upsert(context.Background(), "blog", []store.Chunk{
		{Id: "d", Text: "delta", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)
}

func TestSearchOrdersByScore(t *testing.T) {
	s := NewStore()
	seed(t, s)

	matches, err := s.Search(context.Background(), "docs", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 3)

	assert.Equal(t, "a", matches[0].Id)
	assert.Equal(t, "b", matches[1].Id)
	assert.Equal(t, "c", matches[2].Id)
	assert.Greater(t, matches[0].Score, matches[1].Score)
}

func TestSearchHonorsLimit(t *testing.T) {
	s := NewStore()
	seed(t, s)

	matches, err := s.Search(context.Background(), "docs", []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = s.Search(context.Background(), "docs", []float32{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestNamespaceIsolation(t *testing.T) {
	s := NewStore()
	seed(t, s)

	matches, err := s.Search(context.Background(), "blog", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "d", matches[0].Id)

	matches, err = s.Search(context.Background(), "unknown", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDeleteAllNamespace(t *testing.T) {
	s := NewStore()
	seed(t, s)

	stats, err := s.DeleteAll(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalVectors)
	assert.Equal(t, map[string]int{"blog": 1}, stats.Namespaces)

	matches, err := s.Search(context.Background(), "docs", []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDeleteAllGlobal(t *testing.T) {
	s := NewStore()
	seed(t, s)

	stats, err := s.DeleteAll(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalVectors)

	for _, ns := range []string{"docs", "blog"} {
		matches, err := s.Search(context.Background(), ns, []float32{1, 0, 0}, 10)
		require.NoError(t, err)
		assert.Empty(t, matches)
	}
}

func TestUpsertAssignsIds(t *testing.T) {
	s := NewStore()

	err := s.Upsert(context.Background(), "docs", []store.Chunk{
		{Text: "no id", Embedding: []float32{1, 0, 0}},
	})
	require.NoError(t, err)

	matches, err := s.Search(context.Background(), "docs", []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.NotEmpty(t, matches[0].Id)
}
