package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/w-h-a/knowledge/store"
)

type record struct {
	chunk     store.Chunk
	namespace string
}

type memoryStore struct {
	options store.Options
	records map[string]record
	mtx     sync.RWMutex
}

func (s *memoryStore) Ensure(ctx context.Context) error {
	return nil
}

func (s *memoryStore) Upsert(ctx context.Context, namespace string, chunks []store.Chunk) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, chunk := range chunks {
		if len(chunk.Id) == 0 {
			chunk.Id = uuid.New().String()
		}

		cpy := make([]float32, len(chunk.Embedding))
		copy(cpy, chunk.Embedding)
		chunk.Embedding = cpy

		s.records[chunk.Id] = record{chunk: chunk, namespace: namespace}
	}

	return nil
}

func (s *memoryStore) Search(ctx context.Context, namespace string, vector []float32, limit int) ([]store.Match, error) {
	if limit < 1 {
		return nil, nil
	}

	s.mtx.RLock()
	defer s.mtx.RUnlock()

	candidates := make([]store.Match, 0, len(s.records))

	for _, rec := range s.records {
		if rec.namespace != namespace {
			continue
		}
		score := store.CosineSimilarity(vector, rec.chunk.Embedding)
		candidates = append(candidates, store.Match{Chunk: rec.chunk, Score: float32(score)})
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	return candidates, nil
}

func (s *memoryStore) DeleteAll(ctx context.Context, namespace string) (store.Stats, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for id, rec := range s.records {
		if len(namespace) == 0 || rec.namespace == namespace {
			delete(s.records, id)
		}
	}

	stats := store.Stats{
		Dimension:  s.options.Dimension,
		Namespaces: map[string]int{},
	}

	for _, rec := range s.records {
		stats.TotalVectors++
		stats.Namespaces[rec.namespace]++
	}

	return stats, nil
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	return &memoryStore{
		options: options,
		records: map[string]record{},
	}
}
