package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/w-h-a/knowledge/store"
)

type fakePinecone struct {
	mu      sync.Mutex
	upserts []upsertRequest
	queries []queryRequest
	deletes []deleteRequest
	matches []queryMatch
	stats   statsResponse
	ready   bool
	exists  bool
	headers []string
}

func (f *fakePinecone) handler() http.Handler {
	router := http.NewServeMux()

	router.HandleFunc("POST /vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.headers = append(f.headers, r.Header.Get("Api-Key"))
		var req upsertRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.upserts = append(f.upserts, req)
		_ = json.NewEncoder(w).Encode(map[string]int{"upsertedCount": len(req.Vectors)})
	})

	router.HandleFunc("POST /query", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.headers = append(f.headers, r.Header.Get("Api-Key"))
		var req queryRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.queries = append(f.queries, req)
		_ = json.NewEncoder(w).Encode(queryResponse{Matches: f.matches})
	})

	router.HandleFunc("POST /vectors/delete", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		var req deleteRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		f.deletes = append(f.deletes, req)
		w.Write([]byte("{}"))
	})

	router.HandleFunc("POST /describe_index_stats", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.stats)
	})

	router.HandleFunc("GET /indexes/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if !f.exists {
			http.Error(w, `{"error": "not found"}`, http.StatusNotFound)
			return
		}
		rsp := indexDescription{Name: r.PathValue("name")}
		rsp.Status.Ready = f.ready
		_ = json.NewEncoder(w).Encode(rsp)
	})

	router.HandleFunc("POST /indexes", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.exists = true
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("{}"))
	})

	return router
}

func newTestStore(t *testing.T, fake *fakePinecone, opts ...store.Option) store.Store {
	t.Helper()

	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	base := []store.Option{
		store.WithLocation(server.URL),
		store.WithApiKey("secret"),
		store.WithIndex("knowledge"),
		WithControlPlane(server.URL),
	}

	return NewStore(append(base, opts...)...)
}

func TestUpsert(t *testing.T) {
	fake := &fakePinecone{}
	s := newTestStore(t, fake)

	err := s.Upsert(context.Background(), "docs", []store.Chunk{
		{
			Text:      "hello",
			Metadata:  map[string]any{"url": "https://example.com"},
			Embedding: []float32{0.1, 0.2},
		},
	})
	require.NoError(t, err)

	require.Len(t, fake.upserts, 1)
	req := fake.upserts[0]
	assert.Equal(t, "docs", req.Namespace)
	require.Len(t, req.Vectors, 1)

	vec := req.Vectors[0]
	assert.NotEmpty(t, vec.Id)
	assert.Equal(t, []float32{0.1, 0.2}, vec.Values)
	assert.Equal(t, "hello", vec.Metadata["text"])
	assert.Equal(t, "https://example.com", vec.Metadata["url"])

	assert.Equal(t, "secret", fake.headers[0])
}

func TestSearch(t *testing.T) {
	fake := &fakePinecone{
		matches: []queryMatch{
			{
				Id:       "1",
				Score:    0.9,
				Metadata: map[string]any{"text": "hello", "url": "https://example.com"},
			},
		},
	}
	s := newTestStore(t, fake)

	matches, err := s.Search(context.Background(), "docs", []float32{0.1, 0.2}, 3)
	require.NoError(t, err)

	require.Len(t, fake.queries, 1)
	assert.Equal(t, "docs", fake.queries[0].Namespace)
	assert.Equal(t, 3, fake.queries[0].TopK)
	assert.True(t, fake.queries[0].IncludeMetadata)

	require.Len(t, matches, 1)
	assert.Equal(t, "hello", matches[0].Text)
	assert.Equal(t, float32(0.9), matches[0].Score)
	assert.Equal(t, "https://example.com", matches[0].Metadata["url"])
	assert.NotContains(t, matches[0].Metadata, "text")
}

func TestDeleteAllScoped(t *testing.T) {
	fake := &fakePinecone{}
	s := newTestStore(t, fake)

	_, err := s.DeleteAll(context.Background(), "docs")
	require.NoError(t, err)

	require.Len(t, fake.deletes, 1)
	assert.True(t, fake.deletes[0].DeleteAll)
	assert.Equal(t, "docs", fake.deletes[0].Namespace)
}

func TestDeleteAllGlobal(t *testing.T) {
	fake := &fakePinecone{
		stats: statsResponse{
			Namespaces: map[string]namespaceSummary{
				"docs":  {VectorCount: 3},
				"slack": {VectorCount: 5},
			},
			Dimension:        1536,
			TotalVectorCount: 8,
		},
	}
	s := newTestStore(t, fake)

	stats, err := s.DeleteAll(context.Background(), "")
	require.NoError(t, err)

	require.Len(t, fake.deletes, 2)
	deleted := map[string]bool{}
	for _, d := range fake.deletes {
		assert.True(t, d.DeleteAll)
		deleted[d.Namespace] = true
	}
	assert.True(t, deleted["docs"])
	assert.True(t, deleted["slack"])

	assert.Equal(t, 1536, stats.Dimension)
	assert.Equal(t, 8, stats.TotalVectors)
}

func TestEnsureExistingReadyIndex(t *testing.T) {
	fake := &fakePinecone{exists: true, ready: true}
	s := newTestStore(t, fake)

	require.NoError(t, s.Ensure(context.Background()))
}

func TestEnsureCreatesMissingIndex(t *testing.T) {
	fake := &fakePinecone{ready: true}
	s := newTestStore(t, fake)

	require.NoError(t, s.Ensure(context.Background()))
	assert.True(t, fake.exists)
}

func TestEnsureTimesOut(t *testing.T) {
	fake := &fakePinecone{exists: true, ready: false}
	s := newTestStore(t, fake, store.WithProvisioningTimeout(time.Millisecond))

	err := s.Ensure(context.Background())
	require.ErrorIs(t, err, store.ErrProvisioningTimeout)
}

func TestTransportErrorsAreUnavailable(t *testing.T) {
	s := NewStore(
		store.WithLocation("http://127.0.0.1:1"),
		store.WithApiKey("secret"),
		store.WithIndex("knowledge"),
	)

	err := s.Upsert(context.Background(), "docs", []store.Chunk{{Text: "x"}})
	require.ErrorIs(t, err, store.ErrStoreUnavailable)
}

func TestNewStoreRequiresConfig(t *testing.T) {
	assert.Panics(t, func() {
		NewStore(store.WithLocation("http://localhost"))
	})
}
