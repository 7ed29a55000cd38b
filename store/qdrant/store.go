package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/w-h-a/knowledge/store"
	getsafe "github.com/w-h-a/knowledge/util/get_safe"
)

type qdrantStore struct {
	options store.Options
	client  *http.Client
}

func (s *qdrantStore) Ensure(ctx context.Context) error {
	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}

	if exists {
		return nil
	}

	return s.createCollection(ctx)
}

func (s *qdrantStore) Upsert(ctx context.Context, namespace string, chunks []store.Chunk) error {
	points := make([]map[string]any, 0, len(chunks))

	for _, chunk := range chunks {
		id := chunk.Id
		if len(id) == 0 {
			id = uuid.New().String()
		}

		payload := map[string]any{
			"namespace": namespace,
			"text":      chunk.Text,
			"metadata":  chunk.Metadata,
		}

		points = append(points, map[string]any{
			"id":      id,
			"vector":  chunk.Embedding,
			"payload": payload,
		})
	}

	req := map[string]any{
		"points": points,
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points?wait=true", url.PathEscape(s.options.Index))

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return fmt.Errorf("%w: %s", store.ErrStoreUnavailable, rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStore) Search(ctx context.Context, namespace string, vector []float32, limit int) ([]store.Match, error) {
	if limit < 1 {
		return nil, nil
	}

	req := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"filter": map[string]any{
			"must": []map[string]any{
				{
					"key":   "namespace",
					"match": map[string]any{"value": namespace},
				},
			},
		},
	}

	var rsp qdrantEnvelope[[]qdrantPointResult]

	path := fmt.Sprintf("/collections/%s/points/search", url.PathEscape(s.options.Index))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return nil, err
	}

	matches := make([]store.Match, 0, len(rsp.Result))

	for _, point := range rsp.Result {
		matches = append(matches, store.Match{
			Chunk: store.Chunk{
				Id:       point.Id,
				Text:     getsafe.String(point.Payload, "text"),
				Metadata: getsafe.Metadata(point.Payload, "metadata"),
			},
			Score: float32(point.Score),
		})
	}

	return matches, nil
}

func (s *qdrantStore) DeleteAll(ctx context.Context, namespace string) (store.Stats, error) {
	filter := map[string]any{}

	if len(namespace) > 0 {
		filter["must"] = []map[string]any{
			{
				"key":   "namespace",
				"match": map[string]any{"value": namespace},
			},
		}
	}

	req := map[string]any{
		"filter": filter,
	}

	var rsp qdrantEnvelope[json.RawMessage]

	path := fmt.Sprintf("/collections/%s/points/delete?wait=true", url.PathEscape(s.options.Index))

	if err := s.do(ctx, http.MethodPost, path, req, &rsp); err != nil {
		return store.Stats{}, err
	}

	var described qdrantEnvelope[qdrantCollectionInfo]

	infoPath := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Index))

	if err := s.do(ctx, http.MethodGet, infoPath, nil, &described); err != nil {
		return store.Stats{}, err
	}

	return store.Stats{
		Dimension:    s.options.Dimension,
		TotalVectors: described.Result.PointsCount,
	}, nil
}

func (s *qdrantStore) collectionExists(ctx context.Context) (bool, error) {
	path := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Index))

	var rsp qdrantEnvelope[json.RawMessage]

	err := s.do(ctx, http.MethodGet, path, nil, &rsp)
	if err != nil {
		if strings.Contains(err.Error(), "404") {
			return false, nil
		}
		return false, err
	}

	return strings.EqualFold(rsp.Status.State, "ok"), nil
}

func (s *qdrantStore) createCollection(ctx context.Context) error {
	distance := "Cosine"
	if strings.EqualFold(s.options.Metric, "euclidean") {
		distance = "Euclid"
	} else if strings.EqualFold(s.options.Metric, "dotproduct") {
		distance = "Dot"
	}

	req := map[string]any{
		"vectors": map[string]any{
			"size":     s.options.Dimension,
			"distance": distance,
		},
	}

	path := fmt.Sprintf("/collections/%s", url.PathEscape(s.options.Index))

	var rsp qdrantEnvelope[json.RawMessage]

	if err := s.do(ctx, http.MethodPut, path, req, &rsp); err != nil {
		return err
	}

	if !strings.EqualFold(rsp.Status.State, "ok") && len(rsp.Status.Error) > 0 {
		return errors.New(rsp.Status.Error)
	}

	return nil
}

func (s *qdrantStore) do(ctx context.Context, method string, path string, req any, rsp any) error {
	u := s.options.Location + path

	var buf io.Reader
	if req != nil {
		data, err := json.Marshal(req)
		if err != nil {
			return err
		}
		buf = bytes.NewReader(data)
	}

	request, err := http.NewRequestWithContext(ctx, method, u, buf)
	if err != nil {
		return err
	}

	request.Header.Set("Content-Type", "application/json")

	if len(s.options.ApiKey) > 0 {
		request.Header.Set("api-key", s.options.ApiKey)
		request.Header.Set("Authorization", "Bearer "+s.options.ApiKey)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrStoreUnavailable, err)
	}

	if response.StatusCode >= 400 {
		return fmt.Errorf("%w: qdrant http %d: %s", store.ErrStoreUnavailable, response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.Index) == 0 ||
		options.Dimension == 0 {
		panic("missing location, index, or dimension for qdrant store")
	}

	return &qdrantStore{
		options: options,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}
