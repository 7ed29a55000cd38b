package pinecone

import (
	"bytes"
	"context"
	"encoding/json"
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

const readinessPollInterval = 5 * time.Second

type pineconeStore struct {
	options store.Options
	control string
	cloud   string
	region  string
	client  *http.Client
}

func (s *pineconeStore) Ensure(ctx context.Context) error {
	described, err := s.describeIndex(ctx)
	if err != nil && !isNotFound(err) {
		return err
	}

	if described == nil {
		if err := s.createIndex(ctx); err != nil {
			return err
		}
	} else if described.Status.Ready {
		return nil
	}

	deadline := time.Now().Add(s.options.ProvisioningTimeout)

	for time.Now().Before(deadline) {
		described, err := s.describeIndex(ctx)
		if err == nil && described.Status.Ready {
			return nil
		}

		wait := readinessPollInterval
		if until := time.Until(deadline); until < wait {
			wait = until
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("%w: index %s", store.ErrProvisioningTimeout, s.options.Index)
}

func (s *pineconeStore) Upsert(ctx context.Context, namespace string, chunks []store.Chunk) error {
	vectors := make([]vector, 0, len(chunks))

	for _, chunk := range chunks {
		id := chunk.Id
		if len(id) == 0 {
			id = uuid.New().String()
		}

		metadata := map[string]any{textKey: chunk.Text}
		for k, v := range chunk.Metadata {
			metadata[k] = v
		}

		vectors = append(vectors, vector{
			Id:       id,
			Values:   chunk.Embedding,
			Metadata: metadata,
		})
	}

	req := upsertRequest{
		Vectors:   vectors,
		Namespace: namespace,
	}

	return s.do(ctx, http.MethodPost, s.options.Location+"/vectors/upsert", req, nil)
}

func (s *pineconeStore) Search(ctx context.Context, namespace string, vec []float32, limit int) ([]store.Match, error) {
	if limit < 1 {
		return nil, nil
	}

	req := queryRequest{
		Vector:          vec,
		TopK:            limit,
		Namespace:       namespace,
		IncludeMetadata: true,
	}

	var rsp queryResponse

	if err := s.do(ctx, http.MethodPost, s.options.Location+"/query", req, &rsp); err != nil {
		return nil, err
	}

	matches := make([]store.Match, 0, len(rsp.Matches))

	for _, m := range rsp.Matches {
		text := getsafe.String(m.Metadata, textKey)
		delete(m.Metadata, textKey)

		matches = append(matches, store.Match{
			Chunk: store.Chunk{
				Id:       m.Id,
				Text:     text,
				Metadata: m.Metadata,
			},
			Score: m.Score,
		})
	}

	return matches, nil
}

func (s *pineconeStore) DeleteAll(ctx context.Context, namespace string) (store.Stats, error) {
	namespaces := []string{namespace}

	// An empty namespace means a global reset. Serverless indexes only
	// delete per namespace, so enumerate them first.
	if len(namespace) == 0 {
		stats, err := s.describeStats(ctx)
		if err != nil {
			return store.Stats{}, err
		}
		namespaces = namespaces[:0]
		for ns := range stats.Namespaces {
			namespaces = append(namespaces, ns)
		}
	}

	for _, ns := range namespaces {
		req := deleteRequest{
			DeleteAll: true,
			Namespace: ns,
		}
		if err := s.do(ctx, http.MethodPost, s.options.Location+"/vectors/delete", req, nil); err != nil {
			return store.Stats{}, err
		}
	}

	stats, err := s.describeStats(ctx)
	if err != nil {
		return store.Stats{}, err
	}

	result := store.Stats{
		Dimension:    stats.Dimension,
		TotalVectors: stats.TotalVectorCount,
		Namespaces:   map[string]int{},
	}
	for ns, summary := range stats.Namespaces {
		result.Namespaces[ns] = summary.VectorCount
	}

	return result, nil
}

func (s *pineconeStore) describeStats(ctx context.Context) (*statsResponse, error) {
	var rsp statsResponse
	if err := s.do(ctx, http.MethodPost, s.options.Location+"/describe_index_stats", struct{}{}, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (s *pineconeStore) describeIndex(ctx context.Context) (*indexDescription, error) {
	var rsp indexDescription
	u := s.control + "/indexes/" + url.PathEscape(s.options.Index)
	if err := s.do(ctx, http.MethodGet, u, nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

func (s *pineconeStore) createIndex(ctx context.Context) error {
	req := createIndexRequest{
		Name:      s.options.Index,
		Dimension: s.options.Dimension,
		Metric:    s.options.Metric,
	}
	req.Spec.Serverless.Cloud = s.cloud
	req.Spec.Serverless.Region = s.region

	return s.do(ctx, http.MethodPost, s.control+"/indexes", req, nil)
}

func (s *pineconeStore) do(ctx context.Context, method string, u string, req any, rsp any) error {
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
	request.Header.Set("Api-Key", s.options.ApiKey)

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
		return fmt.Errorf("%w: pinecone http %d: %s", store.ErrStoreUnavailable, response.StatusCode, string(payload))
	}

	if rsp != nil && len(payload) > 0 {
		if err := json.Unmarshal(payload, rsp); err != nil {
			return err
		}
	}

	return nil
}

func isNotFound(err error) bool {
	return err != nil && strings.Contains(err.Error(), "http 404")
}

func NewStore(opts ...store.Option) store.Store {
	options := store.NewOptions(opts...)

	if len(options.Location) == 0 ||
		len(options.ApiKey) == 0 ||
		len(options.Index) == 0 {
		panic("missing location, api key, or index for pinecone store")
	}

	control := DefaultControlPlane
	if c, ok := ControlPlaneFrom(options.Context); ok {
		control = c
	}

	cloud, region := DefaultCloud, DefaultRegion
	if c, ok := CloudFrom(options.Context); ok {
		cloud = c
	}
	if r, ok := RegionFrom(options.Context); ok {
		region = r
	}

	return &pineconeStore{
		options: options,
		control: control,
		cloud:   cloud,
		region:  region,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}
