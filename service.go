package knowledge

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/w-h-a/knowledge/embedder"
	"github.com/w-h-a/knowledge/generator"
	"github.com/w-h-a/knowledge/splitter"
	"github.com/w-h-a/knowledge/store"
)

const (
	// DefaultChunkSize and DefaultChunkOverlap govern how documents are
	// cut before embedding.
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 140

	// MaxBatchSize caps how many documents a single ingestion call may
	// carry; each document costs synchronous embedding calls.
	MaxBatchSize = 10

	// DefaultTopK is how many chunks a search or chat turn retrieves.
	DefaultTopK = 10
)

// Service is the ingestion and retrieval pipeline. It owns no state
// between calls; everything durable lives in the vector store.
type Service struct {
	store     store.Store
	embedder  embedder.Embedder
	generator generator.Generator
	splitter  *splitter.Splitter
	logger    *slog.Logger
}

func New(s store.Store, e embedder.Embedder, g generator.Generator, opts ...Option) (*Service, error) {
	if s == nil {
		return nil, ErrStoreRequired
	}
	if e == nil {
		return nil, ErrEmbedderRequired
	}
	if g == nil {
		return nil, ErrGeneratorRequired
	}

	options := NewOptions(opts...)

	split, err := splitter.New(
		splitter.WithChunkSize(options.ChunkSize),
		splitter.WithChunkOverlap(options.ChunkOverlap),
	)
	if err != nil {
		return nil, err
	}

	return &Service{
		store:     s,
		embedder:  e,
		generator: g,
		splitter:  split,
		logger:    options.Logger,
	}, nil
}

// Ingest splits each document into chunks, embeds them, and writes them
// into the namespace. The returned count is the number of chunks produced
// by splitting, not a durability guarantee: per-document embed or upsert
// failures are logged and skipped without aborting the batch.
func (s *Service) Ingest(ctx context.Context, documents []Document, namespace string) (int, error) {
	if len(documents) == 0 {
		return 0, ErrEmptyBatch
	}

	if len(documents) > MaxBatchSize {
		return 0, ErrBatchTooLarge
	}

	counter := 0

	for _, document := range documents {
		parts := s.splitter.Split(document.Content)

		counter += len(parts)

		chunks := make([]store.Chunk, 0, len(parts))

		var failed error

		for i, part := range parts {
			vector, err := s.embedder.Embed(ctx, part)
			if err != nil {
				failed = err
				break
			}

			chunks = append(chunks, store.Chunk{
				Id:        uuid.New().String(),
				Text:      part,
				Metadata:  mergeMetadata(document.Metadata, map[string]any{"chunk": i}),
				Embedding: vector,
			})
		}

		if failed == nil && len(chunks) > 0 {
			failed = s.store.Upsert(ctx, namespace, chunks)
		}

		if failed != nil {
			s.logger.Error("failed to insert document into vector store", "document", document.reference(), "error", failed)
			continue
		}
	}

	s.logger.Info("inserted chunks into vector store", "chunks", counter, "namespace", namespace)

	return counter, nil
}

// Search embeds the query and returns the raw nearest neighbors with
// scores; no generation happens.
func (s *Service) Search(ctx context.Context, query string, namespace string) ([]store.Match, error) {
	s.logger.Info("querying vector store", "namespace", namespace)

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &StageError{Stage: StageEmbed, Err: err}
	}

	matches, err := s.store.Search(ctx, namespace, vector, DefaultTopK)
	if err != nil {
		return nil, &StageError{Stage: StageRetrieve, Err: err}
	}

	s.logger.Info("found matches", "matches", len(matches), "query", query)

	return matches, nil
}

// Answer retrieves the single best chunk for the question and asks the
// model to answer from it.
func (s *Service) Answer(ctx context.Context, question string, namespace string) (Answer, error) {
	vector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return Answer{}, &StageError{Stage: StageEmbed, Err: err}
	}

	matches, err := s.store.Search(ctx, namespace, vector, 1)
	if err != nil {
		return Answer{}, &StageError{Stage: StageRetrieve, Err: err}
	}

	references := newReferenceSet()
	contexts := make([]string, 0, len(matches))

	for _, match := range matches {
		if ref := Reference(match.Metadata); len(ref) > 0 {
			references.add(ref)
		}
		contexts = append(contexts, match.Text)
	}

	result, err := s.generator.Generate(ctx, answerPrompt("", strings.Join(contexts, "\n"), question))
	if err != nil {
		return Answer{}, &StageError{Stage: StageAnswer, Err: err}
	}

	return Answer{
		Question:   question,
		Answer:     strings.TrimSpace(result),
		References: references.values(),
	}, nil
}

// Reset irreversibly deletes every vector across all namespaces.
func (s *Service) Reset(ctx context.Context) (store.Stats, error) {
	s.logger.Warn("resetting vector store")
	return s.store.DeleteAll(ctx, "")
}

// mergeMetadata lays chunk-level fields over document-level ones; chunk
// keys win on collision.
func mergeMetadata(document map[string]any, chunk map[string]any) map[string]any {
	merged := make(map[string]any, len(document)+len(chunk))
	for k, v := range document {
		merged[k] = v
	}
	for k, v := range chunk {
		merged[k] = v
	}
	return merged
}
