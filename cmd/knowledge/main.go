package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/w-h-a/knowledge"
	"github.com/w-h-a/knowledge/embedder"
	googleembedder "github.com/w-h-a/knowledge/embedder/google"
	openaiembedder "github.com/w-h-a/knowledge/embedder/openai"
	"github.com/w-h-a/knowledge/generator"
	anthropicgenerator "github.com/w-h-a/knowledge/generator/anthropic"
	openaigenerator "github.com/w-h-a/knowledge/generator/openai"
	"github.com/w-h-a/knowledge/internal/service"
	"github.com/w-h-a/knowledge/store"
	memorystore "github.com/w-h-a/knowledge/store/memory"
	pineconestore "github.com/w-h-a/knowledge/store/pinecone"
	postgresstore "github.com/w-h-a/knowledge/store/postgres"
	qdrantstore "github.com/w-h-a/knowledge/store/qdrant"
)

var (
	cfg struct {
		// Server config
		Address string `help:"Address for the HTTP server to listen on" default:":3000" env:"ADDRESS"`

		// Store config
		Store          string        `help:"Vector store to use (memory, pinecone, qdrant, postgres)" default:"memory" env:"STORE"`
		StoreLocation  string        `help:"Address of the vector store" default:"" env:"STORE_LOCATION"`
		StoreApiKey    string        `help:"API key for the vector store" default:"" env:"STORE_API_KEY"`
		Index          string        `help:"Name of the index or collection" default:"knowledge" env:"INDEX"`
		Dimension      int           `help:"Dimension of the embedding vectors" default:"1536" env:"DIMENSION"`
		Metric         string        `help:"Similarity metric for the index" default:"cosine" env:"METRIC"`
		ProvisionAfter time.Duration `help:"How long to wait for a new index to come up" default:"180s" env:"PROVISION_AFTER"`

		// Embedder config
		Embedder      string `help:"Embedding provider to use (openai, google)" default:"openai" env:"EMBEDDER"`
		EmbedderKey   string `help:"API key for the embedding provider" default:"" env:"EMBEDDER_KEY"`
		EmbedderModel string `help:"Model identifier for vector embeddings" default:"" env:"EMBEDDER_MODEL"`

		// Generator config
		Generator      string `help:"Completion provider to use (openai, anthropic)" default:"openai" env:"GENERATOR"`
		GeneratorKey   string `help:"API key for the completion provider" default:"" env:"GENERATOR_KEY"`
		GeneratorModel string `help:"Model identifier for completions" default:"" env:"GENERATOR_MODEL"`

		// Pipeline config
		ChunkSize    int  `help:"Maximum chunk size in characters" default:"1000" env:"CHUNK_SIZE"`
		ChunkOverlap int  `help:"Overlap between adjacent chunks in characters" default:"140" env:"CHUNK_OVERLAP"`
		MultiTenant  bool `help:"Scope namespaces by the caller's identity key" default:"false" env:"MULTI_TENANT"`
	}
)

func main() {
	_ = godotenv.Load()
	_ = kong.Parse(&cfg)

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s := newStore()

	if err := s.Ensure(ctx); err != nil {
		logger.Error("failed to ensure index", "error", err)
		os.Exit(1)
	}

	k, err := knowledge.New(
		s,
		newEmbedder(),
		newGenerator(),
		knowledge.WithChunkSize(cfg.ChunkSize),
		knowledge.WithChunkOverlap(cfg.ChunkOverlap),
		knowledge.WithLogger(logger),
	)
	if err != nil {
		logger.Error("failed to create knowledge service", "error", err)
		os.Exit(1)
	}

	handler := service.New(
		k,
		service.WithMultiTenant(cfg.MultiTenant),
		service.WithLogger(logger),
	)

	server := &http.Server{
		Addr:    cfg.Address,
		Handler: handler.Router(),
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("listening", "address", cfg.Address)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut down cleanly", "error", err)
		}
	}
}

func newStore() store.Store {
	opts := []store.Option{
		store.WithLocation(cfg.StoreLocation),
		store.WithApiKey(cfg.StoreApiKey),
		store.WithIndex(cfg.Index),
		store.WithDimension(cfg.Dimension),
		store.WithMetric(cfg.Metric),
		store.WithProvisioningTimeout(cfg.ProvisionAfter),
	}

	switch cfg.Store {
	case "memory":
		return memorystore.NewStore(opts...)
	case "pinecone":
		return pineconestore.NewStore(opts...)
	case "qdrant":
		return qdrantstore.NewStore(opts...)
	case "postgres":
		return postgresstore.NewStore(opts...)
	default:
		panic(fmt.Sprintf("unknown store %q", cfg.Store))
	}
}

func newEmbedder() embedder.Embedder {
	opts := []embedder.Option{
		embedder.WithApiKey(cfg.EmbedderKey),
	}
	if len(cfg.EmbedderModel) > 0 {
		opts = append(opts, embedder.WithModel(cfg.EmbedderModel))
	}

	switch cfg.Embedder {
	case "openai":
		return openaiembedder.NewEmbedder(opts...)
	case "google":
		return googleembedder.NewEmbedder(opts...)
	default:
		panic(fmt.Sprintf("unknown embedder %q", cfg.Embedder))
	}
}

func newGenerator() generator.Generator {
	opts := []generator.Option{
		generator.WithApiKey(cfg.GeneratorKey),
	}
	if len(cfg.GeneratorModel) > 0 {
		opts = append(opts, generator.WithModel(cfg.GeneratorModel))
	}

	switch cfg.Generator {
	case "openai":
		return openaigenerator.NewGenerator(opts...)
	case "anthropic":
		return anthropicgenerator.NewGenerator(opts...)
	default:
		panic(fmt.Sprintf("unknown generator %q", cfg.Generator))
	}
}
