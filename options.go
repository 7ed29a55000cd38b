package knowledge

import (
	"context"
	"log/slog"
)

type Option func(*Options)

type Options struct {
	ChunkSize    int
	ChunkOverlap int
	Logger       *slog.Logger
	Context      context.Context
}

func WithChunkSize(size int) Option {
	return func(o *Options) {
		o.ChunkSize = size
	}
}

func WithChunkOverlap(overlap int) Option {
	return func(o *Options) {
		o.ChunkOverlap = overlap
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		if logger != nil {
			o.Logger = logger
		}
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		Logger:       slog.Default(),
		Context:      context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}

type ChatOption func(*ChatOptions)

type ChatOptions struct {
	SystemPrompt string
	Model        string
	Context      context.Context
}

// WithSystemPrompt prepends a system prompt to the answer stage.
func WithSystemPrompt(prompt string) ChatOption {
	return func(o *ChatOptions) {
		o.SystemPrompt = prompt
	}
}

// WithModel overrides the generator's configured model for this chat turn.
func WithModel(model string) ChatOption {
	return func(o *ChatOptions) {
		o.Model = model
	}
}

func NewChatOptions(opts ...ChatOption) ChatOptions {
	options := ChatOptions{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
