package service

import (
	"context"
	"log/slog"
)

type Option func(*Options)

type Options struct {
	MultiTenant bool
	Logger      *slog.Logger
	Context     context.Context
}

// WithMultiTenant scopes every namespace by the caller's identity key.
func WithMultiTenant(enabled bool) Option {
	return func(o *Options) {
		o.MultiTenant = enabled
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
		Logger:  slog.Default(),
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
