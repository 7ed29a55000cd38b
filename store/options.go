package store

import (
	"context"
	"time"
)

const (
	DefaultDimension           = 1536
	DefaultMetric              = "cosine"
	DefaultProvisioningTimeout = 180 * time.Second
)

type Option func(*Options)

type Options struct {
	Location            string
	ApiKey              string
	Index               string
	Dimension           int
	Metric              string
	ProvisioningTimeout time.Duration
	Context             context.Context
}

func WithLocation(loc string) Option {
	return func(o *Options) {
		o.Location = loc
	}
}

func WithApiKey(apiKey string) Option {
	return func(o *Options) {
		o.ApiKey = apiKey
	}
}

func WithIndex(index string) Option {
	return func(o *Options) {
		o.Index = index
	}
}

func WithDimension(dimension int) Option {
	return func(o *Options) {
		o.Dimension = dimension
	}
}

func WithMetric(metric string) Option {
	return func(o *Options) {
		o.Metric = metric
	}
}

func WithProvisioningTimeout(timeout time.Duration) Option {
	return func(o *Options) {
		o.ProvisioningTimeout = timeout
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Dimension:           DefaultDimension,
		Metric:              DefaultMetric,
		ProvisioningTimeout: DefaultProvisioningTimeout,
		Context:             context.Background(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
