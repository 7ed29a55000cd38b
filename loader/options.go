package loader

import "context"

type Option func(o *Options)

type Options struct {
	Dir          string
	BaseUrl      string
	WorkspaceUrl string
	Context      context.Context
}

func WithDir(dir string) Option {
	return func(o *Options) {
		o.Dir = dir
	}
}

// WithBaseUrl sets the site root that document paths are rewritten under.
func WithBaseUrl(url string) Option {
	return func(o *Options) {
		o.BaseUrl = url
	}
}

// WithWorkspaceUrl sets the Slack workspace root used to build archive links.
func WithWorkspaceUrl(url string) Option {
	return func(o *Options) {
		o.WorkspaceUrl = url
	}
}

func NewOptions(opts ...Option) Options {
	options := Options{
		Context: context.Background(),
	}

	for _, fn := range opts {
		fn(&options)
	}

	return options
}
