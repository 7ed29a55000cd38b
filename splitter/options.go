package splitter

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 140
)

type Option func(*Options)

type Options struct {
	ChunkSize    int
	ChunkOverlap int
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

func NewOptions(opts ...Option) Options {
	options := Options{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(&options)
	}
	return options
}
