package pinecone

import (
	"context"

	"github.com/w-h-a/knowledge/store"
)

const (
	DefaultControlPlane = "https://api.pinecone.io"
	DefaultCloud        = "aws"
	DefaultRegion       = "us-east-1"
)

type controlPlaneKey struct{}

func WithControlPlane(u string) store.Option {
	return func(o *store.Options) {
		o.Context = context.WithValue(o.Context, controlPlaneKey{}, u)
	}
}

func ControlPlaneFrom(ctx context.Context) (string, bool) {
	u, ok := ctx.Value(controlPlaneKey{}).(string)
	return u, ok
}

type cloudKey struct{}

func WithCloud(cloud string) store.Option {
	return func(o *store.Options) {
		o.Context = context.WithValue(o.Context, cloudKey{}, cloud)
	}
}

func CloudFrom(ctx context.Context) (string, bool) {
	c, ok := ctx.Value(cloudKey{}).(string)
	return c, ok
}

type regionKey struct{}

func WithRegion(region string) store.Option {
	return func(o *store.Options) {
		o.Context = context.WithValue(o.Context, regionKey{}, region)
	}
}

func RegionFrom(ctx context.Context) (string, bool) {
	r, ok := ctx.Value(regionKey{}).(string)
	return r, ok
}
