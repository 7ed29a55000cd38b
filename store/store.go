package store

import "context"

// Store is the sole point of contact with the backing vector index. Every
// operation except Ensure is scoped by namespace; an empty namespace names
// the default partition, except for DeleteAll where it means the whole
// index.
type Store interface {
	// Ensure provisions the index or schema if it does not exist yet and
	// waits for it to become ready. Idempotent.
	Ensure(ctx context.Context) error

	// Upsert writes embedded chunks into the given namespace. It does not
	// retry; transport failures wrap ErrStoreUnavailable.
	Upsert(ctx context.Context, namespace string, chunks []Chunk) error

	// Search returns at most limit nearest neighbors ordered by descending
	// similarity score. Tie order is store-native and not stable.
	Search(ctx context.Context, namespace string, vector []float32, limit int) ([]Match, error)

	// DeleteAll irreversibly removes every vector in the namespace. An
	// empty namespace resets the entire index across all namespaces.
	DeleteAll(ctx context.Context, namespace string) (Stats, error)
}
