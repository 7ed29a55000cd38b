package loader

import "context"

// Loader reads documents from some local export and shapes them for upload.
type Loader interface {
	Load(ctx context.Context) ([]File, error)
}

// File is one uploadable document. Path doubles as the document's
// reference, so loaders rewrite it to a public URL when they can.
type File struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}
