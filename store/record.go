package store

// Chunk is the unit of embedding and storage: a bounded slice of a
// document plus the metadata it inherited from it.
type Chunk struct {
	Id        string         `json:"id"`
	Text      string         `json:"text"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Embedding []float32      `json:"embedding,omitempty"`
}

// Match is a chunk returned from a similarity search.
type Match struct {
	Chunk
	Score float32 `json:"score"`
}

// Stats describes the index after a destructive operation.
type Stats struct {
	Dimension    int            `json:"dimension"`
	TotalVectors int            `json:"totalVectors"`
	Namespaces   map[string]int `json:"namespaces,omitempty"`
}
