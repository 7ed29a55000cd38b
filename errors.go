package knowledge

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrGeneratorRequired is returned when a generator is not provided.
	ErrGeneratorRequired = errors.New("generator required")

	// ErrEmptyBatch is returned when ingestion is called with no documents.
	ErrEmptyBatch = errors.New("no documents provided")

	// ErrBatchTooLarge is returned when ingestion is called with more than
	// MaxBatchSize documents.
	ErrBatchTooLarge = errors.New("only 10 documents can be added at a time")

	// ErrNoMessages is returned when chat is called with an empty
	// conversation.
	ErrNoMessages = errors.New("no messages provided")
)

// Stage identifies where in the QA pipeline a failure occurred.
type Stage string

const (
	StageCondense Stage = "condense"
	StageEmbed    Stage = "embed"
	StageRetrieve Stage = "retrieve"
	StageAnswer   Stage = "answer"
)

// StageError wraps a model or retrieval failure with the pipeline stage it
// occurred in. No partial answer accompanies it.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s stage: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}
