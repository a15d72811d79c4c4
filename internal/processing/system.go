package processing

import (
	"context"

	"github.com/google/uuid"

	"github.com/avidor/statex/internal/documents"
	"github.com/avidor/statex/internal/runs"
)

// ProcessCommand carries a document submission. TypeHint is an optional
// caller-supplied document type; unrecognized hints fall back to "other".
type ProcessCommand struct {
	Data     []byte
	Filename string
	TypeHint string
}

// Outcome is the result of one processing run: the document in its final
// state and the persisted run.
type Outcome struct {
	Document *documents.Document `json:"document"`
	Run      *runs.Run           `json:"run"`
}

// System defines the public contract for document processing operations.
type System interface {
	// Process registers a new document and runs the extraction pipeline
	// over it.
	Process(ctx context.Context, cmd ProcessCommand) (*Outcome, error)

	// Reprocess re-claims an existing document and appends a new run.
	// Returns documents.ErrProcessingInFlight while a run is active.
	Reprocess(ctx context.Context, documentID uuid.UUID) (*Outcome, error)

	// Runs lists a document's prior runs, newest first.
	Runs(ctx context.Context, documentID uuid.UUID) ([]runs.Run, error)
}
