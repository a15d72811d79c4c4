// Package runs persists the outcome of processing runs. Each run row holds
// the reconciled extraction and its validation report as one unit. Rows are
// insert-only: reprocessing a document appends a new run with a higher
// sequence number and never touches earlier ones, so before/after comparison
// across runs stays possible.
package runs

import (
	"time"

	"github.com/google/uuid"

	"github.com/avidor/statex/internal/statement"
	"github.com/avidor/statex/internal/validate"
)

// Run is one persisted processing run for a document.
type Run struct {
	ID         uuid.UUID            `json:"id"`
	DocumentID uuid.UUID            `json:"document_id"`
	Seq        int                  `json:"seq"`
	Extraction statement.Extraction `json:"extraction"`
	Report     validate.Report      `json:"report"`
	CreatedAt  time.Time            `json:"created_at"`
}
