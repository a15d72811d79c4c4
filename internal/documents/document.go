// Package documents implements the document domain for statex.
// It provides types, data access, and business logic for document
// registration, metadata, blob storage integration, and the processing
// status state machine.
package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/avidor/statex/internal/statement"
)

// Processing status values. Transitions only move forward within a run:
// pending → processing → completed | failed. A completed or failed document
// may be claimed again for reprocessing, which starts a new run without
// touching the results of earlier ones.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Document represents a registered financial document with its metadata and
// blob storage reference. Currency and RiskProfile are populated from the
// reconciled extraction when processing completes.
type Document struct {
	ID          uuid.UUID              `json:"id"`
	Filename    string                 `json:"filename"`
	Type        statement.DocumentType `json:"type"`
	SizeBytes   int64                  `json:"size_bytes"`
	PageCount   *int                   `json:"page_count"`
	StorageKey  string                 `json:"storage_key"`
	Status      string                 `json:"status"`
	Currency    *string                `json:"currency"`
	RiskProfile *string                `json:"risk_profile"`
	Error       *string                `json:"error"`
	SubmittedAt time.Time              `json:"submitted_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
}

// CreateCommand carries the data needed to register a new document.
// Data holds the raw file bytes. PageCount is optional; nil is stored as NULL.
type CreateCommand struct {
	Data      []byte
	Filename  string
	Type      statement.DocumentType
	PageCount *int
}

// Claimable reports whether a document in the given status may be claimed
// for a processing run. A document already processing may not: at most one
// run per document is in flight.
func Claimable(status string) bool {
	switch status {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}
