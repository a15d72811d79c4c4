package documents

import (
	"github.com/avidor/statex/pkg/query"
	"github.com/avidor/statex/pkg/repository"
)

var projection = query.
	NewProjectionMap("public", "documents", "d").
	Project("id", "ID").
	Project("filename", "Filename").
	Project("doc_type", "Type").
	Project("size_bytes", "SizeBytes").
	Project("page_count", "PageCount").
	Project("storage_key", "StorageKey").
	Project("status", "Status").
	Project("currency", "Currency").
	Project("risk_profile", "RiskProfile").
	Project("error", "Error").
	Project("submitted_at", "SubmittedAt").
	Project("updated_at", "UpdatedAt")

var defaultSort = query.SortField{
	Field:      "SubmittedAt",
	Descending: true,
}

// Filters contains optional filtering criteria for document queries.
// Nil fields are ignored. Status, Type, and Currency use exact matching.
// Filename uses case-insensitive contains matching.
type Filters struct {
	Status   *string `json:"status,omitempty"`
	Filename *string `json:"filename,omitempty"`
	Type     *string `json:"type,omitempty"`
	Currency *string `json:"currency,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.
		WhereEquals("Status", f.Status).
		WhereContains("Filename", f.Filename).
		WhereEquals("Type", f.Type).
		WhereEquals("Currency", f.Currency)
}

func scanDocument(s repository.Scanner) (Document, error) {
	var d Document
	err := s.Scan(
		&d.ID,
		&d.Filename,
		&d.Type,
		&d.SizeBytes,
		&d.PageCount,
		&d.StorageKey,
		&d.Status,
		&d.Currency,
		&d.RiskProfile,
		&d.Error,
		&d.SubmittedAt,
		&d.UpdatedAt,
	)
	return d, err
}
