package runs

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avidor/statex/internal/statement"
	"github.com/avidor/statex/internal/validate"
	"github.com/avidor/statex/pkg/query"
	"github.com/avidor/statex/pkg/repository"
)

// System defines the read contract for persisted runs.
type System interface {
	Find(ctx context.Context, id uuid.UUID) (*Run, error)
	Latest(ctx context.Context, documentID uuid.UUID) (*Run, error)
	ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Run, error)
}

type repo struct {
	db     *sql.DB
	logger *slog.Logger
}

// New creates a run repository implementing the System interface.
func New(db *sql.DB, logger *slog.Logger) System {
	return &repo{
		db:     db,
		logger: logger.With("system", "runs"),
	}
}

func (r *repo) Find(ctx context.Context, id uuid.UUID) (*Run, error) {
	q, args := query.NewBuilder(projection).BuildSingle("ID", id)

	run, err := repository.QueryOne(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &run, nil
}

func (r *repo) Latest(ctx context.Context, documentID uuid.UUID) (*Run, error) {
	q := fmt.Sprintf(
		"SELECT %s FROM %s WHERE r.document_id = $1 ORDER BY r.seq DESC LIMIT 1",
		projection.Columns(),
		projection.From(),
	)

	run, err := repository.QueryOne(ctx, r.db, q, []any{documentID}, scanRun)
	if err != nil {
		return nil, repository.MapError(err, ErrNotFound, ErrDuplicate)
	}
	return &run, nil
}

func (r *repo) ListByDocument(ctx context.Context, documentID uuid.UUID) ([]Run, error) {
	qb := query.NewBuilder(projection, defaultSort).
		WhereEquals("DocumentID", documentID)

	q, args := qb.Build()

	items, err := repository.QueryMany(ctx, r.db, q, args, scanRun)
	if err != nil {
		return nil, fmt.Errorf("query runs for document %s: %w", documentID, err)
	}
	return items, nil
}

// Insert appends a new run for a document with the next sequence number.
// It takes a Querier so the caller can run it inside the transaction that
// also flips the document status; the two writes must land together.
func Insert(
	ctx context.Context,
	q repository.Querier,
	documentID uuid.UUID,
	ext *statement.Extraction,
	report *validate.Report,
) (*Run, error) {
	extJSON, err := json.Marshal(ext)
	if err != nil {
		return nil, fmt.Errorf("marshal extraction: %w", err)
	}

	repJSON, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal report: %w", err)
	}

	insertQ := `
		INSERT INTO extraction_runs(id, document_id, seq, extraction, report)
		VALUES (
			$1, $2,
			COALESCE((SELECT MAX(seq) FROM extraction_runs WHERE document_id = $2), 0) + 1,
			$3, $4
		)
		RETURNING id, document_id, seq, extraction, report, created_at`

	run, err := repository.QueryOne(
		ctx, q, insertQ,
		[]any{uuid.New(), documentID, extJSON, repJSON},
		scanRun,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	return &run, nil
}
