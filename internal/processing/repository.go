// Package processing orchestrates extraction runs: it claims a document,
// executes the pipeline graph, and persists the outcome atomically with the
// document's status transition.
package processing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/avidor/statex/internal/documents"
	"github.com/avidor/statex/internal/pipeline"
	"github.com/avidor/statex/internal/runs"
	"github.com/avidor/statex/internal/statement"
	"github.com/avidor/statex/pkg/repository"
)

type repo struct {
	db     *sql.DB
	rt     *pipeline.Runtime
	docs   documents.System
	runs   runs.System
	logger *slog.Logger
}

// New creates a processing system around the pipeline runtime. The runtime's
// Documents system and the docs argument are the same instance; the runtime
// holds it for the graph's init node, the repo for claim bookkeeping.
func New(
	db *sql.DB,
	rt *pipeline.Runtime,
	docs documents.System,
	runSystem runs.System,
	logger *slog.Logger,
) System {
	return &repo{
		db:     db,
		rt:     rt,
		docs:   docs,
		runs:   runSystem,
		logger: logger.With("system", "processing"),
	}
}

func (r *repo) Process(ctx context.Context, cmd ProcessCommand) (*Outcome, error) {
	doc, err := r.docs.Create(ctx, documents.CreateCommand{
		Data:     cmd.Data,
		Filename: cmd.Filename,
		Type:     statement.ParseDocumentType(cmd.TypeHint),
	})
	if err != nil {
		return nil, err
	}

	return r.run(ctx, doc.ID)
}

func (r *repo) Reprocess(ctx context.Context, documentID uuid.UUID) (*Outcome, error) {
	doc, err := r.docs.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}

	// advisory only; the claim transaction is the authoritative check
	if !documents.Claimable(doc.Status) {
		return nil, documents.ErrProcessingInFlight
	}

	return r.run(ctx, documentID)
}

func (r *repo) Runs(ctx context.Context, documentID uuid.UUID) ([]runs.Run, error) {
	return r.runs.ListByDocument(ctx, documentID)
}

// run claims the document, executes the pipeline, and persists the outcome.
// A pipeline failure marks the document failed with the error recorded and
// writes no run row.
func (r *repo) run(ctx context.Context, documentID uuid.UUID) (*Outcome, error) {
	if err := r.claim(ctx, documentID); err != nil {
		return nil, err
	}

	result, err := pipeline.Execute(ctx, r.rt, documentID)
	if err != nil {
		r.fail(documentID, err)
		return nil, fmt.Errorf("process document %s: %w", documentID, err)
	}

	run, err := r.finish(ctx, documentID, result)
	if err != nil {
		r.fail(documentID, err)
		return nil, err
	}

	doc, err := r.docs.Find(ctx, documentID)
	if err != nil {
		return nil, err
	}

	r.logger.Info("document processed",
		"document_id", documentID,
		"run_seq", run.Seq,
		"validation", run.Report.Status,
	)

	return &Outcome{Document: doc, Run: run}, nil
}

// claim flips the document to processing under an advisory transaction lock
// keyed by document id. The lock serializes racing claims; the status
// predicate rejects documents that are already mid-run.
func (r *repo) claim(ctx context.Context, documentID uuid.UUID) error {
	claimQ := `
		UPDATE documents
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ($3, $4, $5)`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		var locked bool
		if err := tx.QueryRowContext(
			ctx,
			"SELECT pg_try_advisory_xact_lock(hashtextextended($1::text, 0))",
			documentID,
		).Scan(&locked); err != nil {
			return struct{}{}, fmt.Errorf("acquire document lock: %w", err)
		}
		if !locked {
			return struct{}{}, documents.ErrProcessingInFlight
		}

		if err := repository.ExecExpectOne(
			ctx, tx, claimQ,
			documentID,
			documents.StatusProcessing,
			documents.StatusPending,
			documents.StatusCompleted,
			documents.StatusFailed,
		); err != nil {
			// zero rows means the status predicate rejected the claim;
			// anything else is a real database failure
			if errors.Is(err, sql.ErrNoRows) {
				return struct{}{}, documents.ErrProcessingInFlight
			}
			return struct{}{}, fmt.Errorf("claim document %s: %w", documentID, err)
		}

		return struct{}{}, nil
	})

	return err
}

// finish persists the run and completes the document in one transaction;
// the run row and the status flip land together or not at all.
func (r *repo) finish(ctx context.Context, documentID uuid.UUID, result *pipeline.Result) (*runs.Run, error) {
	finishQ := `
		UPDATE documents
		SET status = $2, currency = $3, risk_profile = $4, page_count = $5,
			error = NULL, updated_at = NOW()
		WHERE id = $1 AND status = $6`

	run, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (*runs.Run, error) {
		run, err := runs.Insert(ctx, tx, documentID, result.Extraction, result.Report)
		if err != nil {
			return nil, err
		}

		if err := repository.ExecExpectOne(
			ctx, tx, finishQ,
			documentID,
			documents.StatusCompleted,
			nullable(result.Extraction.Currency),
			nullable(result.Extraction.RiskProfile),
			nullableInt(result.PageCount),
			documents.StatusProcessing,
		); err != nil {
			return nil, fmt.Errorf("complete document: %w", err)
		}

		return run, nil
	})

	if err != nil {
		return nil, fmt.Errorf("persist run for document %s: %w", documentID, err)
	}

	return run, nil
}

// fail records a pipeline error on the document. It runs on a background
// context: the triggering error may be the caller's context cancellation,
// and the failure must still be recorded.
func (r *repo) fail(documentID uuid.UUID, cause error) {
	ctx := context.Background()

	failQ := `
		UPDATE documents
		SET status = $2, error = $3, updated_at = NOW()
		WHERE id = $1`

	_, err := repository.WithTx(ctx, r.db, func(tx *sql.Tx) (struct{}, error) {
		return struct{}{}, repository.ExecExpectOne(
			ctx, tx, failQ,
			documentID, documents.StatusFailed, cause.Error(),
		)
	})

	if err != nil {
		r.logger.Error("failed to record processing failure",
			"document_id", documentID,
			"cause", cause,
			"error", err,
		)
		return
	}

	r.logger.Warn("document processing failed", "document_id", documentID, "error", cause)
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}
