package infrastructure

import (
	"github.com/avidor/statex/internal/config"
	"github.com/avidor/statex/internal/documents"
	"github.com/avidor/statex/internal/extract"
	"github.com/avidor/statex/internal/ocr"
	"github.com/avidor/statex/internal/pipeline"
	"github.com/avidor/statex/internal/preprocess"
	"github.com/avidor/statex/internal/processing"
	"github.com/avidor/statex/internal/runs"
	"github.com/avidor/statex/internal/validate"
)

// Systems holds the assembled domain systems.
type Systems struct {
	Documents  documents.System
	Runs       runs.System
	Processing processing.System
}

// NewSystems wires the domain systems over the shared infrastructure,
// including the pipeline runtime the processing system executes.
func NewSystems(cfg *config.Config, infra *Infrastructure) *Systems {
	db := infra.Database.Connection()

	docs := documents.New(db, infra.Storage, infra.Logger, cfg.Pagination, cfg.MaxFileSizeBytes())
	runSystem := runs.New(db, infra.Logger)

	rt := &pipeline.Runtime{
		Storage:      infra.Storage,
		Documents:    docs,
		Preprocessor: preprocess.New(infra.Logger),
		Extractor:    extract.New(&cfg.Pipeline, infra.Logger),
		Validator:    validate.New(cfg.Pipeline.SumTolerance, cfg.Pipeline.AllocationTolerance),
		Logger:       infra.Logger.With("workflow", "extract"),
	}

	// assign only a non-nil client; a typed nil in the interface would
	// defeat the graph's OCR-disabled check
	if engine := ocr.NewClient(&cfg.Pipeline, infra.Logger); engine != nil {
		rt.OCR = engine
	}

	return &Systems{
		Documents:  docs,
		Runs:       runSystem,
		Processing: processing.New(db, rt, docs, runSystem, infra.Logger),
	}
}
