package pipeline

import (
	"log/slog"

	"github.com/avidor/statex/internal/documents"
	"github.com/avidor/statex/internal/extract"
	"github.com/avidor/statex/internal/ocr"
	"github.com/avidor/statex/internal/preprocess"
	"github.com/avidor/statex/internal/statement"
	"github.com/avidor/statex/internal/validate"
	"github.com/avidor/statex/pkg/storage"
)

// State bag keys shared between nodes.
const (
	KeyDocumentID = "document_id"
	KeyData       = "data"
	KeyTypeHint   = "type_hint"
	KeyPreResult  = "preprocess_result"
	KeyExtraction = "extraction"
	KeyReport     = "report"
)

// Runtime bundles the dependencies that pipeline nodes require. It is
// constructed by higher-level composition code from infrastructure and
// domain systems.
type Runtime struct {
	Storage      storage.System
	Documents    documents.System
	Preprocessor *preprocess.Preprocessor
	Extractor    *extract.Extractor
	Validator    *validate.Validator

	// OCR is nil when no engine is configured; the graph then skips the
	// ocr node entirely.
	OCR ocr.Engine

	Logger *slog.Logger
}

// Result is the final output of one pipeline execution.
type Result struct {
	Extraction *statement.Extraction `json:"extraction"`
	Report     *validate.Report      `json:"report"`
	PageCount  int                   `json:"page_count"`
}
