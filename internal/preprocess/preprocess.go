// Package preprocess normalizes a PDF into metadata, raw text from multiple
// independent extraction methods, detected tables, and recognized financial
// entities. Each method's output is kept separate rather than merged, so the
// extractor can reconcile disagreements between methods downstream.
package preprocess

import (
	"context"
	"log/slog"

	"github.com/avidor/statex/internal/statement"
)

// Method tags identifying where a piece of preprocessed output came from.
const (
	MethodPDFText   = "pdftext"
	MethodPlainText = "plaintext"
	MethodOCR       = "ocr"
	MethodLayout    = "layout"
)

// Metadata holds document-level properties. Absent properties stay zero;
// a structurally damaged PDF is not an error at this stage.
type Metadata struct {
	PageCount int `json:"page_count"`
}

// RawText is one extraction method's text output for the whole document.
type RawText struct {
	Method string `json:"method"`
	Text   string `json:"text"`
}

// DetectedTable is one table found by layout analysis.
type DetectedTable struct {
	Page   int        `json:"page"`
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Tool   string     `json:"tool"`
}

// Entity types recognized by the pattern scan.
const (
	EntityISIN       = "isin"
	EntityCurrency   = "currency"
	EntityPercentage = "percentage"
	EntityMoney      = "money"
	EntityDate       = "date"
)

// Entity is one recognized financial entity with its source method and the
// byte offset of the match within that method's text.
type Entity struct {
	Type       string `json:"type"`
	Raw        string `json:"raw"`
	Normalized string `json:"normalized"`
	Method     string `json:"method"`
	Offset     int    `json:"offset"`
}

// Result is the full preprocessing output consumed by the extractor.
type Result struct {
	Metadata Metadata               `json:"metadata"`
	TypeHint statement.DocumentType `json:"type_hint"`
	RawTexts []RawText              `json:"raw_texts"`
	Tables   []DetectedTable        `json:"tables"`
	Entities []Entity               `json:"entities"`
}

// HasText reports whether any extraction method produced non-empty text.
func (r *Result) HasText() bool {
	for _, t := range r.RawTexts {
		if t.Text != "" {
			return true
		}
	}
	return false
}

// Text returns the text produced by the named method, or "".
func (r *Result) Text(method string) string {
	for _, t := range r.RawTexts {
		if t.Method == method {
			return t.Text
		}
	}
	return ""
}

// Preprocessor runs the text methods, table detection, and entity scanning.
type Preprocessor struct {
	methods []TextMethod
	logger  *slog.Logger
}

// New creates a Preprocessor with the standard text methods.
func New(logger *slog.Logger) *Preprocessor {
	return &Preprocessor{
		methods: []TextMethod{
			pdfTextMethod{},
			plainTextMethod{},
		},
		logger: logger.With("system", "preprocess"),
	}
}

// Run preprocesses a document. A method that fails simply contributes no
// RawText; Run itself only fails when the bytes are not a PDF at all, in
// which case no downstream stage could do anything useful either.
func (p *Preprocessor) Run(ctx context.Context, data []byte, hint statement.DocumentType) (*Result, error) {
	result := &Result{
		TypeHint: hint,
		RawTexts: make([]RawText, 0, len(p.methods)),
		Tables:   make([]DetectedTable, 0),
		Entities: make([]Entity, 0),
	}

	result.Metadata = readMetadata(data)

	for _, m := range p.methods {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := m.Extract(data)
		if err != nil {
			p.logger.Warn("text method failed", "method", m.Name(), "error", err)
			continue
		}
		if text == "" {
			continue
		}

		result.RawTexts = append(result.RawTexts, RawText{Method: m.Name(), Text: text})
	}

	tables, err := detectTables(data)
	if err != nil {
		p.logger.Warn("table detection failed", "error", err)
	} else {
		result.Tables = tables
	}

	result.Entities = ScanEntities(result.RawTexts)

	p.logger.Info("preprocessing complete",
		"pages", result.Metadata.PageCount,
		"methods", len(result.RawTexts),
		"tables", len(result.Tables),
		"entities", len(result.Entities),
	)

	return result, nil
}

// AddOCRText appends OCR output as another raw text and rescans entities so
// OCR-only documents still yield candidates.
func (r *Result) AddOCRText(text string) {
	if text == "" {
		return
	}
	r.RawTexts = append(r.RawTexts, RawText{Method: MethodOCR, Text: text})
	r.Entities = ScanEntities(r.RawTexts)
}
