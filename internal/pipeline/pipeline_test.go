package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/avidor/statex/internal/config"
	"github.com/avidor/statex/internal/documents"
	"github.com/avidor/statex/internal/extract"
	"github.com/avidor/statex/internal/preprocess"
	"github.com/avidor/statex/internal/statement"
	"github.com/avidor/statex/internal/validate"
	"github.com/avidor/statex/pkg/lifecycle"
	"github.com/avidor/statex/pkg/pagination"
)

type fakeEngine struct {
	text string
	err  error
}

func (fakeEngine) Name() string { return "fake" }
func (e fakeEngine) Recognize(context.Context, []byte) (string, error) {
	return e.text, e.err
}

// blobStore serves the same blob for every key.
type blobStore struct {
	data []byte
}

func (blobStore) Start(*lifecycle.Coordinator) error { return nil }

func (blobStore) Upload(context.Context, string, io.Reader) error { return nil }

func (blobStore) Delete(context.Context, string) error { return nil }

func (blobStore) Exists(context.Context, string) (bool, error) { return true, nil }

func (s blobStore) Download(context.Context, string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(s.data)), nil
}

// docStore serves a single fixed document record.
type docStore struct {
	doc *documents.Document
	err error
}

func (s docStore) Find(context.Context, uuid.UUID) (*documents.Document, error) {
	return s.doc, s.err
}

func (docStore) List(
	context.Context,
	pagination.PageRequest,
	documents.Filters,
) (*pagination.PageResult[documents.Document], error) {
	return nil, errors.New("not implemented")
}

func (docStore) Create(context.Context, documents.CreateCommand) (*documents.Document, error) {
	return nil, errors.New("not implemented")
}

func (docStore) Delete(context.Context, uuid.UUID) error {
	return errors.New("not implemented")
}

func testRuntime(t *testing.T, data []byte) *Runtime {
	t.Helper()

	cfg := &config.PipelineConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &Runtime{
		Storage: blobStore{data: data},
		Documents: docStore{doc: &documents.Document{
			ID:         uuid.New(),
			Filename:   "statement.pdf",
			Type:       statement.TypePortfolioReport,
			StorageKey: "documents/test/statement.pdf",
			Status:     documents.StatusProcessing,
		}},
		Preprocessor: preprocess.New(logger),
		Extractor:    extract.New(cfg, logger),
		Validator:    validate.New(cfg.SumTolerance, cfg.AllocationTolerance),
		Logger:       logger,
	}
}

func TestExecuteUnreadableDocument(t *testing.T) {
	rt := testRuntime(t, []byte("not a pdf at all"))

	_, err := Execute(context.Background(), rt, uuid.New())
	if err == nil {
		t.Fatal("Execute() succeeded on unreadable bytes")
	}
	if !errors.Is(err, preprocess.ErrDocumentUnreadable) {
		t.Errorf("Execute() error = %v, want ErrDocumentUnreadable", err)
	}
}

func TestExecuteOCRFallback(t *testing.T) {
	rt := testRuntime(t, []byte("not a pdf at all"))
	rt.OCR = fakeEngine{text: "Total Portfolio Value 19'510'599 USD"}

	result, err := Execute(context.Background(), rt, uuid.New())
	if err != nil {
		t.Fatalf("Execute() error: %v", err)
	}

	pv := result.Extraction.PortfolioValue
	if pv == nil {
		t.Fatal("Extraction.PortfolioValue = nil")
	}
	if pv.Value.String() != "19510599" {
		t.Errorf("portfolio value = %s, want 19510599", pv.Value)
	}
	if result.Extraction.Currency != "USD" {
		t.Errorf("currency = %q, want USD", result.Extraction.Currency)
	}
	if result.Report == nil {
		t.Error("Report = nil")
	}
}

func TestExecuteOCRFailure(t *testing.T) {
	rt := testRuntime(t, []byte("not a pdf at all"))
	rt.OCR = fakeEngine{err: errors.New("engine crashed")}

	_, err := Execute(context.Background(), rt, uuid.New())
	if !errors.Is(err, preprocess.ErrDocumentUnreadable) {
		t.Errorf("Execute() error = %v, want ErrDocumentUnreadable", err)
	}
}

func TestExecuteDocumentLookupFailure(t *testing.T) {
	rt := testRuntime(t, nil)
	rt.Documents = docStore{err: documents.ErrNotFound}

	_, err := Execute(context.Background(), rt, uuid.New())
	if !errors.Is(err, documents.ErrNotFound) {
		t.Errorf("Execute() error = %v, want ErrNotFound", err)
	}
}

func preState(pre *preprocess.Result) state.State {
	s := state.New(nil)
	return s.Set(KeyPreResult, pre)
}

func TestNeedsOCR(t *testing.T) {
	noText := &preprocess.Result{}
	withText := &preprocess.Result{
		RawTexts: []preprocess.RawText{{Method: preprocess.MethodPDFText, Text: "holdings"}},
	}

	tests := []struct {
		name string
		rt   *Runtime
		s    state.State
		want bool
	}{
		{"no engine", &Runtime{}, preState(noText), false},
		{"engine and no text", &Runtime{OCR: fakeEngine{}}, preState(noText), true},
		{"engine but text present", &Runtime{OCR: fakeEngine{}}, preState(withText), false},
		{"engine but preprocess missing", &Runtime{OCR: fakeEngine{}}, state.New(nil), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NeedsOCR(tt.rt)(tt.s); got != tt.want {
				t.Errorf("NeedsOCR() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateValue(t *testing.T) {
	s := state.New(nil)
	s = s.Set(KeyData, []byte("pdf"))

	data, err := stateValue[[]byte](s, KeyData)
	if err != nil {
		t.Fatalf("stateValue() error: %v", err)
	}
	if string(data) != "pdf" {
		t.Errorf("data = %q", data)
	}

	if _, err := stateValue[int](s, KeyData); err == nil {
		t.Error("stateValue() with wrong type succeeded")
	}
	if _, err := stateValue[[]byte](s, KeyExtraction); err == nil {
		t.Error("stateValue() for missing key succeeded")
	}
}
