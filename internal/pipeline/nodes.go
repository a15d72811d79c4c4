package pipeline

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/avidor/statex/internal/preprocess"
	"github.com/avidor/statex/internal/statement"
)

// InitNode returns a state node that loads the document record and downloads
// its blob into the state bag.
func InitNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		documentID, err := stateValue[uuid.UUID](s, KeyDocumentID)
		if err != nil {
			return s, fmt.Errorf("init: %w", err)
		}

		doc, err := rt.Documents.Find(ctx, documentID)
		if err != nil {
			return s, fmt.Errorf("init: find document: %w", err)
		}

		blob, err := rt.Storage.Download(ctx, doc.StorageKey)
		if err != nil {
			return s, fmt.Errorf("init: download blob: %w", err)
		}
		defer blob.Close()

		data, err := io.ReadAll(blob)
		if err != nil {
			return s, fmt.Errorf("init: read blob: %w", err)
		}

		rt.Logger.InfoContext(ctx, "init node complete",
			"document_id", documentID,
			"bytes", len(data),
		)

		s = s.Set(KeyData, data)
		s = s.Set(KeyTypeHint, doc.Type)

		return s, nil
	})
}

// PreprocessNode runs the text methods, table detection, and entity scan.
func PreprocessNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		data, err := stateValue[[]byte](s, KeyData)
		if err != nil {
			return s, fmt.Errorf("preprocess: %w", err)
		}

		hint, err := stateValue[statement.DocumentType](s, KeyTypeHint)
		if err != nil {
			return s, fmt.Errorf("preprocess: %w", err)
		}

		pre, err := rt.Preprocessor.Run(ctx, data, hint)
		if err != nil {
			return s, fmt.Errorf("preprocess: %w", err)
		}

		return s.Set(KeyPreResult, pre), nil
	})
}

// OCRNode runs the OCR engine over the document and folds the recognized
// text back into the preprocessing result. It only executes when no text
// method produced output, so an engine failure here means the document has
// no readable content at all.
func OCRNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		data, err := stateValue[[]byte](s, KeyData)
		if err != nil {
			return s, fmt.Errorf("ocr: %w", err)
		}

		pre, err := stateValue[*preprocess.Result](s, KeyPreResult)
		if err != nil {
			return s, fmt.Errorf("ocr: %w", err)
		}

		text, err := rt.OCR.Recognize(ctx, data)
		if err != nil {
			return s, fmt.Errorf("ocr: %w: %w", preprocess.ErrDocumentUnreadable, err)
		}

		pre.AddOCRText(text)

		rt.Logger.InfoContext(ctx, "ocr node complete", "chars", len(text))

		return s.Set(KeyPreResult, pre), nil
	})
}

// ExtractNode reconciles candidates from all sources into an extraction.
// A document that still has neither text nor tables at this point is
// unreadable; failing here keeps garbage extractions out of the store.
func ExtractNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		pre, err := stateValue[*preprocess.Result](s, KeyPreResult)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		if !pre.HasText() && len(pre.Tables) == 0 {
			return s, fmt.Errorf("extract: %w", preprocess.ErrDocumentUnreadable)
		}

		ext, err := rt.Extractor.Extract(ctx, pre)
		if err != nil {
			return s, fmt.Errorf("extract: %w", err)
		}

		return s.Set(KeyExtraction, ext), nil
	})
}

// ValidateNode runs the consistency checks and stores the report.
func ValidateNode(rt *Runtime) state.StateNode {
	return state.NewFunctionNode(func(ctx context.Context, s state.State) (state.State, error) {
		ext, err := stateValue[*statement.Extraction](s, KeyExtraction)
		if err != nil {
			return s, fmt.Errorf("validate: %w", err)
		}

		pre, err := stateValue[*preprocess.Result](s, KeyPreResult)
		if err != nil {
			return s, fmt.Errorf("validate: %w", err)
		}

		report := rt.Validator.Validate(ext, pre.TypeHint)

		rt.Logger.InfoContext(ctx, "validate node complete",
			"status", report.Status,
			"issues", len(report.Issues),
		)

		return s.Set(KeyReport, report), nil
	})
}

// stateValue reads a typed value from the state bag.
func stateValue[T any](s state.State, key string) (T, error) {
	var zero T

	val, ok := s.Get(key)
	if !ok {
		return zero, fmt.Errorf("missing %s in state", key)
	}

	typed, ok := val.(T)
	if !ok {
		return zero, fmt.Errorf("%s is not %T", key, zero)
	}

	return typed, nil
}
