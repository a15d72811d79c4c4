// Package pipeline wires the processing stages into a state graph:
// init → preprocess → ocr? → extract → validate. The conditional ocr hop
// runs only for documents where no text method produced output and an
// engine is configured.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	gaoconfig "github.com/JaimeStill/go-agents-orchestration/pkg/config"
	"github.com/JaimeStill/go-agents-orchestration/pkg/state"

	"github.com/avidor/statex/internal/preprocess"
	"github.com/avidor/statex/internal/statement"
	"github.com/avidor/statex/internal/validate"
)

// Execute runs the extraction pipeline for a single document: builds the
// state graph, executes it, and extracts the Result from the final state.
func Execute(ctx context.Context, rt *Runtime, documentID uuid.UUID) (*Result, error) {
	graph, err := buildGraph(rt)
	if err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	initialState := state.New(nil)
	initialState = initialState.Set(KeyDocumentID, documentID)

	finalState, err := graph.Execute(ctx, initialState)
	if err != nil {
		return nil, fmt.Errorf("execute graph: %w", err)
	}

	return extractResult(finalState)
}

func buildGraph(rt *Runtime) (state.StateGraph, error) {
	cfg := gaoconfig.DefaultGraphConfig("statex-extract")
	cfg.Observer = "noop"

	graph, err := state.NewGraph(cfg)
	if err != nil {
		return nil, err
	}

	if err := graph.AddNode("init", InitNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("preprocess", PreprocessNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("ocr", OCRNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("extract", ExtractNode(rt)); err != nil {
		return nil, err
	}

	if err := graph.AddNode("validate", ValidateNode(rt)); err != nil {
		return nil, err
	}

	needsOCR := NeedsOCR(rt)

	// init → preprocess (unconditional)
	if err := graph.AddEdge("init", "preprocess", nil); err != nil {
		return nil, err
	}

	// preprocess → ocr (when no text method produced output)
	if err := graph.AddEdge("preprocess", "ocr", needsOCR); err != nil {
		return nil, err
	}

	// preprocess → extract (when text is already available)
	if err := graph.AddEdge("preprocess", "extract", state.Not(needsOCR)); err != nil {
		return nil, err
	}

	// ocr → extract (unconditional)
	if err := graph.AddEdge("ocr", "extract", nil); err != nil {
		return nil, err
	}

	// extract → validate (unconditional)
	if err := graph.AddEdge("extract", "validate", nil); err != nil {
		return nil, err
	}

	if err := graph.SetEntryPoint("init"); err != nil {
		return nil, err
	}

	if err := graph.SetExitPoint("validate"); err != nil {
		return nil, err
	}

	return graph, nil
}

// NeedsOCR returns the edge condition for the preprocess → ocr hop: the
// document yielded no text and an OCR engine is available.
func NeedsOCR(rt *Runtime) func(state.State) bool {
	return func(s state.State) bool {
		if rt.OCR == nil {
			return false
		}

		val, ok := s.Get(KeyPreResult)
		if !ok {
			return false
		}

		pre, ok := val.(*preprocess.Result)
		if !ok {
			return false
		}

		return !pre.HasText()
	}
}

func extractResult(s state.State) (*Result, error) {
	ext, err := stateValue[*statement.Extraction](s, KeyExtraction)
	if err != nil {
		return nil, err
	}

	report, err := stateValue[*validate.Report](s, KeyReport)
	if err != nil {
		return nil, err
	}

	pre, err := stateValue[*preprocess.Result](s, KeyPreResult)
	if err != nil {
		return nil, err
	}

	return &Result{
		Extraction: ext,
		Report:     report,
		PageCount:  pre.Metadata.PageCount,
	}, nil
}
