package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/avidor/statex/internal/documents"
	"github.com/avidor/statex/internal/infrastructure"
	"github.com/avidor/statex/internal/processing"
	"github.com/avidor/statex/internal/runs"
	"github.com/avidor/statex/internal/statement"
	"github.com/avidor/statex/pkg/formatting"
	"github.com/avidor/statex/pkg/pagination"
)

func runProcess(ctx context.Context, systems *infrastructure.Systems, args []string) error {
	fs := flag.NewFlagSet("process", flag.ExitOnError)
	file := fs.String("file", "", "Path to the document")
	docType := fs.String("type", "", "Document type hint (portfolio_report, bank_statement, ...)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *file == "" {
		return fmt.Errorf("process: -file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("read %s: %w", *file, err)
	}

	outcome, err := systems.Processing.Process(ctx, processing.ProcessCommand{
		Data:     data,
		Filename: filepath.Base(*file),
		TypeHint: *docType,
	})
	if err != nil {
		return err
	}

	printOutcome(outcome)
	return nil
}

func runReprocess(ctx context.Context, systems *infrastructure.Systems, args []string) error {
	fs := flag.NewFlagSet("reprocess", flag.ExitOnError)
	id := fs.String("id", "", "Document id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	documentID, err := uuid.Parse(*id)
	if err != nil {
		return fmt.Errorf("reprocess: invalid -id: %w", err)
	}

	outcome, err := systems.Processing.Reprocess(ctx, documentID)
	if err != nil {
		return err
	}

	printOutcome(outcome)
	return nil
}

func runRuns(ctx context.Context, systems *infrastructure.Systems, args []string) error {
	fs := flag.NewFlagSet("runs", flag.ExitOnError)
	id := fs.String("id", "", "Document id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	documentID, err := uuid.Parse(*id)
	if err != nil {
		return fmt.Errorf("runs: invalid -id: %w", err)
	}

	items, err := systems.Processing.Runs(ctx, documentID)
	if err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	for _, run := range items {
		fmt.Printf("run %d  %s  validation=%s  securities=%d  issues=%d\n",
			run.Seq,
			run.CreatedAt.Format("2006-01-02 15:04:05"),
			run.Report.Status,
			len(run.Extraction.Securities),
			len(run.Report.Issues),
		)
	}
	return nil
}

func runList(ctx context.Context, systems *infrastructure.Systems, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	status := fs.String("status", "", "Filter by status")
	page := fs.Int("page", 1, "Page number")
	size := fs.Int("size", 0, "Page size")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var filters documents.Filters
	if *status != "" {
		filters.Status = status
	}

	result, err := systems.Documents.List(ctx, pagination.PageRequest{
		Page:     *page,
		PageSize: *size,
	}, filters)
	if err != nil {
		return err
	}

	fmt.Printf("%d documents (page %d of %d)\n", result.Total, result.Page, result.TotalPages)
	for _, doc := range result.Data {
		currency := "-"
		if doc.Currency != nil {
			currency = *doc.Currency
		}
		fmt.Printf("%s  %-10s  %-18s  %-3s  %8s  %s\n",
			doc.ID, doc.Status, doc.Type, currency,
			formatting.FormatBytes(doc.SizeBytes, 1), doc.Filename)
	}
	return nil
}

func printOutcome(outcome *processing.Outcome) {
	doc := outcome.Document
	run := outcome.Run

	fmt.Printf("document %s (%s) status=%s\n", doc.ID, doc.Filename, doc.Status)
	fmt.Printf("run %d  validation=%s\n", run.Seq, run.Report.Status)

	printExtraction(run)

	for _, issue := range run.Report.Issues {
		fmt.Printf("  [%s] %s: %s\n", issue.Severity, issue.Code, issue.Message)
	}
}

func printExtraction(run *runs.Run) {
	ext := run.Extraction

	if ext.PortfolioValue != nil {
		fmt.Printf("portfolio value: %s %s\n",
			ext.PortfolioValue.Value, ext.PortfolioValue.Currency)
	}
	if ext.RiskProfile != "" {
		fmt.Printf("risk profile: %s\n", ext.RiskProfile)
	}

	for _, sec := range ext.Securities {
		valuation := "-"
		if sec.Valuation != nil {
			valuation = sec.Valuation.String()
		}
		fmt.Printf("  %s  %-30s  %10s %s  confidence=%.2f\n",
			sec.ISIN, sec.Name, valuation, sec.Currency,
			ext.Confidence[statement.SecurityField(sec.ISIN, "valuation")],
		)
	}

	for _, alloc := range ext.Allocations {
		fmt.Printf("  %-14s %6s%%\n", alloc.AssetClass, alloc.Percentage)
	}
}
