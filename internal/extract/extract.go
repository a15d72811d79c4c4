// Package extract turns a preprocessed document into a reconciled extraction.
// Several sources propose candidate values independently and concurrently;
// a pure reconciler votes per field, scoring confidence by how much the
// sources agree.
package extract

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/avidor/statex/internal/config"
	"github.com/avidor/statex/internal/preprocess"
	"github.com/avidor/statex/internal/statement"
)

// maxConcurrentTools bounds the source fan-out.
const maxConcurrentTools = 4

// methodPriorities fixes the trust order of the text methods. Row-aware
// text beats flattened text beats OCR.
var methodPriorities = map[string]int{
	preprocess.MethodPDFText:   1,
	preprocess.MethodPlainText: 2,
	preprocess.MethodOCR:       3,
}

// Extractor runs the candidate sources and reconciles their output.
type Extractor struct {
	reconciler  reconciler
	toolTimeout time.Duration
	logger      *slog.Logger
}

// New builds an Extractor from pipeline configuration.
func New(cfg *config.PipelineConfig, logger *slog.Logger) *Extractor {
	return &Extractor{
		reconciler:  newReconciler(cfg.ReconcileTolerance),
		toolTimeout: cfg.ToolTimeoutDuration(),
		logger:      logger.With("system", "extract"),
	}
}

// Extract fans the sources out concurrently, each under its own timeout,
// then reconciles the candidates into a normalized extraction. A failing
// source contributes nothing; only context cancellation aborts the whole
// extraction.
func (e *Extractor) Extract(ctx context.Context, pre *preprocess.Result) (*statement.Extraction, error) {
	sources := buildSources(pre)
	results := make([]CandidateSet, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentTools)

	for i, src := range sources {
		g.Go(func() error {
			toolCtx, cancel := context.WithTimeout(gctx, e.toolTimeout)
			defer cancel()

			start := time.Now()
			set, err := src.Candidates(toolCtx, pre)
			if err != nil {
				e.logger.Warn("tool failed", "tool", src.Name(), "error", err)
				return nil
			}

			e.logger.Debug("tool complete",
				"tool", src.Name(), "candidates", len(set), "duration", time.Since(start))
			results[i] = set
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	fields := gather(sources, results)
	ext := e.assemble(fields)
	ext.Normalize()

	e.logger.Info("extraction reconciled",
		"tools", len(sources),
		"fields", len(ext.Confidence),
		"securities", len(ext.Securities),
	)

	return ext, nil
}

// buildSources returns the fixed tables source plus one text source per raw
// text the preprocessor produced, ordered by priority.
func buildSources(pre *preprocess.Result) []Source {
	sources := []Source{tablesSource{}}

	for _, t := range pre.RawTexts {
		priority, ok := methodPriorities[t.Method]
		if !ok {
			priority = len(methodPriorities) + 1
		}
		sources = append(sources, textSource{method: t.Method, priority: priority})
	}

	sort.SliceStable(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})

	return sources
}

// gather flattens per-source candidate sets into per-field vote lists.
// Sources are already priority-ordered, so each field's votes are too.
func gather(sources []Source, results []CandidateSet) map[string][]sourcedValue {
	fields := make(map[string][]sourcedValue)

	for i, src := range sources {
		for _, c := range results[i] {
			fields[c.Field] = append(fields[c.Field], sourcedValue{
				value:    c.Value,
				source:   src.Name(),
				priority: src.Priority(),
			})
		}
	}

	return fields
}

// assemble resolves every field and maps the flat field namespace back onto
// the extraction's structure.
func (e *Extractor) assemble(fields map[string][]sourcedValue) *statement.Extraction {
	ext := statement.NewExtraction()
	securities := make(map[string]*statement.Security)
	allocations := make(map[string]*statement.AssetAllocation)

	for field, votes := range fields {
		res, ok := e.reconciler.resolve(votes)
		if !ok {
			continue
		}
		if !applyField(ext, securities, allocations, field, res.value) {
			continue
		}
		ext.Confidence[field] = res.confidence
		ext.Provenance[field] = res.source
	}

	for _, sec := range securities {
		ext.Securities = append(ext.Securities, *sec)
	}
	for _, alloc := range allocations {
		ext.Allocations = append(ext.Allocations, *alloc)
	}

	if ext.PortfolioValue != nil {
		ext.PortfolioValue.Currency = ext.Currency
	}

	return ext
}

// applyField writes one resolved value into the extraction. Returns false
// when the value does not parse for its field, in which case the field is
// treated as absent.
func applyField(ext *statement.Extraction, securities map[string]*statement.Security,
	allocations map[string]*statement.AssetAllocation, field, value string) bool {

	switch field {
	case FieldPortfolioValue:
		v, err := decimal.NewFromString(value)
		if err != nil {
			return false
		}
		ext.PortfolioValue = &statement.PortfolioValue{Value: v}
		return true
	case FieldCurrency:
		ext.Currency = value
		return true
	case FieldRiskProfile:
		ext.RiskProfile = value
		return true
	}

	parts := strings.SplitN(field, ":", 3)
	if len(parts) != 3 {
		return false
	}

	switch parts[0] {
	case "security":
		return applySecurityAttr(securityFor(securities, parts[1]), parts[2], value)
	case "allocation":
		return applyAllocationAttr(allocationFor(allocations, parts[1]), parts[2], value)
	}
	return false
}

func securityFor(securities map[string]*statement.Security, isin string) *statement.Security {
	if s, ok := securities[isin]; ok {
		return s
	}
	s := &statement.Security{ISIN: isin}
	securities[isin] = s
	return s
}

func allocationFor(allocations map[string]*statement.AssetAllocation, class string) *statement.AssetAllocation {
	if a, ok := allocations[class]; ok {
		return a
	}
	a := &statement.AssetAllocation{AssetClass: class}
	allocations[class] = a
	return a
}

func applySecurityAttr(sec *statement.Security, attr, value string) bool {
	switch attr {
	case AttrName:
		sec.Name = value
	case AttrCurrency:
		sec.Currency = value
	case AttrAssetClass:
		sec.AssetClass = value
	case AttrMaturity:
		sec.Maturity = value
	case AttrQuantity, AttrPrice, AttrValuation, AttrCouponRate:
		v, err := decimal.NewFromString(value)
		if err != nil {
			return false
		}
		switch attr {
		case AttrQuantity:
			sec.Quantity = &v
		case AttrPrice:
			sec.Price = &v
		case AttrValuation:
			sec.Valuation = &v
		case AttrCouponRate:
			sec.CouponRate = &v
		}
	default:
		return false
	}
	return true
}

func applyAllocationAttr(alloc *statement.AssetAllocation, attr, value string) bool {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return false
	}

	switch attr {
	case AttrPercentage:
		alloc.Percentage = v
	case AttrValue:
		alloc.Value = v
	default:
		return false
	}
	return true
}
