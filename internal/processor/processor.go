// Package processor implements the multi-pass statement-structuring and
// categorization pipeline. Raw tabular exports flow through structural
// analysis (Pass 1), semantic mapping (Pass 2), a deterministic column
// transform, and batched categorization (Pass 3); a rule-based variant covers
// runs where no LLM backend is reachable. Every variant's output passes
// through the same schema contract before it is returned.
package processor

import (
	"context"

	"finlens/statement-pipeline/internal/models"
)

// Default pipeline tuning. These match the reference implementation; the
// container overrides them from configuration.
const (
	DefaultHeadSampleSize   = 10
	DefaultRandomSampleSize = 5
	DefaultTailSampleSize   = 10
	DefaultBatchSize        = 10
	DefaultMaxRetries       = 1
)

// ProgressFunc receives incremental pipeline status. Fraction is in [0, 1]
// and non-decreasing within one run; it is called synchronously, so a slow
// callback slows the run.
type ProgressFunc func(fraction float64, message string)

// DataProcessor turns a raw export table into standardized transactions.
// Implementations must route their output through EnforceSchema so the
// persistence layer can trust it unconditionally. The returned slice may hold
// fewer rows than the input (dropped rows, skipped batches), never more.
type DataProcessor interface {
	Process(ctx context.Context, table *models.RawTable, onProgress ProgressFunc) ([]models.Transaction, error)
}

// CategoryProvider supplies the category hierarchy snapshot for a run and the
// ordered keyword rules for the fallback categorizer.
type CategoryProvider interface {
	Hierarchy() (models.CategoryHierarchy, error)
	KeywordRules() ([]models.CategoryRule, error)
}

// reportProgress invokes the callback if one was provided.
func reportProgress(onProgress ProgressFunc, fraction float64, message string) {
	if onProgress != nil {
		onProgress(fraction, message)
	}
}
