package processor

import (
	"context"
	"fmt"

	"finlens/statement-pipeline/internal/llm"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pipeerror"
)

// AIProcessor is the multi-pass LLM pipeline: structural analysis of a
// sample, semantic mapping of the description, deterministic row mapping,
// then batched categorization and schema enforcement.
type AIProcessor struct {
	client     llm.Client
	categories CategoryProvider
	logger     logging.Logger

	headSampleSize   int
	randomSampleSize int
	tailSampleSize   int
	batchSize        int
	maxRetries       int
}

// AIProcessorOption customizes an AIProcessor.
type AIProcessorOption func(*AIProcessor)

// WithSampleSizes overrides the head, random and tail sample sizes used to
// build the structural analysis sample.
func WithSampleSizes(head, random, tail int) AIProcessorOption {
	return func(p *AIProcessor) {
		p.headSampleSize = head
		p.randomSampleSize = random
		p.tailSampleSize = tail
	}
}

// WithBatchSize overrides the categorization batch size.
func WithBatchSize(size int) AIProcessorOption {
	return func(p *AIProcessor) {
		p.batchSize = size
	}
}

// WithMaxRetries overrides the per-batch retry budget for categorization.
func WithMaxRetries(retries int) AIProcessorOption {
	return func(p *AIProcessor) {
		p.maxRetries = retries
	}
}

// NewAIProcessor builds the LLM-backed processor.
func NewAIProcessor(client llm.Client, categories CategoryProvider, logger logging.Logger, opts ...AIProcessorOption) *AIProcessor {
	p := &AIProcessor{
		client:     client,
		categories: categories,
		logger:     logger,

		headSampleSize:   DefaultHeadSampleSize,
		randomSampleSize: DefaultRandomSampleSize,
		tailSampleSize:   DefaultTailSampleSize,
		batchSize:        DefaultBatchSize,
		maxRetries:       DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Process runs the full pipeline over the raw table. Empty input fails before
// any model call. Structural analysis failures abort the run; semantic
// mapping and categorization degrade instead of failing. The returned rows
// always pass schema enforcement.
func (p *AIProcessor) Process(ctx context.Context, table *models.RawTable, onProgress ProgressFunc) ([]models.Transaction, error) {
	if table == nil || table.IsEmpty() {
		return nil, &pipeerror.EmptyInputError{}
	}

	reportProgress(onProgress, 0.0, "Starting structural analysis...")

	sample := buildSample(table, p.headSampleSize, p.randomSampleSize, p.tailSampleSize)

	analyzer := &structuralAnalyzer{client: p.client, logger: p.logger}
	structural, err := analyzer.analyze(ctx, sample)
	if err != nil {
		reportProgress(onProgress, 1.0, fmt.Sprintf("Error: %v", err))
		return nil, err
	}
	p.logger.WithFields(
		logging.Field{Key: "date_column", Value: structural.DateInfo.ColumnName},
		logging.Field{Key: "amount_representation", Value: string(structural.AmountInfo.Representation)},
	).Info("Structural analysis complete")

	reportProgress(onProgress, 0.33, "Performing semantic mapping...")

	mapper := newSemanticMapper(p.client, p.headSampleSize, p.logger)
	semantic, err := mapper.mapDescription(ctx, table, structural)
	if err != nil {
		reportProgress(onProgress, 1.0, fmt.Sprintf("Error: %v", err))
		return nil, err
	}
	p.logger.WithField("description_columns", semantic.DescriptionColumns).Info("Semantic mapping complete")

	reportProgress(onProgress, 0.66, "Applying mappings...")

	mapped := applyMappings(table, structural, semantic, p.logger)

	hierarchy, err := p.categories.Hierarchy()
	if err != nil {
		p.logger.WithError(err).Warn("Failed to load category hierarchy, proceeding without sub-category constraints")
		hierarchy = models.CategoryHierarchy{}
	}

	categorizer := &batchCategorizer{
		client:     p.client,
		batchSize:  p.batchSize,
		maxRetries: p.maxRetries,
		logger:     p.logger,
	}
	rows := categorizer.categorize(ctx, mapped, hierarchy, onProgress)

	transactions, err := EnforceSchema(frameFromTransactions(rows))
	if err != nil {
		reportProgress(onProgress, 1.0, fmt.Sprintf("Error: %v", err))
		return nil, err
	}

	reportProgress(onProgress, 1.0, "Processing complete.")
	return transactions, nil
}
