package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"finlens/statement-pipeline/internal/dateutils"
	"finlens/statement-pipeline/internal/llm"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pipeerror"
	"finlens/statement-pipeline/internal/textutils"
)

// batchCategorizer runs Pass 3: assigning {category, sub_category} to mapped
// rows in fixed-size batches, strictly in order. Batches are never dispatched
// concurrently; progress fractions and the hierarchy snapshot both assume a
// single ordered walk.
type batchCategorizer struct {
	client     llm.Client
	batchSize  int
	maxRetries int
	logger     logging.Logger
}

// categoryAssignment is one element of the JSON array the model must return.
type categoryAssignment struct {
	Category    string `json:"category"`
	SubCategory string `json:"sub_category"`
}

// batchOutcome is the tagged result of one batch: either its categorized rows
// or a skip with the reason. Outcomes are folded into the final row set; a
// skip is not an error.
type batchOutcome struct {
	rows    []models.Transaction
	skipped bool
	reason  string
}

const categorizationPromptTemplate = `You are an expert financial data categorization AI. Your task is to analyze the following structured transaction data and assign a category and sub_category to each transaction.

Follow these instructions precisely:
1. Assign a 'category' and 'sub_category' from the provided hierarchy.
2. If a transaction fits a parent category but no specific sub-category, leave 'sub_category' blank.
3. If no suitable category is found, assign 'category' to 'Other' and leave 'sub_category' blank.
4. Return a single, valid JSON array of objects. The array must contain exactly one object per input row, in the same order.

Here is the category hierarchy to use:
%s

Transaction data:
---
%s
---

Respond with only the JSON array. Each object must contain 'category' and 'sub_category'.`

// categorize walks the mapped rows batch by batch. Each batch gets up to
// maxRetries extra attempts. A batch that still fails is skipped whole, its
// rows dropped rather than zipped with misaligned categories, and the run
// continues. The progress fraction covers 0.66..1.0 and only ever grows.
func (b *batchCategorizer) categorize(ctx context.Context, mapped []models.MappedRow, hierarchy models.CategoryHierarchy, onProgress ProgressFunc) []models.Transaction {
	if len(mapped) == 0 {
		return nil
	}

	hierarchyJSON, err := hierarchy.JSONString()
	if err != nil {
		// A hierarchy that cannot serialize leaves nothing to prompt with;
		// emit every row as Other rather than fail the run.
		b.logger.WithError(err).Error("Failed to serialize category hierarchy, assigning Other to all rows")
		return uncategorized(mapped)
	}

	numBatches := (len(mapped) + b.batchSize - 1) / b.batchSize
	outcomes := make([]batchOutcome, 0, numBatches)

	for i := 0; i < numBatches; i++ {
		start := i * b.batchSize
		end := start + b.batchSize
		if end > len(mapped) {
			end = len(mapped)
		}
		batch := mapped[start:end]

		outcome := b.processBatch(ctx, batch, hierarchy, hierarchyJSON, i+1, numBatches, onProgress)
		outcomes = append(outcomes, outcome)

		fraction := 0.66 + (float64(i+1)/float64(numBatches))*0.34
		if outcome.skipped {
			reportProgress(onProgress, fraction, fmt.Sprintf("Skipped batch %d/%d: %s", i+1, numBatches, outcome.reason))
		} else {
			reportProgress(onProgress, fraction, fmt.Sprintf("Categorized batch %d/%d", i+1, numBatches))
		}
	}

	var results []models.Transaction
	droppedRows := 0
	for i, outcome := range outcomes {
		if outcome.skipped {
			droppedRows += batchLen(len(mapped), b.batchSize, i)
			continue
		}
		results = append(results, outcome.rows...)
	}
	if droppedRows > 0 {
		b.logger.WithFields(
			logging.Field{Key: "dropped_rows", Value: droppedRows},
			logging.Field{Key: "emitted_rows", Value: len(results)},
		).Warn("Some batches were skipped after exhausting retries")
	}
	return results
}

// processBatch runs one batch through the model, retrying a bounded number of
// times before giving up.
func (b *batchCategorizer) processBatch(ctx context.Context, batch []models.MappedRow, hierarchy models.CategoryHierarchy, hierarchyJSON string, batchNum, numBatches int, onProgress ProgressFunc) batchOutcome {
	prompt := fmt.Sprintf(categorizationPromptTemplate, hierarchyJSON, serializeBatch(batch))

	var lastErr error
	for attempt := 0; attempt <= b.maxRetries; attempt++ {
		response, err := b.client.Complete(ctx, prompt)
		if err == nil {
			assignments, verr := validateBatchResponse(response, len(batch))
			if verr == nil {
				return batchOutcome{rows: mergeBatch(batch, assignments, hierarchy)}
			}
			err = verr
		}
		lastErr = err

		b.logger.WithError(err).WithFields(
			logging.Field{Key: "batch", Value: batchNum},
			logging.Field{Key: "attempt", Value: attempt + 1},
			logging.Field{Key: "max_attempts", Value: b.maxRetries + 1},
		).Warn("Categorization batch attempt failed")
	}

	return batchOutcome{skipped: true, reason: lastErr.Error()}
}

// serializeBatch renders a batch as compact CSV-like text for the prompt.
func serializeBatch(batch []models.MappedRow) string {
	var sb strings.Builder
	sb.WriteString("transaction_date,description,amount\n")
	for _, row := range batch {
		sb.WriteString(dateutils.ToISODate(row.Date))
		sb.WriteByte(',')
		sb.WriteString(strings.ReplaceAll(row.Description, "\n", " "))
		sb.WriteByte(',')
		sb.WriteString(row.Amount.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// validateBatchResponse decodes the model's response and enforces positional
// alignment: the array length must exactly match the batch size, since the
// i-th element categorizes the i-th row. Length is the only alignment check;
// the prompt never asks the model to echo row content back, so there is
// nothing content-based to verify against.
func validateBatchResponse(response string, batchLen int) ([]categoryAssignment, error) {
	var assignments []categoryAssignment
	if err := json.Unmarshal([]byte(textutils.StripCodeFence(response)), &assignments); err != nil {
		return nil, &pipeerror.ResponseFormatError{Pass: "categorization", Reason: "response is not a JSON array", Err: err}
	}
	if len(assignments) != batchLen {
		return nil, &pipeerror.ResponseFormatError{
			Pass:   "categorization",
			Reason: fmt.Sprintf("response has %d elements for a batch of %d rows", len(assignments), batchLen),
		}
	}
	return assignments, nil
}

// mergeBatch zips assignments onto their rows positionally and normalizes
// them against the hierarchy snapshot: an unknown category becomes Other, and
// a sub-category that is not a child of its category is blanked. The output
// therefore always satisfies the hierarchy constraint.
func mergeBatch(batch []models.MappedRow, assignments []categoryAssignment, hierarchy models.CategoryHierarchy) []models.Transaction {
	rows := make([]models.Transaction, 0, len(batch))
	for i, row := range batch {
		category := strings.TrimSpace(assignments[i].Category)
		subCategory := strings.TrimSpace(assignments[i].SubCategory)

		if category == "" || (len(hierarchy) > 0 && !hierarchy.HasRoot(category) && category != models.CategoryOther) {
			category = models.CategoryOther
			subCategory = ""
		}
		if subCategory != "" && !hierarchy.IsChildOf(category, subCategory) {
			subCategory = ""
		}

		rows = append(rows, models.Transaction{
			Description: row.Description,
			Amount:      row.Amount,
			Date:        row.Date,
			Category:    category,
			SubCategory: subCategory,
		})
	}
	return rows
}

// uncategorized emits every mapped row with the default category.
func uncategorized(mapped []models.MappedRow) []models.Transaction {
	rows := make([]models.Transaction, 0, len(mapped))
	for _, row := range mapped {
		rows = append(rows, models.Transaction{
			Description: row.Description,
			Amount:      row.Amount,
			Date:        row.Date,
			Category:    models.CategoryOther,
		})
	}
	return rows
}

// batchLen returns the size of batch i given the total row count.
func batchLen(total, batchSize, i int) int {
	start := i * batchSize
	end := start + batchSize
	if end > total {
		end = total
	}
	return end - start
}
