package processor

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/statement-pipeline/internal/llm"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
)

func mappedRows(n int) []models.MappedRow {
	rows := make([]models.MappedRow, 0, n)
	for i := 0; i < n; i++ {
		rows = append(rows, models.MappedRow{
			Date:        time.Date(2024, 1, 1+i%28, 0, 0, 0, 0, time.UTC),
			Description: fmt.Sprintf("txn %d", i),
			Amount:      decimal.NewFromInt(int64(i + 1)),
		})
	}
	return rows
}

func testHierarchy() models.CategoryHierarchy {
	return models.CategoryHierarchy{
		"Food & Dining": {"Groceries"},
		"Shopping":      {"Online Shopping"},
		"Other":         {},
	}
}

// assignmentsJSON builds a scripted response of n identical assignments.
func assignmentsJSON(n int, category, sub string) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"category": %q, "sub_category": %q}`, category, sub)
	}
	return out + "]"
}

func TestCategorizeHappyPath(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		assignmentsJSON(10, "Shopping", "Online Shopping"),
		assignmentsJSON(5, "Food & Dining", ""),
	}}
	c := &batchCategorizer{client: client, batchSize: 10, maxRetries: 1, logger: logging.NewMockLogger()}

	rows := c.categorize(context.Background(), mappedRows(15), testHierarchy(), nil)
	require.Len(t, rows, 15)

	assert.Equal(t, "Shopping", rows[0].Category)
	assert.Equal(t, "Online Shopping", rows[0].SubCategory)
	assert.Equal(t, "Food & Dining", rows[10].Category)
	assert.Equal(t, "", rows[10].SubCategory)

	// Order is preserved across batches.
	for i, row := range rows {
		assert.Equal(t, fmt.Sprintf("txn %d", i), row.Description)
	}
	assert.Equal(t, 2, client.Calls())
}

func TestCategorizeRetriesThenSkipsMisalignedBatch(t *testing.T) {
	// Second batch holds 5 rows but the model keeps answering with 4
	// assignments. After the retry it is skipped whole; the other batches
	// still come through.
	client := &llm.MockClient{Responses: []string{
		assignmentsJSON(10, "Shopping", ""),
		assignmentsJSON(4, "Shopping", ""),
		assignmentsJSON(4, "Shopping", ""),
	}}
	c := &batchCategorizer{client: client, batchSize: 10, maxRetries: 1, logger: logging.NewMockLogger()}

	var messages []string
	rows := c.categorize(context.Background(), mappedRows(15), testHierarchy(), func(f float64, msg string) {
		messages = append(messages, msg)
	})

	assert.Len(t, rows, 10)
	assert.Equal(t, 3, client.Calls())
	require.Len(t, messages, 2)
	assert.Contains(t, messages[1], "Skipped batch 2/2")

	// Later rows keep their positional identity even with a batch missing.
	assert.Equal(t, "txn 9", rows[9].Description)
}

func TestCategorizeProgressMonotonic(t *testing.T) {
	client := &llm.MockClient{RespondFunc: func(prompt string) (string, error) {
		return assignmentsJSON(10, "Other", ""), nil
	}}
	c := &batchCategorizer{client: client, batchSize: 10, maxRetries: 0, logger: logging.NewMockLogger()}

	var fractions []float64
	c.categorize(context.Background(), mappedRows(30), testHierarchy(), func(f float64, msg string) {
		fractions = append(fractions, f)
	})

	require.Len(t, fractions, 3)
	last := 0.66
	for _, f := range fractions {
		assert.Greater(t, f, last)
		last = f
	}
	assert.InDelta(t, 1.0, fractions[len(fractions)-1], 1e-9)
}

func TestCategorizeNormalizesAgainstHierarchy(t *testing.T) {
	client := &llm.MockClient{Responses: []string{`[
		{"category": "Cryptocurrency", "sub_category": "Bitcoin"},
		{"category": "Shopping", "sub_category": "Groceries"},
		{"category": "", "sub_category": ""}
	]`}}
	c := &batchCategorizer{client: client, batchSize: 10, maxRetries: 0, logger: logging.NewMockLogger()}

	rows := c.categorize(context.Background(), mappedRows(3), testHierarchy(), nil)
	require.Len(t, rows, 3)

	// Unknown category collapses to Other; a sub-category that is not a child
	// of its category is blanked; an empty category defaults.
	assert.Equal(t, models.CategoryOther, rows[0].Category)
	assert.Equal(t, "", rows[0].SubCategory)
	assert.Equal(t, "Shopping", rows[1].Category)
	assert.Equal(t, "", rows[1].SubCategory)
	assert.Equal(t, models.CategoryOther, rows[2].Category)
}

func TestCategorizeCodeFencedResponse(t *testing.T) {
	client := &llm.MockClient{Responses: []string{"```json\n" + assignmentsJSON(2, "Other", "") + "\n```"}}
	c := &batchCategorizer{client: client, batchSize: 10, maxRetries: 0, logger: logging.NewMockLogger()}

	rows := c.categorize(context.Background(), mappedRows(2), testHierarchy(), nil)
	assert.Len(t, rows, 2)
}

func TestCategorizeEmptyInput(t *testing.T) {
	client := &llm.MockClient{}
	c := &batchCategorizer{client: client, batchSize: 10, maxRetries: 0, logger: logging.NewMockLogger()}

	rows := c.categorize(context.Background(), nil, testHierarchy(), nil)
	assert.Empty(t, rows)
	assert.Equal(t, 0, client.Calls())
}

func TestCategorizePromptEmbedsHierarchyAndRows(t *testing.T) {
	client := &llm.MockClient{Responses: []string{assignmentsJSON(2, "Other", "")}}
	c := &batchCategorizer{client: client, batchSize: 10, maxRetries: 0, logger: logging.NewMockLogger()}

	c.categorize(context.Background(), mappedRows(2), testHierarchy(), nil)
	require.Len(t, client.Prompts, 1)

	prompt := client.Prompts[0]
	assert.Contains(t, prompt, "Food & Dining")
	assert.Contains(t, prompt, "txn 0")
	assert.Contains(t, prompt, "txn 1")
}
