package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/statement-pipeline/internal/llm"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pipeerror"
)

// staticCategories is a fixed CategoryProvider for tests.
type staticCategories struct {
	hierarchy models.CategoryHierarchy
	rules     []models.CategoryRule
	err       error
}

func (s *staticCategories) Hierarchy() (models.CategoryHierarchy, error) {
	return s.hierarchy, s.err
}

func (s *staticCategories) KeywordRules() ([]models.CategoryRule, error) {
	return s.rules, s.err
}

func testCategories() *staticCategories {
	return &staticCategories{
		hierarchy: models.CategoryHierarchy{
			"Food & Dining":  {"Groceries"},
			"Transportation": {},
			"Salary":         {},
			"Other":          {},
		},
		rules: []models.CategoryRule{
			{Category: "Food & Dining", Keywords: []string{"restaurant", "swiggy"}},
			{Category: "Salary", Keywords: []string{"salary"}},
		},
	}
}

func statementTable() *models.RawTable {
	table := models.NewRawTable([]string{"Date", "Narration", "Withdrawal", "Deposit"})
	table.AppendRow(map[string]string{"Date": "2024-01-15", "Narration": "SWIGGY ORDER", "Withdrawal": "450.00", "Deposit": ""})
	table.AppendRow(map[string]string{"Date": "2024-01-31", "Narration": "SALARY JAN", "Withdrawal": "", "Deposit": "50000.00"})
	return table
}

func TestAIProcessorEmptyInput(t *testing.T) {
	client := &llm.MockClient{}
	p := NewAIProcessor(client, testCategories(), logging.NewMockLogger())

	_, err := p.Process(context.Background(), models.NewRawTable([]string{"Date"}), nil)
	require.Error(t, err)

	var emptyErr *pipeerror.EmptyInputError
	assert.True(t, errors.As(err, &emptyErr))
	assert.Equal(t, 0, client.Calls(), "empty input must fail before any model call")
}

func TestAIProcessorEndToEnd(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		// Pass 1: structure.
		`{
			"date_info": {"column_name": "Date", "format_string": "%Y-%m-%d"},
			"amount_info": {
				"representation": "dual_column_debit_credit",
				"debit_column": "Withdrawal",
				"credit_column": "Deposit"
			}
		}`,
		// Pass 2: description column.
		`{"description_column": "Narration"}`,
		// Pass 3: one batch of two rows.
		`[
			{"category": "Food & Dining", "sub_category": "Groceries"},
			{"category": "Salary", "sub_category": ""}
		]`,
	}}

	var fractions []float64
	var messages []string
	p := NewAIProcessor(client, testCategories(), logging.NewMockLogger())
	transactions, err := p.Process(context.Background(), statementTable(), func(f float64, msg string) {
		fractions = append(fractions, f)
		messages = append(messages, msg)
	})
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	assert.Equal(t, "SWIGGY ORDER", transactions[0].Description)
	assert.Equal(t, "-450", transactions[0].Amount.String())
	assert.Equal(t, "Food & Dining", transactions[0].Category)
	assert.Equal(t, "Groceries", transactions[0].SubCategory)

	assert.Equal(t, "SALARY JAN", transactions[1].Description)
	assert.Equal(t, "50000", transactions[1].Amount.String())
	assert.Equal(t, "Salary", transactions[1].Category)

	assert.Equal(t, 3, client.Calls())

	// Progress starts at zero, ends at one, and never decreases.
	require.NotEmpty(t, fractions)
	assert.Equal(t, 0.0, fractions[0])
	assert.InDelta(t, 1.0, fractions[len(fractions)-1], 1e-9)
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1])
	}
	assert.Equal(t, "Processing complete.", messages[len(messages)-1])
}

func TestAIProcessorStructuralFailureAborts(t *testing.T) {
	client := &llm.MockClient{Errs: []error{errors.New("model offline")}}

	var lastFraction float64
	var lastMessage string
	p := NewAIProcessor(client, testCategories(), logging.NewMockLogger())
	_, err := p.Process(context.Background(), statementTable(), func(f float64, msg string) {
		lastFraction = f
		lastMessage = msg
	})
	require.Error(t, err)

	var structuralErr *pipeerror.StructuralAnalysisError
	assert.True(t, errors.As(err, &structuralErr))
	assert.InDelta(t, 1.0, lastFraction, 1e-9)
	assert.Contains(t, lastMessage, "Error:")
}

func TestAIProcessorSemanticFailureDegrades(t *testing.T) {
	client := &llm.MockClient{
		Responses: []string{
			`{
				"date_info": {"column_name": "Date", "format_string": "%Y-%m-%d"},
				"amount_info": {
					"representation": "dual_column_debit_credit",
					"debit_column": "Withdrawal",
					"credit_column": "Deposit"
				}
			}`,
			"",
			`[
				{"category": "Other", "sub_category": ""},
				{"category": "Other", "sub_category": ""}
			]`,
		},
		Errs: []error{nil, errors.New("timeout"), nil},
	}

	p := NewAIProcessor(client, testCategories(), logging.NewMockLogger())
	transactions, err := p.Process(context.Background(), statementTable(), nil)
	require.NoError(t, err)
	require.Len(t, transactions, 2)

	// The Pass 2 failure falls through the chain until the concat fallback
	// takes the only remaining column.
	assert.Equal(t, "SWIGGY ORDER", transactions[0].Description)
}

func TestAIProcessorHierarchyErrorDoesNotAbort(t *testing.T) {
	client := &llm.MockClient{Responses: []string{
		`{
			"date_info": {"column_name": "Date", "format_string": "%Y-%m-%d"},
			"amount_info": {
				"representation": "dual_column_debit_credit",
				"debit_column": "Withdrawal",
				"credit_column": "Deposit"
			}
		}`,
		`{"description_column": "Narration"}`,
		`[
			{"category": "Food & Dining", "sub_category": ""},
			{"category": "Salary", "sub_category": ""}
		]`,
	}}

	categories := &staticCategories{err: errors.New("yaml broken")}
	p := NewAIProcessor(client, categories, logging.NewMockLogger())
	transactions, err := p.Process(context.Background(), statementTable(), nil)
	require.NoError(t, err)
	require.Len(t, transactions, 2)
}
