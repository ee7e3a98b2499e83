package processor

import (
	"fmt"
	"strings"
	"time"

	"finlens/statement-pipeline/internal/dateutils"
	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pipeerror"

	"github.com/shopspring/decimal"
)

// Frame is the column-ordered table a processor produces before schema
// enforcement. Cells are loosely typed on purpose: categorization results
// arrive as decoded JSON and the contract, not the producer, decides what
// coerces.
type Frame struct {
	Columns []string
	Rows    []map[string]interface{}
}

// NewFrame creates an empty frame with the given column order.
func NewFrame(columns []string) *Frame {
	return &Frame{
		Columns: append([]string{}, columns...),
		Rows:    []map[string]interface{}{},
	}
}

func (f *Frame) hasColumn(name string) bool {
	for _, c := range f.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// EnforceSchema is the single gate between processor output and trusted data.
// It verifies the five canonical columns are present, coerces each cell to
// its required type, and raises a SchemaViolationError naming the offending
// column otherwise. Rows that pass come back as Transactions in the canonical
// order; no partially coerced row is ever returned.
func EnforceSchema(frame *Frame) ([]models.Transaction, error) {
	if frame == nil {
		return nil, &pipeerror.SchemaViolationError{Column: "", Reason: "processor returned no result table"}
	}

	for _, col := range models.SchemaColumns {
		if !frame.hasColumn(col) {
			return nil, &pipeerror.SchemaViolationError{Column: col, Reason: "required column is missing"}
		}
	}

	transactions := make([]models.Transaction, 0, len(frame.Rows))
	for i, row := range frame.Rows {
		description, err := coerceString(row[models.ColDescription])
		if err != nil {
			return nil, &pipeerror.SchemaViolationError{Column: models.ColDescription, Reason: fmt.Sprintf("row %d", i), Err: err}
		}
		amount, err := coerceAmount(row[models.ColAmount])
		if err != nil {
			return nil, &pipeerror.SchemaViolationError{Column: models.ColAmount, Reason: fmt.Sprintf("row %d", i), Err: err}
		}
		date, err := coerceDate(row[models.ColDate])
		if err != nil {
			return nil, &pipeerror.SchemaViolationError{Column: models.ColDate, Reason: fmt.Sprintf("row %d", i), Err: err}
		}
		category, err := coerceString(row[models.ColCategory])
		if err != nil {
			return nil, &pipeerror.SchemaViolationError{Column: models.ColCategory, Reason: fmt.Sprintf("row %d", i), Err: err}
		}
		subCategory, err := coerceString(row[models.ColSubCategory])
		if err != nil {
			return nil, &pipeerror.SchemaViolationError{Column: models.ColSubCategory, Reason: fmt.Sprintf("row %d", i), Err: err}
		}

		if strings.TrimSpace(category) == "" {
			category = models.CategoryOther
		}

		transactions = append(transactions, models.Transaction{
			Description: description,
			Amount:      amount,
			Date:        date,
			Category:    category,
			SubCategory: subCategory,
		})
	}
	return transactions, nil
}

func coerceString(v interface{}) (string, error) {
	switch s := v.(type) {
	case nil:
		return "", nil
	case string:
		return s, nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return fmt.Sprint(v), nil
	}
}

func coerceAmount(v interface{}) (decimal.Decimal, error) {
	switch a := v.(type) {
	case decimal.Decimal:
		return a, nil
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(a))
		if err != nil {
			return decimal.Zero, fmt.Errorf("cannot coerce %q to a numeric amount: %w", a, err)
		}
		return d, nil
	case float64:
		return decimal.NewFromFloat(a), nil
	case int:
		return decimal.NewFromInt(int64(a)), nil
	case int64:
		return decimal.NewFromInt(a), nil
	case nil:
		return decimal.Zero, fmt.Errorf("amount is missing")
	default:
		return decimal.Zero, fmt.Errorf("cannot coerce %T to a numeric amount", v)
	}
}

func coerceDate(v interface{}) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		if d.IsZero() {
			return time.Time{}, fmt.Errorf("date is zero")
		}
		return d, nil
	case string:
		t, _, err := dateutils.ParseDate(d)
		if err != nil {
			return time.Time{}, fmt.Errorf("cannot coerce %q to a calendar date: %w", d, err)
		}
		return t, nil
	case nil:
		return time.Time{}, fmt.Errorf("date is missing")
	default:
		return time.Time{}, fmt.Errorf("cannot coerce %T to a calendar date", v)
	}
}

// frameFromTransactions rebuilds a Frame from typed transactions. Both
// processor variants funnel their final rows through this and EnforceSchema
// so the gate sees identical shapes regardless of variant.
func frameFromTransactions(transactions []models.Transaction) *Frame {
	frame := NewFrame(models.SchemaColumns)
	for _, tx := range transactions {
		frame.Rows = append(frame.Rows, map[string]interface{}{
			models.ColDescription: tx.Description,
			models.ColAmount:      tx.Amount,
			models.ColDate:        tx.Date,
			models.ColCategory:    tx.Category,
			models.ColSubCategory: tx.SubCategory,
		})
	}
	return frame
}
