package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single standardized transaction record, the canonical
// output shape of every processor. Amount follows the credit-positive,
// debit-negative sign convention. Category is never empty (CategoryOther is
// the default). A non-empty SubCategory always names a child of Category in
// the hierarchy snapshot used for the run.
type Transaction struct {
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"transaction_date"`
	Category    string          `json:"category"`
	SubCategory string          `json:"sub_category"`
}

// MappedRow is the intermediate shape after deterministic mapping: dated,
// described and signed, but not yet categorized.
type MappedRow struct {
	Date        time.Time
	Description string
	Amount      decimal.Decimal
}
