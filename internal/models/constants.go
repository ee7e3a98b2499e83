package models

// Category constants used throughout the application.
const (
	// CategoryOther is the fallback category for transactions that match
	// nothing else. The schema contract guarantees category is never empty,
	// so anything uncategorized ends up here.
	CategoryOther = "Other"
)

// Canonical output column names, in their required order.
const (
	ColDescription = "description"
	ColAmount      = "amount"
	ColDate        = "transaction_date"
	ColCategory    = "category"
	ColSubCategory = "sub_category"
)

// SchemaColumns is the canonical column order enforced on every processor's
// output before it is considered trustworthy.
var SchemaColumns = []string{ColDescription, ColAmount, ColDate, ColCategory, ColSubCategory}

// DescriptionSeparator joins multiple columns when the semantic mapping falls
// back to concatenation.
const DescriptionSeparator = " - "
