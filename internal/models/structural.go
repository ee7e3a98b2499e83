package models

import "fmt"

// AmountRepresentation enumerates the structural patterns a statement export
// uses to represent transaction amounts.
type AmountRepresentation string

const (
	// AmountDualDebitCredit means separate columns for debit and credit amounts.
	AmountDualDebitCredit AmountRepresentation = "dual_column_debit_credit"
	// AmountSingleSigned means one column where debits are negative and credits positive.
	AmountSingleSigned AmountRepresentation = "single_column_signed"
	// AmountSingleWithType means one amount column plus a type column flagging debit/credit.
	AmountSingleWithType AmountRepresentation = "single_column_with_type"
)

// DateInfo identifies the date column and its strftime format string as
// discovered by structural analysis.
type DateInfo struct {
	ColumnName   string `json:"column_name"`
	FormatString string `json:"format_string"`
}

// AmountInfo describes how monetary amounts are encoded. Which optional
// fields must be populated depends on Representation; see Validate.
type AmountInfo struct {
	Representation   AmountRepresentation `json:"representation"`
	DebitColumn      string               `json:"debit_column,omitempty"`
	CreditColumn     string               `json:"credit_column,omitempty"`
	AmountColumn     string               `json:"amount_column,omitempty"`
	TypeColumn       string               `json:"type_column,omitempty"`
	DebitIdentifier  string               `json:"debit_identifier,omitempty"`
	CreditIdentifier string               `json:"credit_identifier,omitempty"`
}

// StructuralInfo is the result of Pass 1: which columns are machine-readable
// and how. It is derived once per run and immutable thereafter.
type StructuralInfo struct {
	DateInfo   DateInfo   `json:"date_info"`
	AmountInfo AmountInfo `json:"amount_info"`
}

// Validate checks the field-consistency invariant: the populated fields must
// match the chosen amount representation, and every referenced column must
// exist in the input table.
func (s *StructuralInfo) Validate(columns []string) error {
	if s.DateInfo.ColumnName == "" {
		return fmt.Errorf("date_info.column_name is required")
	}
	if s.DateInfo.FormatString == "" {
		return fmt.Errorf("date_info.format_string is required")
	}

	referenced := []string{s.DateInfo.ColumnName}

	switch s.AmountInfo.Representation {
	case AmountDualDebitCredit:
		if s.AmountInfo.DebitColumn == "" || s.AmountInfo.CreditColumn == "" {
			return fmt.Errorf("representation %s requires debit_column and credit_column", s.AmountInfo.Representation)
		}
		referenced = append(referenced, s.AmountInfo.DebitColumn, s.AmountInfo.CreditColumn)
	case AmountSingleSigned:
		if s.AmountInfo.AmountColumn == "" {
			return fmt.Errorf("representation %s requires amount_column", s.AmountInfo.Representation)
		}
		referenced = append(referenced, s.AmountInfo.AmountColumn)
	case AmountSingleWithType:
		if s.AmountInfo.AmountColumn == "" || s.AmountInfo.TypeColumn == "" {
			return fmt.Errorf("representation %s requires amount_column and type_column", s.AmountInfo.Representation)
		}
		if s.AmountInfo.DebitIdentifier == "" {
			return fmt.Errorf("representation %s requires debit_identifier", s.AmountInfo.Representation)
		}
		referenced = append(referenced, s.AmountInfo.AmountColumn, s.AmountInfo.TypeColumn)
	default:
		return fmt.Errorf("unknown amount representation: %q", s.AmountInfo.Representation)
	}

	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, c := range referenced {
		if !known[c] {
			return fmt.Errorf("column %q not present in input table", c)
		}
	}
	return nil
}

// UsedColumns returns the column names consumed by structural analysis, in a
// stable order. Pass 2 works on the complement of this set.
func (s *StructuralInfo) UsedColumns() []string {
	used := []string{s.DateInfo.ColumnName}
	seen := map[string]bool{s.DateInfo.ColumnName: true}
	add := func(c string) {
		if c != "" && !seen[c] {
			used = append(used, c)
			seen[c] = true
		}
	}
	add(s.AmountInfo.DebitColumn)
	add(s.AmountInfo.CreditColumn)
	add(s.AmountInfo.AmountColumn)
	add(s.AmountInfo.TypeColumn)
	return used
}

// RemainingColumns returns the table columns not consumed by structural
// analysis, preserving table order.
func (s *StructuralInfo) RemainingColumns(columns []string) []string {
	used := make(map[string]bool)
	for _, c := range s.UsedColumns() {
		used[c] = true
	}
	var remaining []string
	for _, c := range columns {
		if !used[c] {
			remaining = append(remaining, c)
		}
	}
	return remaining
}
