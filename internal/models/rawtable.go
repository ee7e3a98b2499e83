package models

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// RawTable is an ordered tabular dataset with no fixed schema, as produced by
// the file parsers. Column labels are arbitrary; the only invariants are that
// the column order is stable and every row shares the same columns. Cells are
// kept as raw strings until the pipeline decides what they mean.
type RawTable struct {
	Columns []string
	Rows    []map[string]string
}

// NewRawTable creates an empty table with the given column order.
func NewRawTable(columns []string) *RawTable {
	return &RawTable{
		Columns: append([]string{}, columns...),
		Rows:    []map[string]string{},
	}
}

// Len returns the number of rows.
func (t *RawTable) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows.
func (t *RawTable) IsEmpty() bool {
	return t == nil || len(t.Rows) == 0
}

// HasColumn reports whether the table carries the named column.
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}

// AppendRow adds a row to the table. Missing cells default to the empty string
// so every row exposes the full column set.
func (t *RawTable) AppendRow(row map[string]string) {
	full := make(map[string]string, len(t.Columns))
	for _, c := range t.Columns {
		full[c] = row[c]
	}
	t.Rows = append(t.Rows, full)
}

// Slice returns a view over rows [i, j). The row maps are shared with the
// original table; callers must not mutate them.
func (t *RawTable) Slice(i, j int) *RawTable {
	return &RawTable{
		Columns: t.Columns,
		Rows:    t.Rows[i:j],
	}
}

// Select returns a table restricted to the given columns, preserving row
// order. Unknown column names are ignored.
func (t *RawTable) Select(columns []string) *RawTable {
	kept := make([]string, 0, len(columns))
	for _, c := range columns {
		if t.HasColumn(c) {
			kept = append(kept, c)
		}
	}
	out := &RawTable{Columns: kept, Rows: make([]map[string]string, 0, len(t.Rows))}
	for _, row := range t.Rows {
		sel := make(map[string]string, len(kept))
		for _, c := range kept {
			sel[c] = row[c]
		}
		out.Rows = append(out.Rows, sel)
	}
	return out
}

// CSVString renders the table as CSV text, header first. This is the form the
// pipeline embeds in prompts.
func (t *RawTable) CSVString() (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(t.Columns); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}
	record := make([]string, len(t.Columns))
	for _, row := range t.Rows {
		for i, c := range t.Columns {
			record[i] = row[c]
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV: %w", err)
	}
	return buf.String(), nil
}
