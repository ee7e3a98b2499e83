// Package csvtable reads bank statement CSV files into raw tables and writes
// processed transactions back out in the canonical schema.
package csvtable

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pipeerror"
)

// candidate delimiters tried during sniffing, in preference order.
var candidateDelimiters = []rune{',', ';', '\t'}

// Parse reads CSV data into a RawTable. The first non-blank record is the
// header; the delimiter is sniffed from the header line unless forced with a
// non-zero delimiter. Rows and columns that are entirely empty are dropped.
func Parse(r io.Reader, delimiter rune) (*models.RawTable, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	if delimiter == 0 {
		delimiter = sniffDelimiter(data)
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing CSV: %w", err)
	}

	var header []string
	var table *models.RawTable
	for _, record := range records {
		if isBlankRecord(record) {
			continue
		}
		if header == nil {
			header = trimFields(record)
			table = models.NewRawTable(header)
			continue
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			} else {
				row[col] = ""
			}
		}
		table.AppendRow(row)
	}

	if table == nil || table.IsEmpty() {
		return nil, &pipeerror.EmptyInputError{}
	}
	return dropEmptyColumns(table), nil
}

// ParseFile reads the named CSV file into a RawTable.
func ParseFile(path string, delimiter rune) (*models.RawTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	return Parse(f, delimiter)
}

// sniffDelimiter picks the candidate that splits the first line into the most
// fields, defaulting to comma.
func sniffDelimiter(data []byte) rune {
	line := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		line = data[:idx]
	}

	best := ','
	bestCount := 0
	for _, d := range candidateDelimiters {
		count := strings.Count(string(line), string(d))
		if count > bestCount {
			best = d
			bestCount = count
		}
	}
	return best
}

func isBlankRecord(record []string) bool {
	for _, field := range record {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}

func trimFields(record []string) []string {
	out := make([]string, len(record))
	for i, field := range record {
		out[i] = strings.TrimSpace(strings.TrimPrefix(field, "\uFEFF"))
	}
	return out
}

// dropEmptyColumns removes columns whose every cell is empty. Unnamed filler
// columns are common in exported statements.
func dropEmptyColumns(table *models.RawTable) *models.RawTable {
	kept := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		empty := true
		for _, row := range table.Rows {
			if strings.TrimSpace(row[col]) != "" {
				empty = false
				break
			}
		}
		if !empty && col != "" {
			kept = append(kept, col)
		}
	}
	if len(kept) == len(table.Columns) {
		return table
	}
	return table.Select(kept)
}
