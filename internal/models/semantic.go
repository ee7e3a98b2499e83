package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SemanticMapping is the result of Pass 2: which column (or columns) carry the
// human-readable transaction description. More than one column means the
// values are concatenated in order with DescriptionSeparator; that form is
// only produced by the fallback path.
type SemanticMapping struct {
	DescriptionColumns []string
}

// IsConcat reports whether the mapping concatenates multiple columns.
func (m SemanticMapping) IsConcat() bool {
	return len(m.DescriptionColumns) > 1
}

// Describe builds the description for one raw row according to the mapping.
func (m SemanticMapping) Describe(row map[string]string) string {
	if len(m.DescriptionColumns) == 1 {
		return row[m.DescriptionColumns[0]]
	}
	parts := make([]string, 0, len(m.DescriptionColumns))
	for _, c := range m.DescriptionColumns {
		parts = append(parts, row[c])
	}
	return strings.Join(parts, DescriptionSeparator)
}

// semanticMappingJSON is the wire shape the LLM is asked to return. The
// description_column value may be a single string or a list of strings.
type semanticMappingJSON struct {
	DescriptionColumn json.RawMessage `json:"description_column"`
}

// UnmarshalJSON accepts {"description_column": "X"} as well as
// {"description_column": ["X","Y"]}.
func (m *SemanticMapping) UnmarshalJSON(data []byte) error {
	var wire semanticMappingJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	if len(wire.DescriptionColumn) == 0 {
		return fmt.Errorf("description_column is required")
	}

	var single string
	if err := json.Unmarshal(wire.DescriptionColumn, &single); err == nil {
		if single == "" {
			return fmt.Errorf("description_column must not be empty")
		}
		m.DescriptionColumns = []string{single}
		return nil
	}

	var many []string
	if err := json.Unmarshal(wire.DescriptionColumn, &many); err != nil {
		return fmt.Errorf("description_column must be a string or list of strings")
	}
	if len(many) == 0 {
		return fmt.Errorf("description_column list must not be empty")
	}
	m.DescriptionColumns = many
	return nil
}

// MarshalJSON emits the single-string form when only one column is mapped.
func (m SemanticMapping) MarshalJSON() ([]byte, error) {
	if len(m.DescriptionColumns) == 1 {
		return json.Marshal(map[string]string{"description_column": m.DescriptionColumns[0]})
	}
	return json.Marshal(map[string][]string{"description_column": m.DescriptionColumns})
}

// Validate checks that every mapped column exists in the given column set.
func (m SemanticMapping) Validate(columns []string) error {
	if len(m.DescriptionColumns) == 0 {
		return fmt.Errorf("no description column mapped")
	}
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}
	for _, c := range m.DescriptionColumns {
		if !known[c] {
			return fmt.Errorf("description column %q not present in input table", c)
		}
	}
	return nil
}
