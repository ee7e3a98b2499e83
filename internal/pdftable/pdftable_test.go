package pdftable

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/statement-pipeline/internal/pipeerror"
)

const sampleText = `
Monthly Statement

Date          Narration                 Debit       Credit
2024-01-15    ATM CASH WITHDRAWAL       500.00
2024-01-31    SALARY JAN                            50000.00
`

func TestParseText(t *testing.T) {
	table, err := ParseText(sampleText)
	require.NoError(t, err)

	assert.Equal(t, []string{"Date", "Narration", "Debit", "Credit"}, table.Columns)
	require.Equal(t, 2, table.Len())

	assert.Equal(t, "ATM CASH WITHDRAWAL", table.Rows[0]["Narration"])
	assert.Equal(t, "500.00", table.Rows[0]["Debit"])
	assert.Equal(t, "", table.Rows[0]["Credit"])
	assert.Equal(t, "50000.00", table.Rows[1]["Debit"])
}

func TestParseTextSkipsPreamble(t *testing.T) {
	// Single-field lines before the header ("Monthly Statement") must not be
	// mistaken for it.
	table, err := ParseText(sampleText)
	require.NoError(t, err)
	assert.Equal(t, "Date", table.Columns[0])
}

func TestParseTextEmpty(t *testing.T) {
	for _, text := range []string{"", "\n\n", "just one line of prose"} {
		_, err := ParseText(text)
		require.Error(t, err, "text %q", text)

		var emptyErr *pipeerror.EmptyInputError
		assert.True(t, errors.As(err, &emptyErr))
	}
}

func TestParseFileWithMockExtractor(t *testing.T) {
	extractor := &MockExtractor{Text: sampleText}

	table, err := ParseFile(context.Background(), extractor, "statement.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
}

func TestParseFileExtractorError(t *testing.T) {
	extractor := &MockExtractor{Err: errors.New("pdftotext missing")}

	_, err := ParseFile(context.Background(), extractor, "statement.pdf")
	assert.Error(t, err)
}

func TestPopplerExtractorMissingFile(t *testing.T) {
	e := NewPopplerExtractor(nil)
	_, err := e.ExtractText(context.Background(), "/does/not/exist.pdf")
	assert.Error(t, err)
}
