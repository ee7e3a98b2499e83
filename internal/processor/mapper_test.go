package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
)

func TestApplyMappingsDualColumn(t *testing.T) {
	table := models.NewRawTable([]string{"Date", "Narration", "Withdrawal", "Deposit"})
	table.AppendRow(map[string]string{"Date": "2024-01-15", "Narration": "ATM CASH", "Withdrawal": "500.00", "Deposit": ""})
	table.AppendRow(map[string]string{"Date": "2024-01-16", "Narration": "SALARY JAN", "Withdrawal": "", "Deposit": "2500.00"})

	structural := &models.StructuralInfo{
		DateInfo: models.DateInfo{ColumnName: "Date", FormatString: "%Y-%m-%d"},
		AmountInfo: models.AmountInfo{
			Representation: models.AmountDualDebitCredit,
			DebitColumn:    "Withdrawal",
			CreditColumn:   "Deposit",
		},
	}
	semantic := models.SemanticMapping{DescriptionColumns: []string{"Narration"}}

	rows := applyMappings(table, structural, semantic, logging.NewMockLogger())
	require.Len(t, rows, 2)

	assert.Equal(t, "ATM CASH", rows[0].Description)
	assert.Equal(t, "-500", rows[0].Amount.String())
	assert.Equal(t, "2024-01-15", rows[0].Date.Format("2006-01-02"))

	assert.Equal(t, "SALARY JAN", rows[1].Description)
	assert.Equal(t, "2500", rows[1].Amount.String())
}

func TestApplyMappingsSingleColumnWithType(t *testing.T) {
	table := models.NewRawTable([]string{"Txn Date", "Details", "Amount", "Dr/Cr"})
	table.AppendRow(map[string]string{"Txn Date": "15/01/2024", "Details": "POS PURCHASE", "Amount": "200.00", "Dr/Cr": "DR"})
	table.AppendRow(map[string]string{"Txn Date": "16/01/2024", "Details": "REFUND", "Amount": "50.00", "Dr/Cr": "CR"})

	structural := &models.StructuralInfo{
		DateInfo: models.DateInfo{ColumnName: "Txn Date", FormatString: "%d/%m/%Y"},
		AmountInfo: models.AmountInfo{
			Representation:   models.AmountSingleWithType,
			AmountColumn:     "Amount",
			TypeColumn:       "Dr/Cr",
			DebitIdentifier:  "DR",
			CreditIdentifier: "CR",
		},
	}
	semantic := models.SemanticMapping{DescriptionColumns: []string{"Details"}}

	rows := applyMappings(table, structural, semantic, logging.NewMockLogger())
	require.Len(t, rows, 2)
	assert.Equal(t, "-200", rows[0].Amount.String())
	assert.Equal(t, "50", rows[1].Amount.String())
}

func TestApplyMappingsTypeMarkerInsideAmountColumn(t *testing.T) {
	// Some exports fold the DR/CR marker into the amount cell itself. The
	// numeric part must still parse and the marker must still flip the sign.
	table := models.NewRawTable([]string{"Date", "Details", "Amount"})
	table.AppendRow(map[string]string{"Date": "2024-01-15", "Details": "POS PURCHASE", "Amount": "DR 200"})
	table.AppendRow(map[string]string{"Date": "2024-01-16", "Details": "SALARY", "Amount": "CR 500"})

	structural := &models.StructuralInfo{
		DateInfo: models.DateInfo{ColumnName: "Date", FormatString: "%Y-%m-%d"},
		AmountInfo: models.AmountInfo{
			Representation:   models.AmountSingleWithType,
			AmountColumn:     "Amount",
			TypeColumn:       "Amount",
			DebitIdentifier:  "DR",
			CreditIdentifier: "CR",
		},
	}
	semantic := models.SemanticMapping{DescriptionColumns: []string{"Details"}}

	rows := applyMappings(table, structural, semantic, logging.NewMockLogger())
	require.Len(t, rows, 2)
	assert.Equal(t, "-200", rows[0].Amount.String())
	assert.Equal(t, "500", rows[1].Amount.String())
}

func TestApplyMappingsDropsBadRows(t *testing.T) {
	table := models.NewRawTable([]string{"Date", "Narration", "Amount"})
	table.AppendRow(map[string]string{"Date": "2024-01-15", "Narration": "KEPT", "Amount": "10.00"})
	table.AppendRow(map[string]string{"Date": "not a date", "Narration": "BAD DATE", "Amount": "10.00"})
	table.AppendRow(map[string]string{"Date": "2024-01-17", "Narration": "   ", "Amount": "10.00"})
	table.AppendRow(map[string]string{"Date": "2024-01-18", "Narration": "BLANK AMOUNT", "Amount": ""})

	structural := &models.StructuralInfo{
		DateInfo:   models.DateInfo{ColumnName: "Date", FormatString: "%Y-%m-%d"},
		AmountInfo: models.AmountInfo{Representation: models.AmountSingleSigned, AmountColumn: "Amount"},
	}
	semantic := models.SemanticMapping{DescriptionColumns: []string{"Narration"}}

	logger := logging.NewMockLogger()
	rows := applyMappings(table, structural, semantic, logger)

	// Bad date and blank description drop the row; a blank amount is zero.
	require.Len(t, rows, 2)
	assert.Equal(t, "KEPT", rows[0].Description)
	assert.Equal(t, "BLANK AMOUNT", rows[1].Description)
	assert.True(t, rows[1].Amount.IsZero())
}

func TestApplyMappingsBadFormatFallsBackToCommonFormats(t *testing.T) {
	table := models.NewRawTable([]string{"Date", "Narration", "Amount"})
	table.AppendRow(map[string]string{"Date": "15.01.2024", "Narration": "FALLBACK", "Amount": "1.00"})

	structural := &models.StructuralInfo{
		DateInfo:   models.DateInfo{ColumnName: "Date", FormatString: "%Q"},
		AmountInfo: models.AmountInfo{Representation: models.AmountSingleSigned, AmountColumn: "Amount"},
	}
	semantic := models.SemanticMapping{DescriptionColumns: []string{"Narration"}}

	logger := logging.NewMockLogger()
	rows := applyMappings(table, structural, semantic, logger)

	require.Len(t, rows, 1)
	assert.Equal(t, "2024-01-15", rows[0].Date.Format("2006-01-02"))
	assert.NotEmpty(t, logger.Messages("WARN"))
}

func TestApplyMappingsIdempotent(t *testing.T) {
	table := models.NewRawTable([]string{"Date", "Narration", "Withdrawal", "Deposit"})
	table.AppendRow(map[string]string{"Date": "2024-01-15", "Narration": "ATM CASH", "Withdrawal": "500.00", "Deposit": ""})
	table.AppendRow(map[string]string{"Date": "2024-01-16", "Narration": "SALARY", "Withdrawal": "", "Deposit": "2500.00"})

	structural := &models.StructuralInfo{
		DateInfo: models.DateInfo{ColumnName: "Date", FormatString: "%Y-%m-%d"},
		AmountInfo: models.AmountInfo{
			Representation: models.AmountDualDebitCredit,
			DebitColumn:    "Withdrawal",
			CreditColumn:   "Deposit",
		},
	}
	semantic := models.SemanticMapping{DescriptionColumns: []string{"Narration"}}

	first := applyMappings(table, structural, semantic, logging.NewMockLogger())
	second := applyMappings(table, structural, semantic, logging.NewMockLogger())

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].Description, second[i].Description)
		assert.True(t, first[i].Date.Equal(second[i].Date))
		assert.True(t, first[i].Amount.Equal(second[i].Amount))
	}
}

func TestApplyMappingsConcatDescription(t *testing.T) {
	table := models.NewRawTable([]string{"Date", "Type", "Ref", "Amount"})
	table.AppendRow(map[string]string{"Date": "2024-01-15", "Type": "UPI", "Ref": "998877", "Amount": "-20.00"})

	structural := &models.StructuralInfo{
		DateInfo:   models.DateInfo{ColumnName: "Date", FormatString: "%Y-%m-%d"},
		AmountInfo: models.AmountInfo{Representation: models.AmountSingleSigned, AmountColumn: "Amount"},
	}
	semantic := models.SemanticMapping{DescriptionColumns: []string{"Type", "Ref"}}

	rows := applyMappings(table, structural, semantic, logging.NewMockLogger())
	require.Len(t, rows, 1)
	assert.Equal(t, "UPI - 998877", rows[0].Description)
}
