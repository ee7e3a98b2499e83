package csvtable

import (
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"

	"finlens/statement-pipeline/internal/dateutils"
	"finlens/statement-pipeline/internal/models"
)

// csvRecord is the serialized form of one transaction row in the canonical
// column order.
type csvRecord struct {
	Description     string `csv:"description"`
	Amount          string `csv:"amount"`
	TransactionDate string `csv:"transaction_date"`
	Category        string `csv:"category"`
	SubCategory     string `csv:"sub_category"`
}

// WriteTransactions writes transactions as CSV in the canonical schema.
// Dates are emitted as ISO 8601 calendar dates and amounts as exact decimal
// strings.
func WriteTransactions(w io.Writer, transactions []models.Transaction) error {
	records := make([]csvRecord, 0, len(transactions))
	for _, t := range transactions {
		records = append(records, csvRecord{
			Description:     t.Description,
			Amount:          t.Amount.String(),
			TransactionDate: dateutils.ToISODate(t.Date),
			Category:        t.Category,
			SubCategory:     t.SubCategory,
		})
	}
	if err := gocsv.Marshal(&records, w); err != nil {
		return fmt.Errorf("writing CSV output: %w", err)
	}
	return nil
}

// WriteTransactionsFile writes transactions to the named file, creating or
// truncating it.
func WriteTransactionsFile(path string, transactions []models.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := WriteTransactions(f, transactions); err != nil {
		return err
	}
	return f.Close()
}
