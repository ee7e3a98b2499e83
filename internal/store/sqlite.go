package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
)

const transactionSchema = `
CREATE TABLE IF NOT EXISTS transactions (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	description      TEXT NOT NULL,
	amount           TEXT NOT NULL,
	transaction_date TEXT NOT NULL,
	category         TEXT NOT NULL,
	sub_category     TEXT NOT NULL DEFAULT '',
	created_at       TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (transaction_date);
CREATE INDEX IF NOT EXISTS idx_transactions_category ON transactions (category);
`

// TransactionStore persists categorized transactions in SQLite. Amounts are
// stored as exact decimal strings, never as floats.
type TransactionStore struct {
	db     *sql.DB
	logger logging.Logger
}

// OpenTransactionStore opens (creating if needed) the SQLite database at
// path and ensures the schema exists.
func OpenTransactionStore(path string, logger logging.Logger) (*TransactionStore, error) {
	if logger == nil {
		logger = logging.GetLogger()
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory %s: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_journal_mode=WAL", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connecting to database %s: %w", path, err)
	}
	if _, err := db.Exec(transactionSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing database schema: %w", err)
	}

	logger.WithField("path", path).Debug("Opened transaction database")
	return &TransactionStore{db: db, logger: logger}, nil
}

// SaveTransactions inserts the rows in a single database transaction. On any
// failure nothing is persisted.
func (s *TransactionStore) SaveTransactions(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO transactions (description, amount, transaction_date, category, sub_category)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, t := range transactions {
		_, err := stmt.ExecContext(ctx,
			t.Description,
			t.Amount.String(),
			t.Date.Format("2006-01-02"),
			t.Category,
			t.SubCategory,
		)
		if err != nil {
			return fmt.Errorf("inserting transaction: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transactions: %w", err)
	}
	s.logger.WithField("count", len(transactions)).Info("Saved transactions to database")
	return nil
}

// ListTransactions returns all stored rows ordered by transaction date, then
// insertion order.
func (s *TransactionStore) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT description, amount, transaction_date, category, sub_category
		 FROM transactions
		 ORDER BY transaction_date, id`)
	if err != nil {
		return nil, fmt.Errorf("querying transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		var (
			t         models.Transaction
			amountStr string
			dateStr   string
		)
		if err := rows.Scan(&t.Description, &amountStr, &dateStr, &t.Category, &t.SubCategory); err != nil {
			return nil, fmt.Errorf("scanning transaction row: %w", err)
		}
		amount, err := decimal.NewFromString(amountStr)
		if err != nil {
			return nil, fmt.Errorf("decoding stored amount %q: %w", amountStr, err)
		}
		date, err := time.Parse("2006-01-02", dateStr)
		if err != nil {
			return nil, fmt.Errorf("decoding stored date %q: %w", dateStr, err)
		}
		t.Amount = amount
		t.Date = date
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating transaction rows: %w", err)
	}
	return transactions, nil
}

// Close releases the underlying database handle.
func (s *TransactionStore) Close() error {
	return s.db.Close()
}
