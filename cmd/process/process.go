// Package process handles statement ingestion and processing commands
package process

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"finlens/statement-pipeline/cmd/root"
	"finlens/statement-pipeline/internal/csvtable"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pdftable"
	"finlens/statement-pipeline/internal/processor"
)

// Cmd represents the process command
var Cmd = &cobra.Command{
	Use:   "process",
	Short: "Process a bank statement into categorized transactions",
	Long: `Process a bank statement export (CSV or PDF) through the pipeline and
write the categorized transactions as CSV in the canonical schema.`,
	RunE: processFunc,
}

func init() {
	Cmd.Flags().BoolVar(&root.SaveDB, "save-db", false, "Also save results to the transaction database")
	Cmd.Flags().BoolVar(&root.NoAI, "no-ai", false, "Skip the LLM backend and use rule-based processing")
}

func processFunc(cmd *cobra.Command, args []string) error {
	if root.SharedFlags.Input == "" {
		return fmt.Errorf("input file is required, use --input")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	table, err := readStatement(ctx, root.SharedFlags.Input)
	if err != nil {
		return err
	}
	root.Log.WithFields(
		logging.Field{Key: "rows", Value: table.Len()},
		logging.Field{Key: "columns", Value: len(table.Columns)},
	).Info("Loaded statement")

	proc := root.App.Processor
	if root.NoAI {
		proc = processor.NewRuleBasedProcessor(root.App.Categories, root.App.Logger)
	}

	transactions, err := proc.Process(ctx, table, renderProgress)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return fmt.Errorf("processing statement: %w", err)
	}
	root.Log.WithFields(logging.Field{Key: "transactions", Value: len(transactions)}).Info("Processing finished")

	if root.SharedFlags.Output != "" {
		if err := csvtable.WriteTransactionsFile(root.SharedFlags.Output, transactions); err != nil {
			return err
		}
		root.Log.WithFields(logging.Field{Key: "output", Value: root.SharedFlags.Output}).Info("Wrote transactions CSV")
	} else {
		if err := csvtable.WriteTransactions(os.Stdout, transactions); err != nil {
			return err
		}
	}

	if root.SaveDB {
		store, err := root.App.OpenTransactionStore()
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.SaveTransactions(ctx, transactions); err != nil {
			return err
		}
	}
	return nil
}

// readStatement picks the parser from the file extension.
func readStatement(ctx context.Context, path string) (*models.RawTable, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdftable.ParseFile(ctx, root.App.PDFExtractor, path)
	case ".csv", ".txt", "":
		delimiter := rune(0)
		if d := root.App.Config.CSV.Delimiter; d != "" {
			delimiter = []rune(d)[0]
		}
		return csvtable.ParseFile(path, delimiter)
	default:
		return nil, fmt.Errorf("unsupported input format %q, expected .csv or .pdf", filepath.Ext(path))
	}
}

// renderProgress prints pipeline progress to stderr.
func renderProgress(fraction float64, message string) {
	fmt.Fprintf(os.Stderr, "\r[%3.0f%%] %-60s", fraction*100, message)
}
