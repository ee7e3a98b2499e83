package processor

import (
	"context"
	"strings"

	"finlens/statement-pipeline/internal/categorizer"
	"finlens/statement-pipeline/internal/currencyutils"
	"finlens/statement-pipeline/internal/dateutils"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pipeerror"
)

// Column label synonyms recognized by the rule-based processor, compared on
// lowercased, trimmed labels.
var (
	dateSynonyms = []string{
		"date", "transaction_date", "transaction date", "trans_date",
		"trans date", "posting_date", "posting date", "value_date",
		"value date", "tran date", "txn date",
	}
	descriptionSynonyms = []string{
		"description", "details", "narration", "narrative", "particulars",
		"transaction details", "remarks", "memo",
	}
	amountSynonyms = []string{
		"amount", "transaction_amount", "transaction amount", "value",
		"amt", "amount (inr)", "amount (usd)",
	}
	debitSynonyms  = []string{"debit", "withdrawal", "withdrawals", "dr", "debit amount"}
	creditSynonyms = []string{"credit", "deposit", "deposits", "cr", "credit amount"}
)

// RuleBasedProcessor is the deterministic fallback used when no LLM backend
// is reachable. It locates the date, description and amount columns by label
// synonym, cleans the rows, and categorizes with the keyword rule table.
type RuleBasedProcessor struct {
	categories CategoryProvider
	logger     logging.Logger
}

// NewRuleBasedProcessor builds the fallback processor.
func NewRuleBasedProcessor(categories CategoryProvider, logger logging.Logger) *RuleBasedProcessor {
	return &RuleBasedProcessor{categories: categories, logger: logger}
}

// columnMapping is the resolved source column for each canonical field. A
// debit/credit pair replaces a single amount column when present.
type columnMapping struct {
	date        string
	description string
	amount      string
	debit       string
	credit      string
}

// Process maps the table by column label, cleans it, and emits categorized
// rows through the same schema gate as the LLM pipeline.
func (p *RuleBasedProcessor) Process(ctx context.Context, table *models.RawTable, onProgress ProgressFunc) ([]models.Transaction, error) {
	if table == nil || table.IsEmpty() {
		return nil, &pipeerror.EmptyInputError{}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	reportProgress(onProgress, 0.0, "Mapping columns by label...")

	mapping, err := resolveColumns(table.Columns)
	if err != nil {
		reportProgress(onProgress, 1.0, "Error: "+err.Error())
		return nil, err
	}
	p.logger.WithFields(
		logging.Field{Key: "date_column", Value: mapping.date},
		logging.Field{Key: "description_column", Value: mapping.description},
	).Info("Resolved statement columns by label")

	reportProgress(onProgress, 0.33, "Cleaning rows...")

	mapped := p.cleanRows(table, mapping)

	reportProgress(onProgress, 0.66, "Categorizing with keyword rules...")

	rules, err := p.categories.KeywordRules()
	if err != nil {
		p.logger.WithError(err).Warn("Failed to load keyword rules, all rows will be categorized as Other")
		rules = nil
	}
	cat := categorizer.NewRuleCategorizer(rules)

	rows := make([]models.Transaction, 0, len(mapped))
	for _, row := range mapped {
		rows = append(rows, models.Transaction{
			Description: row.Description,
			Amount:      row.Amount,
			Date:        row.Date,
			Category:    cat.Categorize(row.Description),
		})
	}

	transactions, err := EnforceSchema(frameFromTransactions(rows))
	if err != nil {
		reportProgress(onProgress, 1.0, "Error: "+err.Error())
		return nil, err
	}

	reportProgress(onProgress, 1.0, "Processing complete.")
	return transactions, nil
}

// resolveColumns matches table columns against the synonym lists. Date and
// description are required; the amount may be a single column or a
// debit/credit pair.
func resolveColumns(columns []string) (columnMapping, error) {
	var m columnMapping
	for _, col := range columns {
		label := strings.ToLower(strings.TrimSpace(col))
		switch {
		case m.date == "" && matchesSynonym(label, dateSynonyms):
			m.date = col
		case m.description == "" && matchesSynonym(label, descriptionSynonyms):
			m.description = col
		case m.debit == "" && matchesSynonym(label, debitSynonyms):
			m.debit = col
		case m.credit == "" && matchesSynonym(label, creditSynonyms):
			m.credit = col
		case m.amount == "" && matchesSynonym(label, amountSynonyms):
			m.amount = col
		}
	}

	if m.date == "" {
		return m, &pipeerror.MappingError{Reason: "no column matched a known date label"}
	}
	if m.description == "" {
		return m, &pipeerror.MappingError{Reason: "no column matched a known description label"}
	}
	if m.amount == "" && (m.debit == "" || m.credit == "") {
		return m, &pipeerror.MappingError{Reason: "no column matched a known amount label"}
	}
	return m, nil
}

func matchesSynonym(label string, synonyms []string) bool {
	for _, s := range synonyms {
		if label == s {
			return true
		}
	}
	return false
}

// cleanRows parses dates and amounts, drops rows with an unparseable date or
// blank description, and removes exact duplicates on the date, amount and
// description triple.
func (p *RuleBasedProcessor) cleanRows(table *models.RawTable, mapping columnMapping) []models.MappedRow {
	seen := make(map[string]struct{}, table.Len())
	mapped := make([]models.MappedRow, 0, table.Len())
	dropped := 0

	for _, row := range table.Rows {
		date, _, err := dateutils.ParseDate(dateutils.CleanDateString(row[mapping.date]))
		if err != nil {
			dropped++
			continue
		}

		description := strings.TrimSpace(row[mapping.description])
		if description == "" {
			dropped++
			continue
		}

		amount := currencyutils.ParseAmountOrZero(row[mapping.amount])
		if mapping.amount == "" {
			credit := currencyutils.ParseAmountOrZero(row[mapping.credit])
			debit := currencyutils.ParseAmountOrZero(row[mapping.debit])
			amount = credit.Sub(debit)
		}

		key := dateutils.ToISODate(date) + "\x00" + amount.String() + "\x00" + description
		if _, ok := seen[key]; ok {
			dropped++
			continue
		}
		seen[key] = struct{}{}

		mapped = append(mapped, models.MappedRow{Date: date, Description: description, Amount: amount})
	}

	if dropped > 0 {
		p.logger.WithFields(
			logging.Field{Key: "dropped", Value: dropped},
			logging.Field{Key: "kept", Value: len(mapped)},
		).Info("Dropped invalid or duplicate rows during cleaning")
	}
	return mapped
}
