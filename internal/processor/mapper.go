package processor

import (
	"strings"
	"time"

	"finlens/statement-pipeline/internal/currencyutils"
	"finlens/statement-pipeline/internal/dateutils"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"

	"github.com/shopspring/decimal"
)

// applyMappings is the pure transform at the heart of the pipeline: it takes
// the Pass 1/Pass 2 decisions and applies them to every row with no further
// model calls. Rows whose date cannot be parsed or whose description is blank
// are dropped; a blank amount cell counts as zero, matching how dual
// debit/credit statements leave the inactive side empty.
func applyMappings(table *models.RawTable, structural *models.StructuralInfo, semantic models.SemanticMapping, logger logging.Logger) []models.MappedRow {
	layout, err := dateutils.LayoutFromStrftime(structural.DateInfo.FormatString)
	if err != nil {
		logger.WithError(err).WithField("format", structural.DateInfo.FormatString).
			Warn("Unusable date format from structural analysis, falling back to common formats")
		layout = ""
	}

	rows := make([]models.MappedRow, 0, table.Len())
	dropped := 0
	for _, raw := range table.Rows {
		date, ok := parseRowDate(raw[structural.DateInfo.ColumnName], layout)
		if !ok {
			dropped++
			continue
		}

		description := strings.TrimSpace(semantic.Describe(raw))
		if description == "" {
			dropped++
			continue
		}

		rows = append(rows, models.MappedRow{
			Date:        date,
			Description: description,
			Amount:      rowAmount(raw, &structural.AmountInfo),
		})
	}

	if dropped > 0 {
		logger.WithFields(
			logging.Field{Key: "dropped", Value: dropped},
			logging.Field{Key: "kept", Value: len(rows)},
		).Info("Dropped rows with unparseable date or empty description")
	}
	return rows
}

// parseRowDate parses one date cell with the discovered layout, or with the
// common-format list when no layout survived translation.
func parseRowDate(value, layout string) (time.Time, bool) {
	value = dateutils.CleanDateString(value)
	if value == "" {
		return time.Time{}, false
	}
	if layout != "" {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
		return time.Time{}, false
	}
	t, _, err := dateutils.ParseDate(value)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// rowAmount computes the signed amount for one row according to the
// discovered representation. The sign convention is credit-positive,
// debit-negative throughout.
func rowAmount(raw map[string]string, info *models.AmountInfo) decimal.Decimal {
	switch info.Representation {
	case models.AmountDualDebitCredit:
		debit := currencyutils.ParseAmountOrZero(raw[info.DebitColumn])
		credit := currencyutils.ParseAmountOrZero(raw[info.CreditColumn])
		return credit.Sub(debit)
	case models.AmountSingleWithType:
		amount := currencyutils.ParseAmountOrZero(raw[info.AmountColumn])
		typeValue := strings.ToLower(raw[info.TypeColumn])
		if strings.Contains(typeValue, strings.ToLower(info.DebitIdentifier)) {
			return amount.Neg()
		}
		return amount
	default: // models.AmountSingleSigned
		return currencyutils.ParseAmountOrZero(raw[info.AmountColumn])
	}
}
