package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"finlens/statement-pipeline/internal/llm"
	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pipeerror"
	"finlens/statement-pipeline/internal/textutils"
)

// structuralAnalyzer runs Pass 1: identifying the date column, its format,
// and the amount representation from a bounded sample of the raw table.
type structuralAnalyzer struct {
	client llm.Client
	logger logging.Logger
}

const structuralPromptTemplate = `You are a data structure analyst. Your task is to analyze the following data sample and determine the structure for dates and transaction amounts.

Available columns: %s

You must identify:
1. Date Information:
   - The column containing the transaction date.
   - The strftime format string for that date (e.g. %%Y-%%m-%%d, %%d/%%m/%%Y).

2. Amount Information. Determine how amounts are represented from these options:
   - %s: separate columns for debit and credit amounts.
   - %s: a single column where debits are negative and credits are positive.
   - %s: a single amount column accompanied by a type column that indicates debit or credit.

3. If the representation is %s, you must also identify the debit column and the credit column.

4. If the representation is %s, you must also identify the amount column and the type column, plus the text that marks a debit (e.g. "DR", "Debit") and a credit (e.g. "CR", "Credit").

5. If the representation is %s, you must identify the amount column.

Respond with a single, valid JSON object conforming to this schema:
{
  "date_info": {
    "column_name": "<column_name>",
    "format_string": "<strftime_format>"
  },
  "amount_info": {
    "representation": "<one of the three representation values>",
    "debit_column": "<column_name, dual column only>",
    "credit_column": "<column_name, dual column only>",
    "amount_column": "<column_name, single column forms>",
    "type_column": "<column_name, single column with type only>",
    "debit_identifier": "<text in type column>",
    "credit_identifier": "<text in type column>"
  }
}

Data sample:
---
%s
---

Respond with only the JSON object.`

// analyze asks the model for the table's structural shape and validates the
// answer. Any decode or validation failure is a StructuralAnalysisError:
// without Pass 1 there is nothing downstream to do, so this pass has no
// fallback.
func (a *structuralAnalyzer) analyze(ctx context.Context, sample *models.RawTable) (*models.StructuralInfo, error) {
	sampleCSV, err := sample.CSVString()
	if err != nil {
		return nil, &pipeerror.StructuralAnalysisError{Reason: "failed to serialize sample", Err: err}
	}

	prompt := fmt.Sprintf(structuralPromptTemplate,
		strings.Join(sample.Columns, ", "),
		models.AmountDualDebitCredit,
		models.AmountSingleSigned,
		models.AmountSingleWithType,
		models.AmountDualDebitCredit,
		models.AmountSingleWithType,
		models.AmountSingleSigned,
		sampleCSV,
	)

	a.logger.WithField("columns", len(sample.Columns)).Debug("Running structural analysis")

	response, err := a.client.Complete(ctx, prompt)
	if err != nil {
		return nil, &pipeerror.StructuralAnalysisError{Reason: "model call failed", Err: err}
	}

	var info models.StructuralInfo
	if err := json.Unmarshal([]byte(textutils.StripCodeFence(response)), &info); err != nil {
		return nil, &pipeerror.StructuralAnalysisError{
			Reason: "response is not valid JSON",
			Err:    &pipeerror.ResponseFormatError{Pass: "structural analysis", Reason: "JSON decode failed", Err: err},
		}
	}
	if err := info.Validate(sample.Columns); err != nil {
		return nil, &pipeerror.StructuralAnalysisError{
			Reason: "response failed validation",
			Err:    &pipeerror.ResponseFormatError{Pass: "structural analysis", Reason: err.Error()},
		}
	}

	a.logger.WithFields(
		logging.Field{Key: "date_column", Value: info.DateInfo.ColumnName},
		logging.Field{Key: "date_format", Value: info.DateInfo.FormatString},
		logging.Field{Key: "representation", Value: info.AmountInfo.Representation},
	).Debug("Structural analysis complete")

	return &info, nil
}
