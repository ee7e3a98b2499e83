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

// semanticStrategy is one way of picking the description column from the
// columns Pass 1 left over. Strategies are tried in order; the first one that
// produces a mapping wins. A strategy error is logged and treated as
// "no mapping", never surfaced to the caller; the chain as a whole cannot
// fail as long as its last member is total.
type semanticStrategy interface {
	Map(ctx context.Context, table *models.RawTable, remaining []string) (models.SemanticMapping, bool, error)
	Name() string
}

// semanticMapper runs Pass 2 through its strategy chain.
type semanticMapper struct {
	strategies []semanticStrategy
	logger     logging.Logger
}

// newSemanticMapper builds the standard chain: model choice, then the keyword
// heuristic, then concatenation of everything that remains.
func newSemanticMapper(client llm.Client, headSize int, logger logging.Logger) *semanticMapper {
	return &semanticMapper{
		strategies: []semanticStrategy{
			&llmSemanticStrategy{client: client, headSize: headSize, logger: logger},
			&keywordSemanticStrategy{},
			&concatSemanticStrategy{},
		},
		logger: logger,
	}
}

// mapDescription resolves the description column(s) for the run. It is a hard
// error when no columns remain after Pass 1, since nothing is left to call a
// description.
func (m *semanticMapper) mapDescription(ctx context.Context, table *models.RawTable, structural *models.StructuralInfo) (models.SemanticMapping, error) {
	remaining := structural.RemainingColumns(table.Columns)
	if len(remaining) == 0 {
		return models.SemanticMapping{}, &pipeerror.MappingError{Reason: "no columns remaining for description mapping"}
	}

	for _, strategy := range m.strategies {
		mapping, ok, err := strategy.Map(ctx, table, remaining)
		if err != nil {
			m.logger.WithError(err).WithField("strategy", strategy.Name()).Warn("Semantic mapping strategy failed, trying next")
			continue
		}
		if ok {
			m.logger.WithFields(
				logging.Field{Key: "strategy", Value: strategy.Name()},
				logging.Field{Key: "columns", Value: mapping.DescriptionColumns},
			).Debug("Semantic mapping complete")
			return mapping, nil
		}
	}

	// Unreachable as long as the concat strategy terminates the chain.
	return models.SemanticMapping{}, &pipeerror.MappingError{Reason: "no strategy produced a description mapping"}
}

// llmSemanticStrategy asks the model to choose the best single column.
type llmSemanticStrategy struct {
	client   llm.Client
	headSize int
	logger   logging.Logger
}

func (s *llmSemanticStrategy) Name() string { return "LLM" }

const semanticPromptTemplate = `You are a financial data analyst. Your task is to identify the column that best represents the transaction description or narrative.

From the remaining columns below, choose the one that provides the most meaningful description of the transaction.

Remaining columns: %s

Here is a sample of the data in the remaining columns:
---
%s
---

Respond with a single, valid JSON object with one key, "description_column", indicating your choice. Example:
{
  "description_column": "Transaction Details"
}

Respond with only the JSON object.`

func (s *llmSemanticStrategy) Map(ctx context.Context, table *models.RawTable, remaining []string) (models.SemanticMapping, bool, error) {
	if s.client == nil {
		return models.SemanticMapping{}, false, nil
	}

	head := table.Len()
	if head > s.headSize {
		head = s.headSize
	}
	sampleCSV, err := table.Select(remaining).Slice(0, head).CSVString()
	if err != nil {
		return models.SemanticMapping{}, false, err
	}

	prompt := fmt.Sprintf(semanticPromptTemplate, strings.Join(remaining, ", "), sampleCSV)
	response, err := s.client.Complete(ctx, prompt)
	if err != nil {
		return models.SemanticMapping{}, false, err
	}

	var mapping models.SemanticMapping
	if err := json.Unmarshal([]byte(textutils.StripCodeFence(response)), &mapping); err != nil {
		return models.SemanticMapping{}, false, &pipeerror.ResponseFormatError{Pass: "semantic mapping", Reason: "JSON decode failed", Err: err}
	}
	if err := mapping.Validate(remaining); err != nil {
		return models.SemanticMapping{}, false, &pipeerror.ResponseFormatError{Pass: "semantic mapping", Reason: err.Error()}
	}
	return mapping, true, nil
}

// descriptionKeywords are checked in priority order against lower-cased
// column labels.
var descriptionKeywords = []string{"description", "narrative", "details", "transaction", "memo"}

// keywordSemanticStrategy picks the first remaining column whose label
// contains a common description keyword.
type keywordSemanticStrategy struct{}

func (s *keywordSemanticStrategy) Name() string { return "Keyword" }

func (s *keywordSemanticStrategy) Map(ctx context.Context, table *models.RawTable, remaining []string) (models.SemanticMapping, bool, error) {
	for _, keyword := range descriptionKeywords {
		for _, col := range remaining {
			if strings.Contains(strings.ToLower(col), keyword) {
				return models.SemanticMapping{DescriptionColumns: []string{col}}, true, nil
			}
		}
	}
	return models.SemanticMapping{}, false, nil
}

// concatSemanticStrategy is the terminal fallback: concatenate every
// remaining column. It always succeeds.
type concatSemanticStrategy struct{}

func (s *concatSemanticStrategy) Name() string { return "Concat" }

func (s *concatSemanticStrategy) Map(ctx context.Context, table *models.RawTable, remaining []string) (models.SemanticMapping, bool, error) {
	return models.SemanticMapping{DescriptionColumns: append([]string{}, remaining...)}, true, nil
}
