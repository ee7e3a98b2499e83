// Package pdftable extracts tabular statement data from PDF files. It shells
// out to the poppler pdftotext utility with layout preservation and then
// reconstructs columns from the whitespace-aligned text.
package pdftable

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"

	"finlens/statement-pipeline/internal/logging"
	"finlens/statement-pipeline/internal/models"
	"finlens/statement-pipeline/internal/pipeerror"
)

// Extractor converts a PDF file into raw text. The external-tool dependency
// sits behind this interface so tests can substitute canned text.
type Extractor interface {
	ExtractText(ctx context.Context, pdfPath string) (string, error)
}

// PopplerExtractor extracts text with the pdftotext command line tool.
type PopplerExtractor struct {
	logger logging.Logger
}

// NewPopplerExtractor creates an extractor backed by pdftotext.
func NewPopplerExtractor(logger logging.Logger) *PopplerExtractor {
	if logger == nil {
		logger = logging.GetLogger()
	}
	return &PopplerExtractor{logger: logger}
}

// ExtractText runs pdftotext -layout over the file and returns its output.
func (e *PopplerExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	if _, err := os.Stat(pdfPath); err != nil {
		return "", fmt.Errorf("accessing %s: %w", pdfPath, err)
	}
	if _, err := exec.LookPath("pdftotext"); err != nil {
		return "", fmt.Errorf("pdftotext not found in PATH, install poppler-utils: %w", err)
	}

	e.logger.WithField("path", pdfPath).Debug("Extracting PDF text with pdftotext")
	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", pdfPath, "-")
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok && len(exitErr.Stderr) > 0 {
			return "", fmt.Errorf("pdftotext failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("running pdftotext: %w", err)
	}
	return string(output), nil
}

// MockExtractor returns canned text for tests.
type MockExtractor struct {
	Text string
	Err  error
}

func (m *MockExtractor) ExtractText(ctx context.Context, pdfPath string) (string, error) {
	return m.Text, m.Err
}

var columnSplitRe = regexp.MustCompile(`\s{2,}`)

// ParseText reconstructs a RawTable from layout-preserved PDF text. The first
// line splitting into two or more fields on runs of whitespace is the header;
// subsequent lines become rows, padded or truncated to the header width.
func ParseText(text string) (*models.RawTable, error) {
	var table *models.RawTable
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := columnSplitRe.Split(strings.TrimSpace(line), -1)

		if table == nil {
			if len(fields) < 2 {
				continue
			}
			table = models.NewRawTable(fields)
			continue
		}

		row := make(map[string]string, len(table.Columns))
		for i, col := range table.Columns {
			if i < len(fields) {
				row[col] = fields[i]
			} else {
				row[col] = ""
			}
		}
		table.AppendRow(row)
	}

	if table == nil || table.IsEmpty() {
		return nil, &pipeerror.EmptyInputError{}
	}
	return table, nil
}

// ParseFile extracts and parses a PDF statement in one step.
func ParseFile(ctx context.Context, extractor Extractor, path string) (*models.RawTable, error) {
	text, err := extractor.ExtractText(ctx, path)
	if err != nil {
		return nil, err
	}
	return ParseText(text)
}
