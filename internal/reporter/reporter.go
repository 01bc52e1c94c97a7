package reporter

import (
	"fmt"
	"io"

	"github.com/ppiankov/sitepolicy/internal/models"
	"github.com/ppiankov/sitepolicy/pkg/config"
)

// Reporter interface for generating reports
type Reporter interface {
	Generate(report *models.Report) (int, error)
}

// reporter implements the Reporter interface
type reporter struct {
	config *config.Config
	out    io.Writer
}

// New creates a reporter that prints tables to out.
func New(cfg *config.Config, out io.Writer) Reporter {
	return &reporter{
		config: cfg,
		out:    out,
	}
}

// Generate writes the CSV file to report.OutputPath (the configured
// CSV file when empty) and, when enabled, echoes the rows as a table.
// It returns the number of data rows written.
func (r *reporter) Generate(report *models.Report) (int, error) {
	if report == nil {
		return 0, fmt.Errorf("report is nil")
	}

	path := report.OutputPath
	if path == "" {
		path = r.config.CSVFile
	}

	n, err := WriteCSV(report, path)
	if err != nil {
		return n, err
	}

	if r.config.PrintTable {
		if err := WriteTable(r.out, report); err != nil {
			return n, err
		}
	}

	return n, nil
}
