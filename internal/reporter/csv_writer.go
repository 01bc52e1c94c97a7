package reporter

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/sitepolicy/internal/models"
)

// WriteCSV truncates path and writes the header plus one line per row.
// The file is closed on every return path.
func WriteCSV(report *models.Report, path string) (n int, err error) {
	if report == nil {
		return 0, fmt.Errorf("report is nil")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open csv file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close csv file: %w", closeErr)
		}
	}()

	n, err = writeRecords(f, report.Rows)
	if err != nil {
		return n, err
	}

	slog.Debug("csv written", slog.String("path", path), slog.Int("rows", n))
	return n, nil
}

// writeRecords writes comma separated records terminated by "\n". A
// field is quoted only when it holds a comma, a double quote, CR or LF;
// embedded quotes are doubled.
func writeRecords(w io.Writer, rows []models.ReportRow) (int, error) {
	bw := bufio.NewWriter(w)

	if err := writeRecord(bw, models.ReportHeader); err != nil {
		return 0, fmt.Errorf("failed to write csv header: %w", err)
	}

	n := 0
	for _, row := range rows {
		if err := writeRecord(bw, row.Record()); err != nil {
			return n, fmt.Errorf("failed to write csv row %d: %w", n+1, err)
		}
		n++
	}

	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("failed to flush csv: %w", err)
	}
	return n, nil
}

func writeRecord(w *bufio.Writer, fields []string) error {
	for i, field := range fields {
		if i > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if needsQuotes(field) {
			field = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		}
		if _, err := w.WriteString(field); err != nil {
			return err
		}
	}
	return w.WriteByte('\n')
}

func needsQuotes(field string) bool {
	return strings.ContainsAny(field, ",\"\r\n")
}
