package reporter

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/ppiankov/sitepolicy/internal/models"
)

// WriteTable renders the report rows as a bordered table under a one
// line summary naming the tenant.
func WriteTable(out io.Writer, report *models.Report) error {
	if report == nil {
		return fmt.Errorf("report is nil")
	}

	if _, err := fmt.Fprintf(out, "Tenant %s: %d spoke sites of %d, generated %s\n",
		report.TenantName, len(report.Rows), report.SitesTotal,
		report.GeneratedAt.UTC().Format(time.RFC3339)); err != nil {
		return err
	}

	if len(report.Rows) == 0 {
		_, err := fmt.Fprintln(out, "No spoke sites found.")
		return err
	}

	table := tablewriter.NewWriter(out)
	table.Options(
		tablewriter.WithHeader(models.ReportHeader),
		tablewriter.WithAlignment(tw.MakeAlign(len(models.ReportHeader), tw.AlignLeft)),
	)

	for _, row := range report.Rows {
		if err := table.Append(row.Record()); err != nil {
			return fmt.Errorf("failed to append row: %w", err)
		}
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
