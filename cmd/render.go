package cmd

import (
	"bytes"
	"fmt"
	"time"

	"github.com/olekukonko/tablewriter"
)

// renderTable formats rows (first row is the header) as a text table.
func renderTable(header []string, rows [][]string) string {
	out := new(bytes.Buffer)
	table := tablewriter.NewWriter(out)
	table.Header(header)
	for _, row := range rows {
		if err := table.Append(row); err != nil {
			return fmt.Sprintf("Error rendering table: %v", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Sprintf("Error rendering table: %v", err)
	}
	return out.String()
}

// formatMs renders a millisecond total as a human-readable duration.
func formatMs(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return d.Truncate(time.Minute).String()
}
