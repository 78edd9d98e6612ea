// Package preview renders the first rows of a report as a console table.
package preview

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"
)

// Render writes header and up to n rows as a table to w. Cells are never
// truncated or wrapped. When rows were cut, a footer names how many are shown.
// n <= 0 renders nothing.
func Render(w io.Writer, header []string, rows [][]string, n int) error {
	if n <= 0 {
		return nil
	}
	shown := rows
	if len(shown) > n {
		shown = shown[:n]
	}

	tw := tablewriter.NewWriter(w)
	tw.SetHeader(header)
	tw.SetAutoFormatHeaders(false)
	tw.SetAutoWrapText(false)
	tw.AppendBulk(shown)
	tw.Render()

	if len(rows) > n {
		if _, err := fmt.Fprintf(w, "only showing top %d rows\n", n); err != nil {
			return err
		}
	}
	return nil
}
