package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"steamcat/internal/importer"
)

// Display prints an import report in a table format.
func Display(w io.Writer, r *importer.Report) {
	fmt.Fprintf(w, "Catalog import finished: %s\n", r.Status)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Games", "Developers", "Publishers", "Genres", "Tag Links", "Skipped Lines", "Duration"})
	t.AppendRow(table.Row{
		r.Games,
		r.Developers,
		r.Publishers,
		r.Genres,
		r.Tags,
		r.SkippedLines,
		fmt.Sprintf("%.2fs", r.DurationSeconds),
	})
	t.Render()
}
