package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Output formats accepted by --output.
const (
	formatTable    = "table"
	formatMarkdown = "markdown"
	formatJSON     = "json"
)

// renderRows renders a result table in the requested format. For JSON the
// payload is encoded as-is; for table and markdown the header/rows pair is
// rendered with go-pretty.
func renderRows(w io.Writer, format string, header table.Row, rows []table.Row, payload any) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(payload)
	case formatMarkdown, "md":
		t := newTable(w, header, rows)
		t.RenderMarkdown()
	default:
		t := newTable(w, header, rows)
		t.SetStyle(table.StyleLight)
		t.Render()
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	}
	return nil
}

func newTable(w io.Writer, header table.Row, rows []table.Row) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(header)
	for _, r := range rows {
		t.AppendRow(r)
	}
	return t
}
