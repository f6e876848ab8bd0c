package output

import (
	"strings"
	"text/tabwriter"
)

// List prints items as a bulleted list.
func (w *Writer) List(items []string) {
	for _, item := range items {
		w.Println("  - %s", item)
	}
}

// Table prints rows in aligned columns under headers. Rows shorter than the
// header are padded with empty cells.
func (w *Writer) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w.out, 0, 0, 2, ' ', 0)
	line := func(cells []string) {
		padded := make([]string, len(headers))
		copy(padded, cells)
		_, _ = tw.Write([]byte(strings.TrimRight(strings.Join(padded, "\t"), "\t") + "\n"))
	}

	line(headers)
	rules := make([]string, len(headers))
	for i, h := range headers {
		rules[i] = strings.Repeat("-", len(h))
	}
	line(rules)
	for _, row := range rows {
		line(row)
	}
	_ = tw.Flush()
}
