package report

import (
	"fmt"
	"io"
	"strings"
)

// WriteText writes t as space-aligned columns for terminal output.
func WriteText(w io.Writer, t Table) error {
	if _, err := fmt.Fprintf(w, "%s\n", t.Title); err != nil {
		return err
	}
	if len(t.Rows) == 0 {
		_, err := fmt.Fprintln(w, "  (no data)")
		return err
	}

	widths := columnWidths(t, func(s string) string { return s })
	line := func(cells []string) error {
		padded := make([]string, len(cells))
		for i, c := range cells {
			padded[i] = padRight(c, widths[i])
		}
		_, err := fmt.Fprintf(w, "  %s\n", strings.TrimRight(strings.Join(padded, "  "), " "))
		return err
	}

	if err := line(t.Headers); err != nil {
		return err
	}
	rule := make([]string, len(widths))
	for i, wd := range widths {
		rule[i] = strings.Repeat("-", wd)
	}
	if err := line(rule); err != nil {
		return err
	}
	for _, row := range t.Rows {
		if err := line(row); err != nil {
			return err
		}
	}
	return nil
}
