package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func formatJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "Error: encode json: %v\n", err)
		os.Exit(1)
	}
}

// formatTable prints headers, a dashed separator, and rows, each column
// padded to its widest cell.
func formatTable(headers []string, rows [][]string) {
	widths := columnWidths(headers, rows)

	writeTableRow(headers, widths)

	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = strings.Repeat("-", widths[i])
	}
	writeTableRow(sep, widths)

	for _, row := range rows {
		writeTableRow(row, widths)
	}
}

func columnWidths(headers []string, rows [][]string) []int {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}
	return widths
}

func writeTableRow(cells []string, widths []int) {
	cols := make([]string, len(cells))
	for i, cell := range cells {
		var w int
		if i < len(widths) {
			w = widths[i]
		}
		cols[i] = fmt.Sprintf("%-*s", w, cell)
	}
	fmt.Println(strings.Join(cols, "  "))
}

func formatQuiet(id string) {
	fmt.Println(id)
}

// output renders v per the --format flag. Table rendering needs per-command
// column layouts, so commands that support it call formatTable themselves;
// here "table" falls back to JSON.
func output(v any, quietVal string) {
	if flagFmt == "quiet" {
		formatQuiet(quietVal)
		return
	}
	formatJSON(v)
}
