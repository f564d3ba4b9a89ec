package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders aligned columns under a highlighted header row
type Table struct {
	w       io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{w: w, headers: headers, noColor: noColor}
}

// AddRow appends a row; missing cells render empty
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	bold := color.New(color.Bold, color.FgCyan)
	if t.noColor {
		bold.DisableColor()
	}
	bold.Fprintln(t.w, joinPadded(t.headers, widths))
	for _, row := range t.rows {
		cells := make([]string, len(widths))
		copy(cells, row)
		fmt.Fprintln(t.w, joinPadded(cells, widths))
	}
}

func joinPadded(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i > 0 {
			b.WriteString("  ")
		}
		if i == len(cells)-1 {
			b.WriteString(cell)
			break
		}
		b.WriteString(cell)
		b.WriteString(strings.Repeat(" ", widths[i]-len(cell)))
	}
	return b.String()
}

// KeyValues renders "key: value" lines with the keys aligned
type KeyValues struct {
	w       io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValues creates an empty key-value block
func NewKeyValues(w io.Writer, noColor bool) *KeyValues {
	return &KeyValues{w: w, noColor: noColor}
}

// Add appends a pair; empty values are skipped
func (kv *KeyValues) Add(key, value string) {
	if value == "" {
		return
	}
	kv.keys = append(kv.keys, key)
	kv.values = append(kv.values, value)
}

// Render writes the block
func (kv *KeyValues) Render() {
	width := 0
	for _, k := range kv.keys {
		width = max(width, len(k)+1)
	}
	cyan := color.New(color.FgCyan)
	if kv.noColor {
		cyan.DisableColor()
	}
	for i, k := range kv.keys {
		label := k + ":"
		cyan.Fprint(kv.w, label+strings.Repeat(" ", width-len(label)))
		fmt.Fprintf(kv.w, " %s\n", kv.values[i])
	}
}

// Header writes a bold title underlined to its width
func Header(w io.Writer, title string, noColor bool) {
	bold := color.New(color.Bold, color.FgCyan)
	gray := color.New(color.FgHiBlack)
	if noColor {
		bold.DisableColor()
		gray.DisableColor()
	}
	bold.Fprintln(w, title)
	gray.Fprintln(w, strings.Repeat("─", len(title)))
}
