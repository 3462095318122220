// Package ui formats terminal output for assetctl.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders rows under bold headers with aligned columns.
type Table struct {
	w       io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a table with the given headers.
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{w: w, headers: headers, noColor: noColor}
}

// AddRow appends a row. Missing cells render empty and extra cells are
// dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Render writes the table.
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	header := t.color(color.Bold, color.FgCyan)
	t.line(widths, t.headers, header)

	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("─", w)
	}
	t.line(widths, rule, t.color(color.FgHiBlack))

	for _, row := range t.rows {
		t.line(widths, row, nil)
	}
}

func (t *Table) line(widths []int, cells []string, c *color.Color) {
	last := len(cells) - 1
	for last > 0 && cells[last] == "" {
		last--
	}
	for i := 0; i <= last; i++ {
		text := cells[i]
		if i < last {
			// Pad by rune count so the box-drawing rule lines up.
			text += strings.Repeat(" ", widths[i]-len([]rune(text))) + "  "
		}
		if c != nil {
			c.Fprint(t.w, text)
		} else {
			fmt.Fprint(t.w, text)
		}
	}
	fmt.Fprintln(t.w)
}

func (t *Table) color(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if t.noColor {
		c.DisableColor()
	}
	return c
}

// NotFound formats a missing asset report with optional suggestions.
//
//	ASSET NOT FOUND: confg.xml
//	   No asset named "confg.xml" can be read as xml.
//
//	   Did you mean: config.xml?
//
//	   → See all assets: assetctl list
func NotFound(name, kind string, suggestions []string, noColor bool) string {
	var b strings.Builder

	red := color.New(color.FgRed, color.Bold)
	body := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)
	if noColor {
		for _, c := range []*color.Color{red, body, yellow, cyan} {
			c.DisableColor()
		}
	}

	red.Fprintf(&b, "ASSET NOT FOUND: %s\n", name)
	body.Fprintf(&b, "   No asset named %q can be read as %s.\n", name, kind)
	if len(suggestions) > 0 {
		b.WriteString("\n")
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(suggestions, ", "))
	}
	b.WriteString("\n")
	cyan.Fprintln(&b, "   → See all assets: assetctl list")
	return b.String()
}
