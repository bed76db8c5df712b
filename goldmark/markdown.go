// Package goldmark renders markdown text to ANSI-styled terminal output
// using goldmark for parsing and lipgloss for styling.
package goldmark

import "github.com/fwojciec/parley"

// Render parses markdown source and returns ANSI-styled terminal output.
// Paragraphs and list items are word-wrapped to width. Code blocks and
// tables are rendered at full width without reflow.
func Render(source string, width int, theme parley.Theme) string {
	if source == "" {
		return ""
	}
	if width <= 0 {
		width = 80
	}
	r := &render{source: []byte(source), st: newStyles(theme)}
	return r.document(width)
}
