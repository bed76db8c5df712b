package goldmark

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/fwojciec/parley"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// md parses CommonMark plus the GFM extensions model replies use routinely.
var md = goldmark.New(goldmark.WithExtensions(
	extension.Strikethrough,
	extension.Linkify,
	extension.Table,
	extension.TaskList,
))

const (
	minWidth  = 10
	ruleWidth = 40
)

type styles struct {
	strong   lipgloss.Style
	emphasis lipgloss.Style
	strike   lipgloss.Style
	title    lipgloss.Style // level 1 headings
	heading  lipgloss.Style // level 2 headings
	minor    lipgloss.Style // level 3 and below
	link     lipgloss.Style
	muted    lipgloss.Style
	code     lipgloss.Style
	codeSpan lipgloss.Style
	gutter   string
}

func newStyles(theme parley.Theme) styles {
	accent := lipgloss.NewStyle().Foreground(ansiColor(theme.Accent)).Bold(true)
	muted := lipgloss.NewStyle().Foreground(ansiColor(theme.Muted)).Faint(true)
	code := lipgloss.NewStyle().Background(ansiColor(theme.CodeBg))
	return styles{
		strong:   lipgloss.NewStyle().Bold(true),
		emphasis: lipgloss.NewStyle().Italic(true),
		strike:   lipgloss.NewStyle().Strikethrough(true),
		title:    accent.Underline(true),
		heading:  accent,
		minor:    lipgloss.NewStyle().Bold(true),
		link:     lipgloss.NewStyle().Underline(true),
		muted:    muted,
		code:     code,
		codeSpan: code.Bold(true),
		gutter:   muted.Render("│") + " ",
	}
}

func ansiColor(index int) lipgloss.TerminalColor {
	if index < 0 {
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(strconv.Itoa(index))
}

// render holds the state of one Render call. Block methods return their
// output without a trailing newline; parents decide the spacing.
type render struct {
	source []byte
	st     styles
}

func (r *render) document(width int) string {
	doc := md.Parser().Parse(text.NewReader(r.source), parser.WithContext(parser.NewContext()))
	return r.join(doc, width, "\n\n")
}

// join renders the block children of parent separated by sep.
func (r *render) join(parent ast.Node, width int, sep string) string {
	var parts []string
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		if s := r.block(n, width); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func (r *render) block(node ast.Node, width int) string {
	switch n := node.(type) {
	case *ast.Paragraph, *ast.TextBlock:
		return ansi.Wrap(r.inline(n), width, "")

	case *ast.Heading:
		style := r.st.minor
		switch n.Level {
		case 1:
			style = r.st.title
		case 2:
			style = r.st.heading
		}
		return ansi.Wrap(style.Render(r.inline(n)), width, "")

	case *ast.FencedCodeBlock:
		code := r.code(n.Lines())
		if lang := n.Language(r.source); len(lang) > 0 {
			return r.st.muted.Render(string(lang)) + "\n" + code
		}
		return code

	case *ast.CodeBlock:
		return r.code(n.Lines())

	case *ast.Blockquote:
		body := r.join(n, max(width-2, minWidth), "\n\n")
		return indent(body, r.st.gutter, r.st.gutter)

	case *ast.List:
		return r.list(n, width)

	case *ast.ThematicBreak:
		return r.st.muted.Render(strings.Repeat("─", min(width, ruleWidth)))

	case *east.Table:
		return r.table(n)

	case *ast.HTMLBlock:
		return strings.TrimRight(string(r.segments(n.Lines())), "\n")

	default:
		return r.join(n, width, "\n\n")
	}
}

// list renders items behind their markers with a hanging indent. Ordered
// markers are right-aligned so item bodies line up.
func (r *render) list(l *ast.List, width int) string {
	markerWidth := 2
	if l.IsOrdered() {
		markerWidth = len(strconv.Itoa(l.Start+l.ChildCount()-1)) + 2
	}
	sep := "\n"
	if !l.IsTight {
		sep = "\n\n"
	}
	hang := strings.Repeat(" ", markerWidth)

	var items []string
	n := l.Start
	for item := l.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "- "
		if l.IsOrdered() {
			marker = fmt.Sprintf("%*d. ", markerWidth-2, n)
			n++
		}
		body := r.join(item, max(width-markerWidth, minWidth), sep)
		items = append(items, indent(body, marker, hang))
	}
	return strings.Join(items, sep)
}

// code writes lines verbatim behind the gutter. Code is never reflowed.
func (r *render) code(lines *text.Segments) string {
	out := make([]string, 0, lines.Len())
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		line := strings.TrimRight(string(seg.Value(r.source)), "\r\n")
		line = strings.ReplaceAll(line, "\t", "    ")
		out = append(out, r.st.gutter+r.st.code.Render(line))
	}
	return strings.Join(out, "\n")
}

// table lays cells out in padded columns with a rule under the header.
// Tables are not wrapped.
func (r *render) table(t *east.Table) string {
	var rows [][]string
	for row := t.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, r.inline(cell))
		}
		rows = append(rows, cells)
	}

	widths := make([]int, len(t.Alignments))
	for _, cells := range rows {
		for i, c := range cells {
			if i < len(widths) {
				widths[i] = max(widths[i], ansi.StringWidth(c))
			}
		}
	}

	sep := r.st.muted.Render(" │ ")
	lines := make([]string, 0, len(rows)+1)
	for i, cells := range rows {
		padded := make([]string, len(widths))
		for j, w := range widths {
			var c string
			if j < len(cells) {
				c = cells[j]
			}
			if i == 0 {
				c = r.st.strong.Render(c)
			}
			padded[j] = align(c, w, t.Alignments[j])
		}
		lines = append(lines, strings.Join(padded, sep))
		if i == 0 {
			rules := make([]string, len(widths))
			for j, w := range widths {
				rules[j] = strings.Repeat("─", w)
			}
			lines = append(lines, r.st.muted.Render(strings.Join(rules, "─┼─")))
		}
	}
	return strings.Join(lines, "\n")
}

func (r *render) inline(node ast.Node) string {
	var b strings.Builder
	for c := node.FirstChild(); c != nil; c = c.NextSibling() {
		r.writeInline(&b, c)
	}
	return b.String()
}

func (r *render) writeInline(b *strings.Builder, node ast.Node) {
	switch n := node.(type) {
	case *ast.Text:
		b.Write(n.Segment.Value(r.source))
		switch {
		case n.HardLineBreak():
			b.WriteByte('\n')
		case n.SoftLineBreak():
			b.WriteByte(' ')
		}

	case *ast.String:
		b.Write(n.Value)

	case *ast.Emphasis:
		// ***x*** parses as nested emphasis, so Level is 1 or 2.
		style := r.st.emphasis
		if n.Level > 1 {
			style = r.st.strong
		}
		b.WriteString(style.Render(r.inline(n)))

	case *ast.CodeSpan:
		b.WriteString(r.st.codeSpan.Render(r.inline(n)))

	case *east.Strikethrough:
		b.WriteString(r.st.strike.Render(r.inline(n)))

	case *ast.Link:
		r.writeLink(b, r.inline(n), string(n.Destination))

	case *ast.Image:
		r.writeLink(b, r.inline(n), string(n.Destination))

	case *ast.AutoLink:
		b.WriteString(r.st.link.Render(string(n.URL(r.source))))

	case *east.TaskCheckBox:
		if n.IsChecked {
			b.WriteString("[x] ")
		} else {
			b.WriteString("[ ] ")
		}

	case *ast.RawHTML:
		b.Write(r.segments(n.Segments))

	default:
		for c := node.FirstChild(); c != nil; c = c.NextSibling() {
			r.writeInline(b, c)
		}
	}
}

// writeLink shows the label underlined with the destination after it. A
// label that repeats the destination is shown once.
func (r *render) writeLink(b *strings.Builder, label, dest string) {
	if label == "" || ansi.Strip(label) == dest {
		b.WriteString(r.st.link.Render(dest))
		return
	}
	b.WriteString(r.st.link.Render(label))
	b.WriteString(" ")
	b.WriteString(r.st.muted.Render("(" + dest + ")"))
}

func (r *render) segments(segs *text.Segments) []byte {
	var out []byte
	for i := 0; i < segs.Len(); i++ {
		seg := segs.At(i)
		out = append(out, seg.Value(r.source)...)
	}
	return out
}

// indent prefixes the first line of s with first and every later line with
// rest. Blank lines get the prefix without trailing spaces.
func indent(s, first, rest string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		prefix := rest
		if i == 0 {
			prefix = first
		}
		if line == "" {
			prefix = strings.TrimRight(prefix, " ")
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

func align(s string, width int, a east.Alignment) string {
	gap := width - ansi.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch a {
	case east.AlignRight:
		return strings.Repeat(" ", gap) + s
	case east.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
