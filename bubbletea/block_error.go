package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var _ TextBlock = (*ErrorBlock)(nil)

// ErrorBlock renders an error message.
type ErrorBlock struct {
	text   strings.Builder
	styles Styles
}

// NewErrorBlock creates an ErrorBlock.
func NewErrorBlock(text string, styles Styles) *ErrorBlock {
	b := &ErrorBlock{styles: styles}
	b.text.WriteString(text)
	return b
}

func (b *ErrorBlock) Append(text string) { b.text.WriteString(text) }

func (b *ErrorBlock) SetText(text string) {
	b.text.Reset()
	b.text.WriteString(text)
}

func (b *ErrorBlock) Text() string { return b.text.String() }

func (b *ErrorBlock) View(width int) string {
	content := b.styles.Error.Render("Error: " + b.text.String())
	return lipgloss.NewStyle().Width(width).Render(content)
}
