package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var _ TextBlock = (*UserMessageBlock)(nil)

// UserMessageBlock renders a user message with a "> " prefix.
type UserMessageBlock struct {
	text   strings.Builder
	styles Styles
}

// NewUserMessageBlock creates a UserMessageBlock.
func NewUserMessageBlock(text string, styles Styles) *UserMessageBlock {
	b := &UserMessageBlock{styles: styles}
	b.text.WriteString(text)
	return b
}

func (b *UserMessageBlock) Append(text string) { b.text.WriteString(text) }

func (b *UserMessageBlock) SetText(text string) {
	b.text.Reset()
	b.text.WriteString(text)
}

func (b *UserMessageBlock) Text() string { return b.text.String() }

func (b *UserMessageBlock) View(width int) string {
	content := b.styles.UserMsg.Render("> ") + b.text.String()
	return lipgloss.NewStyle().Width(width).Render(content)
}
