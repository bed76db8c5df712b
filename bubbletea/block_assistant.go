package bubbletea

import (
	"strings"

	"github.com/fwojciec/parley"
	"github.com/fwojciec/parley/goldmark"
)

var _ TextBlock = (*AssistantTextBlock)(nil)

// AssistantTextBlock renders streamed reply text as markdown. Completed
// paragraphs are rendered once per width and cached, so each flush only
// re-renders the trailing paragraph.
type AssistantTextBlock struct {
	content strings.Builder
	theme   parley.Theme

	// finalizedRaw is the stable prefix ending at the last double newline.
	// It's rendered once per width and cached in finalizedByWidth.
	finalizedRaw     string
	finalizedByWidth map[int]string
}

// NewAssistantTextBlock creates a new block for streaming assistant text.
func NewAssistantTextBlock(theme parley.Theme) *AssistantTextBlock {
	return &AssistantTextBlock{
		theme:            theme,
		finalizedByWidth: make(map[int]string),
	}
}

// Append adds a text delta from the LLM stream.
func (b *AssistantTextBlock) Append(text string) {
	b.content.WriteString(text)
	b.promoteFinalized()
}

// SetText replaces the whole text, e.g. when the final reply differs from
// the streamed deltas.
func (b *AssistantTextBlock) SetText(text string) {
	b.content.Reset()
	b.finalizedRaw = ""
	clear(b.finalizedByWidth)
	b.Append(text)
}

func (b *AssistantTextBlock) Text() string { return b.content.String() }

func (b *AssistantTextBlock) View(width int) string {
	finalizedRendered := b.renderFinalized(width)
	trailing := b.trailingRaw()
	if hasUnclosedFence(trailing) {
		// Close fence only for rendering so partial streams display safely.
		trailing += "\n```"
	}
	if trailing == "" {
		return finalizedRendered
	}
	trailingRendered := goldmark.Render(trailing, width, b.theme)
	if strings.TrimSpace(trailingRendered) == "" {
		return finalizedRendered
	}
	switch finalizedRendered {
	case "":
		return trailingRendered
	default:
		// Independently rendered fragments are joined with one paragraph
		// break.
		return strings.TrimRight(finalizedRendered, "\n") + "\n\n" + strings.TrimLeft(trailingRendered, "\n")
	}
}

// promoteFinalized moves the finalized prefix to the last "\n\n" boundary
// outside a fenced code block.
func (b *AssistantTextBlock) promoteFinalized() {
	raw := b.content.String()
	for end := len(raw); ; {
		idx := strings.LastIndex(raw[:end], "\n\n")
		if idx <= 0 {
			return
		}
		candidate := raw[:idx]
		if !hasUnclosedFence(candidate) {
			if candidate != b.finalizedRaw {
				b.finalizedRaw = candidate
				// Width-sensitive cache must be invalidated when finalized text grows.
				clear(b.finalizedByWidth)
			}
			return
		}
		end = idx
	}
}

func (b *AssistantTextBlock) renderFinalized(width int) string {
	if width <= 0 || b.finalizedRaw == "" {
		return ""
	}
	if cached, ok := b.finalizedByWidth[width]; ok {
		return cached
	}
	rendered := goldmark.Render(b.finalizedRaw, width, b.theme)
	b.finalizedByWidth[width] = rendered
	return rendered
}

func (b *AssistantTextBlock) trailingRaw() string {
	raw := b.content.String()
	if b.finalizedRaw == "" {
		return raw
	}
	prefix := b.finalizedRaw + "\n\n"
	return strings.TrimPrefix(raw, prefix)
}

// hasUnclosedFence reports an odd number of "```" occurrences. Triple
// backticks inside inline code spans are miscounted.
func hasUnclosedFence(s string) bool {
	return strings.Count(s, "```")%2 == 1
}
