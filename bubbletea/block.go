package bubbletea

import "github.com/fwojciec/parley"

// MessageBlock is a renderable element in the conversation.
// View takes a width parameter so the root model controls layout and
// blocks are testable in isolation.
type MessageBlock interface {
	View(width int) string
}

// TextBlock is a MessageBlock backed by a render target. The sink mutates
// it through Append and SetText.
type TextBlock interface {
	MessageBlock
	Append(text string)
	SetText(text string)
	Text() string
}

// newTextBlock creates the block that displays a target of the given kind.
func newTextBlock(kind parley.TargetKind, theme parley.Theme, styles Styles) TextBlock {
	switch kind {
	case parley.TargetUser:
		return NewUserMessageBlock("", styles)
	case parley.TargetError:
		return NewErrorBlock("", styles)
	default:
		return NewAssistantTextBlock(theme)
	}
}
