package conversation

import (
	"context"
	"strings"
)

// Button is a labeled action attached to a prompt.
type Button struct {
	Label  string
	Action Action
}

// Prompt is a message the engine wants shown to the user.
type Prompt struct {
	Text     string
	Markdown bool
	Keyboard [][]Button
}

// Responder delivers prompts back to the user who caused the event.
type Responder interface {
	// Send posts a new message.
	Send(ctx context.Context, p Prompt) error
	// Edit replaces the message that carried the current action. Without one it sends.
	Edit(ctx context.Context, p Prompt) error
	// Notice shows a short acknowledgement for the current action; empty text just acks.
	Notice(ctx context.Context, text string) error
}

// User identifies who sent an event.
type User struct {
	ID        int64
	Username  string
	FirstName string
	LastName  string
}

func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func md(text string, rows ...[]Button) Prompt {
	return Prompt{Text: text, Markdown: true, Keyboard: rows}
}

func plain(text string, rows ...[]Button) Prompt {
	return Prompt{Text: text, Keyboard: rows}
}

func row(bs ...Button) []Button { return bs }

func btn(label string, a Action) Button { return Button{Label: label, Action: a} }
