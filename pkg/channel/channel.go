package channel

import (
	"context"
)

// Button is either a callback button (Token set) or a link button (URL set).
type Button struct {
	Label string
	Token string
	URL   string
}

// Keyboard is a grid of inline buttons, one slice per row.
type Keyboard [][]Button

// Row builds a keyboard row.
func Row(buttons ...Button) []Button {
	return buttons
}

// Callback builds a callback button.
func Callback(label, token string) Button {
	return Button{Label: label, Token: token}
}

// Link builds a URL button.
func Link(label, url string) Button {
	return Button{Label: label, URL: url}
}

// Message is an outbound Markdown message.
type Message struct {
	Text           string
	Keyboard       Keyboard
	DisablePreview bool
}

// MessageRef identifies a sent message so it can be edited.
type MessageRef struct {
	ChatID    int64
	MessageID int
}

// Actor is the user behind an update.
type Actor struct {
	ID        int64
	FirstName string
	Username  string
}

// Kind tells commands and menu choices apart.
type Kind string

const (
	KindCommand    Kind = "command"
	KindMenuChoice Kind = "menu_choice"
)

// Update is one inbound user interaction.
type Update struct {
	Kind   Kind
	Actor  Actor
	ChatID int64

	// Command and Args are set for KindCommand.
	Command string
	Args    []string

	// Token, CallbackID and Ref are set for KindMenuChoice. Ref points at the
	// message holding the pressed button.
	Token      string
	CallbackID string
	Ref        MessageRef
}

// Channel sends and edits messages in a chat transport.
type Channel interface {
	Send(ctx context.Context, chatID int64, msg Message) (MessageRef, error)
	Edit(ctx context.Context, ref MessageRef, msg Message) error
	Answer(ctx context.Context, callbackID, text string) error
}

// HandlerFunc processes one update.
type HandlerFunc func(ctx context.Context, u Update)
