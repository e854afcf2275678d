package bot

import "context"

// Event is one inbound chat interaction, already stripped of transport
// details by the webhook parser.
type Event interface {
	isEvent()
}

type Command struct {
	Name string
}

type ButtonPress struct {
	Token string
}

type FreeText struct {
	Text string
}

type ContactShared struct {
	Phone string
}

func (Command) isEvent()       {}
func (ButtonPress) isEvent()   {}
func (FreeText) isEvent()      {}
func (ContactShared) isEvent() {}

type Button struct {
	Text           string
	Data           string
	RequestContact bool
}

// Outbound is a "send this content to this account" intent. The messaging
// collaborator decides how to render it.
type Outbound struct {
	ChatID         int64
	Text           string
	Inline         [][]Button
	Keyboard       [][]Button
	OneTime        bool
	RemoveKeyboard bool
}

type Messenger interface {
	Send(ctx context.Context, out Outbound) error
}
