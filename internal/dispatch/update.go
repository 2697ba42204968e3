package dispatch

import (
	"github.com/lox/pigdice/internal/directory"
	"github.com/lox/pigdice/internal/game"
)

// ChatKind classifies where an update came from.
type ChatKind int

const (
	ChatOther ChatKind = iota
	ChatGroup
	ChatPrivate
)

func (k ChatKind) String() string {
	switch k {
	case ChatGroup:
		return "group"
	case ChatPrivate:
		return "private"
	default:
		return "other"
	}
}

// Sender identifies the user behind an update.
type Sender struct {
	ID      game.UserID
	Name    string
	Handle  string
	Premium bool
}

// Player converts the sender into a fresh player with no score.
func (s Sender) Player() game.Player {
	return game.Player{ID: s.ID, Name: s.Name, Handle: s.Handle}
}

// Die is a thrown die. Only standard six-sided dice that were not forwarded
// count as rolls.
type Die struct {
	Face      int
	Standard  bool
	Forwarded bool
}

// Live reports whether the die is a genuine roll.
func (d Die) Live() bool { return d.Standard && !d.Forwarded }

// Choice is a pressed button. MessageID is the message carrying the button.
type Choice struct {
	Data      string
	MessageID int
}

// Update is a transport-neutral inbound event. At most one of Commands, Die
// and Choice is meaningful.
type Update struct {
	ChatID    directory.ChatID
	Chat      ChatKind
	MessageID int
	Sender    *Sender
	Commands  []string
	Die       *Die
	Choice    *Choice
}
