package game

import "fmt"

// UserID identifies a chat user. It is unique within a session.
type UserID int64

// Player is a participant of a session
type Player struct {
	ID     UserID
	Name   string
	Handle string // optional, without the leading @
	Score  int
}

// Mention returns the string used to address the player in a message.
func (p Player) Mention() string {
	if p.Handle != "" {
		return "@" + p.Handle
	}
	return p.Name
}

// Label returns the display name followed by the handle, if any.
func (p Player) Label() string {
	if p.Handle != "" {
		return fmt.Sprintf("%s (%s)", p.Name, p.Handle)
	}
	return p.Name
}

// String implements fmt.Stringer
func (p Player) String() string {
	return fmt.Sprintf("%s: %d", p.Label(), p.Score)
}
