package outcome

import "fmt"

// Kind distinguishes new messages from edits of earlier ones.
type Kind int

const (
	KindSend Kind = iota
	KindEdit
)

func (k Kind) String() string {
	switch k {
	case KindSend:
		return "send"
	case KindEdit:
		return "edit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText lets events be rendered as JSON for monitors.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Button is one interactive choice. Data is echoed back when pressed.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data"`
}

// Keyboard is a grid of choices attached to a message. A keyboard with no
// rows on an Edit removes the choices from the edited message.
type Keyboard struct {
	Rows [][]Button `json:"rows"`
}

// Event is an abstract outgoing message. Nothing in this package sends it.
type Event struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text"`
	// ReplyTo is the message being answered; 0 means a plain broadcast.
	ReplyTo int `json:"reply_to,omitempty"`
	// Target is the message to edit (KindEdit only).
	Target   int       `json:"target,omitempty"`
	Keyboard *Keyboard `json:"keyboard,omitempty"`
	// Hint describes the context of Text for optional rewriting by delivery.
	Hint    string `json:"hint,omitempty"`
	Premium bool   `json:"premium"`
}

// IsReply reports whether the event answers a specific message.
func (e Event) IsReply() bool { return e.ReplyTo != 0 }
