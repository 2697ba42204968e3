// Package telegram adapts the Telegram Bot API to the dispatcher: it turns
// webhook updates into dispatch updates and delivers outcome events back as
// Bot API calls.
//
// Premium events carry a hint for rephrasing their text. A Sender built
// with WithRewriter passes such events through the Rewriter before sending;
// without one, or when rewriting fails, the literal text is sent. serve
// installs no rewriter, so embedders wanting rephrased premium replies
// supply their own.
package telegram

import (
	"strings"
	"unicode/utf16"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/lox/pigdice/internal/directory"
	"github.com/lox/pigdice/internal/dispatch"
	"github.com/lox/pigdice/internal/game"
)

// StandardDie is the emoji of the six-sided die. Other animated dice
// (darts, bowling, slot machine) report values too but never count.
const StandardDie = "🎲"

// PremiumChecker reports whether a user handle is premium.
type PremiumChecker interface {
	IsPremium(handle string) bool
}

// Converter maps Bot API updates to dispatch updates.
type Converter struct {
	botName string
	premium PremiumChecker
}

// NewConverter creates a converter. Commands addressed to a bot other than
// botName are dropped; an empty botName accepts only bare commands.
func NewConverter(botName string, premium PremiumChecker) *Converter {
	return &Converter{botName: strings.TrimPrefix(botName, "@"), premium: premium}
}

// Convert returns the dispatch update for u and whether there is anything
// to dispatch.
func (c *Converter) Convert(u tgbotapi.Update) (dispatch.Update, bool) {
	switch {
	case u.Message != nil:
		return c.message(u.Message)
	case u.CallbackQuery != nil:
		return c.callback(u.CallbackQuery)
	}
	return dispatch.Update{}, false
}

func (c *Converter) message(m *tgbotapi.Message) (dispatch.Update, bool) {
	if m.Chat == nil {
		return dispatch.Update{}, false
	}
	out := dispatch.Update{
		ChatID:    directory.ChatID(m.Chat.ID),
		Chat:      chatKind(m.Chat),
		MessageID: m.MessageID,
		Sender:    c.sender(m.From),
	}

	switch out.Chat {
	case dispatch.ChatPrivate:
		return out, true
	case dispatch.ChatGroup:
	default:
		return dispatch.Update{}, false
	}

	if m.Dice != nil {
		out.Die = &dispatch.Die{
			Face:      m.Dice.Value,
			Standard:  m.Dice.Emoji == StandardDie,
			Forwarded: m.ForwardDate != 0 || m.ForwardFrom != nil || m.ForwardFromChat != nil,
		}
		return out, true
	}

	out.Commands = c.commands(m.Text, m.Entities)
	return out, len(out.Commands) > 0
}

func (c *Converter) callback(q *tgbotapi.CallbackQuery) (dispatch.Update, bool) {
	if q.Message == nil || q.Message.Chat == nil {
		return dispatch.Update{}, false
	}
	return dispatch.Update{
		ChatID:    directory.ChatID(q.Message.Chat.ID),
		Chat:      chatKind(q.Message.Chat),
		MessageID: q.Message.MessageID,
		Sender:    c.sender(q.From),
		Choice:    &dispatch.Choice{Data: q.Data, MessageID: q.Message.MessageID},
	}, true
}

func (c *Converter) sender(u *tgbotapi.User) *dispatch.Sender {
	if u == nil {
		return nil
	}
	s := &dispatch.Sender{
		ID:     game.UserID(u.ID),
		Name:   u.FirstName,
		Handle: u.UserName,
	}
	if c.premium != nil {
		s.Premium = c.premium.IsPremium(u.UserName)
	}
	return s
}

// commands extracts every bot_command entity from text. Entity offsets are
// in UTF-16 code units.
func (c *Converter) commands(text string, entities []tgbotapi.MessageEntity) []string {
	if text == "" || len(entities) == 0 {
		return nil
	}
	units := utf16.Encode([]rune(text))

	var cmds []string
	for _, e := range entities {
		if e.Type != "bot_command" {
			continue
		}
		if e.Offset < 0 || e.Length <= 0 || e.Offset+e.Length > len(units) {
			continue
		}
		raw := string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
		if cmd, ok := c.command(raw); ok {
			cmds = append(cmds, cmd)
		}
	}
	return cmds
}

// command strips the slash and an optional @bot suffix.
func (c *Converter) command(raw string) (string, bool) {
	raw = strings.TrimPrefix(raw, "/")
	name, target, addressed := strings.Cut(raw, "@")
	if name == "" {
		return "", false
	}
	if addressed && !strings.EqualFold(target, c.botName) {
		return "", false
	}
	return name, true
}

func chatKind(chat *tgbotapi.Chat) dispatch.ChatKind {
	switch {
	case chat.IsGroup(), chat.IsSuperGroup():
		return dispatch.ChatGroup
	case chat.IsPrivate():
		return dispatch.ChatPrivate
	default:
		return dispatch.ChatOther
	}
}
