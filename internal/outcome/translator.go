// Package outcome turns game results into ordered outgoing events.
//
// The translator is pure: it builds Send and Edit events with their text,
// reply target, choices and hint, and leaves delivery to the caller. The
// number and order of events per result is part of its contract; the texts
// come from a Catalog and can be replaced.
package outcome

import (
	"fmt"
	"strings"

	"github.com/lox/pigdice/internal/game"
)

// ResetChoice is the payload of the reset confirmation button.
const ResetChoice = "reset"

// Context carries what the translator needs to know about the triggering
// message.
type Context struct {
	MessageID  int
	SenderName string
	Premium    bool
}

// Translator maps results to events
type Translator struct {
	cat Catalog
}

// NewTranslator creates a translator using cat for texts.
func NewTranslator(cat Catalog) *Translator {
	return &Translator{cat: cat}
}

func (t *Translator) reply(ctx Context, text, hint string) Event {
	return Event{Kind: KindSend, Text: text, ReplyTo: ctx.MessageID, Hint: hint, Premium: ctx.Premium}
}

func (t *Translator) broadcast(ctx Context, text, hint string) Event {
	return Event{Kind: KindSend, Text: text, Hint: hint, Premium: ctx.Premium}
}

func (t *Translator) failure(ctx Context, err error) []Event {
	return []Event{t.reply(ctx, t.cat.Reason(err), audienceHint(ctx.SenderName))}
}

// Greeting answers a private message.
func (t *Translator) Greeting(ctx Context) []Event {
	hint := ""
	if ctx.SenderName != "" {
		hint = audienceHint(ctx.SenderName)
	}
	return []Event{t.broadcast(ctx, t.cat.Greeting, hint)}
}

// Help lists the commands.
func (t *Translator) Help(ctx Context) []Event {
	return []Event{t.reply(ctx, t.cat.Help, "")}
}

// Join reports the result of a join.
func (t *Translator) Join(ctx Context, err error) []Event {
	if err != nil {
		return t.failure(ctx, err)
	}
	return []Event{t.reply(ctx, t.cat.Joined, joinedHint(ctx.SenderName))}
}

// Start announces the first player.
func (t *Translator) Start(ctx Context, first game.Player, err error) []Event {
	if err != nil {
		return t.failure(ctx, err)
	}
	return []Event{t.reply(ctx, fmt.Sprintf(t.cat.StartedFmt, first.Mention()), startedHint(first.Name))}
}

// Roll reports a roll. Rejected rolls produce no events: dice thrown out of
// turn or by spectators are simply ignored.
func (t *Translator) Roll(ctx Context, res game.RollResult, err error) []Event {
	if err != nil {
		return nil
	}

	switch res.Outcome {
	case game.TurnLost:
		return []Event{
			t.reply(ctx, t.cat.TurnLost, turnLostHint(ctx.SenderName, res.TurnScore)),
			t.broadcast(ctx, fmt.Sprintf(t.cat.NextTurnFmt, res.Next.Mention()), nextTurnHint(res.Next.Name)),
		}
	case game.Continue:
		// Running totals are sent verbatim so they arrive without delay.
		banked := res.Roller.Score
		return []Event{{
			Kind:    KindSend,
			Text:    fmt.Sprintf(t.cat.RunningFmt, banked, res.TurnScore, banked+res.TurnScore),
			ReplyTo: ctx.MessageID,
		}}
	case game.RoundFinished:
		return t.Results(ctx, res.Standings)
	}
	return nil
}

// Bank reports the new total and the next player.
func (t *Translator) Bank(ctx Context, res game.BankResult, err error) []Event {
	if err != nil {
		return t.failure(ctx, err)
	}
	return []Event{t.reply(ctx,
		fmt.Sprintf(t.cat.HoldFmt, res.Banker.Score, res.Next.Mention()),
		holdHint(ctx.SenderName, res.Banked, res.Banker.Score))}
}

// Leave confirms the departure and announces its side effects.
func (t *Translator) Leave(ctx Context, res game.LeaveResult, err error) []Event {
	if err != nil {
		return t.failure(ctx, err)
	}
	events := []Event{t.reply(ctx, t.cat.Left, leftHint(res.Player.Name, res.Player.Score))}
	switch {
	case res.Disbanded:
		events = append(events, t.broadcast(ctx, t.cat.Disbanded, resetHint))
	case res.TurnPassed:
		events = append(events, t.broadcast(ctx,
			fmt.Sprintf(t.cat.NextTurnFmt, res.Next.Mention()), nextTurnHint(res.Next.Name)))
	}
	return events
}

// Results lists the players, with scores and markers once playing.
func (t *Translator) Results(ctx Context, snap game.Snapshot) []Event {
	if snap.Phase == game.PhaseLobby {
		return []Event{t.broadcast(ctx, t.renderLobby(snap), playersHint)}
	}
	return []Event{t.broadcast(ctx, t.renderScores(snap), resultsHint)}
}

// ResetPrompt asks for confirmation with a single choice.
func (t *Translator) ResetPrompt(ctx Context) []Event {
	ev := t.reply(ctx, t.cat.ResetConfirm, resetConfirmHint(ctx.SenderName))
	ev.Keyboard = &Keyboard{Rows: [][]Button{{{Text: t.cat.ResetYes, Data: ResetChoice}}}}
	return []Event{ev}
}

// ResetDone edits the confirmation message and strips its choice.
func (t *Translator) ResetDone(ctx Context, prompt int) []Event {
	return []Event{{
		Kind:     KindEdit,
		Text:     t.cat.ResetDone,
		Target:   prompt,
		Keyboard: &Keyboard{Rows: [][]Button{}},
		Hint:     resetHint,
		Premium:  ctx.Premium,
	}}
}

func (t *Translator) renderLobby(snap game.Snapshot) string {
	if len(snap.Standings) == 0 {
		return t.cat.NoPlayers
	}
	var b strings.Builder
	b.WriteString(t.cat.PlayersHeader)
	for _, s := range snap.Standings {
		b.WriteString("\n- ")
		b.WriteString(s.Player.Label())
	}
	return b.String()
}

func (t *Translator) renderScores(snap game.Snapshot) string {
	var b strings.Builder
	b.WriteString(t.cat.ScoresHeader)
	for _, s := range snap.Standings {
		b.WriteString("\n- ")
		switch {
		case s.Winner:
			b.WriteString(crownMarker + " ")
		case s.Current:
			b.WriteString(diceMarker + " ")
		}
		b.WriteString(s.Player.String())
	}
	return b.String()
}
