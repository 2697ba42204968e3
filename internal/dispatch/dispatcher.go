// Package dispatch routes inbound updates to per-chat sessions and turns the
// results into outgoing events.
//
// All work for one update happens inside a single directory critical section,
// so a finished round is reset before any other update for the chat can
// observe it.
package dispatch

import (
	"github.com/rs/zerolog"

	"github.com/lox/pigdice/internal/directory"
	"github.com/lox/pigdice/internal/game"
	"github.com/lox/pigdice/internal/outcome"
)

// Command names, without the leading slash or bot suffix.
const (
	CmdJoin    = "join"
	CmdStart   = "start"
	CmdPlay    = "play"
	CmdBank    = "bank"
	CmdHold    = "hold"
	CmdResults = "results"
	CmdResult  = "result"
	CmdReset   = "reset"
	CmdLeave   = "leave"
	CmdHelp    = "help"
)

var aliases = map[string]string{
	CmdPlay:   CmdStart,
	CmdHold:   CmdBank,
	CmdResult: CmdResults,
}

// Canonical resolves command aliases.
func Canonical(cmd string) string {
	if c, ok := aliases[cmd]; ok {
		return c
	}
	return cmd
}

// Dispatcher applies updates to sessions.
type Dispatcher struct {
	dir        *directory.Directory
	translator *outcome.Translator
	src        game.Source
	logger     zerolog.Logger
}

// New creates a dispatcher. src is used to shuffle the turn order on start
// and must be safe for concurrent use.
func New(dir *directory.Directory, translator *outcome.Translator, src game.Source, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		dir:        dir,
		translator: translator,
		src:        src,
		logger:     logger.With().Str("component", "dispatch").Logger(),
	}
}

// Handle applies u and returns the events to deliver to u.ChatID, in order.
func (d *Dispatcher) Handle(u Update) []outcome.Event {
	switch u.Chat {
	case ChatPrivate:
		return d.greet(u)
	case ChatGroup:
	default:
		return nil
	}

	switch {
	case u.Choice != nil:
		return d.choose(u)
	case u.Die != nil:
		if !u.Die.Live() {
			d.logger.Debug().Int64("chat", int64(u.ChatID)).Bool("forwarded", u.Die.Forwarded).Msg("Ignoring die")
			return nil
		}
		var events []outcome.Event
		d.dir.Do(u.ChatID, func(s *game.Session) {
			events = d.roll(s, u)
		})
		return events
	case len(u.Commands) > 0:
		var events []outcome.Event
		d.dir.Do(u.ChatID, func(s *game.Session) {
			for _, cmd := range u.Commands {
				events = append(events, d.command(s, u, Canonical(cmd))...)
			}
		})
		return events
	}
	return nil
}

func (d *Dispatcher) greet(u Update) []outcome.Event {
	ctx := outcome.Context{MessageID: u.MessageID}
	if u.Sender != nil {
		ctx.SenderName = u.Sender.Name
		ctx.Premium = u.Sender.Premium
	}
	return d.translator.Greeting(ctx)
}

func (d *Dispatcher) context(s *game.Session, u Update) outcome.Context {
	ctx := outcome.Context{MessageID: u.MessageID, Premium: s.Premium()}
	if u.Sender != nil {
		ctx.SenderName = u.Sender.Name
	}
	return ctx
}

func (d *Dispatcher) roll(s *game.Session, u Update) []outcome.Event {
	if u.Sender == nil {
		return nil
	}
	ctx := d.context(s, u)
	res, err := s.Roll(u.Sender.ID, u.Die.Face)
	if err != nil {
		d.logger.Debug().Err(err).Int64("chat", int64(u.ChatID)).Msg("Roll rejected")
		return nil
	}
	events := d.translator.Roll(ctx, res, nil)
	if res.Outcome == game.RoundFinished {
		d.logger.Info().
			Int64("chat", int64(u.ChatID)).
			Str("winner", res.Roller.Name).
			Int("score", res.Roller.Score).
			Msg("Round finished")
		s.Reset()
	}
	return events
}

func (d *Dispatcher) command(s *game.Session, u Update, cmd string) []outcome.Event {
	log := d.logger.With().Int64("chat", int64(u.ChatID)).Str("command", cmd).Logger()

	switch cmd {
	case CmdResults:
		return d.translator.Results(d.context(s, u), s.Snapshot())
	case CmdReset:
		return d.translator.ResetPrompt(d.context(s, u))
	case CmdHelp:
		return d.translator.Help(d.context(s, u))
	case CmdStart:
		first, err := s.Start(d.src)
		if err != nil {
			log.Debug().Err(err).Msg("Start rejected")
		} else {
			log.Info().Int("players", s.PlayerCount()).Str("first", first.Name).Msg("Game started")
		}
		return d.translator.Start(d.context(s, u), first, err)
	}

	if u.Sender == nil {
		log.Debug().Msg("Ignoring command without sender")
		return nil
	}

	switch cmd {
	case CmdJoin:
		err := s.Join(u.Sender.Player(), u.Sender.Premium)
		if err != nil {
			log.Debug().Err(err).Msg("Join rejected")
		}
		return d.translator.Join(d.context(s, u), err)
	case CmdBank:
		res, err := s.Bank(u.Sender.ID)
		if err != nil {
			log.Debug().Err(err).Msg("Bank rejected")
		}
		return d.translator.Bank(d.context(s, u), res, err)
	case CmdLeave:
		ctx := d.context(s, u)
		res, err := s.Leave(u.Sender.ID)
		if err != nil {
			log.Debug().Err(err).Msg("Leave rejected")
		} else if res.Disbanded {
			log.Info().Msg("Game disbanded")
		}
		return d.translator.Leave(ctx, res, err)
	}
	return nil
}

func (d *Dispatcher) choose(u Update) []outcome.Event {
	if u.Choice.Data != outcome.ResetChoice {
		return nil
	}
	var events []outcome.Event
	d.dir.Peek(u.ChatID, func(s *game.Session) {
		ctx := d.context(s, u)
		s.Reset()
		d.logger.Info().Int64("chat", int64(u.ChatID)).Msg("Game reset")
		events = d.translator.ResetDone(ctx, u.Choice.MessageID)
	})
	return events
}
