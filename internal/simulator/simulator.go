// Package simulator plays complete Pig games between scripted bots through
// the real dispatcher, to exercise the engine and compare hold strategies.
package simulator

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lox/pigdice/internal/directory"
	"github.com/lox/pigdice/internal/dispatch"
	"github.com/lox/pigdice/internal/game"
	"github.com/lox/pigdice/internal/outcome"
	"github.com/lox/pigdice/internal/randutil"
	"github.com/lox/pigdice/internal/statistics"
)

// ErrRunaway is returned when a game exceeds the roll limit.
var ErrRunaway = errors.New("game did not finish")

// Strategy rolls until the turn score reaches HoldAt, then holds.
type Strategy struct {
	HoldAt int
}

// Label names the strategy in reports.
func (s Strategy) Label() string { return fmt.Sprintf("hold-%d", s.HoldAt) }

// ParseStrategies parses a comma separated list of hold thresholds, e.g. "20,25".
func ParseStrategies(list string) ([]Strategy, error) {
	var out []Strategy
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, err := strconv.Atoi(part)
		if err != nil || k < 1 {
			return nil, fmt.Errorf("invalid hold threshold %q", part)
		}
		out = append(out, Strategy{HoldAt: k})
	}
	if len(out) < game.MinPlayers {
		return nil, fmt.Errorf("need at least %d strategies, got %d", game.MinPlayers, len(out))
	}
	return out, nil
}

// Config holds configuration for running simulations
type Config struct {
	Games      int
	Strategies []Strategy
	Seed       int64
	Workers    int
	MaxRolls   int
	Logger     zerolog.Logger
}

// Simulator runs Pig game simulations
type Simulator struct {
	config     Config
	dir        *directory.Directory
	translator *outcome.Translator
}

// New creates a new simulator with the given configuration
func New(config Config) *Simulator {
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}
	if config.MaxRolls <= 0 {
		config.MaxRolls = 100000
	}
	config.Logger = config.Logger.With().Str("component", "simulator").Logger()
	return &Simulator{
		config:     config,
		dir:        directory.New(),
		translator: outcome.NewTranslator(outcome.DefaultCatalog()),
	}
}

// Run plays every game and returns the aggregated statistics together with
// the per-game results in game order.
func (s *Simulator) Run(ctx context.Context) (*statistics.Statistics, []statistics.GameResult, error) {
	if len(s.config.Strategies) < game.MinPlayers {
		return nil, nil, fmt.Errorf("need at least %d strategies", game.MinPlayers)
	}

	results := make([]statistics.GameResult, s.config.Games)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

	for i := 0; i < s.config.Games; i++ {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.play(i, s.config.Seed+int64(i))
			if err != nil {
				return fmt.Errorf("game %d: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	stats := &statistics.Statistics{}
	for _, r := range results {
		stats.Add(r)
	}
	if err := stats.Validate(); err != nil {
		return nil, nil, fmt.Errorf("statistics validation failed: %w", err)
	}
	s.config.Logger.Debug().Int("games", stats.Games).Msg("Simulation complete")
	return stats, results, nil
}

// table is one game in progress.
type table struct {
	chat       directory.ChatID
	dispatcher *dispatch.Dispatcher
	strategies map[game.UserID]Strategy
	msgID      int
}

func (t *table) send(from dispatch.Sender, u dispatch.Update) []outcome.Event {
	t.msgID++
	u.ChatID = t.chat
	u.Chat = dispatch.ChatGroup
	u.MessageID = t.msgID
	u.Sender = &from
	return t.dispatcher.Handle(u)
}

func (s *Simulator) play(index int, seed int64) (statistics.GameResult, error) {
	rng := randutil.New(seed)
	t := &table{
		chat:       directory.ChatID(-int64(index) - 1),
		dispatcher: dispatch.New(s.dir, s.translator, rng, s.config.Logger),
		strategies: make(map[game.UserID]Strategy, len(s.config.Strategies)),
	}

	senders := make(map[game.UserID]dispatch.Sender, len(s.config.Strategies))
	for i, strat := range s.config.Strategies {
		id := game.UserID(i + 1)
		sender := dispatch.Sender{ID: id, Name: strat.Label()}
		senders[id] = sender
		t.strategies[id] = strat
		t.send(sender, dispatch.Update{Commands: []string{dispatch.CmdJoin}})
	}
	t.send(senders[1], dispatch.Update{Commands: []string{dispatch.CmdStart}})

	res := statistics.GameResult{Seed: seed}
	for res.Rolls < s.config.MaxRolls {
		before, ok := s.state(t.chat)
		if !ok {
			return res, fmt.Errorf("game not running")
		}
		current := before.Current()
		strat := t.strategies[current.ID]

		if before.TurnScore() >= strat.HoldAt {
			t.send(senders[current.ID], dispatch.Update{Commands: []string{dispatch.CmdHold}})
			res.Turns++
			continue
		}

		face := rng.IntN(game.MaxFace) + 1
		t.send(senders[current.ID], dispatch.Update{Die: &dispatch.Die{Face: face, Standard: true}})
		res.Rolls++

		after, playing := s.state(t.chat)
		switch {
		case !playing:
			res.Turns++
			res.Winner = strat.Label()
			res.WinnerSeat = before.Turn()
			return res, nil
		case after.Turn() != before.Turn():
			res.Turns++
			res.Busts++
		}
	}
	return res, fmt.Errorf("%w after %d rolls (seed %d)", ErrRunaway, res.Rolls, seed)
}

func (s *Simulator) state(chat directory.ChatID) (game.Playing, bool) {
	var (
		p  game.Playing
		ok bool
	)
	s.dir.Peek(chat, func(sess *game.Session) {
		p, ok = sess.Playing()
	})
	return p, ok
}
