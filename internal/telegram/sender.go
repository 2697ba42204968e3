package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coder/quartz"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/lox/pigdice/internal/outcome"
)

// API is the subset of *tgbotapi.BotAPI used for delivery.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Rewriter may replace the text of premium events using their hint.
type Rewriter interface {
	Rewrite(ctx context.Context, text, hint string) (string, error)
}

// Sender delivers outcome events to a chat.
type Sender struct {
	api         API
	clock       quartz.Clock
	maxAttempts int
	backoff     time.Duration
	rewriter    Rewriter
	logger      zerolog.Logger
}

// Option configures a Sender.
type Option func(*Sender)

// WithClock sets the clock used for retry backoff.
func WithClock(clock quartz.Clock) Option {
	return func(s *Sender) { s.clock = clock }
}

// WithRetry sets how often an event is attempted and the pause between attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(s *Sender) {
		if attempts > 0 {
			s.maxAttempts = attempts
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

// WithRewriter installs a text rewriter for premium events.
func WithRewriter(r Rewriter) Option {
	return func(s *Sender) { s.rewriter = r }
}

// NewSender creates a sender on top of api.
func NewSender(api API, logger zerolog.Logger, opts ...Option) *Sender {
	s := &Sender{
		api:         api,
		clock:       quartz.NewReal(),
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
		logger:      logger.With().Str("component", "sender").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Deliver sends events to chatID in order. A failing event is retried and
// then skipped so later events still go out; the failures are returned
// joined. Cancelling ctx stops delivery.
func (s *Sender) Deliver(ctx context.Context, chatID int64, events []outcome.Event) error {
	var errs []error
	for i, ev := range events {
		if err := ctx.Err(); err != nil {
			return errors.Join(append(errs, err)...)
		}
		c := s.render(ctx, chatID, ev)
		if err := s.attempt(ctx, ev.Kind, c); err != nil {
			if ctx.Err() != nil {
				return errors.Join(append(errs, err)...)
			}
			s.logger.Error().Err(err).Int64("chat", chatID).Int("event", i).Str("kind", ev.Kind.String()).Msg("Dropping event")
			errs = append(errs, fmt.Errorf("event %d: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

// AnswerCallback acknowledges a button press so the client stops waiting.
func (s *Sender) AnswerCallback(callbackID string) error {
	if _, err := s.api.Request(tgbotapi.NewCallback(callbackID, "")); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}

func (s *Sender) attempt(ctx context.Context, kind outcome.Kind, c tgbotapi.Chattable) error {
	var err error
	for n := 1; n <= s.maxAttempts; n++ {
		if kind == outcome.KindEdit {
			_, err = s.api.Request(c)
		} else {
			_, err = s.api.Send(c)
		}
		if err == nil {
			return nil
		}
		s.logger.Warn().Err(err).Int("attempt", n).Msg("Delivery failed")
		if n == s.maxAttempts {
			break
		}
		if werr := s.wait(ctx); werr != nil {
			return werr
		}
	}
	return err
}

func (s *Sender) wait(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fired := make(chan struct{})
	timer := s.clock.AfterFunc(s.backoff, func() {
		close(fired)
	}, "sender", "backoff")
	defer timer.Stop()

	select {
	case <-fired:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Sender) render(ctx context.Context, chatID int64, ev outcome.Event) tgbotapi.Chattable {
	text := s.rewrite(ctx, ev)

	if ev.Kind == outcome.KindEdit {
		return tgbotapi.NewEditMessageTextAndMarkup(chatID, ev.Target, text, markup(ev.Keyboard))
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyToMessageID = ev.ReplyTo
	if ev.Keyboard != nil {
		msg.ReplyMarkup = markup(ev.Keyboard)
	}
	return msg
}

func (s *Sender) rewrite(ctx context.Context, ev outcome.Event) string {
	if s.rewriter == nil || !ev.Premium || ev.Hint == "" {
		return ev.Text
	}
	text, err := s.rewriter.Rewrite(ctx, ev.Text, ev.Hint)
	if err != nil || text == "" {
		s.logger.Warn().Err(err).Msg("Rewrite failed, sending literal text")
		return ev.Text
	}
	return text
}

// markup converts a keyboard. A nil or empty keyboard yields an empty
// markup, which removes any buttons from an edited message.
func markup(kb *outcome.Keyboard) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0)
	if kb != nil {
		for _, r := range kb.Rows {
			row := make([]tgbotapi.InlineKeyboardButton, 0, len(r))
			for _, b := range r {
				row = append(row, tgbotapi.NewInlineKeyboardButtonData(b.Text, b.Data))
			}
			rows = append(rows, row)
		}
	}
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: rows}
}
