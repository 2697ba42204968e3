// Package server exposes the bot over HTTP: the Telegram webhook, a health
// check and a websocket monitor of dispatched events.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/pigdice/internal/dispatch"
	"github.com/lox/pigdice/internal/outcome"
)

// SecretHeader carries the webhook secret set with setWebhook.
const SecretHeader = "X-Telegram-Bot-Api-Secret-Token"

// maxUpdateSize bounds a webhook request body.
const maxUpdateSize = 1 << 20

// Converter turns Bot API updates into dispatch updates.
type Converter interface {
	Convert(u tgbotapi.Update) (dispatch.Update, bool)
}

// Dispatcher applies an update and returns the events to send.
type Dispatcher interface {
	Handle(u dispatch.Update) []outcome.Event
}

// Deliverer sends events back to Telegram.
type Deliverer interface {
	Deliver(ctx context.Context, chatID int64, events []outcome.Event) error
	AnswerCallback(callbackID string) error
}

// Config holds the HTTP settings.
type Config struct {
	Addr            string
	WebhookPath     string
	Secret          string
	DeliveryTimeout time.Duration
}

// Server handles webhook requests.
type Server struct {
	cfg        Config
	converter  Converter
	dispatcher Dispatcher
	deliverer  Deliverer
	hub        *Hub
	upgrader   websocket.Upgrader
	http       *http.Server
	logger     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer wires the webhook to conv, disp and deliv.
func NewServer(cfg Config, conv Converter, disp Dispatcher, deliv Deliverer, logger zerolog.Logger) *Server {
	if cfg.WebhookPath == "" {
		cfg.WebhookPath = "/webhook"
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 30 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:        cfg,
		converter:  conv,
		dispatcher: disp,
		deliverer:  deliv,
		hub:        NewHub(logger),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "server").Logger(),
		ctx:    ctx,
		cancel: cancel,
	}
	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+s.cfg.WebhookPath, s.handleWebhook)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return mux
}

// Hub returns the monitor hub.
func (s *Server) Hub() *Hub { return s.hub }

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.cfg.Addr).Str("webhook", s.cfg.WebhookPath).Msg("Starting HTTP server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests, waits for pending deliveries and
// disconnects monitors.
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn().Msg("Abandoning pending deliveries")
		s.cancel()
		<-done
	}
	s.cancel()
	s.hub.Close()
	return err
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Secret != "" {
		got := r.Header.Get(SecretHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.Secret)) != 1 {
			s.logger.Warn().Str("remote", r.RemoteAddr).Msg("Rejected webhook with bad secret")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
	}

	var upd tgbotapi.Update
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxUpdateSize)).Decode(&upd); err != nil {
		s.logger.Debug().Err(err).Msg("Malformed update")
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	if upd.CallbackQuery != nil {
		s.background(func(context.Context) {
			if err := s.deliverer.AnswerCallback(upd.CallbackQuery.ID); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to answer callback")
			}
		})
	}

	u, ok := s.converter.Convert(upd)
	if ok {
		events := s.dispatcher.Handle(u)
		if len(events) > 0 {
			chatID := int64(u.ChatID)
			s.hub.Broadcast(Batch{ChatID: chatID, At: time.Now(), Events: events})
			s.background(func(ctx context.Context) {
				if err := s.deliverer.Deliver(ctx, chatID, events); err != nil {
					s.logger.Error().Err(err).Int64("chat", chatID).Msg("Delivery incomplete")
				}
			})
		}
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.DeliveryTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK")
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to upgrade connection")
		return
	}
	s.hub.Serve(conn)
}
