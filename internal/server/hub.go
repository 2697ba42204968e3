package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/pigdice/internal/outcome"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Watchers never send anything meaningful
	maxMessageSize = 512

	watcherBuffer = 64
)

// Batch is the monitor view of one dispatched update.
type Batch struct {
	ChatID int64           `json:"chat_id"`
	At     time.Time       `json:"at"`
	Events []outcome.Event `json:"events"`
}

type watcher struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (w *watcher) close() {
	w.closeOnce.Do(func() {
		close(w.done)
		_ = w.conn.Close()
	})
}

// Hub fans event batches out to websocket watchers.
type Hub struct {
	mu       sync.RWMutex
	watchers map[string]*watcher
	logger   zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		watchers: make(map[string]*watcher),
		logger:   logger.With().Str("component", "monitor").Logger(),
	}
}

// Len returns the number of connected watchers.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.watchers)
}

// Broadcast sends b to every watcher. Watchers whose buffer is full are
// disconnected.
func (h *Hub) Broadcast(b Batch) {
	if h.Len() == 0 {
		return
	}
	data, err := json.Marshal(b)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to encode batch")
		return
	}

	var slow []*watcher
	h.mu.RLock()
	for _, w := range h.watchers {
		select {
		case w.send <- data:
		case <-w.done:
		default:
			slow = append(slow, w)
		}
	}
	h.mu.RUnlock()

	for _, w := range slow {
		h.logger.Warn().Str("watcher", w.id).Msg("Watcher too slow, disconnecting")
		h.remove(w)
	}
}

// Serve registers conn and pumps batches to it until either side closes.
func (h *Hub) Serve(conn *websocket.Conn) {
	w := &watcher{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, watcherBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.watchers[w.id] = w
	total := len(h.watchers)
	h.mu.Unlock()
	h.logger.Info().Str("watcher", w.id).Int("total", total).Msg("Watcher connected")

	go h.writePump(w)
	h.readPump(w)
}

// Close disconnects every watcher.
func (h *Hub) Close() {
	h.mu.Lock()
	watchers := h.watchers
	h.watchers = make(map[string]*watcher)
	h.mu.Unlock()

	for _, w := range watchers {
		w.close()
	}
}

func (h *Hub) remove(w *watcher) {
	h.mu.Lock()
	cur, ok := h.watchers[w.id]
	ok = ok && cur == w
	if ok {
		delete(h.watchers, w.id)
	}
	total := len(h.watchers)
	h.mu.Unlock()

	w.close()
	if ok {
		h.logger.Info().Str("watcher", w.id).Int("total", total).Msg("Watcher disconnected")
	}
}

// readPump discards client input and notices disconnects.
func (h *Hub) readPump(w *watcher) {
	defer h.remove(w)

	w.conn.SetReadLimit(maxMessageSize)
	_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
	w.conn.SetPongHandler(func(string) error {
		_ = w.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := w.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug().Err(err).Str("watcher", w.id).Msg("WebSocket error")
			}
			return
		}
	}
}

func (h *Hub) writePump(w *watcher) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		h.remove(w)
	}()

	for {
		select {
		case data := <-w.send:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.logger.Debug().Err(err).Str("watcher", w.id).Msg("Failed to write batch")
				return
			}
		case <-ticker.C:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := w.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-w.done:
			_ = w.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = w.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
