package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHubServer(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub(zerolog.Nop())
	upgrader := websocket.Upgrader{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hub.Serve(conn)
	}))
	t.Cleanup(func() {
		hub.Close()
		ts.Close()
	})
	return hub, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dialWatcher(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestHubWatcherIDsAreFullUUIDs(t *testing.T) {
	hub, url := newHubServer(t)
	dialWatcher(t, url)
	dialWatcher(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	hub.mu.RLock()
	defer hub.mu.RUnlock()
	for id, w := range hub.watchers {
		assert.Len(t, id, 36)
		assert.Equal(t, id, w.id)
	}
}

func TestHubDisconnectKeepsOtherWatchers(t *testing.T) {
	hub, url := newHubServer(t)
	first := dialWatcher(t, url)
	second := dialWatcher(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 2 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, first.Close())
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Broadcast(Batch{ChatID: -7})
	_ = second.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := second.ReadMessage()
	require.NoError(t, err)

	var batch Batch
	require.NoError(t, json.Unmarshal(data, &batch))
	assert.Equal(t, int64(-7), batch.ChatID)
}

func TestHubRemoveIgnoresStaleWatcher(t *testing.T) {
	hub, url := newHubServer(t)
	dialWatcher(t, url)
	require.Eventually(t, func() bool { return hub.Len() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.mu.RLock()
	var live *watcher
	for _, w := range hub.watchers {
		live = w
	}
	hub.mu.RUnlock()

	stale := &watcher{id: live.id, conn: live.conn, send: make(chan []byte), done: make(chan struct{})}
	stale.closeOnce.Do(func() {})
	hub.remove(stale)

	assert.Equal(t, 1, hub.Len(), "a watcher sharing the id must not evict the registered one")
}
