// Package directory maps chats to their game sessions.
//
// Every chat gets its own entry lock, so events for one chat are applied one
// at a time while events for different chats run in parallel. The index is
// split into shards whose locks are only held to find or insert an entry,
// never while a session is being mutated.
package directory

import (
	"sync"

	"github.com/lox/pigdice/internal/game"
)

// ChatID identifies a chat.
type ChatID int64

const defaultShards = 32

type entry struct {
	mu      sync.Mutex
	session *game.Session
}

type shard struct {
	mu      sync.RWMutex
	entries map[ChatID]*entry
}

// Directory holds one session per chat for the lifetime of the process.
// Entries are never removed; resetting a session replaces its state only.
type Directory struct {
	shards []*shard
}

// Option configures a Directory
type Option func(*Directory)

// WithShards sets the number of index shards.
func WithShards(n int) Option {
	return func(d *Directory) {
		if n > 0 {
			d.shards = newShards(n)
		}
	}
}

// New creates an empty directory.
func New(opts ...Option) *Directory {
	d := &Directory{shards: newShards(defaultShards)}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func newShards(n int) []*shard {
	shards := make([]*shard, n)
	for i := range shards {
		shards[i] = &shard{entries: make(map[ChatID]*entry)}
	}
	return shards
}

// Do runs fn with exclusive access to the chat's session, creating an empty
// lobby on first use. fn must not retain the session after returning.
func (d *Directory) Do(chat ChatID, fn func(*game.Session)) {
	e := d.getOrCreate(chat)
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
}

// Peek runs fn with exclusive access only if the chat already has a session.
// It reports whether fn ran.
func (d *Directory) Peek(chat ChatID, fn func(*game.Session)) bool {
	e, ok := d.lookup(chat)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	fn(e.session)
	return true
}

// Len returns the number of chats seen so far.
func (d *Directory) Len() int {
	n := 0
	for _, s := range d.shards {
		s.mu.RLock()
		n += len(s.entries)
		s.mu.RUnlock()
	}
	return n
}

func (d *Directory) shardFor(chat ChatID) *shard {
	h := uint64(chat)
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	return d.shards[h%uint64(len(d.shards))]
}

func (d *Directory) lookup(chat ChatID) (*entry, bool) {
	s := d.shardFor(chat)
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[chat]
	return e, ok
}

func (d *Directory) getOrCreate(chat ChatID) *entry {
	if e, ok := d.lookup(chat); ok {
		return e
	}

	s := d.shardFor(chat)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[chat]; ok {
		return e
	}
	e := &entry{session: game.NewSession()}
	s.entries[chat] = e
	return e
}
