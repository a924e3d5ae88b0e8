package server

import (
	"sync"
	"time"

	"catcare/internal/schedule"
)

const boardIdleTimeout = 30 * time.Minute

type boardEntry struct {
	board    *schedule.Board
	lastUsed time.Time
}

// boardCache keeps one schedule board per signed in user. Boards idle for
// longer than ttl are closed on the next access.
type boardCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	build   func() *schedule.Board
	now     func() time.Time
	entries map[string]*boardEntry
}

func newBoardCache(ttl time.Duration, build func() *schedule.Board) *boardCache {
	return &boardCache{
		ttl:     ttl,
		build:   build,
		now:     time.Now,
		entries: make(map[string]*boardEntry),
	}
}

// get returns the board of userID. Anonymous visitors get a fresh board
// that the caller must close.
func (c *boardCache) get(userID string) (*schedule.Board, bool) {
	if userID == "" {
		return c.build(), false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, entry := range c.entries {
		if id != userID && now.Sub(entry.lastUsed) > c.ttl {
			entry.board.Close()
			delete(c.entries, id)
		}
	}

	entry, ok := c.entries[userID]
	if !ok || now.Sub(entry.lastUsed) > c.ttl {
		if ok {
			entry.board.Close()
		}
		entry = &boardEntry{board: c.build()}
		c.entries[userID] = entry
	}
	entry.lastUsed = now

	return entry.board, true
}

func (c *boardCache) evict(userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[userID]; ok {
		entry.board.Close()
		delete(c.entries, userID)
	}
}

func (c *boardCache) closeAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for id, entry := range c.entries {
		entry.board.Close()
		delete(c.entries, id)
	}
}
