package session

import (
	"context"
	"log/slog"
	"sync"
)

// Hub tracks the live sessions so they can be counted and stopped together.
type Hub struct {
	mu         sync.RWMutex
	sessions   map[string]*entry
	register   chan *entry
	unregister chan string
	done       chan struct{}
	stopOnce   sync.Once
}

type entry struct {
	session *Session
	cancel  context.CancelFunc
}

func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]*entry),
		register:   make(chan *entry),
		unregister: make(chan string),
		done:       make(chan struct{}),
	}
}

// Run serves registrations until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case e := <-h.register:
			h.mu.Lock()
			h.sessions[e.session.ID] = e
			h.mu.Unlock()
			slog.Info("session started", "session", e.session.ID, "user", e.session.UserID)
		case id := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.sessions[id]; ok {
				delete(h.sessions, id)
				slog.Info("session ended", "session", id)
			}
			h.mu.Unlock()
		case <-h.done:
			return
		}
	}
}

// Register adds s to the hub and returns a context that is cancelled when the
// hub stops. Call Unregister when the session ends.
func (h *Hub) Register(ctx context.Context, s *Session) context.Context {
	ctx, cancel := context.WithCancel(ctx)
	select {
	case h.register <- &entry{session: s, cancel: cancel}:
	case <-h.done:
		cancel()
	}
	return ctx
}

func (h *Hub) Unregister(s *Session) {
	select {
	case h.unregister <- s.ID:
	case <-h.done:
	}
}

// Count returns the number of live sessions.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Stop cancels every live session and ends Run.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
		h.mu.Lock()
		for id, e := range h.sessions {
			e.cancel()
			delete(h.sessions, id)
		}
		h.mu.Unlock()
	})
}
