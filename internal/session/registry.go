package session

import (
	"context"
	"sync"
	"time"

	"protoflow/internal/util"
)

// Registry keys live sessions by reviewer context. One key, one session;
// creating over a live key supersedes it, the way a fresh upload starts a
// fresh review.
type Registry struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(ttl time.Duration) *Registry {
	return &Registry{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
}

// Create installs a new session under key, replacing whatever held it.
func (r *Registry) Create(key, protocolID string, draft Draft) *Session {
	s := New(key, protocolID, draft)
	s.lastSeen = r.now()
	r.mu.Lock()
	r.sessions[key] = s
	r.mu.Unlock()
	return s
}

// Acquire hands out the session under key with its interaction lock held.
// The caller must call release when done. A session someone else holds
// fails fast with ErrSessionBusy rather than queueing.
func (r *Registry) Acquire(key string) (*Session, func(), error) {
	r.mu.RLock()
	s, ok := r.sessions[key]
	r.mu.RUnlock()
	if !ok {
		return nil, nil, util.ErrSessionNotFound
	}
	if !s.mu.TryLock() {
		return nil, nil, util.ErrSessionBusy
	}
	if s.state.Terminal() || r.expired(s) {
		s.mu.Unlock()
		return nil, nil, util.ErrSessionExpired
	}
	s.lastSeen = r.now()
	return s, s.mu.Unlock, nil
}

// expired reports whether the session sat idle past the TTL. Caller holds
// the session lock.
func (r *Registry) expired(s *Session) bool {
	if r.ttl <= 0 {
		return false
	}
	return r.now().Sub(s.lastSeen) > r.ttl
}

// Remove drops the session under key, if any.
func (r *Registry) Remove(key string) {
	r.mu.Lock()
	delete(r.sessions, key)
	r.mu.Unlock()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep removes terminal and idle-expired sessions and returns how many
// went. Sessions mid-interaction are skipped; holding the lock means they
// are anything but idle.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for key, s := range r.sessions {
		if !s.mu.TryLock() {
			continue
		}
		gone := s.state.Terminal() || r.expired(s)
		s.mu.Unlock()
		if gone {
			delete(r.sessions, key)
			removed++
		}
	}
	return removed
}

// StartSweeper sweeps on the interval until the context ends.
func (r *Registry) StartSweeper(ctx context.Context, every time.Duration) {
	go func() {
		t := time.NewTicker(every)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				r.Sweep()
			}
		}
	}()
}
