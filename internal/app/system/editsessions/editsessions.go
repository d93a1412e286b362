// Package editsessions keeps the live class list editing sessions of
// signed-in admins. Each browser holds a session id in its cookie session;
// the id maps to a classstore.Store that lives until it is closed or
// evicted for idleness.
package editsessions

import (
	"context"
	"sync"
	"time"

	"github.com/dalemusser/quickclass/internal/app/system/classstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Opener creates and loads a new Store.
type Opener func(ctx context.Context) (*classstore.Store, error)

type entry struct {
	store    *classstore.Store
	owner    string
	lastSeen time.Time
}

// Registry maps edit session ids to stores. It is safe for concurrent use.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*entry
	open     Opener
	log      *zap.Logger
	now      func() time.Time
}

// New creates an empty registry.
func New(open Opener, logger *zap.Logger) *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		open:     open,
		log:      logger,
		now:      time.Now,
	}
}

// Get returns the store for id if it exists and belongs to owner, and
// marks it as used.
func (r *Registry) Get(id, owner string) (*classstore.Store, bool) {
	if id == "" {
		return nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.sessions[id]
	if !ok || e.owner != owner || e.store.Closed() {
		return nil, false
	}
	e.lastSeen = r.now()
	return e.store, true
}

// Open loads a new store for owner and registers it under a fresh id.
func (r *Registry) Open(ctx context.Context, owner string) (string, *classstore.Store, error) {
	st, err := r.open(ctx)
	if err != nil {
		return "", nil, err
	}
	id := uuid.NewString()

	r.mu.Lock()
	r.sessions[id] = &entry{store: st, owner: owner, lastSeen: r.now()}
	n := len(r.sessions)
	r.mu.Unlock()

	r.log.Debug("edit session opened", zap.String("owner", owner), zap.Int("open_sessions", n))
	return id, st, nil
}

// Close closes and forgets the session. Unknown ids are ignored.
func (r *Registry) Close(id string) {
	r.mu.Lock()
	e, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		e.store.Close()
	}
}

// EvictIdle closes every session unused for longer than maxIdle and
// returns how many were removed.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var stale []*classstore.Store
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) || e.store.Closed() {
			stale = append(stale, e.store)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, st := range stale {
		st.Close()
	}
	return len(stale)
}

// Len returns the number of open sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// CloseAll closes every session. Used at shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := r.sessions
	r.sessions = make(map[string]*entry)
	r.mu.Unlock()

	for _, e := range all {
		e.store.Close()
	}
}
