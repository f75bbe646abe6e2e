// Package session tracks per-identity materialized-view sessions and the
// single-flight write discipline.
package session

import (
	"strings"
	"sync"
	"time"

	"github.com/smallbiznis/couponview/internal/cache"
	"github.com/smallbiznis/couponview/internal/view"
)

// Store keeps each identity's current materialized view for the session TTL.
// A reconciliation pass builds a new view and swaps it in whole; readers keep
// whatever instance they already hold.
type Store struct {
	views *cache.TTLCache[string, *view.View]
	ttl   time.Duration
}

// NewStore builds a view session store with the given TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		views: cache.NewTTLCache[string, *view.View](),
		ttl:   ttl,
	}
}

func sessionKey(identity string) string {
	return strings.ToLower(strings.TrimSpace(identity))
}

// Get returns the identity's current view, if one is cached and fresh.
func (s *Store) Get(identity string) (*view.View, bool) {
	return s.views.Get(sessionKey(identity))
}

// Publish atomically replaces the identity's view with a freshly built one.
func (s *Store) Publish(identity string, v *view.View) {
	s.views.Set(sessionKey(identity), v, s.ttl)
}

// Invalidate drops the identity's view, forcing a full reconciliation on the
// next read.
func (s *Store) Invalidate(identity string) {
	s.views.Delete(sessionKey(identity))
}

// Sweep reclaims expired sessions and returns how many were removed.
func (s *Store) Sweep() int {
	return s.views.Sweep()
}

// Len reports the number of tracked sessions, fresh or expired.
func (s *Store) Len() int {
	return s.views.Len()
}

// Gate enforces one in-flight ledger write per identity. Writes block on the
// transaction receipt, so a second submission while one is pending is
// rejected rather than queued.
type Gate struct {
	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewGate builds an empty write gate.
func NewGate() *Gate {
	return &Gate{inFlight: make(map[string]struct{})}
}

// TryAcquire claims the identity's write slot. It reports false when a write
// is already in flight.
func (g *Gate) TryAcquire(identity string) bool {
	key := sessionKey(identity)
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.inFlight[key]; ok {
		return false
	}
	g.inFlight[key] = struct{}{}
	return true
}

// Release frees the identity's write slot.
func (g *Gate) Release(identity string) {
	key := sessionKey(identity)
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
}
