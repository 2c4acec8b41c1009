package session

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("session not found")

// Store keeps the active sessions in memory, keyed by id
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	opts     Options
	listings ListingsFetcher
	opinions OpinionsFetcher
}

func NewStore(opts Options, listings ListingsFetcher, opinions OpinionsFetcher) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		opts:     opts,
		listings: listings,
		opinions: opinions,
	}
}

// Create starts a new session and returns it with the ticket for its
// first fetch.
func (st *Store) Create() (*Session, Ticket) {
	s, t := New(uuid.NewString(), st.opts, st.listings, st.opinions)

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	log.Printf("[session] id=%s created", s.ID)
	return s, t
}

// Get returns the session and marks it as used
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.Touch()
	return s, nil
}

// Delete drops a session; unknown ids are ignored
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of active sessions
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep removes sessions idle for longer than ttl and returns how many
// were removed.
func (st *Store) Sweep(now time.Time, ttl time.Duration) int {
	st.mu.Lock()
	defer st.mu.Unlock()

	removed := 0
	for id, s := range st.sessions {
		if now.Sub(s.LastSeen()) > ttl {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}
