package session

import (
	"sync"
	"time"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
	"github.com/google/uuid"
)

// ErrExpired is returned by With for unknown or idle sessions.
var ErrExpired = fault.New("session expired",
	ftag.With(ftag.NotFound),
	fmsg.WithDesc("session lookup", "Your session expired; the page was reset."))

type slot struct {
	mu       sync.Mutex
	s        *Session
	lastSeen time.Time
}

// Store keeps sessions by id and drops them after TTL of inactivity. Expired
// sessions are removed lazily on access and by Sweep.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*slot
	ttl      time.Duration
	defaults Defaults
	now      func() time.Time
}

// NewStore returns an empty store. A ttl <= 0 keeps sessions until deleted.
func NewStore(ttl time.Duration, d Defaults) *Store {
	return &Store{
		sessions: make(map[string]*slot),
		ttl:      ttl,
		defaults: d,
		now:      time.Now,
	}
}

// SetDefaults changes what new sessions start from. Existing sessions keep
// their state.
func (st *Store) SetDefaults(d Defaults) {
	st.mu.Lock()
	st.defaults = d
	st.mu.Unlock()
}

// Defaults returns the settings used for new sessions.
func (st *Store) Defaults() Defaults {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.defaults
}

// Create starts a new session and returns its id.
func (st *Store) Create() string {
	id := uuid.NewString()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[id] = &slot{s: New(id, st.defaults), lastSeen: st.now()}
	return id
}

// Ensure returns id if it names a live session, or the id of a new one.
func (st *Store) Ensure(id string) (string, bool) {
	if id != "" && st.lookup(id) != nil {
		return id, false
	}
	return st.Create(), true
}

func (st *Store) expired(sl *slot, now time.Time) bool {
	return st.ttl > 0 && now.Sub(sl.lastSeen) > st.ttl
}

func (st *Store) lookup(id string) *slot {
	st.mu.Lock()
	defer st.mu.Unlock()
	sl, ok := st.sessions[id]
	if !ok {
		return nil
	}
	now := st.now()
	if st.expired(sl, now) {
		delete(st.sessions, id)
		return nil
	}
	sl.lastSeen = now
	return sl
}

// With runs fn with exclusive access to the session.
func (st *Store) With(id string, fn func(*Session) error) error {
	sl := st.lookup(id)
	if sl == nil {
		return ErrExpired
	}
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return fn(sl.s)
}

// Delete tears a session down. Unknown ids are ignored.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Sweep removes every expired session and returns how many were dropped.
func (st *Store) Sweep() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	n := 0
	for id, sl := range st.sessions {
		if st.expired(sl, now) {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Len is the number of stored sessions, expired or not.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
