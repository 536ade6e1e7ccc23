package session

import (
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
)

// Store keeps one Session per user in memory. Sessions do not survive restarts.
type Store struct {
	c   *cache.Cache
	ttl time.Duration
	now func() time.Time
}

type Option func(*Store)

// WithClock replaces time.Now for LastTouched stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore creates a store. ttl <= 0 keeps sessions until they are cleared.
func NewStore(ttl time.Duration, opts ...Option) *Store {
	exp, cleanup := cache.NoExpiration, time.Duration(0)
	if ttl > 0 {
		exp, cleanup = ttl, ttl/2
	}
	s := &Store{c: cache.New(exp, cleanup), ttl: exp, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

func key(userID int64) string { return strconv.FormatInt(userID, 10) }

// Get returns a private copy of the user's session.
func (s *Store) Get(userID int64) (*Session, bool) {
	v, ok := s.c.Get(key(userID))
	if !ok {
		return nil, false
	}
	return v.(*Session).Clone(), true
}

// Set stores a copy of sess and stamps LastTouched.
func (s *Store) Set(userID int64, sess *Session) {
	c := sess.Clone()
	c.LastTouched = s.now()
	sess.LastTouched = c.LastTouched
	s.c.Set(key(userID), c, s.ttl)
}

// Create replaces any previous session of the user with a fresh one at step.
func (s *Store) Create(userID int64, step Step) *Session {
	sess := &Session{Step: step}
	s.Set(userID, sess)
	return sess
}

func (s *Store) Clear(userID int64) { s.c.Delete(key(userID)) }
