// Package session implements the inactivity-driven lock that decides when the
// vault key may be held in memory.
//
// State is a plain value with pure transitions; Guard owns one State (plus
// the decrypted vault) behind a mutex and is what the rest of the program
// talks to.
package session

import (
	"errors"
	"time"
)

const (
	// DefaultTimeout is how long an unlocked session survives without activity.
	DefaultTimeout = 60 * time.Second
	// DefaultPollInterval is how often the inactivity check runs.
	DefaultPollInterval = 10 * time.Second
)

// ErrLocked is returned by operations that need an unlocked session.
var ErrLocked = errors.New("vault locked")

// Status is the externally visible lock state.
type Status int

const (
	Locked Status = iota
	Unlocked
)

func (s Status) String() string {
	if s == Unlocked {
		return "unlocked"
	}
	return "locked"
}

// State is the session value: the key (absent while locked), the time of the
// last recognised activity and the inactivity timeout.
type State struct {
	Key          []byte
	LastActivity time.Time
	Timeout      time.Duration
}

// NewState returns a locked state. Non-positive timeouts select DefaultTimeout.
func NewState(timeout time.Duration) State {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return State{Timeout: timeout}
}

// Status reports whether a key is held.
func (s State) Status() Status {
	if s.Key != nil {
		return Unlocked
	}
	return Locked
}

// Unlock moves to Unlocked holding key, with activity stamped at now.
func (s State) Unlock(key []byte, now time.Time) State {
	return State{Key: key, LastActivity: now, Timeout: s.Timeout}
}

// Touch records activity. It is a no-op while locked.
func (s State) Touch(now time.Time) State {
	if s.Status() == Locked {
		return s
	}
	s.LastActivity = now
	return s
}

// Expired reports whether an unlocked session has been idle for at least
// Timeout at now.
func (s State) Expired(now time.Time) bool {
	return s.Status() == Unlocked && now.Sub(s.LastActivity) >= s.Timeout
}

// Lock drops the key. Erasing the key bytes is the owner's job.
func (s State) Lock() State {
	return State{Timeout: s.Timeout}
}

// Poll runs the inactivity check, returning the next state and whether this
// poll locked the session.
func (s State) Poll(now time.Time) (State, bool) {
	if !s.Expired(now) {
		return s, false
	}
	return s.Lock(), true
}
