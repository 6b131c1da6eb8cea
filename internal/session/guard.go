package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Hussein-Mazeh/guardvault/internal/logging"
	"github.com/Hussein-Mazeh/guardvault/internal/vault"
	"github.com/Hussein-Mazeh/guardvault/krypto"
)

// Reason explains why a session was locked.
type Reason string

const (
	ReasonInactivity Reason = "inactivity"
	ReasonManual     Reason = "manual"
	ReasonReset      Reason = "reset"
	ReasonReplaced   Reason = "replaced"
)

// Material is a copy of what an unlocked session holds. Callers must call
// Wipe when done with the key.
type Material struct {
	SessionID string
	Key       []byte
	Salt      []byte
	Vault     vault.Vault
}

// Wipe zeroes the key copy.
func (m *Material) Wipe() {
	krypto.Zeroize(m.Key)
	m.Key = nil
}

// Option configures a Guard.
type Option func(*Guard)

// WithTimeout sets the inactivity timeout.
func WithTimeout(d time.Duration) Option {
	return func(g *Guard) { g.state = NewState(d) }
}

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLogger sets the logger used for lock/unlock events.
func WithLogger(l logging.Logger) Option {
	return func(g *Guard) { g.log = l }
}

// Guard holds the key and the decrypted vault while the session is unlocked.
// It is safe for concurrent use.
//
// Key erasure on lock is best-effort: the bytes held by the guard are zeroed
// and unlocked from memory, but copies made by the runtime or handed out via
// Snapshot are outside its control.
type Guard struct {
	mu        sync.Mutex
	state     State
	vault     vault.Vault
	salt      []byte
	sessionID string
	now       func() time.Time
	log       logging.Logger
	onLock    []func(Reason)
}

// NewGuard returns a locked guard.
func NewGuard(opts ...Option) *Guard {
	g := &Guard{
		state: NewState(DefaultTimeout),
		now:   time.Now,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// OnLock registers fn to run after every transition to Locked. fn runs
// without the guard's mutex held.
func (g *Guard) OnLock(fn func(Reason)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onLock = append(g.onLock, fn)
}

// Unlock takes ownership of key and v and starts a new session. Any previous
// session is closed first. It returns the new session id.
func (g *Guard) Unlock(key, salt []byte, v vault.Vault) string {
	g.mu.Lock()
	replaced := g.state.Status() == Unlocked
	if replaced {
		g.clearLockedUnsafe()
	}

	owned := krypto.CloneKey(key)
	if err := krypto.LockMemory(owned); err != nil {
		g.log.Debug(context.Background(), "mlock failed", "error", err)
	}

	g.state = g.state.Unlock(owned, g.now())
	g.vault = v.Clone()
	g.salt = append([]byte(nil), salt...)
	g.sessionID = uuid.NewString()
	id := g.sessionID
	n := len(g.vault)
	hooks := g.hooksIf(replaced)
	g.mu.Unlock()

	runHooks(hooks, ReasonReplaced)
	g.log.Info(context.Background(), "session unlocked", "session_id", id, "accounts", n)
	return id
}

// Touch records user activity. It never unlocks a locked session.
func (g *Guard) Touch() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = g.state.Touch(g.now())
}

// Poll runs the inactivity check against the guard's clock and reports
// whether it locked the session. Polling while locked is a no-op.
func (g *Guard) Poll() bool {
	return g.PollAt(g.now())
}

// PollAt is Poll with an explicit current time.
func (g *Guard) PollAt(now time.Time) bool {
	g.mu.Lock()
	next, locked := g.state.Poll(now)
	if !locked {
		g.mu.Unlock()
		return false
	}
	id := g.sessionID
	g.clearLockedUnsafe()
	g.state = next
	hooks := g.hooksIf(true)
	g.mu.Unlock()

	g.log.Info(context.Background(), "session locked", "session_id", id, "reason", ReasonInactivity)
	runHooks(hooks, ReasonInactivity)
	return true
}

// Lock ends the session for reason. It reports whether a session was open.
func (g *Guard) Lock(reason Reason) bool {
	g.mu.Lock()
	if g.state.Status() == Locked {
		g.mu.Unlock()
		return false
	}
	id := g.sessionID
	g.clearLockedUnsafe()
	g.state = g.state.Lock()
	hooks := g.hooksIf(true)
	g.mu.Unlock()

	g.log.Info(context.Background(), "session locked", "session_id", id, "reason", reason)
	runHooks(hooks, reason)
	return true
}

// Status reports the current lock state.
func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.Status()
}

// LastActivity returns the time of the last recognised activity, or the zero
// time while locked.
func (g *Guard) LastActivity() time.Time {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state.LastActivity
}

// Vault returns a copy of the decrypted vault.
func (g *Guard) Vault() (vault.Vault, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Status() == Locked {
		return nil, ErrLocked
	}
	return g.vault.Clone(), nil
}

// Snapshot copies the session material for a write. It does not count as
// activity.
func (g *Guard) Snapshot() (Material, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Status() == Locked {
		return Material{}, ErrLocked
	}
	return Material{
		SessionID: g.sessionID,
		Key:       krypto.CloneKey(g.state.Key),
		Salt:      append([]byte(nil), g.salt...),
		Vault:     g.vault.Clone(),
	}, nil
}

// Commit replaces the in-memory vault if the session identified by
// sessionID is still open.
func (g *Guard) Commit(sessionID string, v vault.Vault) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state.Status() == Locked || g.sessionID != sessionID {
		return ErrLocked
	}
	g.vault = v.Clone()
	return nil
}

func (g *Guard) clearLockedUnsafe() {
	if len(g.state.Key) > 0 {
		_ = krypto.UnlockMemory(g.state.Key)
		krypto.Zeroize(g.state.Key)
	}
	g.state.Key = nil
	g.vault = nil
	krypto.Zeroize(g.salt)
	g.salt = nil
	g.sessionID = ""
}

func (g *Guard) hooksIf(ok bool) []func(Reason) {
	if !ok || len(g.onLock) == 0 {
		return nil
	}
	hooks := make([]func(Reason), len(g.onLock))
	copy(hooks, g.onLock)
	return hooks
}

func runHooks(hooks []func(Reason), reason Reason) {
	for _, fn := range hooks {
		fn(reason)
	}
}
