package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Hussein-Mazeh/guardvault/internal/vault"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestGuard() (*Guard, *fakeClock) {
	clk := &fakeClock{now: t0}
	return NewGuard(WithClock(clk.Now)), clk
}

func testVault() vault.Vault {
	return vault.Vault{{AccountName: "alice", SharedSecret: "c2VjcmV0", SteamID: "1"}}
}

func TestGuard_StartsLocked(t *testing.T) {
	g, _ := newTestGuard()
	assert.Equal(t, Locked, g.Status())

	_, err := g.Vault()
	assert.ErrorIs(t, err, ErrLocked)
	_, err = g.Snapshot()
	assert.ErrorIs(t, err, ErrLocked)
}

func TestGuard_InactivityLock(t *testing.T) {
	g, clk := newTestGuard()
	key := []byte("0123456789abcdef0123456789abcdef")
	g.Unlock(key, nil, testVault())

	var reasons []Reason
	g.OnLock(func(r Reason) { reasons = append(reasons, r) })

	clk.Advance(50 * time.Second)
	assert.False(t, g.Poll())

	clk.Advance(10 * time.Second)
	assert.True(t, g.Poll())
	assert.Equal(t, Locked, g.Status())
	assert.Equal(t, []Reason{ReasonInactivity}, reasons)

	assert.False(t, g.Poll(), "second poll must not report another lock")
}

func TestGuard_LockHooksSeeEveryReason(t *testing.T) {
	g, _ := newTestGuard()
	key := []byte("0123456789abcdef0123456789abcdef")

	var reasons []Reason
	g.OnLock(func(r Reason) {
		reasons = append(reasons, r)
		if r == ReasonManual {
			// Registering from inside a hook must not disturb the running set.
			g.OnLock(func(Reason) {})
		}
	})

	g.Unlock(key, nil, testVault())
	g.Unlock(key, nil, testVault())
	assert.True(t, g.Lock(ReasonManual))
	assert.False(t, g.Lock(ReasonManual))

	assert.Equal(t, []Reason{ReasonReplaced, ReasonManual}, reasons)
}

func TestGuard_ActivityPingKeepsSessionOpen(t *testing.T) {
	g, clk := newTestGuard()
	g.Unlock([]byte("k"), nil, testVault())

	clk.Advance(50 * time.Second)
	g.Touch()
	clk.Advance(15 * time.Second)
	assert.False(t, g.Poll())
	assert.Equal(t, Unlocked, g.Status())
}

func TestGuard_LockErasesKey(t *testing.T) {
	g, _ := newTestGuard()
	g.Unlock([]byte("0123456789abcdef0123456789abcdef"), []byte("salt"), testVault())

	g.mu.Lock()
	held := g.state.Key
	g.mu.Unlock()

	require.True(t, g.Lock(ReasonManual))
	for i, b := range held {
		require.Zerof(t, b, "key byte %d not erased", i)
	}
	assert.False(t, g.Lock(ReasonManual))
}

func TestGuard_UnlockCopiesKey(t *testing.T) {
	g, _ := newTestGuard()
	key := []byte("0123456789abcdef0123456789abcdef")
	g.Unlock(key, nil, testVault())
	g.Lock(ReasonManual)
	assert.Equal(t, byte('0'), key[0], "caller's key must be left alone")
}

func TestGuard_SnapshotAndCommit(t *testing.T) {
	g, _ := newTestGuard()
	id := g.Unlock([]byte("k"), []byte("s"), testVault())

	m, err := g.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, id, m.SessionID)
	assert.Equal(t, []byte("k"), m.Key)
	assert.Equal(t, []byte("s"), m.Salt)

	next, err := m.Vault.Add(vault.Account{AccountName: "bob", SharedSecret: "c2VjcmV0", SteamID: "2"})
	require.NoError(t, err)
	m.Wipe()
	assert.Nil(t, m.Key)

	require.NoError(t, g.Commit(id, next))
	v, err := g.Vault()
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, v.Names())
}

func TestGuard_CommitRejectsStaleSession(t *testing.T) {
	g, _ := newTestGuard()
	id := g.Unlock([]byte("k"), nil, testVault())
	g.Lock(ReasonManual)
	assert.ErrorIs(t, g.Commit(id, nil), ErrLocked)

	g.Unlock([]byte("k"), nil, testVault())
	assert.ErrorIs(t, g.Commit(id, nil), ErrLocked)
}

func TestGuard_TouchWhileLockedDoesNotUnlock(t *testing.T) {
	g, _ := newTestGuard()
	g.Touch()
	assert.Equal(t, Locked, g.Status())
	assert.True(t, g.LastActivity().IsZero())
}

func TestGuard_VaultIsACopy(t *testing.T) {
	g, _ := newTestGuard()
	g.Unlock([]byte("k"), nil, testVault())

	v, err := g.Vault()
	require.NoError(t, err)
	v[0].AccountName = "mallory"

	again, err := g.Vault()
	require.NoError(t, err)
	assert.Equal(t, "alice", again[0].AccountName)
}

func TestGuard_PollAtUsesGivenTime(t *testing.T) {
	g, _ := newTestGuard()
	g.Unlock([]byte("k"), nil, testVault())

	assert.False(t, g.PollAt(t0.Add(59*time.Second)))
	assert.True(t, g.PollAt(t0.Add(60*time.Second)))
}
