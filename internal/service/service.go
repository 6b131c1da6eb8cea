package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Hussein-Mazeh/guardvault/auth"
	"github.com/Hussein-Mazeh/guardvault/internal/importer"
	"github.com/Hussein-Mazeh/guardvault/internal/logging"
	"github.com/Hussein-Mazeh/guardvault/internal/session"
	"github.com/Hussein-Mazeh/guardvault/internal/totp"
	"github.com/Hussein-Mazeh/guardvault/internal/vault"
	"github.com/Hussein-Mazeh/guardvault/krypto"
	"github.com/Hussein-Mazeh/guardvault/store"
)

var (
	// ErrVaultExists is returned by Create when a vault is already stored.
	ErrVaultExists = errors.New("vault already initialised; unlock instead")
	// ErrNoVault is returned by Unlock when nothing is stored yet.
	ErrNoVault = errors.New("no vault found; create one first")
)

// CodeView is one account's current code as shown to the user.
type CodeView struct {
	AccountName      string
	SteamID          string
	Code             string
	SecondsRemaining int
}

// AccountView describes a stored account without its secret.
type AccountView struct {
	AccountName string
	SteamID     string
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	Timeout time.Duration
	Policy  auth.ValidateOptions
	Logger  logging.Logger
	Clock   func() time.Time
}

// Service exposes high-level vault operations for CLI/GUI.
//
// Mutations (create, add, remove, reset) are serialised by a single writer
// mutex that covers both the in-memory change and the write to storage, so
// concurrent additions are never lost.
type Service struct {
	store  store.BlobStore
	guard  *session.Guard
	policy auth.ValidateOptions
	log    logging.Logger
	now    func() time.Time

	writeMu sync.Mutex
}

// New returns a locked service persisting to st.
func New(st store.BlobStore, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &Service{
		store:  st,
		policy: opts.Policy,
		log:    opts.Logger,
		now:    opts.Clock,
		guard: session.NewGuard(
			session.WithTimeout(opts.Timeout),
			session.WithClock(opts.Clock),
			session.WithLogger(opts.Logger),
		),
	}
}

// Close locks the session and releases the store.
func (s *Service) Close() error {
	s.guard.Lock(session.ReasonManual)
	return s.store.Close()
}

// HasVault reports whether an encrypted vault is stored.
func (s *Service) HasVault(ctx context.Context) (bool, error) {
	_, err := s.store.Get(ctx, vault.StorageName)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("read vault: %w", err)
	}
}

// Create stores a new empty vault keyed by password and unlocks it. The
// vault gets a fresh random salt.
func (s *Service) Create(ctx context.Context, password string) (vault.Vault, error) {
	if err := auth.ValidateMasterPassword(password, s.policy); err != nil {
		return nil, err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	exists, err := s.HasVault(ctx)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrVaultExists
	}

	salt, err := krypto.NewRandomSalt(krypto.SaltLengthBytes)
	if err != nil {
		return nil, err
	}

	pw := []byte(password)
	defer krypto.Zeroize(pw)
	key := krypto.DeriveKeyWithSalt(pw, salt)
	defer krypto.Zeroize(key)

	empty := vault.Vault{}
	if err := s.persist(ctx, empty, key, salt); err != nil {
		return nil, err
	}

	s.guard.Unlock(key, salt, empty)
	s.log.Info(ctx, "vault created")
	return empty.Clone(), nil
}

// Unlock derives the key from password, decrypts the stored vault and opens a
// session. A wrong password yields vault.ErrAuthentication and leaves the
// current state untouched.
//
// Unlock holds the writer mutex so it never reads a blob that an in-flight
// mutation or reset is about to replace.
func (s *Service) Unlock(ctx context.Context, password string) (vault.Vault, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, err := s.store.Get(ctx, vault.StorageName)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoVault
	}
	if err != nil {
		return nil, fmt.Errorf("read vault: %w", err)
	}

	blob, err := vault.DecodeBlob(data)
	if err != nil {
		s.log.Warn(ctx, "unlock rejected", "reason", "malformed blob")
		return nil, err
	}

	pw := []byte(password)
	defer krypto.Zeroize(pw)
	key := krypto.DeriveKeyWithSalt(pw, blob.Salt)
	defer krypto.Zeroize(key)

	v, err := vault.Decrypt(blob, key)
	if err != nil {
		if errors.Is(err, vault.ErrAuthentication) {
			s.log.Warn(ctx, "unlock rejected", "reason", "authentication failed")
		}
		return nil, err
	}

	s.guard.Unlock(key, blob.Salt, v)
	return v.Clone(), nil
}

// AddAccount validates an import document and appends its account. Invalid
// documents and steam id collisions are reported as importer.ErrImport; in
// both cases nothing changes.
func (s *Service) AddAccount(ctx context.Context, doc []byte) error {
	acct, err := importer.Parse(doc)
	if err != nil {
		s.log.Info(ctx, "import rejected", "error", err)
		return err
	}

	err = s.mutate(ctx, func(v vault.Vault) (vault.Vault, error) {
		next, err := v.Add(acct)
		if errors.Is(err, vault.ErrDuplicateAccount) {
			return nil, fmt.Errorf("%w: %w", importer.ErrImport, err)
		}
		return next, err
	})
	if err != nil {
		s.log.Info(ctx, "import rejected", "error", err)
		return err
	}
	s.log.Info(ctx, "account imported", "account", acct.AccountName, "steam_id", acct.SteamID)
	return nil
}

// RemoveAccount deletes the account with steamID.
func (s *Service) RemoveAccount(ctx context.Context, steamID string) error {
	err := s.mutate(ctx, func(v vault.Vault) (vault.Vault, error) {
		next, ok := v.Remove(steamID)
		if !ok {
			return nil, fmt.Errorf("no account with steam id %s", steamID)
		}
		return next, nil
	})
	if err != nil {
		return err
	}
	s.log.Info(ctx, "account removed", "steam_id", steamID)
	return nil
}

// mutate applies fn to the current vault and persists the result. The
// in-memory vault is replaced only after the write succeeds.
func (s *Service) mutate(ctx context.Context, fn func(vault.Vault) (vault.Vault, error)) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	m, err := s.guard.Snapshot()
	if err != nil {
		return err
	}
	defer m.Wipe()

	next, err := fn(m.Vault)
	if err != nil {
		return err
	}
	if err := s.persist(ctx, next, m.Key, m.Salt); err != nil {
		return err
	}

	if err := s.guard.Commit(m.SessionID, next); err != nil {
		// Stored already; the session ended while writing.
		s.log.Warn(ctx, "session closed during write", "session_id", m.SessionID)
		return nil
	}
	s.guard.Touch()
	return nil
}

func (s *Service) persist(ctx context.Context, v vault.Vault, key, salt []byte) error {
	blob, err := vault.Seal(v, key, salt)
	if err != nil {
		return err
	}
	data, err := blob.Encode()
	if err != nil {
		return err
	}
	if err := s.store.Put(ctx, vault.StorageName, data); err != nil {
		return fmt.Errorf("write vault: %w", err)
	}
	return nil
}

// Codes returns the current code for every account in vault order. It does
// not count as activity.
func (s *Service) Codes(now time.Time) ([]CodeView, error) {
	v, err := s.guard.Vault()
	if err != nil {
		return nil, err
	}
	remaining := totp.SecondsRemaining(now)
	views := make([]CodeView, 0, len(v))
	for _, a := range v {
		code, err := totp.CodeFromBase64(a.SharedSecret, now)
		if err != nil {
			return nil, fmt.Errorf("%w: account %s: %v", vault.ErrCorruptVault, a.AccountName, err)
		}
		views = append(views, CodeView{
			AccountName:      a.AccountName,
			SteamID:          a.SteamID,
			Code:             code,
			SecondsRemaining: remaining,
		})
	}
	return views, nil
}

// CurrentCodes is Codes keyed by account name. An account whose name is
// already taken is keyed as "name (steam id)", or "name #n" when that is
// taken too or the steam id is empty. Every account gets its own entry.
func (s *Service) CurrentCodes(now time.Time) (map[string]CodeView, error) {
	views, err := s.Codes(now)
	if err != nil {
		return nil, err
	}
	out := make(map[string]CodeView, len(views))
	for _, cv := range views {
		out[codeKey(out, cv)] = cv
	}
	return out, nil
}

func codeKey(taken map[string]CodeView, cv CodeView) string {
	key := cv.AccountName
	if _, ok := taken[key]; !ok {
		return key
	}
	if cv.SteamID != "" {
		key = fmt.Sprintf("%s (%s)", cv.AccountName, cv.SteamID)
		if _, ok := taken[key]; !ok {
			return key
		}
	}
	for n := 2; ; n++ {
		key = fmt.Sprintf("%s #%d", cv.AccountName, n)
		if _, ok := taken[key]; !ok {
			return key
		}
	}
}

// Accounts lists stored accounts without their secrets.
func (s *Service) Accounts() ([]AccountView, error) {
	v, err := s.guard.Vault()
	if err != nil {
		return nil, err
	}
	out := make([]AccountView, len(v))
	for i, a := range v {
		out[i] = AccountView{AccountName: a.AccountName, SteamID: a.SteamID}
	}
	return out, nil
}

// ActivityPing records user activity and extends an unlocked session.
func (s *Service) ActivityPing() {
	s.guard.Touch()
}

// Poll runs the inactivity check at now and reports whether it locked the
// session.
func (s *Service) Poll(now time.Time) bool {
	return s.guard.PollAt(now)
}

// Lock ends the session and drops the key.
func (s *Service) Lock() {
	s.guard.Lock(session.ReasonManual)
}

// Reset locks the session and erases the stored vault. It works from any
// state; confirming with the user is the caller's job.
func (s *Service) Reset(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.guard.Lock(session.ReasonReset)
	if err := s.store.Delete(ctx, vault.StorageName); err != nil {
		return fmt.Errorf("erase vault: %w", err)
	}
	s.log.Info(ctx, "vault reset")
	return nil
}

// State reports whether the session is locked.
func (s *Service) State() session.Status {
	return s.guard.Status()
}

// OnLock registers fn to run whenever the session locks.
func (s *Service) OnLock(fn func(session.Reason)) {
	s.guard.OnLock(fn)
}
