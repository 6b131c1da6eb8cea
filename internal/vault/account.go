package vault

import (
	"fmt"
	"strings"
)

// Account is one stored authenticator record.
type Account struct {
	AccountName  string `json:"account_name"`
	SharedSecret string `json:"shared_secret"`
	SteamID      string `json:"steam_id"`
}

// Validate checks the fields every stored account must carry.
func (a Account) Validate() error {
	if strings.TrimSpace(a.AccountName) == "" {
		return fmt.Errorf("%w: account name is required", ErrInvalidAccount)
	}
	if a.SharedSecret == "" {
		return fmt.Errorf("%w: shared secret is required", ErrInvalidAccount)
	}
	return nil
}

// String never includes the shared secret.
func (a Account) String() string {
	if a.SteamID == "" {
		return a.AccountName
	}
	return fmt.Sprintf("%s (%s)", a.AccountName, a.SteamID)
}

// Vault is the decrypted, ordered account list. Insertion order is kept for
// stable display.
type Vault []Account

// Clone returns a copy that shares no backing array with v.
func (v Vault) Clone() Vault {
	out := make(Vault, len(v))
	copy(out, v)
	return out
}

// Find returns the index of the account with the given non-empty steam id.
func (v Vault) Find(steamID string) (int, bool) {
	if steamID == "" {
		return -1, false
	}
	for i, a := range v {
		if a.SteamID == steamID {
			return i, true
		}
	}
	return -1, false
}

// Add returns a new vault with a appended. v itself is never modified, so a
// failed persist leaves the caller's vault intact.
func (v Vault) Add(a Account) (Vault, error) {
	if err := a.Validate(); err != nil {
		return v, err
	}
	if _, ok := v.Find(a.SteamID); ok {
		return v, fmt.Errorf("%w: steam id %s", ErrDuplicateAccount, a.SteamID)
	}
	out := make(Vault, len(v), len(v)+1)
	copy(out, v)
	return append(out, a), nil
}

// Remove returns a new vault without the account carrying steamID.
func (v Vault) Remove(steamID string) (Vault, bool) {
	i, ok := v.Find(steamID)
	if !ok {
		return v, false
	}
	out := make(Vault, 0, len(v)-1)
	out = append(out, v[:i]...)
	return append(out, v[i+1:]...), true
}

// Names lists account names in vault order.
func (v Vault) Names() []string {
	names := make([]string, len(v))
	for i, a := range v {
		names[i] = a.AccountName
	}
	return names
}
