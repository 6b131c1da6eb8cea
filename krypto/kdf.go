package krypto

import (
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KeyLen is the size of every derived vault key (AES-256).
	KeyLen = 32
	// PBKDF2Iterations slows down offline guessing of the master password.
	PBKDF2Iterations = 100_000
	// SaltLengthBytes is the size of a per-vault random salt.
	SaltLengthBytes = 16
)

// LegacySalt is the fixed salt used by vaults that were created before
// per-vault salts existed. Every vault without a stored salt derives with it.
var LegacySalt = []byte("steam-guard")

// PBKDF2Params captures the tunable parameters of the password KDF.
type PBKDF2Params struct {
	Iterations int
	KeyLen     int
}

// DefaultPBKDF2Params returns the parameters every vault is derived with.
func DefaultPBKDF2Params() PBKDF2Params {
	return PBKDF2Params{
		Iterations: PBKDF2Iterations,
		KeyLen:     KeyLen,
	}
}

// DeriveKey turns a password into a 256-bit key using PBKDF2-HMAC-SHA256 and
// the fixed legacy salt. The result is deterministic for a given password.
//
// An empty password is accepted here; rejecting it is the caller's policy.
func DeriveKey(password []byte) []byte {
	return DeriveKeyWithSalt(password, LegacySalt)
}

// DeriveKeyWithSalt is DeriveKey with a caller-supplied salt. A nil or empty
// salt falls back to LegacySalt.
func DeriveKeyWithSalt(password, salt []byte) []byte {
	if len(salt) == 0 {
		salt = LegacySalt
	}
	p := DefaultPBKDF2Params()
	return pbkdf2.Key(password, salt, p.Iterations, p.KeyLen, sha256.New)
}

// NewRandomSalt returns a cryptographically secure random salt of length n
// bytes. Non-positive n selects SaltLengthBytes.
func NewRandomSalt(n int) ([]byte, error) {
	if n <= 0 {
		n = SaltLengthBytes
	}
	salt := make([]byte, n)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}
