package krypto_test

import (
	"bytes"
	"encoding/hex"
	"testing"

	"github.com/Hussein-Mazeh/guardvault/krypto"
)

func TestDeriveKeyDeterministic(t *testing.T) {
	k1 := krypto.DeriveKey([]byte("hunter2"))
	k2 := krypto.DeriveKey([]byte("hunter2"))

	if !bytes.Equal(k1, k2) {
		t.Fatalf("expected identical keys for identical passwords")
	}
	if len(k1) != krypto.KeyLen {
		t.Fatalf("expected %d-byte key, got %d", krypto.KeyLen, len(k1))
	}
}

func TestDeriveKeyKnownVector(t *testing.T) {
	// PBKDF2-HMAC-SHA256, salt "steam-guard", 100000 iterations.
	const want = "c8b3ecb2f8c659a28a5360f37f09022ef1bf2b907162f36db99a91dc1b2b2860"

	got := hex.EncodeToString(krypto.DeriveKey([]byte("hunter2")))
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestDeriveKeyWithSalt(t *testing.T) {
	pw := []byte("hunter2")

	legacy := krypto.DeriveKey(pw)
	if !bytes.Equal(krypto.DeriveKeyWithSalt(pw, nil), legacy) {
		t.Fatalf("empty salt must fall back to the legacy salt")
	}

	salt, err := krypto.NewRandomSalt(0)
	if err != nil {
		t.Fatalf("NewRandomSalt: %v", err)
	}
	if len(salt) != krypto.SaltLengthBytes {
		t.Fatalf("expected %d-byte salt, got %d", krypto.SaltLengthBytes, len(salt))
	}
	if bytes.Equal(krypto.DeriveKeyWithSalt(pw, salt), legacy) {
		t.Fatalf("random salt produced the legacy key")
	}
}

func TestDeriveKeyAcceptsEmptyPassword(t *testing.T) {
	if got := krypto.DeriveKey(nil); len(got) != krypto.KeyLen {
		t.Fatalf("expected a %d-byte key for an empty password, got %d bytes", krypto.KeyLen, len(got))
	}
}
