package krypto_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/Hussein-Mazeh/guardvault/krypto"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, krypto.KeyLen)
}

func TestAESGCMRoundTrip(t *testing.T) {
	key := testKey(7)
	nonce, ct, err := krypto.EncryptAESGCM(key, []byte("payload"), nil)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if len(nonce) != krypto.NonceSize {
		t.Fatalf("expected %d-byte nonce, got %d", krypto.NonceSize, len(nonce))
	}

	pt, err := krypto.DecryptAESGCM(key, nonce, ct, nil)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if string(pt) != "payload" {
		t.Fatalf("unexpected plaintext %q", pt)
	}
}

func TestAESGCMRejects(t *testing.T) {
	key := testKey(7)
	nonce, ct, err := krypto.EncryptAESGCM(key, []byte("payload"), nil)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}

	cases := []struct {
		name  string
		key   []byte
		nonce []byte
		ct    []byte
	}{
		{"wrong key", testKey(8), nonce, ct},
		{"short nonce", key, nonce[:8], ct},
		{"truncated", key, nonce, ct[:4]},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := krypto.DecryptAESGCM(tc.key, tc.nonce, tc.ct, nil); !errors.Is(err, krypto.ErrOpen) {
				t.Fatalf("expected ErrOpen, got %v", err)
			}
		})
	}
}

func TestAESGCMKeySize(t *testing.T) {
	if _, _, err := krypto.EncryptAESGCM(make([]byte, 16), []byte("x"), nil); !errors.Is(err, krypto.ErrKeySize) {
		t.Fatalf("expected ErrKeySize, got %v", err)
	}
}
