package vault_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Hussein-Mazeh/guardvault/internal/vault"
	"github.com/Hussein-Mazeh/guardvault/krypto"
)

func sampleVault() vault.Vault {
	return vault.Vault{
		{AccountName: "alice", SharedSecret: "MTIzNDU2Nzg5MDEyMzQ1Njc4OTA=", SteamID: "76561198000000001"},
		{AccountName: "bob", SharedSecret: "c2Vjb25kLXNlY3JldA==", SteamID: "76561198000000002"},
		{AccountName: "карина", SharedSecret: "dGhpcmQ=", SteamID: ""},
	}
}

func key(b byte) []byte {
	return bytes.Repeat([]byte{b}, krypto.KeyLen)
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cases := map[string]vault.Vault{
		"empty":  {},
		"single": sampleVault()[:1],
		"many":   sampleVault(),
	}
	for name, v := range cases {
		t.Run(name, func(t *testing.T) {
			blob, err := vault.Encrypt(v, key(1))
			if err != nil {
				t.Fatalf("Encrypt: %v", err)
			}
			got, err := vault.Decrypt(blob, key(1))
			if err != nil {
				t.Fatalf("Decrypt: %v", err)
			}
			if diff := cmp.Diff(v, got); diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecryptDetectsEveryFlippedBit(t *testing.T) {
	blob, err := vault.Encrypt(sampleVault(), key(1))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}

	for i := range blob.Data {
		for bit := 0; bit < 8; bit++ {
			tampered := vault.EncryptedBlob{
				IV:   blob.IV,
				Data: append(vault.ByteList(nil), blob.Data...),
			}
			tampered.Data[i] ^= 1 << bit

			got, err := vault.Decrypt(tampered, key(1))
			if !errors.Is(err, vault.ErrAuthentication) {
				t.Fatalf("byte %d bit %d: expected ErrAuthentication, got %v", i, bit, err)
			}
			if got != nil {
				t.Fatalf("byte %d bit %d: plaintext returned on failure", i, bit)
			}
		}
	}
}

func TestDecryptWrongKey(t *testing.T) {
	blob, err := vault.Encrypt(sampleVault(), key(1))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := vault.Decrypt(blob, key(2)); !errors.Is(err, vault.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}

func TestEncryptNeverRepeatsNonce(t *testing.T) {
	const n = 1000
	v := sampleVault()

	var (
		mu   sync.Mutex
		seen = make(map[string]struct{}, n)
		wg   sync.WaitGroup
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			blob, err := vault.Encrypt(v, key(1))
			if err != nil {
				t.Errorf("Encrypt: %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if _, dup := seen[string(blob.IV)]; dup {
				t.Errorf("nonce repeated: %x", []byte(blob.IV))
			}
			seen[string(blob.IV)] = struct{}{}
		}()
	}
	wg.Wait()

	if len(seen) != n {
		t.Fatalf("expected %d distinct nonces, got %d", n, len(seen))
	}
}

func TestDecryptCorruptPlaintext(t *testing.T) {
	for _, plaintext := range []string{`{"not":"a list"}`, `null`, `[{"account_name": 5}]`, `garbage`} {
		nonce, ct, err := krypto.EncryptAESGCM(key(1), []byte(plaintext), nil)
		if err != nil {
			t.Fatalf("EncryptAESGCM: %v", err)
		}
		_, err = vault.Decrypt(vault.EncryptedBlob{IV: nonce, Data: ct}, key(1))
		if !errors.Is(err, vault.ErrCorruptVault) {
			t.Fatalf("%s: expected ErrCorruptVault, got %v", plaintext, err)
		}
	}
}

func TestSaltIsBoundToCiphertext(t *testing.T) {
	salt := []byte("0123456789abcdef")
	blob, err := vault.Seal(sampleVault(), key(1), salt)
	if err != nil {
		t.Fatalf("Seal: %v", err)
	}
	if !bytes.Equal(blob.Salt, salt) {
		t.Fatalf("salt not stored on blob")
	}
	if _, err := vault.Decrypt(blob, key(1)); err != nil {
		t.Fatalf("Decrypt: %v", err)
	}

	blob.Salt[0] ^= 0xff
	if _, err := vault.Decrypt(blob, key(1)); !errors.Is(err, vault.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication after salt change, got %v", err)
	}
}

func TestBlobWireFormat(t *testing.T) {
	blob, err := vault.Encrypt(sampleVault()[:1], key(1))
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	data, err := blob.Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	var raw map[string][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("stored document is not {key: [ints]}: %v\n%s", err, data)
	}
	if len(raw["iv"]) != krypto.NonceSize {
		t.Fatalf("expected %d iv bytes, got %d", krypto.NonceSize, len(raw["iv"]))
	}
	if _, ok := raw["salt"]; ok {
		t.Fatalf("unsalted blob must not carry a salt field")
	}
	if strings.Contains(string(data), "alice") {
		t.Fatalf("plaintext leaked into stored document")
	}

	decoded, err := vault.DecodeBlob(data)
	if err != nil {
		t.Fatalf("DecodeBlob: %v", err)
	}
	if diff := cmp.Diff(blob, decoded); diff != "" {
		t.Fatalf("decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeBlobRejectsMalformed(t *testing.T) {
	docs := []string{
		`not json`,
		`{"iv":[1,2,3],"data":[1]}`,
		`{"iv":[0,0,0,0,0,0,0,0,0,0,0,256],"data":[1]}`,
	}
	for _, doc := range docs {
		if _, err := vault.DecodeBlob([]byte(doc)); !errors.Is(err, vault.ErrAuthentication) {
			t.Fatalf("%s: expected ErrAuthentication, got %v", doc, err)
		}
	}
}
