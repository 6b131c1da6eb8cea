package vault

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Hussein-Mazeh/guardvault/krypto"
)

// Encrypt seals v under key with a fresh random nonce. The blob carries no
// salt; use Seal for salted vaults.
func Encrypt(v Vault, key []byte) (EncryptedBlob, error) {
	return Seal(v, key, nil)
}

// Seal serializes v to its canonical JSON form and encrypts it with
// AES-256-GCM. A non-empty salt is stored on the blob and bound to the
// ciphertext as additional data.
//
// Every call draws its own nonce from crypto/rand; there is no shared nonce
// state, so concurrent calls cannot collide.
func Seal(v Vault, key, salt []byte) (EncryptedBlob, error) {
	if v == nil {
		v = Vault{}
	}
	plaintext, err := json.Marshal(v)
	if err != nil {
		return EncryptedBlob{}, fmt.Errorf("encode vault: %w", err)
	}
	defer krypto.Zeroize(plaintext)

	nonce, ciphertext, err := krypto.EncryptAESGCM(key, plaintext, aad(salt))
	if err != nil {
		return EncryptedBlob{}, fmt.Errorf("encrypt vault: %w", err)
	}

	blob := EncryptedBlob{IV: nonce, Data: ciphertext}
	if len(salt) > 0 {
		blob.Salt = append(ByteList(nil), salt...)
	}
	return blob, nil
}

// Decrypt authenticates and decrypts blob. No plaintext is returned unless the
// tag verifies. An authentic plaintext that is not a valid account list
// yields ErrCorruptVault.
func Decrypt(blob EncryptedBlob, key []byte) (Vault, error) {
	plaintext, err := krypto.DecryptAESGCM(key, blob.IV, blob.Data, aad(blob.Salt))
	if err != nil {
		if errors.Is(err, krypto.ErrOpen) {
			return nil, fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return nil, fmt.Errorf("decrypt vault: %w", err)
	}
	defer krypto.Zeroize(plaintext)

	if !bytes.HasPrefix(bytes.TrimSpace(plaintext), []byte("[")) {
		return nil, fmt.Errorf("%w: expected an account list", ErrCorruptVault)
	}
	var v Vault
	if err := json.Unmarshal(plaintext, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptVault, err)
	}
	return v, nil
}

func aad(salt []byte) []byte {
	if len(salt) == 0 {
		return nil
	}
	return salt
}
