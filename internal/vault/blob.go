package vault

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Hussein-Mazeh/guardvault/krypto"
)

// StorageName is the storage entry the encrypted vault lives under.
const StorageName = "accounts"

// ByteList is a byte slice that encodes to JSON as an array of integers
// (0-255) instead of base64 text.
type ByteList []byte

// MarshalJSON writes b as [n, n, ...]. A nil list encodes as [].
func (b ByteList) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+len(b)*4)
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

// UnmarshalJSON reads an array of integers, rejecting values outside 0-255.
func (b *ByteList) UnmarshalJSON(data []byte) error {
	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make(ByteList, len(ints))
	for i, n := range ints {
		if n < 0 || n > 255 {
			return fmt.Errorf("byte %d out of range: %d", i, n)
		}
		out[i] = byte(n)
	}
	*b = out
	return nil
}

// EncryptedBlob is the persisted representation of a vault. Data carries the
// AES-GCM ciphertext with its tag appended. Salt is present only for vaults
// keyed with a per-vault salt; legacy vaults omit it.
type EncryptedBlob struct {
	IV   ByteList `json:"iv"`
	Data ByteList `json:"data"`
	Salt ByteList `json:"salt,omitempty"`
}

// Encode renders the blob as the JSON document stored under StorageName.
func (b EncryptedBlob) Encode() ([]byte, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("encode blob: %w", err)
	}
	return data, nil
}

// DecodeBlob parses a stored document. A document that cannot be parsed can
// never authenticate, so it is reported as ErrAuthentication.
func DecodeBlob(data []byte) (EncryptedBlob, error) {
	var b EncryptedBlob
	if err := json.Unmarshal(data, &b); err != nil {
		return EncryptedBlob{}, fmt.Errorf("%w: malformed blob: %v", ErrAuthentication, err)
	}
	if len(b.IV) != krypto.NonceSize {
		return EncryptedBlob{}, fmt.Errorf("%w: iv must be %d bytes, got %d", ErrAuthentication, krypto.NonceSize, len(b.IV))
	}
	return b, nil
}
