// Package importer validates authenticator export documents (.maFile) and
// turns them into vault accounts.
package importer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/Hussein-Mazeh/guardvault/internal/totp"
	"github.com/Hussein-Mazeh/guardvault/internal/vault"
)

// ErrImport is returned for documents that cannot be imported. The vault is
// never touched when it is returned.
var ErrImport = errors.New("invalid import document")

// maxDocumentSize bounds what ReadFile will load; real documents are a few KB.
const maxDocumentSize = 1 << 20

// Document is the subset of an .maFile the vault needs. Unknown fields are
// ignored.
type Document struct {
	AccountName  string   `json:"account_name"`
	SharedSecret string   `json:"shared_secret"`
	Session      *session `json:"Session"`
}

type session struct {
	SteamID steamID `json:"SteamID"`
}

// steamID accepts both the string and the numeric form exporters use.
type steamID string

func (s *steamID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*s = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*s = steamID(strings.TrimSpace(str))
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("SteamID must be a string or an integer: %w", err)
	}
	if _, err := strconv.ParseUint(n.String(), 10, 64); err != nil {
		return fmt.Errorf("SteamID must be an unsigned integer: %w", err)
	}
	*s = steamID(n.String())
	return nil
}

// Parse validates data and returns the account it describes. The three
// required fields are account_name, shared_secret (valid base64) and
// Session.SteamID.
func Parse(data []byte) (vault.Account, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return vault.Account{}, fmt.Errorf("%w: %v", ErrImport, err)
	}
	return doc.Account()
}

// Account converts a decoded document, enforcing the required fields.
func (d Document) Account() (vault.Account, error) {
	name := strings.TrimSpace(d.AccountName)
	if name == "" {
		return vault.Account{}, fmt.Errorf("%w: missing account_name", ErrImport)
	}
	if d.SharedSecret == "" {
		return vault.Account{}, fmt.Errorf("%w: missing shared_secret", ErrImport)
	}
	if _, err := totp.DecodeSecret(d.SharedSecret); err != nil {
		return vault.Account{}, fmt.Errorf("%w: shared_secret is not base64", ErrImport)
	}
	if d.Session == nil || d.Session.SteamID == "" {
		return vault.Account{}, fmt.Errorf("%w: missing Session.SteamID", ErrImport)
	}

	return vault.Account{
		AccountName:  name,
		SharedSecret: d.SharedSecret,
		SteamID:      string(d.Session.SteamID),
	}, nil
}

// Load reads the raw document at path, refusing files too large to be a
// real export.
func Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat import file: %w", err)
	}
	if info.Size() > maxDocumentSize {
		return nil, fmt.Errorf("%w: file larger than %d bytes", ErrImport, maxDocumentSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read import file: %w", err)
	}
	return data, nil
}

// ReadFile loads and parses the document at path.
func ReadFile(path string) (vault.Account, error) {
	data, err := Load(path)
	if err != nil {
		return vault.Account{}, err
	}
	return Parse(data)
}
