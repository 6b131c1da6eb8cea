// Package store persists named opaque blobs. The vault only ever stores one
// blob (the encrypted account list), but backends are written against names so
// that a backup or a second profile can live next to it.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound is returned by Get when nothing is stored under the name.
	ErrNotFound = errors.New("blob not found")
	// ErrUnsupported is returned when a backend is unavailable on this platform.
	ErrUnsupported = errors.New("storage backend not supported on this platform")
)

// BlobStore reads and writes named blobs. Put must be atomic: after a crash a
// reader sees either the previous blob or the new one, never a mix.
type BlobStore interface {
	Get(ctx context.Context, name string) ([]byte, error)
	Put(ctx context.Context, name string, data []byte) error
	Delete(ctx context.Context, name string) error
	Close() error
}

// Backend names a BlobStore implementation.
type Backend string

const (
	BackendFile     Backend = "file"
	BackendSQLite   Backend = "sqlite"
	BackendKeychain Backend = "keychain"
	BackendMemory   Backend = "memory"
)

// ParseBackend validates a backend name. An empty name selects BackendFile.
func ParseBackend(name string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(name))); b {
	case "":
		return BackendFile, nil
	case BackendFile, BackendSQLite, BackendKeychain, BackendMemory:
		return b, nil
	default:
		return "", fmt.Errorf("unknown storage backend %q", name)
	}
}

// SQLiteFilename is the database file used by the sqlite backend.
const SQLiteFilename = "vault.db"

// Open returns the store for backend rooted at dir.
func Open(ctx context.Context, backend Backend, dir string) (BlobStore, error) {
	var (
		s   BlobStore
		err error
	)
	switch backend {
	case BackendFile, "":
		s, err = NewFileStore(dir)
	case BackendSQLite:
		s, err = OpenSQLite(ctx, filepath.Join(dir, SQLiteFilename))
	case BackendKeychain:
		s, err = NewKeychainStore(dir)
	case BackendMemory:
		s = NewMemoryStore()
	default:
		err = fmt.Errorf("unknown storage backend %q", backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func validName(name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid blob name %q", name)
	}
	return nil
}
