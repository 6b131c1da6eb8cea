//go:build darwin

package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	keychain "github.com/keybase/go-keychain"
)

const (
	keychainService = "com.guardvault.vault"
	keychainLabel   = "GuardVault encrypted vault"
)

// KeychainStore keeps blobs as generic-password items in the macOS login
// keychain. Items are device-local and readable only while the device is
// unlocked.
type KeychainStore struct {
	account string
}

// NewKeychainStore binds the store to a vault directory. The directory's
// absolute, symlink-resolved path scopes every item, so two vault
// directories never share entries.
func NewKeychainStore(dir string) (*KeychainStore, error) {
	account, err := accountForDirectory(dir)
	if err != nil {
		return nil, err
	}
	return &KeychainStore{account: account}, nil
}

func accountForDirectory(directory string) (string, error) {
	directory = strings.TrimSpace(directory)
	if directory == "" {
		return "", errors.New("vault directory is required")
	}

	absolutePath, err := filepath.Abs(directory)
	if err != nil {
		return "", fmt.Errorf("resolve directory: %w", err)
	}
	if err := os.MkdirAll(absolutePath, 0o700); err != nil {
		return "", fmt.Errorf("create vault directory: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(absolutePath); err == nil && resolved != "" {
		absolutePath = resolved
	}
	return absolutePath, nil
}

func (s *KeychainStore) itemAccount(name string) string {
	return s.account + "#" + name
}

func (s *KeychainStore) Get(_ context.Context, name string) ([]byte, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	data, err := keychain.GetGenericPassword(keychainService, s.itemAccount(name), "", "")
	if err != nil {
		if err == keychain.ErrorItemNotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read %s from keychain: %w", name, err)
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

// Put adds the item, or updates its data in place when it already exists.
// The keychain applies either operation atomically.
func (s *KeychainStore) Put(_ context.Context, name string, data []byte) error {
	if err := validName(name); err != nil {
		return err
	}
	account := s.itemAccount(name)

	item := keychain.NewGenericPassword(keychainService, account, keychainLabel, data, "")
	item.SetSynchronizable(keychain.SynchronizableNo)
	item.SetAccessible(keychain.AccessibleWhenUnlockedThisDeviceOnly)

	if err := keychain.AddItem(item); err != nil {
		if err != keychain.ErrorDuplicateItem {
			return fmt.Errorf("store %s in keychain: %w", name, err)
		}
		query := keychain.NewGenericPassword(keychainService, account, "", nil, "")
		update := keychain.NewItem()
		update.SetData(data)
		if err := keychain.UpdateItem(query, update); err != nil {
			return fmt.Errorf("update %s in keychain: %w", name, err)
		}
	}
	return nil
}

func (s *KeychainStore) Delete(_ context.Context, name string) error {
	if err := validName(name); err != nil {
		return err
	}
	item := keychain.NewGenericPassword(keychainService, s.itemAccount(name), "", nil, "")
	if err := keychain.DeleteItem(item); err != nil && err != keychain.ErrorItemNotFound {
		return fmt.Errorf("delete %s from keychain: %w", name, err)
	}
	return nil
}

func (s *KeychainStore) Close() error { return nil }
