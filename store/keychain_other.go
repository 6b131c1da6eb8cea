//go:build !darwin

package store

import "context"

// KeychainStore is only available on macOS.
type KeychainStore struct{}

// NewKeychainStore always fails with ErrUnsupported off macOS.
func NewKeychainStore(string) (*KeychainStore, error) {
	return nil, ErrUnsupported
}

func (*KeychainStore) Get(context.Context, string) ([]byte, error) { return nil, ErrUnsupported }
func (*KeychainStore) Put(context.Context, string, []byte) error   { return ErrUnsupported }
func (*KeychainStore) Delete(context.Context, string) error        { return ErrUnsupported }
func (*KeychainStore) Close() error                                { return nil }
