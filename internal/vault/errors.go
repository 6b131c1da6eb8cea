package vault

import "errors"

var (
	// ErrAuthentication means the blob could not be authenticated under the
	// supplied key: a wrong password, or a corrupted or tampered blob.
	ErrAuthentication = errors.New("vault authentication failed")

	// ErrCorruptVault means the blob authenticated but its plaintext is not a
	// valid account list. The vault content is lost.
	ErrCorruptVault = errors.New("vault contents are corrupt")

	// ErrDuplicateAccount is returned when an account with the same steam id
	// is already stored.
	ErrDuplicateAccount = errors.New("account already added")

	// ErrInvalidAccount is returned for accounts missing required fields.
	ErrInvalidAccount = errors.New("invalid account")
)
