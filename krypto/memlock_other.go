//go:build !linux && !darwin

package krypto

// LockMemory is a no-op on platforms without mlock.
func LockMemory(b []byte) error { return nil }

// UnlockMemory is a no-op on platforms without mlock.
func UnlockMemory(b []byte) error { return nil }

// DisableCoreDumps is a no-op where core limits cannot be set.
func DisableCoreDumps() error { return nil }
