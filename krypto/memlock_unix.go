//go:build linux || darwin

package krypto

import "golang.org/x/sys/unix"

// LockMemory asks the kernel to keep b out of swap. Failures (for example
// RLIMIT_MEMLOCK being too low) are reported but are not fatal to callers.
func LockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Mlock(b)
}

// UnlockMemory releases a lock taken by LockMemory.
func UnlockMemory(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return unix.Munlock(b)
}

// DisableCoreDumps sets RLIMIT_CORE to zero so a crash cannot write the key
// to disk.
func DisableCoreDumps() error {
	rlim := unix.Rlimit{Cur: 0, Max: 0}
	return unix.Setrlimit(unix.RLIMIT_CORE, &rlim)
}
