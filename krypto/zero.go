package krypto

// Zeroize overwrites b with zeros in place.
//
// The Go runtime may have copied the bytes elsewhere (slice growth, GC
// moves of escaped values), so this is best-effort erasure only.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// CloneKey returns an independent copy of key.
func CloneKey(key []byte) []byte {
	if key == nil {
		return nil
	}
	out := make([]byte, len(key))
	copy(out, key)
	return out
}
