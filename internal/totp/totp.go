// Package totp derives the five-character Steam Guard codes from a shared
// secret and the current time.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"strings"
	"time"
)

const (
	// Step is the lifetime of one code.
	Step = 30 * time.Second
	// CodeLength is the number of characters in a code.
	CodeLength = 5
	// Alphabet excludes glyphs that are easy to misread (0/O, 1/I, A, E...).
	Alphabet = "23456BCDFGHJKMNPQRSTUVWXYZ"
)

// Counter returns the time-step counter for t.
func Counter(t time.Time) uint64 {
	return uint64(t.Unix()) / uint64(Step/time.Second)
}

// Code returns the code for secret at time now.
func Code(secret []byte, now time.Time) string {
	return CodeAt(secret, Counter(now))
}

// CodeAt returns the code for an explicit counter value.
func CodeAt(secret []byte, counter uint64) string {
	value := Truncate(hmacSHA1(secret, counter))

	var b strings.Builder
	b.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		b.WriteByte(Alphabet[value%uint32(len(Alphabet))])
		value /= uint32(len(Alphabet))
	}
	return b.String()
}

// Truncate applies HOTP dynamic truncation to a 20-byte HMAC-SHA1 digest and
// returns the 31-bit result.
func Truncate(mac []byte) uint32 {
	offset := mac[len(mac)-1] & 0x0F
	return binary.BigEndian.Uint32(mac[offset:offset+4]) & 0x7FFFFFFF
}

// SecondsRemaining reports how long the code valid at now stays valid.
func SecondsRemaining(now time.Time) int {
	step := int64(Step / time.Second)
	return int(step - now.Unix()%step)
}

// DecodeSecret decodes a base64 shared secret as stored in the vault.
func DecodeSecret(secret string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(secret))
	if err != nil {
		return nil, fmt.Errorf("decode shared secret: %w", err)
	}
	return raw, nil
}

// CodeFromBase64 decodes secret and returns its code at now.
func CodeFromBase64(secret string, now time.Time) (string, error) {
	raw, err := DecodeSecret(secret)
	if err != nil {
		return "", err
	}
	defer zero(raw)
	return Code(raw, now), nil
}

func hmacSHA1(secret []byte, counter uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], counter)

	mac := hmac.New(sha1.New, secret)
	mac.Write(buf[:])
	return mac.Sum(nil)
}

func zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
