package totp

import (
	"strings"
	"testing"
	"time"
)

var rfcSecret = []byte("12345678901234567890")

func TestTruncateRFC4226Vectors(t *testing.T) {
	// RFC 4226 appendix D, "Truncated" decimal column.
	want := []uint32{1284755224, 1094287082, 137359152, 1726969429, 1640338314}
	for counter, w := range want {
		if got := Truncate(hmacSHA1(rfcSecret, uint64(counter))); got != w {
			t.Fatalf("counter %d: expected %d, got %d", counter, w, got)
		}
	}
}

func TestCodeKnownValues(t *testing.T) {
	cases := []struct {
		unix int64
		want string
	}{
		{0, "KK5J5"},
		{29, "KK5J5"},
		{30, "SWDQ4"},
		{1111111109, "SZ4ZF"},
		{1234567890, "WMMTZ"},
		{2000000000, "DRBB6"},
	}
	for _, tc := range cases {
		if got := Code(rfcSecret, time.Unix(tc.unix, 0)); got != tc.want {
			t.Fatalf("t=%d: expected %s, got %s", tc.unix, tc.want, got)
		}
	}
}

func TestCodeAlphabetAndLength(t *testing.T) {
	secret := []byte("another shared secret")
	start := time.Unix(1700000000, 0)
	for i := 0; i < 2000; i++ {
		code := Code(secret, start.Add(time.Duration(i)*Step))
		if len(code) != CodeLength {
			t.Fatalf("expected %d characters, got %q", CodeLength, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(Alphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
	}
}

func TestCodeStableWithinWindow(t *testing.T) {
	windowStart := time.Unix(1700000010, 0) // 1700000010 is a multiple of 30
	first := Code(rfcSecret, windowStart)
	for s := 1; s < 30; s++ {
		if got := Code(rfcSecret, windowStart.Add(time.Duration(s)*time.Second)); got != first {
			t.Fatalf("code changed inside the window at +%ds: %s != %s", s, got, first)
		}
	}

	changed := 0
	for w := 1; w <= 10; w++ {
		if Code(rfcSecret, windowStart.Add(time.Duration(w)*Step)) != Code(rfcSecret, windowStart.Add(time.Duration(w-1)*Step)) {
			changed++
		}
	}
	if changed != 10 {
		t.Fatalf("expected adjacent windows to differ, only %d of 10 did", changed)
	}
}

func TestSecondsRemaining(t *testing.T) {
	cases := map[int64]int{0: 30, 1: 29, 29: 1, 30: 30, 1700000025: 15}
	for unix, want := range cases {
		if got := SecondsRemaining(time.Unix(unix, 0)); got != want {
			t.Fatalf("t=%d: expected %d, got %d", unix, want, got)
		}
	}
}

func TestCodeFromBase64(t *testing.T) {
	got, err := CodeFromBase64("MTIzNDU2Nzg5MDEyMzQ1Njc4OTA=", time.Unix(30, 0))
	if err != nil {
		t.Fatalf("CodeFromBase64: %v", err)
	}
	if got != "SWDQ4" {
		t.Fatalf("expected SWDQ4, got %s", got)
	}

	if _, err := CodeFromBase64("%%%not-base64", time.Unix(0, 0)); err == nil {
		t.Fatalf("expected a decode error")
	}
}
