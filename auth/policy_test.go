package auth

import (
	"errors"
	"testing"
)

func TestValidateMasterPasswordDefaults(t *testing.T) {
	if err := ValidateMasterPassword("", DefaultValidateOptions()); !errors.Is(err, ErrWeakPassword) {
		t.Fatalf("expected ErrWeakPassword for empty password, got %v", err)
	}
	if err := ValidateMasterPassword("a", DefaultValidateOptions()); err != nil {
		t.Fatalf("default policy must accept any non-empty password: %v", err)
	}
}

func TestValidateMasterPasswordStrict(t *testing.T) {
	opts := StrictValidateOptions()
	cases := []struct {
		name string
		pw   string
		ok   bool
	}{
		{"too short", "Ab1!", false},
		{"no upper", "correct-horse-battery-9", false},
		{"no digit", "Correct-Horse-Battery-Staple", false},
		{"no special", "CorrectHorseBattery9Staple", false},
		{"guessable", "Password123!", false},
		{"strong", "Tr0ub4dor&3-correct-horse-battery", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateMasterPassword(tc.pw, opts)
			if tc.ok && err != nil {
				t.Fatalf("expected %q to pass, got %v", tc.pw, err)
			}
			if !tc.ok && !errors.Is(err, ErrWeakPassword) {
				t.Fatalf("expected %q to fail with ErrWeakPassword, got %v", tc.pw, err)
			}
		})
	}
}

func TestStrengthOrdersPasswords(t *testing.T) {
	weak := Strength("password")
	strong := Strength("Tr0ub4dor&3-correct-horse-battery")
	if weak >= strong {
		t.Fatalf("expected weak (%d) < strong (%d)", weak, strong)
	}
	if weak < 0 || strong > 4 {
		t.Fatalf("scores out of range: %d, %d", weak, strong)
	}
}
