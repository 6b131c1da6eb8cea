package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/nbutton23/zxcvbn-go"
)

const specialChars = "!\"#$%&'()*+,-./:;<=>?@[\\]^_{|}~`"

// ErrWeakPassword is wrapped by every policy violation.
var ErrWeakPassword = errors.New("password does not meet policy requirements")

// ValidateOptions selects the master password rules. The zero value only
// rejects the empty password.
type ValidateOptions struct {
	MinLength      int
	RequireUpper   bool
	RequireDigit   bool
	RequireSpecial bool
	// MinScore is the lowest accepted zxcvbn score (0-4). Zero disables the
	// strength estimate.
	MinScore int
}

// DefaultValidateOptions returns the policy used when nothing is configured.
func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{}
}

// StrictValidateOptions returns the policy a shared or exported vault should use.
func StrictValidateOptions() ValidateOptions {
	return ValidateOptions{
		MinLength:      12,
		RequireUpper:   true,
		RequireDigit:   true,
		RequireSpecial: true,
		MinScore:       3,
	}
}

// ValidateMasterPassword applies the master password policy requirements.
func ValidateMasterPassword(pw string, opts ValidateOptions) error {
	if pw == "" {
		return fmt.Errorf("%w: password must not be empty", ErrWeakPassword)
	}
	if opts.MinLength > 0 && len([]rune(pw)) < opts.MinLength {
		return fmt.Errorf("%w: password must be at least %d characters long", ErrWeakPassword, opts.MinLength)
	}
	if opts.RequireUpper && !hasUpper(pw) {
		return fmt.Errorf("%w: password must include an uppercase letter", ErrWeakPassword)
	}
	if opts.RequireDigit && !hasDigit(pw) {
		return fmt.Errorf("%w: password must include a digit", ErrWeakPassword)
	}
	if opts.RequireSpecial && !hasSpecial(pw) {
		return fmt.Errorf("%w: password must include a special character", ErrWeakPassword)
	}
	if opts.MinScore > 0 {
		if score := Strength(pw); score < opts.MinScore {
			return fmt.Errorf("%w: password is too guessable (score %d, need %d)", ErrWeakPassword, score, opts.MinScore)
		}
	}
	return nil
}

// Strength returns the zxcvbn score of pw, from 0 (trivially guessable) to 4.
func Strength(pw string) int {
	return zxcvbn.PasswordStrength(pw, nil).Score
}

func hasUpper(s string) bool {
	for _, r := range s {
		if unicode.IsUpper(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func hasSpecial(s string) bool {
	return strings.ContainsAny(s, specialChars)
}
