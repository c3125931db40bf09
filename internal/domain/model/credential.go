package model

import (
	"fmt"
	"strings"
	"unicode"

	"promo-platform/internal/domain"
)

const (
	minPasswordLength = 8
	maxPasswordLength = 60
	passwordSpecials  = "!@#$%^&*()_+-=[]{}|;:,.<>?/"
)

// Credential is the stored login secret of a principal. Hash is opaque to the
// domain; only the password hasher knows its format.
type Credential struct {
	Principal Principal
	Hash      string
}

// ValidatePassword enforces the sign-up password policy: 8..60 characters with
// at least one digit, one lower-case letter, one upper-case letter and one symbol.
func ValidatePassword(pw string) error {
	if l := len([]rune(pw)); l < minPasswordLength || l > maxPasswordLength {
		return fmt.Errorf("%w: password must be %d..%d characters", domain.ErrInvalidArgument, minPasswordLength, maxPasswordLength)
	}
	var digit, lower, upper, special bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	if !digit || !lower || !upper || !special {
		return fmt.Errorf("%w: password needs a digit, a lower-case letter, an upper-case letter and a symbol", domain.ErrInvalidArgument)
	}
	return nil
}
