package services

import (
	"errors"
	"fmt"
	"unicode"
)

const (
	minPasswordRunes = 8
	// bcrypt ignores everything past 72 bytes.
	maxPasswordBytes = 72
)

var ErrWeakPassword = errors.New("weak password")

type passwordRule struct {
	hint  string
	match func(rune) bool
}

var passwordCharacterRules = []passwordRule{
	{hint: "an uppercase letter", match: unicode.IsUpper},
	{hint: "a lowercase letter", match: unicode.IsLower},
	{hint: "a digit", match: unicode.IsDigit},
}

// ValidatePasswordStrength returns ErrWeakPassword wrapped with the first
// unmet requirement.
func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordRunes {
		return fmt.Errorf("%w: use at least %d characters", ErrWeakPassword, minPasswordRunes)
	}
	if len(password) > maxPasswordBytes {
		return fmt.Errorf("%w: use at most %d bytes", ErrWeakPassword, maxPasswordBytes)
	}

	for _, rule := range passwordCharacterRules {
		if !containsRune(password, rule.match) {
			return fmt.Errorf("%w: include %s", ErrWeakPassword, rule.hint)
		}
	}
	return nil
}

func containsRune(value string, match func(rune) bool) bool {
	for _, char := range value {
		if match(char) {
			return true
		}
	}
	return false
}
