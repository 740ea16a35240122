package security

import (
	"crypto/rand"
	"errors"
	"math/big"
)

// TemporaryPasswordAlphabet leaves out characters that are easy to misread
// when a password is copied from a terminal.
const TemporaryPasswordAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

const minTemporaryPasswordLength = 8

var (
	errNegativeLength = errors.New("length must be non-negative")
	errEmptyAlphabet  = errors.New("alphabet must not be empty")
)

// RandomString returns a cryptographically secure, unbiased string of the requested length.
func RandomString(length int, alphabet string) (string, error) {
	if length < 0 {
		return "", errNegativeLength
	}
	if length == 0 {
		return "", nil
	}
	if len(alphabet) == 0 {
		return "", errEmptyAlphabet
	}

	limit := big.NewInt(int64(len(alphabet)))
	value := make([]byte, length)
	for index := range value {
		position, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return "", err
		}
		value[index] = alphabet[position.Int64()]
	}

	return string(value), nil
}

// TemporaryPassword is handed out by the reset-password command. It always
// carries an upper-case letter, a lower-case letter and a digit so it passes
// the login password policy.
func TemporaryPassword(length int) (string, error) {
	if length < minTemporaryPasswordLength {
		length = minTemporaryPasswordLength
	}

	for {
		candidate, err := RandomString(length, TemporaryPasswordAlphabet)
		if err != nil {
			return "", err
		}
		if hasPasswordClasses(candidate) {
			return candidate, nil
		}
	}
}

func hasPasswordClasses(value string) bool {
	var upper, lower, digit bool
	for _, char := range value {
		switch {
		case char >= 'A' && char <= 'Z':
			upper = true
		case char >= 'a' && char <= 'z':
			lower = true
		case char >= '0' && char <= '9':
			digit = true
		}
	}
	return upper && lower && digit
}
