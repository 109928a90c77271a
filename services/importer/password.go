package importer

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode"
)

const generatedPasswordLength = 12

const (
	passwordUpper   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	passwordLower   = "abcdefghijkmnpqrstuvwxyz"
	passwordDigits  = "23456789"
	passwordSymbols = "!@#$%&*+-="
)

// CheckPasswordPolicy reports whether a supplied password is acceptable:
// at least 8 characters with an uppercase letter, a lowercase letter and
// a digit.
func CheckPasswordPolicy(password string) bool {
	if len(password) < 8 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// GeneratePassword produces a random policy-compliant password with all
// four character classes represented.
func GeneratePassword() (string, error) {
	classes := []string{passwordUpper, passwordLower, passwordDigits, passwordSymbols}
	all := passwordUpper + passwordLower + passwordDigits + passwordSymbols

	chars := make([]byte, 0, generatedPasswordLength)
	for _, class := range classes {
		c, err := randomChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < generatedPasswordLength {
		c, err := randomChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	// Fisher-Yates so the guaranteed class characters do not always lead
	for i := len(chars) - 1; i > 0; i-- {
		j, err := randomIndex(i + 1)
		if err != nil {
			return "", err
		}
		chars[i], chars[j] = chars[j], chars[i]
	}

	return string(chars), nil
}

func randomChar(charset string) (byte, error) {
	idx, err := randomIndex(len(charset))
	if err != nil {
		return 0, err
	}
	return charset[idx], nil
}

func randomIndex(n int) (int, error) {
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("random source failed: %w", err)
	}
	return int(v.Int64()), nil
}
