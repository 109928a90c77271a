package utils

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	// Azerbaijani numbers with optional +994 or leading-zero prefix
	phoneRegex      = regexp.MustCompile(`^(\+994|0)?[1-9]\d{8,}$`)
	regionCodeRegex = regexp.MustCompile(`^[A-Z]{2,10}$`)
	nonPhoneChars   = regexp.MustCompile(`[^\d+]`)
)

// IsValidEmail checks basic email shape and the 255-char cap
func IsValidEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" || len(email) > 255 {
		return false
	}
	return emailRegex.MatchString(email)
}

// IsValidPhone strips formatting characters before matching, so values
// like "+994 50 111-22-33" pass
func IsValidPhone(phone string) bool {
	cleaned := nonPhoneChars.ReplaceAllString(phone, "")
	return phoneRegex.MatchString(cleaned)
}

// IsValidRegionCode expects 2 to 10 uppercase letters
func IsValidRegionCode(code string) bool {
	return regionCodeRegex.MatchString(code)
}
