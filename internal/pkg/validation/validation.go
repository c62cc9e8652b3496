package validation

import (
	"regexp"
	"unicode"
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Name parts: letters, spaces, hyphens, apostrophes only.
var nameRe = regexp.MustCompile(`^[A-Za-z\s\-']+$`)

// VIN: 17 chars, no I/O/Q.
var vinRe = regexp.MustCompile(`^[A-HJ-NPR-Z0-9]{17}$`)

// License plate: uppercase letters, digits, spaces and hyphens.
var plateRe = regexp.MustCompile(`^[A-Z0-9][A-Z0-9 \-]{1,18}[A-Z0-9]$`)

func IsValidEmail(email string) bool {
	return emailRe.MatchString(email)
}

// IsValidPassword requires:
// - at least 8 characters
// - contains at least one letter
// - contains at least one number
// - contains at least one special character
func IsValidPassword(password string) bool {
	if len(password) < 8 {
		return false
	}
	hasLetter, hasDigit, hasSpecial := false, false, false
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}
	return hasLetter && hasDigit && hasSpecial
}

func IsValidName(name string) bool {
	return name != "" && nameRe.MatchString(name)
}

func IsValidVIN(vin string) bool {
	return vinRe.MatchString(vin)
}

func IsValidLicensePlate(plate string) bool {
	return plateRe.MatchString(plate)
}
