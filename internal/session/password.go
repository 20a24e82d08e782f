package session

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooShort is returned by HashPassword, and so by CreateAccount,
// for a password under minPasswordLength bytes.
var ErrPasswordTooShort = fmt.Errorf("password must be at least %d characters", minPasswordLength)

const (
	bcryptCost        = 12
	minPasswordLength = 8
)

// HashPassword returns the bcrypt hash stored on an admin Account.
func HashPassword(password string) (string, error) {
	if len(password) < minPasswordLength {
		return "", ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches an Account's hash. A
// malformed hash never matches.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
