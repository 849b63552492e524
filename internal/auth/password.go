package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is the shortest librarian or patron password accepted.
	MinPasswordLength = 6
	// MaxPasswordBytes is bcrypt's input limit; longer passwords are refused
	// rather than silently cut.
	MaxPasswordBytes = 72
)

var (
	// ErrInvalidPassword means the password does not match the stored account.
	ErrInvalidPassword  = errors.New("password does not match account")
	ErrPasswordTooShort = fmt.Errorf("account password must be at least %d characters", MinPasswordLength)
	ErrPasswordTooLong  = fmt.Errorf("account password must be at most %d bytes", MaxPasswordBytes)
)

// HashPassword validates an account password and returns its bcrypt hash.
func HashPassword(password string, cost int) (string, error) {
	switch {
	case len(password) < MinPasswordLength:
		return "", ErrPasswordTooShort
	case len(password) > MaxPasswordBytes:
		return "", ErrPasswordTooLong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash account password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports ErrInvalidPassword for a wrong password. Any other
// error means the stored hash itself is unusable.
func CheckPassword(password, hash string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return ErrInvalidPassword
	default:
		return fmt.Errorf("stored password hash: %w", err)
	}
}

// GenerateCSRFKey returns 32 random bytes, hex encoded, for signing form tokens
// when no secret is configured.
func GenerateCSRFKey() (string, error) {
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("read random CSRF key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
