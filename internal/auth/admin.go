package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any failed admin login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminCredentials verifies the single configured admin account.
type AdminCredentials struct {
	username     string
	passwordHash []byte
}

// NewAdminCredentials creates a verifier from a username and bcrypt hash.
// With an empty hash every login fails.
func NewAdminCredentials(username, passwordHash string) *AdminCredentials {
	return &AdminCredentials{username: username, passwordHash: []byte(passwordHash)}
}

// Verify checks a username/password pair.
func (a *AdminCredentials) Verify(username, password string) error {
	if len(a.passwordHash) == 0 {
		return ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	if err := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)); err != nil || !userOK {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}
