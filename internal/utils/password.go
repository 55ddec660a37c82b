package utils

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword derives a salted bcrypt hash from the plaintext password using
// the given cost factor. The plaintext must never be persisted; only the
// returned hash is stored.
//
// Cost values outside bcrypt's supported range fall back to the library
// minimum/maximum, so callers may pass configuration values through directly.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("error hashing password: %w", err)
	}

	return string(hash), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// bcrypt hash. The comparison is performed by bcrypt itself and does not
// leak timing information about the stored hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
