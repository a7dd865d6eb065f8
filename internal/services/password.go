package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// MinPasswordLength is checked by callers before hashing.
	MinPasswordLength = 6
	// MaxPasswordBytes is the longest input bcrypt accepts, in bytes.
	MaxPasswordBytes = 72
	// passwordCost is the bcrypt work factor (2^10 rounds).
	passwordCost = 10
)

// PasswordHasher hashes and verifies account passwords
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

// BcryptHasher implements PasswordHasher with bcrypt. Every Hash call
// draws a fresh salt which is embedded in the output.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a hasher with the default work factor
func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: passwordCost}
}

// Hash returns the bcrypt hash of plaintext
func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// Verify reports whether plaintext matches hash
func (h *BcryptHasher) Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
