package utils

import (
	"fmt"
	"unicode/utf8"

	"github.com/SscSPs/billing_dashboard/internal/apperrors"
	"golang.org/x/crypto/bcrypt"
)

// MinPasswordLength matches the minimum accepted by the remote identity service.
const MinPasswordLength = 6

// ValidatePassword checks a new plaintext password before it is hashed or sent upstream.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", apperrors.ErrValidation, MinPasswordLength)
	}
	// bcrypt only considers the first 72 bytes.
	if len(password) > 72 {
		return fmt.Errorf("%w: password must be at most 72 bytes", apperrors.ErrValidation)
	}
	return nil
}

// HashPassword hashes a plaintext password using bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(hash), err
}

// CheckPasswordHash compares a plaintext password with a bcrypt hash.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
