package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/yigit/edumanage/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is used when no cost is configured.
	DefaultBcryptCost = 12

	// MaxPasswordBytes is the longest input bcrypt accepts.
	MaxPasswordBytes = 72
)

// ErrPasswordTooLong is a client error; it unwraps to apperrors.ErrValidationFailed.
var ErrPasswordTooLong = apperrors.NewValidationError("userPassword must be at most 72 bytes")

// PasswordHasher hashes new passwords with bcrypt and still verifies the
// unsalted SHA-256 hashes written by earlier deployments.
type PasswordHasher struct {
	cost      int
	dummyHash []byte
}

// NewPasswordHasher creates a hasher with the given bcrypt cost.
func NewPasswordHasher(cost int) (*PasswordHasher, error) {
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", cost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte("edumanage-timing-equalizer"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}

	return &PasswordHasher{cost: cost, dummyHash: dummy}, nil
}

// Hash returns a bcrypt hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	if len(password) > MaxPasswordBytes {
		return "", ErrPasswordTooLong
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", ErrPasswordTooLong
	}
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(bytes), nil
}

// Verify compares password with the stored hash. needsRehash is true when the
// password matched a legacy hash or a bcrypt hash below the configured cost.
func (h *PasswordHasher) Verify(storedHash, password string) (ok bool, needsRehash bool) {
	if isBcryptHash(storedHash) {
		if err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(password)); err != nil {
			return false, false
		}
		cost, err := bcrypt.Cost([]byte(storedHash))
		return true, err == nil && cost < h.cost
	}

	legacy := LegacyHash(password)
	if subtle.ConstantTimeCompare([]byte(storedHash), []byte(legacy)) == 1 {
		return true, true
	}
	return false, false
}

// VerifyDummy burns one bcrypt comparison so a missing account costs the
// same time as a wrong password.
func (h *PasswordHasher) VerifyDummy(password string) {
	_ = bcrypt.CompareHashAndPassword(h.dummyHash, []byte(password))
}

// LegacyHash reproduces the base64 encoded SHA-256 digest used before bcrypt.
func LegacyHash(password string) string {
	sum := sha256.Sum256([]byte(password))
	return base64.StdEncoding.EncodeToString(sum[:])
}

func isBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") || strings.HasPrefix(hash, "$2b$") || strings.HasPrefix(hash, "$2y$")
}
