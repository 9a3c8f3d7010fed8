package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
	"golang.org/x/crypto/bcrypt"
)

func newTestHasher(t *testing.T) *PasswordHasher {
	t.Helper()
	h, err := NewPasswordHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)

	hash, err := h.Hash("s3cret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$2"))
	assert.NotEqual(t, "s3cret", hash)

	ok, rehash := h.Verify(hash, "s3cret")
	assert.True(t, ok)
	assert.False(t, rehash)

	ok, _ = h.Verify(hash, "S3cret")
	assert.False(t, ok)
}

func TestPasswordHasher_SaltedHashesDiffer(t *testing.T) {
	h := newTestHasher(t)

	a, err := h.Hash("same")
	require.NoError(t, err)
	b, err := h.Hash("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestPasswordHasher_LegacyHash(t *testing.T) {
	h := newTestHasher(t)

	// SHA-256("password") in base64
	legacy := "XohImNooBHFR0OVvjcYpJ3NgPQ1qq73WKhHvch0VQtg="
	assert.Equal(t, legacy, LegacyHash("password"))

	ok, rehash := h.Verify(legacy, "password")
	assert.True(t, ok)
	assert.True(t, rehash)

	ok, rehash = h.Verify(legacy, "Password")
	assert.False(t, ok)
	assert.False(t, rehash)
}

func TestPasswordHasher_LowCostHashNeedsRehash(t *testing.T) {
	low := newTestHasher(t)
	hash, err := low.Hash("pw")
	require.NoError(t, err)

	high, err := NewPasswordHasher(bcrypt.MinCost + 1)
	require.NoError(t, err)

	ok, rehash := high.Verify(hash, "pw")
	assert.True(t, ok)
	assert.True(t, rehash)
}

func TestNewPasswordHasher_InvalidCost(t *testing.T) {
	_, err := NewPasswordHasher(bcrypt.MaxCost + 1)
	assert.Error(t, err)
}

func TestPasswordHasher_RejectsOverlongPassword(t *testing.T) {
	h := newTestHasher(t)

	_, err := h.Hash(strings.Repeat("a", MaxPasswordBytes))
	require.NoError(t, err)

	_, err = h.Hash(strings.Repeat("a", MaxPasswordBytes+1))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	// multi-byte runes: 25 runes, 75 bytes
	_, err = h.Hash(strings.Repeat("€", 25))
	assert.ErrorIs(t, err, ErrPasswordTooLong)
}
