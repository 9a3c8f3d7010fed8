package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yigit/edumanage/internal/app/models"
	"github.com/yigit/edumanage/internal/pkg/apperrors"
)

func testJWTConfig() JWTConfig {
	return JWTConfig{
		SecretKey:  "unit-test-secret",
		Issuer:     "edumanage-test",
		Audience:   "edumanage-test-clients",
		Expiration: 24 * time.Hour,
	}
}

func testUser() *models.User {
	return &models.User{ID: 42, Username: "jdoe", FullName: "Jane Doe", Role: models.RoleStudent}
}

func TestGenerateAndValidateToken(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	token, expiresAt, err := svc.GenerateToken(testUser())
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(24*time.Hour), expiresAt)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "Jane Doe", claims.FullName)
	assert.Equal(t, "Student", claims.Role)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := NewJWTService(testJWTConfig())
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return issued }

	token, _, err := svc.GenerateToken(testUser())
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(24*time.Hour + time.Second) }
	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestValidateToken_Rejections(t *testing.T) {
	issuer := NewJWTService(testJWTConfig())
	token, _, err := issuer.GenerateToken(testUser())
	require.NoError(t, err)

	wrongSecret := testJWTConfig()
	wrongSecret.SecretKey = "other"
	wrongIssuer := testJWTConfig()
	wrongIssuer.Issuer = "someone-else"
	wrongAudience := testJWTConfig()
	wrongAudience.Audience = "another-app"

	for name, cfg := range map[string]JWTConfig{
		"secret":   wrongSecret,
		"issuer":   wrongIssuer,
		"audience": wrongAudience,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewJWTService(cfg).ValidateToken(token)
			assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
		})
	}

	_, err = issuer.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
	_, err = issuer.ValidateToken("")
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateToken_RejectsOtherAlgorithms(t *testing.T) {
	cfg := testJWTConfig()
	claims := &Claims{
		UserID: 1,
		Role:   "Instructor",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte(cfg.SecretKey))
	require.NoError(t, err)

	_, err = NewJWTService(cfg).ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestValidateToken_RejectsUnknownRole(t *testing.T) {
	cfg := testJWTConfig()
	svc := NewJWTService(cfg)
	user := testUser()
	user.Role = "Admin"

	token, _, err := svc.GenerateToken(user)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token)
	assert.ErrorIs(t, err, apperrors.ErrTokenInvalid)
}

func TestExtractBearerToken(t *testing.T) {
	token, err := ExtractBearerToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", token)

	token, err = ExtractBearerToken("bearer   abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)

	_, err = ExtractBearerToken("")
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

	for _, header := range []string{"abc.def.ghi", "Basic dXNlcjpwYXNz", "Bearer "} {
		_, err = ExtractBearerToken(header)
		assert.ErrorIs(t, err, apperrors.ErrTokenInvalid, header)
	}
}
