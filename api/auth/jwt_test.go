package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func testUser() *models.User {
	return &models.User{
		ID:        primitive.NewObjectID(),
		Email:     "ana@example.com",
		FirstName: "Ana",
		LastName:  "Lopez",
		Role:      models.UserRoleManager,
	}
}

func TestGenerateAndVerify(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	user := testUser()

	token, exp, err := m.GenerateToken(user)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.Hex(), claims.Subject)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, models.UserRoleManager, claims.Role)
	assert.Equal(t, "Ana Lopez", claims.FullName)

	id, err := claims.ObjectID()
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, _, err := m.GenerateToken(testUser())
	require.NoError(t, err)

	_, err = NewJWTManager("other-secret", time.Hour).VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.VerifyToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "x"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.VerifyToken(unsigned)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpiredTokens(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	issued := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }
	token, _, err := m.GenerateToken(testUser())
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyChecksIssuerAndAudience(t *testing.T) {
	m := NewJWTManager("secret", time.Hour).WithAudience("SprintTracker", "SprintTrackerClient")
	token, _, err := m.GenerateToken(testUser())
	require.NoError(t, err)

	claims, err := m.VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, "SprintTracker", claims.Issuer)
	assert.Equal(t, jwt.ClaimStrings{"SprintTrackerClient"}, claims.Audience)

	other := NewJWTManager("secret", time.Hour).WithAudience("SprintTracker", "another-client")
	_, err = other.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	bare, _, err := NewJWTManager("secret", time.Hour).GenerateToken(testUser())
	require.NoError(t, err)
	_, err = m.VerifyToken(bare)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNonUserSubject(t *testing.T) {
	m := NewJWTManager("secret", time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "not-an-id",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = m.VerifyToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
