package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/mytrueresume-stack/SprintTracker/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTClaims carries the caller's identity. The user id travels as the
// registered subject.
type JWTClaims struct {
	Email    string          `json:"email"`
	Role     models.UserRole `json:"role"`
	FullName string          `json:"name"`
	jwt.RegisteredClaims
}

// ObjectID parses the subject as a user id.
func (c *JWTClaims) ObjectID() (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(c.Subject)
}

// JWTManager signs and verifies HS256 access tokens.
type JWTManager struct {
	secret   []byte
	ttl      time.Duration
	issuer   string
	audience string
	now      func() time.Time
}

func NewJWTManager(secretKey string, tokenDuration time.Duration) *JWTManager {
	return &JWTManager{secret: []byte(secretKey), ttl: tokenDuration, now: time.Now}
}

// WithAudience stamps issued tokens with iss and aud and requires both on
// verification. Empty values are not checked.
func (manager *JWTManager) WithAudience(issuer, audience string) *JWTManager {
	manager.issuer = issuer
	manager.audience = audience
	return manager
}

// GenerateToken issues a token for user and reports when it expires.
func (manager *JWTManager) GenerateToken(user *models.User) (string, time.Time, error) {
	issued := manager.now()
	expires := issued.Add(manager.ttl)

	registered := jwt.RegisteredClaims{
		Subject:   user.ID.Hex(),
		Issuer:    manager.issuer,
		IssuedAt:  jwt.NewNumericDate(issued),
		NotBefore: jwt.NewNumericDate(issued),
		ExpiresAt: jwt.NewNumericDate(expires),
	}
	if manager.audience != "" {
		registered.Audience = jwt.ClaimStrings{manager.audience}
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{
		Email:            user.Email,
		Role:             user.Role,
		FullName:         user.FullName(),
		RegisteredClaims: registered,
	}).SignedString(manager.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, expires, nil
}

func (manager *JWTManager) parserOptions() []jwt.ParserOption {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(manager.now),
		jwt.WithExpirationRequired(),
	}
	if manager.issuer != "" {
		opts = append(opts, jwt.WithIssuer(manager.issuer))
	}
	if manager.audience != "" {
		opts = append(opts, jwt.WithAudience(manager.audience))
	}
	return opts
}

// VerifyToken checks signature, lifetime, issuer and audience, and
// returns the claims of a token whose subject is a valid user id.
func (manager *JWTManager) VerifyToken(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return manager.secret, nil
	}, manager.parserOptions()...)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpiredToken
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if _, err := claims.ObjectID(); err != nil {
		return nil, fmt.Errorf("%w: subject is not a user id", ErrInvalidToken)
	}
	return claims, nil
}
