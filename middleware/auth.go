package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/mytrueresume-stack/SprintTracker/api/auth"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type contextKey string

const (
	UserContextKey        contextKey = "user"
	CorrelationContextKey contextKey = "correlationId"
)

// TokenVerifier is satisfied by auth.JWTManager.
type TokenVerifier interface {
	VerifyToken(token string) (*auth.JWTClaims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token claims in the request context.
func RequireAuth(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if authHeader == "" || tokenString == authHeader {
				writeError(w, http.StatusUnauthorized, "Authentication required")
				return
			}

			claims, err := verifier.VerifyToken(tokenString)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func ClaimsFrom(ctx context.Context) (*auth.JWTClaims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*auth.JWTClaims)
	return claims, ok && claims != nil
}

// UserIDFrom returns the authenticated user's id, or the zero id when the
// request carries no claims.
func UserIDFrom(ctx context.Context) primitive.ObjectID {
	claims, ok := ClaimsFrom(ctx)
	if !ok {
		return primitive.NilObjectID
	}
	id, err := claims.ObjectID()
	if err != nil {
		return primitive.NilObjectID
	}
	return id
}

// WithClaims is used by handler tests to bypass token verification.
func WithClaims(ctx context.Context, claims *auth.JWTClaims) context.Context {
	return context.WithValue(ctx, UserContextKey, claims)
}

type errorBody struct {
	Success bool     `json:"success"`
	Message string   `json:"message"`
	Errors  []string `json:"errors"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Message: message, Errors: []string{message}})
}
