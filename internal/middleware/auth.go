package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/learnhub/backend/internal/models"
)

type contextKey string

const clerkIDKey contextKey = "clerk_id"

// ClerkID returns the auth provider user ID stored by Authenticator.
func ClerkID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(clerkIDKey).(string)
	return id, ok && id != ""
}

// WithClerkID stores id in ctx the way Authenticator does.
func WithClerkID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, clerkIDKey, id)
}

// Authenticator verifies bearer tokens issued by the auth provider.
type Authenticator struct {
	key     interface{}
	methods []string
}

// NewAuthenticator prefers an RS256 PEM public key and falls back to an HS256
// shared secret.
func NewAuthenticator(secret, publicKeyPEM string) (*Authenticator, error) {
	if publicKeyPEM != "" {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicKeyPEM))
		if err != nil {
			return nil, fmt.Errorf("parse auth public key: %w", err)
		}
		return &Authenticator{key: key, methods: []string{jwt.SigningMethodRS256.Alg()}}, nil
	}
	if secret != "" {
		return &Authenticator{key: []byte(secret), methods: []string{jwt.SigningMethodHS256.Alg()}}, nil
	}
	return nil, errors.New("either AUTH_JWT_PUBLIC_KEY or AUTH_JWT_SECRET is required")
}

// Subject validates tokenString and returns its sub claim.
func (a *Authenticator) Subject(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(*jwt.Token) (interface{}, error) {
		return a.key, nil
	}, jwt.WithValidMethods(a.methods), jwt.WithExpirationRequired())
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			unauthorized(w, "Invalid authorization format")
			return
		}

		sub, err := a.Subject(strings.TrimSpace(parts[1]))
		if err != nil {
			unauthorized(w, "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClerkID(r.Context(), sub)))
	})
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(models.ErrorResponse{Error: msg})
}
