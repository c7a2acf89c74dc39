package utils

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// AuthenticatedUser is the identity carried through a request after token
// verification
type AuthenticatedUser struct {
	ID    string
	Email string
}

// AuthContextKey is the key used to store authentication context in request context
type AuthContextKey string

const authContextKeyUser AuthContextKey = "authenticated_user"

// ExtractBearerToken extracts the Bearer token from the Authorization header.
// It returns an error if the header is missing, does not start with
// "Bearer ", or if the token is empty.
func ExtractBearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is missing")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", fmt.Errorf("authorization header must start with 'Bearer '")
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", fmt.Errorf("bearer token is empty")
	}

	return token, nil
}

// SetAuthenticatedUser sets the authenticated user in request context
func SetAuthenticatedUser(ctx context.Context, user *AuthenticatedUser) context.Context {
	return context.WithValue(ctx, authContextKeyUser, user)
}

// GetAuthenticatedUser retrieves the authenticated user from request context
func GetAuthenticatedUser(ctx context.Context) (*AuthenticatedUser, error) {
	user, ok := ctx.Value(authContextKeyUser).(*AuthenticatedUser)
	if !ok || user == nil {
		return nil, fmt.Errorf("no authenticated user found in context")
	}
	return user, nil
}
