package middleware

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/golang-jwt/jwt/v5"

	sharedutils "github.com/formforge/formforge-backend/shared/utils"
	authutils "github.com/formforge/formforge-backend/v1/utils"
)

// JWTAuthMiddleware verifies HMAC-signed access tokens issued by the auth
// service and places the authenticated user in the request context
type JWTAuthMiddleware struct {
	secret []byte
}

// NewJWTAuthMiddleware creates a new JWT authentication middleware
func NewJWTAuthMiddleware(secret string) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{secret: []byte(secret)}
}

// RequireAuth wraps a handler so that requests without a valid token are
// rejected with 401
func (j *JWTAuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := authutils.ExtractBearerToken(r)
		if err != nil {
			slog.Warn("Failed to extract bearer token", "error", err, "path", r.URL.Path, "method", r.Method)
			sharedutils.RespondWithError(w, http.StatusUnauthorized, "Invalid or missing authorization header")
			return
		}

		user, err := j.validateToken(tokenString)
		if err != nil {
			slog.Warn("Token validation failed", "error", err, "path", r.URL.Path, "method", r.Method)
			sharedutils.RespondWithError(w, http.StatusUnauthorized, "Invalid access token")
			return
		}

		ctx := authutils.SetAuthenticatedUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth wraps a handler so that a valid token attaches the user to the
// context, but requests without one still pass through anonymously
func (j *JWTAuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := authutils.ExtractBearerToken(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		user, err := j.validateToken(tokenString)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := authutils.SetAuthenticatedUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// validateToken parses and verifies a token and returns the authenticated user
func (j *JWTAuthMiddleware) validateToken(tokenString string) (*authutils.AuthenticatedUser, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	id, _ := claims["id"].(string)
	email, _ := claims["email"].(string)
	if id == "" {
		return nil, fmt.Errorf("id claim is missing")
	}

	return &authutils.AuthenticatedUser{ID: id, Email: email}, nil
}
