package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"imagefinder/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const UserIDKey contextKey = "userID"

// UserID returns the authenticated user's ID from the request context,
// or "" if the request carries no valid principal.
func UserID(ctx context.Context) string {
	userID, _ := ctx.Value(UserIDKey).(string)
	return userID
}

// RequireAuth rejects requests that do not carry a valid Supabase JWT.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err != nil {
			logger.Sugar.Warnf("Rejected request to %s: %v", r.URL.Path, err)
			http.Error(w, "Unauthorized: "+err.Error(), http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ResolveUser attaches the user ID to the context when a valid token is
// present but lets the request through either way. Handlers that only use
// the principal opportunistically (search logging) sit behind this one.
func ResolveUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := userIDFromRequest(r)
		if err == nil {
			r = r.WithContext(context.WithValue(r.Context(), UserIDKey, userID))
		}
		next.ServeHTTP(w, r)
	})
}

func userIDFromRequest(r *http.Request) (string, error) {
	// For WebSockets, tokens are passed in the query string because the
	// browser's WebSocket API doesn't support custom headers.
	tokenString := r.URL.Query().Get("token")

	// Fallback to Header for regular API calls.
	if tokenString == "" {
		authHeader := r.Header.Get("Authorization")
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if tokenString == "" {
		return "", fmt.Errorf("no token provided")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure the signing method is HMAC (Supabase default)
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		jwtSecret := os.Getenv("SUPABASE_JWT_SECRET")
		if jwtSecret == "" {
			logger.Sugar.Error("SUPABASE_JWT_SECRET environment variable not set")
			return nil, fmt.Errorf("server is not configured to validate JWTs")
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return "", fmt.Errorf("invalid or expired token")
	}

	// Supabase puts the user ID in the 'sub' claim.
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("could not parse token claims")
	}
	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return "", fmt.Errorf("user ID (sub) claim is missing or invalid")
	}
	return userID, nil
}
