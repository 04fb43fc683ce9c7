package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/averma/chitchat/internal/auth"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// UserID extracts the authenticated user id from the request context.
// Returns empty string if not set.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(UserIDKey).(string)
	return id
}

// BearerToken extracts the token from an "Authorization: Bearer ..." header.
func BearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(h[len("Bearer "):])
	}
	return ""
}

// RequireAuth validates the bearer token and stores the user id in the
// request context.
func RequireAuth(jwtManager *auth.JWTManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := BearerToken(r)
			if token == "" {
				unauthorized(w, auth.ErrMissingToken.Error())
				return
			}

			claims, err := jwtManager.Validate(token)
			if err != nil {
				unauthorized(w, auth.ErrInvalidToken.Error())
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
