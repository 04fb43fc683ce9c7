package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/averma/chitchat/internal/auth"
	"github.com/averma/chitchat/internal/models"
)

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	var seenID string
	handler := RequireAuth(jwtManager)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenID = UserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// Missing token.
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/", nil))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("missing token: got status %d, want 401", rr.Code)
	}

	// Garbage token.
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("garbage token: got status %d, want 401", rr.Code)
	}

	// Valid token reaches the handler with the user id in context.
	token, err := jwtManager.Generate(&models.User{ID: "u1", Email: "a@x.com"})
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("valid token: got status %d, want 200", rr.Code)
	}
	if seenID != "u1" {
		t.Errorf("expected user id u1 in context, got %q", seenID)
	}
}

func TestBearerToken(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	if got := BearerToken(req); got != "" {
		t.Errorf("expected empty token without a header, got %q", got)
	}

	req.Header.Set("Authorization", "Bearer abc123")
	if got := BearerToken(req); got != "abc123" {
		t.Errorf("expected abc123, got %q", got)
	}

	req.Header.Set("Authorization", "Basic abc123")
	if got := BearerToken(req); got != "" {
		t.Errorf("expected empty token for non-bearer scheme, got %q", got)
	}
}
