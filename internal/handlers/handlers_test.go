package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"

	"github.com/averma/chitchat/internal/auth"
	"github.com/averma/chitchat/internal/models"
	"github.com/averma/chitchat/internal/store/sqlstore"
)

type testEnv struct {
	router *mux.Router
	store  *sqlstore.SQLStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s, err := sqlstore.New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	r := mux.NewRouter()
	RegisterRoutes(r, jwtManager,
		&UserHandler{Store: s, JWT: jwtManager},
		&ChatHandler{Store: s},
		&MessageHandler{Store: s},
	)

	return &testEnv{router: r, store: s}
}

func (e *testEnv) do(t *testing.T, method, path, token string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Buffer
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(b)
	} else {
		body = &bytes.Buffer{}
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

// register creates a user through the API and returns the profile and token.
func (e *testEnv) register(t *testing.T, name, email string) authResponse {
	t.Helper()

	rr := e.do(t, "POST", "/api/user", "", map[string]string{
		"name":     name,
		"email":    email,
		"password": "password123",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("register %s: got status %d, body %s", email, rr.Code, rr.Body.String())
	}

	var resp authResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return resp
}

func decodeChat(t *testing.T, rr *httptest.ResponseRecorder) models.Chat {
	t.Helper()
	var chat models.Chat
	if err := json.NewDecoder(rr.Body).Decode(&chat); err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	return chat
}

func errMessage(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]string
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp["message"]
}
