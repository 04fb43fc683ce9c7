package sqlstore

import (
	"context"
	"testing"

	"github.com/averma/chitchat/internal/models"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	s, err := New("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func createTestUser(t *testing.T, s *SQLStore, name, email string) *models.User {
	t.Helper()
	user := &models.User{Name: name, Email: email, Password: "hashed"}
	if err := s.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}
