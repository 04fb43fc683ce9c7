package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/averma/chitchat/internal/models"
	"github.com/averma/chitchat/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := createTestUser(t, s, "Ann", "ann@example.com")
	if user.ID == "" {
		t.Fatal("expected an id to be assigned")
	}
	if user.Pic != models.DefaultPic {
		t.Errorf("expected default pic, got %q", user.Pic)
	}

	got, err := s.GetUserByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != user.ID || got.Name != "Ann" {
		t.Errorf("got %+v, want id=%s name=Ann", got, user.ID)
	}

	if _, err := s.GetUserByEmail(ctx, "nobody@example.com"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	createTestUser(t, s, "Ann", "ann@example.com")

	dup := &models.User{Name: "Other Ann", Email: "ann@example.com", Password: "hashed"}
	if err := s.CreateUser(ctx, dup); err == nil {
		t.Fatal("expected unique constraint error for duplicate email")
	}
}

func TestSearchUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	ann := createTestUser(t, s, "Ann Smith", "ann@example.com")
	createTestUser(t, s, "Bob Jones", "bob@example.com")
	createTestUser(t, s, "Carol Smith", "carol@other.org")

	// Case-insensitive match on name.
	users, err := s.SearchUsers(ctx, "SMITH", ann.ID)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(users) != 1 || users[0].Name != "Carol Smith" {
		t.Errorf("expected only Carol Smith (requester excluded), got %+v", users)
	}

	// Match on email.
	users, err = s.SearchUsers(ctx, "other.org", ann.ID)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(users) != 1 || users[0].Email != "carol@other.org" {
		t.Errorf("expected carol by email, got %+v", users)
	}

	// Empty query matches everyone but the requester.
	users, err = s.SearchUsers(ctx, "", ann.ID)
	if err != nil {
		t.Fatalf("SearchUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users for empty query, got %d", len(users))
	}
}
