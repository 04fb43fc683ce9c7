package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/averma/chitchat/internal/models"
	"github.com/averma/chitchat/internal/store"
)

func (s *SQLStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	if user.Pic == "" {
		user.Pic = models.DefaultPic
	}

	query := s.rebind("INSERT INTO users (id, name, email, password, pic, is_admin, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)")
	_, err := s.db.ExecContext(ctx, query, user.ID, user.Name, user.Email, user.Password, user.Pic, user.IsAdmin, user.CreatedAt)
	return err
}

func (s *SQLStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	query := s.rebind("SELECT id, name, email, password, pic, is_admin, created_at FROM users WHERE email = ?")
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

func (s *SQLStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	query := s.rebind("SELECT id, name, email, password, pic, is_admin, created_at FROM users WHERE id = ?")
	return s.scanUser(s.db.QueryRowContext(ctx, query, id))
}

// SearchUsers matches query case-insensitively against name or email. An
// empty query matches every user. The excluded id keeps the requester out of
// their own results.
func (s *SQLStore) SearchUsers(ctx context.Context, queryStr, excludeID string) ([]models.User, error) {
	pattern := "%" + strings.ToLower(queryStr) + "%"
	query := s.rebind(`
		SELECT id, name, email, password, pic, is_admin, created_at
		FROM users
		WHERE (LOWER(name) LIKE ? OR LOWER(email) LIKE ?) AND id != ?
		ORDER BY name
	`)
	rows, err := s.db.QueryContext(ctx, query, pattern, pattern, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Pic, &u.IsAdmin, &u.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *SQLStore) scanUser(row *sql.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.Pic, &u.IsAdmin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
