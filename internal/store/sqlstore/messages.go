package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/averma/chitchat/internal/models"
	"github.com/averma/chitchat/internal/store"
)

func (s *SQLStore) CreateMessage(ctx context.Context, chatID, senderID, content string) (*models.Message, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	query := s.rebind("INSERT INTO messages (id, chat_id, sender_id, content, created_at) VALUES (?, ?, ?, ?, ?)")
	if _, err := s.db.ExecContext(ctx, query, id, chatID, senderID, content, now); err != nil {
		return nil, err
	}

	return s.getMessage(ctx, id)
}

// SetLatestMessage points the chat at its newest message and bumps the
// chat's updated-at so chat listings sort it first. This is a separate write
// from the message insert; a crash in between leaves a stale pointer.
func (s *SQLStore) SetLatestMessage(ctx context.Context, chatID, messageID string) error {
	query := s.rebind("UPDATE chats SET latest_message_id = ?, updated_at = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, messageID, time.Now().UTC(), chatID)
	if err != nil {
		return err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// GetChatMessages returns the chat's messages in creation order with senders
// resolved.
func (s *SQLStore) GetChatMessages(ctx context.Context, chatID string, limit, offset int) ([]models.Message, error) {
	query := s.rebind(`
		SELECT m.id, m.chat_id, m.content, m.created_at,
			u.id, u.name, u.email, u.password, u.pic, u.is_admin, u.created_at
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.chat_id = ?
		ORDER BY m.created_at ASC, m.id ASC
		LIMIT ? OFFSET ?
	`)
	rows, err := s.db.QueryContext(ctx, query, chatID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(
			&m.ID, &m.ChatID, &m.Content, &m.CreatedAt,
			&m.Sender.ID, &m.Sender.Name, &m.Sender.Email, &m.Sender.Password,
			&m.Sender.Pic, &m.Sender.IsAdmin, &m.Sender.CreatedAt,
		); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (s *SQLStore) getMessage(ctx context.Context, id string) (*models.Message, error) {
	query := s.rebind(`
		SELECT m.id, m.chat_id, m.content, m.created_at,
			u.id, u.name, u.email, u.password, u.pic, u.is_admin, u.created_at
		FROM messages m
		JOIN users u ON m.sender_id = u.id
		WHERE m.id = ?
	`)

	var m models.Message
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&m.ID, &m.ChatID, &m.Content, &m.CreatedAt,
		&m.Sender.ID, &m.Sender.Name, &m.Sender.Email, &m.Sender.Password,
		&m.Sender.Pic, &m.Sender.IsAdmin, &m.Sender.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}
