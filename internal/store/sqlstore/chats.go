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

// FindDirectChat returns the one-to-one chat containing both users,
// regardless of which side created it.
func (s *SQLStore) FindDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error) {
	query := s.rebind(`
		SELECT c.id
		FROM chats c
		JOIN chat_members ma ON c.id = ma.chat_id AND ma.user_id = ?
		JOIN chat_members mb ON c.id = mb.chat_id AND mb.user_id = ?
		WHERE c.is_group_chat = FALSE
		LIMIT 1
	`)
	var chatID string
	err := s.db.QueryRowContext(ctx, query, userA, userB).Scan(&chatID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.GetChat(ctx, chatID)
}

func (s *SQLStore) CreateDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error) {
	return s.createChat(ctx, "sender", false, []string{userA, userB}, "")
}

func (s *SQLStore) CreateGroupChat(ctx context.Context, name string, memberIDs []string, adminID string) (*models.Chat, error) {
	return s.createChat(ctx, name, true, memberIDs, adminID)
}

func (s *SQLStore) createChat(ctx context.Context, name string, isGroup bool, memberIDs []string, adminID string) (*models.Chat, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	admin := sql.NullString{String: adminID, Valid: adminID != ""}
	query := s.rebind("INSERT INTO chats (id, chat_name, is_group_chat, group_admin_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)")
	if _, err := s.db.ExecContext(ctx, query, id, name, isGroup, admin, now, now); err != nil {
		return nil, err
	}

	memberQuery := s.rebind("INSERT INTO chat_members (chat_id, user_id) VALUES (?, ?)")
	for _, userID := range memberIDs {
		if _, err := s.db.ExecContext(ctx, memberQuery, id, userID); err != nil {
			return nil, err
		}
	}

	return s.GetChat(ctx, id)
}

// GetChat returns the chat with members, group admin and latest message (with
// its sender) resolved.
func (s *SQLStore) GetChat(ctx context.Context, chatID string) (*models.Chat, error) {
	query := s.rebind("SELECT id, chat_name, is_group_chat, group_admin_id, latest_message_id, created_at, updated_at FROM chats WHERE id = ?")

	var (
		chat     models.Chat
		adminID  sql.NullString
		latestID sql.NullString
	)
	err := s.db.QueryRowContext(ctx, query, chatID).Scan(
		&chat.ID, &chat.ChatName, &chat.IsGroupChat, &adminID, &latestID, &chat.CreatedAt, &chat.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	chat.Users, err = s.chatMembers(ctx, chat.ID)
	if err != nil {
		return nil, err
	}

	if adminID.Valid {
		admin, err := s.GetUserByID(ctx, adminID.String)
		if err == nil {
			chat.GroupAdmin = admin
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	if latestID.Valid {
		latest, err := s.getMessage(ctx, latestID.String)
		if err == nil {
			chat.LatestMessage = latest
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	return &chat, nil
}

// GetUserChats returns the chats the user belongs to, most recently updated
// first, each fully resolved.
func (s *SQLStore) GetUserChats(ctx context.Context, userID string, limit, offset int) ([]models.Chat, error) {
	query := s.rebind(`
		SELECT c.id
		FROM chats c
		JOIN chat_members m ON c.id = m.chat_id
		WHERE m.user_id = ?
		ORDER BY c.updated_at DESC
		LIMIT ? OFFSET ?
	`)
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var chats []models.Chat
	for _, id := range ids {
		chat, err := s.GetChat(ctx, id)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *chat)
	}
	return chats, nil
}

func (s *SQLStore) RenameChat(ctx context.Context, chatID, name string) (*models.Chat, error) {
	query := s.rebind("UPDATE chats SET chat_name = ?, updated_at = ? WHERE id = ?")
	result, err := s.db.ExecContext(ctx, query, name, time.Now().UTC(), chatID)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil, store.ErrNotFound
	}
	return s.GetChat(ctx, chatID)
}

func (s *SQLStore) AddChatMember(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, err
	}

	// Adding a member twice is a no-op.
	var exists bool
	existsQuery := s.rebind("SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id = ? AND user_id = ?)")
	if err := s.db.QueryRowContext(ctx, existsQuery, chatID, userID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		query := s.rebind("INSERT INTO chat_members (chat_id, user_id) VALUES (?, ?)")
		if _, err := s.db.ExecContext(ctx, query, chatID, userID); err != nil {
			return nil, err
		}
	}

	return s.touchChat(ctx, chatID)
}

func (s *SQLStore) RemoveChatMember(ctx context.Context, chatID, userID string) (*models.Chat, error) {
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return nil, err
	}

	query := s.rebind("DELETE FROM chat_members WHERE chat_id = ? AND user_id = ?")
	if _, err := s.db.ExecContext(ctx, query, chatID, userID); err != nil {
		return nil, err
	}

	return s.touchChat(ctx, chatID)
}

func (s *SQLStore) IsChatMember(ctx context.Context, chatID, userID string) (bool, error) {
	var exists bool
	query := s.rebind("SELECT EXISTS(SELECT 1 FROM chat_members WHERE chat_id = ? AND user_id = ?)")
	err := s.db.QueryRowContext(ctx, query, chatID, userID).Scan(&exists)
	return exists, err
}

func (s *SQLStore) touchChat(ctx context.Context, chatID string) (*models.Chat, error) {
	query := s.rebind("UPDATE chats SET updated_at = ? WHERE id = ?")
	if _, err := s.db.ExecContext(ctx, query, time.Now().UTC(), chatID); err != nil {
		return nil, err
	}
	return s.GetChat(ctx, chatID)
}

func (s *SQLStore) chatMembers(ctx context.Context, chatID string) ([]models.User, error) {
	query := s.rebind(`
		SELECT u.id, u.name, u.email, u.password, u.pic, u.is_admin, u.created_at
		FROM users u
		JOIN chat_members m ON u.id = m.user_id
		WHERE m.chat_id = ?
	`)
	rows, err := s.db.QueryContext(ctx, query, chatID)
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
