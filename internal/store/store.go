package store

import (
	"context"
	"errors"

	"github.com/averma/chitchat/internal/models"
)

// ErrNotFound is returned when a referenced record does not exist.
var ErrNotFound = errors.New("record not found")

type Store interface {
	// User operations
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SearchUsers(ctx context.Context, query, excludeID string) ([]models.User, error)

	// Chat operations
	FindDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error)
	CreateDirectChat(ctx context.Context, userA, userB string) (*models.Chat, error)
	CreateGroupChat(ctx context.Context, name string, memberIDs []string, adminID string) (*models.Chat, error)
	GetChat(ctx context.Context, chatID string) (*models.Chat, error)
	GetUserChats(ctx context.Context, userID string, limit, offset int) ([]models.Chat, error)
	RenameChat(ctx context.Context, chatID, name string) (*models.Chat, error)
	AddChatMember(ctx context.Context, chatID, userID string) (*models.Chat, error)
	RemoveChatMember(ctx context.Context, chatID, userID string) (*models.Chat, error)
	IsChatMember(ctx context.Context, chatID, userID string) (bool, error)

	// Message operations
	CreateMessage(ctx context.Context, chatID, senderID, content string) (*models.Message, error)
	SetLatestMessage(ctx context.Context, chatID, messageID string) error
	GetChatMessages(ctx context.Context, chatID string, limit, offset int) ([]models.Message, error)
}
