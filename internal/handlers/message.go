package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/averma/chitchat/internal/apperr"
	"github.com/averma/chitchat/internal/middleware"
	"github.com/averma/chitchat/internal/models"
	"github.com/averma/chitchat/internal/store"
)

type MessageHandler struct {
	Store store.Store
}

// SendMessage handles POST /api/message. The message is persisted first,
// then the chat's latest-message pointer is updated; the two writes are not
// atomic. The response carries the resolved chat so the client can hand the
// payload straight to the relay.
func (h *MessageHandler) SendMessage(w http.ResponseWriter, r *http.Request) error {
	senderID := middleware.UserID(r.Context())

	var req struct {
		ChatID  string `json:"chatId"`
		Content string `json:"content"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChatID == "" || req.Content == "" {
		return apperr.Validation("invalid data passed into request")
	}

	chat, err := h.Store.GetChat(r.Context(), req.ChatID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("chat not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}

	isMember, err := h.Store.IsChatMember(r.Context(), req.ChatID, senderID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !isMember {
		return apperr.Forbidden("not a member of this chat")
	}

	msg, err := h.Store.CreateMessage(r.Context(), req.ChatID, senderID, req.Content)
	if err != nil {
		return apperr.Internal(err)
	}
	if err := h.Store.SetLatestMessage(r.Context(), req.ChatID, msg.ID); err != nil {
		return apperr.Internal(err)
	}

	msg.Chat = chat
	writeJSON(w, http.StatusOK, msg)
	return nil
}

// GetMessages handles GET /api/message/{chatId}: the chat's messages in
// creation order, members only.
func (h *MessageHandler) GetMessages(w http.ResponseWriter, r *http.Request) error {
	chatID := mux.Vars(r)["chatId"]
	userID := middleware.UserID(r.Context())

	if _, err := h.Store.GetChat(r.Context(), chatID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("chat not found")
		}
		return apperr.Internal(err)
	}

	isMember, err := h.Store.IsChatMember(r.Context(), chatID, userID)
	if err != nil {
		return apperr.Internal(err)
	}
	if !isMember {
		return apperr.Forbidden("not a member of this chat")
	}

	limit, offset := pagination(r)
	messages, err := h.Store.GetChatMessages(r.Context(), chatID, limit, offset)
	if err != nil {
		return apperr.Internal(err)
	}
	if messages == nil {
		messages = []models.Message{}
	}

	writeJSON(w, http.StatusOK, messages)
	return nil
}
