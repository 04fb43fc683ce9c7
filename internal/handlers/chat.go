package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/averma/chitchat/internal/apperr"
	"github.com/averma/chitchat/internal/middleware"
	"github.com/averma/chitchat/internal/models"
	"github.com/averma/chitchat/internal/store"
)

type ChatHandler struct {
	Store store.Store
}

// AccessChat handles POST /api/chat: fetch the one-to-one chat with the given
// user, creating it on first contact. Idempotent per user pair.
func (h *ChatHandler) AccessChat(w http.ResponseWriter, r *http.Request) error {
	currentID := middleware.UserID(r.Context())

	var req struct {
		UserID string `json:"userId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
		return apperr.Validation("userId param not sent with request")
	}

	if _, err := h.Store.GetUserByID(r.Context(), req.UserID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal(err)
	}

	chat, err := h.Store.FindDirectChat(r.Context(), currentID, req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		chat, err = h.Store.CreateDirectChat(r.Context(), currentID, req.UserID)
	}
	if err != nil {
		return apperr.Internal(err)
	}

	writeJSON(w, http.StatusOK, chat)
	return nil
}

// FetchChats handles GET /api/chat: every chat the requester belongs to,
// most recently updated first.
func (h *ChatHandler) FetchChats(w http.ResponseWriter, r *http.Request) error {
	limit, offset := pagination(r)

	chats, err := h.Store.GetUserChats(r.Context(), middleware.UserID(r.Context()), limit, offset)
	if err != nil {
		return apperr.Internal(err)
	}
	if chats == nil {
		chats = []models.Chat{}
	}

	writeJSON(w, http.StatusOK, chats)
	return nil
}

// CreateGroup handles POST /api/chat/group. The users field arrives as a
// JSON-encoded array string.
func (h *ChatHandler) CreateGroup(w http.ResponseWriter, r *http.Request) error {
	creatorID := middleware.UserID(r.Context())

	var req struct {
		Name  string `json:"name"`
		Users string `json:"users"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return apperr.Validation("invalid request body")
	}
	if req.Users == "" {
		return apperr.Validation("please select the users to add to the group")
	}
	if req.Name == "" {
		return apperr.Validation("please provide a group chat name")
	}

	var userIDs []string
	if err := json.Unmarshal([]byte(req.Users), &userIDs); err != nil {
		return apperr.Validation("users must be a JSON-encoded array")
	}

	members := dedupe(userIDs, creatorID)
	if len(members) < 2 {
		return apperr.Validation("more than 2 users are required to form a group chat")
	}
	members = append(members, creatorID)

	chat, err := h.Store.CreateGroupChat(r.Context(), req.Name, members, creatorID)
	if err != nil {
		return apperr.Internal(err)
	}

	writeJSON(w, http.StatusOK, chat)
	return nil
}

// RenameGroup handles PUT /api/chat/rename. Group chats may only be renamed
// by their admin.
func (h *ChatHandler) RenameGroup(w http.ResponseWriter, r *http.Request) error {
	var req struct {
		ChatID   string `json:"chatId"`
		ChatName string `json:"chatName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChatID == "" || req.ChatName == "" {
		return apperr.Validation("chatId and chatName are required")
	}

	if err := h.authorizeGroupMutation(r, req.ChatID, ""); err != nil {
		return err
	}

	chat, err := h.Store.RenameChat(r.Context(), req.ChatID, req.ChatName)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("chat not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}

	writeJSON(w, http.StatusOK, chat)
	return nil
}

// AddToGroup handles PUT /api/chat/groupadd.
func (h *ChatHandler) AddToGroup(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeChatUser(r)
	if err != nil {
		return err
	}

	if err := h.authorizeGroupMutation(r, req.ChatID, ""); err != nil {
		return err
	}

	chat, err := h.Store.AddChatMember(r.Context(), req.ChatID, req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("chat not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}

	writeJSON(w, http.StatusOK, chat)
	return nil
}

// RemoveFromGroup handles PUT /api/chat/groupremove. Members may remove
// themselves (leave); anyone else requires the admin.
func (h *ChatHandler) RemoveFromGroup(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeChatUser(r)
	if err != nil {
		return err
	}

	if err := h.authorizeGroupMutation(r, req.ChatID, req.UserID); err != nil {
		return err
	}

	chat, err := h.Store.RemoveChatMember(r.Context(), req.ChatID, req.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("chat not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}

	writeJSON(w, http.StatusOK, chat)
	return nil
}

type chatUserRequest struct {
	ChatID string `json:"chatId"`
	UserID string `json:"userId"`
}

func decodeChatUser(r *http.Request) (chatUserRequest, error) {
	var req chatUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChatID == "" || req.UserID == "" {
		return req, apperr.Validation("chatId and userId are required")
	}
	return req, nil
}

// authorizeGroupMutation loads the chat and enforces the group-admin
// capability check. selfOK names a user the requester may target without
// being admin (leaving a group).
func (h *ChatHandler) authorizeGroupMutation(r *http.Request, chatID, selfOK string) error {
	requesterID := middleware.UserID(r.Context())

	chat, err := h.Store.GetChat(r.Context(), chatID)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound("chat not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}

	if !chat.IsGroupChat {
		return apperr.Validation("not a group chat")
	}
	if selfOK != "" && selfOK == requesterID {
		return nil
	}
	if chat.GroupAdmin == nil || chat.GroupAdmin.ID != requesterID {
		return apperr.Forbidden("only the group admin can modify this chat")
	}
	return nil
}

// dedupe removes duplicates and the creator from the requested member list;
// the creator is appended separately.
func dedupe(ids []string, creatorID string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if id == "" || id == creatorID || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
