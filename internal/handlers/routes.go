package handlers

import (
	"github.com/gorilla/mux"

	"github.com/averma/chitchat/internal/auth"
	"github.com/averma/chitchat/internal/middleware"
)

// RegisterRoutes mounts the API under /api. Registration and login are
// public; everything else requires a bearer token.
func RegisterRoutes(r *mux.Router, jwt *auth.JWTManager, users *UserHandler, chats *ChatHandler, messages *MessageHandler) {
	requireAuth := middleware.RequireAuth(jwt)

	api := r.PathPrefix("/api").Subrouter()

	api.Handle("/user", handle(users.Register)).Methods("POST")
	api.Handle("/user/login", handle(users.Login)).Methods("POST")
	api.Handle("/user", requireAuth(handle(users.Search))).Methods("GET")

	api.Handle("/chat", requireAuth(handle(chats.AccessChat))).Methods("POST")
	api.Handle("/chat", requireAuth(handle(chats.FetchChats))).Methods("GET")
	api.Handle("/chat/group", requireAuth(handle(chats.CreateGroup))).Methods("POST")
	api.Handle("/chat/rename", requireAuth(handle(chats.RenameGroup))).Methods("PUT")
	api.Handle("/chat/groupremove", requireAuth(handle(chats.RemoveFromGroup))).Methods("PUT")
	api.Handle("/chat/groupadd", requireAuth(handle(chats.AddToGroup))).Methods("PUT")

	api.Handle("/message", requireAuth(handle(messages.SendMessage))).Methods("POST")
	api.Handle("/message/{chatId}", requireAuth(handle(messages.GetMessages))).Methods("GET")
}
