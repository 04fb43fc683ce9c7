package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/averma/chitchat/internal/auth"
)

// NewUpgrader restricts websocket upgrades to the configured origins.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Non-browser clients send no Origin header.
			return origin == "" || allowed[origin]
		},
	}
}

// ServeWs handles GET /ws. Browsers cannot set headers on websocket dials,
// so the bearer token travels as a query parameter.
func ServeWs(hub *Hub, jwt *auth.JWTManager, upgrader websocket.Upgrader, w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	claims, err := jwt.Validate(token)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade", "error", err)
		return
	}

	client := newClient(hub, conn, claims.UserID)
	hub.register <- client

	go client.writePump()
	go client.readPump()
}
