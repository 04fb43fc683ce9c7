package ws

import (
	"encoding/json"
	"log/slog"

	"github.com/averma/chitchat/internal/models"
)

type clientEvent struct {
	client *Client
	frame  Frame
}

// Hub is the relay. One goroutine (Run) owns every room table, so handlers
// are cooperative and need no locking: a user room per connected identity,
// a chat room per chat clients have joined.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	events     chan clientEvent
	remote     chan Frame

	clients   map[*Client]bool
	userRooms map[string]map[*Client]bool
	chatRooms map[string]map[*Client]bool

	bridge *Bridge
}

// NewHub creates a hub. bridge may be nil, in which case relay events stay
// within this process.
func NewHub(bridge *Bridge) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		events:     make(chan clientEvent),
		remote:     make(chan Frame, 64),
		clients:    make(map[*Client]bool),
		userRooms:  make(map[string]map[*Client]bool),
		chatRooms:  make(map[string]map[*Client]bool),
		bridge:     bridge,
	}
}

// Run processes registration, disconnection and relay events. Call it in its
// own goroutine; it runs for the lifetime of the process.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.clients[client] = true
			connectionsGauge.Inc()

		case client := <-h.unregister:
			h.removeClient(client)

		case ev := <-h.events:
			h.handleEvent(ev)

		case frame := <-h.remote:
			h.applyRemote(frame)
		}
	}
}

// ApplyRemote feeds an event published by another instance into the hub
// loop. Used by the bridge subscriber.
func (h *Hub) ApplyRemote(frame Frame) {
	h.remote <- frame
}

func (h *Hub) handleEvent(ev clientEvent) {
	relayEvents.WithLabelValues(ev.frame.Event).Inc()

	switch ev.frame.Event {
	case EventSetup:
		// The user room is keyed by the authenticated identity, never by a
		// client-supplied one.
		h.joinUserRoom(ev.client)
		ack, _ := marshalFrame(EventConnected, nil)
		h.trySend(ev.client, ack)

	case EventJoinChat:
		var chatID string
		if err := json.Unmarshal(ev.frame.Data, &chatID); err != nil || chatID == "" {
			slog.Warn("join chat without a chat id", "user", ev.client.userID)
			return
		}
		h.joinChatRoom(ev.client, chatID)

	case EventTyping, EventStopTyping:
		var chatID string
		if err := json.Unmarshal(ev.frame.Data, &chatID); err != nil || chatID == "" {
			slog.Warn("typing event without a chat id", "user", ev.client.userID)
			return
		}
		h.broadcastToChat(chatID, ev.frame, ev.client)
		h.publish(ev.frame)

	case EventNewMessage:
		var msg models.Message
		if err := json.Unmarshal(ev.frame.Data, &msg); err != nil {
			slog.Warn("dropping malformed message payload", "user", ev.client.userID, "error", err)
			return
		}
		if msg.Chat == nil || len(msg.Chat.Users) == 0 {
			slog.Warn("chat users not defined", "user", ev.client.userID)
			return
		}
		h.fanOutMessage(&msg)
		h.publish(ev.frame)

	default:
		slog.Warn("unknown event", "event", ev.frame.Event, "user", ev.client.userID)
	}
}

// applyRemote handles events relayed from other instances through the
// bridge. The sender's connections live on the origin instance, so no local
// exclusion is needed beyond the user-id check in fanOutMessage.
func (h *Hub) applyRemote(frame Frame) {
	switch frame.Event {
	case EventTyping, EventStopTyping:
		var chatID string
		if err := json.Unmarshal(frame.Data, &chatID); err != nil || chatID == "" {
			return
		}
		h.broadcastToChat(chatID, frame, nil)

	case EventNewMessage:
		var msg models.Message
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			return
		}
		if msg.Chat == nil || len(msg.Chat.Users) == 0 {
			return
		}
		h.fanOutMessage(&msg)
	}
}

// fanOutMessage emits "message received" to every chat member's user room
// except the sender's.
func (h *Hub) fanOutMessage(msg *models.Message) {
	payload, err := marshalFrame(EventMessageReceived, msg)
	if err != nil {
		slog.Error("marshal message received", "error", err)
		return
	}

	for _, member := range msg.Chat.Users {
		if member.ID == msg.Sender.ID {
			continue
		}
		for client := range h.userRooms[member.ID] {
			h.trySend(client, payload)
		}
	}
}

// broadcastToChat sends the frame to every connection in the chat room,
// excluding the originating connection.
func (h *Hub) broadcastToChat(chatID string, frame Frame, except *Client) {
	payload, err := json.Marshal(frame)
	if err != nil {
		return
	}
	for client := range h.chatRooms[chatID] {
		if client == except {
			continue
		}
		h.trySend(client, payload)
	}
}

func (h *Hub) joinUserRoom(c *Client) {
	if c.userRoom != "" {
		return
	}
	c.userRoom = c.userID
	room := h.userRooms[c.userID]
	if room == nil {
		room = make(map[*Client]bool)
		h.userRooms[c.userID] = room
	}
	room[c] = true
}

func (h *Hub) joinChatRoom(c *Client, chatID string) {
	c.chatRooms[chatID] = true
	room := h.chatRooms[chatID]
	if room == nil {
		room = make(map[*Client]bool)
		h.chatRooms[chatID] = room
	}
	room[c] = true
}

// removeClient drops the connection from every room it joined and closes its
// send channel. Safe to call more than once.
func (h *Hub) removeClient(c *Client) {
	if !h.clients[c] {
		return
	}
	delete(h.clients, c)

	if c.userRoom != "" {
		h.leaveRoom(h.userRooms, c.userRoom, c)
	}
	for chatID := range c.chatRooms {
		h.leaveRoom(h.chatRooms, chatID, c)
	}

	close(c.send)
	connectionsGauge.Dec()
}

func (h *Hub) leaveRoom(rooms map[string]map[*Client]bool, key string, c *Client) {
	room := rooms[key]
	if room == nil {
		return
	}
	delete(room, c)
	if len(room) == 0 {
		delete(rooms, key)
	}
}

// trySend queues the payload, dropping the client when its buffer is full.
func (h *Hub) trySend(c *Client, payload []byte) {
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- payload:
	default:
		h.removeClient(c)
	}
}

func (h *Hub) publish(frame Frame) {
	if h.bridge != nil {
		h.bridge.Publish(frame)
	}
}
