package ws

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/averma/chitchat/internal/models"
)

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil)
	go hub.Run()
	return hub
}

func connect(t *testing.T, hub *Hub, userID string) *Client {
	t.Helper()
	c := newClient(hub, nil, userID)
	hub.register <- c
	hub.events <- clientEvent{client: c, frame: Frame{Event: EventSetup}}

	frame := recvFrame(t, c)
	if frame.Event != EventConnected {
		t.Fatalf("expected %q ack, got %q", EventConnected, frame.Event)
	}
	return c
}

func recvFrame(t *testing.T, c *Client) Frame {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		var frame Frame
		if err := json.Unmarshal(payload, &frame); err != nil {
			t.Fatalf("unmarshal frame: %v", err)
		}
		return frame
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for frame")
		return Frame{}
	}
}

func expectNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case payload, ok := <-c.send:
		if ok {
			t.Fatalf("unexpected frame: %s", payload)
		}
	case <-time.After(50 * time.Millisecond):
	}
}

func rawMessage(t *testing.T, sender models.User, members []models.User, content string) json.RawMessage {
	t.Helper()
	msg := models.Message{
		ID:      "m1",
		Sender:  sender,
		Content: content,
		ChatID:  "chat1",
		Chat:    &models.Chat{ID: "chat1", Users: members},
	}
	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal message: %v", err)
	}
	return data
}

func TestNewMessageFanOut(t *testing.T) {
	hub := newTestHub(t)

	a := connect(t, hub, "A")
	b := connect(t, hub, "B")
	c := connect(t, hub, "C")

	members := []models.User{{ID: "A"}, {ID: "B"}, {ID: "C"}}
	data := rawMessage(t, models.User{ID: "A"}, members, "hi all")

	hub.events <- clientEvent{client: a, frame: Frame{Event: EventNewMessage, Data: data}}

	for _, target := range []*Client{b, c} {
		frame := recvFrame(t, target)
		if frame.Event != EventMessageReceived {
			t.Errorf("expected %q, got %q", EventMessageReceived, frame.Event)
		}
		var msg models.Message
		if err := json.Unmarshal(frame.Data, &msg); err != nil {
			t.Fatalf("unmarshal payload: %v", err)
		}
		if msg.Content != "hi all" {
			t.Errorf("expected content 'hi all', got %q", msg.Content)
		}
	}

	// Exactly one each; the sender gets none.
	expectNothing(t, a)
	expectNothing(t, b)
	expectNothing(t, c)
}

func TestNewMessageMultipleConnectionsPerUser(t *testing.T) {
	hub := newTestHub(t)

	a := connect(t, hub, "A")
	b1 := connect(t, hub, "B")
	b2 := connect(t, hub, "B")

	members := []models.User{{ID: "A"}, {ID: "B"}}
	data := rawMessage(t, models.User{ID: "A"}, members, "both tabs")

	hub.events <- clientEvent{client: a, frame: Frame{Event: EventNewMessage, Data: data}}

	for _, target := range []*Client{b1, b2} {
		if frame := recvFrame(t, target); frame.Event != EventMessageReceived {
			t.Errorf("expected %q, got %q", EventMessageReceived, frame.Event)
		}
	}
}

func TestNewMessageWithoutMembersIsDropped(t *testing.T) {
	hub := newTestHub(t)

	a := connect(t, hub, "A")
	b := connect(t, hub, "B")

	msg := models.Message{ID: "m1", Sender: models.User{ID: "A"}, Content: "void"}
	data, _ := json.Marshal(msg)
	hub.events <- clientEvent{client: a, frame: Frame{Event: EventNewMessage, Data: data}}

	expectNothing(t, a)
	expectNothing(t, b)
}

func TestTypingExcludesSender(t *testing.T) {
	hub := newTestHub(t)

	a := connect(t, hub, "A")
	b := connect(t, hub, "B")

	chatID, _ := json.Marshal("chat1")
	hub.events <- clientEvent{client: a, frame: Frame{Event: EventJoinChat, Data: chatID}}
	hub.events <- clientEvent{client: b, frame: Frame{Event: EventJoinChat, Data: chatID}}

	hub.events <- clientEvent{client: a, frame: Frame{Event: EventTyping, Data: chatID}}

	if frame := recvFrame(t, b); frame.Event != EventTyping {
		t.Errorf("expected %q, got %q", EventTyping, frame.Event)
	}
	expectNothing(t, a)

	hub.events <- clientEvent{client: a, frame: Frame{Event: EventStopTyping, Data: chatID}}
	if frame := recvFrame(t, b); frame.Event != EventStopTyping {
		t.Errorf("expected %q, got %q", EventStopTyping, frame.Event)
	}
}

func TestDisconnectLeavesAllRooms(t *testing.T) {
	hub := newTestHub(t)

	a := connect(t, hub, "A")
	b := connect(t, hub, "B")

	chatID, _ := json.Marshal("chat1")
	hub.events <- clientEvent{client: b, frame: Frame{Event: EventJoinChat, Data: chatID}}

	hub.unregister <- b

	// Neither a user-room fan-out nor a chat-room broadcast reaches b.
	members := []models.User{{ID: "A"}, {ID: "B"}}
	data := rawMessage(t, models.User{ID: "A"}, members, "anyone there?")
	hub.events <- clientEvent{client: a, frame: Frame{Event: EventNewMessage, Data: data}}

	select {
	case _, ok := <-b.send:
		if ok {
			t.Error("disconnected client received a frame")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("expected b.send to be closed after unregister")
	}
}

func TestRemoteEventsApplyLocally(t *testing.T) {
	hub := newTestHub(t)

	b := connect(t, hub, "B")

	members := []models.User{{ID: "A"}, {ID: "B"}}
	data := rawMessage(t, models.User{ID: "A"}, members, "from another instance")
	hub.ApplyRemote(Frame{Event: EventNewMessage, Data: data})

	if frame := recvFrame(t, b); frame.Event != EventMessageReceived {
		t.Errorf("expected %q, got %q", EventMessageReceived, frame.Event)
	}
}
