package ws

import "encoding/json"

// Event names are the wire contract shared with clients.
const (
	EventSetup           = "setup"
	EventConnected       = "connected"
	EventJoinChat        = "join chat"
	EventTyping          = "typing"
	EventStopTyping      = "stop typing"
	EventNewMessage      = "new message"
	EventMessageReceived = "message received"
)

// Frame is the JSON envelope for every event in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func marshalFrame(event string, data interface{}) ([]byte, error) {
	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		raw = b
	}
	return json.Marshal(Frame{Event: event, Data: raw})
}
