package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const bridgeChannel = "chitchat:relay"

type bridgeEnvelope struct {
	Origin string          `json:"origin"`
	Event  string          `json:"event"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Bridge fans relay events out to other instances over redis pub/sub.
// Each instance tags its events with a random origin id and ignores its own.
type Bridge struct {
	rdb    *redis.Client
	origin string
}

func NewBridge(addr string) *Bridge {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	return &Bridge{rdb: rdb, origin: uuid.New().String()}
}

// Publish sends the frame to the shared channel. Fire and forget: the local
// fan-out already happened and a lost publish only affects other instances.
func (b *Bridge) Publish(frame Frame) {
	payload, err := json.Marshal(bridgeEnvelope{Origin: b.origin, Event: frame.Event, Data: frame.Data})
	if err != nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := b.rdb.Publish(ctx, bridgeChannel, payload).Err(); err != nil {
			slog.Warn("bridge publish", "error", err)
		}
	}()
}

// Subscribe applies frames published by other instances until ctx is done.
// Run it in its own goroutine.
func (b *Bridge) Subscribe(ctx context.Context, apply func(Frame)) {
	sub := b.rdb.Subscribe(ctx, bridgeChannel)
	defer sub.Close()

	for msg := range sub.Channel() {
		var env bridgeEnvelope
		if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
			slog.Warn("bridge payload", "error", err)
			continue
		}
		if env.Origin == b.origin {
			continue
		}
		apply(Frame{Event: env.Event, Data: env.Data})
	}
}
