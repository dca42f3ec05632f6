package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"github.com/vanish-chat/backend/internal/hub"
	"github.com/vanish-chat/backend/internal/model/room"
	"github.com/vanish-chat/backend/internal/service/registry"
	"github.com/vanish-chat/backend/internal/store"
)

// Broker persists messages and fans them out to the room's connections.
// Persistence always completes before any member sees the frame: no
// client may observe a message that was not successfully recorded.
type Broker struct {
	registry *registry.Registry
	messages store.MessageStore
	rooms    *hub.Hub
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func New(reg *registry.Registry, messages store.MessageStore, rooms *hub.Hub, ttl time.Duration, log *zap.Logger) *Broker {
	return &Broker{
		registry: reg,
		messages: messages,
		rooms:    rooms,
		ttl:      ttl,
		log:      log,
		now:      time.Now,
	}
}

// SetNowFunc replaces the clock (used in tests).
func (b *Broker) SetNowFunc(fn func() time.Time) { b.now = fn }

// Send stores one message for a live session and then broadcasts it to
// every connection currently bound to the room, the sender included.
// Returns store.ErrNotFound when the session is absent or expired. If
// persistence fails nothing is broadcast.
func (b *Broker) Send(ctx context.Context, code, senderID, text string) (room.Message, error) {
	if _, err := b.registry.Get(ctx, code); err != nil {
		return room.Message{}, err
	}

	now := b.now()
	msg := room.Message{
		ID:          ulid.Make().String(),
		SessionCode: code,
		SenderID:    senderID,
		Text:        text,
		Timestamp:   now,
		ExpiresAt:   now.Add(b.ttl),
	}
	persist := func() error {
		if err := b.messages.AppendMessage(ctx, msg); err != nil {
			return fmt.Errorf("persist message: %w", err)
		}
		return nil
	}
	frame := room.Frame{
		Type: room.EventReceiveMessage,
		Data: room.Delivery{SenderID: senderID, Text: text, Timestamp: msg.Timestamp},
	}

	// The room lock serializes persist-then-broadcast against the
	// membership table, so the recipient set is exactly the connections
	// bound at broadcast time.
	if rm, ok := b.rooms.Get(code); ok {
		if err := rm.Publish(persist, frame); err != nil {
			return room.Message{}, err
		}
		return msg, nil
	}
	// Nobody is connected; the message still has to be recorded.
	if err := persist(); err != nil {
		return room.Message{}, err
	}
	return msg, nil
}

// History returns the room's still-live messages in send order, for
// hydrating a late joiner. store.ErrNotFound when the session is absent.
func (b *Broker) History(ctx context.Context, code string) ([]room.Message, error) {
	if _, err := b.registry.Get(ctx, code); err != nil {
		return nil, err
	}
	return b.messages.ListMessages(ctx, code)
}

// Purge drops every message of a room. Called on owner close only;
// passive expiry is each message's own TTL.
func (b *Broker) Purge(ctx context.Context, code string) error {
	return b.messages.PurgeMessages(ctx, code)
}
