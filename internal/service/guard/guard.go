package guard

import (
	"context"

	"go.uber.org/zap"

	"github.com/vanish-chat/backend/internal/hub"
	"github.com/vanish-chat/backend/internal/model/room"
	"github.com/vanish-chat/backend/internal/service/broker"
	"github.com/vanish-chat/backend/internal/service/registry"
)

// Guard decides who may tear a room down: only the identity that
// created it.
type Guard struct {
	registry *registry.Registry
	broker   *broker.Broker
	rooms    *hub.Hub
	log      *zap.Logger
}

func New(reg *registry.Registry, brk *broker.Broker, rooms *hub.Hub, log *zap.Logger) *Guard {
	return &Guard{registry: reg, broker: brk, rooms: rooms, log: log}
}

// Authorize reports whether userID owns the live session behind code.
// An absent or expired session authorizes nobody.
func (g *Guard) Authorize(ctx context.Context, code, userID string) bool {
	s, err := g.registry.Get(ctx, code)
	return err == nil && s.OwnerID == userID
}

// Close tears the room down when userID is the owner: purge the
// messages, delete the session, tell every bound connection
// session-closed and clear the bindings. A non-owner (or unknown-code)
// close is deliberately silent: nothing is deleted, nothing is
// broadcast, and the caller gets no error. The only trace is a
// server-side log line.
func (g *Guard) Close(ctx context.Context, code, userID string) error {
	if !g.Authorize(ctx, code, userID) {
		g.log.Debug("ignoring close from non-owner",
			zap.String("code", code),
			zap.String("userId", userID))
		return nil
	}
	if err := g.broker.Purge(ctx, code); err != nil {
		return err
	}
	if err := g.registry.Delete(ctx, code); err != nil {
		return err
	}
	if rm, ok := g.rooms.Get(code); ok {
		rm.CloseAll(room.Frame{Type: room.EventSessionClosed})
		g.rooms.Delete(code)
	}
	g.log.Info("session closed by owner", zap.String("code", code))
	return nil
}
