package ws

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/vanish-chat/backend/internal/hub"
	"github.com/vanish-chat/backend/internal/model/room"
	"github.com/vanish-chat/backend/internal/service/broker"
	"github.com/vanish-chat/backend/internal/service/guard"
	"github.com/vanish-chat/backend/internal/service/registry"
)

// Handler owns the realtime channel: one websocket per participant,
// bound to at most one room, carrying join-session / send-message /
// close-session inbound and the room broadcasts outbound.
type Handler struct {
	registry *registry.Registry
	broker   *broker.Broker
	guard    *guard.Guard
	rooms    *hub.Hub
	log      *zap.Logger
	upgrader websocket.Upgrader
}

func New(reg *registry.Registry, brk *broker.Broker, grd *guard.Guard, rooms *hub.Hub, log *zap.Logger) *Handler {
	return &Handler{
		registry: reg,
		broker:   brk,
		guard:    grd,
		rooms:    rooms,
		log:      log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws", h.handleSocket)
}

type inboundFrame struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func errFrame(msg string) room.Frame {
	return room.Frame{Type: room.EventError, Data: msg}
}

func (h *Handler) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	client := hub.NewClient(conn)
	var bound *hub.Room
	ctx := r.Context()

	for {
		var frame inboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			break
		}

		switch frame.Type {
		case room.EventJoinSession:
			var req room.JoinRequest
			if err := json.Unmarshal(frame.Data, &req); err != nil || req.Code == "" || req.UserID == "" {
				client.Send(errFrame("malformed join-session"))
				continue
			}
			req.Code = strings.ToUpper(req.Code)
			if _, err := h.registry.Get(ctx, req.Code); err != nil {
				client.Send(errFrame("session not found or expired"))
				continue
			}
			// One binding per connection: a re-join moves it.
			if bound != nil {
				h.unbind(client, bound)
			}
			rm := h.rooms.GetOrCreate(req.Code)
			rm.Join(client, req.UserID)
			bound = rm
			h.log.Debug("user joined session",
				zap.String("code", req.Code),
				zap.String("userId", req.UserID))

		case room.EventSendMessage:
			var req room.SendRequest
			if err := json.Unmarshal(frame.Data, &req); err != nil || req.Code == "" {
				client.Send(errFrame("malformed send-message"))
				continue
			}
			if _, err := h.broker.Send(ctx, strings.ToUpper(req.Code), req.UserID, req.Text); err != nil {
				h.log.Warn("send-message failed",
					zap.String("code", req.Code),
					zap.Error(err))
			}

		case room.EventCloseSession:
			var req room.CloseRequest
			if err := json.Unmarshal(frame.Data, &req); err != nil || req.Code == "" {
				client.Send(errFrame("malformed close-session"))
				continue
			}
			if err := h.guard.Close(ctx, strings.ToUpper(req.Code), req.UserID); err != nil {
				h.log.Warn("close-session failed",
					zap.String("code", req.Code),
					zap.Error(err))
			}

		default:
			client.Send(errFrame("unknown event type"))
		}
	}

	// Disconnect is the only cancellation signal; it unconditionally
	// unbinds. A close-session already emptied the room, in which case
	// this is a no-op.
	if bound != nil {
		h.unbind(client, bound)
	}
}

func (h *Handler) unbind(client *hub.Client, rm *hub.Room) {
	if _, ok, remaining := rm.Leave(client); ok && remaining == 0 {
		h.rooms.Delete(rm.Code)
	}
}
