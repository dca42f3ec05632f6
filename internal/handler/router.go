package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/vanish-chat/backend/internal/handler/room"
	"github.com/vanish-chat/backend/internal/handler/ws"
	"github.com/vanish-chat/backend/internal/hub"
	middlewarePkg "github.com/vanish-chat/backend/internal/middleware"
	"github.com/vanish-chat/backend/internal/service/broker"
	"github.com/vanish-chat/backend/internal/service/guard"
	"github.com/vanish-chat/backend/internal/service/registry"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(reg *registry.Registry, brk *broker.Broker, grd *guard.Guard, rooms *hub.Hub, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)
	r.Use(middlewarePkg.Identity)

	roomHandler := room.New(reg, brk, log)
	wsHandler := ws.New(reg, brk, grd, rooms, log)

	r.Route("/api", func(api chi.Router) {
		roomHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	return r
}
