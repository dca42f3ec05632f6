package room

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	middlewarePkg "github.com/vanish-chat/backend/internal/middleware"
	"github.com/vanish-chat/backend/internal/model/room"
	"github.com/vanish-chat/backend/internal/service/broker"
	"github.com/vanish-chat/backend/internal/service/registry"
	"github.com/vanish-chat/backend/internal/store"
	"github.com/vanish-chat/backend/pkg/utils"
)

// Handler serves the room lifecycle endpoints: create, lookup and the
// history snapshot used to hydrate late joiners.
type Handler struct {
	registry *registry.Registry
	broker   *broker.Broker
	log      *zap.Logger
}

func New(reg *registry.Registry, brk *broker.Broker, log *zap.Logger) *Handler {
	return &Handler{registry: reg, broker: brk, log: log}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/rooms", h.handleCreate)
	r.Get("/rooms/{code}", h.handleLookup)
	r.Get("/rooms/{code}/messages", h.handleHistory)
}

type lookupResponse struct {
	room.Session
	IsOwner bool `json:"isOwner"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ownerID := middlewarePkg.IdentityFromContext(r.Context())
	if ownerID == "" {
		utils.RespondError(w, http.StatusInternalServerError, "identity unavailable")
		return
	}

	session, err := h.registry.Create(r.Context(), ownerID)
	if err != nil {
		h.log.Error("room create failed", zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "could not create room")
		return
	}

	utils.RespondJSON(w, http.StatusCreated, session)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))
	userID := middlewarePkg.IdentityFromContext(r.Context())

	session, err := h.registry.Get(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found or expired")
		return
	}
	if err != nil {
		h.log.Error("room lookup failed", zap.String("code", code), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "lookup failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, lookupResponse{
		Session: session,
		IsOwner: session.OwnerID == userID,
	})
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	code := strings.ToUpper(chi.URLParam(r, "code"))

	messages, err := h.broker.History(r.Context(), code)
	if errors.Is(err, store.ErrNotFound) {
		utils.RespondError(w, http.StatusNotFound, "session not found or expired")
		return
	}
	if err != nil {
		h.log.Error("room history failed", zap.String("code", code), zap.Error(err))
		utils.RespondError(w, http.StatusInternalServerError, "history failed")
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}
