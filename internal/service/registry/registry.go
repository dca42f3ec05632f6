package registry

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vanish-chat/backend/internal/model/room"
	"github.com/vanish-chat/backend/internal/store"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6

	// 36^6 codes make collisions astronomically rare; the retry bound
	// exists so a pathological store can't spin a create forever.
	maxCreateAttempts = 8
)

// ErrGenerationExhausted means code generation kept colliding past the
// retry bound. Fatal to that create call only.
var ErrGenerationExhausted = errors.New("session code generation exhausted")

// Registry creates, looks up and deletes session records. It is the only
// component that touches session state.
type Registry struct {
	sessions store.SessionStore
	ttl      time.Duration
	log      *zap.Logger
	now      func() time.Time
}

func New(sessions store.SessionStore, ttl time.Duration, log *zap.Logger) *Registry {
	return &Registry{sessions: sessions, ttl: ttl, log: log, now: time.Now}
}

// SetNowFunc replaces the clock (used in tests).
func (r *Registry) SetNowFunc(fn func() time.Time) { r.now = fn }

// Create provisions a session owned by ownerID under a fresh unique code.
func (r *Registry) Create(ctx context.Context, ownerID string) (room.Session, error) {
	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		code, err := generateCode()
		if err != nil {
			return room.Session{}, err
		}
		now := r.now()
		s := room.Session{
			Code:      code,
			OwnerID:   ownerID,
			CreatedAt: now,
			ExpiresAt: now.Add(r.ttl),
		}
		err = r.sessions.CreateSession(ctx, s)
		if errors.Is(err, store.ErrCodeTaken) {
			r.log.Debug("session code collision", zap.String("code", code))
			continue
		}
		if err != nil {
			return room.Session{}, err
		}
		r.log.Info("session created",
			zap.String("code", code),
			zap.Time("expiresAt", s.ExpiresAt))
		return s, nil
	}
	return room.Session{}, ErrGenerationExhausted
}

// Get returns the live session behind code, or store.ErrNotFound for an
// unknown or expired code. The store filters on expiresAt at read time,
// so an expired record is absent even before any sweep.
func (r *Registry) Get(ctx context.Context, code string) (room.Session, error) {
	return r.sessions.GetSession(ctx, code)
}

// Delete removes the session record. Idempotent.
func (r *Registry) Delete(ctx context.Context, code string) error {
	return r.sessions.DeleteSession(ctx, code)
}

func generateCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	out := make([]byte, codeLength)
	for i, b := range buf {
		out[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(out), nil
}
