package store

import (
	"context"
	"errors"

	"github.com/vanish-chat/backend/internal/model/room"
)

var (
	// ErrNotFound marks a record that is absent or already past its TTL.
	ErrNotFound = errors.New("not found")
	// ErrCodeTaken marks a session create that lost the uniqueness race.
	ErrCodeTaken = errors.New("code already taken")
)

// SessionStore persists Session records. Reads must treat a record whose
// ExpiresAt has passed as absent even before physical deletion.
type SessionStore interface {
	CreateSession(ctx context.Context, s room.Session) error
	GetSession(ctx context.Context, code string) (room.Session, error)
	DeleteSession(ctx context.Context, code string) error
}

// MessageStore persists Message records under the same TTL contract.
type MessageStore interface {
	AppendMessage(ctx context.Context, m room.Message) error
	ListMessages(ctx context.Context, code string) ([]room.Message, error)
	PurgeMessages(ctx context.Context, code string) error
}
