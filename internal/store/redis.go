package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vanish-chat/backend/internal/model/room"
)

const (
	sessionKeyPrefix = "session:"
	messageKeyPrefix = "messages:"
)

// Redis implements SessionStore and MessageStore on one redis client.
// Session keys and message sets carry native TTLs, but every read also
// filters on the record's own expiresAt, so correctness never depends on
// redis having reclaimed a key yet.
type Redis struct {
	rdb *redis.Client
	now func() time.Time
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{rdb: rdb, now: time.Now}
}

// SetNowFunc replaces the clock (used in tests).
func (r *Redis) SetNowFunc(fn func() time.Time) { r.now = fn }

func sessionKey(code string) string  { return sessionKeyPrefix + code }
func messagesKey(code string) string { return messageKeyPrefix + code }

// CreateSession claims the session code. SETNX makes the claim and the
// uniqueness check one atomic step; losing the race returns ErrCodeTaken.
func (r *Redis) CreateSession(ctx context.Context, s room.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := s.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("session %s expires in the past", s.Code)
	}
	ok, err := r.rdb.SetNX(ctx, sessionKey(s.Code), data, ttl).Result()
	if err != nil {
		return fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return ErrCodeTaken
	}
	return nil
}

func (r *Redis) GetSession(ctx context.Context, code string) (room.Session, error) {
	data, err := r.rdb.Get(ctx, sessionKey(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return room.Session{}, ErrNotFound
	}
	if err != nil {
		return room.Session{}, fmt.Errorf("load session: %w", err)
	}
	var s room.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return room.Session{}, fmt.Errorf("decode session: %w", err)
	}
	if s.Expired(r.now()) {
		return room.Session{}, ErrNotFound
	}
	return s, nil
}

// DeleteSession is idempotent; deleting an absent session is a no-op.
func (r *Redis) DeleteSession(ctx context.Context, code string) error {
	if err := r.rdb.Del(ctx, sessionKey(code)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// AppendMessage stores m in the room's sorted set, scored by expiry in
// unix milliseconds. Message TTLs are uniform, so score order equals
// send order and the newest message always expires last; refreshing the
// set's own TTL to that horizon lets redis reclaim abandoned rooms.
func (r *Redis) AppendMessage(ctx context.Context, m room.Message) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}
	key := messagesKey(m.SessionCode)
	if err := r.rdb.ZAdd(ctx, key, redis.Z{
		Score:  float64(m.ExpiresAt.UnixMilli()),
		Member: data,
	}).Err(); err != nil {
		return fmt.Errorf("store message: %w", err)
	}
	if ttl := m.ExpiresAt.Sub(r.now()); ttl > 0 {
		if err := r.rdb.Expire(ctx, key, ttl).Err(); err != nil {
			return fmt.Errorf("refresh message set ttl: %w", err)
		}
	}
	return nil
}

// ListMessages returns the room's still-live messages in send order.
func (r *Redis) ListMessages(ctx context.Context, code string) ([]room.Message, error) {
	nowMilli := strconv.FormatInt(r.now().UnixMilli(), 10)
	raw, err := r.rdb.ZRangeByScore(ctx, messagesKey(code), &redis.ZRangeBy{
		Min: "(" + nowMilli,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("load messages: %w", err)
	}
	out := make([]room.Message, 0, len(raw))
	for _, item := range raw {
		var m room.Message
		if err := json.Unmarshal([]byte(item), &m); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		out = append(out, m)
	}
	return out, nil
}

// PurgeMessages drops the room's whole message set.
func (r *Redis) PurgeMessages(ctx context.Context, code string) error {
	if err := r.rdb.Del(ctx, messagesKey(code)).Err(); err != nil {
		return fmt.Errorf("purge messages: %w", err)
	}
	return nil
}
