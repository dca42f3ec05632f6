package store

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper periodically trims expired members out of the message sets.
// Redis drops whole keys when their TTL fires, but members of a still
// live sorted set have no native expiry, so trimming those is ours.
// This is storage reclamation only: every read path filters on
// expiresAt itself and never waits for a sweep.
type Sweeper struct {
	rdb  *redis.Client
	now  func() time.Time
	log  *zap.Logger
	cron *cron.Cron
}

func NewSweeper(rdb *redis.Client, interval time.Duration, log *zap.Logger) *Sweeper {
	s := &Sweeper{rdb: rdb, now: time.Now, log: log, cron: cron.New()}
	if _, err := s.cron.AddFunc("@every "+interval.String(), func() {
		s.sweep(context.Background())
	}); err != nil {
		log.Error("schedule message sweep", zap.Error(err))
	}
	return s
}

// SetNowFunc replaces the clock (used in tests).
func (s *Sweeper) SetNowFunc(fn func() time.Time) { s.now = fn }

func (s *Sweeper) Start() { s.cron.Start() }
func (s *Sweeper) Stop()  { s.cron.Stop() }

func (s *Sweeper) sweep(ctx context.Context) {
	maxScore := strconv.FormatInt(s.now().UnixMilli(), 10)
	var cursor uint64
	var swept int64
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, messageKeyPrefix+"*", 100).Result()
		if err != nil {
			s.log.Warn("message sweep scan failed", zap.Error(err))
			return
		}
		for _, key := range keys {
			removed, err := s.rdb.ZRemRangeByScore(ctx, key, "-inf", maxScore).Result()
			if err != nil {
				s.log.Warn("message sweep trim failed", zap.String("key", key), zap.Error(err))
				continue
			}
			swept += removed
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if swept > 0 {
		s.log.Debug("swept expired messages", zap.Int64("count", swept))
	}
}
