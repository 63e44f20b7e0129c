// Package cache implements the short-lived availability cache: computed
// slot grids keyed by room and calendar day, stored behind a generic TTL
// string store. The cache is a read-path optimization only: it never
// fails a request and is never the source of truth.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/roomly/backend/internal/schedule"
)

// DefaultTTL bounds staleness when an invalidation is missed.
const DefaultTTL = 5 * time.Minute

// Store is a generic get/set/delete-with-TTL string cache. Implementations
// may be networked (Redis) or in-process; the timeslot cache treats any
// Store failure as a miss.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

// TimeslotCache caches computed slot grids per (room, day).
type TimeslotCache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// NewTimeslotCache creates an availability cache over a backing store.
// A nil store disables caching entirely: every read recomputes.
func NewTimeslotCache(store Store, ttl time.Duration, logger *zap.Logger) *TimeslotCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TimeslotCache{store: store, ttl: ttl, logger: logger}
}

// Key builds the cache key for a room's grid on the given day.
func Key(roomID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("room:%s:timeslots:%s", roomID, schedule.DayOf(date).Format("20060102"))
}

// GetOrCompute returns the cached grid for (roomID, date) or, on a miss,
// invokes compute, stores its result with the cache TTL and returns it.
// Store failures are logged and degrade to recomputing; an availability
// query never fails because the cache is down.
func (c *TimeslotCache) GetOrCompute(ctx context.Context, roomID uuid.UUID, date time.Time, compute func(ctx context.Context) ([]schedule.Slot, error)) ([]schedule.Slot, error) {
	key := Key(roomID, date)

	if c.store != nil {
		raw, ok, err := c.store.Get(ctx, key)
		if err != nil {
			c.logger.Warn("timeslot cache read failed",
				zap.String("key", key), zap.Error(err))
		} else if ok {
			var grid []schedule.Slot
			if err := json.Unmarshal([]byte(raw), &grid); err != nil {
				c.logger.Warn("timeslot cache entry corrupt",
					zap.String("key", key), zap.Error(err))
			} else {
				return grid, nil
			}
		}
	}

	grid, err := compute(ctx)
	if err != nil {
		return nil, err
	}

	if c.store != nil {
		payload, err := json.Marshal(grid)
		if err != nil {
			c.logger.Warn("timeslot cache encode failed", zap.String("key", key), zap.Error(err))
			return grid, nil
		}
		if err := c.store.Set(ctx, key, string(payload), c.ttl); err != nil {
			c.logger.Warn("timeslot cache write failed",
				zap.String("key", key), zap.Error(err))
		}
	}
	return grid, nil
}

// Invalidate drops the cached grid for (roomID, date). Best effort: a
// failed delete is logged and the entry self-corrects at TTL expiry.
func (c *TimeslotCache) Invalidate(ctx context.Context, roomID uuid.UUID, date time.Time) {
	if c.store == nil {
		return
	}
	key := Key(roomID, date)
	if err := c.store.Del(ctx, key); err != nil {
		c.logger.Warn("timeslot cache invalidation failed",
			zap.String("key", key), zap.Error(err))
	}
}

// InvalidateInterval drops the cached grids for every calendar day the
// interval touches. A booking may span midnight, so both boundary dates
// are covered.
func (c *TimeslotCache) InvalidateInterval(ctx context.Context, roomID uuid.UUID, start, end time.Time) {
	startDay := schedule.DayOf(start)
	endDay := schedule.DayOf(end)
	c.Invalidate(ctx, roomID, startDay)
	if !endDay.Equal(startDay) {
		c.Invalidate(ctx, roomID, endDay)
	}
}
