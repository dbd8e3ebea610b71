package cache

import (
	"fmt"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// PendingCountTTL bounds staleness between change-feed invalidations. The
// count is cheap to recompute, so the window stays short.
const PendingCountTTL = 1 * time.Minute

// PubCache caches per-user pending-response counts. Session views are always
// recomputed from the store and never cached here.
type PubCache struct {
	redis *RedisCache
}

// NewPubCache creates a new pub cache
func NewPubCache(redis *RedisCache) *PubCache {
	return &PubCache{redis: redis}
}

func pendingCountKey(userID uint) string {
	return fmt.Sprintf("pending:%d", userID)
}

// GetPendingCount retrieves a cached pending count
func (pc *PubCache) GetPendingCount(userID uint) (int, bool) {
	if pc == nil || pc.redis == nil {
		return 0, false
	}
	data, err := pc.redis.Get(pendingCountKey(userID))
	if err != nil || data == nil {
		return 0, false
	}

	var count int
	if err := msgpack.Unmarshal(data, &count); err != nil {
		return 0, false
	}
	return count, true
}

// SetPendingCount caches a pending count
func (pc *PubCache) SetPendingCount(userID uint, count int) error {
	if pc == nil || pc.redis == nil {
		return nil
	}
	data, err := msgpack.Marshal(count)
	if err != nil {
		return err
	}
	return pc.redis.Set(pendingCountKey(userID), data, PendingCountTTL)
}

// InvalidatePendingCounts drops cached counts for the given users, e.g. all
// members of a group after a request is created or answered.
func (pc *PubCache) InvalidatePendingCounts(userIDs ...uint) error {
	if pc == nil || pc.redis == nil || len(userIDs) == 0 {
		return nil
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, pendingCountKey(id))
	}
	return pc.redis.Delete(keys...)
}
