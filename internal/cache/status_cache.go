package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const statusTTL = 10 * time.Second

// StatusCache is a short-lived read cache for post status lookups. Status
// rows churn while a publish is in flight, so the TTL is kept small and a
// miss is never an error.
type StatusCache struct {
	rc *redis.Client
}

func New(redisURI string) (*StatusCache, error) {
	opt, err := redis.ParseURL(redisURI)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &StatusCache{rc: rc}, nil
}

func statusKey(postID int64) string {
	return fmt.Sprintf("post:status:%d", postID)
}

// GetStatus unmarshals a cached status payload into dest. ok is false on a
// miss or any redis error.
func (c *StatusCache) GetStatus(ctx context.Context, postID int64, dest any) bool {
	bs, err := c.rc.Get(ctx, statusKey(postID)).Bytes()
	if err != nil || len(bs) == 0 {
		return false
	}
	return json.Unmarshal(bs, dest) == nil
}

func (c *StatusCache) SetStatus(ctx context.Context, postID int64, value any) {
	bs, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = c.rc.Set(ctx, statusKey(postID), bs, statusTTL).Err()
}

// Invalidate drops the cached status after a write so readers do not see a
// stale snapshot for the full TTL.
func (c *StatusCache) Invalidate(ctx context.Context, postID int64) {
	_ = c.rc.Del(ctx, statusKey(postID)).Err()
}

func (c *StatusCache) Close() error {
	return c.rc.Close()
}
