package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/blog-api/internal/model"
)

// allPostsKey 全量帖子快照的固定槽位，所有用户共享。
const allPostsKey = "all_posts"

// PostCollectionCache holds a single expiring snapshot of the full post
// collection. It is populated on read misses and deleted on every
// mutation; it never accumulates state.
type PostCollectionCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPostCollectionCache builds a cache over the provided Redis client.
// ttl is the freshness window applied on every (re)population.
func NewPostCollectionCache(client *redis.Client, ttl time.Duration) *PostCollectionCache {
	return &PostCollectionCache{client: client, ttl: ttl}
}

// GetAll returns the cached snapshot. ok is false on a miss; err is
// non-nil only when Redis itself failed or the payload is corrupt.
func (c *PostCollectionCache) GetAll(ctx context.Context) ([]model.Post, bool, error) {
	data, err := c.client.Get(ctx, allPostsKey).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var posts []model.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, false, err
	}
	return posts, true, nil
}

// SetAll overwrites the snapshot slot with the given collection and
// resets its TTL. Concurrent writers race benignly; last TTL wins.
func (c *PostCollectionCache) SetAll(ctx context.Context, posts []model.Post) error {
	payload, err := json.Marshal(posts)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, allPostsKey, payload, c.ttl).Err()
}

// Invalidate drops the snapshot. Deleting an absent key is a no-op.
func (c *PostCollectionCache) Invalidate(ctx context.Context) error {
	return c.client.Del(ctx, allPostsKey).Err()
}
