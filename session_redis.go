package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultSessionPrefix = "session:"

// RedisSessionStore keeps the per-user session record in Redis. SET with a
// TTL and DEL are atomic per key, which is all the single-session contract
// needs: a login racing a logout resolves to whichever command lands last.
type RedisSessionStore struct {
	client *redis.Client
	prefix string
}

var _ SessionStore = (*RedisSessionStore)(nil)

// NewRedisSessionStore creates a Redis-backed session store
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{
		client: client,
		prefix: defaultSessionPrefix,
	}
}

// WithPrefix overrides the key prefix
func (r *RedisSessionStore) WithPrefix(prefix string) *RedisSessionStore {
	if prefix != "" {
		r.prefix = prefix
	}
	return r
}

func (r *RedisSessionStore) key(userID string) string {
	return r.prefix + userID
}

// Put replaces the session record for userID and resets its expiry
func (r *RedisSessionStore) Put(ctx context.Context, userID, token string, ttl time.Duration) error {
	return r.client.Set(ctx, r.key(userID), token, ttl).Err()
}

// Get returns the current token for userID, or "" when absent or expired
func (r *RedisSessionStore) Get(ctx context.Context, userID string) (string, error) {
	val, err := r.client.Get(ctx, r.key(userID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

// Delete removes the record for userID; deleting an absent key is a no-op
func (r *RedisSessionStore) Delete(ctx context.Context, userID string) error {
	return r.client.Del(ctx, r.key(userID)).Err()
}
