package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/seralind/toolloop/chat"
)

const defaultSessionTTL = 24 * time.Hour

// RedisStore keeps each transcript in a Redis list, one JSON entry per
// message, expiring idle sessions after the TTL.
type RedisStore struct {
	db  redis.Cmdable
	ttl time.Duration
}

// NewRedisStore wraps an existing client; ttl <= 0 uses the default.
func NewRedisStore(db redis.Cmdable, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisStore{db: db, ttl: ttl}
}

// DialRedis parses a redis:// or rediss:// URL and returns a client.
func DialRedis(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func sessionKey(id string) string {
	return fmt.Sprintf("conversation:%s:messages", id)
}

// Save replaces the stored transcript and refreshes its TTL.
func (s *RedisStore) Save(ctx context.Context, id string, msgs []chat.Message) error {
	key := sessionKey(id)
	vals := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
		vals = append(vals, b)
	}
	pipe := s.db.TxPipeline()
	pipe.Del(ctx, key)
	if len(vals) > 0 {
		pipe.RPush(ctx, key, vals...)
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save transcript %s: %w", id, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) ([]chat.Message, error) {
	rows, err := s.db.LRange(ctx, sessionKey(id), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load transcript %s: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	msgs := make([]chat.Message, 0, len(rows))
	for _, row := range rows {
		var m chat.Message
		if err := json.Unmarshal([]byte(row), &m); err != nil {
			return nil, fmt.Errorf("decode transcript %s: %w", id, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

var _ Store = (*RedisStore)(nil)
