package draft

import (
	"context"
	"encoding/json"
	"time"

	"empanadas/internal/combo"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

// RedisRepository stores each draft as a JSON string that expires on its
// own, so PurgeOlderThan has nothing to do.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRepository(client *redis.Client, ttl time.Duration) *RedisRepository {
	return &RedisRepository{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and pings the server.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parse REDIS_URL")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrap(err, "redis ping")
	}
	return client, nil
}

func (r *RedisRepository) Get(ctx context.Context, sessionID string, comboID int) (*combo.Draft, error) {
	raw, err := r.client.Get(ctx, key(sessionID, comboID)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "redis get draft")
	}

	var d combo.Draft
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, errors.Wrap(err, "decode draft")
	}
	return &d, nil
}

func (r *RedisRepository) Save(ctx context.Context, d *combo.Draft) error {
	raw, err := json.Marshal(d)
	if err != nil {
		return err
	}
	return errors.Wrap(
		r.client.Set(ctx, key(d.SessionID, d.ComboID), raw, r.ttl).Err(),
		"redis set draft",
	)
}

func (r *RedisRepository) Delete(ctx context.Context, sessionID string, comboID int) error {
	return errors.Wrap(
		r.client.Del(ctx, key(sessionID, comboID)).Err(),
		"redis delete draft",
	)
}

func (r *RedisRepository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}
