package override

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "prio:overrides:"

// RedisRepository stores each user's overrides in one hash, field = task id.
type RedisRepository struct {
	client redis.UniversalClient
}

func NewRedisRepository(client redis.UniversalClient) *RedisRepository {
	return &RedisRepository{client: client}
}

// DialRedis parses a redis:// URL and returns a connected repository.
func DialRedis(ctx context.Context, url string) (*RedisRepository, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisRepository(client), nil
}

// Close releases the underlying client.
func (r *RedisRepository) Close() error {
	return r.client.Close()
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

func (r *RedisRepository) Get(ctx context.Context, userID, taskID string) (Override, bool, error) {
	raw, err := r.client.HGet(ctx, redisKey(userID), taskID).Result()
	if errors.Is(err, redis.Nil) {
		return Override{}, false, nil
	}
	if err != nil {
		return Override{}, false, fmt.Errorf("reading override %s/%s: %w", userID, taskID, err)
	}
	var ov Override
	if err := json.Unmarshal([]byte(raw), &ov); err != nil {
		return Override{}, false, fmt.Errorf("decoding override %s/%s: %w", userID, taskID, err)
	}
	return ov, true, nil
}

func (r *RedisRepository) Set(ctx context.Context, userID, taskID string, ov Override) error {
	if err := validateKey(userID, taskID); err != nil {
		return err
	}
	payload, err := json.Marshal(ov)
	if err != nil {
		return fmt.Errorf("encoding override: %w", err)
	}
	if err := r.client.HSet(ctx, redisKey(userID), taskID, payload).Err(); err != nil {
		return fmt.Errorf("writing override %s/%s: %w", userID, taskID, err)
	}
	return nil
}

// SetAll writes the batch with a single HSET.
func (r *RedisRepository) SetAll(ctx context.Context, userID string, batch map[string]Override) error {
	if err := validateBatch(userID, batch); err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}
	fields := make(map[string]any, len(batch))
	for taskID, ov := range batch {
		payload, err := json.Marshal(ov)
		if err != nil {
			return fmt.Errorf("encoding override: %w", err)
		}
		fields[taskID] = payload
	}
	if err := r.client.HSet(ctx, redisKey(userID), fields).Err(); err != nil {
		return fmt.Errorf("writing overrides for %s: %w", userID, err)
	}
	return nil
}

func (r *RedisRepository) All(ctx context.Context, userID string) (map[string]Override, error) {
	raw, err := r.client.HGetAll(ctx, redisKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("listing overrides: %w", err)
	}
	out := make(map[string]Override, len(raw))
	for taskID, v := range raw {
		var ov Override
		if err := json.Unmarshal([]byte(v), &ov); err != nil {
			return nil, fmt.Errorf("decoding override %s/%s: %w", userID, taskID, err)
		}
		out[taskID] = ov
	}
	return out, nil
}
