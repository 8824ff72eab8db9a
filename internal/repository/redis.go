package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lucidplay/crashgate/internal/config"
	"github.com/lucidplay/crashgate/internal/identity"
	"github.com/lucidplay/crashgate/internal/model"
)

const identityKeyPrefix = "identity:token:"

// RedisClient backs the identity token store and the external history
// cache that other display surfaces read from.
type RedisClient struct {
	Client     *redis.Client
	historyKey string
	historyMax int
}

func NewRedisClient(cfg *config.Config) (*RedisClient, error) {
	if cfg.Redis.Addr == "" {
		return nil, fmt.Errorf("redis address is empty")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisClient{
		Client:     rdb,
		historyKey: cfg.Redis.HistoryKey,
		historyMax: cfg.Redis.HistoryMax,
	}, nil
}

// Resolve implements identity.Provider: tokens live under
// identity:token:<token> with the user id as value.
func (r *RedisClient) Resolve(ctx context.Context, token string) (string, error) {
	userID, err := r.Client.Get(ctx, identityKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", identity.ErrUnknownToken
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}

// PushHistory prepends a finished round to the shared display list,
// trimming it to the configured bound.
func (r *RedisClient) PushHistory(ctx context.Context, entry model.HistoryEntry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	pipe := r.Client.Pipeline()
	pipe.LPush(ctx, r.historyKey, raw)
	pipe.LTrim(ctx, r.historyKey, 0, int64(r.historyMax-1))
	_, err = pipe.Exec(ctx)
	return err
}
