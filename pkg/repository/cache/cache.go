package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turfhub/tg_turf_bot/pkg/client/turfapi"
	"github.com/turfhub/tg_turf_bot/pkg/utils/errs"
)

const turfsKey = "turfs:catalog"

type Config struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Cache is a short-TTL redis cache for the turf catalogue. Slot data is
// never cached here: availability must always come from the API.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func New(ctx context.Context, cfg Config) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, errs.New("redis ping failed").Arg("addr", cfg.Addr).Wrap(err)
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &Cache{client: client, ttl: ttl}, nil
}

// GetTurfs returns the cached catalogue, or nil on a miss.
func (c *Cache) GetTurfs(ctx context.Context) ([]turfapi.Turf, error) {
	val, err := c.client.Get(ctx, turfsKey).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var turfs []turfapi.Turf
	if err := json.Unmarshal([]byte(val), &turfs); err != nil {
		return nil, err
	}
	return turfs, nil
}

func (c *Cache) SetTurfs(ctx context.Context, turfs []turfapi.Turf) error {
	data, err := json.Marshal(turfs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, turfsKey, data, c.ttl).Err()
}

func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}
