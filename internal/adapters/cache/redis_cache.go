package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	redis "github.com/redis/go-redis/v9"

	domain "github.com/metkashop/metka-miniapp/internal/domain/delivery"
)

type RedisCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

func NewRedisCache(cfg RedisConfig) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &RedisCache{
		rdb:    rdb,
		prefix: cfg.Prefix,
		ttl:    cfg.TTL,
	}
}

func (c *RedisCache) makeKey(cityCode int) string {
	return c.prefix + strconv.Itoa(cityCode)
}

func (c *RedisCache) Set(cityCode int, points []domain.PickupPoint) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	data, err := json.Marshal(points)
	if err != nil {
		return err
	}

	return c.rdb.Set(ctx, c.makeKey(cityCode), data, c.ttl).Err()
}

func (c *RedisCache) Get(cityCode int) ([]domain.PickupPoint, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	b, err := c.rdb.Get(ctx, c.makeKey(cityCode)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrMiss
		}
		return nil, err
	}

	var points []domain.PickupPoint
	if err := json.Unmarshal(b, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *RedisCache) Delete(cityCode int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return c.rdb.Del(ctx, c.makeKey(cityCode)).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
