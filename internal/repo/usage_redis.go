package repo

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisUsageStore — счётчики показов в Redis. Increment атомарен (INCR),
// поэтому каждый показ получает своё значение счётчика.
type RedisUsageStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisUsageStore подключается к Redis и проверяет соединение.
// ttl > 0 ограничивает время жизни счётчика с момента первого показа и не продлевается.
// После истечения счётчик обнуляется, поэтому ttl должен превышать срок жизни кодов.
func NewRedisUsageStore(options *redis.Options, ttl time.Duration) (*RedisUsageStore, error) {
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisUsageStore{client: client, ttl: ttl}, nil
}

// Current возвращает счётчик; отсутствующий ключ — 0.
func (s *RedisUsageStore) Current(ctx context.Context, containerID string) (int, error) {
	n, err := s.client.Get(ctx, usageKey(containerID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// Increment увеличивает счётчик. TTL ставится только новому ключу (EXPIRE NX, Redis 7+).
func (s *RedisUsageStore) Increment(ctx context.Context, containerID string) (int, error) {
	key := usageKey(containerID)
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		if s.ttl > 0 {
			pipe.ExpireNX(ctx, key, s.ttl)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

// Close закрывает клиент.
func (s *RedisUsageStore) Close() error {
	return s.client.Close()
}

func usageKey(id string) string {
	return "usage:" + id
}
