// cache реализует рейт-лимитер создания ответов поверх Redis.
// Схема — фиксированное окно: INCR по ключу пользователя + EXPIRE
// на первом инкременте окна.
package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ReplyLimiter — минимальный контракт лимитера ответов.
// nil-значение интерфейса трактуется вызывающим кодом как «без лимита».
type ReplyLimiter interface {
	// Allow инкрементирует счётчик окна пользователя и сообщает,
	// разрешена ли ещё одна публикация.
	Allow(ctx context.Context, userID uuid.UUID) (bool, error)
	// Close закрывает клиент Redis.
	Close() error
}

type redisLimiter struct {
	rdb    *redis.Client
	prefix string
	limit  int64
	window time.Duration
}

// NewRedisLimiter создаёт лимитер из URL (например, redis://:pass@host:6379/0).
// Если prefix пустой — используется "forum:rl:".
func NewRedisLimiter(redisURL, prefix string, limit int, window time.Duration) (ReplyLimiter, error) {
	if prefix == "" {
		prefix = "forum:rl:"
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &redisLimiter{
		rdb:    rdb,
		prefix: prefix,
		limit:  int64(limit),
		window: window,
	}, nil
}

func (l *redisLimiter) key(userID uuid.UUID) string { return l.prefix + userID.String() }

func (l *redisLimiter) Allow(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := l.key(userID)

	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, key)
	// NX: TTL выставляется только при открытии окна, повторные инкременты
	// окно не продлевают.
	pipe.ExpireNX(ctx, key, l.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return incr.Val() <= l.limit, nil
}

func (l *redisLimiter) Close() error { return l.rdb.Close() }
