package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	redisKeyPrefix   = "storefront:lock:"
	redisPollDelay   = 25 * time.Millisecond
	redisReleaseWait = 2 * time.Second
)

// releaseScript удаляет ключ, только если он всё ещё принадлежит владельцу токена.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// renewScript продлевает ключ, только если он всё ещё принадлежит владельцу токена.
var renewScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// RedisLocker реализует Locker поверх Redis для нескольких экземпляров сервиса.
// Пока блокировка удерживается, её ttl продлевается каждые ttl/3.
// Если владелец завис или упал, блокировка истекает не позже чем через ttl.
type RedisLocker struct {
	rdb    *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisLocker подключается к Redis и проверяет соединение.
func NewRedisLocker(addr string, ttl time.Duration, logger *zap.Logger) (*RedisLocker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &RedisLocker{rdb: rdb, ttl: ttl, logger: logger}, nil
}

// Lock опрашивает Redis, пока ключ не будет захвачен или контекст не будет отменён.
func (r *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	redisKey := redisKeyPrefix + key
	token := uuid.NewString()

	for {
		ok, err := r.rdb.SetNX(ctx, redisKey, token, r.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(redisPollDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go r.keepAlive(redisKey, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			releaseCtx, cancel := context.WithTimeout(context.Background(), redisReleaseWait)
			defer cancel()

			n, err := releaseScript.Run(releaseCtx, r.rdb, []string{redisKey}, token).Int()
			switch {
			case err != nil:
				r.logger.Error("release redis lock", zap.String("key", key), zap.Error(err))
			case n == 0:
				r.logger.Warn("redis lock was lost before release", zap.String("key", key))
			}
		})
	}, nil
}

// keepAlive продлевает блокировку, пока не закрыт stop или блокировка не потеряна.
func (r *RedisLocker) keepAlive(redisKey, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(max(r.ttl/3, time.Millisecond))
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), redisReleaseWait)
		n, err := renewScript.Run(ctx, r.rdb, []string{redisKey}, token, r.ttl.Milliseconds()).Int()
		cancel()

		switch {
		case err != nil:
			r.logger.Warn("renew redis lock", zap.String("key", redisKey), zap.Error(err))
		case n == 0:
			r.logger.Warn("redis lock expired while held", zap.String("key", redisKey))
			return
		}
	}
}

// Close закрывает соединение с Redis.
func (r *RedisLocker) Close() error {
	return r.rdb.Close()
}
