package cache

import (
	"context"
	"time"
)

const runLockKey = "renewal:run_lock"

// RedisRunLock candado distribuido SET NX + TTL: un solo barrido de
// renovación a la vez aunque corran varios procesos
type RedisRunLock struct {
	ttl time.Duration
}

// NewRedisRunLock crea el candado con su TTL de seguridad
func NewRedisRunLock(ttl time.Duration) *RedisRunLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRunLock{ttl: ttl}
}

// Acquire intenta tomar el candado; false si otro proceso lo tiene
func (l *RedisRunLock) Acquire(ctx context.Context) (bool, error) {
	if !Enabled() {
		return true, nil
	}
	return redisClient.SetNX(ctx, buildKey(runLockKey), time.Now().Unix(), l.ttl).Result()
}

// Release libera el candado
func (l *RedisRunLock) Release(ctx context.Context) {
	if !Enabled() {
		return
	}
	redisClient.Del(ctx, buildKey(runLockKey))
}
