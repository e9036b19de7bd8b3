package service

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	debounceKey     = "schedule:tick:last_run"
	minTickInterval = 4 * time.Minute
	debounceTTL     = time.Hour
)

// RedisDebounce is the shared last-run record for the schedule tick. It is
// deliberately external state: multiple worker processes may restart
// independently and each registers its own repeat job.
type RedisDebounce struct {
	rdb *redis.Client
}

func NewRedisDebounce(rdb *redis.Client) *RedisDebounce {
	return &RedisDebounce{rdb: rdb}
}

func (d *RedisDebounce) ShouldRun(ctx context.Context) bool {
	val, err := d.rdb.Get(ctx, debounceKey).Result()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		// Fail open: availability beats strict duplicate prevention.
		slog.Info("debounce check failed, allowing run", "error", err.Error())
		return true
	}

	lastRun, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return true
	}

	elapsed := time.Since(time.UnixMilli(lastRun))
	return elapsed >= minTickInterval
}

func (d *RedisDebounce) MarkRun(ctx context.Context) {
	val := strconv.FormatInt(time.Now().UnixMilli(), 10)
	if err := d.rdb.Set(ctx, debounceKey, val, debounceTTL).Err(); err != nil {
		slog.Info("failed to mark debounce run", "error", err.Error())
	}
}
