package redis

import (
	"context"
	"fmt"
	"sync"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/fakhrymubarak/weather-search/internal/config"
)

var (
	client *redisv9.Client
	once   sync.Once
)

// GetClient returns the process-wide client for the configured redis.addr.
func GetClient() *redisv9.Client {
	once.Do(func() {
		client = redisv9.NewClient(&redisv9.Options{
			Addr: config.GetRedisAddr(),
		})
	})
	return client
}

// Ping checks that the configured server answers.
func Ping(ctx context.Context) error {
	if err := GetClient().Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", config.GetRedisAddr(), err)
	}
	return nil
}

// ResetClientForTest resets the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	if client != nil {
		_ = client.Close()
	}
	once = sync.Once{}
	client = nil
}
