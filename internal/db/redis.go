package db

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/technest/technest-api/internal/config"
)

const redisPingTimeout = 5 * time.Second

// OpenRedis connects to redis. It returns a nil client when no address is
// configured.
func OpenRedis(conf *config.RedisConfig) (*redis.Client, error) {
	if conf == nil || conf.Addr == "" {
		zap.L().Warn("redis not configured, token revocation disabled")
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping -> %w", err)
	}

	zap.L().Info("connected to redis", zap.String("addr", conf.Addr))

	return client, nil
}
