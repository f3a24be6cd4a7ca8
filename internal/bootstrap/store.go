package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/msksk8cool/sk8school-bot/internal/config"
	"github.com/msksk8cool/sk8school-bot/pkg/store"
	"github.com/sirupsen/logrus"
)

// InitRedis connects to Redis, retrying the first ping with exponential backoff.
func InitRedis(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.RedisAddr(),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.NewExponentialBackOff()
	if cfg.RedisRetryDelayMs > 0 {
		b.InitialInterval = time.Duration(cfg.RedisRetryDelayMs) * time.Millisecond
	}
	maxRetries := backoff.WithMaxRetries(backoff.WithContext(b, ctx), uint64(cfg.RedisMaxRetries))

	err := backoff.Retry(
		func() error {
			_, err := client.Ping(ctx).Result()
			if err != nil {
				logrus.Warnf("Redis connection failed: %v, retrying...", err)
				return err
			}
			return nil
		},
		maxRetries,
	)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr(), err)
	}

	logrus.Infof("Redis client initialized (%s db %d)", cfg.RedisAddr(), cfg.RedisDB)
	return client, nil
}

// InitStore opens the record store selected by STORE_BACKEND. The Redis
// client is returned for reuse by other components; it is nil unless the
// redis backend was chosen.
func InitStore(ctx context.Context, cfg *config.Config) (store.Backend, *redis.Client, error) {
	switch cfg.StoreBackend {
	case config.StoreRedis:
		client, err := InitRedis(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		logrus.Info("using redis record store")
		return store.NewRedisBackend(client), client, nil

	case config.StorePostgres:
		backend, err := store.NewPostgresBackend(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open postgres store: %w", err)
		}
		logrus.Info("using postgres record store")
		return backend, nil, nil

	case config.StoreFile, "":
		backend, err := store.NewFileBackend(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logrus.Infof("using file record store in %s", cfg.DataDir)
		return backend, nil, nil
	}

	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
}
