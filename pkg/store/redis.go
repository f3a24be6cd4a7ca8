// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package store

import (
	"context"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// KeyPrefix is the prefix for all document keys
const KeyPrefix = "sk8school:store:"

// RedisBackend stores each document as one string key without expiry.
type RedisBackend struct {
	client *redis.Client
}

// NewRedisBackend wraps an already connected client.
func NewRedisBackend(client *redis.Client) *RedisBackend {
	return &RedisBackend{client: client}
}

// makeKey creates a Redis key for a document
func makeKey(name string) string {
	return fmt.Sprintf("%s%s", KeyPrefix, name)
}

// Load retrieves the document body.
func (r *RedisBackend) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := r.client.Get(ctx, makeKey(name)).Bytes()
	if err == redis.Nil {
		logrus.Debugf("no stored document %s", name)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", name, err)
	}
	return data, nil
}

// Save overwrites the document body.
func (r *RedisBackend) Save(ctx context.Context, name string, data []byte) error {
	if err := r.client.Set(ctx, makeKey(name), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set document %s: %w", name, err)
	}
	return nil
}

func (r *RedisBackend) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close is a no-op; the client is owned by the caller.
func (r *RedisBackend) Close() error {
	return nil
}
