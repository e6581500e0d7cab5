package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bigfive/internal/assessment"
)

// RedisKey is the key a suite is stored under.
func RedisKey(hash string) string {
	return "gz:run:" + hash
}

// RedisStore keeps suites as canonical JSON strings.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save writes with SET NX so the first writer wins.
func (s *RedisStore) Save(ctx context.Context, hash string, suite assessment.SuiteResult) error {
	raw, err := json.Marshal(suite)
	if err != nil {
		return fmt.Errorf("encode suite: %w", err)
	}
	if err := s.client.SetArgs(ctx, RedisKey(hash), raw, redis.SetArgs{Mode: "NX"}).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, hash string) (*assessment.SuiteResult, error) {
	raw, err := s.client.Get(ctx, RedisKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	var suite assessment.SuiteResult
	if err := json.Unmarshal(raw, &suite); err != nil {
		return nil, fmt.Errorf("decode run: %w", err)
	}
	return &suite, nil
}
