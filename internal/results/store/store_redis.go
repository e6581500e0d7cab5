package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bigfive/internal/results/models"
)

const (
	recordKeyPrefix = "gz:result:"
	hashKeyPrefix   = "gz:result-hash:"
)

// RecordKey is the key a record is stored under.
func RecordKey(id string) string { return recordKeyPrefix + id }

// HashKey is the key of the suite hash index entry.
func HashKey(hash string) string { return hashKeyPrefix + hash }

// RedisStore keeps records as JSON strings and a hash to id index. Both keys
// are written with SET NX, so the index keeps the first record of a hash.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, r models.Record) error {
	raw, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	err = s.client.SetArgs(ctx, RecordKey(r.ID), raw, redis.SetArgs{Mode: "NX"}).Err()
	if errors.Is(err, redis.Nil) {
		return ErrConflict
	}
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	if r.SuiteHash == "" {
		return nil
	}
	if err := s.client.SetNX(ctx, HashKey(r.SuiteHash), r.ID, 0).Err(); err != nil {
		return fmt.Errorf("index result: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Record, error) {
	raw, err := s.client.Get(ctx, RecordKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	var r models.Record
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}

func (s *RedisStore) FindByHash(ctx context.Context, hash string) (string, error) {
	id, err := s.client.Get(ctx, HashKey(hash)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("find result: %w", err)
	}
	return id, nil
}
