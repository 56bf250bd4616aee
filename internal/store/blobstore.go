// Package store provides the durable byte stores backing documents, index
// artifacts and status records, all keyed by session.
package store

import (
	"context"
	"errors"
	"fmt"

	redisv9 "github.com/redis/go-redis/v9"
)

var (
	ErrNotFound = errors.New("key not found")
)

// BlobStore is a key-value byte store. Documents and index artifacts live in
// separate BlobStore namespaces.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete is idempotent: deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// DeletePrefix removes every key under the given prefix.
	DeletePrefix(ctx context.Context, prefix string) error
	// Increment atomically adds n to the integer stored at key (absent
	// counts as zero) and returns the new value. The stored form stays
	// readable through Get as a decimal string.
	Increment(ctx context.Context, key string, n int64) (int64, error)
}

// RedisBlobStore stores blobs in Redis under namespace:key.
type RedisBlobStore struct {
	client    *redisv9.Client
	namespace string
}

func NewRedisBlobStore(client *redisv9.Client, namespace string) *RedisBlobStore {
	return &RedisBlobStore{client: client, namespace: namespace}
}

func (s *RedisBlobStore) fullKey(key string) string {
	return s.namespace + ":" + key
}

func (s *RedisBlobStore) Put(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, s.fullKey(key), data, 0).Err(); err != nil {
		return fmt.Errorf("redis put %s failed: %w", key, err)
	}
	return nil
}

func (s *RedisBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err == redisv9.Nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s failed: %w", key, err)
	}
	return raw, nil
}

func (s *RedisBlobStore) Increment(ctx context.Context, key string, n int64) (int64, error) {
	total, err := s.client.IncrBy(ctx, s.fullKey(key), n).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incrby %s failed: %w", key, err)
	}
	return total, nil
}

func (s *RedisBlobStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.fullKey(key)).Err(); err != nil {
		return fmt.Errorf("redis delete %s failed: %w", key, err)
	}
	return nil
}

func (s *RedisBlobStore) DeletePrefix(ctx context.Context, prefix string) error {
	iter := s.client.Scan(ctx, 0, s.fullKey(prefix)+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis delete %s failed: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan prefix %s failed: %w", prefix, err)
	}
	return nil
}
