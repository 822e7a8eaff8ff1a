package repository

import (
	"context"
	"sort"

	"github.com/redis/go-redis/v9"
)

const (
	scanBatch   = 500
	deleteBatch = 500
)

type queueRepository struct {
	client *redis.Client
}

// NewQueueRepository inspects the Redis keys the background job queue writes.
func NewQueueRepository(client *redis.Client) QueueRepository {
	return &queueRepository{client: client}
}

func (r *queueRepository) ListLength(ctx context.Context, key string) (int64, error) {
	return r.client.LLen(ctx, key).Result()
}

// ScanKeys walks the keyspace with SCAN for every pattern and returns the
// distinct matches sorted.
func (r *queueRepository) ScanKeys(ctx context.Context, patterns ...string) ([]string, error) {
	seen := make(map[string]struct{})
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		iter := r.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
		for iter.Next(ctx) {
			seen[iter.Val()] = struct{}{}
		}
		if err := iter.Err(); err != nil {
			return nil, err
		}
	}

	keys := make([]string, 0, len(seen))
	for key := range seen {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// DeleteKeys removes keys in batches and returns how many existed.
func (r *queueRepository) DeleteKeys(ctx context.Context, keys []string) (int64, error) {
	var deleted int64
	for start := 0; start < len(keys); start += deleteBatch {
		end := min(start+deleteBatch, len(keys))
		n, err := r.client.Del(ctx, keys[start:end]...).Result()
		if err != nil {
			return deleted, err
		}
		deleted += n
	}
	return deleted, nil
}
