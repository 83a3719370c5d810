package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/config"
	"github.com/crispai/crisp-backend/internal/model"
)

// CheckpointEnqueuer publishes candidate checkpoints for background
// persistence. Enqueue failures are the caller's to log and swallow — a lost
// checkpoint never fails the interview step that produced it.
type CheckpointEnqueuer interface {
	Enqueue(ctx context.Context, c model.Candidate) error
}

// RedisCheckpointQueue pushes checkpoints onto the worker's Redis list.
type RedisCheckpointQueue struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisCheckpointQueue creates a RedisCheckpointQueue.
func NewRedisCheckpointQueue(rdb *redis.Client, log zerolog.Logger) *RedisCheckpointQueue {
	return &RedisCheckpointQueue{
		rdb: rdb,
		log: log.With().Str("component", "checkpoint_queue").Logger(),
	}
}

// Enqueue appends one checkpoint to the queue.
func (q *RedisCheckpointQueue) Enqueue(ctx context.Context, c model.Candidate) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode checkpoint: %w", err)
	}
	if err := q.rdb.RPush(ctx, config.WorkerKey.CheckpointQueue, raw).Err(); err != nil {
		return fmt.Errorf("enqueue checkpoint: %w", err)
	}
	return nil
}
