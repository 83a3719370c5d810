package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/config"
	"github.com/crispai/crisp-backend/internal/model"
	"github.com/crispai/crisp-backend/internal/repository"
)

// CandidateStore is the slice of the candidate repository the worker needs.
// *repository.CandidateRepository implements it; tests substitute an
// in-memory fake.
type CandidateStore interface {
	Find(ctx context.Context, email, sessionID string) (*model.Candidate, error)
	Upsert(ctx context.Context, c *model.Candidate) error
}

// CheckpointWorker consumes queued candidate checkpoints and upserts them to
// PostgreSQL. Checkpoints are written best-effort: producers never wait on
// the database, and a failed write goes back on the queue.
type CheckpointWorker struct {
	repo CandidateStore
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewCheckpointWorker creates a new CheckpointWorker.
func NewCheckpointWorker(repo CandidateStore, rdb *redis.Client, log zerolog.Logger) *CheckpointWorker {
	return &CheckpointWorker{
		repo: repo,
		rdb:  rdb,
		log:  log.With().Str("component", "checkpoint_worker").Logger(),
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *CheckpointWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *CheckpointWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.WorkerKey.CheckpointQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	if err := w.persist(ctx, result[1]); err != nil {
		w.log.Error().Err(err).Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.WorkerKey.CheckpointQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *CheckpointWorker) persist(ctx context.Context, raw string) error {
	var c model.Candidate
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		// A checkpoint that never decodes would cycle forever; drop it.
		w.log.Error().Err(err).Msg("Dropping undecodable checkpoint")
		return nil
	}

	existing, err := w.repo.Find(ctx, c.Email, c.SessionID)
	switch {
	case err == nil && existing.Status == model.CandidateStatusCompleted && c.Status == model.CandidateStatusInProgress:
		// A stale in-progress checkpoint must never roll back a completed
		// record. Queue order is not guaranteed across retries.
		w.log.Debug().Str("session_id", c.SessionID).Msg("Skipping stale checkpoint for completed record")
		return nil
	case errors.Is(err, repository.ErrCandidateNotFound) && (c.Name == "" || c.Email == ""):
		// A new record needs at least a name and an email; checkpoints taken
		// before field collection finished wait for a later, fuller one.
		w.log.Debug().Str("session_id", c.SessionID).Msg("Skipping checkpoint without a complete identity")
		return nil
	case err != nil && !errors.Is(err, repository.ErrCandidateNotFound):
		return err
	}

	return w.repo.Upsert(ctx, &c)
}

// drain processes all remaining items in the queue before shutdown.
func (w *CheckpointWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.WorkerKey.CheckpointQueue).Result()
		if err != nil {
			break
		}

		if err := w.persist(ctx, result); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.WorkerKey.CheckpointQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining checkpoints")
	}
}
