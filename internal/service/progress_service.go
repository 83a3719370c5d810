package service

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/interview"
	"github.com/crispai/crisp-backend/internal/model"
)

// ErrNothingToSave is returned when a progress snapshot carries neither an
// email nor a session id, leaving the worker no key to upsert on.
var ErrNothingToSave = errors.New("progress snapshot has no upsert key")

// ProgressService handles mid-interview durability: client-pushed progress
// snapshots and chat transcript updates. Snapshots are queued, not written
// inline — the client fires them on every answer and never waits on the
// database.
type ProgressService struct {
	repo        CandidateStore
	checkpoints CheckpointEnqueuer
	log         zerolog.Logger
}

// NewProgressService creates a ProgressService.
func NewProgressService(repo CandidateStore, checkpoints CheckpointEnqueuer, log zerolog.Logger) *ProgressService {
	return &ProgressService{
		repo:        repo,
		checkpoints: checkpoints,
		log:         log.With().Str("component", "progress_service").Logger(),
	}
}

// SaveProgress queues one in-progress snapshot for background persistence.
func (s *ProgressService) SaveProgress(ctx context.Context, req *model.SaveProgressRequest) error {
	c := model.Candidate{
		SessionID:        req.SessionID,
		ResumeText:       req.ResumeText,
		PreInterviewChat: req.PreInterviewChat,
		Questions:        interview.Renumber(req.Questions),
		Status:           model.CandidateStatusInProgress,
	}
	if req.Profile != nil {
		c.Name = req.Profile.Name
		c.Email = req.Profile.Email
		c.Phone = req.Profile.Phone
		c.Designation = req.Profile.Designation
		c.Location = req.Profile.Location
		c.Github = req.Profile.Github
		c.Linkedin = req.Profile.Linkedin
	}
	if c.Email == "" && c.SessionID == "" {
		return ErrNothingToSave
	}

	if err := s.checkpoints.Enqueue(ctx, c); err != nil {
		s.log.Error().Err(err).Str("session_id", req.SessionID).Msg("failed to queue progress snapshot")
		return err
	}
	return nil
}

// UpdateChat replaces the stored chat transcript for a candidate. Unlike
// progress snapshots this writes through: the transcript only changes on
// explicit user messages, which are rare enough to take the round trip.
func (s *ProgressService) UpdateChat(ctx context.Context, email string, messages []model.ChatMessage) error {
	return s.repo.UpdateChat(ctx, email, messages)
}
