package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/interview"
	"github.com/crispai/crisp-backend/internal/model"
	"github.com/crispai/crisp-backend/internal/repository"
)

// CandidateStore is the persistence surface for candidate records.
// *repository.CandidateRepository implements it; tests substitute an
// in-memory fake.
type CandidateStore interface {
	Upsert(ctx context.Context, c *model.Candidate) error
	Find(ctx context.Context, email, sessionID string) (*model.Candidate, error)
	GetByID(ctx context.Context, id string) (*model.Candidate, error)
	List(ctx context.Context, search, sortBy, order string) ([]model.CandidateListItem, error)
	UpdateChat(ctx context.Context, email string, chat []model.ChatMessage) error
	UpdateTotalScore(ctx context.Context, id string, totalScore int) error
	Delete(ctx context.Context, id string) error
}

// CheckResult is the outcome of a returning-candidate lookup.
type CheckResult struct {
	Exists    bool             `json:"exists"`
	Candidate *model.Candidate `json:"candidate,omitempty"`
}

// CandidateService owns the durable candidate records behind the review
// screens.
type CandidateService struct {
	repo CandidateStore
	log  zerolog.Logger
}

// NewCandidateService creates a CandidateService.
func NewCandidateService(repo CandidateStore, log zerolog.Logger) *CandidateService {
	return &CandidateService{
		repo: repo,
		log:  log.With().Str("component", "candidate_service").Logger(),
	}
}

// Save writes the final interview record. The write is an upsert keyed by
// email or session id, so a retried save after a network error lands on the
// same record instead of duplicating it. A zero or out-of-range total is
// replaced by the mean of the per-question scores before anything is stored.
func (s *CandidateService) Save(ctx context.Context, req *model.SaveCandidateRequest) (*model.Candidate, error) {
	questions := interview.Renumber(req.Questions)
	now := time.Now()

	c := &model.Candidate{
		SessionID:        req.SessionID,
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Designation:      req.Designation,
		Location:         req.Location,
		Github:           req.Github,
		Linkedin:         req.Linkedin,
		ResumeText:       req.ResumeText,
		PreInterviewChat: req.PreInterviewChat,
		Questions:        questions,
		TotalScore:       interview.FinalScore(req.TotalScore, questions),
		Summary:          req.Summary,
		Status:           model.CandidateStatusCompleted,
		CompletedAt:      &now,
	}

	if err := s.repo.Upsert(ctx, c); err != nil {
		s.log.Error().Err(err).Str("email", c.Email).Msg("failed to save candidate")
		return nil, err
	}

	s.log.Info().
		Str("candidate_id", c.ID.String()).
		Int("total_score", c.TotalScore).
		Msg("Candidate saved")
	return c, nil
}

// List retrieves the interviewer dashboard listing. Completed rows carrying a
// zero total but graded answers are healed the same way Get heals them, so the
// dashboard never shows 0/100 for a candidate persisted before their summary
// arrived.
func (s *CandidateService) List(ctx context.Context, search, sortBy, order string) ([]model.CandidateListItem, error) {
	items, err := s.repo.List(ctx, search, sortBy, order)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to list candidates")
		return nil, err
	}

	for i := range items {
		it := &items[i]
		if it.Status != model.CandidateStatusCompleted || !interview.NeedsHealing(it.TotalScore, it.Questions) {
			continue
		}
		healed := interview.MeanScore(it.Questions)
		s.log.Warn().
			Str("candidate_id", it.ID.String()).
			Int("healed_score", healed).
			Msg("Recomputed zero total from per-question scores")
		it.TotalScore = healed
		if err := s.repo.UpdateTotalScore(ctx, it.ID.String(), healed); err != nil {
			// Served healed regardless; the write-back retries on the next read.
			s.log.Error().Err(err).Str("candidate_id", it.ID.String()).Msg("failed to persist healed score")
		}
	}
	return items, nil
}

// Get retrieves one candidate's full record. A completed record with a zero
// total but graded answers gets its total recomputed on the way out and the
// fix written back, healing rows persisted before a summary arrived.
func (s *CandidateService) Get(ctx context.Context, id string) (*model.Candidate, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if c.Status == model.CandidateStatusCompleted && interview.NeedsHealing(c.TotalScore, c.Questions) {
		healed := interview.MeanScore(c.Questions)
		s.log.Warn().
			Str("candidate_id", id).
			Int("healed_score", healed).
			Msg("Recomputed zero total from per-question scores")
		c.TotalScore = healed
		if err := s.repo.UpdateTotalScore(ctx, id, healed); err != nil {
			// The healed value is still served; the write-back retries on
			// the next read.
			s.log.Error().Err(err).Str("candidate_id", id).Msg("failed to persist healed score")
		}
	}
	return c, nil
}

// Delete removes a candidate record.
func (s *CandidateService) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Check looks up whether a candidate with this email already has a record, so
// the client can warn a returning candidate before they restart.
func (s *CandidateService) Check(ctx context.Context, email string) (*CheckResult, error) {
	c, err := s.repo.Find(ctx, email, "")
	if errors.Is(err, repository.ErrCandidateNotFound) {
		return &CheckResult{Exists: false}, nil
	}
	if err != nil {
		return nil, err
	}
	return &CheckResult{Exists: true, Candidate: c}, nil
}
