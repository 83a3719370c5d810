package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/interview"
	"github.com/crispai/crisp-backend/internal/model"
)

// ErrSubmissionInFlight is returned when a model call for the session is
// already running. Double-submits happen when the client timer fires while a
// manual submit is on the wire, and a double-clicked "next" would otherwise
// append two questions; the first call wins.
var ErrSubmissionInFlight = errors.New("submission already in flight")

// ErrNotReadyForSummary is returned when summary generation is requested
// before all questions are evaluated.
var ErrNotReadyForSummary = errors.New("interview not ready for summary")

// InterviewService drives the interview flow: every action loads the
// authoritative snapshot, applies one transition, and stores the result.
type InterviewService struct {
	gateway     AIGateway
	sessions    SessionStore
	checkpoints CheckpointEnqueuer
	log         zerolog.Logger

	// inFlight holds session ids with a model call currently running.
	inFlight sync.Map
}

// NewInterviewService creates an InterviewService.
func NewInterviewService(gateway AIGateway, sessions SessionStore, checkpoints CheckpointEnqueuer, log zerolog.Logger) *InterviewService {
	return &InterviewService{
		gateway:     gateway,
		sessions:    sessions,
		checkpoints: checkpoints,
		log:         log.With().Str("component", "interview_service").Logger(),
	}
}

// Action applies one interview action and returns the resulting snapshot.
// A session sitting in the error state is implicitly dismissed first: any new
// action means the candidate chose to retry.
func (s *InterviewService) Action(ctx context.Context, req *model.InterviewActionRequest) (interview.Session, error) {
	session, err := s.sessions.Get(ctx, req.SessionID)
	if err != nil {
		return interview.Session{}, err
	}
	if session.Status == interview.StatusError {
		session = session.Dismissed()
	}

	switch req.Action {
	case model.ActionSubmitField:
		return s.submitField(ctx, session, req.Payload)
	case model.ActionStartInterview:
		return s.startInterview(ctx, session)
	case model.ActionNextQuestion:
		return s.nextQuestion(ctx, session)
	case model.ActionSubmitAnswer:
		return s.submitAnswer(ctx, session, req.Payload)
	default:
		return session, fmt.Errorf("unknown action %q", req.Action)
	}
}

// GetSession returns the current snapshot for a reloaded client.
func (s *InterviewService) GetSession(ctx context.Context, id string) (interview.Session, error) {
	return s.sessions.Get(ctx, id)
}

// DeleteSession discards a session, the "start over" choice on the resume
// prompt.
func (s *InterviewService) DeleteSession(ctx context.Context, id string) error {
	return s.sessions.Delete(ctx, id)
}

// GenerateSummary aggregates a fully evaluated interview into its final
// result and completes the session. Calling it again on a completed session
// returns the stored snapshot unchanged.
func (s *InterviewService) GenerateSummary(ctx context.Context, sessionID, candidateName string) (interview.Session, error) {
	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return interview.Session{}, err
	}
	if session.Status == interview.StatusCompleted {
		return session, nil
	}
	if session.Status == interview.StatusError {
		session = session.Dismissed()
	}
	if !allEvaluated(session.Questions) {
		return session, fmt.Errorf("%w: %d questions, last not evaluated", ErrNotReadyForSummary, len(session.Questions))
	}

	if candidateName == "" {
		candidateName = session.Profile.Name
	}
	res, err := s.gateway.Summarize(ctx, session.Questions, candidateName)
	if err != nil {
		return s.fail(ctx, session, "Could not generate the interview summary.", err)
	}

	total := interview.FinalScore(res.TotalScore, session.Questions)
	next, err := session.WithResults(total, res.Summary, res.Breakdown)
	if err != nil {
		return session, err
	}
	if err := s.sessions.Save(ctx, next); err != nil {
		return session, err
	}

	s.checkpoint(ctx, next)
	s.log.Info().Str("session_id", next.ID).Int("total_score", total).Msg("Interview completed")
	return next, nil
}

// ─── Actions ────────────────────────────────────────────────────────────────

func (s *InterviewService) submitField(ctx context.Context, session interview.Session, p model.ActionPayload) (interview.Session, error) {
	next, err := session.WithField(p.FieldName, p.FieldValue)
	if err != nil {
		return session, err
	}
	if err := s.sessions.Save(ctx, next); err != nil {
		return session, err
	}
	s.checkpoint(ctx, next)
	return next, nil
}

func (s *InterviewService) startInterview(ctx context.Context, session interview.Session) (interview.Session, error) {
	if !s.acquire(session.ID) {
		return session, ErrSubmissionInFlight
	}
	defer s.release(session.ID)

	next, err := session.Started(time.Now())
	if err != nil {
		return session, err
	}

	entry, err := s.gateway.GenerateQuestion(ctx, 1, next.ResumeText, nil)
	if err != nil {
		// Fail against the pre-start snapshot so a retry starts clean.
		return s.fail(ctx, session, "Could not generate the first question.", err)
	}

	next, err = next.WithQuestion(entry)
	if err != nil {
		return session, err
	}
	if err := s.sessions.Save(ctx, next); err != nil {
		return session, err
	}

	s.checkpoint(ctx, next)
	s.log.Info().Str("session_id", next.ID).Msg("Interview started")
	return next, nil
}

func (s *InterviewService) nextQuestion(ctx context.Context, session interview.Session) (interview.Session, error) {
	if !s.acquire(session.ID) {
		return session, ErrSubmissionInFlight
	}
	defer s.release(session.ID)

	number := len(session.Questions) + 1
	if number > interview.MaxQuestions {
		return session, interview.ErrLedgerFull
	}

	previous := make([]string, 0, len(session.Questions))
	for _, q := range session.Questions {
		previous = append(previous, q.Question)
	}

	entry, err := s.gateway.GenerateQuestion(ctx, number, session.ResumeText, previous)
	if err != nil {
		return s.fail(ctx, session, "Could not generate the next question.", err)
	}

	next, err := session.WithQuestion(entry)
	if err != nil {
		return session, err
	}
	if err := s.sessions.Save(ctx, next); err != nil {
		return session, err
	}
	return next, nil
}

func (s *InterviewService) submitAnswer(ctx context.Context, session interview.Session, p model.ActionPayload) (interview.Session, error) {
	if !s.acquire(session.ID) {
		return session, ErrSubmissionInFlight
	}
	defer s.release(session.ID)

	next, err := session.WithAnswer(p.QuestionID, p.Answer, p.TimeTaken)
	if err != nil {
		return session, err
	}

	var answered model.QuestionEntry
	for _, q := range next.Questions {
		if q.QuestionID == p.QuestionID {
			answered = q
			break
		}
	}

	eval, err := s.gateway.EvaluateAnswer(ctx, answered.Question, p.Answer, answered.Difficulty)
	if err != nil {
		// Fail against the pre-answer snapshot; the retry resubmits the
		// same answer.
		return s.fail(ctx, session, "Could not evaluate your answer.", err)
	}

	next, _, last, err := next.WithEvaluation(p.QuestionID, eval.Score, eval.Feedback)
	if err != nil {
		return session, err
	}
	if err := s.sessions.Save(ctx, next); err != nil {
		return session, err
	}

	s.checkpoint(ctx, next)
	if last {
		s.log.Info().Str("session_id", next.ID).Msg("Last answer evaluated, awaiting summary")
	}
	return next, nil
}

// ─── Internal helpers ───────────────────────────────────────────────────────

// acquire takes the per-session in-flight slot. Actions that call the model
// hold it for their duration so a concurrent duplicate is rejected instead of
// racing the Save.
func (s *InterviewService) acquire(sessionID string) bool {
	_, loaded := s.inFlight.LoadOrStore(sessionID, struct{}{})
	return !loaded
}

func (s *InterviewService) release(sessionID string) {
	s.inFlight.Delete(sessionID)
}

// fail stores the recoverable error state and propagates the cause.
func (s *InterviewService) fail(ctx context.Context, session interview.Session, msg string, cause error) (interview.Session, error) {
	failed := session.WithFailure(msg)
	if err := s.sessions.Save(ctx, failed); err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID).Msg("Could not store error state")
	}
	return failed, cause
}

// checkpoint enqueues a best-effort durable copy of the session. Enqueue
// failures are logged and swallowed; the interview step already succeeded.
func (s *InterviewService) checkpoint(ctx context.Context, session interview.Session) {
	if err := s.checkpoints.Enqueue(ctx, CandidateFromSession(session)); err != nil {
		s.log.Error().Err(err).Str("session_id", session.ID).Msg("Checkpoint enqueue failed")
	}
}

func allEvaluated(entries []model.QuestionEntry) bool {
	if len(entries) != interview.MaxQuestions {
		return false
	}
	for _, e := range entries {
		if !e.Evaluated() {
			return false
		}
	}
	return true
}

// CandidateFromSession projects a session snapshot into the durable record
// shape used for checkpoints and final saves.
func CandidateFromSession(session interview.Session) model.Candidate {
	c := model.Candidate{
		SessionID:   session.ID,
		Name:        session.Profile.Name,
		Email:       session.Profile.Email,
		Phone:       session.Profile.Phone,
		Designation: session.Profile.Designation,
		Location:    session.Profile.Location,
		Github:      session.Profile.Github,
		Linkedin:    session.Profile.Linkedin,
		ResumeText:  session.ResumeText,
		Questions:   interview.Renumber(session.Questions),
		TotalScore:  session.TotalScore,
		Summary:     session.Summary,
		Status:      model.CandidateStatusInProgress,
	}
	if session.Status == interview.StatusCompleted {
		c.Status = model.CandidateStatusCompleted
		now := time.Now()
		c.CompletedAt = &now
	}
	return c
}
