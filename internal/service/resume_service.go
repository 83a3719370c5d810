package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/ai"
	"github.com/crispai/crisp-backend/internal/interview"
	"github.com/crispai/crisp-backend/internal/model"
	"github.com/crispai/crisp-backend/internal/resume"
)

// AIGateway is the model-facing surface the interview flow depends on.
// *ai.Gateway implements it; tests substitute a fake.
type AIGateway interface {
	ExtractProfileFields(ctx context.Context, resumeText string) (*ai.ExtractResult, error)
	GenerateQuestion(ctx context.Context, questionNumber int, resumeText string, previousQuestions []string) (model.QuestionEntry, error)
	EvaluateAnswer(ctx context.Context, question, answer string, difficulty model.Difficulty) (*ai.Evaluation, error)
	Summarize(ctx context.Context, entries []model.QuestionEntry, candidateName string) (*ai.SummaryResult, error)
}

// UploadResult is what the upload endpoint returns: the newly created session
// plus the chatbot's opening message.
type UploadResult struct {
	Session interview.Session `json:"session"`
	Message string            `json:"message"`
}

// ResumeService turns an uploaded résumé into a new interview session.
type ResumeService struct {
	gateway  AIGateway
	sessions SessionStore
	log      zerolog.Logger
}

// NewResumeService creates a ResumeService.
func NewResumeService(gateway AIGateway, sessions SessionStore, log zerolog.Logger) *ResumeService {
	return &ResumeService{
		gateway:  gateway,
		sessions: sessions,
		log:      log.With().Str("component", "resume_service").Logger(),
	}
}

// Upload extracts text from the file, runs field extraction, and creates the
// session. The session starts in collecting-fields when any of name, email or
// phone could not be read from the résumé, otherwise in ready.
func (s *ResumeService) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	text, err := resume.Extract(filename, data)
	if err != nil {
		return nil, err
	}

	extracted, err := s.gateway.ExtractProfileFields(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract profile fields: %w", err)
	}

	session := interview.NewSession(uuid.New().String())
	session, err = session.WithUpload(extracted.Fields, extracted.Missing, text)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("session_id", session.ID).
		Str("status", string(session.Status)).
		Strs("missing_fields", extracted.Missing).
		Msg("Resume processed")

	message := extracted.Message
	if message == "" {
		message = openingMessage(extracted.Missing)
	}
	return &UploadResult{Session: session, Message: message}, nil
}

// openingMessage builds a fallback chatbot line when the extractor returned
// none.
func openingMessage(missing []string) string {
	if len(missing) == 0 {
		return "Thanks! I have everything I need from your resume. Start the interview whenever you are ready."
	}
	return fmt.Sprintf("I could not find your %s in the resume. Could you please provide it?",
		strings.Join(missing, " and "))
}
