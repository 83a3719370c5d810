package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crispai/crisp-backend/internal/ai"
	"github.com/crispai/crisp-backend/internal/interview"
	"github.com/crispai/crisp-backend/internal/model"
)

// ─── Fakes ──────────────────────────────────────────────────────────────────

type memSessionStore struct {
	sessions map[string]interview.Session
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]interview.Session)}
}

func (st *memSessionStore) Get(_ context.Context, id string) (interview.Session, error) {
	s, ok := st.sessions[id]
	if !ok {
		return interview.Session{}, ErrSessionNotFound
	}
	return s, nil
}

func (st *memSessionStore) Save(_ context.Context, s interview.Session) error {
	st.sessions[s.ID] = s
	return nil
}

func (st *memSessionStore) Delete(_ context.Context, id string) error {
	delete(st.sessions, id)
	return nil
}

type stubGateway struct {
	extractFn   func(resumeText string) (*ai.ExtractResult, error)
	questionFn  func(n int) (model.QuestionEntry, error)
	evaluateFn  func(question, answer string) (*ai.Evaluation, error)
	summarizeFn func(entries []model.QuestionEntry) (*ai.SummaryResult, error)
}

func (g *stubGateway) ExtractProfileFields(_ context.Context, resumeText string) (*ai.ExtractResult, error) {
	if g.extractFn != nil {
		return g.extractFn(resumeText)
	}
	return &ai.ExtractResult{
		Fields:  model.CandidateProfile{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+1 555 0100"},
		Message: "All set.",
	}, nil
}

func (g *stubGateway) GenerateQuestion(_ context.Context, n int, _ string, _ []string) (model.QuestionEntry, error) {
	if g.questionFn != nil {
		return g.questionFn(n)
	}
	return generatedEntry(n), nil
}

func (g *stubGateway) EvaluateAnswer(_ context.Context, question, answer string, _ model.Difficulty) (*ai.Evaluation, error) {
	if g.evaluateFn != nil {
		return g.evaluateFn(question, answer)
	}
	return &ai.Evaluation{Score: 80, Feedback: "Good answer."}, nil
}

func (g *stubGateway) Summarize(_ context.Context, entries []model.QuestionEntry, _ string) (*ai.SummaryResult, error) {
	if g.summarizeFn != nil {
		return g.summarizeFn(entries)
	}
	return &ai.SummaryResult{TotalScore: 80, Summary: "Consistently strong."}, nil
}

type memQueue struct {
	items []model.Candidate
	err   error
}

func (q *memQueue) Enqueue(_ context.Context, c model.Candidate) error {
	if q.err != nil {
		return q.err
	}
	q.items = append(q.items, c)
	return nil
}

func generatedEntry(n int) model.QuestionEntry {
	return model.QuestionEntry{
		QuestionID:     interview.QuestionID(n),
		QuestionNumber: n,
		Difficulty:     interview.DifficultyFor(n),
		Question:       fmt.Sprintf("Question %d?", n),
		Score:          model.ScoreUnset,
		TimeLimit:      30,
	}
}

func newTestInterviewService(gw *stubGateway) (*InterviewService, *memSessionStore, *memQueue) {
	store := newMemSessionStore()
	queue := &memQueue{}
	svc := NewInterviewService(gw, store, queue, zerolog.Nop())
	return svc, store, queue
}

func seedReadySession(t *testing.T, store *memSessionStore, id string) interview.Session {
	t.Helper()
	s := interview.NewSession(id)
	s, err := s.WithUpload(model.CandidateProfile{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "+1 555 0100"}, nil, "resume text")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), s))
	return s
}

func action(sessionID, name string, payload model.ActionPayload) *model.InterviewActionRequest {
	return &model.InterviewActionRequest{SessionID: sessionID, Action: name, Payload: payload}
}

// ─── Tests ──────────────────────────────────────────────────────────────────

func TestActionUnknownSession(t *testing.T) {
	svc, _, _ := newTestInterviewService(&stubGateway{})

	_, err := svc.Action(context.Background(), action("missing", model.ActionStartInterview, model.ActionPayload{}))
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSubmitFieldCompletesProfile(t *testing.T) {
	svc, store, _ := newTestInterviewService(&stubGateway{})

	s := interview.NewSession("s1")
	s, err := s.WithUpload(model.CandidateProfile{Name: "Ada Lovelace", Email: "ada@example.com"}, []string{"phone"}, "resume text")
	require.NoError(t, err)
	require.NoError(t, store.Save(context.Background(), s))

	next, err := svc.Action(context.Background(), action("s1", model.ActionSubmitField, model.ActionPayload{
		FieldName:  "phone",
		FieldValue: "+1 555 0100",
	}))
	require.NoError(t, err)
	assert.Equal(t, interview.StatusReady, next.Status)
	assert.Equal(t, "+1 555 0100", next.Profile.Phone)
	assert.Equal(t, interview.StatusReady, store.sessions["s1"].Status, "snapshot persisted")
}

func TestStartInterviewGeneratesFirstQuestion(t *testing.T) {
	svc, store, _ := newTestInterviewService(&stubGateway{})
	seedReadySession(t, store, "s1")

	next, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)

	assert.Equal(t, interview.StatusInterviewing, next.Status)
	require.Len(t, next.Questions, 1)
	assert.Equal(t, "q1", next.Questions[0].QuestionID)
	assert.Equal(t, 0, next.CurrentIndex)
	assert.False(t, next.StartTime.IsZero())
}

func TestStartInterviewFailureIsRecoverable(t *testing.T) {
	gw := &stubGateway{}
	calls := 0
	gw.questionFn = func(n int) (model.QuestionEntry, error) {
		calls++
		if calls == 1 {
			return model.QuestionEntry{}, ai.ErrUnavailable
		}
		return generatedEntry(n), nil
	}
	svc, store, _ := newTestInterviewService(gw)
	seedReadySession(t, store, "s1")

	failed, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	assert.ErrorIs(t, err, ai.ErrUnavailable)
	assert.Equal(t, interview.StatusError, failed.Status)
	assert.Equal(t, interview.StatusError, store.sessions["s1"].Status, "error state persisted")

	// The retry implicitly dismisses the error and succeeds.
	next, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)
	assert.Equal(t, interview.StatusInterviewing, next.Status)
	require.Len(t, next.Questions, 1)
}

func TestSubmitAnswerEvaluatesAndCheckpoints(t *testing.T) {
	svc, store, queue := newTestInterviewService(&stubGateway{})
	seedReadySession(t, store, "s1")

	_, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)

	next, err := svc.Action(context.Background(), action("s1", model.ActionSubmitAnswer, model.ActionPayload{
		QuestionID: "q1",
		Answer:     "Closures capture their environment.",
		TimeTaken:  21,
	}))
	require.NoError(t, err)

	q := next.Questions[0]
	assert.Equal(t, 80, q.Score)
	assert.Equal(t, "Good answer.", q.Feedback)
	assert.Equal(t, 21, q.TimeTaken)
	assert.Equal(t, 1, next.CurrentIndex, "advanced to the next slot")

	// One checkpoint from the start, one from the evaluated answer.
	require.Len(t, queue.items, 2)
	checkpoint := queue.items[1]
	assert.Equal(t, "s1", checkpoint.SessionID)
	assert.Equal(t, model.CandidateStatusInProgress, checkpoint.Status)
	assert.Equal(t, "ada@example.com", checkpoint.Email)
}

func TestSubmitAnswerWhileInFlight(t *testing.T) {
	svc, store, _ := newTestInterviewService(&stubGateway{})
	seedReadySession(t, store, "s1")
	_, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)

	svc.inFlight.Store("s1", struct{}{})
	_, err = svc.Action(context.Background(), action("s1", model.ActionSubmitAnswer, model.ActionPayload{
		QuestionID: "q1",
		Answer:     "late duplicate",
	}))
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
}

func TestNextQuestionWhileInFlight(t *testing.T) {
	svc, store, _ := newTestInterviewService(&stubGateway{})
	seedReadySession(t, store, "s1")
	_, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)
	_, err = svc.Action(context.Background(), action("s1", model.ActionSubmitAnswer, model.ActionPayload{
		QuestionID: "q1",
		Answer:     "first answer",
	}))
	require.NoError(t, err)

	// A double-clicked "next" while the first generation is still running must
	// not append a second question.
	svc.inFlight.Store("s1", struct{}{})
	_, err = svc.Action(context.Background(), action("s1", model.ActionNextQuestion, model.ActionPayload{}))
	assert.ErrorIs(t, err, ErrSubmissionInFlight)

	session, err := svc.GetSession(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, session.Questions, 1)

	svc.inFlight.Delete("s1")
	session, err = svc.Action(context.Background(), action("s1", model.ActionNextQuestion, model.ActionPayload{}))
	require.NoError(t, err)
	assert.Len(t, session.Questions, 2)
}

func TestEvaluationFailureKeepsAnswerRetryable(t *testing.T) {
	gw := &stubGateway{}
	gw.evaluateFn = func(_, _ string) (*ai.Evaluation, error) {
		return nil, ai.ErrUnavailable
	}
	svc, store, queue := newTestInterviewService(gw)
	seedReadySession(t, store, "s1")
	_, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)
	checkpointsAfterStart := len(queue.items)

	failed, err := svc.Action(context.Background(), action("s1", model.ActionSubmitAnswer, model.ActionPayload{
		QuestionID: "q1",
		Answer:     "attempt",
	}))
	assert.ErrorIs(t, err, ai.ErrUnavailable)
	assert.Equal(t, interview.StatusError, failed.Status)
	assert.Len(t, queue.items, checkpointsAfterStart, "no checkpoint for a failed evaluation")

	// After recovery the same submit goes through.
	gw.evaluateFn = nil
	next, err := svc.Action(context.Background(), action("s1", model.ActionSubmitAnswer, model.ActionPayload{
		QuestionID: "q1",
		Answer:     "attempt",
	}))
	require.NoError(t, err)
	assert.Equal(t, 80, next.Questions[0].Score)
}

func TestFullInterviewToSummary(t *testing.T) {
	svc, store, queue := newTestInterviewService(&stubGateway{})
	seedReadySession(t, store, "s1")

	_, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)

	for n := 1; n <= interview.MaxQuestions; n++ {
		if n > 1 {
			_, err = svc.Action(context.Background(), action("s1", model.ActionNextQuestion, model.ActionPayload{}))
			require.NoError(t, err)
		}
		_, err = svc.Action(context.Background(), action("s1", model.ActionSubmitAnswer, model.ActionPayload{
			QuestionID: interview.QuestionID(n),
			Answer:     fmt.Sprintf("Answer %d", n),
			TimeTaken:  10,
		}))
		require.NoError(t, err)
	}

	// A seventh question is refused.
	_, err = svc.Action(context.Background(), action("s1", model.ActionNextQuestion, model.ActionPayload{}))
	assert.ErrorIs(t, err, interview.ErrLedgerFull)

	done, err := svc.GenerateSummary(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Equal(t, interview.StatusCompleted, done.Status)
	assert.Equal(t, 80, done.TotalScore)
	assert.Equal(t, "Consistently strong.", done.Summary)

	final := queue.items[len(queue.items)-1]
	assert.Equal(t, model.CandidateStatusCompleted, final.Status)
	require.NotNil(t, final.CompletedAt)

	// Repeating the call returns the stored result unchanged.
	again, err := svc.GenerateSummary(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Equal(t, done.TotalScore, again.TotalScore)
}

func TestSummaryFallbackWhenModelTotalInvalid(t *testing.T) {
	gw := &stubGateway{}
	gw.summarizeFn = func(entries []model.QuestionEntry) (*ai.SummaryResult, error) {
		return &ai.SummaryResult{TotalScore: 0, Summary: "ok"}, nil
	}
	svc, store, _ := newTestInterviewService(gw)
	seedReadySession(t, store, "s1")

	_, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)
	for n := 1; n <= interview.MaxQuestions; n++ {
		if n > 1 {
			_, err = svc.Action(context.Background(), action("s1", model.ActionNextQuestion, model.ActionPayload{}))
			require.NoError(t, err)
		}
		_, err = svc.Action(context.Background(), action("s1", model.ActionSubmitAnswer, model.ActionPayload{
			QuestionID: interview.QuestionID(n),
			Answer:     "answer",
		}))
		require.NoError(t, err)
	}

	done, err := svc.GenerateSummary(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Equal(t, 80, done.TotalScore, "mean of the per-question scores")
}

func TestGenerateSummaryBeforeAllEvaluated(t *testing.T) {
	svc, store, _ := newTestInterviewService(&stubGateway{})
	seedReadySession(t, store, "s1")
	_, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)

	_, err = svc.GenerateSummary(context.Background(), "s1", "")
	assert.ErrorIs(t, err, ErrNotReadyForSummary)
}

func TestDeleteSessionDiscardsSnapshot(t *testing.T) {
	svc, store, _ := newTestInterviewService(&stubGateway{})
	seedReadySession(t, store, "s1")

	require.NoError(t, svc.DeleteSession(context.Background(), "s1"))
	_, err := svc.GetSession(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCheckpointEnqueueFailureDoesNotFailAction(t *testing.T) {
	svc, store, queue := newTestInterviewService(&stubGateway{})
	queue.err = errors.New("redis down")
	seedReadySession(t, store, "s1")
	_, err := svc.Action(context.Background(), action("s1", model.ActionStartInterview, model.ActionPayload{}))
	require.NoError(t, err)

	next, err := svc.Action(context.Background(), action("s1", model.ActionSubmitAnswer, model.ActionPayload{
		QuestionID: "q1",
		Answer:     "answer",
	}))
	require.NoError(t, err, "checkpointing is best-effort")
	assert.Equal(t, 80, next.Questions[0].Score)
}
