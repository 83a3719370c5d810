package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/crispai/crisp-backend/internal/config"
	"github.com/crispai/crisp-backend/internal/interview"
	"github.com/crispai/crisp-backend/internal/model"
)

// ErrUnavailable is returned once the retry budget for a model call is
// exhausted. Handlers map it to 503; the session moves to the recoverable
// error state and the candidate may retry the same step.
var ErrUnavailable = errors.New("ai service unavailable")

// jsonExpr matches the first JSON object in a completion. Models sometimes
// wrap JSON in markdown fences or surround it with prose.
var jsonExpr = regexp.MustCompile(`(?s)\{.*\}`)

// Gateway wraps the language model behind the four operations the interview
// flow needs. All responses are treated as untrusted: shapes are validated
// and identifying fields are coerced to the requested values before anything
// reaches the ledger.
type Gateway struct {
	gen        Generator
	cfg        *config.Config
	maxRetries int
	retryDelay time.Duration
	log        zerolog.Logger
}

// NewGateway creates a Gateway around a Generator.
func NewGateway(gen Generator, cfg *config.Config, log zerolog.Logger) *Gateway {
	return &Gateway{
		gen:        gen,
		cfg:        cfg,
		maxRetries: cfg.AIMaxRetries,
		retryDelay: cfg.AIRetryDelay,
		log:        log.With().Str("component", "ai_gateway").Logger(),
	}
}

// ExtractResult is the outcome of résumé field extraction.
type ExtractResult struct {
	Fields  model.CandidateProfile `json:"fields"`
	Missing []string               `json:"missing"`
	Message string                 `json:"message"`
}

// Evaluation is the graded outcome of one answer.
type Evaluation struct {
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// SummaryResult is the aggregate outcome of a finished interview. TotalScore
// is the AI's aggregate and may be invalid — callers run it through
// interview.FinalScore.
type SummaryResult struct {
	TotalScore int                    `json:"totalScore"`
	Breakdown  []model.ScoreBreakdown `json:"breakdown"`
	Summary    string                 `json:"summary"`
}

// ExtractProfileFields reads a résumé and returns the profile fields the
// model found plus the names of the ones it did not.
func (g *Gateway) ExtractProfileFields(ctx context.Context, resumeText string) (*ExtractResult, error) {
	var out ExtractResult
	if err := g.generateJSON(ctx, extractFieldsPrompt(resumeText), &out); err != nil {
		return nil, err
	}

	// Keep only field names the profile actually has; the model occasionally
	// invents entries like "address".
	missing := make([]string, 0, len(out.Missing))
	for _, f := range out.Missing {
		switch name := strings.ToLower(strings.TrimSpace(f)); name {
		case "name", "email", "phone":
			missing = append(missing, name)
		default:
			g.log.Debug().Str("field", f).Msg("Dropping unknown missing-field name")
		}
	}
	out.Missing = missing
	return &out, nil
}

// GenerateQuestion produces the question for the given 1-based position.
// Difficulty, id, number and time limit are all computed here from the
// position and configuration; whatever the model echoes back is overwritten.
func (g *Gateway) GenerateQuestion(ctx context.Context, questionNumber int, resumeText string, previousQuestions []string) (model.QuestionEntry, error) {
	difficulty := interview.DifficultyFor(questionNumber)
	timeLimit := g.cfg.TimeLimitFor(string(difficulty))

	var raw struct {
		QuestionID string `json:"questionId"`
		Difficulty string `json:"difficulty"`
		Question   string `json:"question"`
		TimeLimit  int    `json:"timeLimit"`
	}
	prompt := generateQuestionPrompt(difficulty, questionNumber, timeLimit, resumeText, previousQuestions)
	if err := g.generateJSON(ctx, prompt, &raw); err != nil {
		return model.QuestionEntry{}, err
	}
	if strings.TrimSpace(raw.Question) == "" {
		return model.QuestionEntry{}, fmt.Errorf("%w: model returned no question text", ErrUnavailable)
	}

	wantID := interview.QuestionID(questionNumber)
	if raw.QuestionID != wantID || raw.Difficulty != string(difficulty) {
		g.log.Warn().
			Str("got_id", raw.QuestionID).
			Str("want_id", wantID).
			Str("got_difficulty", raw.Difficulty).
			Msg("Coercing mismatched question metadata from model")
	}

	return model.QuestionEntry{
		QuestionID:     wantID,
		QuestionNumber: questionNumber,
		Difficulty:     difficulty,
		Question:       strings.TrimSpace(raw.Question),
		Score:          model.ScoreUnset,
		TimeLimit:      timeLimit,
	}, nil
}

// EvaluateAnswer grades one answer. An empty answer is graded like any
// other — timer expiry submits whatever text exists. Scores outside 0..100
// are clamped and logged, not rejected.
func (g *Gateway) EvaluateAnswer(ctx context.Context, question, answer string, difficulty model.Difficulty) (*Evaluation, error) {
	var out Evaluation
	if err := g.generateJSON(ctx, evaluateAnswerPrompt(question, answer, difficulty), &out); err != nil {
		return nil, err
	}

	if clamped := interview.ClampScore(out.Score); clamped != out.Score {
		g.log.Warn().Int("score", out.Score).Int("clamped", clamped).Msg("Clamping out-of-range score from model")
		out.Score = clamped
	}
	return &out, nil
}

// Summarize aggregates the six graded entries into a final assessment.
func (g *Gateway) Summarize(ctx context.Context, entries []model.QuestionEntry, candidateName string) (*SummaryResult, error) {
	var out SummaryResult
	if err := g.generateJSON(ctx, summarizePrompt(entries, candidateName), &out); err != nil {
		return nil, err
	}

	// The breakdown is cosmetic; the scores of record live in the ledger.
	// Still, clamp so the review screen never shows nonsense.
	for i := range out.Breakdown {
		out.Breakdown[i].Score = interview.ClampScore(out.Breakdown[i].Score)
	}
	return &out, nil
}

// generateJSON runs one prompt with bounded retry and decodes the first JSON
// object of the completion into out. A completion that fails to parse counts
// as a failed attempt like a transport error.
func (g *Gateway) generateJSON(ctx context.Context, prompt string, out any) error {
	var lastErr error

	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			g.log.Warn().Err(lastErr).Int("attempt", attempt).Msg("Retrying model call")
			select {
			case <-ctx.Done():
				return fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(g.retryDelay):
			}
		}

		text, err := g.gen.Generate(ctx, prompt)
		if err != nil {
			lastErr = err
			continue
		}

		payload := ExtractJSON(text)
		if payload == "" {
			lastErr = errors.New("no JSON object in model response")
			continue
		}
		if err := json.Unmarshal([]byte(payload), out); err != nil {
			lastErr = fmt.Errorf("decode model response: %w", err)
			continue
		}
		return nil
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// ExtractJSON returns the first JSON object embedded in a completion,
// stripping markdown fences and surrounding prose.
func ExtractJSON(text string) string {
	return jsonExpr.FindString(strings.TrimSpace(text))
}
