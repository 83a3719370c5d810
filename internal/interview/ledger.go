package interview

import (
	"errors"

	"github.com/crispai/crisp-backend/internal/model"
)

// MaxQuestions is the fixed length of an interview ledger.
const MaxQuestions = 6

// Ledger invariant violations. These indicate a programming error or a
// coercion gap upstream; in correct operation they are unreachable.
var (
	ErrDuplicateQuestion = errors.New("duplicate question id")
	ErrLedgerFull        = errors.New("ledger already holds six questions")
	ErrUnknownQuestion   = errors.New("unknown question id")
)

// AppendQuestion returns a new slice with entry appended, preserving
// insertion order. It rejects a duplicate questionId and a seventh entry.
func AppendQuestion(entries []model.QuestionEntry, entry model.QuestionEntry) ([]model.QuestionEntry, error) {
	if len(entries) >= MaxQuestions {
		return nil, ErrLedgerFull
	}
	for _, e := range entries {
		if e.QuestionID == entry.QuestionID {
			return nil, ErrDuplicateQuestion
		}
	}
	out := make([]model.QuestionEntry, len(entries), len(entries)+1)
	copy(out, entries)
	return append(out, entry), nil
}

// RecordAnswer returns a new slice with the answer and time taken set on the
// matching entry. Repeated calls with the same id overwrite, never duplicate.
func RecordAnswer(entries []model.QuestionEntry, questionID, answer string, timeTaken int) ([]model.QuestionEntry, error) {
	i := indexOf(entries, questionID)
	if i < 0 {
		return nil, ErrUnknownQuestion
	}
	out := make([]model.QuestionEntry, len(entries))
	copy(out, entries)
	out[i].Answer = answer
	out[i].TimeTaken = timeTaken
	return out, nil
}

// RecordEvaluation returns a new slice with score and feedback set on the
// matching entry. The score is clamped to 0..100 — AI output is untrusted —
// and the stored value is returned so the caller can log adjustments.
func RecordEvaluation(entries []model.QuestionEntry, questionID string, score int, feedback string) ([]model.QuestionEntry, int, error) {
	i := indexOf(entries, questionID)
	if i < 0 {
		return nil, 0, ErrUnknownQuestion
	}
	stored := ClampScore(score)
	out := make([]model.QuestionEntry, len(entries))
	copy(out, entries)
	out[i].Score = stored
	out[i].Feedback = feedback
	return out, stored, nil
}

// ClampScore forces a score into the 0..100 range.
func ClampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// Renumber returns a copy with questionNumber rewritten as the 1-based array
// index. Persisted snapshots always go through this so numbering stays
// consistent even if entries arrived out of order.
func Renumber(entries []model.QuestionEntry) []model.QuestionEntry {
	out := make([]model.QuestionEntry, len(entries))
	copy(out, entries)
	for i := range out {
		out[i].QuestionNumber = i + 1
		if out[i].Score < 0 {
			out[i].Score = 0
		}
	}
	return out
}

func indexOf(entries []model.QuestionEntry, questionID string) int {
	for i, e := range entries {
		if e.QuestionID == questionID {
			return i
		}
	}
	return -1
}
