package model

// Difficulty labels an interview question.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// ScoreUnset marks a question that has not been evaluated yet. Persisted
// snapshots normalize it to 0; in-memory it keeps unevaluated entries out
// of score aggregation.
const ScoreUnset = -1

// QuestionEntry is one record of the interview ledger: a generated question,
// the candidate's answer, and the evaluation result.
type QuestionEntry struct {
	QuestionID     string     `json:"questionId"`
	QuestionNumber int        `json:"questionNumber"`
	Difficulty     Difficulty `json:"difficulty"`
	Question       string     `json:"question"`
	Answer         string     `json:"answer"`
	Score          int        `json:"score"`
	Feedback       string     `json:"feedback"`
	TimeLimit      int        `json:"timeLimit"` // seconds
	TimeTaken      int        `json:"timeTaken"` // seconds
}

// Evaluated reports whether the entry carries a usable score.
func (q QuestionEntry) Evaluated() bool {
	return q.Score >= 0 && q.Score <= 100
}

// ScoreBreakdown is one per-question line of the final summary.
type ScoreBreakdown struct {
	QuestionID string `json:"questionId"`
	Score      int    `json:"score"`
}
