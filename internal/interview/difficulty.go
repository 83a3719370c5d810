package interview

import (
	"fmt"

	"github.com/crispai/crisp-backend/internal/model"
)

// DifficultyFor maps a 1-based question number to its difficulty. The
// distribution is fixed: two easy, two medium, two hard. It is always
// computed from the position, never taken from AI output.
func DifficultyFor(questionNumber int) model.Difficulty {
	switch {
	case questionNumber <= 2:
		return model.DifficultyEasy
	case questionNumber <= 4:
		return model.DifficultyMedium
	default:
		return model.DifficultyHard
	}
}

// QuestionID returns the canonical id for a question number ("q1".."q6").
func QuestionID(questionNumber int) string {
	return fmt.Sprintf("q%d", questionNumber)
}
