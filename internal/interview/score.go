package interview

import (
	"math"

	"github.com/crispai/crisp-backend/internal/model"
)

// FinalScore combines per-question scores into the aggregate interview
// score. The AI-supplied total wins when it is a plausible positive value;
// otherwise the arithmetic mean of the valid per-question scores is used,
// rounded to the nearest integer. The fallback keeps a candidate who
// answered substantively from ever showing 0/100 because the AI aggregation
// step misbehaved.
func FinalScore(aiTotal int, entries []model.QuestionEntry) int {
	if aiTotal > 0 && aiTotal <= 100 {
		return aiTotal
	}
	return MeanScore(entries)
}

// MeanScore returns the rounded mean of the valid (0..100) per-question
// scores, ignoring unset and out-of-range entries. Zero when nothing is
// valid.
func MeanScore(entries []model.QuestionEntry) int {
	sum, count := 0, 0
	for _, e := range entries {
		if e.Score < 0 || e.Score > 100 {
			continue
		}
		sum += e.Score
		count++
	}
	if count == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(count)))
}

// NeedsHealing reports whether a stored total is invalid while usable
// per-question scores exist, i.e. the self-healing read should recompute.
func NeedsHealing(totalScore int, entries []model.QuestionEntry) bool {
	if totalScore > 0 && totalScore <= 100 {
		return false
	}
	return MeanScore(entries) > 0
}
