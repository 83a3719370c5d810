package ai

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/crispai/crisp-backend/internal/model"
)

// Prompt builders. Every prompt demands a bare JSON object; the schemas
// mirror the decode targets in gateway.go.

const resumeContextLimit = 500

func extractFieldsPrompt(resumeText string) string {
	var b strings.Builder
	b.WriteString("You are a JSON-only extractor. Given the resume text, return JSON exactly matching the schema. Do NOT output any extra commentary.\n\n")
	b.WriteString("Schema:\n")
	b.WriteString(`{
  "fields": {
    "name": "Full Name or empty string",
    "email": "email@example.com or empty string",
    "phone": "phone-number or empty string"
  },
  "missing": ["phone","email"] OR [],
  "message": "A short conversational message to show to the candidate (optional)"
}`)
	b.WriteString("\n\nExample:\n")
	b.WriteString(`Resume: "John Doe\nSoftware Engineer\njohn@example.com"` + "\n")
	b.WriteString(`Output: {"fields":{"name":"John Doe","email":"john@example.com","phone":""},"missing":["phone"],"message":"I found your name and email. Could you please provide your phone number?"}`)
	b.WriteString("\n\nNow extract from this resume:\n")
	b.WriteString(resumeText)
	b.WriteString("\n\nReturn only valid JSON matching the schema above.")
	return b.String()
}

func generateQuestionPrompt(difficulty model.Difficulty, questionNumber, timeLimit int, resumeText string, previousQuestions []string) string {
	var b strings.Builder
	b.WriteString("You are a concise interview question generator for Full Stack React/Node roles. Output JSON only.\n\n")
	fmt.Fprintf(&b, "Generate ONE interview question of difficulty %q for a Full Stack React/Node.js developer position.\n\n", difficulty)
	b.WriteString("Schema:\n")
	fmt.Fprintf(&b, `{
  "questionId": "q%d",
  "difficulty": "%s",
  "question": "The actual question text",
  "timeLimit": %d
}`, questionNumber, difficulty, timeLimit)
	if len(previousQuestions) > 0 {
		b.WriteString("\n\nDo not repeat any of these earlier questions:\n")
		for _, q := range previousQuestions {
			b.WriteString("- " + q + "\n")
		}
	}
	b.WriteString("\n\nContext from resume:\n")
	b.WriteString(truncate(resumeText, resumeContextLimit))
	fmt.Fprintf(&b, "\n\nGenerate a relevant %s question and return only valid JSON.", difficulty)
	return b.String()
}

func evaluateAnswerPrompt(question, answer string, difficulty model.Difficulty) string {
	var b strings.Builder
	b.WriteString("You are an objective grader for technical interviews. Return JSON only.\n\n")
	b.WriteString("Grading Rubric (total 100 points):\n")
	b.WriteString("- Correctness: 0-40 points\n")
	b.WriteString("- Completeness (edge cases/examples): 0-30 points\n")
	b.WriteString("- Clarity & Explanation: 0-20 points\n")
	b.WriteString("- Efficiency/Best practices: 0-10 points\n\n")
	fmt.Fprintf(&b, "Question: %s\n\n", question)
	fmt.Fprintf(&b, "Candidate's Answer: %s\n\n", answer)
	fmt.Fprintf(&b, "Difficulty: %s\n\n", difficulty)
	b.WriteString("Evaluate the answer and return JSON:\n")
	b.WriteString(`{"score": 75, "feedback": "Brief feedback mentioning what was good and what was missing"}`)
	b.WriteString("\n\nReturn only valid JSON with integer score (0-100) and concise feedback.")
	return b.String()
}

func summarizePrompt(entries []model.QuestionEntry, candidateName string) string {
	var b strings.Builder
	b.WriteString("You are an interview summary generator. Return JSON only.\n\n")
	b.WriteString("Aggregate the following question scores into a final assessment:\n\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "Q%d (%s): %d/100\n", e.QuestionNumber, e.Difficulty, e.Score)
	}
	fmt.Fprintf(&b, "\nCandidate: %s\n\n", candidateName)
	b.WriteString("Calculate the average score and provide a 3-4 sentence professional summary of the candidate's performance.\n\n")
	b.WriteString("Schema:\n")
	b.WriteString(`{
  "totalScore": 78,
  "breakdown": [{"questionId":"q1","score":90}, {"questionId":"q2","score":85}],
  "summary": "Professional 3-4 sentence summary of performance"
}`)
	b.WriteString("\n\nReturn only valid JSON.")
	return b.String()
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit]
}
