package model

// Interview action names accepted by POST /api/interview-action.
const (
	ActionSubmitField    = "submit_field"
	ActionStartInterview = "start_interview"
	ActionNextQuestion   = "next_question"
	ActionSubmitAnswer   = "submit_answer"
)

// InterviewActionRequest is the payload for POST /api/interview-action.
type InterviewActionRequest struct {
	SessionID string        `json:"sessionId" binding:"required"`
	Action    string        `json:"action" binding:"required,oneof=submit_field start_interview next_question submit_answer"`
	Payload   ActionPayload `json:"payload"`
}

// ActionPayload carries the per-action arguments. Which fields are read
// depends on the action.
type ActionPayload struct {
	FieldName  string `json:"fieldName,omitempty"`
	FieldValue string `json:"fieldValue,omitempty"`
	QuestionID string `json:"questionId,omitempty"`
	Answer     string `json:"answer,omitempty"`
	TimeTaken  int    `json:"timeTaken,omitempty"`
}

// GenerateSummaryRequest is the payload for POST /api/generate-summary.
type GenerateSummaryRequest struct {
	SessionID     string `json:"sessionId" binding:"required"`
	CandidateName string `json:"candidateName"`
}

// SaveCandidateRequest is the payload for POST /api/save-candidate.
type SaveCandidateRequest struct {
	SessionID        string          `json:"sessionId"`
	Name             string          `json:"name" binding:"required"`
	Email            string          `json:"email" binding:"required,email"`
	Phone            string          `json:"phone"`
	Designation      string          `json:"designation"`
	Location         string          `json:"location"`
	Github           string          `json:"github"`
	Linkedin         string          `json:"linkedin"`
	ResumeText       string          `json:"resumeText"`
	Questions        []QuestionEntry `json:"questions" binding:"required,min=1"`
	TotalScore       int             `json:"totalScore"`
	Summary          string          `json:"summary"`
	PreInterviewChat []ChatMessage   `json:"preInterviewChat"`
}

// SaveProgressRequest is the payload for POST /api/save-progress.
type SaveProgressRequest struct {
	SessionID        string            `json:"sessionId" binding:"required"`
	Profile          *CandidateProfile `json:"profile"`
	PreInterviewChat []ChatMessage     `json:"preInterviewChat"`
	Questions        []QuestionEntry   `json:"questions"`
	ResumeText       string            `json:"resumeText"`
}

// UpdateChatRequest is the payload for POST /api/update-chat.
type UpdateChatRequest struct {
	Email        string        `json:"email" binding:"required,email"`
	ChatMessages []ChatMessage `json:"chatMessages" binding:"required"`
}

// CheckCandidateRequest is the payload for POST /api/check-candidate.
type CheckCandidateRequest struct {
	Email string `json:"email" binding:"required,email"`
}
