package model

import (
	"time"

	"github.com/google/uuid"
)

// CandidateStatus enumerates persisted interview record states.
type CandidateStatus string

const (
	CandidateStatusInProgress CandidateStatus = "in-progress"
	CandidateStatusCompleted  CandidateStatus = "completed"
)

// CandidateProfile holds the fields extracted from a résumé, completed
// through the pre-interview dialogue. Name and email are required before
// anything is persisted.
type CandidateProfile struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Phone       string `json:"phone"`
	Designation string `json:"designation"`
	Location    string `json:"location"`
	Github      string `json:"github"`
	Linkedin    string `json:"linkedin"`
}

// ChatMessage is one line of the pre-interview field-collection transcript.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Candidate is the durable interview record: profile, résumé text, chat
// transcript, the full question snapshot, and the final results.
type Candidate struct {
	ID               uuid.UUID       `json:"id"`
	SessionID        string          `json:"sessionId,omitempty"`
	Name             string          `json:"name"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone"`
	Designation      string          `json:"designation"`
	Location         string          `json:"location"`
	Github           string          `json:"github"`
	Linkedin         string          `json:"linkedin"`
	ResumeText       string          `json:"resumeText,omitempty"`
	PreInterviewChat []ChatMessage   `json:"preInterviewChat,omitempty"`
	Questions        []QuestionEntry `json:"questions"`
	TotalScore       int             `json:"totalScore"`
	Summary          string          `json:"summary"`
	Status           CandidateStatus `json:"status"`
	CreatedAt        time.Time       `json:"createdAt"`
	CompletedAt      *time.Time      `json:"completedAt,omitempty"`
}

// CandidateListItem is the list projection served to the interviewer screen.
type CandidateListItem struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Email       string          `json:"email"`
	Phone       string          `json:"phone"`
	TotalScore  int             `json:"totalScore"`
	Summary     string          `json:"summary"`
	Status      CandidateStatus `json:"status"`
	CreatedAt   time.Time       `json:"createdAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`

	// Questions backs the read-time score recomputation; the listing itself
	// serves only the aggregate.
	Questions []QuestionEntry `json:"-"`
}
