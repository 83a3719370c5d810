package interview

import (
	"errors"
	"fmt"
	"time"

	"github.com/crispai/crisp-backend/internal/model"
)

// Status enumerates interview session states.
type Status string

const (
	StatusIdle             Status = "idle"
	StatusCollectingFields Status = "collecting-fields"
	StatusReady            Status = "ready"
	StatusInterviewing     Status = "interviewing"
	StatusCompleted        Status = "completed"
	StatusError            Status = "error"
)

// ErrInvalidTransition is returned when an event is applied in a state that
// does not accept it.
var ErrInvalidTransition = errors.New("invalid session transition")

// Session is one candidate's interview in progress. Transition methods
// return a new snapshot instead of mutating the receiver, so every state the
// caller holds is immutable and the persisted copy is always a consistent
// whole.
type Session struct {
	ID            string                 `json:"id"`
	Status        Status                 `json:"status"`
	Profile       model.CandidateProfile `json:"profile"`
	ResumeText    string                 `json:"resumeText"`
	MissingFields []string               `json:"missingFields,omitempty"`
	Questions     []model.QuestionEntry  `json:"questions"`
	CurrentIndex  int                    `json:"currentQuestionIndex"`
	TotalScore    int                    `json:"totalScore"`
	Summary       string                 `json:"summary,omitempty"`
	Breakdown     []model.ScoreBreakdown `json:"breakdown,omitempty"`
	LastError     string                 `json:"error,omitempty"`
	// PrevStatus lets a dismissed error return to where the session was.
	PrevStatus Status    `json:"prevStatus,omitempty"`
	StartTime  time.Time `json:"startTime"`
	CreatedAt  time.Time `json:"createdAt"`
}

// NewSession returns a fresh idle session.
func NewSession(id string) Session {
	return Session{
		ID:        id,
		Status:    StatusIdle,
		CreatedAt: time.Now(),
	}
}

// WithUpload applies a résumé upload: the extracted profile and text are
// recorded and the session moves to ready, or to collecting-fields when the
// extractor reported missing fields.
func (s Session) WithUpload(profile model.CandidateProfile, missing []string, resumeText string) (Session, error) {
	if s.Status != StatusIdle {
		return s, fmt.Errorf("%w: upload in %s", ErrInvalidTransition, s.Status)
	}
	next := s.clone()
	next.Profile = profile
	next.ResumeText = resumeText
	next.MissingFields = append([]string(nil), missing...)
	if len(missing) > 0 {
		next.Status = StatusCollectingFields
	} else {
		next.Status = StatusReady
	}
	return next, nil
}

// WithField records a collected profile field. Supplying the last missing
// field moves the session to ready.
func (s Session) WithField(field, value string) (Session, error) {
	if s.Status != StatusCollectingFields {
		return s, fmt.Errorf("%w: submit_field in %s", ErrInvalidTransition, s.Status)
	}
	next := s.clone()
	next.Profile = setProfileField(next.Profile, field, value)
	remaining := make([]string, 0, len(next.MissingFields))
	for _, f := range next.MissingFields {
		if f != field {
			remaining = append(remaining, f)
		}
	}
	next.MissingFields = remaining
	if len(remaining) == 0 {
		next.Status = StatusReady
	}
	return next, nil
}

// Started confirms the candidate wants to begin: ready → interviewing with
// the question index at zero.
func (s Session) Started(now time.Time) (Session, error) {
	if s.Status != StatusReady {
		return s, fmt.Errorf("%w: start in %s", ErrInvalidTransition, s.Status)
	}
	next := s.clone()
	next.Status = StatusInterviewing
	next.CurrentIndex = 0
	next.StartTime = now
	return next, nil
}

// WithQuestion appends a generated question to the ledger. The ledger guards
// reject a seventh question and duplicate ids.
func (s Session) WithQuestion(entry model.QuestionEntry) (Session, error) {
	if s.Status != StatusInterviewing {
		return s, fmt.Errorf("%w: next_question in %s", ErrInvalidTransition, s.Status)
	}
	entries, err := AppendQuestion(s.Questions, entry)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Questions = entries
	return next, nil
}

// WithAnswer records the candidate's answer text and time taken. Repeated
// calls for the same question overwrite.
func (s Session) WithAnswer(questionID, answer string, timeTaken int) (Session, error) {
	if s.Status != StatusInterviewing {
		return s, fmt.Errorf("%w: submit_answer in %s", ErrInvalidTransition, s.Status)
	}
	entries, err := RecordAnswer(s.Questions, questionID, answer, timeTaken)
	if err != nil {
		return s, err
	}
	next := s.clone()
	next.Questions = entries
	return next, nil
}

// WithEvaluation records the score and feedback for a question and advances
// the index. It returns the stored (possibly clamped) score and whether the
// interview is ready for summary aggregation — the completed status itself
// is only entered once results exist (WithResults).
func (s Session) WithEvaluation(questionID string, score int, feedback string) (next Session, stored int, last bool, err error) {
	if s.Status != StatusInterviewing {
		return s, 0, false, fmt.Errorf("%w: evaluation in %s", ErrInvalidTransition, s.Status)
	}
	entries, stored, err := RecordEvaluation(s.Questions, questionID, score, feedback)
	if err != nil {
		return s, 0, false, err
	}
	next = s.clone()
	next.Questions = entries
	last = next.CurrentIndex >= MaxQuestions-1
	if !last {
		next.CurrentIndex++
	}
	return next, stored, last, nil
}

// WithResults stores the aggregate outcome and completes the session.
func (s Session) WithResults(totalScore int, summary string, breakdown []model.ScoreBreakdown) (Session, error) {
	if s.Status != StatusInterviewing {
		return s, fmt.Errorf("%w: results in %s", ErrInvalidTransition, s.Status)
	}
	next := s.clone()
	next.TotalScore = totalScore
	next.Summary = summary
	next.Breakdown = append([]model.ScoreBreakdown(nil), breakdown...)
	next.Status = StatusCompleted
	return next, nil
}

// WithFailure moves the session to the recoverable error state, remembering
// where it was so a dismiss can return there.
func (s Session) WithFailure(msg string) Session {
	next := s.clone()
	if s.Status != StatusError {
		next.PrevStatus = s.Status
	}
	next.Status = StatusError
	next.LastError = msg
	return next
}

// Dismissed clears a surfaced error and returns to the pre-error state, so
// the candidate can retry the failed step.
func (s Session) Dismissed() Session {
	if s.Status != StatusError {
		return s.clone()
	}
	next := s.clone()
	next.LastError = ""
	if next.PrevStatus != "" {
		next.Status = next.PrevStatus
	} else {
		next.Status = StatusIdle
	}
	next.PrevStatus = ""
	return next
}

// Reset discards everything: a fresh idle session under the same id.
func (s Session) Reset() Session {
	return NewSession(s.ID)
}

// Resumable reports whether a reloaded client should be offered the
// continue / start-over choice instead of silently resuming.
func (s Session) Resumable() bool {
	return s.Status == StatusInterviewing && len(s.Questions) > 0
}

// CurrentQuestion returns the entry at the current index.
func (s Session) CurrentQuestion() (model.QuestionEntry, bool) {
	if s.CurrentIndex < 0 || s.CurrentIndex >= len(s.Questions) {
		return model.QuestionEntry{}, false
	}
	return s.Questions[s.CurrentIndex], true
}

// clone deep-copies the session so transitions never alias the receiver's
// slices.
func (s Session) clone() Session {
	next := s
	next.Questions = append([]model.QuestionEntry(nil), s.Questions...)
	next.MissingFields = append([]string(nil), s.MissingFields...)
	next.Breakdown = append([]model.ScoreBreakdown(nil), s.Breakdown...)
	return next
}

func setProfileField(p model.CandidateProfile, field, value string) model.CandidateProfile {
	switch field {
	case "name":
		p.Name = value
	case "email":
		p.Email = value
	case "phone":
		p.Phone = value
	case "designation":
		p.Designation = value
	case "location":
		p.Location = value
	case "github":
		p.Github = value
	case "linkedin":
		p.Linkedin = value
	}
	return p
}
