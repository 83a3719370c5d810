package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrSessionNotFound ErrCode = "SESSION_NOT_FOUND"

	// ─── Interview flow ────────────────────────────────────────────────
	ErrInvalidSessionState ErrCode = "INVALID_SESSION_STATE"
	ErrSubmissionInFlight  ErrCode = "SUBMISSION_IN_FLIGHT"
	ErrInterviewComplete   ErrCode = "INTERVIEW_COMPLETE"

	// ─── Resume upload ─────────────────────────────────────────────────
	ErrFileRequired     ErrCode = "FILE_REQUIRED"
	ErrUnsupportedFile  ErrCode = "UNSUPPORTED_FILE_TYPE"
	ErrFileTooLarge     ErrCode = "FILE_TOO_LARGE"
	ErrUnreadableResume ErrCode = "UNREADABLE_RESUME"

	// ─── Upstream AI ───────────────────────────────────────────────────
	ErrAIUnavailable ErrCode = "AI_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidPayload:
		return "The request payload is invalid."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrSessionNotFound:
		return "Interview session not found or expired."

	// ─── Interview flow ────────────────────────────────────────────────
	case ErrInvalidSessionState:
		return "This action is not valid in the current interview state."
	case ErrSubmissionInFlight:
		return "A submission for this question is already being processed."
	case ErrInterviewComplete:
		return "The interview has already been completed."

	// ─── Resume upload ─────────────────────────────────────────────────
	case ErrFileRequired:
		return "A resume file is required."
	case ErrUnsupportedFile:
		return "Unsupported file type. Please upload a PDF or DOCX file."
	case ErrFileTooLarge:
		return "The uploaded file exceeds the size limit."
	case ErrUnreadableResume:
		return "No readable text could be extracted from the resume."

	// ─── Upstream AI ───────────────────────────────────────────────────
	case ErrAIUnavailable:
		return "The AI service is temporarily unavailable. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
