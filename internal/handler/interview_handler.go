package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crispai/crisp-backend/internal/ai"
	"github.com/crispai/crisp-backend/internal/interview"
	"github.com/crispai/crisp-backend/internal/model"
	"github.com/crispai/crisp-backend/internal/response"
	"github.com/crispai/crisp-backend/internal/service"
	"github.com/crispai/crisp-backend/internal/validator"
)

// InterviewHandler handles the interview flow endpoints.
type InterviewHandler struct {
	interviewService *service.InterviewService
}

// NewInterviewHandler creates a new InterviewHandler.
func NewInterviewHandler(interviewService *service.InterviewService) *InterviewHandler {
	return &InterviewHandler{interviewService: interviewService}
}

// Action godoc
// POST /api/interview-action
// Applies one interview action and returns the updated session snapshot.
func (h *InterviewHandler) Action(c *gin.Context) {
	var req model.InterviewActionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.interviewService.Action(c.Request.Context(), &req)
	if err != nil {
		h.failAction(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// GenerateSummary godoc
// POST /api/generate-summary
// Aggregates a fully evaluated interview into its final result.
func (h *InterviewHandler) GenerateSummary(c *gin.Context) {
	var req model.GenerateSummaryRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.interviewService.GenerateSummary(c.Request.Context(), req.SessionID, req.CandidateName)
	if err != nil {
		h.failAction(c, err)
		return
	}

	response.Success(c, http.StatusOK, session)
}

// GetSession godoc
// GET /api/session/:id
// Returns the stored snapshot so a reloaded client can offer resume/restart.
func (h *InterviewHandler) GetSession(c *gin.Context) {
	session, err := h.interviewService.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"session":   session,
		"resumable": session.Resumable(),
	})
}

// DeleteSession godoc
// DELETE /api/session/:id
// Discards a session: the "start over" choice on the resume prompt.
func (h *InterviewHandler) DeleteSession(c *gin.Context) {
	if err := h.interviewService.DeleteSession(c.Request.Context(), c.Param("id")); err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

func (h *InterviewHandler) failAction(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrSubmissionInFlight):
		response.Fail(c, http.StatusConflict, response.ErrSubmissionInFlight)
	case errors.Is(err, interview.ErrLedgerFull):
		response.Fail(c, http.StatusConflict, response.ErrInterviewComplete)
	case errors.Is(err, interview.ErrInvalidTransition),
		errors.Is(err, interview.ErrUnknownQuestion),
		errors.Is(err, interview.ErrDuplicateQuestion),
		errors.Is(err, service.ErrNotReadyForSummary):
		response.Fail(c, http.StatusConflict, response.ErrInvalidSessionState)
	case errors.Is(err, ai.ErrUnavailable):
		response.Fail(c, http.StatusServiceUnavailable, response.ErrAIUnavailable)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
