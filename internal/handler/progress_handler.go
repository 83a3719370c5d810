package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crispai/crisp-backend/internal/model"
	"github.com/crispai/crisp-backend/internal/repository"
	"github.com/crispai/crisp-backend/internal/response"
	"github.com/crispai/crisp-backend/internal/service"
	"github.com/crispai/crisp-backend/internal/validator"
)

// ProgressHandler handles mid-interview durability endpoints.
type ProgressHandler struct {
	progressService *service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService *service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// SaveProgress godoc
// POST /api/save-progress
// Queues an in-progress snapshot; returns 202 once it is on the queue.
func (h *ProgressHandler) SaveProgress(c *gin.Context) {
	var req model.SaveProgressRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.progressService.SaveProgress(c.Request.Context(), &req); err != nil {
		if errors.Is(err, service.ErrNothingToSave) {
			response.Fail(c, http.StatusBadRequest, response.ErrInvalidPayload)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusAccepted, gin.H{"queued": true})
}

// UpdateChat godoc
// POST /api/update-chat
// Replaces a candidate's stored pre-interview chat transcript.
func (h *ProgressHandler) UpdateChat(c *gin.Context) {
	var req model.UpdateChatRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.progressService.UpdateChat(c.Request.Context(), req.Email, req.ChatMessages); err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"updated": true})
}
