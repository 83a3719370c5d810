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

// CandidateHandler handles the durable candidate record endpoints.
type CandidateHandler struct {
	candidateService *service.CandidateService
}

// NewCandidateHandler creates a new CandidateHandler.
func NewCandidateHandler(candidateService *service.CandidateService) *CandidateHandler {
	return &CandidateHandler{candidateService: candidateService}
}

// Save godoc
// POST /api/save-candidate
// Writes the final interview record (idempotent upsert by email/session).
func (h *CandidateHandler) Save(c *gin.Context) {
	var req model.SaveCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	candidate, err := h.candidateService.Save(c.Request.Context(), &req)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, candidate)
}

// List godoc
// GET /api/candidates?search=&sortBy=&order=
// Returns the interviewer dashboard listing.
func (h *CandidateHandler) List(c *gin.Context) {
	items, err := h.candidateService.List(
		c.Request.Context(),
		c.Query("search"),
		c.DefaultQuery("sortBy", "total_score"),
		c.DefaultQuery("order", "desc"),
	)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, items)
}

// Get godoc
// GET /api/candidate/:id
// Returns one candidate's full record for the detail view.
func (h *CandidateHandler) Get(c *gin.Context) {
	candidate, err := h.candidateService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, candidate)
}

// Delete godoc
// DELETE /api/candidate/:id
func (h *CandidateHandler) Delete(c *gin.Context) {
	if err := h.candidateService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrCandidateNotFound) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

// Check godoc
// POST /api/check-candidate
// Tells the client whether a record for this email already exists.
func (h *CandidateHandler) Check(c *gin.Context) {
	var req model.CheckCandidateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	result, err := h.candidateService.Check(c.Request.Context(), req.Email)
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	response.Success(c, http.StatusOK, result)
}
