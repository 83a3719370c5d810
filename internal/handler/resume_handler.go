package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/crispai/crisp-backend/internal/ai"
	"github.com/crispai/crisp-backend/internal/config"
	"github.com/crispai/crisp-backend/internal/response"
	"github.com/crispai/crisp-backend/internal/resume"
	"github.com/crispai/crisp-backend/internal/service"
)

// ResumeHandler handles résumé upload.
type ResumeHandler struct {
	resumeService  *service.ResumeService
	maxUploadBytes int64
}

// NewResumeHandler creates a new ResumeHandler.
func NewResumeHandler(resumeService *service.ResumeService, cfg *config.Config) *ResumeHandler {
	return &ResumeHandler{resumeService: resumeService, maxUploadBytes: cfg.MaxUploadBytes}
}

// UploadResume godoc
// POST /api/upload-resume
// Accepts a PDF or DOCX résumé and opens a new interview session.
func (h *ResumeHandler) UploadResume(c *gin.Context) {
	file, header, err := c.Request.FormFile("resume")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrFileRequired)
		return
	}
	defer file.Close()

	if header.Size > h.maxUploadBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxUploadBytes+1))
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if int64(len(data)) > h.maxUploadBytes {
		response.Fail(c, http.StatusBadRequest, response.ErrFileTooLarge)
		return
	}

	result, err := h.resumeService.Upload(c.Request.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, resume.ErrUnsupportedType):
			response.Fail(c, http.StatusBadRequest, response.ErrUnsupportedFile)
		case errors.Is(err, resume.ErrUnreadable):
			response.Fail(c, http.StatusBadRequest, response.ErrUnreadableResume)
		case errors.Is(err, ai.ErrUnavailable):
			response.Fail(c, http.StatusServiceUnavailable, response.ErrAIUnavailable)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusOK, result)
}
