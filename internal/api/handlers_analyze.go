// handlers_analyze.go - Project analysis handlers
package api

import (
	"log/slog"
	"net/http"

	"github.com/axoraweb/seo-backend/internal/jobs"
	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/labstack/echo/v4"
)

// AnalyzeHandlerImpl implements the AnalyzeHandler interface
type AnalyzeHandlerImpl struct {
	jobs   AnalysisJobs
	logger *slog.Logger
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(j AnalysisJobs, logger *slog.Logger) AnalyzeHandler {
	return &AnalyzeHandlerImpl{jobs: j, logger: logger}
}

type analyzeResponse struct {
	Success  bool                    `json:"success"`
	Analysis *models.ProjectAnalysis `json:"analysis"`
	Steps    []models.ProcessingStep `json:"steps"`
}

type startAnalysisResponse struct {
	JobID  string                  `json:"jobId"`
	Status jobs.Status             `json:"status"`
	Steps  []models.ProcessingStep `json:"steps"`
}

// HandleAnalyze analyzes the uploaded project and waits for the result
func (h *AnalyzeHandlerImpl) HandleAnalyze(c echo.Context) error {
	up, err := readProjectUpload(c, h.logger)
	if err != nil {
		return FromError(err, "Internal server error during analysis")
	}

	job, err := h.jobs.Run(c.Request().Context(), up.Data, up.Info)
	if err != nil {
		return FromError(err, "Internal server error during analysis")
	}

	return respond(c, http.StatusOK, analyzeResponse{
		Success:  true,
		Analysis: job.Analysis,
		Steps:    job.Steps,
	})
}

// HandleStartAnalysis queues an analysis job and returns its id immediately
func (h *AnalyzeHandlerImpl) HandleStartAnalysis(c echo.Context) error {
	up, err := readProjectUpload(c, h.logger)
	if err != nil {
		return FromError(err, "Internal server error during analysis")
	}

	job := h.jobs.Start(c.Request().Context(), up.Data, up.Info)
	return respond(c, http.StatusAccepted, startAnalysisResponse{
		JobID:  job.ID,
		Status: job.Status,
		Steps:  job.Steps,
	})
}

// HandleGetAnalysis returns the current state of an analysis job
func (h *AnalyzeHandlerImpl) HandleGetAnalysis(c echo.Context) error {
	id := c.Param("id")
	job, err := h.jobs.Get(id)
	if err != nil {
		return NewNotFoundError("analysis job", id)
	}
	return respond(c, http.StatusOK, job)
}
