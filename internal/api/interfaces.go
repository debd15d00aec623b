// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/axoraweb/seo-backend/internal/jobs"
	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/axoraweb/seo-backend/internal/optimizer"
	"github.com/labstack/echo/v4"
)

// OptimizeHandler handles archive optimization
type OptimizeHandler interface {
	HandleOptimize(c echo.Context) error
}

// AnalyzeHandler handles project analysis, synchronous and as jobs
type AnalyzeHandler interface {
	HandleAnalyze(c echo.Context) error
	HandleStartAnalysis(c echo.Context) error
	HandleGetAnalysis(c echo.Context) error
}

// AnalysisStreamHandler streams analysis step updates over WebSocket
type AnalysisStreamHandler interface {
	HandleAnalysisStream(c echo.Context) error
}

// ContactHandler handles contact form submissions
type ContactHandler interface {
	HandleContact(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// Optimizer runs the archive optimization pipeline.
// This allows mocking in tests
type Optimizer interface {
	Run(ctx context.Context, data []byte, info *models.ProjectInfo) (*optimizer.Output, error)
}

// AnalysisJobs runs and tracks project analyses.
type AnalysisJobs interface {
	Run(ctx context.Context, data []byte, info *models.ProjectInfo) (jobs.Job, error)
	Start(ctx context.Context, data []byte, info *models.ProjectInfo) jobs.Job
	Get(id string) (jobs.Job, error)
	Subscribe(id string) (<-chan jobs.Job, func(), error)
}
