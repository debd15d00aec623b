// handlers_optimize.go - Archive optimization handler
package api

import (
	"log/slog"
	"net/http"

	"github.com/axoraweb/seo-backend/internal/archive"
	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/labstack/echo/v4"
)

// OptimizeHandlerImpl implements the OptimizeHandler interface
type OptimizeHandlerImpl struct {
	optimizer Optimizer
	logger    *slog.Logger
}

// NewOptimizeHandler creates a new optimize handler
func NewOptimizeHandler(o Optimizer, logger *slog.Logger) OptimizeHandler {
	return &OptimizeHandlerImpl{optimizer: o, logger: logger}
}

type optimizeResponse struct {
	Success      bool                     `json:"success"`
	Result       *models.ProcessingResult `json:"result"`
	OptimizedZip string                   `json:"optimizedZip"`
}

// HandleOptimize rewrites every file of the uploaded archive and returns the new archive
func (h *OptimizeHandlerImpl) HandleOptimize(c echo.Context) error {
	up, err := readProjectUpload(c, h.logger)
	if err != nil {
		return FromError(err, "Internal server error during optimization")
	}

	out, err := h.optimizer.Run(c.Request().Context(), up.Data, up.Info)
	if err != nil {
		return FromError(err, "Internal server error during optimization")
	}

	h.logger.Info("optimization complete",
		"file", up.FileName,
		"files", len(out.Result.Files),
		"compression", out.Result.CompressionRatio,
	)
	return respond(c, http.StatusOK, optimizeResponse{
		Success:      true,
		Result:       out.Result,
		OptimizedZip: archive.EncodeBase64(out.Archive),
	})
}
