package api

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/axoraweb/seo-backend/internal/models"
	gojson "github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
)

// projectUpload is the multipart form shared by the optimize and analyze endpoints.
type projectUpload struct {
	FileName string
	Data     []byte
	Info     *models.ProjectInfo
}

// readProjectUpload reads the "file" and optional "projectInfo" form fields.
// Malformed projectInfo is logged and treated as absent.
func readProjectUpload(c echo.Context, logger *slog.Logger) (*projectUpload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("reading file field: %w", ErrMissingRequiredInput)
	}
	if !strings.HasSuffix(strings.ToLower(fh.Filename), ".zip") {
		return nil, NewBadRequestError(CodeInvalidArchiveFormat, "Please upload a ZIP file", nil)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, NewInternalError("failed to open uploaded file", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, NewInternalError("failed to read uploaded file", err)
	}

	up := &projectUpload{FileName: fh.Filename, Data: data}
	if raw := c.FormValue("projectInfo"); raw != "" {
		var info models.ProjectInfo
		if err := gojson.Unmarshal([]byte(raw), &info); err != nil {
			logger.Warn("ignoring malformed projectInfo", "error", err)
		} else {
			up.Info = &info
		}
	}

	logger.Info("upload received", "file", fh.Filename, "bytes", len(data))
	return up, nil
}
