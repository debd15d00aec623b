package optimizer

import (
	"errors"

	"github.com/axoraweb/seo-backend/internal/models"
)

// ErrNoProcessableFiles is returned when an archive holds no regular files.
var ErrNoProcessableFiles = errors.New("no processable files found in the archive")

// Aggregate totals per-file sizes. The compression ratio is the percentage
// saved and is negative when optimization grew the output.
func Aggregate(files []models.OptimizedFile) (*models.ProcessingResult, error) {
	if len(files) == 0 {
		return nil, ErrNoProcessableFiles
	}

	result := &models.ProcessingResult{Files: files}
	for _, f := range files {
		result.TotalOriginalSize += f.OriginalSize
		result.TotalOptimizedSize += f.OptimizedSize
	}
	if result.TotalOriginalSize > 0 {
		saved := result.TotalOriginalSize - result.TotalOptimizedSize
		result.CompressionRatio = float64(saved) / float64(result.TotalOriginalSize) * 100
	}
	return result, nil
}
