// Package optimizer runs uploaded archives through the per-file rewriters
// and packs the results.
package optimizer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/axoraweb/seo-backend/internal/archive"
	"github.com/axoraweb/seo-backend/internal/classifier"
	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/axoraweb/seo-backend/internal/rewrite"
)

// Options configures a Pipeline.
type Options struct {
	MaxEntrySize   int64
	Defaults       rewrite.Defaults
	DetectLanguage bool
	InternalLinks  bool
	Logger         *slog.Logger
}

// Output is a finished optimization: the per-file report and the new archive.
type Output struct {
	Result  *models.ProcessingResult
	Archive []byte
}

// Pipeline optimizes one archive per call and holds no per-request state.
type Pipeline struct {
	reader         *archive.Reader
	defaults       rewrite.Defaults
	detectLanguage bool
	internalLinks  bool
	logger         *slog.Logger
}

// NewPipeline creates a pipeline.
func NewPipeline(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		reader:         archive.NewReader(opts.MaxEntrySize),
		defaults:       opts.Defaults,
		detectLanguage: opts.DetectLanguage,
		internalLinks:  opts.InternalLinks,
		logger:         logger,
	}
}

// Settings resolves request details against the pipeline defaults.
func (p *Pipeline) Settings(info *models.ProjectInfo) *rewrite.Settings {
	s := rewrite.Resolve(info, p.defaults)
	s.DetectLanguage = p.detectLanguage
	s.InternalLinks = p.internalLinks
	return s
}

// Run reads the archive, optimizes every entry in archive order and writes
// the results to a new archive. A failing entry is recorded and the rest
// are still processed.
func (p *Pipeline) Run(ctx context.Context, data []byte, info *models.ProjectInfo) (*Output, error) {
	entries, err := p.reader.ReadAll(data)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrNoProcessableFiles
	}

	s := p.Settings(info)
	files := make([]models.OptimizedFile, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.Err != nil {
			p.logger.Warn("skipping unreadable entry", "file", e.Path, "error", e.Err)
			files = append(files, unreadableFile(e.Path, e.Err))
			continue
		}
		files = append(files, OptimizeFile(e.Path, e.Content, s))
	}

	result, err := Aggregate(files)
	if err != nil {
		return nil, err
	}

	packed, err := archive.Write(files)
	if err != nil {
		return nil, fmt.Errorf("packing optimized archive: %w", err)
	}

	p.logger.Info("optimized archive",
		"files", len(files),
		"originalSize", result.TotalOriginalSize,
		"optimizedSize", result.TotalOptimizedSize,
		"compressionRatio", fmt.Sprintf("%.1f", result.CompressionRatio))

	return &Output{Result: result, Archive: packed}, nil
}

// OptimizeFile classifies and rewrites one file.
func OptimizeFile(path, content string, s *rewrite.Settings) models.OptimizedFile {
	category := classifier.Classify(path)
	out := rewrite.Apply(category, content, s)
	return models.OptimizedFile{
		Name:          path,
		Content:       out.Content,
		OriginalSize:  len(content),
		OptimizedSize: len(out.Content),
		Optimizations: out.Labels,
		Type:          classifier.WireType(category),
		Category:      category,
	}
}

func unreadableFile(path string, err error) models.OptimizedFile {
	category := classifier.Classify(path)
	return models.OptimizedFile{
		Name:          path,
		Optimizations: []string{fmt.Sprintf("Error processing file: %v", err)},
		Type:          classifier.WireType(category),
		Category:      category,
	}
}
