package models

// FileCategory is the closed set of rewriting strategies a file can receive.
type FileCategory string

const (
	CategoryMarkup         FileCategory = "markup"
	CategoryStylesheet     FileCategory = "stylesheet"
	CategoryScript         FileCategory = "script"
	CategoryComponent      FileCategory = "component"
	CategoryComponentTyped FileCategory = "component-typed"
	CategoryStructuredData FileCategory = "structured-data"
	CategoryUnsupported    FileCategory = "unsupported"
)

// SourceFile is one regular file taken from an uploaded archive or a walked directory.
type SourceFile struct {
	Path    string
	Content string
}

// OptimizedFile is the outcome of running one file through its rewriter.
type OptimizedFile struct {
	Name          string       `json:"name"`
	Content       string       `json:"content"`
	OriginalSize  int          `json:"originalSize"`
	OptimizedSize int          `json:"optimizedSize"`
	Optimizations []string     `json:"optimizations"`
	Type          string       `json:"type"`
	Category      FileCategory `json:"category"`
}

// ProcessingResult aggregates every OptimizedFile of one upload.
type ProcessingResult struct {
	Files              []OptimizedFile `json:"files"`
	TotalOriginalSize  int             `json:"totalOriginalSize"`
	TotalOptimizedSize int             `json:"totalOptimizedSize"`
	CompressionRatio   float64         `json:"compressionRatio"`
}
