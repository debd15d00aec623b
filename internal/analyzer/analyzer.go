// Package analyzer inspects an extracted project directory and reports
// per-file SEO state plus generated snippets.
package analyzer

import (
	"context"
	"log/slog"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/axoraweb/seo-backend/internal/rewrite"
)

// DefaultMaxFileSize caps how much of a single file is read for checks.
const DefaultMaxFileSize = 5 << 20

// ProgressFunc is called after each analyzed file.
type ProgressFunc func(done, total int)

// Options configures an Analyzer.
type Options struct {
	ExcludeDirs map[string]bool
	MaxFileSize int64
	Logger      *slog.Logger
}

// Analyzer walks project directories.
type Analyzer struct {
	logger      *slog.Logger
	excludeDirs map[string]bool
	maxFileSize int64
}

// New creates an Analyzer, filling unset options with defaults.
func New(opts Options) *Analyzer {
	a := &Analyzer{
		logger:      opts.Logger,
		excludeDirs: opts.ExcludeDirs,
		maxFileSize: opts.MaxFileSize,
	}
	if a.logger == nil {
		a.logger = slog.Default()
	}
	if a.excludeDirs == nil {
		a.excludeDirs = DefaultExcludeDirs
	}
	if a.maxFileSize <= 0 {
		a.maxFileSize = DefaultMaxFileSize
	}
	return a
}

// AnalyzeDir runs every analysis step over root.
func (a *Analyzer) AnalyzeDir(ctx context.Context, root string, s *rewrite.Settings) (*models.ProjectAnalysis, error) {
	inv, err := a.Scan(ctx, root)
	if err != nil {
		return nil, err
	}
	if err := a.Inspect(ctx, inv, s, nil); err != nil {
		return nil, err
	}
	a.GenerateSnippets(inv, s)
	return Summarize(inv), nil
}

// Inspect runs the SEO checks on every page and component of inv.
// A file that cannot be read or parsed gets an issue instead of failing the run.
func (a *Analyzer) Inspect(ctx context.Context, inv *Inventory, s *rewrite.Settings, progress ProgressFunc) error {
	total := len(inv.files)
	for i, f := range inv.files {
		if err := ctx.Err(); err != nil {
			return err
		}
		a.inspect(f, s)
		if progress != nil {
			progress(i+1, total)
		}
	}
	return nil
}

func (a *Analyzer) inspect(f *fileRecord, s *rewrite.Settings) {
	fa := &f.analysis
	fa.Issues = []string{}
	fa.Recommendations = []string{}
	if !fa.IsPage && !fa.IsComponent {
		return
	}

	a.load(f)
	if f.readErr != nil {
		a.logger.Warn("analyzer could not read file", "file", fa.Path, "error", f.readErr)
		fa.Issues = append(fa.Issues, "Could not read file: "+f.readErr.Error())
		fa.NeedsSEO = fa.IsPage
		return
	}

	switch fa.Type {
	case "html":
		if err := checkMarkup(fa, f.content, s); err != nil {
			a.logger.Warn("analyzer could not parse file", "file", fa.Path, "error", err)
			fa.Issues = append(fa.Issues, err.Error())
		}
	default:
		checkComponent(fa, f.content, s)
	}
	fa.NeedsSEO = fa.IsPage && fa.SEOScore < 100
}

// GenerateSnippets attaches ready-to-paste SEO code to every page that needs it.
func (a *Analyzer) GenerateSnippets(inv *Inventory, s *rewrite.Settings) {
	for _, f := range inv.files {
		fa := &f.analysis
		if !fa.NeedsSEO {
			continue
		}
		if err := fillSnippets(fa, f.content, s); err != nil {
			a.logger.Error("snippet generation failed", "file", fa.Path, "error", err)
		}
	}
}

func fillSnippets(fa *models.FileAnalysis, content string, s *rewrite.Settings) error {
	ld, err := rewrite.StructuredDataSnippet(s)
	if err != nil {
		return err
	}
	fa.SEOCode.StructuredData = ld

	if fa.Type == "html" {
		fa.SEOCode.HTMLHead, err = rewrite.HeadSnippet(s)
		return err
	}

	name := rewrite.ComponentName(content)
	if name == "Component" {
		name = pageName(fa.Path)
	}
	typed := fa.Type == "tsx" || fa.Type == "ts"
	if fa.IsPage && rewrite.IsClientComponent(content) {
		fa.SEOCode.Metadata, err = rewrite.ClientPageSnippet(name, metadataTarget(fa.Path), typed, s)
		return err
	}
	fa.SEOCode.Metadata, err = rewrite.MetadataSnippet(name, typed, s)
	return err
}

// metadataTarget names where a client page's metadata belongs: the sibling
// layout under app/, otherwise the parent server component.
func metadataTarget(p string) string {
	if p == "app" || strings.HasPrefix(p, "app/") || strings.Contains(p, "/app/") {
		return path.Join(path.Dir(p), "layout"+path.Ext(p))
	}
	return "the parent server component"
}

// pageName derives a display name from a route file path: app/about/page.tsx is "About".
func pageName(p string) string {
	base := path.Base(p)
	name := strings.TrimSuffix(base, path.Ext(base))
	if name == "page" || name == "index" {
		dir := path.Base(path.Dir(p))
		if dir == "." || dir == "app" || dir == "pages" || dir == "src" {
			return "Home"
		}
		name = dir
	}
	var b strings.Builder
	for _, word := range strings.FieldsFunc(name, func(r rune) bool { return r == '-' || r == '_' || r == '[' || r == ']' }) {
		r, size := utf8.DecodeRuneInString(word)
		b.WriteRune(unicode.ToUpper(r))
		b.WriteString(word[size:])
	}
	if b.Len() == 0 {
		return "Page"
	}
	return b.String()
}

// Summarize folds an inspected inventory into the project report.
func Summarize(inv *Inventory) *models.ProjectAnalysis {
	out := &models.ProjectAnalysis{
		ProjectType:    inv.ProjectType,
		Framework:      inv.Framework,
		TotalFiles:     len(inv.files),
		PageFiles:      []models.FileAnalysis{},
		ComponentFiles: []models.FileAnalysis{},
		StaticFiles:    []models.FileAnalysis{},
		HasRouting:     inv.HasRouting,
		Warnings:       inv.Warnings,
	}

	sum := 0
	for _, f := range inv.files {
		fa := f.analysis
		if fa.Issues == nil {
			fa.Issues = []string{}
		}
		if fa.Recommendations == nil {
			fa.Recommendations = []string{}
		}
		switch {
		case fa.IsPage:
			out.PageFiles = append(out.PageFiles, fa)
			sum += fa.SEOScore
			if fa.CurrentSEO.HasTitle && fa.CurrentSEO.HasDescription {
				out.HasMetadata = true
			}
		case fa.IsComponent:
			out.ComponentFiles = append(out.ComponentFiles, fa)
		default:
			out.StaticFiles = append(out.StaticFiles, fa)
		}
	}
	if len(out.PageFiles) > 0 {
		out.SEOReadiness = sum / len(out.PageFiles)
	}
	return out
}
