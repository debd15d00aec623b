package analyzer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/axoraweb/seo-backend/internal/classifier"
	"github.com/axoraweb/seo-backend/internal/models"
	gojson "github.com/goccy/go-json"
)

// DefaultExcludeDirs are directories never worth analyzing.
var DefaultExcludeDirs = map[string]bool{
	".git":             true,
	".next":            true,
	".turbo":           true,
	".vercel":          true,
	"node_modules":     true,
	"bower_components": true,
	"vendor":           true,
	"dist":             true,
	"build":            true,
	"out":              true,
	"coverage":         true,
	".cache":           true,
}

// fileRecord tracks one walked file through the analysis steps.
type fileRecord struct {
	abs      string
	category models.FileCategory
	content  string
	readErr  error
	analysis models.FileAnalysis
}

// Inventory is the result of walking a project directory.
type Inventory struct {
	Root        string
	ProjectType models.ProjectType
	Framework   string
	HasRouting  bool
	Warnings    []string

	files []*fileRecord
}

// Len returns the number of files found.
func (inv *Inventory) Len() int {
	return len(inv.files)
}

type packageManifest struct {
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func (p *packageManifest) has(name string) bool {
	if p == nil {
		return false
	}
	_, dep := p.Dependencies[name]
	_, dev := p.DevDependencies[name]
	return dep || dev
}

// Scan walks root, classifies every file and detects the project type.
// An unreadable subdirectory is recorded as a warning and skipped.
func (a *Analyzer) Scan(ctx context.Context, root string) (*Inventory, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("reading project root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("project root %s is not a directory", root)
	}

	inv := &Inventory{Root: abs}
	err = filepath.WalkDir(abs, func(p string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, _ := filepath.Rel(abs, p)
		rel = filepath.ToSlash(rel)

		if walkErr != nil {
			if p == abs {
				return walkErr
			}
			a.logger.Warn("skipping unreadable path", "path", rel, "error", walkErr)
			inv.Warnings = append(inv.Warnings, fmt.Sprintf("skipped %s: %v", rel, walkErr))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != abs && a.excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		fi, err := d.Info()
		if err != nil {
			inv.Warnings = append(inv.Warnings, fmt.Sprintf("skipped %s: %v", rel, err))
			return nil
		}
		inv.files = append(inv.files, &fileRecord{
			abs:      p,
			category: classifier.Classify(rel),
			analysis: models.FileAnalysis{
				Filename: path.Base(rel),
				Path:     rel,
				Type:     classifier.AnalysisType(rel),
				Size:     fi.Size(),
			},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.detectProject(inv)
	for _, f := range inv.files {
		f.analysis.IsPage = isPage(f.analysis.Path, f.analysis.Type, inv.ProjectType)
		f.analysis.IsComponent = !f.analysis.IsPage && isComponent(f.analysis.Path, f.analysis.Type)
	}
	return inv, nil
}

func (a *Analyzer) readManifest(root string) *packageManifest {
	data, err := os.ReadFile(filepath.Join(root, "package.json"))
	if err != nil {
		return nil
	}
	var m packageManifest
	if err := gojson.Unmarshal(data, &m); err != nil {
		a.logger.Warn("ignoring malformed package.json", "error", err)
		return nil
	}
	return &m
}

func (a *Analyzer) detectProject(inv *Inventory) {
	manifest := a.readManifest(inv.Root)

	var htmlFiles, componentFiles int
	var appRouter, pagesRouter, nextConfig bool
	for _, f := range inv.files {
		p := f.analysis.Path
		switch f.analysis.Type {
		case "html":
			htmlFiles++
		case "jsx", "tsx":
			componentFiles++
		}
		if strings.HasPrefix(path.Base(p), "next.config.") {
			nextConfig = true
		}
		if inSegment(p, "app") && isRouteFile(p) {
			appRouter = true
		}
		if inSegment(p, "pages") {
			pagesRouter = true
		}
	}

	switch {
	case manifest.has("next") || nextConfig || appRouter:
		inv.ProjectType = models.ProjectNextJS
		inv.Framework = "Next.js"
		if appRouter {
			inv.Framework = "Next.js (App Router)"
		} else if pagesRouter {
			inv.Framework = "Next.js (Pages Router)"
		}
		inv.HasRouting = appRouter || pagesRouter
	case manifest.has("react") || (componentFiles > 0 && htmlFiles <= 1):
		inv.ProjectType = models.ProjectReact
		inv.Framework = "React"
		inv.HasRouting = manifest.has("react-router-dom") || manifest.has("react-router") || pagesRouter
	case componentFiles > 0:
		inv.ProjectType = models.ProjectMixed
		inv.Framework = "HTML + React"
		inv.HasRouting = htmlFiles > 1 || pagesRouter
	default:
		inv.ProjectType = models.ProjectHTML
		inv.Framework = "Static HTML"
		inv.HasRouting = htmlFiles > 1
	}
}

// inSegment reports whether any directory of p is named dir.
func inSegment(p, dir string) bool {
	parts := strings.Split(path.Dir(p), "/")
	for _, part := range parts {
		if part == dir {
			return true
		}
	}
	return false
}

func isRouteFile(p string) bool {
	base := path.Base(p)
	name := strings.TrimSuffix(base, path.Ext(base))
	switch path.Ext(base) {
	case ".js", ".jsx", ".tsx", ".ts":
		return name == "page"
	}
	return false
}

func isPage(p, typ string, project models.ProjectType) bool {
	switch typ {
	case "html":
		return true
	case "jsx", "tsx", "js", "ts":
	default:
		return false
	}

	base := path.Base(p)
	name := strings.TrimSuffix(base, path.Ext(base))
	if inSegment(p, "app") {
		return name == "page"
	}
	if inSegment(p, "pages") {
		return !strings.HasPrefix(name, "_") && !inSegment(p, "api")
	}
	if path.Dir(p) == "." || path.Dir(p) == "src" {
		if name == "index" && (typ == "jsx" || typ == "tsx") {
			return true
		}
	}
	if project != models.ProjectNextJS && (typ == "jsx" || typ == "tsx") {
		return inSegment(p, "views") || inSegment(p, "routes")
	}
	return false
}

func isComponent(p, typ string) bool {
	switch typ {
	case "jsx", "tsx":
		return true
	case "js", "ts":
		return inSegment(p, "components")
	}
	return false
}

// load reads file contents for pages and components.
func (a *Analyzer) load(f *fileRecord) {
	if f.analysis.Size > a.maxFileSize {
		f.readErr = errors.New("file too large to analyze")
		return
	}
	data, err := os.ReadFile(f.abs)
	if err != nil {
		f.readErr = err
		return
	}
	f.content = string(data)
}
