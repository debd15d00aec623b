// Package classifier maps file paths to rewriting categories.
package classifier

import (
	"path"
	"strings"

	"github.com/axoraweb/seo-backend/internal/models"
)

// categories is the extension table shared by the optimizer and the analyzer.
var categories = map[string]models.FileCategory{
	"html": models.CategoryMarkup,
	"htm":  models.CategoryMarkup,
	"css":  models.CategoryStylesheet,
	"js":   models.CategoryScript,
	"mjs":  models.CategoryScript,
	"cjs":  models.CategoryScript,
	"jsx":  models.CategoryComponent,
	"tsx":  models.CategoryComponentTyped,
	"ts":   models.CategoryComponentTyped,
	"json": models.CategoryStructuredData,
}

// wireTypes are the short type labels reported in optimization results.
var wireTypes = map[models.FileCategory]string{
	models.CategoryMarkup:         "html",
	models.CategoryStylesheet:     "css",
	models.CategoryScript:         "js",
	models.CategoryComponent:      "jsx",
	models.CategoryComponentTyped: "tsx",
	models.CategoryStructuredData: "json",
	models.CategoryUnsupported:    "other",
}

// Extension returns the lowercased text after the last dot of the final path
// element, or "" when there is none.
func Extension(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	i := strings.LastIndex(base, ".")
	if i < 0 || i == len(base)-1 {
		return ""
	}
	return strings.ToLower(base[i+1:])
}

// Classify returns the category for a path. Unknown and missing extensions
// are unsupported.
func Classify(p string) models.FileCategory {
	if c, ok := categories[Extension(p)]; ok {
		return c
	}
	return models.CategoryUnsupported
}

// WireType returns the response type label for a category.
func WireType(c models.FileCategory) string {
	if t, ok := wireTypes[c]; ok {
		return t
	}
	return "other"
}

// AnalysisType returns the analyzer's file type label, which keeps .ts apart
// from .tsx and folds every unknown extension into "other".
func AnalysisType(p string) string {
	switch ext := Extension(p); ext {
	case "html", "htm":
		return "html"
	case "jsx", "tsx", "ts", "css", "json":
		return ext
	case "js", "mjs", "cjs":
		return "js"
	default:
		return "other"
	}
}

// IsTyped reports whether a component category carries type annotations.
func IsTyped(c models.FileCategory) bool {
	return c == models.CategoryComponentTyped
}
