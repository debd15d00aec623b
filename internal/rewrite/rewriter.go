// Package rewrite holds the per-category content rewriters. Each rewriter
// takes file content plus resolved Settings and returns new content and the
// human-readable labels of what it changed.
package rewrite

import (
	"fmt"
	"log/slog"

	"github.com/axoraweb/seo-backend/internal/models"
)

// Rewriter transforms one file's content.
type Rewriter func(content string, s *Settings) (string, []string, error)

// LabelUnsupported is reported for files no rewriter handles.
const LabelUnsupported = "File type not supported for optimization"

var rewriters = map[models.FileCategory]Rewriter{
	models.CategoryMarkup:         RewriteMarkup,
	models.CategoryStylesheet:     RewriteStylesheet,
	models.CategoryScript:         RewriteScript,
	models.CategoryComponent:      RewriteComponent,
	models.CategoryComponentTyped: RewriteTypedComponent,
	models.CategoryStructuredData: RewriteJSON,
}

// kinds names each category in failure labels.
var kinds = map[models.FileCategory]string{
	models.CategoryMarkup:         "HTML",
	models.CategoryStylesheet:     "CSS",
	models.CategoryScript:         "JavaScript",
	models.CategoryComponent:      "React",
	models.CategoryComponentTyped: "TypeScript",
	models.CategoryStructuredData: "JSON",
}

// Outcome is the result of applying a rewriter. Failed is set when the
// rewriter errored and the original content was kept.
type Outcome struct {
	Content string
	Labels  []string
	Failed  bool
}

// For returns the rewriter registered for a category.
func For(c models.FileCategory) (Rewriter, bool) {
	r, ok := rewriters[c]
	return r, ok
}

// FailureLabel is the single label reported when a rewriter fails.
func FailureLabel(c models.FileCategory) string {
	kind, ok := kinds[c]
	if !ok {
		kind = "file"
	}
	return fmt.Sprintf("Error during %s optimization - using original content", kind)
}

// Apply runs the rewriter for a category. It never fails: a rewriter error
// or panic yields the original content and one failure label.
func Apply(c models.FileCategory, content string, s *Settings) (out Outcome) {
	r, ok := rewriters[c]
	if !ok {
		return Outcome{Content: content, Labels: []string{LabelUnsupported}}
	}

	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("rewriter panicked", "category", string(c), "panic", fmt.Sprint(rec))
			out = Outcome{Content: content, Labels: []string{FailureLabel(c)}, Failed: true}
		}
	}()

	rewritten, labels, err := r(content, s)
	if err != nil {
		slog.Warn("rewriter failed", "category", string(c), "error", err)
		return Outcome{Content: content, Labels: []string{FailureLabel(c)}, Failed: true}
	}
	if labels == nil {
		labels = []string{}
	}
	return Outcome{Content: rewritten, Labels: labels}
}
