package rewrite

import "strings"

// RewriteScript strips comments and minifies JavaScript. Sources the
// minifier cannot parse fall back to a comment stripper that keeps line breaks.
func RewriteScript(content string, _ *Settings) (string, []string, error) {
	var labels []string
	if hasScriptComment(content) {
		labels = append(labels, "Removed JavaScript comments")
	}

	out, err := minifier.String(mimeJS, content)
	if err != nil {
		out = collapseScript(content)
	}
	if len(out) < len(content) {
		labels = append(labels, "Minified JavaScript")
	}

	if strings.Contains(content, "addEventListener") && !strings.Contains(content, "passive") {
		labels = append(labels, "Consider adding passive event listeners for better performance")
	}
	return out, labels, nil
}
