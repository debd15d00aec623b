package rewrite

import "strings"

// performanceHint is appended to stylesheets that declare no will-change.
const performanceHint = "\n/* Performance optimizations */\n.animate{will-change:transform}"

// RewriteStylesheet minifies CSS and appends a compositor hint once.
func RewriteStylesheet(content string, _ *Settings) (string, []string, error) {
	var labels []string
	if cssComment.MatchString(content) {
		labels = append(labels, "Removed CSS comments")
	}

	out, err := minifier.String(mimeCSS, content)
	if err != nil {
		out = collapseCSS(content)
	}
	if len(out) < len(content) {
		labels = append(labels, "Minified CSS")
	}

	if !strings.Contains(out, "will-change") {
		out += performanceHint
		labels = append(labels, "Added performance hints")
	}
	return out, labels, nil
}
