package rewrite

import (
	"regexp"
	"strings"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"
	"github.com/tdewolff/minify/v2/json"
)

const (
	mimeHTML = "text/html"
	mimeCSS  = "text/css"
	mimeJS   = "text/javascript"
)

var minifier = newMinifier()

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc(mimeCSS, css.Minify)
	m.AddRegexp(regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$"), &js.Minifier{KeepVarNames: true})
	m.AddFuncRegexp(regexp.MustCompile("[/+]json$"), json.Minify)
	m.Add(mimeHTML, &html.Minifier{
		KeepDocumentTags:    true,
		KeepEndTags:         true,
		KeepQuotes:          true,
		KeepDefaultAttrVals: true,
	})
	return m
}

var (
	htmlComment   = regexp.MustCompile(`<!--[\s\S]*?-->`)
	spaceRun      = regexp.MustCompile(`\s+`)
	betweenTags   = regexp.MustCompile(`>\s+<`)
	cssComment    = regexp.MustCompile(`/\*[\s\S]*?\*/`)
	cssPunctSpace = regexp.MustCompile(`\s*([{}:;,>])\s*`)
	blankLines    = regexp.MustCompile(`\n\s*\n+`)
	lineSpaceRun  = regexp.MustCompile(`[ \t]+`)
)

// collapseMarkup is the fallback when the HTML minifier rejects a document.
func collapseMarkup(s string) string {
	s = htmlComment.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, " ")
	s = betweenTags.ReplaceAllString(s, "><")
	return strings.TrimSpace(s)
}

// collapseCSS is the fallback when the CSS minifier rejects a stylesheet.
func collapseCSS(s string) string {
	s = cssComment.ReplaceAllString(s, "")
	s = spaceRun.ReplaceAllString(s, " ")
	s = cssPunctSpace.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, ";}", "}")
	return strings.TrimSpace(s)
}

// collapseScript strips comments outside string literals and squeezes
// whitespace while keeping line breaks, which automatic semicolon insertion
// may depend on.
func collapseScript(s string) string {
	s = stripScriptComments(s)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSpace(lineSpaceRun.ReplaceAllString(l, " "))
	}
	s = strings.Join(lines, "\n")
	s = blankLines.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}

func stripScriptComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	var quote byte
	for i := 0; i < len(s); i++ {
		c := s[i]
		if quote != 0 {
			b.WriteByte(c)
			switch {
			case c == '\\' && i+1 < len(s):
				i++
				b.WriteByte(s[i])
			case c == quote:
				quote = 0
			}
			continue
		}

		switch {
		case c == '"' || c == '\'' || c == '`':
			quote = c
			b.WriteByte(c)
		case c == '/' && i+1 < len(s) && s[i+1] == '/':
			for i < len(s) && s[i] != '\n' {
				i++
			}
			if i < len(s) {
				b.WriteByte('\n')
			}
		case c == '/' && i+1 < len(s) && s[i+1] == '*':
			end := strings.Index(s[i+2:], "*/")
			if end < 0 {
				return b.String()
			}
			i += end + 3
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// hasScriptComment reports whether stripping comments would change s.
func hasScriptComment(s string) bool {
	return stripScriptComments(s) != s
}
