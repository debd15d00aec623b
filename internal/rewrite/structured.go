package rewrite

import (
	"bytes"
	"strings"

	gojson "github.com/goccy/go-json"
)

// RewriteJSON compacts valid JSON and leaves invalid JSON untouched.
func RewriteJSON(content string, _ *Settings) (string, []string, error) {
	src := []byte(strings.TrimSpace(content))
	if !gojson.Valid(src) {
		return content, []string{"Invalid JSON - kept original"}, nil
	}

	var buf bytes.Buffer
	if err := gojson.Compact(&buf, src); err != nil {
		return content, []string{"Invalid JSON - kept original"}, nil
	}
	return buf.String(), []string{"Minified JSON"}, nil
}
