package rewrite

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// descriptionLimit is the longest description kept before truncation.
const descriptionLimit = 150

func element(tag string, attrs ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	for i := 0; i+1 < len(attrs); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: attrs[i], Val: attrs[i+1]})
	}
	return n
}

func textElement(tag, text string, attrs ...string) *html.Node {
	n := element(tag, attrs...)
	n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	return n
}

func metaName(name, content string) *html.Node {
	return element("meta", "name", name, "content", content)
}

func metaProperty(property, content string) *html.Node {
	return element("meta", "property", property, "content", content)
}

// Truncate cuts text to limit runes and marks the cut with an ellipsis.
func Truncate(text string, limit int) string {
	if utf8.RuneCountInString(text) <= limit {
		return text
	}
	runes := []rune(text)
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

// PageTitle is the title used when a page has none.
func PageTitle(s *Settings) string {
	if kw := s.PrimaryKeyword(); kw != "" {
		return kw + " | " + s.BusinessName
	}
	return s.BusinessName
}

// MetaDescription is the content of the description meta tag.
func MetaDescription(s *Settings) string {
	content := Truncate(s.MarkupDescription(), descriptionLimit) + " | " + s.BusinessName
	if s.Location != "" {
		content += " - " + s.Location
	}
	return content
}

func socialTitle(s *Settings) string {
	if kw := s.PrimaryKeyword(); kw != "" {
		return s.BusinessName + " - " + kw
	}
	return s.BusinessName
}

func charsetNode() *html.Node {
	return element("meta", "charset", "UTF-8")
}

func viewportNode() *html.Node {
	return metaName("viewport", "width=device-width, initial-scale=1.0")
}

func descriptionNode(s *Settings) *html.Node {
	return metaName("description", MetaDescription(s))
}

func keywordsNode(s *Settings) *html.Node {
	return metaName("keywords", strings.Join(s.Keywords, ", "))
}

func openGraphNodes(s *Settings) []*html.Node {
	nodes := []*html.Node{
		metaProperty("og:title", socialTitle(s)),
		metaProperty("og:description", Truncate(s.MarkupDescription(), descriptionLimit)),
		metaProperty("og:type", "website"),
	}
	if s.HasURL() {
		nodes = append(nodes, metaProperty("og:url", s.WebsiteURL))
	}
	return append(nodes,
		metaProperty("og:image", s.URL("/og-image.jpg")),
		metaProperty("og:site_name", s.BusinessName),
		metaProperty("og:locale", s.Defaults.Locale),
	)
}

func twitterNodes(s *Settings) []*html.Node {
	nodes := []*html.Node{
		metaName("twitter:card", "summary_large_image"),
		metaName("twitter:title", socialTitle(s)),
		metaName("twitter:description", Truncate(s.MarkupDescription(), descriptionLimit)),
		metaName("twitter:image", s.URL("/twitter-image.jpg")),
	}
	if h := s.Handle(); h != "" {
		nodes = append(nodes, metaName("twitter:site", "@"+h))
	}
	return nodes
}

func canonicalNode(s *Settings) *html.Node {
	return element("link", "rel", "canonical", "href", s.URL("/"))
}

func structuredDataNode(s *Settings) (*html.Node, error) {
	data, err := StructuredDataJSON(s, false)
	if err != nil {
		return nil, fmt.Errorf("encoding structured data: %w", err)
	}
	return textElement("script", data, "type", "application/ld+json"), nil
}

func render(nodes ...*html.Node) (string, error) {
	var lines []string
	for _, n := range nodes {
		var buf bytes.Buffer
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
		lines = append(lines, buf.String())
	}
	return strings.Join(lines, "\n"), nil
}

// HeadSnippet renders the full set of recommended head tags for a page.
func HeadSnippet(s *Settings) (string, error) {
	nodes := []*html.Node{
		charsetNode(),
		viewportNode(),
		textElement("title", PageTitle(s)),
		descriptionNode(s),
	}
	if len(s.Keywords) > 0 {
		nodes = append(nodes, keywordsNode(s))
	}
	nodes = append(nodes, openGraphNodes(s)...)
	nodes = append(nodes, twitterNodes(s)...)
	if s.HasURL() {
		nodes = append(nodes, canonicalNode(s))
	}
	return render(nodes...)
}

// StructuredDataSnippet renders an indented JSON-LD script element.
func StructuredDataSnippet(s *Settings) (string, error) {
	data, err := StructuredDataJSON(s, true)
	if err != nil {
		return "", err
	}
	return "<script type=\"application/ld+json\">\n" + data + "\n</script>", nil
}
