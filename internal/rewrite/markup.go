package rewrite

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// maxInternalLinks caps generated keyword links per page.
const maxInternalLinks = 5

// semanticClasses maps a div marker class to the element it becomes.
var semanticClasses = []string{"header", "nav", "main", "footer"}

type markupStep func(doc *goquery.Document, s *Settings) (string, error)

// markupSteps run in order over the parsed document. A step returns the
// label of the change it made, or "" when the document already had it.
var markupSteps = []markupStep{
	ensureDoctype,
	ensureLang,
	ensureCharset,
	ensureViewport,
	ensureTitle,
	ensureDescription,
	ensureKeywords,
	ensureOpenGraph,
	ensureTwitterCard,
	ensureCanonical,
	ensureStructuredData,
	describeImages,
	lazyLoadImages,
	asyncDecodeImages,
	convertSemanticDivs,
	linkKeywords,
}

// RewriteMarkup parses an HTML document, adds missing SEO elements to the
// tree and renders it minified. Every check queries the tree, so rewriting
// the output again adds nothing.
func RewriteMarkup(content string, s *Settings) (string, []string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", nil, fmt.Errorf("parsing html: %w", err)
	}

	var labels []string
	for _, step := range markupSteps {
		label, err := step(doc, s)
		if err != nil {
			return "", nil, err
		}
		if label != "" {
			labels = append(labels, label)
		}
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc.Nodes[0]); err != nil {
		return "", nil, fmt.Errorf("rendering html: %w", err)
	}

	rendered := buf.String()
	out, err := minifier.String(mimeHTML, rendered)
	if err != nil {
		out = collapseMarkup(rendered)
	}
	out = upperDoctype(out)
	if len(out) < len(rendered) {
		labels = append(labels, "Minified HTML content")
	}
	return out, labels, nil
}

func upperDoctype(s string) string {
	const doctype = "<!doctype html>"
	if len(s) >= len(doctype) && strings.EqualFold(s[:len(doctype)], doctype) {
		return "<!DOCTYPE html>" + s[len(doctype):]
	}
	return s
}

func head(doc *goquery.Document) *goquery.Selection {
	return doc.Find("head").First()
}

func ensureDoctype(doc *goquery.Document, _ *Settings) (string, error) {
	root := doc.Nodes[0]
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.DoctypeNode {
			return "", nil
		}
	}
	root.InsertBefore(&html.Node{Type: html.DoctypeNode, Data: "html"}, root.FirstChild)
	return "Added DOCTYPE declaration", nil
}

func ensureLang(doc *goquery.Document, s *Settings) (string, error) {
	root := doc.Find("html").First()
	if lang, ok := root.Attr("lang"); ok && strings.TrimSpace(lang) != "" {
		return "", nil
	}
	lang := s.Defaults.Language
	if s.DetectLanguage {
		if detected, ok := DetectLanguage(doc.Find("body").Text()); ok {
			lang = detected
		}
	}
	root.SetAttr("lang", lang)
	return "Added language attribute", nil
}

func ensureCharset(doc *goquery.Document, _ *Settings) (string, error) {
	if doc.Find("meta[charset]").Length() > 0 {
		return "", nil
	}
	contentType := doc.Find("meta[http-equiv]").FilterFunction(func(_ int, m *goquery.Selection) bool {
		v, _ := m.Attr("http-equiv")
		return strings.EqualFold(v, "content-type")
	})
	if contentType.Length() > 0 {
		return "", nil
	}
	head(doc).PrependNodes(charsetNode())
	return "Added charset meta tag", nil
}

func ensureViewport(doc *goquery.Document, _ *Settings) (string, error) {
	if doc.Find(`meta[name="viewport"]`).Length() > 0 {
		return "", nil
	}
	if charset := doc.Find("head meta[charset]").First(); charset.Length() > 0 {
		charset.AfterNodes(viewportNode())
	} else {
		head(doc).PrependNodes(viewportNode())
	}
	return "Added viewport meta tag", nil
}

func ensureTitle(doc *goquery.Document, s *Settings) (string, error) {
	title := doc.Find("title").First()
	if title.Length() == 0 {
		head(doc).AppendNodes(textElement("title", PageTitle(s)))
		return "Added page title", nil
	}

	current := strings.TrimSpace(title.Text())
	if current == "" {
		title.SetText(PageTitle(s))
		return "Added page title", nil
	}

	kw := s.PrimaryKeyword()
	if kw == "" || strings.Contains(strings.ToLower(current), strings.ToLower(kw)) {
		return "", nil
	}
	optimized := kw + " | " + current
	if !strings.Contains(strings.ToLower(current), strings.ToLower(s.BusinessName)) {
		optimized += " | " + s.BusinessName
	}
	title.SetText(optimized)
	return "Optimized title with primary keyword", nil
}

func ensureDescription(doc *goquery.Document, s *Settings) (string, error) {
	if doc.Find(`meta[name="description"]`).Length() > 0 {
		return "", nil
	}
	head(doc).AppendNodes(descriptionNode(s))
	return "Added SEO-optimized meta description", nil
}

func ensureKeywords(doc *goquery.Document, s *Settings) (string, error) {
	if len(s.Keywords) == 0 || doc.Find(`meta[name="keywords"]`).Length() > 0 {
		return "", nil
	}
	head(doc).AppendNodes(keywordsNode(s))
	return fmt.Sprintf("Added %d target keywords", len(s.Keywords)), nil
}

func ensureOpenGraph(doc *goquery.Document, s *Settings) (string, error) {
	if doc.Find(`meta[property^="og:"]`).Length() > 0 {
		return "", nil
	}
	head(doc).AppendNodes(openGraphNodes(s)...)
	return "Added Open Graph tags", nil
}

func ensureTwitterCard(doc *goquery.Document, s *Settings) (string, error) {
	if doc.Find(`meta[name^="twitter:"]`).Length() > 0 {
		return "", nil
	}
	head(doc).AppendNodes(twitterNodes(s)...)
	return "Added Twitter Card optimization", nil
}

func ensureCanonical(doc *goquery.Document, s *Settings) (string, error) {
	if !s.HasURL() || doc.Find(`link[rel="canonical"]`).Length() > 0 {
		return "", nil
	}
	head(doc).AppendNodes(canonicalNode(s))
	return "Added canonical URL", nil
}

func ensureStructuredData(doc *goquery.Document, s *Settings) (string, error) {
	if doc.Find(`script[type="application/ld+json"]`).Length() > 0 {
		return "", nil
	}
	node, err := structuredDataNode(s)
	if err != nil {
		return "", err
	}
	head(doc).AppendNodes(node)
	return "Added JSON-LD structured data", nil
}

func describeImages(doc *goquery.Document, s *Settings) (string, error) {
	added := 0
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if alt, ok := img.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			src, _ := img.Attr("src")
			img.SetAttr("alt", ImageAlt(src, s))
			added++
		}
	})
	if added == 0 {
		return "", nil
	}
	return fmt.Sprintf("Enhanced %d images with SEO-optimized alt text", added), nil
}

func lazyLoadImages(doc *goquery.Document, _ *Settings) (string, error) {
	if n := setMissingImageAttr(doc, "loading", "lazy"); n > 0 {
		return fmt.Sprintf("Added lazy loading to %d images", n), nil
	}
	return "", nil
}

func asyncDecodeImages(doc *goquery.Document, _ *Settings) (string, error) {
	if n := setMissingImageAttr(doc, "decoding", "async"); n > 0 {
		return fmt.Sprintf("Added async decoding to %d images", n), nil
	}
	return "", nil
}

func setMissingImageAttr(doc *goquery.Document, name, value string) int {
	n := 0
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if _, ok := img.Attr(name); !ok {
			img.SetAttr(name, value)
			n++
		}
	})
	return n
}

// ImageAlt builds alt text from the primary keyword, the image file name
// and the business name.
func ImageAlt(src string, s *Settings) string {
	name := humanizeFileName(src)
	kw := s.PrimaryKeyword()
	switch {
	case kw != "" && name != "":
		return kw + " - " + name + " | " + s.BusinessName
	case kw != "":
		return kw + " - Image | " + s.BusinessName
	case name != "":
		return name + " | " + s.BusinessName
	default:
		return "Image | " + s.BusinessName
	}
}

var fileNameSeparators = regexp.MustCompile(`[-_.\s]+`)

func humanizeFileName(src string) string {
	if src == "" || strings.HasPrefix(src, "data:") {
		return ""
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	base := path.Base(src)
	base = strings.TrimSuffix(base, path.Ext(base))
	words := strings.Fields(fileNameSeparators.ReplaceAllString(base, " "))
	for i, w := range words {
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

// capitalize upper-cases the first rune of w.
func capitalize(w string) string {
	r, size := utf8.DecodeRuneInString(w)
	if r == utf8.RuneError {
		return w
	}
	return string(unicode.ToUpper(r)) + w[size:]
}

func convertSemanticDivs(doc *goquery.Document, _ *Settings) (string, error) {
	converted := 0
	for _, tag := range semanticClasses {
		doc.Find("div." + tag).Each(func(_ int, div *goquery.Selection) {
			n := div.Nodes[0]
			n.Data = tag
			n.DataAtom = atom.Lookup([]byte(tag))
			converted++
		})
	}
	if converted == 0 {
		return "", nil
	}
	return fmt.Sprintf("Converted %d divs to semantic HTML5 tags", converted), nil
}

// linkKeywords turns the first mention of the primary keyword in plain text
// paragraphs into an internal link. Paragraphs with any element child are
// left alone, which also skips paragraphs linked by an earlier run.
func linkKeywords(doc *goquery.Document, s *Settings) (string, error) {
	kw := s.PrimaryKeyword()
	if !s.InternalLinks || kw == "" {
		return "", nil
	}
	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
	if err != nil {
		return "", nil
	}

	href := "/" + Slug(kw)
	linked := 0
	doc.Find("body p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		n := p.Nodes[0]
		if n.FirstChild == nil || n.FirstChild != n.LastChild || n.FirstChild.Type != html.TextNode {
			return true
		}
		text := n.FirstChild.Data
		loc := pattern.FindStringIndex(text)
		if loc == nil {
			return true
		}

		n.RemoveChild(n.FirstChild)
		if loc[0] > 0 {
			n.AppendChild(&html.Node{Type: html.TextNode, Data: text[:loc[0]]})
		}
		n.AppendChild(textElement("a", text[loc[0]:loc[1]], "href", href, "title", kw+" - "+s.BusinessName))
		if loc[1] < len(text) {
			n.AppendChild(&html.Node{Type: html.TextNode, Data: text[loc[1]:]})
		}
		linked++
		return linked < maxInternalLinks
	})

	if linked == 0 {
		return "", nil
	}
	return fmt.Sprintf("Generated %d internal backlinks", linked), nil
}
