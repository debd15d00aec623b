package analyzer

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/axoraweb/seo-backend/internal/rewrite"
	"github.com/go-shiori/go-readability"
)

// excerptLimit bounds a suggested description.
const excerptLimit = 155

// check is one scored SEO requirement.
type check struct {
	passed         bool
	issue          string
	recommendation string
}

var (
	titleField       = regexp.MustCompile(`\btitle\s*:`)
	descriptionField = regexp.MustCompile(`\bdescription\s*:`)
	keywordsField    = regexp.MustCompile(`\bkeywords\s*:`)
	headTitle        = regexp.MustCompile(`<title>|<Head>`)
	componentImg     = regexp.MustCompile(`<(img|Image)\b[^>]*>`)
)

func score(checks []check) int {
	if len(checks) == 0 {
		return 0
	}
	passed := 0
	for _, c := range checks {
		if c.passed {
			passed++
		}
	}
	return passed * 100 / len(checks)
}

func apply(fa *models.FileAnalysis, checks []check) {
	fa.Issues = []string{}
	fa.Recommendations = []string{}
	for _, c := range checks {
		if c.passed {
			continue
		}
		fa.Issues = append(fa.Issues, c.issue)
		if c.recommendation != "" {
			fa.Recommendations = append(fa.Recommendations, c.recommendation)
		}
	}
	fa.SEOScore = score(checks)
}

func keywordAdvice(s *rewrite.Settings) string {
	if len(s.Keywords) > 0 {
		return "Add keywords metadata for: " + strings.Join(s.Keywords, ", ")
	}
	return "Define target keywords for this page"
}

// checkMarkup inspects an HTML page.
func checkMarkup(fa *models.FileAnalysis, content string, s *rewrite.Settings) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return fmt.Errorf("parsing html: %w", err)
	}

	seo := models.CurrentSEO{
		HasTitle:          strings.TrimSpace(doc.Find("title").First().Text()) != "",
		HasDescription:    doc.Find(`meta[name="description"]`).Length() > 0,
		HasKeywords:       doc.Find(`meta[name="keywords"]`).Length() > 0,
		HasOpenGraph:      doc.Find(`meta[property^="og:"]`).Length() > 0,
		HasStructuredData: doc.Find(`script[type="application/ld+json"]`).Length() > 0,
	}
	fa.CurrentSEO = seo

	lang, _ := doc.Find("html").Attr("lang")
	missingAlt := 0
	doc.Find("img").Each(func(_ int, img *goquery.Selection) {
		if alt, ok := img.Attr("alt"); !ok || strings.TrimSpace(alt) == "" {
			missingAlt++
		}
	})

	descRecommendation := "Add a meta description of 150-160 characters"
	if excerpt := suggestDescription(content, fa.Path, s); excerpt != "" {
		descRecommendation += ", for example: " + excerpt
	}

	checks := []check{
		{seo.HasTitle, "Missing page title", "Add a descriptive <title> containing your primary keyword"},
		{seo.HasDescription, "Missing meta description", descRecommendation},
		{seo.HasKeywords, "Missing keywords meta tag", keywordAdvice(s)},
		{seo.HasOpenGraph, "Missing Open Graph tags", "Add Open Graph tags for social sharing"},
		{seo.HasStructuredData, "Missing structured data", fmt.Sprintf("Add JSON-LD structured data (%s)", rewrite.SchemaType(s.Industry))},
		{doc.Find(`meta[name="viewport"]`).Length() > 0, "Missing viewport meta tag", "Add a responsive viewport meta tag"},
		{strings.TrimSpace(lang) != "", "Missing lang attribute on <html>", "Declare the page language on the <html> element"},
		{doc.Find(`link[rel="canonical"]`).Length() > 0, "Missing canonical URL", "Add a canonical link to avoid duplicate content"},
		{doc.Find("h1").Length() > 0, "Missing H1 heading", "Add a single H1 heading with the primary keyword"},
		{missingAlt == 0, fmt.Sprintf("%d images without alt text", missingAlt), "Describe every image with alt text"},
	}
	apply(fa, checks)
	return nil
}

// checkComponent inspects a React or Next.js source file.
func checkComponent(fa *models.FileAnalysis, content string, s *rewrite.Settings) {
	hasMetadata := rewrite.HasMetadataExport(content)
	seo := models.CurrentSEO{
		HasTitle:          (hasMetadata && titleField.MatchString(content)) || headTitle.MatchString(content),
		HasDescription:    hasMetadata && descriptionField.MatchString(content),
		HasKeywords:       hasMetadata && keywordsField.MatchString(content),
		HasOpenGraph:      strings.Contains(content, "openGraph") || strings.Contains(content, `property="og:`),
		HasStructuredData: strings.Contains(content, "application/ld+json"),
	}
	fa.CurrentSEO = seo

	missingAlt := false
	for _, tag := range componentImg.FindAllString(content, -1) {
		if !strings.Contains(tag, "alt=") {
			missingAlt = true
			break
		}
	}

	clientPage := fa.IsPage && rewrite.IsClientComponent(content)
	export := "Export metadata"
	if clientPage {
		export = "Export metadata from the route layout"
	}
	checks := []check{
		{seo.HasTitle, "Missing page title", export + " with a title"},
		{seo.HasDescription, "Missing meta description", export + " with a description"},
		{seo.HasKeywords, "Missing keywords metadata", keywordAdvice(s)},
		{seo.HasOpenGraph, "Missing Open Graph metadata", "Add openGraph fields to the metadata export"},
		{seo.HasStructuredData, "Missing structured data", "Render a JSON-LD script with the business schema"},
		{!missingAlt, "Images without alt text", "Add alt attributes to images for accessibility"},
	}
	if clientPage {
		checks = append(checks, check{
			passed:         !hasMetadata,
			issue:          "Client component pages cannot export metadata",
			recommendation: "Move the metadata export to a server layout or parent page",
		})
	}
	apply(fa, checks)
}

// suggestDescription extracts a readable excerpt from page content.
func suggestDescription(content, relPath string, s *rewrite.Settings) string {
	base := "http://localhost/"
	if s.HasURL() {
		base = s.WebsiteURL + "/"
	}
	pageURL, err := url.Parse(base + relPath)
	if err != nil {
		return ""
	}
	parser := readability.NewParser()
	article, err := parser.Parse(strings.NewReader(content), pageURL)
	if err != nil {
		return ""
	}
	excerpt := strings.Join(strings.Fields(article.Excerpt), " ")
	if excerpt == "" {
		return ""
	}
	return rewrite.Truncate(excerpt, excerptLimit)
}
