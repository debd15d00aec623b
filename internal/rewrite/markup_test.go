package rewrite

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func acmeSettings() *Settings {
	return Resolve(&models.ProjectInfo{BusinessName: "Acme", Description: "Acme widgets"}, DefaultDefaults())
}

func parse(t *testing.T, content string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	require.NoError(t, err)
	return doc
}

func TestRewriteMarkup_BareDocument(t *testing.T) {
	in := "<html><head><title>Home</title></head><body><h1>Hi</h1></body></html>"

	out, labels, err := RewriteMarkup(in, acmeSettings())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "<!DOCTYPE html>"), out)
	assert.Contains(t, out, `lang="en"`)
	assert.Contains(t, strings.ToLower(out), `charset="utf-8"`)
	assert.Contains(t, out, `name="viewport"`)
	assert.Contains(t, out, "Acme widgets")

	doc := parse(t, out)
	desc, ok := doc.Find(`meta[name="description"]`).Attr("content")
	assert.True(t, ok)
	assert.Equal(t, "Acme widgets | Acme", desc)
	assert.Equal(t, "Home", doc.Find("title").Text(), "no keyword means the title is kept")

	for _, want := range []string{
		"Added DOCTYPE declaration",
		"Added language attribute",
		"Added charset meta tag",
		"Added viewport meta tag",
		"Added SEO-optimized meta description",
		"Added Open Graph tags",
		"Added Twitter Card optimization",
		"Added JSON-LD structured data",
	} {
		assert.Contains(t, labels, want)
	}
	assert.NotContains(t, labels, "Added canonical URL", "no website URL was given")
	assert.NotContains(t, labels, "Added page title")
}

func TestRewriteMarkup_Idempotent(t *testing.T) {
	s := Resolve(&models.ProjectInfo{
		BusinessName:   "Acme",
		Description:    "Acme widgets",
		WebsiteURL:     "https://acme.example",
		TargetKeywords: []string{"widgets"},
		Location:       "Austin, TX",
	}, DefaultDefaults())
	s.InternalLinks = true

	in := `<html><head><title>Home</title></head><body>
<div class="header">Top</div>
<p>We sell widgets to everyone.</p>
<img src="/img/blue-widget.png">
</body></html>`

	first, _, err := RewriteMarkup(in, s)
	require.NoError(t, err)
	second, labels, err := RewriteMarkup(first, s)
	require.NoError(t, err)

	for _, l := range labels {
		assert.Equal(t, "Minified HTML content", l, "second run must not insert anything")
	}

	doc := parse(t, second)
	for _, sel := range []string{
		`meta[charset]`,
		`meta[name="viewport"]`,
		`meta[name="description"]`,
		`meta[name="keywords"]`,
		`meta[property="og:title"]`,
		`meta[name="twitter:card"]`,
		`link[rel="canonical"]`,
		`script[type="application/ld+json"]`,
		`title`,
		`p a`,
	} {
		assert.Equal(t, 1, doc.Find(sel).Length(), sel)
	}
	assert.Equal(t, "widgets | Home | Acme", doc.Find("title").Text())
}

func TestRewriteMarkup_CompleteDocumentGetsNoInsertions(t *testing.T) {
	in := `<!DOCTYPE html><html lang="fr"><head><meta charset="UTF-8">` +
		`<meta name="viewport" content="width=device-width">` +
		`<title>Accueil</title>` +
		`<meta name="description" content="Existing">` +
		`<meta property="og:title" content="x">` +
		`<meta name="twitter:card" content="summary">` +
		`<script type="application/ld+json">{"@type":"Thing"}</script>` +
		`</head><body><img src="a.png" alt="A" loading="eager" decoding="sync"></body></html>`

	_, labels, err := RewriteMarkup(in, acmeSettings())
	require.NoError(t, err)
	for _, l := range labels {
		assert.Equal(t, "Minified HTML content", l)
	}
}

func TestRewriteMarkup_Images(t *testing.T) {
	s := Resolve(&models.ProjectInfo{BusinessName: "Acme", TargetKeywords: []string{"web design"}}, DefaultDefaults())
	in := `<html><body><img src="/img/hero-banner.jpg?v=2"><img src="x.png" alt="Kept"><img></body></html>`

	out, labels, err := RewriteMarkup(in, s)
	require.NoError(t, err)

	assert.Contains(t, labels, "Enhanced 2 images with SEO-optimized alt text")
	imgs := parse(t, out).Find("img")
	require.Equal(t, 3, imgs.Length())

	alt, _ := imgs.Eq(0).Attr("alt")
	assert.Equal(t, "web design - Hero Banner | Acme", alt)
	alt, _ = imgs.Eq(1).Attr("alt")
	assert.Equal(t, "Kept", alt)
	alt, _ = imgs.Eq(2).Attr("alt")
	assert.Equal(t, "web design - Image | Acme", alt)

	imgs.Each(func(_ int, img *goquery.Selection) {
		loading, _ := img.Attr("loading")
		decoding, _ := img.Attr("decoding")
		assert.Equal(t, "lazy", loading)
		assert.Equal(t, "async", decoding)
	})
}

func TestRewriteMarkup_SemanticDivs(t *testing.T) {
	in := `<html><body><div class="header">H</div><div class="main content">M</div><div class="footer">F</div><div class="card">C</div></body></html>`

	out, labels, err := RewriteMarkup(in, acmeSettings())
	require.NoError(t, err)

	assert.Contains(t, labels, "Converted 3 divs to semantic HTML5 tags")
	doc := parse(t, out)
	assert.Equal(t, 1, doc.Find("header.header").Length())
	assert.Equal(t, 1, doc.Find("main.content").Length())
	assert.Equal(t, 1, doc.Find("footer").Length())
	assert.Equal(t, 1, doc.Find("div.card").Length())
}

func TestRewriteMarkup_TitleHandling(t *testing.T) {
	s := Resolve(&models.ProjectInfo{BusinessName: "Acme", TargetKeywords: []string{"Widgets"}}, DefaultDefaults())

	out, labels, err := RewriteMarkup("<html><head></head><body></body></html>", s)
	require.NoError(t, err)
	assert.Contains(t, labels, "Added page title")
	assert.Equal(t, "Widgets | Acme", parse(t, out).Find("title").Text())

	out, labels, err = RewriteMarkup("<html><head><title>Acme home</title></head></html>", s)
	require.NoError(t, err)
	assert.Contains(t, labels, "Optimized title with primary keyword")
	assert.Equal(t, "Widgets | Acme home", parse(t, out).Find("title").Text())

	_, labels, err = RewriteMarkup("<html><head><title>Best widgets</title></head></html>", s)
	require.NoError(t, err)
	assert.NotContains(t, labels, "Optimized title with primary keyword")
}

func TestRewriteMarkup_InternalLinks(t *testing.T) {
	s := Resolve(&models.ProjectInfo{BusinessName: "Acme", TargetKeywords: []string{"web design"}}, DefaultDefaults())
	in := `<html><body><p>Great Web Design matters.</p><p>Read <a href="/x">web design</a> notes.</p><p>Nothing here.</p></body></html>`

	_, labels, err := RewriteMarkup(in, s)
	require.NoError(t, err)
	assert.NotContains(t, strings.Join(labels, "\n"), "backlinks", "links are off unless enabled")

	s.InternalLinks = true
	out, labels, err := RewriteMarkup(in, s)
	require.NoError(t, err)
	assert.Contains(t, labels, "Generated 1 internal backlinks")

	link := parse(t, out).Find(`p a[href="/web-design"]`)
	require.Equal(t, 1, link.Length())
	assert.Equal(t, "Web Design", link.Text())
	title, _ := link.Attr("title")
	assert.Equal(t, "web design - Acme", title)
}

func TestRewriteMarkup_StructuredDataByIndustry(t *testing.T) {
	s := Resolve(&models.ProjectInfo{BusinessName: "Dr. Smile", Industry: "Healthcare", Location: "Austin, TX, USA"}, DefaultDefaults())

	out, _, err := RewriteMarkup("<html><head></head><body></body></html>", s)
	require.NoError(t, err)

	ld := parse(t, out).Find(`script[type="application/ld+json"]`).Text()
	assert.Contains(t, ld, `"@type":"MedicalOrganization"`)
	assert.Contains(t, ld, `"addressLocality":"Austin"`)
	assert.Contains(t, ld, `"addressCountry":"USA"`)
	assert.Contains(t, ld, `"ratingValue":"4.8"`)
}

func TestRewriteMarkup_LongDescriptionTruncated(t *testing.T) {
	long := strings.Repeat("word ", 60)
	s := Resolve(&models.ProjectInfo{BusinessName: "Acme", Description: long}, DefaultDefaults())

	out, _, err := RewriteMarkup("<html></html>", s)
	require.NoError(t, err)

	desc, _ := parse(t, out).Find(`meta[name="description"]`).Attr("content")
	assert.True(t, strings.HasSuffix(desc, "... | Acme"), desc)
	assert.LessOrEqual(t, len(desc), descriptionLimit+len("... | Acme"))
}

func TestImageAlt(t *testing.T) {
	s := Resolve(&models.ProjectInfo{BusinessName: "Acme"}, DefaultDefaults())
	assert.Equal(t, "Team Photo 2 | Acme", ImageAlt("assets/team_photo-2.webp", s))
	assert.Equal(t, "Image | Acme", ImageAlt("data:image/png;base64,AAA", s))
	assert.Equal(t, "Image | Acme", ImageAlt("", s))

	alt := ImageAlt("/img/été-photo.png", s)
	assert.Equal(t, "Été Photo | Acme", alt)
	assert.True(t, utf8.ValidString(alt))
}

func TestRewriteMarkup_NonASCIIImageName(t *testing.T) {
	in := `<html><body><img src="/img/été-photo.png"><img src="ärger.jpg"></body></html>`

	out, _, err := RewriteMarkup(in, acmeSettings())
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(out))

	imgs := parse(t, out).Find("img")
	alt, _ := imgs.Eq(0).Attr("alt")
	assert.Equal(t, "Été Photo | Acme", alt)
	alt, _ = imgs.Eq(1).Attr("alt")
	assert.Equal(t, "Ärger | Acme", alt)
}

func TestRewriteMarkup_ImageLabels(t *testing.T) {
	tests := []struct {
		name    string
		img     string
		want    []string
		notWant []string
	}{
		{
			name: "alt and lazy loading both reported",
			img:  `<img src="a.png">`,
			want: []string{
				"Enhanced 1 images with SEO-optimized alt text",
				"Added lazy loading to 1 images",
				"Added async decoding to 1 images",
			},
		},
		{
			name:    "only decoding missing",
			img:     `<img src="a.png" alt="A" loading="lazy">`,
			want:    []string{"Added async decoding to 1 images"},
			notWant: []string{"Added lazy loading to 1 images", "Enhanced 1 images with SEO-optimized alt text"},
		},
		{
			name:    "nothing missing",
			img:     `<img src="a.png" alt="A" loading="eager" decoding="sync">`,
			notWant: []string{"Added lazy loading to 1 images", "Added async decoding to 1 images"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, labels, err := RewriteMarkup("<html><body>"+tt.img+"</body></html>", acmeSettings())
			require.NoError(t, err)
			for _, l := range tt.want {
				assert.Contains(t, labels, l)
			}
			for _, l := range tt.notWant {
				assert.NotContains(t, labels, l)
			}
		})
	}
}

func TestRewriteMarkup_MinifiedLabelAfterInsertions(t *testing.T) {
	in := "<html>\n  <head>\n    <!-- page head -->\n  </head>\n  <body>\n    <h1>  Hello  </h1>\n  </body>\n</html>"

	out, labels, err := RewriteMarkup(in, acmeSettings())
	require.NoError(t, err)
	assert.Greater(t, len(out), len(in), "inserted tags make the output longer than the input")
	assert.Contains(t, labels, "Minified HTML content")
}

func TestDetectLanguage(t *testing.T) {
	lang, ok := DetectLanguage("Bonjour, nous sommes une entreprise familiale spécialisée dans la fabrication de meubles en bois massif depuis trente ans.")
	assert.True(t, ok)
	assert.Equal(t, "fr", lang)

	_, ok = DetectLanguage("Hi there")
	assert.False(t, ok)
}

func TestHeadSnippet(t *testing.T) {
	s := Resolve(&models.ProjectInfo{BusinessName: "Acme", WebsiteURL: "https://acme.example", TargetKeywords: []string{"widgets"}}, DefaultDefaults())

	snippet, err := HeadSnippet(s)
	require.NoError(t, err)
	assert.Contains(t, snippet, `<title>widgets | Acme</title>`)
	assert.Contains(t, snippet, `<meta name="keywords" content="widgets"/>`)
	assert.Contains(t, snippet, `<link rel="canonical" href="https://acme.example/"/>`)

	ld, err := StructuredDataSnippet(s)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(ld, `<script type="application/ld+json">`))
	assert.Contains(t, ld, `"url": "https://acme.example"`)
}
