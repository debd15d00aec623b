package rewrite

import (
	"regexp"
	"strings"
	"text/template"
)

var (
	defaultExport     = regexp.MustCompile(`export\s+default\s+function\s+(\w+)`)
	hasDefaultExport  = regexp.MustCompile(`export\s+default\s+function\b`)
	existingMetadata  = regexp.MustCompile(`\bmetadata\b|\bgenerateMetadata\b`)
	clientDirective   = regexp.MustCompile(`(?m)^\s*['"]use client['"]`)
	imgTag            = regexp.MustCompile(`<img\b[^>]*>`)
	interactiveMarkup = regexp.MustCompile(`<button\b|onClick=`)
)

var componentTemplates = template.Must(template.New("component").Funcs(template.FuncMap{
	"js": jsString,
}).Parse(`
{{- define "metadata" -}}
// SEO metadata for {{.Component}}
export const metadata = {
  title: '{{js .Title}}',
  description: '{{js .Description}}',
  keywords: '{{js .KeywordText}}',
  openGraph: {
    title: '{{js .Title}}',
    description: '{{js .Description}}',
    type: 'website',
    siteName: '{{js .Business}}',{{if .URL}}
    url: '{{js .URL}}',{{end}}
  },
  twitter: {
    card: 'summary_large_image',
    title: '{{js .Title}}',
    description: '{{js .Description}}',
  },
  robots: {
    index: true,
    follow: true,
  },
}

{{end -}}

{{- define "typed-metadata" -}}
import type { Metadata } from 'next'

// SEO metadata for {{.Component}}
export const metadata: Metadata = {
  title: '{{js .Title}}',
  description: '{{js .Description}}',
  keywords: [{{range $i, $k := .Keywords}}{{if $i}}, {{end}}'{{js $k}}'{{end}}],
  authors: [{ name: '{{js .Business}}'{{if .URL}}, url: '{{js .URL}}'{{end}} }],
  creator: '{{js .Business}}',
  publisher: '{{js .Business}}',{{if .URL}}
  metadataBase: new URL('{{js .URL}}'),
  alternates: {
    canonical: '/',
  },{{end}}
  openGraph: {
    title: '{{js .Title}}',
    description: '{{js .Description}}',
    type: 'website',
    siteName: '{{js .Business}}',
    locale: '{{js .Locale}}',{{if .URL}}
    url: '{{js .URL}}',{{end}}
    images: [{ url: '/og-image.jpg', width: 1200, height: 630, alt: '{{js .Title}}' }],
  },
  twitter: {
    card: 'summary_large_image',
    title: '{{js .Title}}',
    description: '{{js .Description}}',
    images: ['/twitter-image.jpg'],
  },
  robots: {
    index: true,
    follow: true,
    nocache: false,
    googleBot: {
      index: true,
      follow: true,
      noimageindex: false,
    },
  },
  category: '{{js .Industry}}',
}

{{end -}}

{{- define "client-doc" -}}
/**
 * {{.Component}} is a client component.
 * SEO metadata for this route belongs in the parent server component or layout.
 * Primary keyword: {{.Keyword}}
 */
{{end -}}
`))

// componentData feeds the component templates.
type componentData struct {
	Component   string
	Title       string
	Description string
	Keyword     string
	Keywords    []string
	KeywordText string
	Business    string
	URL         string
	Locale      string
	Industry    string
}

func jsString(s string) string {
	return strings.NewReplacer(`\`, `\\`, `'`, `\'`, "\n", `\n`, "\r", "").Replace(s)
}

// ComponentName returns the name of the default-exported function, or
// "Component" when there is none.
func ComponentName(content string) string {
	if m := defaultExport.FindStringSubmatch(content); m != nil {
		return m[1]
	}
	return "Component"
}

// IsClientComponent reports whether the file opts into client rendering.
func IsClientComponent(content string) bool {
	return clientDirective.MatchString(content)
}

// HasMetadataExport reports whether a file already defines route metadata.
func HasMetadataExport(content string) bool {
	return existingMetadata.MatchString(content)
}

func newComponentData(name string, typed bool, s *Settings) componentData {
	kw := s.PrimaryKeyword()
	if kw == "" {
		kw = name
	}
	title := name + " | " + s.BusinessName
	if p := s.PrimaryKeyword(); p != "" {
		title = name + " - " + p + " | " + s.BusinessName
	}
	keywords := s.Keywords
	if len(keywords) == 0 {
		keywords = []string{strings.ToLower(name), "professional services"}
	}
	return componentData{
		Component:   name,
		Title:       title,
		Description: s.ComponentDescription(typed),
		Keyword:     kw,
		Keywords:    keywords,
		KeywordText: strings.Join(keywords, ", "),
		Business:    s.BusinessName,
		URL:         s.WebsiteURL,
		Locale:      s.Defaults.Locale,
		Industry:    s.Industry,
	}
}

// MetadataSnippet renders the metadata export for a component.
func MetadataSnippet(name string, typed bool, s *Settings) (string, error) {
	tmpl := "metadata"
	if typed {
		tmpl = "typed-metadata"
	}
	var b strings.Builder
	if err := componentTemplates.ExecuteTemplate(&b, tmpl, newComponentData(name, typed, s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// ClientPageSnippet renders guidance for a client page: the documentation
// comment followed by the metadata export to add to target instead.
func ClientPageSnippet(name, target string, typed bool, s *Settings) (string, error) {
	doc, err := clientDoc(name, s)
	if err != nil {
		return "", err
	}
	meta, err := MetadataSnippet(name, typed, s)
	if err != nil {
		return "", err
	}
	return doc + "\n// Add this export to " + target + ", not to the client page.\n" + meta, nil
}

func clientDoc(name string, s *Settings) (string, error) {
	var b strings.Builder
	if err := componentTemplates.ExecuteTemplate(&b, "client-doc", newComponentData(name, false, s)); err != nil {
		return "", err
	}
	return b.String(), nil
}

// RewriteComponent adds a metadata export to an untyped React component.
func RewriteComponent(content string, s *Settings) (string, []string, error) {
	return rewriteComponent(content, s, false)
}

// RewriteTypedComponent adds a typed metadata export to a TypeScript component.
func RewriteTypedComponent(content string, s *Settings) (string, []string, error) {
	return rewriteComponent(content, s, true)
}

func rewriteComponent(content string, s *Settings, typed bool) (string, []string, error) {
	var labels []string
	out := content

	if hasDefaultExport.MatchString(content) && !HasMetadataExport(content) {
		name := ComponentName(content)
		if IsClientComponent(content) {
			doc, err := clientDoc(name, s)
			if err != nil {
				return "", nil, err
			}
			out = doc + content
			labels = append(labels, "Added SEO documentation for client component")
		} else {
			meta, err := MetadataSnippet(name, typed, s)
			if err != nil {
				return "", nil, err
			}
			out = meta + content
			if typed {
				labels = append(labels, "Added comprehensive TypeScript SEO metadata")
			} else {
				labels = append(labels, "Added comprehensive SEO metadata export")
			}
		}
	}

	return out, append(labels, componentAdvice(content)...), nil
}

// componentAdvice returns advisory labels. It never changes content.
func componentAdvice(content string) []string {
	var advice []string
	if hasDefaultExport.MatchString(content) && !strings.Contains(content, "memo(") {
		advice = append(advice, "Consider wrapping component with React.memo for performance")
	}
	if strings.Contains(content, ".map(") && !strings.Contains(content, "key=") {
		advice = append(advice, "Consider adding key props to mapped elements")
	}
	for _, tag := range imgTag.FindAllString(content, -1) {
		if !strings.Contains(tag, "alt=") {
			advice = append(advice, "Add alt attributes to images for accessibility")
			break
		}
	}
	if interactiveMarkup.MatchString(content) && !strings.Contains(content, "aria-") {
		advice = append(advice, "Consider adding ARIA attributes for accessibility")
	}
	return advice
}
