package rewrite

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/axoraweb/seo-backend/internal/models"
	"gopkg.in/yaml.v3"
)

// Defaults are the fallbacks applied when a request omits project details.
type Defaults struct {
	BusinessName         string   `yaml:"businessName"`
	Description          string   `yaml:"description"`
	ComponentDescription string   `yaml:"componentDescription"`
	TypedDescription     string   `yaml:"typedDescription"`
	Industry             string   `yaml:"industry"`
	Locale               string   `yaml:"locale"`
	Language             string   `yaml:"language"`
	RatingValue          string   `yaml:"ratingValue"`
	ReviewCount          string   `yaml:"reviewCount"`
	SocialProfiles       []string `yaml:"socialProfiles"`
}

// DefaultDefaults returns the built-in fallback values.
func DefaultDefaults() Defaults {
	return Defaults{
		BusinessName:         "Professional Business",
		Description:          "Professional web application with modern design and optimal performance",
		ComponentDescription: "Professional React application",
		TypedDescription:     "Professional TypeScript React application",
		Industry:             "Business Services",
		Locale:               "en_US",
		Language:             "en",
		RatingValue:          "4.8",
		ReviewCount:          "127",
		SocialProfiles:       []string{"https://www.facebook.com/%s", "https://www.linkedin.com/company/%s"},
	}
}

// LoadDefaults reads a YAML defaults profile over the built-in values.
// A missing file yields the built-in values without error.
func LoadDefaults(path string) (Defaults, error) {
	d := DefaultDefaults()
	if path == "" {
		return d, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return d, nil
	}
	if err != nil {
		return d, fmt.Errorf("reading defaults file: %w", err)
	}
	if err := yaml.Unmarshal(data, &d); err != nil {
		return DefaultDefaults(), fmt.Errorf("parsing defaults file: %w", err)
	}
	return d, nil
}

// Settings is a ProjectInfo with every default already applied. Rewriters
// read only Settings and never consult Defaults themselves.
type Settings struct {
	BusinessName string
	// Description is empty when the request gave none, so each rewriter can
	// pick its own category-specific fallback.
	Description    string
	WebsiteURL     string
	Keywords       []string
	Industry       string
	TargetAudience string
	Location       string
	Competitors    []string

	Defaults Defaults

	DetectLanguage bool
	InternalLinks  bool
}

// Resolve folds a possibly nil ProjectInfo into Settings.
func Resolve(info *models.ProjectInfo, d Defaults) *Settings {
	s := &Settings{
		BusinessName: d.BusinessName,
		Industry:     d.Industry,
		Defaults:     d,
	}
	if info == nil {
		return s
	}

	if v := strings.TrimSpace(info.BusinessName); v != "" {
		s.BusinessName = v
	}
	if v := strings.TrimSpace(info.Industry); v != "" {
		s.Industry = v
	}
	s.Description = strings.TrimSpace(info.Description)
	s.WebsiteURL = strings.TrimRight(strings.TrimSpace(info.WebsiteURL), "/")
	s.TargetAudience = strings.TrimSpace(info.TargetAudience)
	s.Location = strings.TrimSpace(info.Location)
	s.Keywords = cleanList(info.TargetKeywords)
	s.Competitors = cleanList(info.Competitors)
	return s
}

func cleanList(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// PrimaryKeyword returns the first keyword, or "" when none were given.
func (s *Settings) PrimaryKeyword() string {
	if len(s.Keywords) == 0 {
		return ""
	}
	return s.Keywords[0]
}

// MarkupDescription returns the description used for page meta tags.
func (s *Settings) MarkupDescription() string {
	if s.Description != "" {
		return s.Description
	}
	return s.Defaults.Description
}

// ComponentDescription returns the description used in generated metadata exports.
func (s *Settings) ComponentDescription(typed bool) string {
	switch {
	case s.Description != "":
		return s.Description
	case typed:
		return s.Defaults.TypedDescription
	default:
		return s.Defaults.ComponentDescription
	}
}

// HasURL reports whether the project supplied a website address.
func (s *Settings) HasURL() bool {
	return s.WebsiteURL != ""
}

// URL joins the website address with a path. Without a website the path is
// returned on its own.
func (s *Settings) URL(path string) string {
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return s.WebsiteURL + path
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// Slug lowercases text and joins its alphanumeric runs with dashes.
func Slug(text string) string {
	return strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(text), "-"), "-")
}

// Handle is the business name as a social media handle.
func (s *Settings) Handle() string {
	return strings.ReplaceAll(Slug(s.BusinessName), "-", "")
}

// SocialProfiles expands the configured profile URL patterns for this business.
func (s *Settings) SocialProfiles() []string {
	profiles := make([]string, 0, len(s.Defaults.SocialProfiles))
	for _, p := range s.Defaults.SocialProfiles {
		if strings.Contains(p, "%s") {
			p = fmt.Sprintf(p, Slug(s.BusinessName))
		}
		profiles = append(profiles, p)
	}
	return profiles
}
