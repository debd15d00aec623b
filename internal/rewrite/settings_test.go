package rewrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_NilInfoUsesDefaults(t *testing.T) {
	s := Resolve(nil, DefaultDefaults())

	assert.Equal(t, "Professional Business", s.BusinessName)
	assert.Equal(t, "Business Services", s.Industry)
	assert.Equal(t, "Professional web application with modern design and optimal performance", s.MarkupDescription())
	assert.Equal(t, "Professional React application", s.ComponentDescription(false))
	assert.Equal(t, "Professional TypeScript React application", s.ComponentDescription(true))
	assert.Empty(t, s.PrimaryKeyword())
	assert.False(t, s.HasURL())
}

func TestResolve_TrimsAndOverrides(t *testing.T) {
	s := Resolve(&models.ProjectInfo{
		BusinessName:   "  Acme Co  ",
		Description:    "Acme widgets",
		WebsiteURL:     "https://acme.example/",
		TargetKeywords: []string{" widgets ", "", "gadgets"},
		Industry:       "   ",
		Location:       "Austin, TX",
	}, DefaultDefaults())

	assert.Equal(t, "Acme Co", s.BusinessName)
	assert.Equal(t, "Business Services", s.Industry, "blank industry falls back")
	assert.Equal(t, []string{"widgets", "gadgets"}, s.Keywords)
	assert.Equal(t, "widgets", s.PrimaryKeyword())
	assert.Equal(t, "Acme widgets", s.ComponentDescription(true))
	assert.Equal(t, "https://acme.example", s.WebsiteURL)
	assert.Equal(t, "https://acme.example/og-image.jpg", s.URL("og-image.jpg"))
	assert.Equal(t, "acmeco", s.Handle())
	assert.Equal(t, []string{"https://www.facebook.com/acme-co", "https://www.linkedin.com/company/acme-co"}, s.SocialProfiles())
}

func TestLoadDefaults(t *testing.T) {
	t.Run("missing file keeps built-ins", func(t *testing.T) {
		d, err := LoadDefaults(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, DefaultDefaults(), d)
	})

	t.Run("file overrides selected fields", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "defaults.yaml")
		require.NoError(t, os.WriteFile(path, []byte("businessName: Studio Nine\nlanguage: de\n"), 0644))

		d, err := LoadDefaults(path)
		require.NoError(t, err)
		assert.Equal(t, "Studio Nine", d.BusinessName)
		assert.Equal(t, "de", d.Language)
		assert.Equal(t, "Business Services", d.Industry)
	})

	t.Run("malformed file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "defaults.yaml")
		require.NoError(t, os.WriteFile(path, []byte("businessName: [unterminated"), 0644))

		d, err := LoadDefaults(path)
		assert.Error(t, err)
		assert.Equal(t, DefaultDefaults(), d)
	})
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "web-design", Slug("Web Design"))
	assert.Equal(t, "seo-tips-2024", Slug("  SEO tips: 2024! "))
	assert.Equal(t, "", Slug("!!!"))
}
