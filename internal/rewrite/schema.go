package rewrite

import (
	"strings"

	gojson "github.com/goccy/go-json"
)

type postalAddress struct {
	Type            string `json:"@type"`
	AddressLocality string `json:"addressLocality,omitempty"`
	AddressRegion   string `json:"addressRegion,omitempty"`
	AddressCountry  string `json:"addressCountry,omitempty"`
}

type aggregateRating struct {
	Type        string `json:"@type"`
	RatingValue string `json:"ratingValue"`
	ReviewCount string `json:"reviewCount"`
}

type audience struct {
	Type         string `json:"@type"`
	AudienceType string `json:"audienceType"`
}

// Organization is the JSON-LD business entity embedded in pages.
type Organization struct {
	Context         string          `json:"@context"`
	Type            string          `json:"@type"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	URL             string          `json:"url,omitempty"`
	Image           string          `json:"image,omitempty"`
	Keywords        string          `json:"keywords,omitempty"`
	Address         *postalAddress  `json:"address,omitempty"`
	AreaServed      string          `json:"areaServed,omitempty"`
	Audience        *audience       `json:"audience,omitempty"`
	SameAs          []string        `json:"sameAs,omitempty"`
	AggregateRating aggregateRating `json:"aggregateRating"`
}

// SchemaType picks the schema.org type for an industry.
func SchemaType(industry string) string {
	lower := strings.ToLower(industry)
	switch {
	case strings.Contains(lower, "restaurant"), strings.Contains(lower, "food"), strings.Contains(lower, "cafe"):
		return "Restaurant"
	case strings.Contains(lower, "health"), strings.Contains(lower, "medical"), strings.Contains(lower, "clinic"):
		return "MedicalOrganization"
	default:
		return "LocalBusiness"
	}
}

// parseAddress splits "City, Region, Country" into a postal address.
func parseAddress(location string) *postalAddress {
	if strings.TrimSpace(location) == "" {
		return nil
	}
	parts := strings.Split(location, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	addr := &postalAddress{Type: "PostalAddress", AddressLocality: parts[0]}
	if len(parts) > 1 {
		addr.AddressRegion = parts[1]
	}
	if len(parts) > 2 {
		addr.AddressCountry = parts[2]
	}
	return addr
}

// BuildOrganization assembles the business entity for the project.
func BuildOrganization(s *Settings) Organization {
	org := Organization{
		Context:     "https://schema.org",
		Type:        SchemaType(s.Industry),
		Name:        s.BusinessName,
		Description: s.MarkupDescription(),
		Keywords:    strings.Join(s.Keywords, ", "),
		Address:     parseAddress(s.Location),
		AreaServed:  s.Location,
		SameAs:      s.SocialProfiles(),
		AggregateRating: aggregateRating{
			Type:        "AggregateRating",
			RatingValue: s.Defaults.RatingValue,
			ReviewCount: s.Defaults.ReviewCount,
		},
	}
	if s.HasURL() {
		org.URL = s.WebsiteURL
		org.Image = s.URL("/og-image.jpg")
	}
	if s.TargetAudience != "" {
		org.Audience = &audience{Type: "Audience", AudienceType: s.TargetAudience}
	}
	return org
}

// StructuredDataJSON encodes the organization. The encoder escapes <, > and &
// so the result is safe inside a script element.
func StructuredDataJSON(s *Settings, indent bool) (string, error) {
	org := BuildOrganization(s)
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = gojson.MarshalIndent(org, "", "  ")
	} else {
		b, err = gojson.Marshal(org)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
