// Package models contains domain types for the SEO optimization backend.
package models

// ProjectInfo is the optional business context supplied with an upload.
type ProjectInfo struct {
	WebsiteURL     string   `json:"websiteUrl,omitempty" yaml:"websiteUrl"`
	BusinessName   string   `json:"businessName,omitempty" yaml:"businessName"`
	Description    string   `json:"description,omitempty" yaml:"description"`
	TargetKeywords []string `json:"targetKeywords,omitempty" yaml:"targetKeywords"`
	Industry       string   `json:"industry,omitempty" yaml:"industry"`
	TargetAudience string   `json:"targetAudience,omitempty" yaml:"targetAudience"`
	Location       string   `json:"location,omitempty" yaml:"location"`
	Competitors    []string `json:"competitors,omitempty" yaml:"competitors"`
}
