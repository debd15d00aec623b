package models

// ProjectType classifies a whole uploaded project.
type ProjectType string

const (
	ProjectHTML   ProjectType = "html"
	ProjectReact  ProjectType = "react"
	ProjectNextJS ProjectType = "nextjs"
	ProjectMixed  ProjectType = "mixed"
)

// ProjectAnalysis summarizes the SEO readiness of a project directory.
type ProjectAnalysis struct {
	ProjectType    ProjectType    `json:"projectType" yaml:"projectType"`
	Framework      string         `json:"framework" yaml:"framework"`
	TotalFiles     int            `json:"totalFiles" yaml:"totalFiles"`
	PageFiles      []FileAnalysis `json:"pageFiles" yaml:"pageFiles"`
	ComponentFiles []FileAnalysis `json:"componentFiles" yaml:"componentFiles"`
	StaticFiles    []FileAnalysis `json:"staticFiles" yaml:"staticFiles"`
	HasRouting     bool           `json:"hasRouting" yaml:"hasRouting"`
	HasMetadata    bool           `json:"hasMetadata" yaml:"hasMetadata"`
	SEOReadiness   int            `json:"seoReadiness" yaml:"seoReadiness"`
	Warnings       []string       `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// CurrentSEO lists which SEO elements a file already carries.
type CurrentSEO struct {
	HasTitle          bool `json:"hasTitle" yaml:"hasTitle"`
	HasDescription    bool `json:"hasDescription" yaml:"hasDescription"`
	HasKeywords       bool `json:"hasKeywords" yaml:"hasKeywords"`
	HasOpenGraph      bool `json:"hasOpenGraph" yaml:"hasOpenGraph"`
	HasStructuredData bool `json:"hasStructuredData" yaml:"hasStructuredData"`
}

// SEOCode holds generated snippets a developer can paste into a file.
type SEOCode struct {
	Metadata       string `json:"metadata,omitempty" yaml:"metadata,omitempty"`
	HTMLHead       string `json:"htmlHead,omitempty" yaml:"htmlHead,omitempty"`
	StructuredData string `json:"structuredData,omitempty" yaml:"structuredData,omitempty"`
}

// FileAnalysis is the per-file result of the project analyzer.
type FileAnalysis struct {
	Filename        string     `json:"filename" yaml:"filename"`
	Path            string     `json:"path" yaml:"path"`
	Type            string     `json:"type" yaml:"type"`
	Size            int64      `json:"size" yaml:"size"`
	IsPage          bool       `json:"isPage" yaml:"isPage"`
	IsComponent     bool       `json:"isComponent" yaml:"isComponent"`
	NeedsSEO        bool       `json:"needsSEO" yaml:"needsSEO"`
	CurrentSEO      CurrentSEO `json:"currentSEO" yaml:"currentSEO"`
	SEOCode         SEOCode    `json:"seoCode" yaml:"seoCode"`
	Issues          []string   `json:"issues" yaml:"issues"`
	Recommendations []string   `json:"recommendations" yaml:"recommendations"`
	SEOScore        int        `json:"seoScore" yaml:"seoScore"`
}
