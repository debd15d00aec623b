package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/axoraweb/seo-backend/internal/analyzer"
	"github.com/axoraweb/seo-backend/internal/models"
	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	outputFormat string
	showSnippets bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <dir>",
	Short: "Report the SEO readiness of a project directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&outputFormat, "format", "f", "text", "output format: text, json or yaml")
	analyzeCmd.Flags().BoolVar(&showSnippets, "snippets", false, "print generated SEO code in text output")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	a := analyzer.New(analyzer.Options{Logger: env.logger})
	analysis, err := a.AnalyzeDir(cmdContext(cmd), args[0], env.pipeline.Settings(env.info))
	if err != nil {
		return err
	}
	return writeAnalysis(cmd.OutOrStdout(), analysis, outputFormat, showSnippets)
}

func writeAnalysis(w io.Writer, a *models.ProjectAnalysis, format string, snippets bool) error {
	switch strings.ToLower(format) {
	case "json":
		enc := gojson.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(a)
	case "text":
		renderAnalysis(w, a, snippets)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

func renderAnalysis(w io.Writer, a *models.ProjectAnalysis, snippets bool) {
	fmt.Fprintln(w, titleStyle.Render("SEO analysis"))
	summary := fmt.Sprintf("Project:   %s (%s)\nFiles:     %d total, %d pages, %d components\nReadiness: %s",
		a.Framework, a.ProjectType, a.TotalFiles, len(a.PageFiles), len(a.ComponentFiles),
		scoreStyle(a.SEOReadiness).Render(fmt.Sprintf("%d%%", a.SEOReadiness)))
	fmt.Fprintln(w, boxStyle.Render(summary))

	for _, warn := range a.Warnings {
		fmt.Fprintln(w, warningStyle.Render("! "+warn))
	}

	for _, p := range a.PageFiles {
		fmt.Fprintf(w, "\n%s %s\n", headerStyle.Render(p.Path), scoreStyle(p.SEOScore).Render(fmt.Sprintf("%d/100", p.SEOScore)))
		if len(p.Issues) == 0 {
			fmt.Fprintln(w, successStyle.Render("  ✓ no issues"))
		}
		for _, issue := range p.Issues {
			fmt.Fprintln(w, errorStyle.Render("  ✗ ")+issue)
		}
		for _, rec := range p.Recommendations {
			fmt.Fprintln(w, subtleStyle.Render("    → "+rec))
		}
		if !snippets {
			continue
		}
		for _, code := range []string{p.SEOCode.Metadata, p.SEOCode.HTMLHead, p.SEOCode.StructuredData} {
			if code != "" {
				fmt.Fprintln(w, subtleStyle.Render(indent(code, "    ")))
			}
		}
	}
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		lines[i] = prefix + l
	}
	return strings.Join(lines, "\n")
}
