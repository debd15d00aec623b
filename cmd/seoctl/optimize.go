package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/spf13/cobra"
)

var outputFile string

var optimizeCmd = &cobra.Command{
	Use:   "optimize <archive.zip>",
	Short: "Rewrite every file of a zipped website with SEO improvements",
	Args:  cobra.ExactArgs(1),
	RunE:  runOptimize,
}

func init() {
	optimizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output archive (default <name>-optimized.zip)")
}

func runOptimize(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}

	out, err := env.pipeline.Run(cmdContext(cmd), data, env.info)
	if err != nil {
		return err
	}

	target := outputFile
	if target == "" {
		target = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + "-optimized.zip"
	}
	if err := os.WriteFile(target, out.Archive, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", target, err)
	}

	renderOptimization(cmd.OutOrStdout(), out.Result, target)
	return nil
}

func renderOptimization(w io.Writer, r *models.ProcessingResult, target string) {
	fmt.Fprintln(w, titleStyle.Render("SEO optimization"))
	for _, f := range r.Files {
		fmt.Fprintf(w, "\n%s %s\n", headerStyle.Render(f.Name), subtleStyle.Render(fmt.Sprintf("(%s, %d → %d bytes)", f.Type, f.OriginalSize, f.OptimizedSize)))
		if len(f.Optimizations) == 0 {
			fmt.Fprintln(w, subtleStyle.Render("  already optimized"))
			continue
		}
		for _, label := range f.Optimizations {
			style := successStyle
			if strings.HasPrefix(label, "Error") || strings.HasPrefix(label, "Invalid") {
				style = errorStyle
			} else if strings.HasPrefix(label, "Consider") || strings.Contains(label, "not supported") {
				style = warningStyle
			}
			fmt.Fprintln(w, "  "+style.Render("• "+label))
		}
	}

	summary := fmt.Sprintf("%d files  %d → %d bytes  %.1f%% smaller\nwritten to %s",
		len(r.Files), r.TotalOriginalSize, r.TotalOptimizedSize, r.CompressionRatio, target)
	fmt.Fprintln(w)
	fmt.Fprintln(w, boxStyle.Render(summary))
}

// cmdContext returns the command context, falling back to Background when
// the command runs outside ExecuteContext.
func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
