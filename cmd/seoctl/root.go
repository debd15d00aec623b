package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/axoraweb/seo-backend/internal/config"
	"github.com/axoraweb/seo-backend/internal/logging"
	"github.com/axoraweb/seo-backend/internal/models"
	"github.com/axoraweb/seo-backend/internal/optimizer"
	"github.com/axoraweb/seo-backend/internal/rewrite"
	gojson "github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// Version is set during build.
var Version = "dev"

var (
	cfgFile  string
	infoFile string
	verbose  bool
)

var rootCmd = &cobra.Command{
	Use:     "seoctl",
	Version: Version,
	Short:   "Optimize and analyze websites for search engines",
	Long: `seoctl rewrites the files of a zipped website with SEO improvements,
or inspects a project directory and reports what each page is missing.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./"+config.FileName+")")
	rootCmd.PersistentFlags().StringVar(&infoFile, "info", "", "project info file (YAML or JSON)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")

	rootCmd.AddCommand(optimizeCmd, analyzeCmd)
}

// environment is what every subcommand needs.
type environment struct {
	cfg      *config.AppConfig
	logger   *slog.Logger
	pipeline *optimizer.Pipeline
	info     *models.ProjectInfo
}

func loadEnvironment() (*environment, error) {
	cfg, err := config.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}

	level := "error"
	if verbose {
		level = "debug"
	}
	logger := logging.New(os.Stderr, level, "text")

	defaults, err := rewrite.LoadDefaults(cfg.Storage.DefaultsFile)
	if err != nil {
		logger.Warn("using built-in defaults", "error", err)
	}

	info, err := loadProjectInfo(infoFile)
	if err != nil {
		return nil, err
	}

	return &environment{
		cfg:    cfg,
		logger: logger,
		pipeline: optimizer.NewPipeline(optimizer.Options{
			MaxEntrySize:   cfg.Processing.MaxEntrySize,
			Defaults:       defaults,
			DetectLanguage: cfg.Processing.DetectLanguage,
			InternalLinks:  cfg.Processing.InternalLinks,
			Logger:         logger,
		}),
		info: info,
	}, nil
}

// loadProjectInfo reads a project info file. JSON files are recognised by
// extension; anything else is parsed as YAML.
func loadProjectInfo(path string) (*models.ProjectInfo, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading project info: %w", err)
	}

	var info models.ProjectInfo
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = gojson.Unmarshal(data, &info)
	} else {
		err = yaml.Unmarshal(data, &info)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing project info %s: %w", path, err)
	}
	return &info, nil
}
