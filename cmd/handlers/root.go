/*
Copyright © 2025 Your Name

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"healthpage/internal/config"
	"healthpage/internal/logger"
	"healthpage/internal/pipeline"
)

var cfgFile string

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "healthpage",
		Short: "Generate personalized health tip pages",
		Long: `healthpage builds a single HTML page of health tips for a given age and gender.

Workflow:
  • Fetch tips for the profile from MyHealthfinder (or a local tips file)
  • Caption the images in the image directory
  • Pair each tip with the image whose caption is most similar
  • Ask a generative model for the page, then normalize it into Bootstrap cards

Examples:
  # Generate a page for a 65 year old man
  healthpage generate --age 65 --gender male

  # Re-normalize a saved model response
  healthpage normalize raw.html --age 30 --gender female

  # Serve the form and inline preview
  healthpage serve --port 3000`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .healthpage.yaml in . or $HOME)")

	rootCmd.AddCommand(NewGenerateCmd())
	rootCmd.AddCommand(NewNormalizeCmd())
	rootCmd.AddCommand(NewCaptionsCmd())
	rootCmd.AddCommand(NewCacheCmd())
	rootCmd.AddCommand(NewRunsCmd())
	rootCmd.AddCommand(NewServeCmd())
	rootCmd.AddCommand(NewFormCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("Error: ")+err.Error())
		os.Exit(1)
	}
}

// loadConfig loads configuration and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	if cfg.App.ConfigFile != "" {
		logger.Debug("Using config file", "path", cfg.App.ConfigFile)
	}
	return cfg, nil
}

// loadSettings loads configuration without provider validation, for offline commands.
func loadSettings() (*config.Config, error) {
	cfg, err := config.LoadUnvalidated(cfgFile)
	if err != nil {
		return nil, err
	}
	logger.Configure(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	return cfg, nil
}

// buildPipeline loads configuration and wires a ready orchestrator.
func buildPipeline(ctx context.Context, configure func(*pipeline.Builder)) (*pipeline.Orchestrator, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	builder := pipeline.NewBuilder(cfg)
	if configure != nil {
		configure(builder)
	}
	orch, err := builder.Build(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build pipeline: %w", err)
	}
	return orch, cfg, nil
}
