// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"coursecast/internal/config"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Global flags
var (
	flagDB        string
	flagCDN       string
	flagLibrary   string
	flagWatermark string
	flagJSON      bool
	flagDebug     bool
)

// cfg holds the loaded configuration (merged: defaults < config file < flags).
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "coursecast",
	Short: "Resolve, gate, and serve course videos",
	Long: `Coursecast is the media core of a course-video platform: it classifies
whatever source an instructor pastes (URLs, embed snippets), normalizes it
into a canonical playable form, and gates playback behind free/subscription/
period entitlements.`,
	PersistentPreRunE: loadConfig,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDB, "db", "", "Catalog database path")
	rootCmd.PersistentFlags().StringVar(&flagCDN, "cdn", "", "Custom EdgeStream CDN hostname")
	rootCmd.PersistentFlags().StringVar(&flagLibrary, "library", "", "EdgeStream library ID")
	rootCmd.PersistentFlags().StringVar(&flagWatermark, "watermark", "", "Watermark overlay text")
	rootCmd.PersistentFlags().BoolVarP(&flagJSON, "json", "j", false, "Output as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "x", false, "Debug logging to stderr")

	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(libraryCmd)
	rootCmd.AddCommand(grantCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads and merges configuration: defaults < config file < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if flagDB != "" {
		cfg.DatabasePath = flagDB
	}
	if flagCDN != "" {
		cfg.CDNHostname = flagCDN
	}
	if flagLibrary != "" {
		cfg.LibraryID = flagLibrary
	}
	if flagWatermark != "" {
		cfg.Watermark = flagWatermark
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if cfg.Debug {
		log.SetOutput(os.Stderr)
		log.SetPrefix("[coursecast] ")
	} else {
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
	}

	return nil
}

// debugf logs a message if debug mode is enabled.
func debugf(format string, args ...interface{}) {
	if cfg != nil && cfg.Debug {
		log.Printf(format, args...)
	}
}
