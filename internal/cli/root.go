// Package cli wires the cobra command tree for the newscollector binary.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"newscollector/internal/config"
	"newscollector/internal/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "newscollector",
	Short: "newscollector collects, scores and ranks news articles",
	Long: `newscollector runs a single-shot news analysis pipeline: it selects
sources from the registry manifest, fans out across their connectors,
normalizes and deduplicates the articles, scores each one on integrity,
credibility, quality, popularity and relevance, and prints a ranked Top-N.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		logger.Init(cfg.Logging.Level, cfg.Logging.Pretty)
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default newscollector.yaml in . or $HOME)")
	rootCmd.AddCommand(collectCmd)
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(scrapeCmd)
}
