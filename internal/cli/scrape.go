package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"newscollector/internal/config"
	"newscollector/internal/scrape"
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape <url>",
	Short: "Fetch the full article body behind a URL",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		scraper := scrape.New(scrapeConfigFrom(cfg))

		result := scraper.Scrape(cmd.Context(), args[0])
		if !result.Success {
			return fmt.Errorf("scrape failed: %w", result.Err)
		}

		if result.Title != "" {
			fmt.Printf("# %s\n\n", result.Title)
		}
		fmt.Println(result.FullBody)
		if len(result.Images) > 0 {
			fmt.Println()
			for _, img := range result.Images {
				fmt.Printf("image: %s\n", img)
			}
		}
		fmt.Printf("\n(%s)\n", result.Latency.Round(time.Millisecond))
		return nil
	},
}

func scrapeConfigFrom(cfg *config.Config) scrape.Config {
	sc := scrape.DefaultConfig()
	sc.MinBodyLength = cfg.Scrape.MinBodyLength
	sc.MaxRetries = cfg.Scrape.MaxRetries
	sc.PerHostPerSec = cfg.Scrape.PerHostPerSec
	sc.MinImageWidth = cfg.Scrape.MinImageWidth
	sc.MinImageHeight = cfg.Scrape.MinImageHeight
	if d, err := time.ParseDuration(cfg.Scrape.Timeout); err == nil && d > 0 {
		sc.Timeout = d
	}
	if d, err := time.ParseDuration(cfg.Scrape.CacheTTL); err == nil && d > 0 {
		sc.CacheTTL = d
	}
	return sc
}
