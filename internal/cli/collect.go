package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"newscollector/internal/pipeline"
	"newscollector/internal/query"
	"newscollector/internal/registry"
	"newscollector/internal/scrape"
)

var collectFlags struct {
	keywords   []string
	exclude    []string
	categories []string
	preset     string
	limit      int
	offset     int
	from       string
	to         string
	locale     string
	verified   bool
	scrapeFull bool
	jsonOut    bool
	timeout    time.Duration
}

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run the pipeline and print the ranked Top-N",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.Load(cfg.SourceManagement.ManifestPath,
			registry.WithMaxFailures(cfg.SourceManagement.MaxConsecutiveFailures))

		req := query.NewRequest(cfg)
		req.Keywords = collectFlags.keywords
		req.ExcludeKeywords = collectFlags.exclude
		req.Categories = collectFlags.categories
		if collectFlags.preset != "" {
			req.Preset = collectFlags.preset
		}
		if collectFlags.limit > 0 {
			req.Limit = collectFlags.limit
		}
		req.Offset = collectFlags.offset
		if collectFlags.locale != "" {
			req.Locale = collectFlags.locale
		}
		req.VerifiedSourcesOnly = collectFlags.verified

		loc := req.Location()
		if collectFlags.from != "" {
			t, err := time.ParseInLocation("2006-01-02", collectFlags.from, loc)
			if err != nil {
				return fmt.Errorf("bad --from date: %w", err)
			}
			req.From = &t
		}
		if collectFlags.to != "" {
			t, err := time.ParseInLocation("2006-01-02", collectFlags.to, loc)
			if err != nil {
				return fmt.Errorf("bad --to date: %w", err)
			}
			end := t.Add(24*time.Hour - time.Second)
			req.To = &end
		}

		var opts []pipeline.Option
		if collectFlags.scrapeFull {
			cfg.Scrape.Enabled = true
			opts = append(opts, pipeline.WithScraper(scrape.New(scrapeConfigFrom(cfg))))
		}

		p := pipeline.New(cfg, reg, opts...)

		ctx, cancel := context.WithTimeout(cmd.Context(), collectFlags.timeout)
		defer cancel()

		results, err := p.Collect(ctx, req)
		if err != nil {
			return err
		}

		if collectFlags.jsonOut {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		if len(results) == 0 {
			fmt.Println("No articles matched.")
			return nil
		}
		for _, a := range results {
			fmt.Printf("%2d. [%5.1f] %s\n", a.RankPosition, a.FinalScore, a.Title)
			fmt.Printf("    %s | %s | %s\n", a.SourceName, a.PublishedAt.Format(time.RFC3339), a.URL)
		}
		return nil
	},
}

func init() {
	collectCmd.Flags().StringSliceVarP(&collectFlags.keywords, "keyword", "k", nil, "include keyword (repeatable, max 10)")
	collectCmd.Flags().StringSliceVar(&collectFlags.exclude, "exclude", nil, "exclude keyword (repeatable)")
	collectCmd.Flags().StringSliceVarP(&collectFlags.categories, "category", "c", nil, "category filter (repeatable)")
	collectCmd.Flags().StringVarP(&collectFlags.preset, "preset", "p", "", "ranking preset: quality|trending|credible|latest")
	collectCmd.Flags().IntVarP(&collectFlags.limit, "limit", "n", 0, "number of articles to return (1-100)")
	collectCmd.Flags().IntVar(&collectFlags.offset, "offset", 0, "pagination offset")
	collectCmd.Flags().StringVar(&collectFlags.from, "from", "", "window start (YYYY-MM-DD)")
	collectCmd.Flags().StringVar(&collectFlags.to, "to", "", "window end (YYYY-MM-DD)")
	collectCmd.Flags().StringVar(&collectFlags.locale, "locale", "", "locale, e.g. ko_KR")
	collectCmd.Flags().BoolVar(&collectFlags.verified, "verified-only", false, "use only whitelist and tier1 sources")
	collectCmd.Flags().BoolVar(&collectFlags.scrapeFull, "scrape", false, "fetch full bodies for summary-only articles")
	collectCmd.Flags().BoolVar(&collectFlags.jsonOut, "json", false, "emit JSON instead of text")
	collectCmd.Flags().DurationVar(&collectFlags.timeout, "timeout", 60*time.Second, "overall request deadline")
}
