package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"newscollector/internal/registry"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List the sources declared in the registry manifest",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg := registry.Load(cfg.SourceManagement.ManifestPath,
			registry.WithMaxFailures(cfg.SourceManagement.MaxConsecutiveFailures))

		sources := reg.All()
		if len(sources) == 0 {
			fmt.Println("No sources loaded. Check source_management.manifest_path.")
			return nil
		}

		for _, s := range sources {
			state := "active"
			if !s.Active {
				state = "inactive"
			}
			fmt.Printf("%-20s %-9s %-9s cred=%5.1f %-8s %s\n",
				s.ID, s.Tier, s.IngestionKind, s.BaseCredibility, state, s.BaseURL)
		}

		stats := reg.Stats()
		fmt.Printf("\n%d sources (%d active)\n", stats.Total, stats.Active)
		return nil
	},
}
