package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsettle/internal/config"
	"github.com/mmynk/splitsettle/internal/storage/sqlite"
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "List cached category mappings",
	Long: `List the memo-to-category mappings cached from past classification
runs. Cached mappings are reused on later settlements without calling the
classifier again.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runMappings(cmd.Context()), "mappings failed")
	},
}

func runMappings(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	mappings, err := store.ListCategoryMappings(ctx)
	if err != nil {
		return err
	}
	if len(mappings) == 0 {
		fmt.Println("No category mappings cached yet.")
		return nil
	}

	fmt.Printf("%d cached mapping(s):\n", len(mappings))
	for _, m := range mappings {
		confidence := "   -"
		if m.Confidence != nil {
			confidence = fmt.Sprintf("%.2f", *m.Confidence)
		}
		fmt.Printf("  %-40s %-36s %s  %s\n", m.Pattern, m.CategoryID, confidence, m.Source)
	}
	return nil
}
