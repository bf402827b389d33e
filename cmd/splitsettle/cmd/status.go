package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/splitsettle/internal/config"
	"github.com/mmynk/splitsettle/internal/ledger"
	"github.com/mmynk/splitsettle/internal/service"
	"github.com/mmynk/splitsettle/internal/splitwise"
	"github.com/mmynk/splitsettle/internal/storage"
	"github.com/mmynk/splitsettle/internal/storage/sqlite"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last processed settlement and recent settle-ups",
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runStatus(cmd.Context()), "status failed")
	},
}

func runStatus(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	mostRecent, err := store.MostRecentSettlementDate(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		fmt.Println("No settlements processed yet.")
	case err != nil:
		return err
	default:
		fmt.Printf("Last processed settlement: %s\n", mostRecent.Format("2006-01-02"))
	}

	// Recent settle-ups need the API; skip quietly when not configured
	if err := cfg.Validate(); err != nil {
		return nil
	}

	source, err := splitwise.NewClient(cfg.SplitwiseAPIKey)
	if err != nil {
		return err
	}
	ldg, err := ledger.NewClient(cfg.LedgerAccessToken)
	if err != nil {
		return err
	}
	svc := service.New(cfg, store, source, ldg)

	settlements, err := svc.RecentSettlements(ctx, 3)
	if err != nil {
		return err
	}
	if len(settlements) == 0 {
		fmt.Println("No settle-ups found in the group.")
		return nil
	}

	baseline, err := svc.BaselineSettlement(ctx, settlements)
	if err != nil {
		return err
	}

	fmt.Println("Recent settle-ups:")
	for i := range settlements {
		marker := " "
		if baseline != nil && settlements[i].ID == baseline.ID {
			marker = "*"
		}
		fmt.Printf("  %s %s  %s %s\n", marker,
			settlements[i].Date.Format("2006-01-02"),
			settlements[i].Cost.StringFixed(2),
			settlements[i].CurrencyCode)
	}
	if baseline != nil {
		fmt.Println("  (* = last processed)")
	}
	return nil
}
