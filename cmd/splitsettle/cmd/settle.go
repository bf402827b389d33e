package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/mmynk/splitsettle/internal/categorize"
	"github.com/mmynk/splitsettle/internal/config"
	"github.com/mmynk/splitsettle/internal/ledger"
	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/service"
	"github.com/mmynk/splitsettle/internal/splitwise"
	"github.com/mmynk/splitsettle/internal/storage/sqlite"
	"github.com/mmynk/splitsettle/internal/ui"
)

var (
	sinceFlag       string
	expectTotalFlag string
	dryRun          bool
	skipCategorize  bool
	assumeYes       bool
)

var settleCmd = &cobra.Command{
	Use:   "settle",
	Short: "Build and apply a clearing transaction for the latest settlement",
	Long: `Fetch Splitwise expenses since the last processed settlement, compute
a balanced split transaction, categorize the lines, and apply it to the
ledger after confirmation.

With --dry-run the draft is printed and nothing is written. With --since
the expense window starts at the given date instead of the last processed
settlement. With --expect-total the computed total is verified against an
explicit settlement amount before any transaction is created.`,
	Run: func(cmd *cobra.Command, args []string) {
		exitOnError(runSettle(cmd.Context()), "settle failed")
	},
}

func init() {
	settleCmd.Flags().StringVar(&sinceFlag, "since", "", "fetch expenses after this date (YYYY-MM-DD) instead of the last processed settlement")
	settleCmd.Flags().StringVar(&expectTotalFlag, "expect-total", "", "verify the computed total against this settlement amount (e.g. 120.50)")
	settleCmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the draft without applying it")
	settleCmd.Flags().BoolVar(&skipCategorize, "no-categorize", false, "skip AI categorization")
	settleCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "apply without asking for confirmation")
}

func runSettle(ctx context.Context) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	store, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	source, err := splitwise.NewClient(cfg.SplitwiseAPIKey)
	if err != nil {
		return err
	}
	ldg, err := ledger.NewClient(cfg.LedgerAccessToken)
	if err != nil {
		return err
	}

	svc := service.New(cfg, store, source, ldg)

	expenses, err := fetchExpenses(ctx, svc)
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Println("No expenses to process.")
		return nil
	}
	fmt.Printf("Found %d expenses to settle.\n", len(expenses))

	settlement, err := parseExpectedSettlement()
	if err != nil {
		return err
	}

	draft, err := svc.CreateDraft(ctx, expenses, settlement)
	if err != nil {
		return err
	}

	if err := svc.CheckAlreadyProcessed(ctx, draft); err != nil {
		var processed *service.AlreadyProcessedError
		if errors.As(err, &processed) {
			fmt.Printf("Settlement on %s was already processed (ledger transaction %s).\n",
				processed.SettlementDate.Format("2006-01-02"), processed.LedgerTransactionID)
			return nil
		}
		return err
	}

	if !skipCategorize && cfg.ClassifierAPIKey != "" {
		if err := categorizeDraft(ctx, cfg, store, ldg, draft); err != nil {
			// Categorization is best effort; amounts are final either way
			slog.Warn("Categorization failed, continuing with uncategorized lines", "error", err)
		}
	}

	fmt.Println()
	ui.PrintDraft(os.Stdout, draft)
	fmt.Println()

	if dryRun {
		fmt.Println("Dry run, nothing applied.")
		return nil
	}

	if !assumeYes && !ui.Confirm(os.Stdin, os.Stdout, "Apply this transaction to the ledger?") {
		fmt.Println("Aborted.")
		return nil
	}

	transactionID, err := svc.Apply(ctx, draft)
	if err != nil {
		var processed *service.AlreadyProcessedError
		if errors.As(err, &processed) {
			fmt.Printf("Settlement on %s was already processed (ledger transaction %s).\n",
				processed.SettlementDate.Format("2006-01-02"), processed.LedgerTransactionID)
			return nil
		}
		return err
	}

	fmt.Printf("Created ledger transaction %s\n", transactionID)
	return nil
}

// fetchExpenses resolves the expense window. An explicit --since wins;
// otherwise the most recent processed settlement is the lower bound.
func fetchExpenses(ctx context.Context, svc *service.SettlementService) ([]models.Expense, error) {
	if sinceFlag != "" {
		since, err := time.Parse("2006-01-02", sinceFlag)
		if err != nil {
			return nil, fmt.Errorf("invalid --since date %q: %w", sinceFlag, err)
		}
		return svc.ExpensesSince(ctx, since)
	}

	settlements, err := svc.RecentSettlements(ctx, 3)
	if err != nil {
		return nil, err
	}
	baseline, err := svc.BaselineSettlement(ctx, settlements)
	if err != nil {
		return nil, err
	}
	if baseline == nil {
		return nil, fmt.Errorf("no processed settlement on record to anchor the expense window; rerun with --since YYYY-MM-DD")
	}
	return svc.ExpensesAfter(ctx, *baseline)
}

func parseExpectedSettlement() (*models.Payment, error) {
	if expectTotalFlag == "" {
		return nil, nil
	}
	amount, err := decimal.NewFromString(expectTotalFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid --expect-total amount %q: %w", expectTotalFlag, err)
	}
	return &models.Payment{Amount: amount, Date: time.Now()}, nil
}

func categorizeDraft(ctx context.Context, cfg *config.Config, store *sqlite.SQLiteStore, ldg *ledger.Client, draft *models.Draft) error {
	classifier, err := categorize.NewAIClassifier(cfg.ClassifierAPIKey, cfg.ClassifierModel)
	if err != nil {
		return err
	}
	categories, err := ldg.Categories(ctx, cfg.LedgerBudgetID, true)
	if err != nil {
		return fmt.Errorf("failed to fetch ledger categories: %w", err)
	}

	categorizer := categorize.New(store, classifier, categories, cfg.ConfidenceThreshold)
	review := categorizer.CategorizeAll(ctx, draft.Lines)
	if review > 0 {
		fmt.Printf("%d line(s) need category review.\n", review)
	}
	return nil
}
