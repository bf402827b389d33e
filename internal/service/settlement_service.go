// Package service composes the expense source, reconciler, local store and
// ledger into the settlement pipeline: fetch expenses, build a balanced draft,
// check for duplicates, and apply the draft to the ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/splitsettle/internal/config"
	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/reconciler"
	"github.com/mmynk/splitsettle/internal/storage"
)

// ExpenseSource supplies expenses and settle-up history for a group.
type ExpenseSource interface {
	CurrentUser(ctx context.Context) (int64, error)
	Expenses(ctx context.Context, groupID int64, datedAfter time.Time, limit int) ([]models.Expense, error)
	SettlementHistory(ctx context.Context, groupID int64, count int) ([]models.Expense, error)
}

// Ledger applies drafts as real transactions.
type Ledger interface {
	CreateTransaction(ctx context.Context, budgetID string, draft *models.Draft) (string, error)
}

// AlreadyProcessedError reports that a draft's settlement was applied before.
// It is an expected outcome, not a failure: callers short-circuit gracefully.
type AlreadyProcessedError struct {
	SettlementDate      time.Time
	LedgerTransactionID string
}

func (e *AlreadyProcessedError) Error() string {
	return fmt.Sprintf("settlement on %s already processed as ledger transaction %s",
		e.SettlementDate.Format("2006-01-02"), e.LedgerTransactionID)
}

// SettlementService processes expense-source settlements into ledger
// transactions.
type SettlementService struct {
	cfg    *config.Config
	store  storage.Store
	source ExpenseSource
	ledger Ledger
}

// New creates a SettlementService.
func New(cfg *config.Config, store storage.Store, source ExpenseSource, ledger Ledger) *SettlementService {
	return &SettlementService{cfg: cfg, store: store, source: source, ledger: ledger}
}

// RecentSettlements fetches the most recent settle-up payments in the
// configured group, newest first.
func (s *SettlementService) RecentSettlements(ctx context.Context, count int) ([]models.Expense, error) {
	settlements, err := s.source.SettlementHistory(ctx, s.cfg.SplitwiseGroupID, count)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch settlement history: %w", err)
	}
	slog.Info("Fetched recent settlements", "count", len(settlements))
	return settlements, nil
}

// ExpensesAfter fetches all regular (non-payment) expenses dated after the
// given settlement. The settlement is the lower bound; there is no upper
// bound.
func (s *SettlementService) ExpensesAfter(ctx context.Context, settlement models.Expense) ([]models.Expense, error) {
	return s.expensesSince(ctx, settlement.Date)
}

// ExpensesSince fetches all regular expenses dated after the given time.
func (s *SettlementService) ExpensesSince(ctx context.Context, since time.Time) ([]models.Expense, error) {
	return s.expensesSince(ctx, since)
}

func (s *SettlementService) expensesSince(ctx context.Context, since time.Time) ([]models.Expense, error) {
	expenses, err := s.source.Expenses(ctx, s.cfg.SplitwiseGroupID, since, 1000)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch expenses: %w", err)
	}

	regular := make([]models.Expense, 0, len(expenses))
	for _, exp := range expenses {
		if !exp.Payment {
			regular = append(regular, exp)
		}
	}
	slog.Info("Fetched expenses", "since", since, "regular", len(regular), "total", len(expenses))
	return regular, nil
}

// BaselineSettlement finds the settlement to use as the lower bound for the
// next batch: the most recent settlement already recorded as processed.
// Returns nil when no processed settlement matches.
func (s *SettlementService) BaselineSettlement(ctx context.Context, settlements []models.Expense) (*models.Expense, error) {
	mostRecent, err := s.store.MostRecentSettlementDate(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Info("No processed settlements on record")
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up most recent processed settlement: %w", err)
	}

	for i := range settlements {
		if sameDay(settlements[i].Date, mostRecent) {
			slog.Info("Found baseline settlement", "date", mostRecent.Format("2006-01-02"))
			return &settlements[i], nil
		}
	}

	slog.Warn("Processed settlement on record has no matching settlement upstream",
		"date", mostRecent.Format("2006-01-02"))
	return nil, nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// CreateDraft builds a clearing transaction draft from a batch of regular
// expenses. When an explicit settlement payment is supplied, its amount is
// verified against the computed total and becomes authoritative.
//
// Line amounts are fixed once this returns; later pipeline stages only touch
// category fields.
func (s *SettlementService) CreateDraft(ctx context.Context, expenses []models.Expense, settlement *models.Payment) (*models.Draft, error) {
	if len(expenses) == 0 {
		return nil, fmt.Errorf("no expenses to process")
	}

	userID, err := s.source.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve current user: %w", err)
	}

	reconciler.VerifyPrecision(expenses)

	expectedTotal, err := reconciler.ResolveExpectedTotal(expenses, settlement, userID)
	if err != nil {
		return nil, err
	}

	lines, err := reconciler.ComputeSplitLines(expenses, userID, expectedTotal)
	if err != nil {
		return nil, err
	}

	settlementDate := expenses[0].Date
	expenseIDs := make([]int64, 0, len(expenses))
	for _, exp := range expenses {
		if exp.Date.After(settlementDate) {
			settlementDate = exp.Date
		}
		expenseIDs = append(expenseIDs, exp.ID)
	}

	draft := &models.Draft{
		DraftID:        reconciler.DeterministicDraftID(expenseIDs, settlementDate),
		SettlementDate: settlementDate,
		PayeeName:      s.cfg.ClearingPayeeName,
		AccountID:      s.cfg.ClearingAccountID,
		TotalAmount:    expectedTotal,
		Lines:          lines,
		Metadata: models.DraftMetadata{
			GroupID:    s.cfg.SplitwiseGroupID,
			ExpenseIDs: expenseIDs,
			UserID:     userID,
		},
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	slog.Info("Created draft",
		"draft_id", draft.DraftID,
		"lines", len(draft.Lines),
		"total", draft.TotalAmount,
		"settlement_date", settlementDate.Format("2006-01-02"),
	)
	return draft, nil
}

// CheckAlreadyProcessed returns an AlreadyProcessedError if the draft's
// content hash is already in the processed-settlement store.
func (s *SettlementService) CheckAlreadyProcessed(ctx context.Context, draft *models.Draft) error {
	hash := reconciler.DraftHash(draft.Lines)

	rec, err := s.store.GetProcessedSettlement(ctx, hash)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to check processed settlements: %w", err)
	}

	slog.Info("Draft already processed",
		"settlement_date", rec.SettlementDate.Format("2006-01-02"),
		"ledger_transaction_id", rec.LedgerTransactionID,
	)
	return &AlreadyProcessedError{
		SettlementDate:      rec.SettlementDate,
		LedgerTransactionID: rec.LedgerTransactionID,
	}
}

// Apply creates the draft's transaction in the ledger and records the
// settlement as processed. The duplicate check runs first; the processed
// record is written only after the ledger call succeeds, so a failed apply is
// never marked processed.
func (s *SettlementService) Apply(ctx context.Context, draft *models.Draft) (string, error) {
	if err := s.CheckAlreadyProcessed(ctx, draft); err != nil {
		return "", err
	}

	transactionID, err := s.ledger.CreateTransaction(ctx, s.cfg.LedgerBudgetID, draft)
	if err != nil {
		return "", fmt.Errorf("failed to create ledger transaction: %w", err)
	}
	slog.Info("Created ledger transaction", "transaction_id", transactionID)

	hash := reconciler.DraftHash(draft.Lines)
	rec := &models.ProcessedSettlement{
		SettlementDate:      draft.SettlementDate,
		GroupID:             draft.Metadata.GroupID,
		DraftHash:           hash,
		LedgerTransactionID: transactionID,
	}
	if err := s.store.SaveProcessedSettlement(ctx, rec); err != nil {
		// The transaction exists in the ledger but the local record failed;
		// surface loudly so the operator can record it manually.
		return transactionID, fmt.Errorf("ledger transaction %s created but recording it locally failed: %w", transactionID, err)
	}
	slog.Info("Saved processed settlement record", "draft_hash", hash[:8])

	return transactionID, nil
}
