package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SaveProcessedSettlement persists a processed settlement record.
func (s *SQLiteStore) SaveProcessedSettlement(ctx context.Context, rec *models.ProcessedSettlement) error {
	// Generate ID if not set
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_settlements (id, settlement_date, group_id, draft_hash, ledger_transaction_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SettlementDate.Format(dateFormat), rec.GroupID,
		rec.DraftHash, rec.LedgerTransactionID, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert processed settlement: %w", err)
	}

	return nil
}

// GetProcessedSettlement retrieves a processed settlement by draft hash.
func (s *SQLiteStore) GetProcessedSettlement(ctx context.Context, draftHash string) (*models.ProcessedSettlement, error) {
	rec := &models.ProcessedSettlement{}
	var date string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, settlement_date, group_id, draft_hash, ledger_transaction_id, created_at
		 FROM processed_settlements WHERE draft_hash = ?`,
		draftHash,
	).Scan(&rec.ID, &date, &rec.GroupID, &rec.DraftHash, &rec.LedgerTransactionID, &rec.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processed settlement: %w", err)
	}

	rec.SettlementDate, err = time.Parse(dateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("failed to parse settlement date %q: %w", date, err)
	}

	return rec, nil
}

// MostRecentSettlementDate returns the latest settlement date on record.
func (s *SQLiteStore) MostRecentSettlementDate(ctx context.Context) (time.Time, error) {
	var date string
	err := s.db.QueryRowContext(ctx,
		"SELECT settlement_date FROM processed_settlements ORDER BY settlement_date DESC LIMIT 1",
	).Scan(&date)

	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, storage.ErrNotFound
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get most recent settlement date: %w", err)
	}

	parsed, err := time.Parse(dateFormat, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse settlement date %q: %w", date, err)
	}

	return parsed, nil
}
