// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("record not found")

// Store defines the interface for the local settlement store.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL, etc.)
// without changing the service layer.
type Store interface {
	// SaveProcessedSettlement persists proof that a draft was applied.
	// The record's ID and CreatedAt fields are populated by the store.
	SaveProcessedSettlement(ctx context.Context, rec *models.ProcessedSettlement) error

	// GetProcessedSettlement retrieves a processed settlement by draft hash.
	// Returns ErrNotFound if no settlement with that hash was recorded.
	GetProcessedSettlement(ctx context.Context, draftHash string) (*models.ProcessedSettlement, error)

	// MostRecentSettlementDate returns the latest settlement date on record.
	// Returns ErrNotFound if no settlements have been processed yet.
	MostRecentSettlementDate(ctx context.Context) (time.Time, error)

	// SaveCategoryMapping persists a description-to-category mapping,
	// replacing any existing mapping for the same pattern.
	SaveCategoryMapping(ctx context.Context, mapping *models.CategoryMapping) error

	// GetCategoryMapping retrieves a mapping by its normalized pattern.
	// Returns ErrNotFound if the pattern has no cached mapping.
	GetCategoryMapping(ctx context.Context, pattern string) (*models.CategoryMapping, error)

	// ListCategoryMappings returns all cached mappings, newest first.
	ListCategoryMappings(ctx context.Context) ([]*models.CategoryMapping, error)

	// Close releases any resources held by the store.
	Close() error
}
