package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
	"github.com/mmynk/splitsettle/internal/storage"
)

func TestSQLiteStore(t *testing.T) {
	// Create temp directory for test database
	tempDir, err := os.MkdirTemp("", "splitsettle-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	dbPath := filepath.Join(tempDir, "test.db")
	store, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()

	t.Run("SaveProcessedSettlement generates ID and timestamp", func(t *testing.T) {
		rec := &models.ProcessedSettlement{
			SettlementDate:      time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
			GroupID:             42,
			DraftHash:           "hash-1",
			LedgerTransactionID: "txn-abc",
		}

		if err := store.SaveProcessedSettlement(ctx, rec); err != nil {
			t.Fatalf("SaveProcessedSettlement failed: %v", err)
		}
		if rec.ID == "" {
			t.Error("Expected record ID to be generated")
		}
		if rec.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetProcessedSettlement round-trips by hash", func(t *testing.T) {
		original := &models.ProcessedSettlement{
			SettlementDate:      time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC),
			GroupID:             42,
			DraftHash:           "hash-2",
			LedgerTransactionID: "txn-def",
		}
		if err := store.SaveProcessedSettlement(ctx, original); err != nil {
			t.Fatalf("SaveProcessedSettlement failed: %v", err)
		}

		got, err := store.GetProcessedSettlement(ctx, "hash-2")
		if err != nil {
			t.Fatalf("GetProcessedSettlement failed: %v", err)
		}
		if got.LedgerTransactionID != "txn-def" {
			t.Errorf("LedgerTransactionID = %q, want txn-def", got.LedgerTransactionID)
		}
		if !got.SettlementDate.Equal(original.SettlementDate) {
			t.Errorf("SettlementDate = %v, want %v", got.SettlementDate, original.SettlementDate)
		}
		if got.GroupID != 42 {
			t.Errorf("GroupID = %d, want 42", got.GroupID)
		}
	})

	t.Run("GetProcessedSettlement returns ErrNotFound for unknown hash", func(t *testing.T) {
		_, err := store.GetProcessedSettlement(ctx, "no-such-hash")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("duplicate draft hash is rejected", func(t *testing.T) {
		rec := &models.ProcessedSettlement{
			SettlementDate:      time.Date(2024, 2, 11, 0, 0, 0, 0, time.UTC),
			GroupID:             42,
			DraftHash:           "hash-2", // already saved above
			LedgerTransactionID: "txn-dup",
		}
		if err := store.SaveProcessedSettlement(ctx, rec); err == nil {
			t.Error("expected unique constraint violation, got nil")
		}
	})

	t.Run("MostRecentSettlementDate returns the latest date", func(t *testing.T) {
		got, err := store.MostRecentSettlementDate(ctx)
		if err != nil {
			t.Fatalf("MostRecentSettlementDate failed: %v", err)
		}
		want := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
		if !got.Equal(want) {
			t.Errorf("MostRecentSettlementDate = %v, want %v", got, want)
		}
	})

	t.Run("category mapping round-trip with upsert", func(t *testing.T) {
		confidence := 0.85
		mapping := &models.CategoryMapping{
			Pattern:    "splitwise: groceries (exp_1)",
			CategoryID: "cat-groceries",
			Source:     "ai",
			Confidence: &confidence,
			Rationale:  "grocery store purchase",
		}
		if err := store.SaveCategoryMapping(ctx, mapping); err != nil {
			t.Fatalf("SaveCategoryMapping failed: %v", err)
		}

		got, err := store.GetCategoryMapping(ctx, "splitwise: groceries (exp_1)")
		if err != nil {
			t.Fatalf("GetCategoryMapping failed: %v", err)
		}
		if got.CategoryID != "cat-groceries" || got.Source != "ai" {
			t.Errorf("mapping = %+v, want cat-groceries from ai", got)
		}
		if got.Confidence == nil || *got.Confidence != 0.85 {
			t.Errorf("Confidence = %v, want 0.85", got.Confidence)
		}

		// Upsert replaces the existing mapping for the same pattern
		mapping.CategoryID = "cat-dining"
		mapping.Source = "manual"
		mapping.Confidence = nil
		mapping.Rationale = ""
		if err := store.SaveCategoryMapping(ctx, mapping); err != nil {
			t.Fatalf("SaveCategoryMapping upsert failed: %v", err)
		}

		got, err = store.GetCategoryMapping(ctx, "splitwise: groceries (exp_1)")
		if err != nil {
			t.Fatalf("GetCategoryMapping after upsert failed: %v", err)
		}
		if got.CategoryID != "cat-dining" || got.Source != "manual" {
			t.Errorf("mapping after upsert = %+v, want cat-dining from manual", got)
		}
		if got.Confidence != nil {
			t.Errorf("Confidence after upsert = %v, want nil", got.Confidence)
		}
	})

	t.Run("GetCategoryMapping returns ErrNotFound for unknown pattern", func(t *testing.T) {
		_, err := store.GetCategoryMapping(ctx, "never seen")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("ListCategoryMappings returns all mappings", func(t *testing.T) {
		if err := store.SaveCategoryMapping(ctx, &models.CategoryMapping{
			Pattern:    "splitwise: internet (exp_2)",
			CategoryID: "cat-utilities",
			Source:     "rule",
		}); err != nil {
			t.Fatalf("SaveCategoryMapping failed: %v", err)
		}

		mappings, err := store.ListCategoryMappings(ctx)
		if err != nil {
			t.Fatalf("ListCategoryMappings failed: %v", err)
		}
		if len(mappings) != 2 {
			t.Errorf("got %d mappings, want 2", len(mappings))
		}
	})
}
