package models

import "time"

// ProcessedSettlement is the persisted proof that a draft was applied to the
// ledger. Written once after a successful apply; never updated or deleted.
type ProcessedSettlement struct {
	// ID is the unique identifier for the record (UUID format).
	ID string

	// SettlementDate is the draft's settlement date.
	SettlementDate time.Time

	// GroupID is the source group the settlement came from.
	GroupID int64

	// DraftHash is the content hash of the draft's split lines
	// (expense id + amount pairs, order-independent). Unique.
	DraftHash string

	// LedgerTransactionID is the identifier the ledger assigned on apply.
	LedgerTransactionID string

	// CreatedAt is the Unix timestamp when the record was written.
	CreatedAt int64
}

// CategoryMapping is a cached description-to-category mapping.
type CategoryMapping struct {
	// ID is the unique identifier for the mapping (UUID format).
	ID string

	// Pattern is the normalized (lowercased, trimmed) memo string.
	Pattern string

	// CategoryID is the ledger category the pattern maps to.
	CategoryID string

	// Source records where the mapping came from: "ai", "manual" or "rule".
	Source string

	// Confidence is the classifier's confidence, when Source is "ai".
	Confidence *float64

	// Rationale is the classifier's explanation, when available.
	Rationale string

	// CreatedAt is the Unix timestamp when the mapping was saved.
	CreatedAt int64
}

// Category is a ledger category.
type Category struct {
	ID        string
	Name      string
	GroupName string
	Hidden    bool
	Deleted   bool
}

// Account is a ledger account.
type Account struct {
	ID       string
	Name     string
	Type     string
	OnBudget bool
	Closed   bool
	Balance  int64 // minor units
}
