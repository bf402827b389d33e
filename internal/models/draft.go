package models

import (
	"fmt"
	"time"
)

// SplitLine is one proposed line of a clearing transaction, derived from a
// single source expense. Amount is fixed by the reconciler; category fields
// are filled in later by categorization.
type SplitLine struct {
	// ExpenseID is the source expense this line was derived from.
	ExpenseID int64

	// Amount is the signed amount in minor units.
	// Negative = outflow from the tracked account, positive = inflow.
	Amount int64

	// CategoryID is the ledger category assigned to this line, if any.
	CategoryID string

	// CategoryName is the display name for CategoryID ("Group > Name").
	CategoryName string

	// Confidence is the classifier's confidence for CategoryID, if the
	// category came from the classifier. Nil when unset or manually chosen.
	Confidence *float64

	// Memo is the human-readable line memo, also used as the category-cache
	// lookup key. Form: "Splitwise: <description> (exp_<id>)".
	Memo string

	// NeedsReview marks lines whose categorization needs a human look.
	NeedsReview bool
}

// DraftMetadata records where a draft came from.
type DraftMetadata struct {
	// GroupID is the source group the expenses were fetched from.
	GroupID int64

	// ExpenseIDs are the source expense IDs included in the draft.
	ExpenseIDs []int64

	// UserID is the participant the draft was reconciled for.
	UserID int64
}

// Draft is an in-memory, not-yet-applied candidate clearing transaction.
//
// Invariant: the sum of Lines amounts equals TotalAmount. Validate re-checks
// this; the reconciler guarantees it by construction.
type Draft struct {
	// DraftID identifies the draft. Deterministically derived from the
	// expense IDs and settlement date so the same settlement always produces
	// the same ID.
	DraftID string

	// SettlementDate is the latest expense date in the batch.
	SettlementDate time.Time

	// PayeeName is the display payee for the clearing transaction.
	PayeeName string

	// AccountID is the destination ledger account.
	AccountID string

	// TotalAmount is the signed total in minor units.
	TotalAmount int64

	// Lines are the per-expense split lines, in expense input order.
	Lines []SplitLine

	// Metadata records the draft's provenance.
	Metadata DraftMetadata
}

// Validate checks the sum invariant: split line amounts must sum exactly to
// the draft total.
func (d *Draft) Validate() error {
	var sum int64
	for i := range d.Lines {
		sum += d.Lines[i].Amount
	}
	if sum != d.TotalAmount {
		return fmt.Errorf("draft %s: split lines sum to %d, want total %d", d.DraftID, sum, d.TotalAmount)
	}
	return nil
}
