// Package models defines the core domain models for splitsettle.
//
// # Amount representation
//
// Two representations are used, deliberately:
//   - Amounts coming from the expense source are arbitrary-precision decimals
//     (github.com/shopspring/decimal). Binary floats are never used for money;
//     they break the sum invariant the reconciler guarantees.
//   - Amounts destined for the ledger are signed int64 minor units (1/1000 of
//     the major unit). Negative means money flows out of the tracked account.
//
// # Mutability
//
// SplitLine amounts are fixed once the reconciler has produced a draft.
// Categorization only ever touches category fields (CategoryID, CategoryName,
// Confidence, NeedsReview). ProcessedSettlement records are written once after
// a successful ledger apply and never updated or deleted.
package models
