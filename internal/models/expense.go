package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Share is one participant's portion of an expense.
type Share struct {
	// UserID identifies the participant. Unique within an expense.
	UserID int64

	// Paid is the amount this participant paid toward the expense.
	Paid decimal.Decimal

	// Owed is the amount this participant owes for the expense.
	Owed decimal.Decimal

	// Net is Paid minus Owed. Positive = this participant is owed money,
	// negative = they owe.
	Net decimal.Decimal
}

// Expense is an immutable record of a shared cost from the expense source.
type Expense struct {
	// ID is the source system's unique identifier for the expense.
	ID int64

	// GroupID is the source group this expense belongs to.
	GroupID int64

	// Description is the human-entered expense description.
	Description string

	// Details is an optional free-form note.
	Details string

	// Date is when the expense occurred.
	Date time.Time

	// Cost is the total cost of the expense.
	Cost decimal.Decimal

	// CurrencyCode is the ISO currency code (e.g. "USD").
	CurrencyCode string

	// Payment is true for settle-up payments, false for regular expenses.
	// Only regular expenses are reconciled into split lines.
	Payment bool

	// Shares are the per-participant shares of this expense.
	Shares []Share
}

// ParticipantNotFoundError is returned when an expense does not list a share
// for the requested participant. This is a data-integrity defect, never
// silently defaulted to zero.
type ParticipantNotFoundError struct {
	UserID    int64
	ExpenseID int64
}

func (e *ParticipantNotFoundError) Error() string {
	return fmt.Sprintf("participant %d not in expense %d", e.UserID, e.ExpenseID)
}

// NetFor returns the net balance (paid - owed) for the given participant.
func (e *Expense) NetFor(userID int64) (decimal.Decimal, error) {
	for i := range e.Shares {
		if e.Shares[i].UserID == userID {
			return e.Shares[i].Net, nil
		}
	}
	return decimal.Decimal{}, &ParticipantNotFoundError{UserID: userID, ExpenseID: e.ID}
}

// Payment is an explicit settle-up payment between two participants.
type Payment struct {
	// ID is the source system's unique identifier for the payment.
	ID int64

	// Date is when the payment was recorded.
	Date time.Time

	// Amount is the payment amount.
	Amount decimal.Decimal

	// FromUserID is the participant who paid (debtor settling up).
	FromUserID int64

	// ToUserID is the participant who received payment.
	ToUserID int64
}
