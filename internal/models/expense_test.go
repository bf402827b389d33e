package models

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestExpenseNetFor(t *testing.T) {
	exp := Expense{
		ID: 10,
		Shares: []Share{
			{UserID: 1, Paid: decimal.RequireFromString("30.00"), Owed: decimal.RequireFromString("10.00"), Net: decimal.RequireFromString("20.00")},
			{UserID: 2, Paid: decimal.Zero, Owed: decimal.RequireFromString("20.00"), Net: decimal.RequireFromString("-20.00")},
		},
	}

	net, err := exp.NetFor(1)
	if err != nil {
		t.Fatalf("NetFor(1) failed: %v", err)
	}
	if !net.Equal(decimal.RequireFromString("20.00")) {
		t.Errorf("NetFor(1) = %s, want 20.00", net)
	}

	_, err = exp.NetFor(3)
	var perr *ParticipantNotFoundError
	if !errors.As(err, &perr) {
		t.Fatalf("NetFor(3): expected ParticipantNotFoundError, got %v", err)
	}
	if perr.UserID != 3 || perr.ExpenseID != 10 {
		t.Errorf("error = %+v, want user 3 in expense 10", perr)
	}
}

func TestDraftValidate(t *testing.T) {
	draft := &Draft{
		DraftID:     "abc",
		TotalAmount: 30000,
		Lines: []SplitLine{
			{ExpenseID: 1, Amount: 50003},
			{ExpenseID: 2, Amount: -20003},
		},
	}
	if err := draft.Validate(); err != nil {
		t.Errorf("Validate failed on balanced draft: %v", err)
	}

	draft.Lines[0].Amount++
	if err := draft.Validate(); err == nil {
		t.Error("Validate passed on unbalanced draft")
	}
}
