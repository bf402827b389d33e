package reconciler

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsettle/internal/models"
)

const testUserID int64 = 123

// makeExpense builds an expense whose net balance for testUserID is the given
// decimal string.
func makeExpense(id int64, net string) models.Expense {
	d, err := decimal.NewFromString(net)
	if err != nil {
		panic(err)
	}
	paid := d
	owed := decimal.Zero
	if d.IsNegative() {
		paid = decimal.Zero
		owed = d.Neg()
	}
	return models.Expense{
		ID:           id,
		GroupID:      999,
		Description:  fmt.Sprintf("Test expense %d", id),
		Date:         time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Cost:         d.Abs(),
		CurrencyCode: "USD",
		Shares: []models.Share{
			{UserID: testUserID, Paid: paid, Owed: owed, Net: d},
		},
	}
}

func sumLines(lines []models.SplitLine) int64 {
	var sum int64
	for _, l := range lines {
		sum += l.Amount
	}
	return sum
}

func TestComputeSplitLines(t *testing.T) {
	tests := []struct {
		name          string
		nets          []string
		expectedTotal int64
		wantAmounts   []int64
		wantRounding  bool
	}{
		{
			name:          "whole amounts need no adjustment",
			nets:          []string{"10.00", "20.00", "-15.00"},
			expectedTotal: 15000,
			wantAmounts:   []int64{10000, 20000, -15000},
		},
		{
			name:          "positive residual absorbed by largest line",
			nets:          []string{"10.001", "20.002"},
			expectedTotal: 30004, // rounds to 30003, residual +1
			wantAmounts:   []int64{10001, 20003},
		},
		{
			name:          "negative residual absorbed by largest line",
			nets:          []string{"10.001", "20.002"},
			expectedTotal: 30002, // residual -1
			wantAmounts:   []int64{10001, 20001},
		},
		{
			name:          "largest absolute value absorbs even when negative total",
			nets:          []string{"50.005", "-20.003"},
			expectedTotal: 30000, // actual 30002, residual -2
			wantAmounts:   []int64{50003, -20003},
		},
		{
			name:          "tie broken by first occurrence",
			nets:          []string{"10.000", "10.000"},
			expectedTotal: 20001, // residual +1, both lines equal
			wantAmounts:   []int64{10001, 10000},
		},
		{
			name:          "residual of exactly threshold passes",
			nets:          []string{"100.00"},
			expectedTotal: 100100,
			wantAmounts:   []int64{100100},
		},
		{
			name:          "residual one past threshold fails",
			nets:          []string{"100.00"},
			expectedTotal: 100101,
			wantRounding:  true,
		},
		{
			name:          "large mismatch fails",
			nets:          []string{"100.00"},
			expectedTotal: 95000,
			wantRounding:  true,
		},
		{
			name:          "empty batch with zero total is valid",
			nets:          nil,
			expectedTotal: 0,
			wantAmounts:   []int64{},
		},
		{
			name:          "empty batch with nonzero total fails",
			nets:          nil,
			expectedTotal: 50,
			wantRounding:  true,
		},
		{
			name:          "all outflows",
			nets:          []string{"-10.00", "-20.00"},
			expectedTotal: -30000,
			wantAmounts:   []int64{-10000, -20000},
		},
		{
			name:          "zero-amount lines are retained",
			nets:          []string{"0", "25.00"},
			expectedTotal: 25000,
			wantAmounts:   []int64{0, 25000},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expenses := make([]models.Expense, len(tt.nets))
			for i, net := range tt.nets {
				expenses[i] = makeExpense(int64(i+1), net)
			}

			lines, err := ComputeSplitLines(expenses, testUserID, tt.expectedTotal)

			if tt.wantRounding {
				var rerr *RoundingError
				if !errors.As(err, &rerr) {
					t.Fatalf("expected RoundingError, got %v", err)
				}
				if rerr.Threshold != ResidualThreshold {
					t.Errorf("Threshold = %d, want %d", rerr.Threshold, ResidualThreshold)
				}
				if rerr.Expected != tt.expectedTotal {
					t.Errorf("Expected = %d, want %d", rerr.Expected, tt.expectedTotal)
				}
				return
			}

			if err != nil {
				t.Fatalf("ComputeSplitLines failed: %v", err)
			}
			if got := sumLines(lines); got != tt.expectedTotal {
				t.Errorf("sum of lines = %d, want %d", got, tt.expectedTotal)
			}
			if len(lines) != len(tt.wantAmounts) {
				t.Fatalf("got %d lines, want %d", len(lines), len(tt.wantAmounts))
			}
			for i, want := range tt.wantAmounts {
				if lines[i].Amount != want {
					t.Errorf("line %d amount = %d, want %d", i, lines[i].Amount, want)
				}
			}
		})
	}
}

func TestComputeSplitLinesMemo(t *testing.T) {
	exp := makeExpense(42, "12.00")
	exp.Description = "Groceries"

	lines, err := ComputeSplitLines([]models.Expense{exp}, testUserID, 12000)
	if err != nil {
		t.Fatalf("ComputeSplitLines failed: %v", err)
	}

	want := "Splitwise: Groceries (exp_42)"
	if lines[0].Memo != want {
		t.Errorf("memo = %q, want %q", lines[0].Memo, want)
	}
	if lines[0].ExpenseID != 42 {
		t.Errorf("expense id = %d, want 42", lines[0].ExpenseID)
	}
}

func TestComputeSplitLinesMissingParticipant(t *testing.T) {
	exp := makeExpense(7, "10.00")
	_, err := ComputeSplitLines([]models.Expense{exp}, 456, 10000)

	var perr *models.ParticipantNotFoundError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParticipantNotFoundError, got %v", err)
	}
	if perr.UserID != 456 || perr.ExpenseID != 7 {
		t.Errorf("error = %+v, want user 456 in expense 7", perr)
	}
}
