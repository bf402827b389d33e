package reconciler

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsettle/internal/models"
)

func makePayment(amount string) *models.Payment {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		panic(err)
	}
	return &models.Payment{
		ID:         1,
		Date:       time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		Amount:     d,
		FromUserID: 456,
		ToUserID:   testUserID,
	}
}

func TestResolveExpectedTotal(t *testing.T) {
	tests := []struct {
		name         string
		nets         []string
		settlement   *models.Payment
		want         int64
		wantMismatch bool
	}{
		{
			name: "no settlement returns computed total",
			nets: []string{"10.00", "20.00", "-5.50"},
			want: 24500,
		},
		{
			name: "empty batch computes zero",
			nets: nil,
			want: 0,
		},
		{
			name:       "settlement matching computed is authoritative",
			nets:       []string{"10.00", "20.00"},
			settlement: makePayment("30.00"),
			want:       30000,
		},
		{
			name:       "settlement within tolerance wins over computed",
			nets:       []string{"10.00", "20.00"},
			settlement: makePayment("30.05"),
			want:       30050,
		},
		{
			name:       "settlement at exactly the tolerance passes",
			nets:       []string{"10.00"},
			settlement: makePayment("10.10"),
			want:       10100,
		},
		{
			name:         "settlement past the tolerance fails",
			nets:         []string{"10.00"},
			settlement:   makePayment("10.101"),
			wantMismatch: true,
		},
		{
			name:         "settlement wildly off fails",
			nets:         []string{"10.00", "20.00"},
			settlement:   makePayment("45.00"),
			wantMismatch: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expenses := make([]models.Expense, len(tt.nets))
			for i, net := range tt.nets {
				expenses[i] = makeExpense(int64(i+1), net)
			}

			got, err := ResolveExpectedTotal(expenses, tt.settlement, testUserID)

			if tt.wantMismatch {
				var merr *MismatchError
				if !errors.As(err, &merr) {
					t.Fatalf("expected MismatchError, got %v", err)
				}
				if merr.Residual != merr.Settlement-merr.Computed {
					t.Errorf("residual %d != settlement %d - computed %d", merr.Residual, merr.Settlement, merr.Computed)
				}
				return
			}

			if err != nil {
				t.Fatalf("ResolveExpectedTotal failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("total = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestResolveExpectedTotalMissingParticipant(t *testing.T) {
	expenses := []models.Expense{makeExpense(1, "10.00")}
	_, err := ResolveExpectedTotal(expenses, nil, 789)

	var perr *models.ParticipantNotFoundError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParticipantNotFoundError, got %v", err)
	}
}
