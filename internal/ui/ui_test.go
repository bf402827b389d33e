package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
)

func TestFormatMinorUnits(t *testing.T) {
	tests := []struct {
		amount int64
		want   string
	}{
		{0, "0.000"},
		{12345, "12.345"},
		{-12345, "-12.345"},
		{50003, "50.003"},
		{-7, "-0.007"},
		{1000, "1.000"},
	}

	for _, tt := range tests {
		if got := FormatMinorUnits(tt.amount); got != tt.want {
			t.Errorf("FormatMinorUnits(%d) = %q, want %q", tt.amount, got, tt.want)
		}
	}
}

func TestPrintDraft(t *testing.T) {
	draft := &models.Draft{
		DraftID:        "abcdef0123456789",
		SettlementDate: time.Date(2024, 1, 20, 0, 0, 0, 0, time.UTC),
		PayeeName:      "Venmo",
		TotalAmount:    30000,
		Lines: []models.SplitLine{
			{ExpenseID: 1, Amount: 50003, Memo: "Splitwise: Groceries (exp_1)", CategoryName: "Food"},
			{ExpenseID: 2, Amount: -20003, Memo: "Splitwise: Refund (exp_2)", NeedsReview: true},
		},
	}

	var buf strings.Builder
	PrintDraft(&buf, draft)
	out := buf.String()

	for _, want := range []string{"abcdef01", "2024-01-20", "Venmo", "30.000", "50.003", "-20.003", "Food", "(uncategorized)", "!"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintDraft output missing %q:\n%s", want, out)
		}
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes", "y\n", true},
		{"yes word", "yes\n", true},
		{"no", "n\n", false},
		{"empty defaults to no", "\n", false},
		{"no input", "", false},
		{"garbage", "maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out strings.Builder
			got := Confirm(strings.NewReader(tt.input), &out, "Apply?")
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
