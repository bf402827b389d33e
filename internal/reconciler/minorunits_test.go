package reconciler

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"0", 0},
		{"1", 1000},
		{"12.34", 12340},
		{"12.5005", 12501}, // half rounds away from zero
		{"12.5004", 12500},
		{"12.4995", 12500},
		{"-12.5005", -12501},
		{"-12.4995", -12500},
		{"0.0005", 1},
		{"-0.0005", -1},
		{"1234.567", 1234567},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.amount)
			if err != nil {
				t.Fatalf("failed to parse %q: %v", tt.amount, err)
			}
			if got := ToMinorUnits(d); got != tt.want {
				t.Errorf("ToMinorUnits(%s) = %d, want %d", tt.amount, got, tt.want)
			}
		})
	}
}
