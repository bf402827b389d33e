package reconciler

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitsettle/internal/models"
)

// ResolveExpectedTotal determines the authoritative total, in minor units,
// that a settlement's split lines must sum to.
//
// The total computed from expense nets is always calculated. When an explicit
// settlement payment is supplied it is the source of truth: its amount is
// returned after verifying it agrees with the computed total within
// ResidualThreshold. A larger disagreement means the expense set does not
// correspond to the settlement and must not be silently repaired, so a
// MismatchError is returned instead.
func ResolveExpectedTotal(expenses []models.Expense, settlement *models.Payment, userID int64) (int64, error) {
	computed := decimal.Zero
	for i := range expenses {
		net, err := expenses[i].NetFor(userID)
		if err != nil {
			return 0, err
		}
		computed = computed.Add(net)
	}
	computedMinor := ToMinorUnits(computed)

	if settlement == nil {
		return computedMinor, nil
	}

	settlementMinor := ToMinorUnits(settlement.Amount)
	residual := settlementMinor - computedMinor
	if abs64(residual) > ResidualThreshold {
		return 0, &MismatchError{
			Settlement: settlementMinor,
			Computed:   computedMinor,
			Residual:   residual,
			Threshold:  ResidualThreshold,
		}
	}
	return settlementMinor, nil
}
