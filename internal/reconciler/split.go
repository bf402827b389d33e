package reconciler

import (
	"fmt"
	"log/slog"

	"github.com/mmynk/splitsettle/internal/models"
)

// memoPrefix tags split line memos with their source system.
const memoPrefix = "Splitwise"

// ComputeSplitLines converts each expense's net balance for the given
// participant into a split line and makes the lines sum exactly to
// expectedTotal, in minor units.
//
// Each line is rounded independently, so the rounded sum can drift from the
// expected total by a few minor units. A residual within ResidualThreshold is
// added to the line with the largest absolute amount (ties broken by input
// order), which minimizes the relative distortion of any single line and keeps
// the result deterministic. A residual beyond the threshold returns a
// RoundingError; it is never dropped or capped.
func ComputeSplitLines(expenses []models.Expense, userID int64, expectedTotal int64) ([]models.SplitLine, error) {
	lines := make([]models.SplitLine, 0, len(expenses))
	for i := range expenses {
		net, err := expenses[i].NetFor(userID)
		if err != nil {
			return nil, err
		}
		lines = append(lines, models.SplitLine{
			ExpenseID: expenses[i].ID,
			Amount:    ToMinorUnits(net),
			Memo:      fmt.Sprintf("%s: %s (exp_%d)", memoPrefix, expenses[i].Description, expenses[i].ID),
		})
	}

	var actual int64
	for i := range lines {
		actual += lines[i].Amount
	}
	residual := expectedTotal - actual

	if abs64(residual) > ResidualThreshold {
		return nil, &RoundingError{
			Expected:  expectedTotal,
			Actual:    actual,
			Residual:  residual,
			Threshold: ResidualThreshold,
		}
	}

	if residual != 0 {
		// No line can absorb the residual in an empty batch; a nonzero
		// expected total with no expenses is a data error.
		if len(lines) == 0 {
			return nil, &RoundingError{
				Expected:  expectedTotal,
				Actual:    0,
				Residual:  residual,
				Threshold: ResidualThreshold,
			}
		}
		target := 0
		for i := range lines {
			if abs64(lines[i].Amount) > abs64(lines[target].Amount) {
				target = i
			}
		}
		lines[target].Amount += residual
		slog.Info("Applied rounding adjustment",
			"residual", residual,
			"expense_id", lines[target].ExpenseID,
		)
	}

	var final int64
	for i := range lines {
		final += lines[i].Amount
	}
	if final != expectedTotal {
		return nil, &InvariantError{Expected: expectedTotal, Actual: final}
	}

	return lines, nil
}
