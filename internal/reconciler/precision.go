package reconciler

import (
	"log/slog"

	"github.com/mmynk/splitsettle/internal/models"
)

// VerifyPrecision flags expenses whose cost carries more than two decimal
// places. The source system normally reports cent precision; anything finer
// is worth a warning before reconciliation, though it is not an error.
// Returns the IDs of the flagged expenses.
func VerifyPrecision(expenses []models.Expense) []int64 {
	var unusual []int64
	for i := range expenses {
		if expenses[i].Cost.Exponent() < -2 {
			slog.Warn("Expense has unusual precision",
				"expense_id", expenses[i].ID,
				"cost", expenses[i].Cost.String(),
			)
			unusual = append(unusual, expenses[i].ID)
		}
	}
	return unusual
}
