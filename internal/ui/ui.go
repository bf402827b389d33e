// Package ui provides minimal terminal output and prompts for reviewing a
// draft before it is applied.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/mmynk/splitsettle/internal/models"
)

// FormatMinorUnits renders a minor-unit amount as a major-unit string
// ("-12.345" for -12345).
func FormatMinorUnits(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s%d.%03d", sign, amount/1000, amount%1000)
}

// PrintDraft writes a human-readable summary of the draft to w.
func PrintDraft(w io.Writer, draft *models.Draft) {
	fmt.Fprintf(w, "Draft %s\n", draft.DraftID[:8])
	fmt.Fprintf(w, "  Date:  %s\n", draft.SettlementDate.Format("2006-01-02"))
	fmt.Fprintf(w, "  Payee: %s\n", draft.PayeeName)
	fmt.Fprintf(w, "  Total: %s\n", FormatMinorUnits(draft.TotalAmount))
	fmt.Fprintf(w, "  Lines (%d):\n", len(draft.Lines))
	for i := range draft.Lines {
		line := &draft.Lines[i]
		category := line.CategoryName
		if category == "" {
			category = "(uncategorized)"
		}
		marker := " "
		if line.NeedsReview {
			marker = "!"
		}
		fmt.Fprintf(w, "  %s %10s  %-40s %s\n", marker, FormatMinorUnits(line.Amount), line.Memo, category)
	}
}

// Confirm asks a yes/no question on w and reads the answer from r.
// Defaults to no.
func Confirm(r io.Reader, w io.Writer, prompt string) bool {
	fmt.Fprintf(w, "%s [y/N] ", prompt)

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}
