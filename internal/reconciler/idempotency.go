package reconciler

import (
	"cmp"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/mmynk/splitsettle/internal/models"
)

// keyDelimiter separates the fields hashed into idempotency keys.
const keyDelimiter = "|"

// DeterministicDraftID derives a stable draft identifier from the expense IDs
// and settlement date of a batch. The IDs are sorted first, so the result is
// independent of input order; any differing ID or date changes the output.
// Used as the external system's deduplication token.
func DeterministicDraftID(expenseIDs []int64, settlementDate time.Time) string {
	ids := slices.Clone(expenseIDs)
	slices.Sort(ids)

	parts := make([]string, 0, len(ids)+1)
	parts = append(parts, settlementDate.Format("2006-01-02"))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, keyDelimiter)))
	return hex.EncodeToString(sum[:])
}

// DraftHash derives a content hash from a draft's split lines for local
// duplicate detection. Lines are sorted by expense ID, so the hash is
// order-independent; it is sensitive to the computed amounts, so the same
// expenses settling with corrected amounts hash differently and are not
// mistaken for an already-processed settlement.
func DraftHash(lines []models.SplitLine) string {
	sorted := slices.Clone(lines)
	slices.SortFunc(sorted, func(a, b models.SplitLine) int {
		return cmp.Compare(a.ExpenseID, b.ExpenseID)
	})

	parts := make([]string, 0, len(sorted))
	for i := range sorted {
		parts = append(parts, fmt.Sprintf("%d:%d", sorted[i].ExpenseID, sorted[i].Amount))
	}

	sum := sha256.Sum256([]byte(strings.Join(parts, keyDelimiter)))
	return hex.EncodeToString(sum[:])
}
