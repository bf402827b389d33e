package reconciler

import "fmt"

// MismatchError reports that an externally supplied settlement total disagrees
// with the total computed from expense shares beyond the tolerance. It
// indicates upstream data inconsistency and is never retried.
type MismatchError struct {
	Settlement int64 // reported settlement total, minor units
	Computed   int64 // total computed from expense nets, minor units
	Residual   int64 // Settlement - Computed
	Threshold  int64
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf(
		"settlement amount mismatch: settlement=%d computed=%d residual=%d threshold=%d (minor units); expenses do not match the settlement",
		e.Settlement, e.Computed, e.Residual, e.Threshold,
	)
}

// RoundingError reports that the residual between the expected total and the
// independently rounded split lines exceeds the safety threshold. A residual
// this large indicates a data problem, not rounding noise, so it is never
// silently absorbed.
type RoundingError struct {
	Expected  int64
	Actual    int64
	Residual  int64 // Expected - Actual
	Threshold int64
}

func (e *RoundingError) Error() string {
	return fmt.Sprintf(
		"rounding residual exceeds safety threshold: expected=%d actual=%d residual=%d threshold=%d (minor units)",
		e.Expected, e.Actual, e.Residual, e.Threshold,
	)
}

// InvariantError reports that the post-adjustment sum does not equal the
// expected total. Unreachable when the adjustment step is correct.
type InvariantError struct {
	Expected int64
	Actual   int64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("internal invariant violated: adjusted split lines sum to %d, want %d", e.Actual, e.Expected)
}
