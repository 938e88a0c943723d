package domain

import (
	"math"

	dErrors "coffer/pkg/domain-errors"
)

// Amounts are int64 in the smallest currency unit. Legitimate lifetime totals
// fit comfortably; anything that would not must fail loudly instead of
// wrapping.

// CheckedAdd returns a+b, or CodeOverflow when the sum does not fit in int64.
func CheckedAdd(a, b int64) (int64, error) {
	if b > 0 && a > math.MaxInt64-b {
		return 0, dErrors.New(dErrors.CodeOverflow, "amount addition overflows")
	}
	if b < 0 && a < math.MinInt64-b {
		return 0, dErrors.New(dErrors.CodeOverflow, "amount addition overflows")
	}
	return a + b, nil
}

// CheckedSub returns a-b, or CodeOverflow when the difference does not fit.
func CheckedSub(a, b int64) (int64, error) {
	if b < 0 && a > math.MaxInt64+b {
		return 0, dErrors.New(dErrors.CodeOverflow, "amount subtraction overflows")
	}
	if b > 0 && a < math.MinInt64+b {
		return 0, dErrors.New(dErrors.CodeOverflow, "amount subtraction overflows")
	}
	return a - b, nil
}
