// Package ledger holds the pure expense math: splitting a shared amount
// across participants and reducing a group's expense history to net
// balances. Everything operates on integer minor currency units (cents)
// over explicit inputs; there is no storage dependency.
package ledger

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidInput marks structurally bad input (no participants,
	// negative values) caught before any split arithmetic runs.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidSplit marks splits whose parts do not reconcile with the
	// total (percentages off 100, custom amounts not summing up).
	ErrInvalidSplit = errors.New("invalid split")
)

// PercentageTolerance is how far the percentage sum may drift from 100
// before the split is rejected.
const PercentageTolerance = 0.01

// EqualSplit divides total evenly among count participants. The caller
// assigns share+remainder to the participant at index 0 and share to all
// others, so the distributed amounts always sum back to total.
func EqualSplit(total int64, count int) (share, remainder int64, err error) {
	if count <= 0 {
		return 0, 0, fmt.Errorf("%w: participant count must be positive, got %d", ErrInvalidInput, count)
	}
	share = total / int64(count)
	remainder = total - share*int64(count)
	return share, remainder, nil
}

// PercentageSplit computes each participant's floored share of total.
// Percentages must sum to 100 within PercentageTolerance; the flooring
// remainder is folded into the first share so the result conserves total.
func PercentageSplit(total int64, percentages []float64) ([]int64, error) {
	if len(percentages) == 0 {
		return nil, fmt.Errorf("%w: no percentages given", ErrInvalidInput)
	}

	var sum float64
	for _, p := range percentages {
		if p < 0 {
			return nil, fmt.Errorf("%w: negative percentage %.2f", ErrInvalidInput, p)
		}
		sum += p
	}
	if math.Abs(sum-100) > PercentageTolerance {
		return nil, fmt.Errorf("%w: percentages must add up to 100, got %.2f", ErrInvalidSplit, sum)
	}

	shares := make([]int64, len(percentages))
	var allocated int64
	for i, p := range percentages {
		shares[i] = int64(math.Floor(float64(total) * p / 100))
		allocated += shares[i]
	}

	// Flooring leaves 0 <= remainder < len(shares); first participant absorbs it.
	if remainder := total - allocated; remainder > 0 {
		shares[0] += remainder
	}

	return shares, nil
}

// CustomSplit validates caller-supplied explicit amounts against the total
// and returns them unchanged.
func CustomSplit(total int64, amounts []int64) ([]int64, error) {
	if len(amounts) == 0 {
		return nil, fmt.Errorf("%w: no amounts given", ErrInvalidInput)
	}

	var sum int64
	for _, a := range amounts {
		if a < 0 {
			return nil, fmt.Errorf("%w: negative share amount %d", ErrInvalidInput, a)
		}
		sum += a
	}
	if sum != total {
		return nil, fmt.Errorf("%w: custom amounts sum to %d, expense total is %d", ErrInvalidSplit, sum, total)
	}

	return amounts, nil
}

// FullSplit assigns the entire total to the first participant and zero to
// all others. Used when one person covers the whole expense.
func FullSplit(total int64, count int) ([]int64, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: participant count must be positive, got %d", ErrInvalidInput, count)
	}
	shares := make([]int64, count)
	shares[0] = total
	return shares, nil
}

// ShareSpec carries the per-participant split parameters taken from the
// request: an explicit amount for custom splits, a percentage for
// percentage splits. Order matters; the first entry absorbs remainders.
type ShareSpec struct {
	Amount     int64
	Percentage float64
}

// ComputeShares dispatches to the split policy named by method and returns
// one share per entry, in order. Every policy conserves total exactly.
func ComputeShares(method string, total int64, specs []ShareSpec) ([]int64, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no participants given", ErrInvalidInput)
	}

	switch method {
	case "equal":
		share, remainder, err := EqualSplit(total, len(specs))
		if err != nil {
			return nil, err
		}
		shares := make([]int64, len(specs))
		for i := range shares {
			shares[i] = share
		}
		shares[0] += remainder
		return shares, nil

	case "percentage":
		percentages := make([]float64, len(specs))
		for i, s := range specs {
			percentages[i] = s.Percentage
		}
		return PercentageSplit(total, percentages)

	case "custom":
		amounts := make([]int64, len(specs))
		for i, s := range specs {
			amounts[i] = s.Amount
		}
		return CustomSplit(total, amounts)

	case "full":
		return FullSplit(total, len(specs))

	default:
		return nil, fmt.Errorf("%w: unknown split method %q", ErrInvalidInput, method)
	}
}
