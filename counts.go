package qerasure

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrShotMismatch means the counts do not add up to the declared shots.
	ErrShotMismatch = errors.New("counts total does not match shot count")
	// ErrNoShots means there is nothing to estimate from.
	ErrNoShots = errors.New("counts are empty")
	// ErrPosition means a designated bit position is not inside the outcomes.
	ErrPosition = errors.New("bit position outside outcome")
	// ErrNegativeCount means an outcome was tallied below zero.
	ErrNegativeCount = errors.New("negative outcome count")
)

// Counts maps a fixed-width binary outcome string to how often it was seen.
type Counts map[string]int

// Total is the number of trials the histogram covers.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}

	return total
}

// Outcomes returns the outcome strings in lexical order.
func (c Counts) Outcomes() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}

// Clone copies the histogram.
func (c Counts) Clone() Counts {
	out := make(Counts, len(c))
	for k, v := range c {
		out[k] = v
	}

	return out
}

/*
Validate checks that every outcome is a binary string of the given width with
a non-negative count, and that the counts total shots. A width of zero skips
the width check.
*/
func (c Counts) Validate(width, shots int) error {
	for outcome, n := range c {
		if width > 0 && len(outcome) != width {
			return fmt.Errorf("%w: outcome %q is not %d bits wide", ErrPosition, outcome, width)
		}

		if err := checkBinary(outcome); err != nil {
			return err
		}

		if n < 0 {
			return fmt.Errorf("%w: %d for outcome %q", ErrNegativeCount, n, outcome)
		}
	}

	if total := c.Total(); total != shots {
		return fmt.Errorf("%w: got %d, want %d", ErrShotMismatch, total, shots)
	}

	return nil
}

func checkBinary(outcome string) error {
	for i := 0; i < len(outcome); i++ {
		if outcome[i] != '0' && outcome[i] != '1' {
			return fmt.Errorf("%w: outcome %q is not binary", ErrPosition, outcome)
		}
	}

	return nil
}
