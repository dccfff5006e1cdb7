package qerasure

import (
	"fmt"
	"math"
)

/*
Estimate is a correlation coefficient with its standard error.
Value lies in [-1, 1] and Err is non-negative.
*/
type Estimate struct {
	Value float64 `json:"C" yaml:"c"`
	Err   float64 `json:"C_err" yaml:"c_err"`
}

/*
Correlate computes C = (N_same − N_different) / N_total between two bit
positions of the outcome strings.

	C = +1  perfect correlation (00 or 11)
	C =  0  no correlation
	C = −1  perfect anti-correlation (01 or 10)

The counts must total shots exactly; anything else is a caller error. The
standard error is the binomial-style 1/√N_total, independent of how the shots
split between same and different.
*/
func Correlate(counts Counts, first, second, shots int) (Estimate, error) {
	if first < 0 || second < 0 {
		return Estimate{}, fmt.Errorf("%w: positions %d, %d", ErrPosition, first, second)
	}

	same, different := 0, 0

	for outcome, n := range counts {
		if first >= len(outcome) || second >= len(outcome) {
			return Estimate{}, fmt.Errorf(
				"%w: positions %d, %d in %q", ErrPosition, first, second, outcome,
			)
		}

		if err := checkBinary(outcome); err != nil {
			return Estimate{}, err
		}

		if n < 0 {
			return Estimate{}, fmt.Errorf("%w: negative count %d for outcome %q", ErrNegativeCount, n, outcome)
		}

		if outcome[first] == outcome[second] {
			same += n
		} else {
			different += n
		}
	}

	total := same + different
	if total == 0 {
		return Estimate{}, ErrNoShots
	}

	if total != shots {
		return Estimate{}, fmt.Errorf("%w: got %d, want %d", ErrShotMismatch, total, shots)
	}

	return Estimate{
		Value: float64(same-different) / float64(total),
		Err:   1 / math.Sqrt(float64(total)),
	}, nil
}

/*
MarkerZeroProbability is the fraction of trials in which the marker position
reads 0. It is how erasure of the which-path information is verified: a
perfectly erased marker gives 1. Empty counts give 0 rather than dividing by
zero.
*/
func MarkerZeroProbability(counts Counts, marker int) (float64, error) {
	if marker < 0 {
		return 0, fmt.Errorf("%w: marker position %d", ErrPosition, marker)
	}

	zero, total := 0, 0

	for outcome, n := range counts {
		if marker >= len(outcome) {
			return 0, fmt.Errorf("%w: marker position %d in %q", ErrPosition, marker, outcome)
		}

		if err := checkBinary(outcome); err != nil {
			return 0, err
		}

		if n < 0 {
			return 0, fmt.Errorf("%w: negative count %d for outcome %q", ErrNegativeCount, n, outcome)
		}

		total += n
		if outcome[marker] == '0' {
			zero += n
		}
	}

	if total == 0 {
		return 0, nil
	}

	return float64(zero) / float64(total), nil
}
