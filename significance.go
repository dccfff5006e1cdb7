package qerasure

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	// EquivalenceThreshold is the σ below which two estimates are treated
	// as statistically indistinguishable.
	EquivalenceThreshold = 2.0

	// RestorationThreshold is the σ above which a failed restoration is
	// reported as confirmed.
	RestorationThreshold = 5.0
)

/*
Significance is the outcome of comparing two correlation estimates.

Defined is false when both errors are zero: the ratio has no meaning and Sigma
and PValue are left at zero instead of being divided into.
*/
type Significance struct {
	Gap         float64 `json:"gap" yaml:"gap"`
	CombinedErr float64 `json:"combined_err" yaml:"combined_err"`
	Sigma       float64 `json:"sigma" yaml:"sigma"`
	PValue      float64 `json:"p_value" yaml:"p_value"`
	Defined     bool    `json:"defined" yaml:"defined"`
}

/*
GapTest compares two estimates with a normal approximation:

	gap      = |v1 − v2|
	combined = √(e1² + e2²)
	σ        = gap / combined
	p        = 2 · (1 − Φ(|σ|))

The upper tail is taken from the survival function so p keeps its precision
far out in the tail instead of rounding to zero.
*/
func GapTest(a, b Estimate) Significance {
	gap := math.Abs(a.Value - b.Value)
	combined := math.Sqrt(a.Err*a.Err + b.Err*b.Err)

	s := Significance{
		Gap:         gap,
		CombinedErr: combined,
	}

	if combined == 0 {
		return s
	}

	s.Sigma = gap / combined
	s.PValue = 2 * distuv.UnitNormal.Survival(math.Abs(s.Sigma))
	s.Defined = true

	return s
}

// Verdict classifies a gap test against EquivalenceThreshold.
type Verdict int

const (
	// Undefined means the gap test had no error to scale by.
	Undefined Verdict = iota
	// Indistinguishable means σ < EquivalenceThreshold.
	Indistinguishable
	// Distinguishable means σ ≥ EquivalenceThreshold.
	Distinguishable
)

func (v Verdict) String() string {
	switch v {
	case Indistinguishable:
		return "statistically indistinguishable"
	case Distinguishable:
		return "distinguishable"
	default:
		return "undefined"
	}
}

// MarshalText lets reports carry the verdict by name.
func (v Verdict) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// Classify applies the fixed equivalence policy.
func Classify(s Significance) Verdict {
	if !s.Defined {
		return Undefined
	}

	if s.Sigma < EquivalenceThreshold {
		return Indistinguishable
	}

	return Distinguishable
}
