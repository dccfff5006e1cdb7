package qerasure

import (
	"fmt"
	"math/cmplx"
	"math/rand/v2"
	"strings"
)

/*
StateVector holds the 2^n complex amplitudes of an n-qubit register.

Qubit 0 is the most significant bit of the basis index, so the basis state
|q0 q1 ... qn-1⟩ reads left to right the same way outcome strings do.
*/
type StateVector struct {
	Qubits     int
	Amplitudes []complex128
}

// NewStateVector prepares |0...0⟩.
func NewStateVector(qubits int) *StateVector {
	amps := make([]complex128, 1<<qubits)
	amps[0] = 1

	return &StateVector{
		Qubits:     qubits,
		Amplitudes: amps,
	}
}

func (sv *StateVector) mask(qubit int) int {
	return 1 << (sv.Qubits - 1 - qubit)
}

// applyGate runs a single-qubit gate over every amplitude pair that differs
// only in the target bit.
func (sv *StateVector) applyGate(qubit int, g gate) {
	m := sv.mask(qubit)

	for i := range sv.Amplitudes {
		if i&m != 0 {
			continue
		}

		j := i | m
		sv.Amplitudes[i], sv.Amplitudes[j] = g.apply(sv.Amplitudes[i], sv.Amplitudes[j])
	}
}

func (sv *StateVector) applyCNOT(control, target int) {
	cm, tm := sv.mask(control), sv.mask(target)

	for i := range sv.Amplitudes {
		if i&cm == 0 || i&tm != 0 {
			continue
		}

		j := i | tm
		sv.Amplitudes[i], sv.Amplitudes[j] = sv.Amplitudes[j], sv.Amplitudes[i]
	}
}

// Apply executes one circuit operation on the register.
func (sv *StateVector) Apply(op Operation) error {
	for _, q := range op.Qubits {
		if q < 0 || q >= sv.Qubits {
			return fmt.Errorf("%w: qubit %d outside %d-qubit register", ErrInvalidCircuit, q, sv.Qubits)
		}
	}

	switch op.Gate {
	case GateH:
		sv.applyGate(op.Qubits[0], hadamard())
	case GateRY:
		sv.applyGate(op.Qubits[0], rotationY(op.Angle))
	case GateCNOT:
		sv.applyCNOT(op.Qubits[0], op.Qubits[1])
	default:
		return fmt.Errorf("%w: unknown gate %q", ErrInvalidCircuit, op.Gate)
	}

	return nil
}

// Probabilities returns |amplitude|² for every basis state.
func (sv *StateVector) Probabilities() []float64 {
	probs := make([]float64, len(sv.Amplitudes))
	for i, amplitude := range sv.Amplitudes {
		prob := cmplx.Abs(amplitude)
		probs[i] = prob * prob
	}

	return probs
}

// probabilityFloor drops rounding residue left by gate products that cancel.
const probabilityFloor = 1e-12

/*
Marginal folds the full distribution onto the measured qubits. The result is
indexed by the outcome value whose bit k (counting from the most significant)
is the reading of measured[k]. Basis states below probabilityFloor are
treated as unreachable.
*/
func (sv *StateVector) Marginal(measured []int) []float64 {
	out := make([]float64, 1<<len(measured))

	for i, p := range sv.Probabilities() {
		if p < probabilityFloor {
			continue
		}

		out[sv.project(i, measured)] += p
	}

	return out
}

func (sv *StateVector) project(basis int, measured []int) int {
	idx := 0
	for _, q := range measured {
		idx <<= 1
		if basis&sv.mask(q) != 0 {
			idx |= 1
		}
	}

	return idx
}

/*
Measure samples one basis state and collapses the register onto it, returning
the sampled basis index.
*/
func (sv *StateVector) Measure(rng *rand.Rand) int {
	probs := sv.Probabilities()

	// Normalize against drift from floating-point gate products.
	total := 0.0
	for _, p := range probs {
		total += p
	}

	r := rng.Float64() * total

	cumulativeProb := 0.0
	measuredState := len(probs) - 1
	for i, prob := range probs {
		cumulativeProb += prob
		if r < cumulativeProb {
			measuredState = i
			break
		}
	}

	collapsed := make([]complex128, len(sv.Amplitudes))
	collapsed[measuredState] = 1
	sv.Amplitudes = collapsed

	return measuredState
}

// Clone returns an independent copy of the register.
func (sv *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(sv.Amplitudes))
	copy(amps, sv.Amplitudes)

	return &StateVector{Qubits: sv.Qubits, Amplitudes: amps}
}

// outcomeString renders an outcome index of the given width as a bitstring.
func outcomeString(idx, width int) string {
	var b strings.Builder
	b.Grow(width)

	for k := width - 1; k >= 0; k-- {
		if idx&(1<<k) != 0 {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}

	return b.String()
}
