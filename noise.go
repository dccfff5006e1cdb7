package qerasure

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/theapemachine/errnie"
)

/*
NoiseModel describes the error channels of an emulated processor.

  - SingleQubit: probability of a random X, Y or Z after each one-qubit gate.
  - TwoQubit: probability of a random non-identity two-qubit Pauli after each CNOT.
  - Readout: probability that a measured bit is reported flipped.
*/
type NoiseModel struct {
	SingleQubit float64 `mapstructure:"single_qubit" yaml:"single_qubit"`
	TwoQubit    float64 `mapstructure:"two_qubit" yaml:"two_qubit"`
	Readout     float64 `mapstructure:"readout" yaml:"readout"`
}

// DefaultHardwareNoise lands the Bell reference near C ≈ 0.84.
func DefaultHardwareNoise() NoiseModel {
	return NoiseModel{
		SingleQubit: 0.002,
		TwoQubit:    0.06,
		Readout:     0.025,
	}
}

// Validate keeps every probability inside [0, 1].
func (n NoiseModel) Validate() error {
	for name, p := range map[string]float64{
		"single_qubit": n.SingleQubit,
		"two_qubit":    n.TwoQubit,
		"readout":      n.Readout,
	} {
		if p < 0 || p > 1 {
			return fmt.Errorf("noise %s probability %v outside [0, 1]", name, p)
		}
	}

	return nil
}

/*
NoisySimulator runs one Monte-Carlo trajectory per shot: the circuit is
replayed with Pauli errors inserted at random after gates, the register is
collapsed, and the reported bits pass through a symmetric readout channel.
It stands in for hardware whose gate fidelity limits the observable
correlation.
*/
type NoisySimulator struct {
	id    string
	noise NoiseModel
	rng   *rand.Rand
}

/*
NewNoisySimulator creates a simulator that injects the errors of noise.

Parameters:
  - id: Device identifier reported in results, "local:noisy" when empty
  - seed: Seed shared by the error draws and the shot sampler
  - noise: Error probabilities, expected to pass NoiseModel.Validate

Returns:
  - *NoisySimulator: A trajectory simulator ready to run circuits
*/
func NewNoisySimulator(id string, seed uint64, noise NoiseModel) *NoisySimulator {
	if id == "" {
		id = "local:noisy"
	}

	errnie.Info("NewNoisySimulator - id %s, seed %d, noise %+v", id, seed, noise)

	return &NoisySimulator{
		id:    id,
		noise: noise,
		rng:   rand.New(newSource(seed)),
	}
}

func (n *NoisySimulator) ID() string {
	return n.id
}

func (n *NoisySimulator) Run(ctx context.Context, c *Circuit, shots int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	if shots <= 0 {
		return nil, fmt.Errorf("%s: shots must be positive, got %d", n.id, shots)
	}

	start := time.Now()
	counts := make(Counts)

	for i := 0; i < shots; i++ {
		outcome, err := n.trajectory(c)
		if err != nil {
			return nil, err
		}

		counts[outcome]++
	}

	return &Result{
		DeviceID: n.id,
		Counts:   counts,
		Shots:    shots,
		Duration: time.Since(start),
	}, nil
}

func (n *NoisySimulator) trajectory(c *Circuit) (string, error) {
	sv := NewStateVector(c.Qubits)

	for _, op := range c.Ops {
		if err := sv.Apply(op); err != nil {
			return "", err
		}

		switch op.Gate {
		case GateCNOT:
			if n.rng.Float64() < n.noise.TwoQubit {
				n.twoQubitError(sv, op.Qubits[0], op.Qubits[1])
			}
		default:
			if n.rng.Float64() < n.noise.SingleQubit {
				sv.applyGate(op.Qubits[0], n.randomPauli())
			}
		}
	}

	basis := sv.Measure(n.rng)
	idx := sv.project(basis, c.Measured)

	width := c.Width()
	for k := 0; k < width; k++ {
		if n.rng.Float64() < n.noise.Readout {
			idx ^= 1 << k
		}
	}

	return outcomeString(idx, width), nil
}

func (n *NoisySimulator) randomPauli() gate {
	switch n.rng.IntN(3) {
	case 0:
		return pauliX()
	case 1:
		return pauliY()
	default:
		return pauliZ()
	}
}

// twoQubitError applies one of the 15 non-identity Pauli pairs uniformly.
func (n *NoisySimulator) twoQubitError(sv *StateVector, a, b int) {
	paulis := [4]func() gate{nil, pauliX, pauliY, pauliZ}

	pick := 1 + n.rng.IntN(15)
	pa, pb := pick/4, pick%4

	if pa != 0 {
		sv.applyGate(a, paulis[pa]())
	}

	if pb != 0 {
		sv.applyGate(b, paulis[pb]())
	}
}
