package qerasure

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCircuit is returned for malformed circuit descriptions.
var ErrInvalidCircuit = errors.New("invalid circuit")

// GateKind names the gates the experiment needs.
type GateKind string

const (
	GateH    GateKind = "h"
	GateCNOT GateKind = "cnot"
	GateRY   GateKind = "ry"
)

/*
Operation is one gate application. For GateCNOT, Qubits holds the control
followed by the target. Angle is only meaningful for GateRY and is in radians.
*/
type Operation struct {
	Gate   GateKind
	Qubits []int
	Angle  float64
}

/*
Circuit is a device-independent description of a measurement circuit.

The builder methods mutate and return the receiver so circuits can be written
the way the vendor SDKs write them:

	c := NewCircuit("bell", 2).H(0).CNOT(0, 1).Measure(0, 1)

Measured fixes the layout of outcome strings: character k of every outcome is
the reading of qubit Measured[k].
*/
type Circuit struct {
	Name     string
	Qubits   int
	Ops      []Operation
	Measured []int
}

// NewCircuit returns an empty circuit over the given number of qubits.
func NewCircuit(name string, qubits int) *Circuit {
	return &Circuit{
		Name:   name,
		Qubits: qubits,
		Ops:    make([]Operation, 0, 16),
	}
}

// H appends a Hadamard on qubit.
func (c *Circuit) H(qubit int) *Circuit {
	c.Ops = append(c.Ops, Operation{Gate: GateH, Qubits: []int{qubit}})
	return c
}

// CNOT appends a controlled NOT; target flips when control reads 1.
func (c *Circuit) CNOT(control, target int) *Circuit {
	c.Ops = append(c.Ops, Operation{Gate: GateCNOT, Qubits: []int{control, target}})
	return c
}

// RY appends a Y-axis rotation of qubit by theta radians.
func (c *Circuit) RY(qubit int, theta float64) *Circuit {
	c.Ops = append(c.Ops, Operation{Gate: GateRY, Qubits: []int{qubit}, Angle: theta})
	return c
}

// Measure appends computational-basis measurements in the given order.
func (c *Circuit) Measure(qubits ...int) *Circuit {
	c.Measured = append(c.Measured, qubits...)
	return c
}

// Width is the length of every outcome string the circuit produces.
func (c *Circuit) Width() int {
	return len(c.Measured)
}

// Position returns the outcome-string index of a measured qubit, or -1.
func (c *Circuit) Position(qubit int) int {
	for i, q := range c.Measured {
		if q == qubit {
			return i
		}
	}

	return -1
}

// Validate checks qubit ranges, gate arity and measurement layout.
func (c *Circuit) Validate() error {
	if c.Qubits <= 0 {
		return fmt.Errorf("%w: %s has no qubits", ErrInvalidCircuit, c.Name)
	}

	for i, op := range c.Ops {
		want := 1
		if op.Gate == GateCNOT {
			want = 2
		}

		if len(op.Qubits) != want {
			return fmt.Errorf("%w: %s op %d (%s) wants %d qubits, got %d",
				ErrInvalidCircuit, c.Name, i, op.Gate, want, len(op.Qubits))
		}

		for _, q := range op.Qubits {
			if q < 0 || q >= c.Qubits {
				return fmt.Errorf("%w: %s op %d touches qubit %d", ErrInvalidCircuit, c.Name, i, q)
			}
		}

		if op.Gate == GateCNOT && op.Qubits[0] == op.Qubits[1] {
			return fmt.Errorf("%w: %s op %d control equals target", ErrInvalidCircuit, c.Name, i)
		}
	}

	if len(c.Measured) == 0 {
		return fmt.Errorf("%w: %s measures nothing", ErrInvalidCircuit, c.Name)
	}

	seen := make(map[int]bool, len(c.Measured))
	for _, q := range c.Measured {
		if q < 0 || q >= c.Qubits {
			return fmt.Errorf("%w: %s measures qubit %d", ErrInvalidCircuit, c.Name, q)
		}

		if seen[q] {
			return fmt.Errorf("%w: %s measures qubit %d twice", ErrInvalidCircuit, c.Name, q)
		}

		seen[q] = true
	}

	return nil
}

/*
QASM renders the circuit as an OpenQASM 3 program. The classical register
is written in measurement order so the program's bitstrings line up with the
outcome strings this package produces.
*/
func (c *Circuit) QASM() string {
	var b strings.Builder

	b.WriteString("OPENQASM 3.0;\n")
	fmt.Fprintf(&b, "qubit[%d] q;\n", c.Qubits)
	fmt.Fprintf(&b, "bit[%d] b;\n", len(c.Measured))

	for _, op := range c.Ops {
		switch op.Gate {
		case GateH:
			fmt.Fprintf(&b, "h q[%d];\n", op.Qubits[0])
		case GateRY:
			fmt.Fprintf(&b, "ry(%.12g) q[%d];\n", op.Angle, op.Qubits[0])
		case GateCNOT:
			fmt.Fprintf(&b, "cnot q[%d], q[%d];\n", op.Qubits[0], op.Qubits[1])
		}
	}

	for i, q := range c.Measured {
		fmt.Fprintf(&b, "b[%d] = measure q[%d];\n", i, q)
	}

	return b.String()
}
