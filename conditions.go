package qerasure

import (
	"fmt"
	"math"
)

// Condition identifies one of the three circuits measured at every angle.
type Condition string

const (
	// ConditionStandard is the Bell-pair reference.
	ConditionStandard Condition = "standard"
	// ConditionNoReversal couples the marker and stops.
	ConditionNoReversal Condition = "no_reversal"
	// ConditionWithReversal couples the marker and then undoes the coupling.
	ConditionWithReversal Condition = "with_reversal"
)

// Conditions lists the conditions in submission order.
var Conditions = []Condition{ConditionStandard, ConditionNoReversal, ConditionWithReversal}

// Label is the human-facing name used in reports and plots.
func (c Condition) Label() string {
	switch c {
	case ConditionStandard:
		return "Standard Bell"
	case ConditionNoReversal:
		return "No Reversal"
	case ConditionWithReversal:
		return "With Reversal"
	default:
		return string(c)
	}
}

/*
Roles assigns the three logical participants to physical qubits: the two
halves of the Bell pair and the marker that records which-path information.
*/
type Roles struct {
	First  int `json:"first" yaml:"first" mapstructure:"first"`
	Second int `json:"second" yaml:"second" mapstructure:"second"`
	Marker int `json:"marker" yaml:"marker" mapstructure:"marker"`
}

// DefaultRoles puts the pair on qubits 0 and 1 and the marker on 2.
func DefaultRoles() Roles {
	return Roles{First: 0, Second: 1, Marker: 2}
}

// Validate requires three distinct, non-negative qubits.
func (r Roles) Validate() error {
	if r.First < 0 || r.Second < 0 || r.Marker < 0 {
		return fmt.Errorf("%w: negative qubit in roles %+v", ErrInvalidCircuit, r)
	}

	if r.First == r.Second || r.First == r.Marker || r.Second == r.Marker {
		return fmt.Errorf("%w: roles must be distinct, got %+v", ErrInvalidCircuit, r)
	}

	return nil
}

func (r Roles) register() int {
	return max(r.First, r.Second, r.Marker) + 1
}

// DefaultAngles are the coupling angles in degrees.
func DefaultAngles() []float64 {
	return []float64{0, 30, 60, 90, 120, 150, 180}
}

// Radians converts a coupling angle from degrees.
func Radians(deg float64) float64 {
	return deg * math.Pi / 180
}

func entangle(c *Circuit, r Roles) *Circuit {
	return c.H(r.First).CNOT(r.First, r.Second)
}

/*
controlledRotation couples control to target with strength theta through the
CNOT decomposition RY(θ/2) · CNOT · RY(−θ/2) · CNOT · RY(θ/2) on the target.
*/
func controlledRotation(c *Circuit, control, target int, theta float64) *Circuit {
	return c.
		RY(target, theta/2).
		CNOT(control, target).
		RY(target, -theta/2).
		CNOT(control, target).
		RY(target, theta/2)
}

// NewReferenceCircuit prepares the Bell pair and measures both halves.
func NewReferenceCircuit(r Roles) *Circuit {
	c := NewCircuit(string(ConditionStandard), r.register())
	return entangle(c, r).Measure(r.First, r.Second)
}

// NewForwardCircuit adds the marker coupling at strength theta (radians).
func NewForwardCircuit(r Roles, theta float64) *Circuit {
	c := NewCircuit(string(ConditionNoReversal), r.register())
	entangle(c, r)
	controlledRotation(c, r.First, r.Marker, theta)

	return c.Measure(r.First, r.Second, r.Marker)
}

// NewForwardReverseCircuit applies the coupling at theta and then at -theta.
func NewForwardReverseCircuit(r Roles, theta float64) *Circuit {
	c := NewCircuit(string(ConditionWithReversal), r.register())
	entangle(c, r)
	controlledRotation(c, r.First, r.Marker, theta)
	controlledRotation(c, r.First, r.Marker, -theta)

	return c.Measure(r.First, r.Second, r.Marker)
}

// BuildCircuit returns the circuit for a condition at theta (radians).
func BuildCircuit(cond Condition, r Roles, theta float64) (*Circuit, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	switch cond {
	case ConditionStandard:
		return NewReferenceCircuit(r), nil
	case ConditionNoReversal:
		return NewForwardCircuit(r, theta), nil
	case ConditionWithReversal:
		return NewForwardReverseCircuit(r, theta), nil
	default:
		return nil, fmt.Errorf("%w: unknown condition %q", ErrInvalidCircuit, cond)
	}
}
