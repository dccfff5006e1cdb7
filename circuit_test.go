package qerasure

import (
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCircuit(t *testing.T) {
	Convey("Given a circuit built with the chainable builder", t, func() {
		c := NewCircuit("bell", 2).H(0).CNOT(0, 1).Measure(1, 0)

		So(c.Validate(), ShouldBeNil)
		So(c.Width(), ShouldEqual, 2)
		So(len(c.Ops), ShouldEqual, 2)

		Convey("Position should follow measurement order", func() {
			So(c.Position(1), ShouldEqual, 0)
			So(c.Position(0), ShouldEqual, 1)
			So(c.Position(5), ShouldEqual, -1)
		})

		Convey("QASM should declare registers and measure in order", func() {
			qasm := c.QASM()
			So(qasm, ShouldStartWith, "OPENQASM 3.0;")
			So(qasm, ShouldContainSubstring, "qubit[2] q;")
			So(qasm, ShouldContainSubstring, "h q[0];")
			So(qasm, ShouldContainSubstring, "cnot q[0], q[1];")
			So(qasm, ShouldContainSubstring, "b[0] = measure q[1];")
			So(qasm, ShouldContainSubstring, "b[1] = measure q[0];")
		})
	})

	Convey("Given malformed circuits", t, func() {
		cases := map[string]*Circuit{
			"empty register":   NewCircuit("x", 0).Measure(0),
			"qubit out range":  NewCircuit("x", 2).H(3).Measure(0),
			"control = target": NewCircuit("x", 2).CNOT(1, 1).Measure(0),
			"no measurement":   NewCircuit("x", 2).H(0),
			"double measure":   NewCircuit("x", 2).H(0).Measure(0, 0),
			"bad arity":        {Name: "x", Qubits: 2, Ops: []Operation{{Gate: GateCNOT, Qubits: []int{0}}}, Measured: []int{0}},
		}

		for name, c := range cases {
			Convey("It should reject "+name, func() {
				So(errors.Is(c.Validate(), ErrInvalidCircuit), ShouldBeTrue)
			})
		}
	})
}

func TestConditions(t *testing.T) {
	Convey("Given the default roles", t, func() {
		roles := DefaultRoles()

		Convey("The reference circuit should measure the pair only", func() {
			c, err := BuildCircuit(ConditionStandard, roles, Radians(90))
			So(err, ShouldBeNil)
			So(c.Measured, ShouldResemble, []int{0, 1})
			So(len(c.Ops), ShouldEqual, 2)
		})

		Convey("The forward circuit should add one coupling", func() {
			c, err := BuildCircuit(ConditionNoReversal, roles, Radians(90))
			So(err, ShouldBeNil)
			So(c.Measured, ShouldResemble, []int{0, 1, 2})
			So(len(c.Ops), ShouldEqual, 7)
			So(c.Ops[2].Angle, ShouldAlmostEqual, Radians(45), 1e-12)
			So(c.Ops[4].Angle, ShouldAlmostEqual, -Radians(45), 1e-12)
		})

		Convey("The forward+reverse circuit should undo the coupling", func() {
			c, err := BuildCircuit(ConditionWithReversal, roles, Radians(90))
			So(err, ShouldBeNil)
			So(len(c.Ops), ShouldEqual, 12)
			So(c.Ops[7].Angle, ShouldAlmostEqual, -Radians(45), 1e-12)
			So(c.Validate(), ShouldBeNil)
		})

		Convey("Construction should be deterministic", func() {
			for _, cond := range Conditions {
				a, _ := BuildCircuit(cond, roles, Radians(60))
				b, _ := BuildCircuit(cond, roles, Radians(60))
				So(a, ShouldResemble, b)
			}
		})

		Convey("Unknown conditions should be rejected", func() {
			_, err := BuildCircuit("sideways", roles, 0)
			So(errors.Is(err, ErrInvalidCircuit), ShouldBeTrue)
		})
	})

	Convey("Given custom roles", t, func() {
		roles := Roles{First: 2, Second: 0, Marker: 1}
		c, err := BuildCircuit(ConditionWithReversal, roles, Radians(30))

		So(err, ShouldBeNil)
		So(c.Qubits, ShouldEqual, 3)
		So(c.Measured, ShouldResemble, []int{2, 0, 1})
		So(strings.Count(c.QASM(), "cnot q[2], q[1];"), ShouldEqual, 4)
	})

	Convey("Given overlapping roles", t, func() {
		_, err := BuildCircuit(ConditionStandard, Roles{First: 0, Second: 0, Marker: 1}, 0)
		So(errors.Is(err, ErrInvalidCircuit), ShouldBeTrue)

		_, err = BuildCircuit(ConditionStandard, Roles{First: -1, Second: 0, Marker: 1}, 0)
		So(errors.Is(err, ErrInvalidCircuit), ShouldBeTrue)
	})

	Convey("Given the default angles", t, func() {
		So(DefaultAngles(), ShouldResemble, []float64{0, 30, 60, 90, 120, 150, 180})
		So(Radians(180), ShouldAlmostEqual, 3.141592653589793, 1e-15)
		So(ConditionNoReversal.Label(), ShouldEqual, "No Reversal")
	})
}
