package qerasure

import (
	"math"
	"math/cmplx"
)

/*
gate is a single-qubit unitary in the computational basis.

	[ g[0][0]  g[0][1] ]   acting on   [ α ]  (|0⟩ amplitude)
	[ g[1][0]  g[1][1] ]               [ β ]  (|1⟩ amplitude)
*/
type gate [2][2]complex128

var invSqrt2 = complex(1/math.Sqrt2, 0)

func hadamard() gate {
	// H = 1/√2 * [1  1]
	//           [1 -1]
	return gate{
		{invSqrt2, invSqrt2},
		{invSqrt2, -invSqrt2},
	}
}

func rotationY(theta float64) gate {
	// RY(θ) = [cos θ/2  -sin θ/2]
	//         [sin θ/2   cos θ/2]
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)

	return gate{
		{c, -s},
		{s, c},
	}
}

func pauliX() gate {
	return gate{{0, 1}, {1, 0}}
}

func pauliY() gate {
	return gate{{0, -1i}, {1i, 0}}
}

func pauliZ() gate {
	return gate{{1, 0}, {0, -1}}
}

// apply maps one (α, β) amplitude pair through the gate.
func (g gate) apply(alpha, beta complex128) (complex128, complex128) {
	return g[0][0]*alpha + g[0][1]*beta, g[1][0]*alpha + g[1][1]*beta
}

// isUnitary reports whether g†g is the identity within tol.
func (g gate) isUnitary(tol float64) bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			var sum complex128
			for k := 0; k < 2; k++ {
				sum += cmplx.Conj(g[k][i]) * g[k][j]
			}

			want := complex(0, 0)
			if i == j {
				want = 1
			}

			if cmplx.Abs(sum-want) > tol {
				return false
			}
		}
	}

	return true
}
