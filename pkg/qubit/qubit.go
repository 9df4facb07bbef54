// Package qubit models preparation, interception, and measurement of single
// qubits for BB84.
//
// States are 2-dimensional complex vectors manipulated with the Pauli-X and
// Hadamard gates, and measured by Born-rule sampling. Only four preparations
// exist — |0⟩, |1⟩, |+⟩, |−⟩ — so measurement in the preparation basis is
// exact and noiseless, and measurement in the conjugate basis collapses to a
// uniform bit.
package qubit

import (
	"math"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/mat"

	"github.com/qkdlab/bb84-go/internal/constants"
	qerrors "github.com/qkdlab/bb84-go/internal/errors"
	"github.com/qkdlab/bb84-go/pkg/qrand"
)

// Bit is a classical bit in {0,1}.
type Bit uint8

// Basis selects a measurement or preparation basis.
type Basis uint8

// The two BB84 bases.
const (
	Rectilinear Basis = constants.BasisRectilinear
	Diagonal    Basis = constants.BasisDiagonal
)

// String returns the human-readable basis label.
func (b Basis) String() string {
	if b == Diagonal {
		return "× (45°)"
	}
	return "+ (0°)"
}

// probEps absorbs floating-point drift in gate products. Ideal BB84 states
// only ever measure with probability 0, 1/2, or 1, so anything within
// probEps of an endpoint is that endpoint.
const probEps = 1e-9

var (
	pauliX = mat.NewCDense(2, 2, []complex128{
		0, 1,
		1, 0,
	})
	hadamard = mat.NewCDense(2, 2, []complex128{
		complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0),
		complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0),
	})
)

// State is a single-qubit pure state α|0⟩ + β|1⟩. The zero State is invalid;
// obtain states from Prepare or InterceptResend.
type State struct {
	vec *mat.CDense // 2x1 column vector
}

// Prepare encodes a classical bit in the given basis:
//
//	(0, Rectilinear) → |0⟩    (1, Rectilinear) → |1⟩
//	(0, Diagonal)    → |+⟩    (1, Diagonal)    → |−⟩
func Prepare(bit Bit, basis Basis) State {
	v := mat.NewCDense(2, 1, []complex128{1, 0})
	if bit == 1 {
		v = apply(pauliX, v)
	}
	if basis == Diagonal {
		v = apply(hadamard, v)
	}
	return State{vec: v}
}

// Measure collapses state in the given basis and returns the observed bit.
//
// A state measured in its preparation basis yields the encoded bit with
// certainty; measured in the conjugate basis it yields a uniform bit. Every
// call consumes exactly one draw from src, deterministic outcome or not, so
// the draw sequence of a run depends only on run parameters and seed.
func Measure(state State, basis Basis, src *qrand.Source) (Bit, error) {
	if state.vec == nil {
		return 0, qerrors.NewSimulationError("qubit.Measure", qerrors.ErrInvalidState)
	}
	v := state.vec
	if basis == Diagonal {
		// Rotate the diagonal basis onto the computational one.
		v = apply(hadamard, v)
	}

	a0 := v.At(0, 0)
	a1 := v.At(1, 0)
	p0 := real(a0)*real(a0) + imag(a0)*imag(a0)
	p1 := real(a1)*real(a1) + imag(a1)*imag(a1)
	if math.Abs(p0+p1-1) > probEps {
		return 0, qerrors.NewSimulationError("qubit.Measure", qerrors.ErrInvalidState)
	}

	switch {
	case p0 > 1-probEps:
		p0 = 1
	case p0 < probEps:
		p0 = 0
	}

	// Born rule: src.Float64 is uniform on [0,1), so u < p0 occurs with
	// probability p0 and p0 = 1 is deterministic.
	if src.Float64() < p0 {
		return 0, nil
	}
	return 1, nil
}

// InterceptResend gives an eavesdropper the chance to measure state in
// eveBasis. With probability prob the state is measured and replaced by a
// fresh preparation of the observed bit in eveBasis; the bit is returned.
// Otherwise the state passes through untouched and the bit is nil.
//
// The interception coin always consumes one draw from src.
func InterceptResend(state State, eveBasis Basis, prob float64, src *qrand.Source) (State, *Bit, error) {
	if src.Float64() >= prob {
		return state, nil, nil
	}
	b, err := Measure(state, eveBasis, src)
	if err != nil {
		return State{}, nil, err
	}
	return Prepare(b, eveBasis), &b, nil
}

func apply(g, v *mat.CDense) *mat.CDense {
	gr, _ := g.Dims()
	_, vc := v.Dims()
	out := mat.NewCDense(gr, vc, nil)
	cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, g.RawCMatrix(), v.RawCMatrix(), 0, out.RawCMatrix())
	return out
}
