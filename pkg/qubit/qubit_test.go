package qubit_test

import (
	"math"
	"testing"

	"github.com/qkdlab/bb84-go/internal/errors"
	"github.com/qkdlab/bb84-go/pkg/qrand"
	"github.com/qkdlab/bb84-go/pkg/qubit"
)

func TestMeasureMatchingBasisIsDeterministic(t *testing.T) {
	cases := []struct {
		name  string
		bit   qubit.Bit
		basis qubit.Basis
	}{
		{"zero-rectilinear", 0, qubit.Rectilinear},
		{"one-rectilinear", 1, qubit.Rectilinear},
		{"zero-diagonal", 0, qubit.Diagonal},
		{"one-diagonal", 1, qubit.Diagonal},
	}

	src := qrand.NewSource(11)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 200; i++ {
				got, err := qubit.Measure(qubit.Prepare(tc.bit, tc.basis), tc.basis, src)
				if err != nil {
					t.Fatalf("Measure failed: %v", err)
				}
				if got != tc.bit {
					t.Fatalf("measurement %d: got %d, want %d", i, got, tc.bit)
				}
			}
		})
	}
}

func TestMeasureConjugateBasisIsUniform(t *testing.T) {
	cases := []struct {
		name    string
		bit     qubit.Bit
		prep    qubit.Basis
		measure qubit.Basis
	}{
		{"z-state-in-x", 1, qubit.Rectilinear, qubit.Diagonal},
		{"x-state-in-z", 0, qubit.Diagonal, qubit.Rectilinear},
	}

	const trials = 4000
	src := qrand.NewSource(23)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ones := 0
			for i := 0; i < trials; i++ {
				got, err := qubit.Measure(qubit.Prepare(tc.bit, tc.prep), tc.measure, src)
				if err != nil {
					t.Fatalf("Measure failed: %v", err)
				}
				ones += int(got)
			}
			// Binomial(4000, 0.5) stays within 5 sigma of the mean.
			frac := float64(ones) / trials
			if math.Abs(frac-0.5) > 5*0.5/math.Sqrt(trials) {
				t.Errorf("conjugate-basis ones fraction = %v, want ~0.5", frac)
			}
		})
	}
}

func TestMeasureZeroStateFails(t *testing.T) {
	src := qrand.NewSource(0)
	if _, err := qubit.Measure(qubit.State{}, qubit.Rectilinear, src); !errors.Is(err, errors.ErrInvalidState) {
		t.Errorf("Measure(zero State) error = %v, want ErrInvalidState", err)
	}
}

func TestInterceptResendNever(t *testing.T) {
	src := qrand.NewSource(5)
	for i := 0; i < 100; i++ {
		state := qubit.Prepare(1, qubit.Diagonal)
		out, bit, err := qubit.InterceptResend(state, qubit.Rectilinear, 0, src)
		if err != nil {
			t.Fatalf("InterceptResend failed: %v", err)
		}
		if bit != nil {
			t.Fatal("interception with probability 0 recorded a bit")
		}
		// Pass-through must preserve the state: Bob still reads it exactly.
		got, err := qubit.Measure(out, qubit.Diagonal, src)
		if err != nil {
			t.Fatalf("Measure failed: %v", err)
		}
		if got != 1 {
			t.Fatal("pass-through state changed its measurement statistics")
		}
	}
}

func TestInterceptResendAlways(t *testing.T) {
	src := qrand.NewSource(6)
	intercepted := 0
	for i := 0; i < 100; i++ {
		state := qubit.Prepare(0, qubit.Rectilinear)
		out, bit, err := qubit.InterceptResend(state, qubit.Rectilinear, 1, src)
		if err != nil {
			t.Fatalf("InterceptResend failed: %v", err)
		}
		if bit == nil {
			t.Fatal("interception with probability 1 recorded no bit")
		}
		intercepted++
		// Eve measured in the preparation basis: she reads 0 exactly and the
		// resent state is indistinguishable from the original.
		if *bit != 0 {
			t.Fatalf("eve read %d from |0⟩ in the rectilinear basis", *bit)
		}
		got, err := qubit.Measure(out, qubit.Rectilinear, src)
		if err != nil {
			t.Fatalf("Measure failed: %v", err)
		}
		if got != 0 {
			t.Fatal("resent state lost the encoded bit")
		}
	}
	if intercepted != 100 {
		t.Errorf("intercepted %d of 100 qubits with probability 1", intercepted)
	}
}

func TestInterceptResendDisturbsConjugateStates(t *testing.T) {
	// Eve measuring |+⟩ in the rectilinear basis destroys the diagonal
	// information: Bob's diagonal read of the resent state errs half the time.
	const trials = 4000
	src := qrand.NewSource(9)
	errs := 0
	for i := 0; i < trials; i++ {
		state := qubit.Prepare(0, qubit.Diagonal)
		out, _, err := qubit.InterceptResend(state, qubit.Rectilinear, 1, src)
		if err != nil {
			t.Fatalf("InterceptResend failed: %v", err)
		}
		got, err := qubit.Measure(out, qubit.Diagonal, src)
		if err != nil {
			t.Fatalf("Measure failed: %v", err)
		}
		if got != 0 {
			errs++
		}
	}
	frac := float64(errs) / trials
	if math.Abs(frac-0.5) > 5*0.5/math.Sqrt(trials) {
		t.Errorf("disturbance error fraction = %v, want ~0.5", frac)
	}
}

func TestBasisString(t *testing.T) {
	if got := qubit.Rectilinear.String(); got != "+ (0°)" {
		t.Errorf("Rectilinear.String() = %q", got)
	}
	if got := qubit.Diagonal.String(); got != "× (45°)" {
		t.Errorf("Diagonal.String() = %q", got)
	}
}
