package bb84_test

import (
	"bytes"
	"context"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/qkdlab/bb84-go/internal/constants"
	"github.com/qkdlab/bb84-go/internal/errors"
	"github.com/qkdlab/bb84-go/pkg/bb84"
	"github.com/qkdlab/bb84-go/pkg/qrand"
	"github.com/qkdlab/bb84-go/pkg/qubit"
)

func run(t *testing.T, cfg bb84.Config) *bb84.Result {
	t.Helper()
	res, err := bb84.Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run(%+v) failed: %v", cfg, err)
	}
	return res
}

func TestNoEveKeysAgree(t *testing.T) {
	for _, n := range []int{0, 1, 2, 16, 100} {
		for seed := int64(0); seed < 20; seed++ {
			s := seed
			res := run(t, bb84.Config{NumBits: n, Seed: &s})

			if len(res.AliceKey) != len(res.BobKey) {
				t.Fatalf("n=%d seed=%d: key lengths differ: %d != %d", n, seed, len(res.AliceKey), len(res.BobKey))
			}
			for i := range res.AliceKey {
				if res.AliceKey[i] != res.BobKey[i] {
					t.Fatalf("n=%d seed=%d: keys differ at %d without eavesdropping", n, seed, i)
				}
			}
			if res.QBER != 0 {
				t.Errorf("n=%d seed=%d: QBER = %v without eavesdropping", n, seed, res.QBER)
			}
		}
	}
}

func TestKeyIndexInvariants(t *testing.T) {
	seed := int64(1234)
	res := run(t, bb84.Config{
		NumBits: 200,
		Eve:     bb84.EveConfig{Enabled: true, Prob: 0.5},
		Seed:    &seed,
	})

	if len(res.AliceKey) != len(res.MatchedIndices) || len(res.BobKey) != len(res.MatchedIndices) {
		t.Fatalf("key/index length mismatch: alice=%d bob=%d matched=%d",
			len(res.AliceKey), len(res.BobKey), len(res.MatchedIndices))
	}
	for i, idx := range res.MatchedIndices {
		if res.AliceBases[idx] != res.BobBases[idx] {
			t.Errorf("matched index %d has differing bases", idx)
		}
		if res.AliceKey[i] != res.AliceBits[idx] {
			t.Errorf("alice key bit %d != alice bit at index %d", i, idx)
		}
		if res.BobKey[i] != res.BobBits[idx] {
			t.Errorf("bob key bit %d != bob bit at index %d", i, idx)
		}
	}
	if res.QBER < 0 || res.QBER > 1 {
		t.Errorf("QBER = %v, want [0,1]", res.QBER)
	}
	if len(res.Table) != 200 {
		t.Errorf("table has %d rows, want 200", len(res.Table))
	}

	// Eve's key covers exactly the matched, intercepted indices.
	eveObserved := 0
	for _, idx := range res.MatchedIndices {
		if res.EveBits[idx] != nil {
			eveObserved++
		}
	}
	if len(res.EveKey) != eveObserved {
		t.Errorf("eve key has %d bits, want %d", len(res.EveKey), eveObserved)
	}
}

func TestZeroQubits(t *testing.T) {
	seed := int64(42)
	res := run(t, bb84.Config{NumBits: 0, Seed: &seed})

	if len(res.AliceKey) != 0 || len(res.BobKey) != 0 || len(res.Table) != 0 || len(res.MatchedIndices) != 0 {
		t.Errorf("zero-qubit run produced non-empty output: %+v", res)
	}
	if res.QBER != 0 {
		t.Errorf("zero-qubit QBER = %v, want 0", res.QBER)
	}
}

func TestDeterminism(t *testing.T) {
	seed := int64(42)
	cfg := bb84.Config{
		NumBits: 64,
		Eve:     bb84.EveConfig{Enabled: true, Prob: 0.3},
		Seed:    &seed,
	}

	first, err := json.Marshal(run(t, cfg))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := json.Marshal(run(t, cfg))
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("run %d: identical seed produced different output", i)
		}
	}
}

// TestDrawOrderContract pins the randomness layout of a seeded run: Alice's
// bits, then Alice's bases, then Bob's bases all come from the front of the
// seed's stream. Reordering the draws breaks seeded reproducibility for
// callers, so this is a regression baseline.
func TestDrawOrderContract(t *testing.T) {
	const n = 32
	seed := int64(42)
	res := run(t, bb84.Config{NumBits: n, Seed: &seed})

	src := qrand.NewSource(seed)
	for i := 0; i < n; i++ {
		if want := qubit.Bit(src.Bit()); res.AliceBits[i] != want {
			t.Fatalf("alice bit %d = %d, want %d", i, res.AliceBits[i], want)
		}
	}
	for i := 0; i < n; i++ {
		if want := qubit.Basis(src.Bit()); res.AliceBases[i] != want {
			t.Fatalf("alice basis %d = %d, want %d", i, res.AliceBases[i], want)
		}
	}
	for i := 0; i < n; i++ {
		if want := qubit.Basis(src.Bit()); res.BobBases[i] != want {
			t.Fatalf("bob basis %d = %d, want %d", i, res.BobBases[i], want)
		}
	}
}

func TestInterceptResendQBER(t *testing.T) {
	// Full interception with independent bases induces expected QBER 1/4.
	// Single runs are seed-dependent, so aggregate over many seeds.
	const runs = 200
	qbers := make([]float64, 0, runs)
	for seed := int64(0); seed < runs; seed++ {
		s := seed
		res := run(t, bb84.Config{
			NumBits: 200,
			Eve:     bb84.EveConfig{Enabled: true, Prob: 1},
			Seed:    &s,
		})
		qbers = append(qbers, res.QBER)
	}

	if mean := stat.Mean(qbers, nil); math.Abs(mean-0.25) > 0.02 {
		t.Errorf("mean QBER over %d runs = %v, want ~0.25", runs, mean)
	}
}

func TestEveDisabledIgnoresProb(t *testing.T) {
	seed := int64(7)
	res := run(t, bb84.Config{
		NumBits: 50,
		Eve:     bb84.EveConfig{Enabled: false, Prob: 1},
		Seed:    &seed,
	})

	if res.EveBases != nil || res.EveBits != nil {
		t.Error("disabled Eve left a per-qubit record")
	}
	if res.QBER != 0 {
		t.Errorf("disabled Eve induced QBER %v", res.QBER)
	}
	for _, row := range res.Table {
		if row.EveIntercepted || row.EveBit != nil {
			t.Fatalf("table row %d reports interception with Eve disabled", row.Index)
		}
	}
}

func TestEveFullInterceptRecordsEveryQubit(t *testing.T) {
	seed := int64(99)
	res := run(t, bb84.Config{
		NumBits: 40,
		Eve:     bb84.EveConfig{Enabled: true, Prob: 1},
		Seed:    &seed,
	})

	for i, bit := range res.EveBits {
		if bit == nil {
			t.Fatalf("qubit %d not intercepted with probability 1", i)
		}
	}
	if len(res.EveKey) != len(res.AliceKey) {
		t.Errorf("eve key has %d bits, want %d (every matched qubit intercepted)",
			len(res.EveKey), len(res.AliceKey))
	}
}

func TestParameterValidation(t *testing.T) {
	cases := []struct {
		name string
		cfg  bb84.Config
		want error
	}{
		{"negative-bits", bb84.Config{NumBits: -1}, errors.ErrInvalidNumBits},
		{"oversized-bits", bb84.Config{NumBits: constants.MaxNumBits + 1}, errors.ErrInvalidNumBits},
		{"negative-prob", bb84.Config{NumBits: 4, Eve: bb84.EveConfig{Enabled: true, Prob: -0.1}}, errors.ErrInvalidEveProb},
		{"excess-prob", bb84.Config{NumBits: 4, Eve: bb84.EveConfig{Enabled: true, Prob: 1.5}}, errors.ErrInvalidEveProb},
		{"nan-prob", bb84.Config{NumBits: 4, Eve: bb84.EveConfig{Enabled: true, Prob: math.NaN()}}, errors.ErrInvalidEveProb},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := bb84.Run(context.Background(), tc.cfg)
			if !errors.Is(err, tc.want) {
				t.Fatalf("Run error = %v, want %v", err, tc.want)
			}
			if kind := errors.KindOf(err); kind != errors.KindInvalidParameter {
				t.Errorf("KindOf(err) = %v, want %v", kind, errors.KindInvalidParameter)
			}
		})
	}
}

func TestUnseededRunsDiffer(t *testing.T) {
	a := run(t, bb84.Config{NumBits: 64})
	b := run(t, bb84.Config{NumBits: 64})

	same := true
	for i := range a.AliceBits {
		if a.AliceBits[i] != b.AliceBits[i] || a.AliceBases[i] != b.AliceBases[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("two unseeded runs drew identical bit and basis sequences")
	}
}

func TestRenderTable(t *testing.T) {
	seed := int64(3)
	res := run(t, bb84.Config{
		NumBits: 8,
		Eve:     bb84.EveConfig{Enabled: true, Prob: 0.5},
		Seed:    &seed,
	})

	var buf bytes.Buffer
	res.RenderTable(&buf)
	out := buf.String()
	for _, want := range []string{"Alice Bit", "Bob Basis", "Eve Bit", "Match"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing header %q", want)
		}
	}

	buf.Reset()
	res.RenderSummary(&buf)
	if !strings.Contains(buf.String(), "QBER") {
		t.Error("rendered summary missing QBER line")
	}
}
