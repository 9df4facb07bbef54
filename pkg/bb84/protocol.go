// Package bb84 orchestrates full runs of the BB84 key distribution protocol
// over the simulated qubit channel.
//
// A run draws random bits and bases for Alice and Bob, transmits each qubit
// through the channel (optionally intercepted by Eve), sifts the results on
// matching bases, and reports the sifted keys, the quantum bit error rate,
// and a per-qubit audit table.
package bb84

import (
	"context"
	"math"

	"github.com/qkdlab/bb84-go/internal/constants"
	qerrors "github.com/qkdlab/bb84-go/internal/errors"
	"github.com/qkdlab/bb84-go/pkg/metrics"
	"github.com/qkdlab/bb84-go/pkg/qrand"
	"github.com/qkdlab/bb84-go/pkg/qubit"
)

// EveConfig controls the eavesdropper. Enablement and interception intensity
// are independent: a disabled Eve never touches the channel regardless of
// Prob, and an enabled Eve with Prob 0 draws bases but intercepts nothing.
type EveConfig struct {
	// Enabled places Eve on the channel.
	Enabled bool

	// Prob is the per-qubit interception probability, in [0,1].
	Prob float64
}

// Config parameterizes one protocol run.
type Config struct {
	// NumBits is the number of qubits to exchange. Must be in
	// [0, constants.MaxNumBits].
	NumBits int

	// Eve configures interception.
	Eve EveConfig

	// Seed, when non-nil, makes the run fully deterministic: identical seed
	// and parameters reproduce identical output. When nil the run draws a
	// fresh entropy-keyed stream.
	Seed *int64
}

// TableRow is one line of the per-qubit audit table.
type TableRow struct {
	Index          int        `json:"index"`
	AliceBit       qubit.Bit  `json:"alice_bit"`
	AliceBasis     string     `json:"alice_basis"`
	BobBasis       string     `json:"bob_basis"`
	EveIntercepted bool       `json:"eve_intercepted"`
	EveBit         *qubit.Bit `json:"eve_bit"` // nil where Eve did not intercept
	BobBit         qubit.Bit  `json:"bob_bit"`
	BasesMatch     bool       `json:"bases_match"`
}

// Result is the immutable output of one protocol run.
type Result struct {
	AliceBits  []qubit.Bit   `json:"alice_bits"`
	AliceBases []qubit.Basis `json:"alice_bases"`
	BobBases   []qubit.Basis `json:"bob_bases"`
	BobBits    []qubit.Bit   `json:"bob_bits"`

	// EveBases and EveBits are nil when Eve is disabled. EveBits holds nil
	// entries for qubits that passed through unintercepted.
	EveBases []qubit.Basis `json:"eve_bases,omitempty"`
	EveBits  []*qubit.Bit  `json:"eve_bits,omitempty"`

	Table []TableRow `json:"table"`

	// Sifted keys, restricted to indices where Alice's and Bob's bases
	// match, in ascending index order. Always equal length.
	AliceKey []qubit.Bit `json:"alice_key"`
	BobKey   []qubit.Bit `json:"bob_key"`

	// EveKey is the part of the sifted key Eve observed: indices where the
	// legitimate bases match and Eve intercepted.
	EveKey []qubit.Bit `json:"eve_key"`

	// QBER is the fraction of sifted bits where Alice and Bob disagree,
	// 0 when the sifted key is empty.
	QBER float64 `json:"qber"`

	MatchedIndices []int `json:"matched_indices"`
}

// Run executes one BB84 protocol instance.
//
// Parameter violations are rejected before any simulation happens. All
// randomness for the run flows through a single source, in a fixed draw
// order: Alice's bits, Alice's bases, Bob's bases, Eve's bases (when
// enabled), then per qubit the interception coin, Eve's measurement, and
// Bob's measurement.
func Run(ctx context.Context, cfg Config) (res *Result, err error) {
	if cfg.NumBits < 0 || cfg.NumBits > constants.MaxNumBits {
		return nil, qerrors.NewParameterError("n_bits", qerrors.ErrInvalidNumBits)
	}
	if math.IsNaN(cfg.Eve.Prob) || cfg.Eve.Prob < 0 || cfg.Eve.Prob > 1 {
		return nil, qerrors.NewParameterError("eve_prob", qerrors.ErrInvalidEveProb)
	}

	_, end := metrics.StartSpan(ctx, metrics.SpanProtocolRun, metrics.WithAttributes(map[string]interface{}{
		"bb84.n_bits":      cfg.NumBits,
		"bb84.eve_enabled": cfg.Eve.Enabled,
		"bb84.eve_prob":    cfg.Eve.Prob,
		"bb84.seeded":      cfg.Seed != nil,
	}))
	defer func() { end(err) }()

	var src *qrand.Source
	if cfg.Seed != nil {
		src = qrand.NewSource(*cfg.Seed)
	} else {
		src, err = qrand.NewEntropySource()
		if err != nil {
			return nil, err
		}
	}

	n := cfg.NumBits
	aliceBits := drawBits(src, n)
	aliceBases := drawBases(src, n)
	bobBases := drawBases(src, n)

	var eveBases []qubit.Basis
	var eveBits []*qubit.Bit
	if cfg.Eve.Enabled {
		eveBases = drawBases(src, n)
		eveBits = make([]*qubit.Bit, n)
	}

	bobBits := make([]qubit.Bit, n)
	for i := 0; i < n; i++ {
		state := qubit.Prepare(aliceBits[i], aliceBases[i])
		if cfg.Eve.Enabled {
			state, eveBits[i], err = qubit.InterceptResend(state, eveBases[i], cfg.Eve.Prob, src)
			if err != nil {
				return nil, err
			}
		}
		bobBits[i], err = qubit.Measure(state, bobBases[i], src)
		if err != nil {
			return nil, err
		}
	}

	res = &Result{
		AliceBits:      aliceBits,
		AliceBases:     aliceBases,
		BobBases:       bobBases,
		BobBits:        bobBits,
		EveBases:       eveBases,
		EveBits:        eveBits,
		Table:          make([]TableRow, 0, n),
		AliceKey:       make([]qubit.Bit, 0, n),
		BobKey:         make([]qubit.Bit, 0, n),
		EveKey:         make([]qubit.Bit, 0, n),
		MatchedIndices: make([]int, 0, n),
	}

	for i := 0; i < n; i++ {
		matched := aliceBases[i] == bobBases[i]
		var eveBit *qubit.Bit
		if cfg.Eve.Enabled {
			eveBit = eveBits[i]
		}

		if matched {
			res.AliceKey = append(res.AliceKey, aliceBits[i])
			res.BobKey = append(res.BobKey, bobBits[i])
			res.MatchedIndices = append(res.MatchedIndices, i)
			if eveBit != nil {
				res.EveKey = append(res.EveKey, *eveBit)
			}
		}

		res.Table = append(res.Table, TableRow{
			Index:          i,
			AliceBit:       aliceBits[i],
			AliceBasis:     aliceBases[i].String(),
			BobBasis:       bobBases[i].String(),
			EveIntercepted: eveBit != nil,
			EveBit:         eveBit,
			BobBit:         bobBits[i],
			BasesMatch:     matched,
		})
	}

	res.QBER = qber(res.AliceKey, res.BobKey)
	return res, nil
}

// qber returns the fraction of positions where the sifted keys disagree,
// or 0 for empty keys.
func qber(aliceKey, bobKey []qubit.Bit) float64 {
	if len(aliceKey) == 0 {
		return 0
	}
	errs := 0
	for i := range aliceKey {
		if aliceKey[i] != bobKey[i] {
			errs++
		}
	}
	return float64(errs) / float64(len(aliceKey))
}

func drawBits(src *qrand.Source, n int) []qubit.Bit {
	bits := make([]qubit.Bit, n)
	for i := range bits {
		bits[i] = qubit.Bit(src.Bit())
	}
	return bits
}

func drawBases(src *qrand.Source, n int) []qubit.Basis {
	bases := make([]qubit.Basis, n)
	for i := range bases {
		bases[i] = qubit.Basis(src.Bit())
	}
	return bases
}
