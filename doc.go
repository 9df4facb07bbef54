// Package bb84go simulates the BB84 quantum key distribution protocol and
// uses the resulting sifted keys for authenticated symmetric encryption.
//
// Two parties (Alice, Bob) exchange single qubits over a simulated quantum
// channel, optionally intercepted by an eavesdropper (Eve). Basis sifting
// yields a shared key whose error rate (QBER) reveals interception.
//
// # Quick Start
//
// Running the protocol:
//
//	import "github.com/qkdlab/bb84-go/pkg/bb84"
//
//	seed := int64(42)
//	res, _ := bb84.Run(ctx, bb84.Config{
//		NumBits: 32,
//		Eve:     bb84.EveConfig{Enabled: true, Prob: 0.3},
//		Seed:    &seed,
//	})
//	fmt.Println(res.QBER, res.AliceKey)
//
// Encrypting a message with the sifted key:
//
//	import "github.com/qkdlab/bb84-go/pkg/seal"
//
//	env, _ := seal.Encrypt("attack at dawn", res.AliceKey)
//	plain, _ := seal.Decrypt(env, res.BobKey)
//
// # Package Structure
//
//   - pkg/bb84: protocol orchestrator (sifting, QBER, audit table)
//   - pkg/qubit: single-qubit state-vector channel model
//   - pkg/qrand: seedable deterministic random streams
//   - pkg/crypto: KDF and AEAD primitives
//   - pkg/seal: message-level authenticated encryption
//   - pkg/server: JSON HTTP boundary
//   - pkg/metrics: logging, tracing, and simulation metrics
//   - internal/constants: protocol and crypto parameters
//   - internal/errors: error kinds shared across packages
//
// # Fidelity
//
// The channel model reproduces ideal BB84 statistics: measurement in the
// preparation basis is noiseless and deterministic, measurement in the
// conjugate basis collapses uniformly at random, and intercept-resend
// eavesdropping induces the textbook 25% expected QBER on sifted bits.
//
// This is a demonstration, not a cryptographically sound QKD system: the
// classical channel is unauthenticated and no privacy amplification or
// information reconciliation is performed.
package bb84go
