// Package crypto provides the cryptographic primitives behind message
// sealing: SHAKE-256 key derivation, detached-tag AEAD, and CSPRNG helpers.
//
// Security Note: all nonce and key randomness comes from crypto/rand, the
// operating system's CSPRNG. Simulation randomness lives in pkg/qrand and is
// never used for cryptographic values.
package crypto

import (
	"crypto/rand"
	"io"

	qerrors "github.com/qkdlab/bb84-go/internal/errors"
)

// SecureRandom reads cryptographically secure random bytes into the provided
// slice. An error here means the system's random generator failed and should
// be treated as a critical failure.
func SecureRandom(b []byte) error {
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return qerrors.NewSimulationError("crypto.SecureRandom", err)
	}
	return nil
}

// SecureRandomBytes returns n cryptographically secure random bytes.
func SecureRandomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if err := SecureRandom(b); err != nil {
		return nil, err
	}
	return b, nil
}

// Zeroize overwrites sensitive data with zeros. The runtime may already have
// copied the data; this is best-effort hygiene, not a guarantee.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
