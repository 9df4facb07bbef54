// kdf.go derives fixed-length keys from arbitrary key material using
// SHAKE-256 (FIPS 202), an extendable-output function.
//
// Inputs are framed with 4-byte big-endian length prefixes so distinct
// (domain, input) pairs can never collide, and the domain separator keeps
// keys derived here independent from any other SHAKE-256 use.
package crypto

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"

	qerrors "github.com/qkdlab/bb84-go/internal/errors"
)

// maxKDFOutput caps derivation output at 1MB.
const maxKDFOutput = 1 << 20

// DeriveKey expands input into outputLen bytes of key material under the
// given domain separator:
//
//	output = SHAKE-256(len(domain) || domain || len(input) || input, outputLen)
//
// The derivation is deterministic: equal (domain, input) pairs always yield
// equal output.
func DeriveKey(domain string, input []byte, outputLen int) ([]byte, error) {
	if outputLen <= 0 || outputLen > maxKDFOutput {
		return nil, qerrors.ErrInvalidKeySize
	}

	h := sha3.NewShake256()
	lenBuf := make([]byte, 4)

	domainBytes := []byte(domain)
	binary.BigEndian.PutUint32(lenBuf, uint32(len(domainBytes)))
	h.Write(lenBuf)
	h.Write(domainBytes)

	binary.BigEndian.PutUint32(lenBuf, uint32(len(input)))
	h.Write(lenBuf)
	h.Write(input)

	output := make([]byte, outputLen)
	_, _ = h.Read(output) // SHAKE256.Read never fails

	return output, nil
}
