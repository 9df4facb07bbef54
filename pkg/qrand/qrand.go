// Package qrand provides seedable random streams for protocol simulation.
//
// Each protocol run owns one Source, so concurrent runs never share
// generator state and a seeded run is reproducible bit for bit. The stream
// is backed by the SHAKE128 extendable-output function keyed with a domain
// separator and the seed; unseeded sources are keyed from the OS CSPRNG.
//
// Sources produce simulation randomness, not key material. Nonces and other
// cryptographic values come from pkg/crypto.
package qrand

import (
	"crypto/rand"
	"encoding/binary"
	"io"

	"github.com/cloudflare/circl/xof"

	"github.com/qkdlab/bb84-go/internal/constants"
	qerrors "github.com/qkdlab/bb84-go/internal/errors"
)

// Source is a deterministic stream of uniform random values.
// It is not safe for concurrent use; give each goroutine its own Source.
type Source struct {
	x xof.XOF
}

// NewSource returns a Source keyed by seed. Two Sources built from the same
// seed yield identical streams.
func NewSource(seed int64) *Source {
	x := xof.SHAKE128.New()
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(seed))
	_, _ = x.Write([]byte(constants.DomainSeparatorRun))
	_, _ = x.Write(buf[:])
	return &Source{x: x}
}

// NewEntropySource returns a Source keyed with 256 bits from the OS CSPRNG.
// It fails only if the system random generator fails.
func NewEntropySource() (*Source, error) {
	key := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, qerrors.NewSimulationError("qrand.NewEntropySource", err)
	}
	x := xof.SHAKE128.New()
	_, _ = x.Write([]byte(constants.DomainSeparatorRun))
	_, _ = x.Write(key)
	return &Source{x: x}, nil
}

// read fills b from the stream. SHAKE reads never fail after keying.
func (s *Source) read(b []byte) {
	_, _ = s.x.Read(b)
}

// Bit returns a uniform bit in {0,1}.
func (s *Source) Bit() uint8 {
	var b [1]byte
	s.read(b[:])
	return b[0] & 1
}

// Bits returns n uniform bits.
func (s *Source) Bits(n int) []uint8 {
	buf := make([]uint8, n)
	s.read(buf)
	for i := range buf {
		buf[i] &= 1
	}
	return buf
}

// Float64 returns a uniform value in [0,1) with 53 bits of precision.
func (s *Source) Float64() float64 {
	var b [8]byte
	s.read(b[:])
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}
