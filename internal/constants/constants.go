// Package constants defines protocol and cryptographic parameters for the
// BB84 simulator.
package constants

// Protocol identification
const (
	// ProtocolName is used for domain separation in key derivation.
	ProtocolName = "BB84-SIM-v1"
)

// Simulation limits and defaults
const (
	// DefaultNumBits is the number of qubits exchanged when the caller does
	// not specify one. Matches a comfortable visual-table size.
	DefaultNumBits = 10

	// MaxNumBits caps the number of qubits per run. Runs are O(n) in time
	// and memory; the cap keeps a single request bounded.
	MaxNumBits = 1 << 16
)

// Basis encoding. Basis values double as random bits drawn in {0,1}.
const (
	// BasisRectilinear is the Z (computational) basis, rendered as "+ (0°)".
	BasisRectilinear = 0

	// BasisDiagonal is the X (Hadamard) basis, rendered as "× (45°)".
	BasisDiagonal = 1
)

// Symmetric encryption parameters
const (
	// AEADKeySize is the size of derived AEAD keys in bytes (256-bit).
	AEADKeySize = 32

	// AEADNonceSize is the nonce size for both supported suites (96-bit).
	AEADNonceSize = 12

	// AEADTagSize is the authentication tag size in bytes (128-bit).
	AEADTagSize = 16
)

// CipherSuite identifies an authenticated-encryption algorithm.
type CipherSuite uint16

const (
	// CipherSuiteAES256GCM is AES-256 in Galois/Counter Mode.
	CipherSuiteAES256GCM CipherSuite = 0x0001

	// CipherSuiteChaCha20Poly1305 is ChaCha20 with the Poly1305 MAC.
	CipherSuiteChaCha20Poly1305 CipherSuite = 0x0002
)

// String returns the suite name.
func (s CipherSuite) String() string {
	switch s {
	case CipherSuiteAES256GCM:
		return "AES-256-GCM"
	case CipherSuiteChaCha20Poly1305:
		return "ChaCha20-Poly1305"
	default:
		return "unknown"
	}
}

// Key derivation parameters (SHAKE-256)
const (
	// DomainSeparatorSeal is used when expanding caller key material into
	// an AEAD key.
	DomainSeparatorSeal = "BB84-SIM-v1-Seal"

	// DomainSeparatorRun seeds the deterministic random stream of a
	// protocol run.
	DomainSeparatorRun = "BB84-SIM-v1-Run"
)
