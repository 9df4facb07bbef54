// Package errors defines the error kinds shared across the BB84 simulator.
// The transport boundary classifies these into structured client/server
// error responses; nothing below leaks key material in error messages.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for protocol parameters
var (
	// ErrInvalidNumBits indicates a negative or oversized qubit count.
	ErrInvalidNumBits = errors.New("bb84: number of qubits out of range")

	// ErrInvalidEveProb indicates an interception probability outside [0,1].
	ErrInvalidEveProb = errors.New("bb84: interception probability out of range")
)

// Sentinel errors for sealing operations
var (
	// ErrAuthenticationFailed indicates AEAD tag verification failed.
	ErrAuthenticationFailed = errors.New("seal: authentication failed")

	// ErrInvalidEncoding indicates malformed base64 in an envelope field.
	ErrInvalidEncoding = errors.New("seal: invalid base64 encoding")

	// ErrMalformedEnvelope indicates a missing or undersized envelope field.
	ErrMalformedEnvelope = errors.New("seal: malformed envelope")

	// ErrEmptyKeyMaterial indicates key material that serializes to nothing.
	ErrEmptyKeyMaterial = errors.New("seal: empty key material")

	// ErrInvalidKeySize indicates a derived or supplied key of the wrong size.
	ErrInvalidKeySize = errors.New("crypto: invalid key size")

	// ErrInvalidNonce indicates a nonce of the wrong size.
	ErrInvalidNonce = errors.New("crypto: invalid nonce size")

	// ErrUnsupportedCipherSuite indicates an unknown AEAD suite identifier.
	ErrUnsupportedCipherSuite = errors.New("crypto: unsupported cipher suite")
)

// Sentinel errors for the qubit channel model
var (
	// ErrInvalidState indicates a state vector outside the closed set of
	// preparations. Unreachable unless a caller constructs states by hand.
	ErrInvalidState = errors.New("qubit: invalid single-qubit state")
)

// ParameterError reports a rejected caller input.
type ParameterError struct {
	Param  string // Parameter name as exposed at the boundary
	Reason error  // Underlying sentinel
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %q: %v", e.Param, e.Reason)
}

func (e *ParameterError) Unwrap() error {
	return e.Reason
}

// NewParameterError creates a new ParameterError.
func NewParameterError(param string, reason error) *ParameterError {
	return &ParameterError{Param: param, Reason: reason}
}

// SimulationError wraps an unexpected failure inside the qubit model.
type SimulationError struct {
	Op  string // Operation that failed
	Err error  // Underlying error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *SimulationError) Unwrap() error {
	return e.Err
}

// NewSimulationError creates a new SimulationError.
func NewSimulationError(op string, err error) *SimulationError {
	return &SimulationError{Op: op, Err: err}
}

// Kind classifies errors for the transport boundary.
type Kind string

// Error kinds reported at the boundary.
const (
	KindInvalidParameter Kind = "invalid_parameter"
	KindAuthentication   Kind = "authentication_error"
	KindDecoding         Kind = "decoding_error"
	KindInternal         Kind = "internal_error"
)

// KindOf maps an error to its boundary kind. Unknown errors are internal.
func KindOf(err error) Kind {
	var pe *ParameterError
	switch {
	case errors.As(err, &pe),
		errors.Is(err, ErrEmptyKeyMaterial):
		return KindInvalidParameter
	case errors.Is(err, ErrAuthenticationFailed):
		return KindAuthentication
	case errors.Is(err, ErrInvalidEncoding),
		errors.Is(err, ErrMalformedEnvelope):
		return KindDecoding
	default:
		return KindInternal
	}
}

// Is reports whether any error in err's chain matches target.
// This is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
// This is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
