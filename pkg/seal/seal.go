// Package seal provides message-level authenticated encryption keyed by
// caller-supplied material, typically a sifted BB84 key.
//
// Key material can be any JSON-serializable value. Its canonical JSON form
// is expanded to a 256-bit key with the SHAKE-256 KDF, so equal material
// always re-derives the same key. Every message gets a fresh CSPRNG nonce,
// and the resulting ciphertext, nonce, and tag travel base64-encoded in an
// Envelope.
package seal

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/qkdlab/bb84-go/internal/constants"
	qerrors "github.com/qkdlab/bb84-go/internal/errors"
	"github.com/qkdlab/bb84-go/pkg/crypto"
)

// Envelope is the transport form of one encrypted message. All fields are
// standard base64 text and all three are required for decryption.
type Envelope struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	Tag        string `json:"tag"`
}

// Encrypt seals plaintext under a key derived from keyMaterial using the
// preferred cipher suite.
func Encrypt(plaintext string, keyMaterial interface{}) (*Envelope, error) {
	return EncryptWithSuite(plaintext, keyMaterial, crypto.PreferredCipherSuite())
}

// EncryptWithSuite seals plaintext under a key derived from keyMaterial
// using the given suite.
func EncryptWithSuite(plaintext string, keyMaterial interface{}, suite constants.CipherSuite) (*Envelope, error) {
	key, err := deriveKey(keyMaterial)
	if err != nil {
		return nil, err
	}
	defer crypto.Zeroize(key)

	aead, err := crypto.NewAEAD(suite, key)
	if err != nil {
		return nil, err
	}

	nonce, err := crypto.SecureRandomBytes(constants.AEADNonceSize)
	if err != nil {
		return nil, err
	}

	ct, tag, err := aead.SealDetached(nonce, []byte(plaintext))
	if err != nil {
		return nil, err
	}

	return &Envelope{
		Ciphertext: base64.StdEncoding.EncodeToString(ct),
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Tag:        base64.StdEncoding.EncodeToString(tag),
	}, nil
}

// Decrypt opens an envelope with a key re-derived from keyMaterial using the
// preferred cipher suite. Returns ErrAuthenticationFailed if the envelope
// was tampered with or the key material differs, ErrInvalidEncoding for
// malformed base64, and ErrMalformedEnvelope for missing or undersized
// fields.
func Decrypt(env *Envelope, keyMaterial interface{}) (string, error) {
	return DecryptWithSuite(env, keyMaterial, crypto.PreferredCipherSuite())
}

// DecryptWithSuite opens an envelope sealed with the given suite.
func DecryptWithSuite(env *Envelope, keyMaterial interface{}, suite constants.CipherSuite) (string, error) {
	if env == nil || env.Nonce == "" || env.Tag == "" {
		return "", qerrors.ErrMalformedEnvelope
	}

	ct, err := decodeField("ciphertext", env.Ciphertext)
	if err != nil {
		return "", err
	}
	nonce, err := decodeField("nonce", env.Nonce)
	if err != nil {
		return "", err
	}
	tag, err := decodeField("tag", env.Tag)
	if err != nil {
		return "", err
	}
	if len(nonce) != constants.AEADNonceSize || len(tag) != constants.AEADTagSize {
		return "", qerrors.ErrMalformedEnvelope
	}

	key, err := deriveKey(keyMaterial)
	if err != nil {
		return "", err
	}
	defer crypto.Zeroize(key)

	aead, err := crypto.NewAEAD(suite, key)
	if err != nil {
		return "", err
	}

	plaintext, err := aead.OpenDetached(nonce, ct, tag)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

// deriveKey serializes keyMaterial to canonical JSON and expands it to an
// AEAD key. Material that serializes to nothing (nil, "", empty array or
// object) is rejected: an empty key offers no secrecy at all.
func deriveKey(keyMaterial interface{}) ([]byte, error) {
	raw, err := json.Marshal(keyMaterial)
	if err != nil {
		return nil, qerrors.NewParameterError("key", err)
	}
	if isEmptyMaterial(raw) {
		return nil, qerrors.NewParameterError("key", qerrors.ErrEmptyKeyMaterial)
	}
	return crypto.DeriveKey(constants.DomainSeparatorSeal, raw, constants.AEADKeySize)
}

func isEmptyMaterial(raw []byte) bool {
	for _, empty := range [][]byte{
		[]byte("null"), []byte(`""`), []byte("[]"), []byte("{}"),
	} {
		if bytes.Equal(raw, empty) {
			return true
		}
	}
	return false
}

func decodeField(name, value string) ([]byte, error) {
	b, err := base64.StdEncoding.DecodeString(value)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, qerrors.ErrInvalidEncoding)
	}
	return b, nil
}
