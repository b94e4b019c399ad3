// Package keywrap implements asymmetric wrapping of symmetric content keys
// over secp256k1. Each wrap performs an ECDH key agreement between an
// ephemeral private key and the recipient's public key, derives a key
// encryption key with HKDF-SHA256, and seals the content key with AES-GCM
// under caller-supplied associated data.
//
// The package also provides compact ECDSA signatures, BIP-39 mnemonic key
// derivation, and recipient-id derivation from public keys.
package keywrap

import (
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"golang.org/x/crypto/hkdf"

	"github.com/idelchi/gonv/pkg/gcm"
)

const (
	// PrivateKeySize is the serialized private key size in bytes.
	PrivateKeySize = 32
	// PublicKeySize is the compressed public key size in bytes.
	PublicKeySize = 33

	// kekInfo domain-separates the wrap KDF from other HKDF uses of the
	// same key material.
	kekInfo = "gonv/wrap/v1"
)

// Wrapper wraps and unwraps content keys. It holds no key material and is
// safe for concurrent use.
type Wrapper struct {
	cipher *gcm.Cipher
}

// New returns a Wrapper.
func New() *Wrapper {
	return &Wrapper{cipher: gcm.New()}
}

// GenerateEphemeral returns a fresh secp256k1 key pair: a 32-byte private
// scalar and a 33-byte compressed public key.
func (*Wrapper) GenerateEphemeral() (priv, pub []byte, err error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("generating ephemeral key: %w", err)
	}

	return key.Serialize(), key.PubKey().SerializeCompressed(), nil
}

// Wrap encrypts contentKey for the holder of recipientPublicKey, using the
// ephemeral private key for the key agreement. The aad is authenticated
// alongside the wrapped key; unwrapping with different aad fails.
func (w *Wrapper) Wrap(recipientPublicKey, contentKey, ephemeralPriv, aad []byte) ([]byte, error) {
	kek, err := deriveKEK(ephemeralPriv, recipientPublicKey)
	if err != nil {
		return nil, err
	}

	defer wipe(kek)

	wrapped, err := w.cipher.Seal(kek, contentKey, aad)
	if err != nil {
		return nil, fmt.Errorf("wrapping content key: %w", err)
	}

	return wrapped, nil
}

// Unwrap recovers a content key wrapped by Wrap, using the recipient's
// private key and the ephemeral public key stored alongside the envelope.
func (w *Wrapper) Unwrap(recipientPrivateKey, wrapped, ephemeralPub, aad []byte) ([]byte, error) {
	kek, err := deriveKEK(recipientPrivateKey, ephemeralPub)
	if err != nil {
		return nil, err
	}

	defer wipe(kek)

	contentKey, err := w.cipher.Open(kek, wrapped, aad)
	if err != nil {
		return nil, fmt.Errorf("unwrapping content key: %w", err)
	}

	return contentKey, nil
}

// deriveKEK runs the ECDH agreement between the given private and public
// keys and expands the shared secret into a 32-byte key encryption key.
// ECDH is symmetric in its arguments, so wrap (ephemeral private, recipient
// public) and unwrap (recipient private, ephemeral public) derive the same
// key.
func deriveKEK(privBytes, pubBytes []byte) ([]byte, error) {
	if len(privBytes) != PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", PrivateKeySize, len(privBytes))
	}

	priv := secp256k1.PrivKeyFromBytes(privBytes)

	pub, err := secp256k1.ParsePubKey(pubBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing public key: %w", err)
	}

	shared := secp256k1.GenerateSharedSecret(priv, pub)
	defer wipe(shared)

	priv.Zero()

	reader := hkdf.New(sha256.New, shared, nil, []byte(kekInfo))

	kek := make([]byte, gcm.KeySize)
	if _, err := io.ReadFull(reader, kek); err != nil {
		return nil, fmt.Errorf("deriving key encryption key: %w", err)
	}

	return kek, nil
}

// wipe zeroes b.
func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
