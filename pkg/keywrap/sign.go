package keywrap

import (
	"crypto/sha256"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secp256k1ecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
)

// SignatureLen is the compact recoverable signature length in bytes.
const SignatureLen = 65

// Sign produces a compact recoverable ECDSA signature over the SHA-256
// digest of message.
func (*Wrapper) Sign(privateKey, message []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", PrivateKeySize, len(privateKey))
	}

	priv := secp256k1.PrivKeyFromBytes(privateKey)
	defer priv.Zero()

	digest := sha256.Sum256(message)

	return secp256k1ecdsa.SignCompact(priv, digest[:], true), nil
}

// Verify reports whether signature is a valid compact signature over message
// for the holder of publicKey. Malformed keys or signatures verify as false.
func (*Wrapper) Verify(publicKey, message, signature []byte) bool {
	pub, err := secp256k1.ParsePubKey(publicKey)
	if err != nil {
		return false
	}

	digest := sha256.Sum256(message)

	// RecoverCompact both verifies the signature and recovers the signing key.
	recovered, _, err := secp256k1ecdsa.RecoverCompact(signature, digest[:])
	if err != nil {
		return false
	}

	return recovered.IsEqual(pub)
}

// SignatureSize returns the fixed compact signature length.
func (*Wrapper) SignatureSize() int {
	return SignatureLen
}
