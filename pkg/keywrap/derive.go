package keywrap

import (
	"crypto/sha256"
	"fmt"
	"io"
	"strings"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/tyler-smith/go-bip39"
	"golang.org/x/crypto/hkdf"
)

// keyInfo domain-separates mnemonic key derivation from the wrap KDF.
const keyInfo = "gonv/key/v1"

// DeriveKey derives a private key deterministically from a BIP-39 mnemonic.
// The same mnemonic always yields the same key.
func DeriveKey(mnemonic string) ([]byte, error) {
	mnemonic = strings.TrimSpace(mnemonic)

	if !bip39.IsMnemonicValid(mnemonic) {
		return nil, fmt.Errorf("not a valid BIP-39 mnemonic")
	}

	seed := bip39.NewSeed(mnemonic, "")
	defer wipe(seed)

	reader := hkdf.New(sha256.New, seed, nil, []byte(keyInfo))

	priv := make([]byte, PrivateKeySize)
	if _, err := io.ReadFull(reader, priv); err != nil {
		return nil, fmt.Errorf("deriving private key: %w", err)
	}

	return priv, nil
}

// NewMnemonic generates a fresh BIP-39 mnemonic with 256 bits of entropy.
func NewMnemonic() (string, error) {
	const entropyBits = 256

	entropy, err := bip39.NewEntropy(entropyBits)
	if err != nil {
		return "", fmt.Errorf("generating entropy: %w", err)
	}

	mnemonic, err := bip39.NewMnemonic(entropy)
	if err != nil {
		return "", fmt.Errorf("generating mnemonic: %w", err)
	}

	return mnemonic, nil
}

// PublicKey returns the compressed public key for a private key.
func PublicKey(privateKey []byte) ([]byte, error) {
	if len(privateKey) != PrivateKeySize {
		return nil, fmt.Errorf("private key must be %d bytes, got %d", PrivateKeySize, len(privateKey))
	}

	priv := secp256k1.PrivKeyFromBytes(privateKey)
	defer priv.Zero()

	return priv.PubKey().SerializeCompressed(), nil
}

// RecipientID derives a recipient identity of the given size from a
// compressed public key: the truncated SHA-256 of the key bytes.
func RecipientID(publicKey []byte, size int) ([]byte, error) {
	if len(publicKey) != PublicKeySize {
		return nil, fmt.Errorf("public key must be %d bytes, got %d", PublicKeySize, len(publicKey))
	}

	if size < 1 || size > sha256.Size {
		return nil, fmt.Errorf("id size must be in [1, %d], got %d", sha256.Size, size)
	}

	digest := sha256.Sum256(publicKey)

	return digest[:size], nil
}
