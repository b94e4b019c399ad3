package envelope

import (
	"errors"
	"fmt"
)

const (
	// Magic identifies an envelope.
	Magic = "GONV"
	// Version is the wire format version produced by this package.
	Version uint16 = 1

	// HeaderSize is the fixed size of the envelope header in bytes.
	HeaderSize = 64
	// EphemeralKeySize is the size of the ephemeral public key carried in the header
	// (a compressed secp256k1 point).
	EphemeralKeySize = 33
	// ContentKeySize is the required size of the symmetric content key.
	ContentKeySize = 32

	// MaxRecipients bounds the number of recipients per envelope.
	MaxRecipients = 1024
	// MaxWrappedKeySize bounds a single wrapped key. Declared lengths above it are
	// treated as corruption before any allocation or cryptographic work.
	MaxWrappedKeySize = 1024
	// MaxChunkIndex is the largest chunk index representable in the header.
	MaxChunkIndex = 1<<32 - 1

	// DefaultIdentitySize is the recipient id length used unless WithIdentitySize is given.
	DefaultIdentitySize = 16

	// maxPayloadSize bounds the protected payload (signature plus plaintext).
	maxPayloadSize = 1<<31 - 1

	minIdentitySize = 4
	maxIdentitySize = 64
)

// Recipient identifies one receiver of an envelope by its opaque id and the
// public key its content-key copy is wrapped under.
type Recipient struct {
	// ID is the recipient identity. Its length must equal the codec's identity size.
	ID []byte

	// PublicKey is passed through opaquely to the KeyWrapper.
	PublicKey []byte
}

// KeyWrapper is the asymmetric key-agreement and key-wrap primitive.
// Implementations must be safe for concurrent use: per-recipient wraps
// within one Seal call may run in parallel.
type KeyWrapper interface {
	// GenerateEphemeral returns a fresh key pair for one envelope. The public
	// key must be EphemeralKeySize bytes.
	GenerateEphemeral() (priv, pub []byte, err error)

	// Wrap encrypts the content key for one recipient under the shared
	// ephemeral private key. The aad binds the wrapped key to its owner.
	Wrap(recipientPublicKey, contentKey, ephemeralPriv, aad []byte) ([]byte, error)

	// Unwrap recovers the content key from a wrapped key using the
	// recipient's private key and the stored ephemeral public key.
	Unwrap(recipientPrivateKey, wrapped, ephemeralPub, aad []byte) ([]byte, error)

	// Sign produces a detached signature over message.
	Sign(privateKey, message []byte) ([]byte, error)

	// Verify reports whether signature is valid for message under publicKey.
	Verify(publicKey, message, signature []byte) bool

	// SignatureSize is the fixed size of signatures produced by Sign.
	SignatureSize() int
}

// PayloadCipher is the authenticated symmetric cipher protecting the payload.
type PayloadCipher interface {
	// Seal encrypts plaintext under key, authenticating aad alongside it.
	// The result is IV || ciphertext || tag.
	Seal(key, plaintext, aad []byte) ([]byte, error)

	// Open decrypts sealed (IV || ciphertext || tag), failing on any tamper
	// of sealed or aad.
	Open(key, sealed, aad []byte) ([]byte, error)

	// IVSize is the fixed IV length prepended by Seal.
	IVSize() int

	// Overhead is the fixed authentication tag length appended by Seal.
	Overhead() int
}

// Codec seals and opens envelopes with a fixed identity size and a fixed
// pair of cryptographic collaborators. It holds no per-call state; a single
// Codec may be used from any number of goroutines.
type Codec struct {
	wrapper KeyWrapper
	cipher  PayloadCipher
	idSize  int
}

// Option configures a Codec.
type Option func(*Codec)

// WithIdentitySize sets the recipient identity length in bytes. It is a
// deployment configuration, not a protocol constant: both sides of an
// exchange must agree on it.
func WithIdentitySize(size int) Option {
	return func(c *Codec) {
		c.idSize = size
	}
}

// New creates a Codec from a key wrapper and a payload cipher.
func New(wrapper KeyWrapper, cipher PayloadCipher, opts ...Option) (*Codec, error) {
	if wrapper == nil {
		return nil, errors.New("key wrapper is required")
	}

	if cipher == nil {
		return nil, errors.New("payload cipher is required")
	}

	codec := &Codec{
		wrapper: wrapper,
		cipher:  cipher,
		idSize:  DefaultIdentitySize,
	}

	for _, opt := range opts {
		opt(codec)
	}

	if codec.idSize < minIdentitySize || codec.idSize > maxIdentitySize {
		return nil, fmt.Errorf("identity size must be in [%d, %d], got %d",
			minIdentitySize, maxIdentitySize, codec.idSize)
	}

	if cipher.IVSize() <= 0 || cipher.Overhead() <= 0 {
		return nil, errors.New("payload cipher must declare positive IV and tag sizes")
	}

	return codec, nil
}

// IdentitySize returns the configured recipient id length in bytes.
func (c *Codec) IdentitySize() int {
	return c.idSize
}
