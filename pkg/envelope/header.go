package envelope

import (
	"encoding/binary"
	"fmt"
)

// Header field offsets within the fixed 64-byte header. All multi-byte
// integers are big-endian. Bytes [54, 64) are zero padding.
const (
	offMagic          = 0
	offVersion        = 4
	offRecipientCount = 6
	offChunkIndex     = 8
	offOriginalSize   = 12
	offEncryptedSize  = 16
	offFlags          = 20
	offEphemeralKey   = 21
)

const flagLast = 0x01

// Header holds the decoded envelope header.
type Header struct {
	// Version is the wire format version.
	Version uint16

	// RecipientCount is the number of recipient records following the header.
	RecipientCount uint16

	// ChunkIndex is the caller-assigned sequence number of this chunk.
	ChunkIndex uint32

	// OriginalSize is the protected payload length (signature plus plaintext).
	OriginalSize uint32

	// EncryptedSize is the ciphertext plus tag length.
	EncryptedSize uint32

	// Last is set on the final chunk of a sequence.
	Last bool

	// EphemeralPublicKey is the per-envelope ephemeral public key shared by
	// all recipients.
	EphemeralPublicKey []byte
}

// encode writes the header into dst, which must be at least HeaderSize bytes.
// The ephemeral public key must be EphemeralKeySize bytes; everything past it
// is zeroed.
func (h *Header) encode(dst []byte) {
	_ = dst[:HeaderSize]

	copy(dst[offMagic:], Magic)
	binary.BigEndian.PutUint16(dst[offVersion:], h.Version)
	binary.BigEndian.PutUint16(dst[offRecipientCount:], h.RecipientCount)
	binary.BigEndian.PutUint32(dst[offChunkIndex:], h.ChunkIndex)
	binary.BigEndian.PutUint32(dst[offOriginalSize:], h.OriginalSize)
	binary.BigEndian.PutUint32(dst[offEncryptedSize:], h.EncryptedSize)

	var flags byte

	if h.Last {
		flags |= flagLast
	}

	dst[offFlags] = flags

	copy(dst[offEphemeralKey:], h.EphemeralPublicKey)

	for i := offEphemeralKey + EphemeralKeySize; i < HeaderSize; i++ {
		dst[i] = 0
	}
}

// Inspect decodes an envelope's header without any key material or
// decryption. The returned metadata is unauthenticated until the envelope is
// opened.
func Inspect(data []byte) (*Header, error) {
	return decodeHeader(data)
}

// decodeHeader parses the fixed header from data. It enforces structural
// well-formedness only: magic, version, and length. Semantic range checks
// (recipient count, payload bounds) are the caller's job.
func decodeHeader(data []byte) (*Header, error) {
	if len(data) < HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrMalformedHeader, len(data), HeaderSize)
	}

	if string(data[offMagic:offMagic+len(Magic)]) != Magic {
		return nil, ErrMagicMismatch
	}

	version := binary.BigEndian.Uint16(data[offVersion:])
	if version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, version)
	}

	header := &Header{
		Version:            version,
		RecipientCount:     binary.BigEndian.Uint16(data[offRecipientCount:]),
		ChunkIndex:         binary.BigEndian.Uint32(data[offChunkIndex:]),
		OriginalSize:       binary.BigEndian.Uint32(data[offOriginalSize:]),
		EncryptedSize:      binary.BigEndian.Uint32(data[offEncryptedSize:]),
		Last:               data[offFlags]&flagLast != 0,
		EphemeralPublicKey: make([]byte, EphemeralKeySize),
	}

	copy(header.EphemeralPublicKey, data[offEphemeralKey:offEphemeralKey+EphemeralKeySize])

	return header, nil
}
