package envelope

import (
	"encoding/binary"
	"fmt"
)

// keySizeFieldLen is the per-record wrapped-key length prefix.
const keySizeFieldLen = 2

// recipientCodec reads and writes per-recipient records:
// id (idSize bytes) || key size (2 bytes, big-endian) || wrapped key.
// Record sizes derive from the identity size fixed at Codec construction.
type recipientCodec struct {
	idSize int
}

// recordSize returns the encoded size of one record holding a wrapped key of
// the given length.
func (rc recipientCodec) recordSize(wrappedLen int) int {
	return rc.idSize + keySizeFieldLen + wrappedLen
}

// encode writes one record at dst[offset:] and returns the new offset.
// The caller has already validated id length and wrapped-key length and
// sized dst accordingly.
func (rc recipientCodec) encode(dst []byte, offset int, id, wrapped []byte) int {
	offset += copy(dst[offset:], id)

	binary.BigEndian.PutUint16(dst[offset:], uint16(len(wrapped)))
	offset += keySizeFieldLen

	offset += copy(dst[offset:], wrapped)

	return offset
}

// decodeNext parses one record at data[offset:] and returns it with the new
// offset. Every read is bounds-checked before it happens, and the declared
// wrapped-key length is sanity-checked before any allocation, so corrupted
// input cannot trigger oversized allocations or cryptographic work.
func (rc recipientCodec) decodeNext(data []byte, offset int) (id, wrapped []byte, newOffset int, err error) {
	if len(data)-offset < rc.idSize {
		return nil, nil, 0, fmt.Errorf("%w: %d bytes at offset %d, want %d",
			ErrTruncatedRecipientID, len(data)-offset, offset, rc.idSize)
	}

	id = data[offset : offset+rc.idSize]
	offset += rc.idSize

	if len(data)-offset < keySizeFieldLen {
		return nil, nil, 0, fmt.Errorf("%w: at offset %d", ErrTruncatedKeySizeField, offset)
	}

	wrappedLen := int(binary.BigEndian.Uint16(data[offset:]))
	offset += keySizeFieldLen

	if wrappedLen == 0 || wrappedLen > MaxWrappedKeySize {
		return nil, nil, 0, fmt.Errorf("%w: %d", ErrInvalidWrappedKeyLength, wrappedLen)
	}

	if len(data)-offset < wrappedLen {
		return nil, nil, 0, fmt.Errorf("%w: %d bytes at offset %d, want %d",
			ErrTruncatedWrappedKey, len(data)-offset, offset, wrappedLen)
	}

	wrapped = data[offset : offset+wrappedLen]
	offset += wrappedLen

	return id, wrapped, offset, nil
}
