package envelope

import "fmt"

// Open decrypts an envelope for the recipient identified by recipientID,
// returning the plaintext and the parsed header metadata.
//
// If senderPublicKey is non-nil the protected payload is expected to carry a
// prepended signature, which is verified against it and stripped from the
// returned plaintext.
func (c *Codec) Open(
	data []byte,
	recipientID []byte,
	privateKey []byte,
	senderPublicKey []byte,
) ([]byte, *Header, error) {
	if len(data) < HeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes", ErrEnvelopeTooSmall, len(data))
	}

	header, err := decodeHeader(data)
	if err != nil {
		return nil, nil, err
	}

	if header.RecipientCount < 1 || header.RecipientCount > MaxRecipients {
		return nil, nil, fmt.Errorf("%w: %d", ErrInvalidRecipientCount, header.RecipientCount)
	}

	if uint64(HeaderSize)+uint64(c.cipher.IVSize())+uint64(header.EncryptedSize) > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: %d bytes, %d encrypted", ErrEnvelopeTooSmallForPayload,
			len(data), header.EncryptedSize)
	}

	wrapped, offset, err := c.scanRecipients(data, header, recipientID)
	if err != nil {
		return nil, nil, err
	}

	// The AAD is exactly the bytes consumed so far: header plus every
	// recipient record.
	aad := data[:offset]

	if uint64(offset)+uint64(c.cipher.IVSize())+uint64(header.EncryptedSize) > uint64(len(data)) {
		return nil, nil, fmt.Errorf("%w: payload section out of bounds", ErrEnvelopeTooSmallForPayload)
	}

	sealed := data[offset : offset+c.cipher.IVSize()+int(header.EncryptedSize)]

	contentKey, err := c.wrapper.Unwrap(privateKey, wrapped, header.EphemeralPublicKey, recipientID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: unwrapping content key", ErrAuthenticationFailed)
	}

	payload, err := c.cipher.Open(contentKey, sealed, aad)

	wipe(contentKey)

	if err != nil {
		return nil, nil, fmt.Errorf("%w: opening payload", ErrAuthenticationFailed)
	}

	if senderPublicKey == nil {
		return payload, header, nil
	}

	signatureSize := c.wrapper.SignatureSize()

	if len(payload) < signatureSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, want at least %d",
			ErrPayloadTooShortForSignature, len(payload), signatureSize)
	}

	signature, plaintext := payload[:signatureSize], payload[signatureSize:]

	if !c.wrapper.Verify(senderPublicKey, plaintext, signature) {
		return nil, nil, ErrInvalidSignature
	}

	return plaintext, header, nil
}

// scanRecipients walks every recipient record starting at HeaderSize,
// returning the matching wrapped key and the offset past the last record.
// The scan always consumes all records, even after a match: the payload
// offset depends on it, and stopping early would leak the match position.
func (c *Codec) scanRecipients(data []byte, header *Header, recipientID []byte) ([]byte, int, error) {
	rc := recipientCodec{idSize: c.idSize}

	offset := HeaderSize

	var wrapped []byte

	for i := 0; i < int(header.RecipientCount); i++ {
		id, wk, next, err := rc.decodeNext(data, offset)
		if err != nil {
			return nil, 0, err
		}

		if wrapped == nil && constantTimeEqual(id, recipientID) {
			wrapped = wk
		}

		offset = next
	}

	if wrapped == nil {
		return nil, 0, ErrRecipientNotFound
	}

	return wrapped, offset, nil
}
