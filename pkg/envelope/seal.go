package envelope

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Seal encrypts one plaintext chunk for every recipient in the list and
// returns the assembled envelope. A single ephemeral key pair is generated
// per call and shared across all recipients; only the symmetric key wrap
// repeats per recipient.
//
// If senderPrivateKey is non-nil the plaintext is signed first and the
// signature is prepended to the protected payload (sign-then-encrypt), so
// the signature itself is confidentiality-protected.
//
// Assembly is all-or-nothing: on error no partial envelope is returned.
func (c *Codec) Seal(
	plaintext []byte,
	recipients []Recipient,
	chunkIndex uint64,
	last bool,
	contentKey []byte,
	senderPrivateKey []byte,
) ([]byte, error) {
	if err := c.validateSeal(recipients, chunkIndex, contentKey); err != nil {
		return nil, err
	}

	payload := plaintext

	if senderPrivateKey != nil {
		signature, err := c.wrapper.Sign(senderPrivateKey, plaintext)
		if err != nil {
			return nil, fmt.Errorf("signing payload: %w", err)
		}

		signed := make([]byte, 0, len(signature)+len(plaintext))
		signed = append(signed, signature...)
		signed = append(signed, plaintext...)
		payload = signed
	}

	if len(payload) > maxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(payload))
	}

	ephemeralPriv, ephemeralPub, err := c.wrapper.GenerateEphemeral()
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral key pair: %w", err)
	}

	defer wipe(ephemeralPriv)

	if len(ephemeralPub) != EphemeralKeySize {
		return nil, fmt.Errorf("ephemeral public key must be %d bytes, got %d",
			EphemeralKeySize, len(ephemeralPub))
	}

	wrapped, err := c.wrapAll(recipients, contentKey, ephemeralPriv)
	if err != nil {
		return nil, err
	}

	rc := recipientCodec{idSize: c.idSize}

	recordsSize := uint64(0)

	for _, wk := range wrapped {
		var ok bool

		recordsSize, ok = addChecked(recordsSize, uint64(rc.recordSize(len(wk))))
		if !ok {
			return nil, ErrRecipientHeadersSizeOverflow
		}
	}

	encryptedSize := uint64(len(payload)) + uint64(c.cipher.Overhead())

	total, ok := addChecked(HeaderSize, recordsSize)
	if ok {
		total, ok = addChecked(total, uint64(c.cipher.IVSize())+encryptedSize)
	}

	if !ok || total > maxPayloadSize {
		return nil, ErrEnvelopeSizeOverflow
	}

	header := Header{
		Version:            Version,
		RecipientCount:     uint16(len(recipients)),
		ChunkIndex:         uint32(chunkIndex),
		OriginalSize:       uint32(len(payload)),
		EncryptedSize:      uint32(encryptedSize),
		Last:               last,
		EphemeralPublicKey: ephemeralPub,
	}

	// One allocation for the whole envelope; records land at computed
	// offsets behind the header, and the written prefix becomes the AAD.
	buf := make([]byte, HeaderSize+int(recordsSize), int(total))
	header.encode(buf)

	offset := HeaderSize

	for i, wk := range wrapped {
		offset = rc.encode(buf, offset, recipients[i].ID, wk)
	}

	sealed, err := c.cipher.Seal(contentKey, payload, buf[:offset])
	if err != nil {
		return nil, fmt.Errorf("encrypting payload: %w", err)
	}

	if len(sealed) != c.cipher.IVSize()+len(payload)+c.cipher.Overhead() {
		return nil, fmt.Errorf("payload cipher produced %d bytes, want %d",
			len(sealed), c.cipher.IVSize()+len(payload)+c.cipher.Overhead())
	}

	return append(buf, sealed...), nil
}

// validateSeal checks caller parameters in a fixed order, each failing
// before any cryptographic work happens.
func (c *Codec) validateSeal(recipients []Recipient, chunkIndex uint64, contentKey []byte) error {
	if len(recipients) < 1 || len(recipients) > MaxRecipients {
		return fmt.Errorf("%w: %d, want 1..%d", ErrInvalidRecipientCount, len(recipients), MaxRecipients)
	}

	if len(contentKey) != ContentKeySize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrInvalidContentKeySize, len(contentKey), ContentKeySize)
	}

	if chunkIndex > MaxChunkIndex {
		return fmt.Errorf("%w: %d", ErrInvalidChunkIndex, chunkIndex)
	}

	seen := make(map[string]struct{}, len(recipients))

	for _, recipient := range recipients {
		if _, dup := seen[string(recipient.ID)]; dup {
			return fmt.Errorf("%w: %x", ErrDuplicateRecipientID, recipient.ID)
		}

		seen[string(recipient.ID)] = struct{}{}
	}

	// Checked explicitly up front: a mismatched identity size must not
	// surface later as a corrupt record layout.
	for _, recipient := range recipients {
		if len(recipient.ID) != c.idSize {
			return fmt.Errorf("%w: %d bytes, want %d", ErrRecipientIDSizeMismatch, len(recipient.ID), c.idSize)
		}
	}

	return nil
}

// wrapAll wraps the content key for every recipient. Wraps run concurrently
// but each result lands in its originally assigned slot, so record order on
// the wire always matches recipient input order.
func (c *Codec) wrapAll(recipients []Recipient, contentKey, ephemeralPriv []byte) ([][]byte, error) {
	wrapped := make([][]byte, len(recipients))

	group := errgroup.Group{}
	group.SetLimit(runtime.NumCPU())

	for i, recipient := range recipients {
		group.Go(func() error {
			// The recipient id is the wrap AAD: it binds each wrapped key to
			// its owner so records cannot be reordered or swapped.
			wk, err := c.wrapper.Wrap(recipient.PublicKey, contentKey, ephemeralPriv, recipient.ID)
			if err != nil {
				return fmt.Errorf("wrapping content key for recipient %x: %w", recipient.ID, err)
			}

			if len(wk) == 0 || len(wk) > MaxWrappedKeySize {
				return fmt.Errorf("%w: wrapper produced %d bytes", ErrInvalidWrappedKeyLength, len(wk))
			}

			wrapped[i] = wk

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return wrapped, nil
}
