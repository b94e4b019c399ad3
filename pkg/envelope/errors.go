package envelope

import "errors"

// Structural errors: the input bytes are malformed.
var (
	// ErrMalformedHeader is returned when fewer than HeaderSize bytes are available to decode.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrMagicMismatch is returned when the envelope does not start with the magic bytes.
	ErrMagicMismatch = errors.New("invalid envelope magic")
	// ErrUnsupportedVersion is returned when the envelope version is not supported.
	ErrUnsupportedVersion = errors.New("unsupported envelope version")
	// ErrEnvelopeTooSmall is returned when the input is shorter than a header.
	ErrEnvelopeTooSmall = errors.New("envelope too small")
	// ErrEnvelopeTooSmallForPayload is returned when the declared payload does not fit the input.
	ErrEnvelopeTooSmallForPayload = errors.New("envelope too small for declared payload")
	// ErrTruncatedRecipientID is returned when a recipient record is cut short in its id.
	ErrTruncatedRecipientID = errors.New("truncated recipient id")
	// ErrTruncatedKeySizeField is returned when a recipient record is cut short in its key-size field.
	ErrTruncatedKeySizeField = errors.New("truncated wrapped-key size field")
	// ErrTruncatedWrappedKey is returned when a recipient record is cut short in its wrapped key.
	ErrTruncatedWrappedKey = errors.New("truncated wrapped key")
)

// Semantic errors: the caller's parameters are inconsistent.
var (
	// ErrInvalidRecipientCount is returned when the recipient count is outside [1, MaxRecipients].
	ErrInvalidRecipientCount = errors.New("invalid recipient count")
	// ErrInvalidContentKeySize is returned when the content key is not ContentKeySize bytes.
	ErrInvalidContentKeySize = errors.New("invalid content key size")
	// ErrInvalidChunkIndex is returned when the chunk index does not fit in 32 bits.
	ErrInvalidChunkIndex = errors.New("invalid chunk index")
	// ErrInvalidWrappedKeyLength is returned when a wrapped key length is zero or implausibly large.
	ErrInvalidWrappedKeyLength = errors.New("invalid wrapped key length")
	// ErrDuplicateRecipientID is returned when two recipients share an id.
	ErrDuplicateRecipientID = errors.New("duplicate recipient id")
	// ErrRecipientIDSizeMismatch is returned when a recipient id does not match the configured identity size.
	ErrRecipientIDSizeMismatch = errors.New("recipient id size mismatch")
)

// Capacity errors: sizes would overflow the addressable range.
var (
	// ErrPayloadTooLarge is returned when the protected payload exceeds 2^31-1 bytes.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrRecipientHeadersSizeOverflow is returned when the recipient records would overflow in total size.
	ErrRecipientHeadersSizeOverflow = errors.New("recipient headers size overflow")
	// ErrEnvelopeSizeOverflow is returned when the total envelope size would overflow.
	ErrEnvelopeSizeOverflow = errors.New("envelope size overflow")
)

// Cryptographic errors: tampering, a wrong key, or a wrong recipient.
// These deliberately carry no detail about which byte differed.
var (
	// ErrAuthenticationFailed is returned when AEAD authentication or key unwrap fails.
	ErrAuthenticationFailed = errors.New("authentication failed")
	// ErrInvalidSignature is returned when the sender signature does not verify.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrRecipientNotFound is returned when no recipient record matches the requested id.
	ErrRecipientNotFound = errors.New("recipient not found")
	// ErrPayloadTooShortForSignature is returned when a signed payload is shorter than a signature.
	ErrPayloadTooShortForSignature = errors.New("payload too short for signature")
)
