package processor

import (
	"bufio"
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/idelchi/gonv/pkg/envelope"
	"github.com/idelchi/gonv/pkg/gcm"
)

// maxFrameSize bounds a single length-prefixed envelope on read, so a
// corrupted length field cannot trigger a giant allocation.
const maxFrameSize = 1 << 30

// encryptStream splits the input into chunks and writes one length-prefixed
// envelope per chunk. Each chunk gets a fresh random content key; the chunk
// index increments from zero and the final envelope carries the last flag.
// Empty input still produces a single empty last chunk, so every encrypted
// file is self-terminating.
func (p *Processor) encryptStream(r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)

	current, err := readChunk(reader, p.cfg.ChunkSize)
	atEOF := errors.Is(err, io.EOF)

	if err != nil && !atEOF {
		return fmt.Errorf("reading plaintext: %w", err)
	}

	if current == nil {
		current = []byte{}
	}

	for index := uint64(0); ; index++ {
		last := atEOF

		var next []byte

		if !atEOF {
			var nerr error

			next, nerr = readChunk(reader, p.cfg.ChunkSize)
			atEOF = errors.Is(nerr, io.EOF)

			if nerr != nil && !atEOF {
				return fmt.Errorf("reading plaintext: %w", nerr)
			}

			// The chunk just sealed was the exact end of input.
			if next == nil && atEOF {
				last = true
			}
		}

		if err := p.sealChunk(w, current, index, last); err != nil {
			return err
		}

		if last {
			return nil
		}

		current = next
	}
}

// sealChunk encrypts one chunk under a fresh content key and writes it with
// a 4-byte big-endian length prefix.
func (p *Processor) sealChunk(w io.Writer, chunk []byte, index uint64, last bool) error {
	contentKey := make([]byte, gcm.KeySize)
	if _, err := rand.Read(contentKey); err != nil {
		return fmt.Errorf("generating content key: %w", err)
	}

	env, err := p.codec.Seal(chunk, p.recipients, index, last, contentKey, p.signKey)

	for i := range contentKey {
		contentKey[i] = 0
	}

	if err != nil {
		return fmt.Errorf("sealing chunk %d: %w", index, err)
	}

	if err := binary.Write(w, binary.BigEndian, uint32(len(env))); err != nil {
		return fmt.Errorf("writing envelope size: %w", err)
	}

	if _, err := w.Write(env); err != nil {
		return fmt.Errorf("writing envelope: %w", err)
	}

	return nil
}

// decryptStream reads length-prefixed envelopes sequentially, opens each for
// our recipient id, and enforces the chunk sequencing the envelopes declare:
// indexes from zero without gaps, exactly one last chunk, nothing after it.
func (p *Processor) decryptStream(r io.Reader, w io.Writer) error {
	reader := bufio.NewReader(r)

	seenLast := false

	for index := uint64(0); ; index++ {
		var frameLen uint32

		err := binary.Read(reader, binary.BigEndian, &frameLen)
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return fmt.Errorf("reading envelope size: %w", err)
		}

		if seenLast {
			return errors.New("data after last chunk")
		}

		if frameLen < envelope.HeaderSize || frameLen > maxFrameSize {
			return fmt.Errorf("implausible envelope size %d", frameLen)
		}

		frame := make([]byte, frameLen)
		if _, err := io.ReadFull(reader, frame); err != nil {
			return fmt.Errorf("reading envelope: %w", err)
		}

		plaintext, header, err := p.codec.Open(frame, p.recipientID, p.privateKey, p.verifyKey)
		if err != nil {
			return fmt.Errorf("opening chunk %d: %w", index, err)
		}

		if uint64(header.ChunkIndex) != index {
			return fmt.Errorf("chunk out of order: got %d, want %d", header.ChunkIndex, index)
		}

		seenLast = header.Last

		if _, err := w.Write(plaintext); err != nil {
			return fmt.Errorf("writing plaintext: %w", err)
		}
	}

	if !seenLast {
		return errors.New("missing last chunk")
	}

	return nil
}

// readChunk reads up to size bytes. It returns io.EOF alongside a short
// final chunk, and (nil, io.EOF) when no data remains.
func readChunk(r io.Reader, size int) ([]byte, error) {
	buf := make([]byte, size)

	n, err := io.ReadFull(r, buf)

	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, io.ErrUnexpectedEOF):
		return buf[:n], io.EOF
	case errors.Is(err, io.EOF):
		return nil, io.EOF
	default:
		return nil, err
	}
}
