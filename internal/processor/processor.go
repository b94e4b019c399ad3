// Package processor drives chunked envelope encryption and decryption of
// files. Plaintext is split into chunks, each sealed into a self-contained
// envelope for every configured recipient; encrypted files are a sequence of
// length-prefixed envelopes.
package processor

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/idelchi/gogen/pkg/key"
	"github.com/idelchi/gonv/internal/config"
	"github.com/idelchi/gonv/internal/fileutil"
	"github.com/idelchi/gonv/pkg/envelope"
	"github.com/idelchi/gonv/pkg/gcm"
	"github.com/idelchi/gonv/pkg/keywrap"
)

// Processor handles the encryption and decryption of files.
type Processor struct {
	// cfg contains runtime configuration options.
	cfg *config.Config

	// codec seals and opens envelopes.
	codec *envelope.Codec

	// recipients is the resolved recipient list (encrypt only).
	recipients []envelope.Recipient

	// recipientID is the identity derived from our private key (decrypt only).
	recipientID []byte

	// privateKey is the raw decryption key (decrypt only).
	privateKey []byte

	// signKey is the optional payload signing key (encrypt only).
	signKey []byte

	// verifyKey is the optional sender public key (decrypt only).
	verifyKey []byte

	// results channels processing outcomes to the printer goroutine.
	results chan Result
}

// New creates a new Processor with the given configuration, resolving all
// key material up front.
func New(cfg *config.Config) (*Processor, error) {
	codec, err := envelope.New(keywrap.New(), gcm.New(), envelope.WithIdentitySize(cfg.IDSize))
	if err != nil {
		return nil, fmt.Errorf("creating envelope codec: %w", err)
	}

	processor := &Processor{
		cfg:     cfg,
		codec:   codec,
		results: make(chan Result, len(cfg.Files)),
	}

	if cfg.Decrypt {
		if err := processor.loadDecryptKeys(); err != nil {
			return nil, err
		}

		return processor, nil
	}

	if err := processor.loadEncryptKeys(); err != nil {
		return nil, err
	}

	return processor, nil
}

// loadDecryptKeys resolves the private key, the recipient identity derived
// from it, and the optional sender verification key.
func (p *Processor) loadDecryptKeys() error {
	var (
		privateKey []byte
		err        error
	)

	switch {
	case p.cfg.Key.String != "":
		privateKey, err = key.FromHex(p.cfg.Key.String)
	case p.cfg.Key.File != "":
		var raw []byte

		raw, err = os.ReadFile(p.cfg.Key.File)
		if err != nil {
			return fmt.Errorf("reading key file: %w", err)
		}

		privateKey, err = key.FromHex(strings.TrimSpace(string(raw)))
	}

	if err != nil {
		return fmt.Errorf("reading key: %w", err)
	}

	if len(privateKey) != keywrap.PrivateKeySize {
		return fmt.Errorf("decrypt: key must be %d bytes (%d hex characters)",
			keywrap.PrivateKeySize, 2*keywrap.PrivateKeySize)
	}

	publicKey, err := keywrap.PublicKey(privateKey)
	if err != nil {
		return fmt.Errorf("deriving public key: %w", err)
	}

	recipientID, err := keywrap.RecipientID(publicKey, p.cfg.IDSize)
	if err != nil {
		return fmt.Errorf("deriving recipient id: %w", err)
	}

	p.privateKey = privateKey
	p.recipientID = recipientID

	if p.cfg.VerifyKey != "" {
		p.verifyKey, err = key.FromHex(p.cfg.VerifyKey)
		if err != nil {
			return fmt.Errorf("reading verify key: %w", err)
		}
	}

	return nil
}

// loadEncryptKeys resolves the recipient list and the optional signing key.
func (p *Processor) loadEncryptKeys() error {
	p.recipients = make([]envelope.Recipient, 0, len(p.cfg.Recipients))

	for _, recipient := range p.cfg.Recipients {
		publicKey, err := key.FromHex(recipient)
		if err != nil {
			return fmt.Errorf("reading recipient key: %w", err)
		}

		id, err := keywrap.RecipientID(publicKey, p.cfg.IDSize)
		if err != nil {
			return fmt.Errorf("deriving recipient id: %w", err)
		}

		p.recipients = append(p.recipients, envelope.Recipient{ID: id, PublicKey: publicKey})
	}

	if p.cfg.SignKey != "" {
		signKey, err := key.FromHex(p.cfg.SignKey)
		if err != nil {
			return fmt.Errorf("reading sign key: %w", err)
		}

		p.signKey = signKey
	}

	return nil
}

// ProcessFiles concurrently processes all files specified in the
// configuration. Returns the number of successfully processed files, the
// number of errors, and the total output size.
func (p *Processor) ProcessFiles() (processed, errored int, totalSize int64, err error) {
	group := errgroup.Group{}
	group.SetLimit(p.cfg.Parallel)

	done := make(chan struct{})

	go func() {
		defer close(done)

		for result := range p.results {
			if result.Error != nil {
				errored++

				fmt.Fprintf(os.Stderr, "Error processing %q: %v\n", result.Input, result.Error)
			} else {
				processed++

				totalSize += result.OutputSize

				if !p.cfg.Quiet {
					fmt.Printf("Processed %q -> %q\n", result.Input, result.Output) //nolint:forbidigo
				}
			}

			if p.cfg.Delete && result.Error == nil {
				if err := os.Remove(result.Input); err != nil {
					fmt.Fprintf(os.Stderr, "Error deleting %q: %v\n", result.Input, err)
				}

				if !p.cfg.Quiet {
					fmt.Printf("Deleted %q\n", result.Input) //nolint:forbidigo
				}
			}
		}
	}()

	for _, file := range p.cfg.Files {
		group.Go(func() error {
			outPath := p.outputPath(file)

			size, err := p.processFile(file, outPath)
			if err != nil {
				p.results <- Result{Input: file, Error: err}

				return err
			}

			p.results <- Result{Input: file, Output: outPath, OutputSize: size}

			return nil
		})
	}

	err = group.Wait()

	close(p.results)

	<-done // Wait for printer to finish

	if err != nil {
		return processed, errored, totalSize, fmt.Errorf("processing files: %w", err)
	}

	return processed, errored, totalSize, nil
}

// processFile encrypts or decrypts a single file with an atomic write to the
// output path.
func (p *Processor) processFile(filename, outPath string) (int64, error) {
	inFile, err := os.Open(filepath.Clean(filename))
	if err != nil {
		return 0, fmt.Errorf("opening input file: %w", err)
	}
	defer inFile.Close()

	const ownerReadWrite = 0o600

	size, err := fileutil.WriteAtomic(outPath, ownerReadWrite, func(w io.Writer) error {
		if p.cfg.Decrypt {
			return p.decryptStream(inFile, w)
		}

		return p.encryptStream(inFile, w)
	})
	if err != nil {
		return 0, err
	}

	return size, nil
}

// outputPath generates the output file path based on the input filename
// and the configured suffixes for encryption/decryption.
func (p *Processor) outputPath(filename string) string {
	ext := p.cfg.Suffixes.Encrypt

	if p.cfg.Decrypt {
		filename = strings.TrimSuffix(filename, p.cfg.Suffixes.Encrypt)
		ext = p.cfg.Suffixes.Decrypt
	}

	return filepath.Join(filepath.Dir(filename),
		filepath.Base(filename)+ext)
}
