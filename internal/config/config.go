// Package config defines the runtime configuration for gonv and its
// validation rules.
package config

import (
	"encoding/hex"
	"fmt"
)

// Key selects the private key source for decryption. The two fields are
// mutually exclusive.
type Key struct {
	// String is the hex-encoded private key given directly on the command line.
	String string `mapstructure:"key" validate:"omitempty,hexadecimal,len=64,exclusive=File"`

	// File is the path to a file holding the hex-encoded private key.
	File string `mapstructure:"key-file"`
}

// Suffixes controls the output file naming.
type Suffixes struct {
	// Encrypt is appended to encrypted files.
	Encrypt string `mapstructure:"encrypt-ext"`

	// Decrypt is appended to decrypted files, after stripping the encrypted suffix.
	Decrypt string `mapstructure:"decrypt-ext"`
}

// Config holds the full runtime configuration.
type Config struct {
	// Parallel is the number of files processed concurrently.
	Parallel int `validate:"min=1"`

	// IDSize is the recipient identity length in bytes. Both sides of an
	// exchange must agree on it.
	IDSize int `mapstructure:"id-size" validate:"min=4,max=32"`

	// ChunkSize is the plaintext chunk size in bytes for encryption.
	ChunkSize int `mapstructure:"chunk-size" validate:"min=1024"`

	// Quiet suppresses non-error output.
	Quiet bool

	// Delete removes the input file after successful processing.
	Delete bool

	// Stats prints processing statistics on completion.
	Stats bool

	// Key is the private key source (decrypt only).
	Key Key `mapstructure:",squash"`

	// Suffixes controls the output file naming.
	Suffixes Suffixes `mapstructure:",squash"`

	// Recipients are hex-encoded compressed public keys (encrypt only).
	Recipients []string `mapstructure:"recipient"`

	// SignKey is an optional hex-encoded private key for signing payloads.
	SignKey string `mapstructure:"sign-key" validate:"omitempty,hexadecimal,len=64"`

	// VerifyKey is an optional hex-encoded public key for verifying payloads.
	VerifyKey string `mapstructure:"verify-key" validate:"omitempty,hexadecimal,len=66"`

	// Decrypt selects the decryption direction.
	Decrypt bool

	// Files are the positional arguments.
	Files []string `validate:"min=1"`
}

// Display reports whether the parsed configuration should be printed and the
// program exited. gonv defines no flag for this, so it is always false.
func (c *Config) Display() bool {
	return false
}

// Validate validates the configuration against the struct tags, then applies
// the semantic checks the tags cannot express.
func (c *Config) Validate() error {
	if err := validateStruct(c); err != nil {
		return err
	}

	if c.Decrypt {
		if c.Key.String == "" && c.Key.File == "" {
			return fmt.Errorf("decrypt: a private key is required (--key or --key-file)")
		}
	} else {
		if len(c.Recipients) == 0 {
			return fmt.Errorf("encrypt: at least one --recipient is required")
		}

		for _, recipient := range c.Recipients {
			raw, err := hex.DecodeString(recipient)
			if err != nil {
				return fmt.Errorf("recipient %q: %w", recipient, err)
			}

			const compressedKeySize = 33

			if len(raw) != compressedKeySize {
				return fmt.Errorf("recipient %q: must be %d bytes, got %d", recipient, compressedKeySize, len(raw))
			}
		}
	}

	return nil
}
