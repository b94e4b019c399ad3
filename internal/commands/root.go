package commands

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/gonv/internal/config"
	"github.com/idelchi/gonv/pkg/envelope"
)

// NewRootCommand creates the root command with common configuration.
// It sets up environment variable binding and flag handling.
func NewRootCommand(cfg *config.Config, version string) *cobra.Command {
	root := cobraext.NewDefaultRootCommand(version)

	root.Use = "gonv [flags] command [flags]"
	root.Short = "Multi-recipient file encryption utility"
	root.Long = `A file encryption utility where any one of several recipients can decrypt.
Each chunk is encrypted once; a per-recipient key wrap lets every listed
recipient recover it independently with their own private key.
Provides commands for key generation, encryption, and decryption.`

	root.Flags().IntP("parallel", "j", runtime.NumCPU(), "Number of parallel workers, defaults to number of CPUs")
	root.Flags().BoolP("quiet", "q", false, "Suppress non-error output")
	root.Flags().BoolP("delete", "d", false, "Delete the original file after successful encryption/decryption")
	root.Flags().Bool("stats", false, "Print processing statistics on completion")

	root.Flags().Int("id-size", envelope.DefaultIdentitySize, "Recipient identity size in bytes (4-32)")
	root.Flags().Int("chunk-size", defaultChunkSize, "Plaintext chunk size in bytes")

	root.Flags().StringP("key", "k", "", "Private key for decryption (32 bytes, hex-encoded)")
	root.Flags().
		StringP("key-file", "f", "", "Path to a file with the private key for decryption (32 bytes, hex-encoded)")

	root.Flags().String("encrypt-ext", ".enc", "Suffix to append to encrypted files")
	root.Flags().String("decrypt-ext", "", "Suffix to append to decrypted files, after stripping the encrypted suffix")

	root.AddCommand(NewKeygenCommand(), NewEncryptCommand(cfg), NewDecryptCommand(cfg))

	return root
}

// defaultChunkSize is the plaintext granularity of one envelope.
const defaultChunkSize = 64 * 1024
