package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/gonv/internal/config"
	"github.com/idelchi/gonv/internal/logic"
)

// NewEncryptCommand creates a new cobra command for the encrypt subcommand.
func NewEncryptCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "encrypt [flags] files...",
		Aliases: []string{"enc"},
		Short:   "Encrypt files for one or more recipients",
		Args:    cobra.MinimumNArgs(1),
		PreRunE: preRun(cfg),
		RunE: func(_ *cobra.Command, _ []string) error {
			return logic.Run(cfg)
		},
	}

	cmd.Flags().StringArrayP("recipient", "r", nil, "Recipient public key (33 bytes, hex-encoded); repeatable")
	cmd.Flags().String("sign-key", "", "Private key for signing payloads (32 bytes, hex-encoded)")

	return cmd
}
