package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/spf13/cobra"

	"github.com/idelchi/gonv/pkg/envelope"
	"github.com/idelchi/gonv/pkg/keywrap"
)

// NewKeygenCommand creates a new cobra command for the keygen subcommand.
// It generates or derives a secp256k1 key pair and prints the private key,
// the public key, and the recipient id other parties address envelopes to.
func NewKeygenCommand() *cobra.Command {
	var (
		mnemonic string
		words    bool
		idSize   int
	)

	cmd := &cobra.Command{
		Use:     "keygen [flags]",
		Aliases: []string{"gen"},
		Short:   "Generate or derive an encryption key pair",
		Args:    cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			if words && mnemonic != "" {
				return fmt.Errorf("--words and --mnemonic are mutually exclusive")
			}

			if words {
				generated, err := keywrap.NewMnemonic()
				if err != nil {
					return err
				}

				fmt.Printf("mnemonic: %s\n", generated) //nolint:forbidigo

				mnemonic = generated
			}

			var (
				priv []byte
				err  error
			)

			if mnemonic != "" {
				priv, err = keywrap.DeriveKey(mnemonic)
			} else {
				priv, err = newPrivateKey()
			}

			if err != nil {
				return err
			}

			pub, err := keywrap.PublicKey(priv)
			if err != nil {
				return err
			}

			id, err := keywrap.RecipientID(pub, idSize)
			if err != nil {
				return err
			}

			fmt.Printf("private: %s\n", hex.EncodeToString(priv)) //nolint:forbidigo
			fmt.Printf("public:  %s\n", hex.EncodeToString(pub))  //nolint:forbidigo
			fmt.Printf("id:      %s\n", hex.EncodeToString(id))   //nolint:forbidigo

			return nil
		},
	}

	cmd.Flags().StringVar(&mnemonic, "mnemonic", "", "Derive the key pair from a BIP-39 mnemonic")
	cmd.Flags().BoolVar(&words, "words", false, "Generate a fresh BIP-39 mnemonic and derive the key pair from it")
	cmd.Flags().IntVar(&idSize, "id-size", envelope.DefaultIdentitySize, "Recipient identity size in bytes (4-32)")

	return cmd
}

// newPrivateKey generates a random secp256k1 private key.
func newPrivateKey() ([]byte, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, fmt.Errorf("generating key: %w", err)
	}

	return key.Serialize(), nil
}
