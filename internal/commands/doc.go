// Package commands provides the command-line interface for the gonv tool.
//
// It implements commands for:
//   - key generation
//   - encryption
//   - decryption
//
// The package handles command-line parsing, configuration validation,
// and environment variable binding through cobra.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/idelchi/gogen/pkg/cobraext"
	"github.com/idelchi/gonv/internal/config"
)

// validatable adapts *config.Config to the cobraext.Validator interface,
// which expects Validate to take the value being validated as an argument.
type validatable struct {
	*config.Config `mapstructure:",squash"`
}

// Validate implements cobraext.Validator by delegating to Config.Validate.
func (v *validatable) Validate(any) error {
	return v.Config.Validate()
}

// preRun returns a PreRunE handler that resolves positional args into
// cfg.Files and validates the configuration.
func preRun(cfg *config.Config) func(*cobra.Command, []string) error {
	return func(_ *cobra.Command, args []string) error {
		cfg.Files = args

		return cobraext.Validate(&validatable{cfg}, cfg)
	}
}
