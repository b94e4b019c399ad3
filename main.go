// gonv is a multi-recipient file encryption utility.
package main

import (
	"fmt"
	"os"

	"github.com/idelchi/gonv/internal/commands"
	"github.com/idelchi/gonv/internal/config"
)

// version is injected at build time.
var version = "dev" //nolint:gochecknoglobals

func main() {
	cfg := &config.Config{}

	if err := commands.NewRootCommand(cfg, version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)

		os.Exit(1)
	}
}
