// Package logic implements the core business logic for encryption/decryption runs.
package logic

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/idelchi/gonv/internal/config"
	"github.com/idelchi/gonv/internal/processor"
)

// Run is the main logic of the application.
func Run(cfg *config.Config) error {
	start := time.Now()

	proc, err := processor.New(cfg)
	if err != nil {
		return fmt.Errorf("creating processor: %w", err)
	}

	processed, errored, totalSize, err := proc.ProcessFiles()

	if cfg.Stats {
		printStats(processed, errored, totalSize, time.Since(start))
	}

	if err != nil {
		return fmt.Errorf("running logic: %w", err)
	}

	return nil
}

// printStats summarizes a completed run.
func printStats(processed, errored int, totalSize int64, elapsed time.Duration) {
	fmt.Printf("Processed %d file(s) (%s) in %s, %d error(s)\n", //nolint:forbidigo
		processed, humanize.Bytes(uint64(totalSize)), elapsed.Round(time.Millisecond), errored)
}
