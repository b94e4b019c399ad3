// Package fileutil provides shared file operation helpers.
package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// WriteAtomic writes a file by streaming into a temporary file in the target
// directory and renaming it into place only on success. A failed write never
// leaves a partial output file behind.
func WriteAtomic(outPath string, perm os.FileMode, write func(io.Writer) error) (size int64, err error) {
	tmpFile, err := os.CreateTemp(filepath.Dir(outPath), ".tmp-*")
	if err != nil {
		return 0, fmt.Errorf("creating temporary file: %w", err)
	}

	tmpName := tmpFile.Name()

	defer func() {
		tmpFile.Close() //nolint:gosec // best-effort cleanup

		if err != nil {
			os.Remove(tmpName) //nolint:gosec // best-effort cleanup
		}
	}()

	if err := write(tmpFile); err != nil {
		return 0, err
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return 0, fmt.Errorf("setting file permissions: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return 0, fmt.Errorf("closing temporary file: %w", err)
	}

	if err := os.Rename(tmpName, outPath); err != nil {
		return 0, fmt.Errorf("renaming output file: %w", err)
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return 0, fmt.Errorf("stat output %q: %w", outPath, err)
	}

	return info.Size(), nil
}
