package domain

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveOutputPath picks where the PDF for sourcePath is written.
// output may name a file or a directory (existing, or ending in a path
// separator); outputDir is the configured default directory. With
// neither, the PDF goes next to the source.
func ResolveOutputPath(sourcePath, output, outputDir string) string {
	name := OutputFilename(sourcePath)
	switch {
	case output != "":
		if info, err := os.Stat(output); err == nil && info.IsDir() {
			return filepath.Join(output, name)
		}
		if strings.HasSuffix(output, string(os.PathSeparator)) {
			return filepath.Join(output, name)
		}
		return output
	case outputDir != "":
		return filepath.Join(outputDir, name)
	default:
		return filepath.Join(filepath.Dir(sourcePath), name)
	}
}

// CheckOverwrite fails with ErrOutputExists when path exists and
// overwrite is false. Stat errors other than not-exist are returned.
func CheckOverwrite(path string, overwrite bool) error {
	_, err := os.Stat(path)
	switch {
	case err == nil && !overwrite:
		return fmt.Errorf("%s %w", path, ErrOutputExists)
	case err == nil, errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("check output path: %w", err)
	}
}
