package fileutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/afero"
)

// FileExists checks if a regular file exists at the given path.
func FileExists(fs afero.Fs, path string) (bool, error) {
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check if file exists: %w", err)
	}
	return !info.IsDir(), nil
}

// IsYAMLFile reports whether the path carries a YAML file extension.
func IsYAMLFile(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
