package fsutil

import (
	"fmt"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandHomePath expands a leading "~/" to the user's home directory and
// makes the result absolute.
func ExpandHomePath(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		usr, err := user.Current()
		if err != nil {
			return "", fmt.Errorf("failed to get current user: %w", err)
		}

		path = filepath.Join(usr.HomeDir, strings.TrimPrefix(strings.TrimPrefix(path, "~"), "/"))
	}

	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to convert to absolute path: %w", err)
	}

	return absPath, nil
}
