package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
)

// AtomicWriteFile replaces path with content via a synced temporary file in
// the same directory and a rename, so readers see either the old or the new
// file. validate, when non-nil, checks the bytes read back from the
// temporary file before the rename.
func AtomicWriteFile(path string, content []byte, validate func([]byte) error) error {
	if path == "" {
		return ErrEmptyOutputPath
	}

	path = filepath.Clean(path)
	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, dirPermUserGroupRX)
	if err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	mode := os.FileMode(filePermUserRW)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	tmpName := tmp.Name()

	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	_, err = tmp.Write(content)
	if err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	err = tmp.Sync()
	if err != nil {
		return fmt.Errorf("failed to sync temp file: %w", err)
	}

	err = tmp.Close()
	if err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if validate != nil {
		written, readErr := os.ReadFile(tmpName) //nolint:gosec // path created above
		if readErr != nil {
			return fmt.Errorf("failed to read back temp file: %w", readErr)
		}

		err = validate(written)
		if err != nil {
			return fmt.Errorf("refusing to write %s: %w", path, err)
		}
	}

	err = os.Chmod(tmpName, mode)
	if err != nil {
		return fmt.Errorf("failed to set mode on temp file: %w", err)
	}

	err = os.Rename(tmpName, path)
	if err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}

	return nil
}
