package fsutil

import "errors"

// ErrEmptyOutputPath is returned when a write targets an empty path.
var ErrEmptyOutputPath = errors.New("output path cannot be empty")

const (
	dirPermUserGroupRX = 0o750
	filePermUserRW     = 0o600
)
