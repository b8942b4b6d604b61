// Package fsutil provides small filesystem helpers: home-relative path
// expansion and atomic file replacement.
package fsutil
