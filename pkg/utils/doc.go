// Package utils provides utility packages for common operations.
//
//   - envvar: ${VAR} expansion in configuration values
//   - logging: logrus setup for stderr diagnostics
//   - notify: Formatted message display with symbols, colors, and timing
//   - timer: Execution time tracking for single and multi-stage operations
package utils
