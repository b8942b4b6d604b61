// Package envvar expands ${VAR} placeholders in configuration values.
package envvar

import (
	"os"
	"regexp"
)

var pattern = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Expand replaces ${VAR_NAME} placeholders with the variable's value.
// Unset variables expand to the empty string; a bare $VAR is left alone.
func Expand(value string) string {
	return expandWith(value, os.Getenv)
}

// ExpandAll expands every pointed-to value in place.
func ExpandAll(values ...*string) {
	for _, value := range values {
		if value != nil {
			*value = Expand(*value)
		}
	}
}

func expandWith(value string, lookup func(string) string) string {
	if value == "" {
		return value
	}

	return pattern.ReplaceAllStringFunc(value, func(match string) string {
		return lookup(match[2 : len(match)-1])
	})
}
