// Package netretry classifies transport failures reported by git as transient or permanent.
package netretry

import (
	"regexp"
	"strings"
)

// serverErrorPattern matches HTTP 5xx codes but not port numbers such as ":5000".
var serverErrorPattern = regexp.MustCompile(`\b50[0-4]\b`)

// IsRetryable reports whether err (or the command output carried in its
// message) describes a transient network problem worth retrying.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	return IsRetryableOutput(err.Error())
}

// IsRetryableOutput applies the same classification to raw command output.
func IsRetryableOutput(output string) bool {
	if output == "" {
		return false
	}

	lowered := strings.ToLower(output)

	patterns := []string{
		"could not resolve host", "temporary failure in name resolution",
		"connection timed out", "operation timed out",
		"connection reset by peer", "connection refused",
		"the remote end hung up unexpectedly", "early eof",
		"rpc failed", "tls handshake timeout",
		"i/o timeout", "unexpected eof",
		"service unavailable", "bad gateway", "gateway timeout",
	}

	for _, pattern := range patterns {
		if strings.Contains(lowered, pattern) {
			return true
		}
	}

	return serverErrorPattern.MatchString(output)
}
