package netretry_test

import (
	"errors"
	"testing"

	"github.com/bacalhau-project/bacboot/pkg/client/netretry"
	"github.com/stretchr/testify/assert"
)

func TestIsRetryable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"dns", errors.New("fatal: unable to access 'https://github.com/x/': Could not resolve host: github.com"), true},
		{"hung up", errors.New("fatal: the remote end hung up unexpectedly"), true},
		{"early eof", errors.New("fatal: early EOF"), true},
		{"rpc", errors.New("error: RPC failed; curl 56 GnuTLS recv error"), true},
		{"http 502", errors.New("The requested URL returned error: 502"), true},
		{"timeout", errors.New("Failed to connect to github.com port 443: Connection timed out"), true},
		{"port number is not a status", errors.New("dial tcp 127.0.0.1:5000: refused to cooperate"), false},
		{"not found", errors.New("remote: Repository not found."), false},
		{"auth", errors.New("fatal: Authentication failed for 'https://github.com/x/'"), false},
		{"merge conflict", errors.New("fatal: Not possible to fast-forward, aborting."), false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, testCase.want, netretry.IsRetryable(testCase.err))
		})
	}
}

func TestIsRetryableOutput_Empty(t *testing.T) {
	t.Parallel()

	assert.False(t, netretry.IsRetryableOutput(""))
}
