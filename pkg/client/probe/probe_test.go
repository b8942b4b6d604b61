package probe_test

import (
	"bytes"
	"context"
	"os/exec"
	"testing"

	"github.com/bacalhau-project/bacboot/pkg/client/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookupFrom(installed ...string) func(string) (string, error) {
	return func(name string) (string, error) {
		for _, candidate := range installed {
			if candidate == name {
				return "/usr/bin/" + name, nil
			}
		}

		return "", exec.ErrNotFound
	}
}

func TestPathProber_IsInstalled(t *testing.T) {
	t.Parallel()

	prober := probe.NewPathProberWithLookup(lookupFrom("git"))

	assert.True(t, prober.IsInstalled("git"))
	assert.False(t, prober.IsInstalled("ansible"))
}

func TestPathProber_RequireAllPresent(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	prober := probe.NewPathProberWithLookup(lookupFrom("ansible", "ansible-playbook"))

	require.NoError(t, prober.Require(context.Background(), &out, "ansible", "ansible-playbook"))
	assert.Contains(t, out.String(), "✔ ansible found")
	assert.Contains(t, out.String(), "✔ ansible-playbook found")
}

func TestPathProber_RequireListsMissing(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	prober := probe.NewPathProberWithLookup(lookupFrom("ansible"))

	err := prober.Require(context.Background(), &out, "ansible", "ansible-playbook", "ansible-galaxy")

	require.ErrorIs(t, err, probe.ErrNotInstalled)
	assert.EqualError(t, err, "not installed: ansible-playbook, ansible-galaxy")
	assert.Contains(t, out.String(), "✗ ansible-galaxy missing")
}

func TestPathProber_RequireNothing(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer

	require.NoError(t, probe.NewPathProber().Require(context.Background(), &out))
	assert.Empty(t, out.String())
}
