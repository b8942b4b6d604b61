package git_test

import (
	"context"
	"errors"
	"testing"

	"github.com/bacalhau-project/bacboot/pkg/client/git"
	"github.com/bacalhau-project/bacboot/pkg/cmd/runner"
	"github.com/bacalhau-project/bacboot/pkg/cmd/runner/runnertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errExit = errors.New("exit status 128")

func TestClient_Clone(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().On("git clone")
	client := git.NewClient(fake)

	require.NoError(t, client.Clone(context.Background(), "https://example.com/b.git", "/tmp/b"))
	assert.Equal(t, []string{"git clone --quiet https://example.com/b.git /tmp/b"}, fake.Calls())
}

func TestClient_CloneFailureCarriesOutput(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().On("git clone", runnertest.Response{
		Stderr: "fatal: unable to access: Could not resolve host: github.com\n",
		Err:    errExit,
	})

	err := git.NewClient(fake).Clone(context.Background(), "https://github.com/x", "/tmp/b")

	require.ErrorIs(t, err, runner.ErrCommandFailed)
	assert.ErrorContains(t, err, "Could not resolve host")
}

func TestClient_ModifiedFiles(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().On("git -C /tmp/b status", runnertest.Response{Stdout: " M site.yml\n M vars/main.yml\n"})

	files, err := git.NewClient(fake).ModifiedFiles(context.Background(), "/tmp/b")

	require.NoError(t, err)
	assert.Equal(t, []string{" M site.yml", " M vars/main.yml"}, files)
	assert.Equal(t, []string{"git -C /tmp/b status --porcelain --untracked-files=no"}, fake.Calls())
}

func TestClient_ModifiedFilesClean(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().On("git -C /tmp/b status", runnertest.Response{Stdout: "\n"})

	files, err := git.NewClient(fake).ModifiedFiles(context.Background(), "/tmp/b")

	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestClient_CommitsBehind(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().On("git -C /tmp/b rev-list", runnertest.Response{Stdout: "4\n"})

	count, err := git.NewClient(fake).CommitsBehind(context.Background(), "/tmp/b")

	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Equal(t, []string{"git -C /tmp/b rev-list --count HEAD..@{u}"}, fake.Calls())
}

func TestClient_CommitsBehindGarbage(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().On("git -C /tmp/b rev-list", runnertest.Response{Stdout: "many"})

	_, err := git.NewClient(fake).CommitsBehind(context.Background(), "/tmp/b")

	require.ErrorIs(t, err, git.ErrUnexpectedOutput)
}

func TestClient_FetchAndPull(t *testing.T) {
	t.Parallel()

	fake := runnertest.New().On("git -C /tmp/b fetch").On("git -C /tmp/b pull")
	client := git.NewClient(fake)

	require.NoError(t, client.Fetch(context.Background(), "/tmp/b"))
	require.NoError(t, client.Pull(context.Background(), "/tmp/b"))
	assert.Equal(t, []string{
		"git -C /tmp/b fetch --quiet",
		"git -C /tmp/b pull --quiet --ff-only",
	}, fake.Calls())
}
