package overrides_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bacalhau-project/bacboot/pkg/io/overrides"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const versionKey = "bacalhau_version"

func newFile(t *testing.T) (*overrides.File, string) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "vars"), 0o750))

	return overrides.New(
		filepath.Join(dir, "vars", "overrides.yml"),
		filepath.Join(dir, "vars", "overrides.yml.dist"),
		versionKey,
		nil,
	), dir
}

func decode(t *testing.T, path string) map[string]any {
	t.Helper()

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(content, &decoded))

	return decoded
}

func TestFile_PinDerivesFromTemplate(t *testing.T) {
	t.Parallel()

	file, dir := newFile(t)
	template := "# bundle overrides\nbacalhau_version: \"latest\"\nnode_type: compute # role\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vars", "overrides.yml.dist"), []byte(template), 0o600))

	require.NoError(t, file.Pin("v1.2.3"))

	decoded := decode(t, file.Path())
	assert.Equal(t, "v1.2.3", decoded[versionKey])
	assert.Equal(t, "compute", decoded["node_type"])

	content, err := os.ReadFile(file.Path())
	require.NoError(t, err)
	assert.Contains(t, string(content), "# bundle overrides")
	assert.Contains(t, string(content), "# role")

	tmpl, err := os.ReadFile(filepath.Join(dir, "vars", "overrides.yml.dist"))
	require.NoError(t, err)
	assert.Equal(t, template, string(tmpl), "template must never be modified")
}

func TestFile_PinWithoutTemplate(t *testing.T) {
	t.Parallel()

	file, _ := newFile(t)

	require.NoError(t, file.Pin("v1.0.0"))

	assert.Equal(t, map[string]any{versionKey: "v1.0.0"}, decode(t, file.Path()))
}

func TestFile_PinAppendsMissingKey(t *testing.T) {
	t.Parallel()

	file, _ := newFile(t)
	require.NoError(t, os.WriteFile(file.Path(), []byte("other: value\n"), 0o600))

	require.NoError(t, file.Pin("1.5.0"))

	assert.Equal(t, map[string]any{"other": "value", versionKey: "1.5.0"}, decode(t, file.Path()))
}

func TestFile_PinRemovesDuplicateKeys(t *testing.T) {
	t.Parallel()

	file, _ := newFile(t)
	existing := "bacalhau_version: \"v0.9\"\nother: 1\nbacalhau_version: \"v0.8\"\n"
	require.NoError(t, os.WriteFile(file.Path(), []byte(existing), 0o600))

	require.NoError(t, file.Pin("v1.1"))

	content, err := os.ReadFile(file.Path())
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(content), versionKey))
	assert.Equal(t, "v1.1", decode(t, file.Path())[versionKey])
}

func TestFile_PinKeepsNumericLookingVersionsAsStrings(t *testing.T) {
	t.Parallel()

	file, _ := newFile(t)

	require.NoError(t, file.Pin("1.10"))

	assert.Equal(t, "1.10", decode(t, file.Path())[versionKey])
}

func TestFile_ResetToLatestOverwritesStalePin(t *testing.T) {
	t.Parallel()

	file, _ := newFile(t)
	require.NoError(t, file.Pin("v1.0.0"))

	written, err := file.ResetToLatest()

	require.NoError(t, err)
	assert.True(t, written)

	version, present, err := file.Version()
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, "latest", version)
}

func TestFile_ResetToLatestWithoutFileWritesNothing(t *testing.T) {
	t.Parallel()

	file, dir := newFile(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vars", "overrides.yml.dist"), []byte("a: b\n"), 0o600))

	written, err := file.ResetToLatest()

	require.NoError(t, err)
	assert.False(t, written)

	exists, err := file.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFile_RejectsNonMapping(t *testing.T) {
	t.Parallel()

	file, _ := newFile(t)
	require.NoError(t, os.WriteFile(file.Path(), []byte("- a\n- b\n"), 0o600))

	require.ErrorIs(t, file.Pin("v1"), overrides.ErrNotMapping)
}

func TestFile_VersionAbsent(t *testing.T) {
	t.Parallel()

	file, _ := newFile(t)

	_, present, err := file.Version()

	require.NoError(t, err)
	assert.False(t, present)
}

func TestFile_EmptyExistingFile(t *testing.T) {
	t.Parallel()

	file, _ := newFile(t)
	require.NoError(t, os.WriteFile(file.Path(), nil, 0o600))

	require.NoError(t, file.Pin("v2"))

	assert.Equal(t, map[string]any{versionKey: "v2"}, decode(t, file.Path()))
}
