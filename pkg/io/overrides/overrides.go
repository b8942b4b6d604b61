// Package overrides edits the bundle's variable overrides file.
//
// The file is a YAML mapping derived from a template shipped with the
// bundle. Only the version key is managed; every other key, comment and
// ordering from the template is preserved.
package overrides

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/bacalhau-project/bacboot/pkg/apis/bootstrap/v1alpha1"
	"github.com/bacalhau-project/bacboot/pkg/fsutil"
	"github.com/bacalhau-project/bacboot/pkg/utils/logging"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ErrNotMapping is returned when the overrides document is not a YAML mapping.
var ErrNotMapping = errors.New("overrides document is not a mapping")

const yamlIndent = 2

// File is the overrides file of one working copy.
type File struct {
	path     string
	template string
	key      string
	logger   logrus.FieldLogger
}

// New returns the overrides file at path, derived from template on first
// write, managing key.
func New(path, template, key string, logger logrus.FieldLogger) *File {
	return &File{path: path, template: template, key: key, logger: logging.For(logger, "overrides")}
}

// Path returns the file location.
func (f *File) Path() string {
	return f.path
}

// Exists reports whether the file is present.
func (f *File) Exists() (bool, error) {
	_, err := os.Stat(f.path)
	if err == nil {
		return true, nil
	}

	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	return false, fmt.Errorf("failed to stat overrides %s: %w", f.path, err)
}

// Version returns the authoritative (first) version value and whether the key is present.
func (f *File) Version() (string, bool, error) {
	root, err := f.load(f.path)
	if err != nil {
		return "", false, err
	}

	if root == nil {
		return "", false, nil
	}

	mapping, err := mappingOf(root)
	if err != nil {
		return "", false, err
	}

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == f.key {
			return mapping.Content[i+1].Value, true, nil
		}
	}

	return "", false, nil
}

// Pin writes version under the key, creating the file from the template when absent.
func (f *File) Pin(version string) error {
	root, err := f.load(f.path)
	if err != nil {
		return err
	}

	if root == nil {
		root, err = f.load(f.template)
		if err != nil {
			return err
		}

		if root == nil {
			f.logger.WithField("template", f.template).Debug("overrides template missing, starting from an empty mapping")

			root = emptyDocument()
		}
	}

	return f.write(root, version)
}

// ResetToLatest rewrites the key to the latest sentinel when the file
// exists. It reports whether anything was written.
func (f *File) ResetToLatest() (bool, error) {
	root, err := f.load(f.path)
	if err != nil {
		return false, err
	}

	if root == nil {
		return false, nil
	}

	return true, f.write(root, v1alpha1.LatestVersion)
}

// load parses path into a document node. A missing file yields nil.
func (f *File) load(path string) (*yaml.Node, error) {
	content, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return emptyDocument(), nil
	}

	var root yaml.Node

	err = yaml.Unmarshal(content, &root)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if len(root.Content) == 0 {
		return emptyDocument(), nil
	}

	return &root, nil
}

func (f *File) write(root *yaml.Node, version string) error {
	mapping, err := mappingOf(root)
	if err != nil {
		return fmt.Errorf("%s: %w", f.path, err)
	}

	setUnique(mapping, f.key, version)

	var buf bytes.Buffer

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(yamlIndent)

	err = encoder.Encode(root)
	if err != nil {
		return fmt.Errorf("failed to encode overrides: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("failed to encode overrides: %w", err)
	}

	err = fsutil.AtomicWriteFile(f.path, buf.Bytes(), validateMapping)
	if err != nil {
		return fmt.Errorf("failed to write overrides: %w", err)
	}

	f.logger.WithFields(logrus.Fields{"path": f.path, f.key: version}).Debug("overrides written")

	return nil
}

func emptyDocument() *yaml.Node {
	return &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}},
	}
}

func mappingOf(root *yaml.Node) (*yaml.Node, error) {
	node := root
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}

	if node.Kind != yaml.MappingNode {
		return nil, ErrNotMapping
	}

	return node, nil
}

// setUnique sets key to value on its first occurrence, drops later
// occurrences and appends the key when it is missing.
func setUnique(mapping *yaml.Node, key, value string) {
	valueNode := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value, Style: yaml.DoubleQuotedStyle}
	content := make([]*yaml.Node, 0, len(mapping.Content)+2)
	found := false

	for i := 0; i+1 < len(mapping.Content); i += 2 {
		keyNode := mapping.Content[i]
		if keyNode.Value != key {
			content = append(content, keyNode, mapping.Content[i+1])

			continue
		}

		if found {
			continue
		}

		found = true

		valueNode.LineComment = mapping.Content[i+1].LineComment
		content = append(content, keyNode, valueNode)
	}

	if !found {
		content = append(content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}, valueNode)
	}

	mapping.Content = content
}

func validateMapping(content []byte) error {
	var decoded map[string]any

	err := yaml.Unmarshal(content, &decoded)
	if err != nil {
		return fmt.Errorf("written overrides do not parse: %w", err)
	}

	return nil
}
