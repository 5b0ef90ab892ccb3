package ir

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Loader reads schema documents from a filesystem.
type Loader struct {
	fs afero.Fs
}

// NewLoader creates a loader over fs; a nil fs means the OS filesystem.
func NewLoader(fs afero.Fs) *Loader {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Loader{fs: fs}
}

// Load reads and builds the schema stored at path.
func (l *Loader) Load(path string) (*Schema, error) {
	doc, err := l.LoadDocument(path)
	if err != nil {
		return nil, err
	}
	schema, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema from %s: %w", path, err)
	}
	return schema, nil
}

// LoadDocument reads the document stored at path without building it.
func (l *Loader) LoadDocument(path string) (*Document, error) {
	data, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema file %s: %w", path, err)
	}
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse schema file %s: %w", path, err)
	}
	return doc, nil
}

// Save writes the schema as YAML to path.
func (l *Loader) Save(path string, schema *Schema) error {
	data, err := Marshal(schema)
	if err != nil {
		return err
	}
	if err := afero.WriteFile(l.fs, path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write schema file %s: %w", path, err)
	}
	return nil
}

// ParseDocument decodes a YAML schema document. Unknown table-level keys are
// rejected; unknown column options are rejected when the document is built.
func ParseDocument(data []byte) (*Document, error) {
	doc := &Document{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(doc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return doc, nil
}

// Parse decodes and builds a schema from YAML.
func Parse(data []byte) (*Schema, error) {
	doc, err := ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return doc.Build()
}

// Marshal encodes the schema as a YAML document.
func Marshal(schema *Schema) ([]byte, error) {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(FromSchema(schema)); err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode schema: %w", err)
	}
	return buf.Bytes(), nil
}
