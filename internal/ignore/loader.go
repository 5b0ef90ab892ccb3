// Package ignore reads the patterns of schema objects left out of comparison.
package ignore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/afero"

	"github.com/schemadiff/schemadiff/ir"
)

const (
	// IgnoreFileName is the default name of the ignore file
	IgnoreFileName = ".schemadiffignore"
)

// TomlConfig represents the TOML structure of the ignore file
type TomlConfig struct {
	Tables    PatternConfig `toml:"tables,omitempty"`
	Views     PatternConfig `toml:"views,omitempty"`
	Sequences PatternConfig `toml:"sequences,omitempty"`
}

// PatternConfig holds the patterns of one object type
type PatternConfig struct {
	Patterns []string `toml:"patterns,omitempty"`
}

// IgnoreConfig represents the configuration for ignoring schema objects.
// Patterns are globs; a pattern starting with ! keeps matching objects even
// when another pattern ignores them.
type IgnoreConfig struct {
	Tables    []string
	Views     []string
	Sequences []string
}

// LoadIgnoreFile loads the ignore file from the current directory
func LoadIgnoreFile(fs afero.Fs) (*IgnoreConfig, error) {
	return LoadIgnoreFileFromPath(fs, IgnoreFileName)
}

// LoadIgnoreFileFromPath loads an ignore file from the specified path.
// Returns nil if the file doesn't exist (ignore functionality is optional)
func LoadIgnoreFileFromPath(fs afero.Fs, filePath string) (*IgnoreConfig, error) {
	exists, err := afero.Exists(fs, filePath)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}

	data, err := afero.ReadFile(fs, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read ignore file %s: %w", filePath, err)
	}
	var tomlConfig TomlConfig
	if _, err := toml.Decode(string(data), &tomlConfig); err != nil {
		return nil, fmt.Errorf("failed to parse ignore file %s: %w", filePath, err)
	}

	return &IgnoreConfig{
		Tables:    tomlConfig.Tables.Patterns,
		Views:     tomlConfig.Views.Patterns,
		Sequences: tomlConfig.Sequences.Patterns,
	}, nil
}

// ShouldIgnoreTable checks if a table should be ignored based on the patterns
func (c *IgnoreConfig) ShouldIgnoreTable(tableName string) bool {
	if c == nil {
		return false
	}
	return shouldIgnore(tableName, c.Tables)
}

// ShouldIgnoreView checks if a view should be ignored based on the patterns
func (c *IgnoreConfig) ShouldIgnoreView(viewName string) bool {
	if c == nil {
		return false
	}
	return shouldIgnore(viewName, c.Views)
}

// ShouldIgnoreSequence checks if a sequence should be ignored based on the patterns
func (c *IgnoreConfig) ShouldIgnoreSequence(sequenceName string) bool {
	if c == nil {
		return false
	}
	return shouldIgnore(sequenceName, c.Sequences)
}

// Filter returns a copy of doc without the ignored objects
func (c *IgnoreConfig) Filter(doc *ir.Document) *ir.Document {
	if c == nil {
		return doc
	}
	filtered := &ir.Document{Name: doc.Name, Include: doc.Include}
	for _, table := range doc.Tables {
		if !c.ShouldIgnoreTable(table.Name) {
			filtered.Tables = append(filtered.Tables, table)
		}
	}
	for _, view := range doc.Views {
		if !c.ShouldIgnoreView(view.Name) {
			filtered.Views = append(filtered.Views, view)
		}
	}
	for _, sequence := range doc.Sequences {
		if !c.ShouldIgnoreSequence(sequence.Name) {
			filtered.Sequences = append(filtered.Sequences, sequence)
		}
	}
	return filtered
}

func shouldIgnore(name string, patterns []string) bool {
	matched := false
	for _, pattern := range patterns {
		if negated, ok := strings.CutPrefix(pattern, "!"); ok {
			if matchPattern(negated, name) {
				return false
			}
			continue
		}
		if matchPattern(pattern, name) {
			matched = true
		}
	}
	return matched
}

// matchPattern matches a glob-style pattern; an invalid pattern only matches
// itself
func matchPattern(pattern, name string) bool {
	matched, err := filepath.Match(pattern, name)
	if err != nil {
		return pattern == name
	}
	return matched
}
