// Package include resolves schema documents split across several files.
package include

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/schemadiff/schemadiff/ir"
)

// Processor loads schema documents and merges the documents they include
type Processor struct {
	fs      afero.Fs
	loader  *ir.Loader
	baseDir string
	visited map[string]bool
}

// NewProcessor creates a new include processor reading from fs
func NewProcessor(fs afero.Fs) *Processor {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Processor{
		fs:      fs,
		loader:  ir.NewLoader(fs),
		visited: make(map[string]bool),
	}
}

// ProcessFile loads a schema document and resolves its include list. Included
// objects come before the objects of the including document, in include
// order. The name of the top-level document is kept.
func (p *Processor) ProcessFile(filename string) (*ir.Document, error) {
	// Reset visited map for each top-level file processing
	p.visited = make(map[string]bool)

	absPath, err := filepath.Abs(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for %s: %w", filename, err)
	}
	// Includes may not escape the directory of the top-level file
	p.baseDir = filepath.Dir(absPath)

	return p.processFileRecursive(absPath)
}

// Load is ProcessFile followed by building the schema
func (p *Processor) Load(filename string) (*ir.Schema, error) {
	doc, err := p.ProcessFile(filename)
	if err != nil {
		return nil, err
	}
	schema, err := doc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build schema from %s: %w", filename, err)
	}
	return schema, nil
}

func (p *Processor) processFileRecursive(filename string) (*ir.Document, error) {
	if p.visited[filename] {
		return nil, fmt.Errorf("circular include detected: %s", filename)
	}
	p.visited[filename] = true
	// The same file may still be included from different branches
	defer delete(p.visited, filename)

	doc, err := p.loader.LoadDocument(filename)
	if err != nil {
		return nil, err
	}
	if len(doc.Include) == 0 {
		return doc, nil
	}

	merged := &ir.Document{Name: doc.Name}
	currentDir := filepath.Dir(filename)
	for _, includePath := range doc.Include {
		resolvedPath, err := p.resolveIncludePath(includePath, currentDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve include %s in %s: %w", includePath, filename, err)
		}
		included, err := p.processFileRecursive(resolvedPath)
		if err != nil {
			return nil, fmt.Errorf("failed to process included file %s: %w", resolvedPath, err)
		}
		merged.Tables = append(merged.Tables, included.Tables...)
		merged.Sequences = append(merged.Sequences, included.Sequences...)
		merged.Views = append(merged.Views, included.Views...)
	}
	merged.Tables = append(merged.Tables, doc.Tables...)
	merged.Sequences = append(merged.Sequences, doc.Sequences...)
	merged.Views = append(merged.Views, doc.Views...)
	return merged, nil
}

// resolveIncludePath resolves an include path relative to the current directory
// Only allows files within the base directory and its subdirectories
func (p *Processor) resolveIncludePath(includePath string, currentDir string) (string, error) {
	cleanPath := filepath.Clean(includePath)
	if filepath.IsAbs(cleanPath) || strings.HasPrefix(cleanPath, "..") {
		return "", fmt.Errorf("directory traversal not allowed: %s", includePath)
	}

	absPath := filepath.Join(currentDir, cleanPath)
	relPath, err := filepath.Rel(p.baseDir, absPath)
	if err != nil || strings.HasPrefix(relPath, "..") {
		return "", fmt.Errorf("include path %s is outside the base directory %s", includePath, p.baseDir)
	}

	exists, err := afero.Exists(p.fs, absPath)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("included file does not exist: %s", absPath)
	}
	return absPath, nil
}
