package dump

import (
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"

	"github.com/schemadiff/schemadiff/internal/sqlcollector"
	"github.com/schemadiff/schemadiff/internal/version"
)

var unsafeFileChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// DumpFormatter handles formatting SQL output for schema dumps
type DumpFormatter struct {
	platform   string
	schemaName string
}

// NewDumpFormatter creates a new DumpFormatter
func NewDumpFormatter(platform string, schemaName string) *DumpFormatter {
	return &DumpFormatter{
		platform:   platform,
		schemaName: schemaName,
	}
}

// FormatSingleFile formats the steps as one script, each object preceded by
// a comment header
func (f *DumpFormatter) FormatSingleFile(steps []sqlcollector.Step) string {
	var output strings.Builder
	output.WriteString(f.generateDumpHeader())
	f.writeSteps(&output, steps)
	return output.String()
}

// FormatMultiFile writes one file per object, grouped in a directory per
// object type, and a main file at outputPath including them in order
func (f *DumpFormatter) FormatMultiFile(fs afero.Fs, steps []sqlcollector.Step, outputPath string) error {
	baseDir := filepath.Dir(outputPath)
	if err := fs.MkdirAll(baseDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	// Directories and files keep the order of their first statement so that
	// the includes run in the order the steps were generated
	var dirs []string
	files := make(map[string][]string)
	grouped := make(map[string][]sqlcollector.Step)
	for _, step := range steps {
		dir := f.getObjectDirectory(step.ObjectType)
		fileName := path.Join(dir, f.sanitizeFileName(f.getGroupingName(step))+".sql")
		if _, ok := files[dir]; !ok {
			dirs = append(dirs, dir)
		}
		if _, ok := grouped[fileName]; !ok {
			files[dir] = append(files[dir], fileName)
		}
		grouped[fileName] = append(grouped[fileName], step)
	}

	var mainFile strings.Builder
	mainFile.WriteString(f.generateDumpHeader())
	for _, dir := range dirs {
		if err := fs.MkdirAll(filepath.Join(baseDir, dir), 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
		for _, fileName := range files[dir] {
			var content strings.Builder
			f.writeSteps(&content, grouped[fileName])
			filePath := filepath.Join(baseDir, filepath.FromSlash(fileName))
			if err := afero.WriteFile(fs, filePath, []byte(content.String()), 0644); err != nil {
				return fmt.Errorf("failed to write file %s: %w", filePath, err)
			}
			mainFile.WriteString(f.includeStatement(fileName))
			mainFile.WriteString("\n")
		}
	}

	if err := afero.WriteFile(fs, outputPath, []byte(mainFile.String()), 0644); err != nil {
		return fmt.Errorf("failed to create main file: %w", err)
	}
	return nil
}

func (f *DumpFormatter) writeSteps(output *strings.Builder, steps []sqlcollector.Step) {
	for i, step := range steps {
		// Statements of the same object share one header
		if i == 0 || !f.sameObject(steps[i-1], step) {
			if i > 0 {
				output.WriteString("\n")
			}
			output.WriteString(f.formatObjectCommentHeader(step))
		}
		output.WriteString(step.SQL)
		output.WriteString(";\n")
	}
}

func (f *DumpFormatter) sameObject(a, b sqlcollector.Step) bool {
	return a.ObjectType == b.ObjectType && a.ObjectPath == b.ObjectPath
}

// generateDumpHeader generates the header for schema dumps with metadata
func (f *DumpFormatter) generateDumpHeader() string {
	var header strings.Builder

	header.WriteString("--\n")
	header.WriteString("-- schemadiff dump\n")
	header.WriteString("--\n")
	header.WriteString("\n")

	if f.schemaName != "" {
		header.WriteString(fmt.Sprintf("-- Schema: %s\n", f.schemaName))
	}
	header.WriteString(fmt.Sprintf("-- Platform: %s\n", f.platform))
	header.WriteString(fmt.Sprintf("-- Dumped by schemadiff version %s\n", version.Version()))
	header.WriteString("\n")
	header.WriteString("\n")
	return header.String()
}

func (f *DumpFormatter) includeStatement(fileName string) string {
	if f.platform == "postgres" {
		return "\\i " + fileName
	}
	return "SOURCE " + fileName + ";"
}

// getObjectDirectory returns the directory name for an object type
func (f *DumpFormatter) getObjectDirectory(objectType string) string {
	switch objectType {
	case sqlcollector.ObjectSequence:
		return "sequences"
	case sqlcollector.ObjectView:
		return "views"
	case sqlcollector.ObjectForeignKey:
		// Kept apart from tables: every table must exist before its foreign keys
		return "foreign_keys"
	default:
		return "tables"
	}
}

// getGroupingName returns the table, view or sequence a step belongs to
func (f *DumpFormatter) getGroupingName(step sqlcollector.Step) string {
	name, _, _ := strings.Cut(step.ObjectPath, ".")
	return name
}

// getObjectName extracts the object name from the object path
func (f *DumpFormatter) getObjectName(objectPath string) string {
	parts := strings.Split(objectPath, ".")
	return parts[len(parts)-1]
}

// sanitizeFileName converts an object name to a valid filename
func (f *DumpFormatter) sanitizeFileName(name string) string {
	sanitized := unsafeFileChars.ReplaceAllString(name, "_")
	sanitized = strings.Trim(sanitized, "_")
	return strings.ToLower(sanitized)
}

// formatObjectCommentHeader generates the comment header for an object
func (f *DumpFormatter) formatObjectCommentHeader(step sqlcollector.Step) string {
	var output strings.Builder

	displayType := strings.ToUpper(strings.ReplaceAll(step.ObjectType, "_", " "))
	output.WriteString("--\n")
	output.WriteString(fmt.Sprintf("-- Name: %s; Type: %s", f.getObjectName(step.ObjectPath), displayType))
	if parent := f.getGroupingName(step); parent != step.ObjectPath {
		output.WriteString(fmt.Sprintf("; Table: %s", parent))
	}
	output.WriteString("\n--\n\n")

	return output.String()
}
