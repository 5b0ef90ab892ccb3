package include

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"
)

func writeFiles(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to write %s: %v", path, err)
		}
	}
	return fs
}

func TestNewProcessor(t *testing.T) {
	processor := NewProcessor(nil)
	if processor.fs == nil || processor.loader == nil {
		t.Error("Expected a default filesystem and loader")
	}
	if processor.visited == nil {
		t.Error("Expected visited map to be initialized")
	}
}

func TestProcessFile_BasicInclude(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/schema/main.yaml": `
name: shop
include:
  - tables/orders.yaml
  - sequences.yaml
tables:
  - name: users
    columns:
      - {name: id, type: integer}
`,
		"/schema/tables/orders.yaml": `
name: ignored
tables:
  - name: orders
    columns:
      - {name: user_id, type: integer}
`,
		"/schema/sequences.yaml": `
sequences:
  - name: order_numbers
`,
	})

	doc, err := NewProcessor(fs).ProcessFile("/schema/main.yaml")
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}

	var tables []string
	for _, table := range doc.Tables {
		tables = append(tables, table.Name)
	}
	if diff := cmp.Diff([]string{"orders", "users"}, tables); diff != "" {
		t.Errorf("tables mismatch (-want +got):\n%s", diff)
	}
	if doc.Name != "shop" {
		t.Errorf("Expected the top-level name 'shop', got '%s'", doc.Name)
	}
	if len(doc.Sequences) != 1 || doc.Sequences[0].Name != "order_numbers" {
		t.Errorf("Expected the included sequence, got %+v", doc.Sequences)
	}
	if doc.Include != nil {
		t.Errorf("Expected resolved includes to be cleared, got %v", doc.Include)
	}
}

func TestProcessFile_NestedInclude(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/schema/main.yaml":         "name: app\ninclude: [tables/all.yaml]\n",
		"/schema/tables/all.yaml":   "include: [users.yaml]\n",
		"/schema/tables/users.yaml": "tables:\n  - name: users\n    columns:\n      - {name: id, type: integer}\n",
	})

	schema, err := NewProcessor(fs).Load("/schema/main.yaml")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !schema.HasTable("users") {
		t.Error("Expected table users from the nested include")
	}
}

func TestProcessFile_SameFileFromTwoBranches(t *testing.T) {
	fs := writeFiles(t, map[string]string{
		"/schema/main.yaml":   "name: app\ninclude: [a.yaml, b.yaml]\n",
		"/schema/a.yaml":      "include: [common.yaml]\n",
		"/schema/b.yaml":      "include: [common.yaml]\n",
		"/schema/common.yaml": "views:\n  - {name: v, sql: SELECT 1}\n",
	})

	doc, err := NewProcessor(fs).ProcessFile("/schema/main.yaml")
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(doc.Views) != 2 {
		t.Errorf("Expected the common file merged twice, got %d views", len(doc.Views))
	}
}

func TestProcessFile_Errors(t *testing.T) {
	tests := []struct {
		name     string
		files    map[string]string
		errorMsg string
	}{
		{
			name: "circular include",
			files: map[string]string{
				"/schema/main.yaml": "include: [a.yaml]\n",
				"/schema/a.yaml":    "include: [main.yaml]\n",
			},
			errorMsg: "circular include detected",
		},
		{
			name:     "directory traversal",
			files:    map[string]string{"/schema/main.yaml": "include: [../secrets.yaml]\n"},
			errorMsg: "directory traversal not allowed",
		},
		{
			name:     "missing include",
			files:    map[string]string{"/schema/main.yaml": "include: [tables/none.yaml]\n"},
			errorMsg: "included file does not exist",
		},
		{
			name: "invalid included document",
			files: map[string]string{
				"/schema/main.yaml": "include: [bad.yaml]\n",
				"/schema/bad.yaml":  "tables: [{name: t, colums: []}]\n",
			},
			errorMsg: "failed to parse schema file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewProcessor(writeFiles(t, tt.files)).ProcessFile("/schema/main.yaml")
			if err == nil || !strings.Contains(err.Error(), tt.errorMsg) {
				t.Errorf("expected error containing %q, got %v", tt.errorMsg, err)
			}
		})
	}
}
