package util

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func planCommand() *cobra.Command {
	cmd := &cobra.Command{Use: "plan"}
	cmd.Flags().String("from", "", "")
	cmd.Flags().StringSlice("platform", []string{"postgres"}, "")
	cmd.Flags().Bool("validate", false, "")
	return cmd
}

func TestLoadConfigMissingDefaultFile(t *testing.T) {
	v, err := LoadConfig(afero.NewMemMapFs(), "")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if v.IsSet("from") {
		t.Error("expected an empty configuration")
	}
}

func TestLoadConfigExplicitFileMissing(t *testing.T) {
	_, err := LoadConfig(afero.NewMemMapFs(), "/etc/schemadiff.yaml")
	if err == nil || !strings.Contains(err.Error(), "failed to read config file /etc/schemadiff.yaml") {
		t.Errorf("expected read error, got %v", err)
	}
}

func TestApplyConfig(t *testing.T) {
	fs := afero.NewMemMapFs()
	config := `
from: current.yaml
platform: [mysql, postgres]
plan:
  validate: true
`
	if err := afero.WriteFile(fs, "/work/schemadiff.yaml", []byte(config), 0o644); err != nil {
		t.Fatal(err)
	}
	v, err := LoadConfig(fs, "/work/schemadiff.yaml")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name         string
		args         []string
		env          map[string]string
		wantFrom     string
		wantPlatform string
		wantValidate string
	}{
		{
			name:         "config file",
			wantFrom:     "current.yaml",
			wantPlatform: "[mysql,postgres]",
			wantValidate: "true",
		},
		{
			name:         "environment overrides file",
			env:          map[string]string{"SCHEMADIFF_FROM": "env.yaml"},
			wantFrom:     "env.yaml",
			wantPlatform: "[mysql,postgres]",
			wantValidate: "true",
		},
		{
			name:         "flags override everything",
			args:         []string{"--from", "flag.yaml", "--platform", "mariadb"},
			env:          map[string]string{"SCHEMADIFF_FROM": "env.yaml"},
			wantFrom:     "flag.yaml",
			wantPlatform: "[mariadb]",
			wantValidate: "true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			cmd := planCommand()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			if err := ApplyConfig(cmd, v); err != nil {
				t.Fatalf("ApplyConfig() error = %v", err)
			}

			if got := cmd.Flags().Lookup("from").Value.String(); got != tt.wantFrom {
				t.Errorf("from = %q, want %q", got, tt.wantFrom)
			}
			if got := cmd.Flags().Lookup("platform").Value.String(); got != tt.wantPlatform {
				t.Errorf("platform = %q, want %q", got, tt.wantPlatform)
			}
			if got := cmd.Flags().Lookup("validate").Value.String(); got != tt.wantValidate {
				t.Errorf("validate = %q, want %q", got, tt.wantValidate)
			}
		})
	}
}

func TestPreRunEWithConfigRequiredFlags(t *testing.T) {
	t.Cleanup(func() { SetConfig(nil) })
	SetConfig(nil)

	cmd := planCommand()
	err := PreRunEWithConfig("from")(cmd, nil)
	if err == nil || !strings.Contains(err.Error(), "SCHEMADIFF_FROM") {
		t.Fatalf("expected missing from error, got %v", err)
	}

	t.Setenv("SCHEMADIFF_FROM", "current.yaml")
	cmd = planCommand()
	if err := PreRunEWithConfig("from")(cmd, nil); err != nil {
		t.Fatalf("PreRunEWithConfig() error = %v", err)
	}
	if got, _ := cmd.Flags().GetString("from"); got != "current.yaml" {
		t.Errorf("from = %q, want current.yaml", got)
	}
}

func TestLoadSchemas(t *testing.T) {
	original := AppFs
	t.Cleanup(func() { AppFs = original })
	AppFs = afero.NewMemMapFs()

	files := map[string]string{
		"/schemas/v1.yaml": "name: app\ntables:\n  - name: users\n    columns:\n      - {name: id, type: integer}\n",
		"/schemas/v2.yaml": "name: app\ntables:\n  - name: users\n    columns:\n      - {name: id, type: bigint}\n",
	}
	for path, content := range files {
		if err := afero.WriteFile(AppFs, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	schemaDiff, err := CompareFiles(context.Background(), "/schemas/v1.yaml", "/schemas/v2.yaml", false)
	if err != nil {
		t.Fatalf("CompareFiles() error = %v", err)
	}
	if len(schemaDiff.AlteredTables) != 1 || len(schemaDiff.AlteredTables[0].AlteredColumns) != 1 {
		t.Errorf("expected one altered column, got %+v", schemaDiff.AlteredTables)
	}

	_, err = LoadSchemas(context.Background(), "/schemas/v1.yaml", "/schemas/missing.yaml")
	if err == nil || !strings.Contains(err.Error(), "missing.yaml") {
		t.Errorf("expected error naming the missing file, got %v", err)
	}
}

func TestLoadSchemasIncludeAndIgnore(t *testing.T) {
	originalFs, originalIgnore := AppFs, IgnoreFile
	t.Cleanup(func() { AppFs, IgnoreFile = originalFs, originalIgnore })
	AppFs = afero.NewMemMapFs()
	IgnoreFile = "/project/.schemadiffignore"

	files := map[string]string{
		"/project/.schemadiffignore":  "[tables]\npatterns = [\"tmp_*\"]\n",
		"/project/schema/main.yaml":   "name: app\ninclude: [tables.yaml]\nviews:\n  - {name: user_ids, sql: SELECT id FROM users}\n",
		"/project/schema/tables.yaml": "tables:\n  - name: users\n    columns:\n      - {name: id, type: integer}\n  - name: tmp_import\n    columns:\n      - {name: line, type: text}\n",
	}
	for path, content := range files {
		if err := afero.WriteFile(AppFs, path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	schemas, err := LoadSchemas(context.Background(), "/project/schema/main.yaml")
	if err != nil {
		t.Fatalf("LoadSchemas() error = %v", err)
	}
	schema := schemas[0]
	if !schema.HasTable("users") || !schema.HasView("user_ids") {
		t.Error("expected the included table and the own view")
	}
	if schema.HasTable("tmp_import") {
		t.Error("expected tmp_import to be ignored")
	}
}
