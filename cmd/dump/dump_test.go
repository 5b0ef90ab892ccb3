package dump

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/schemadiff/schemadiff/cmd/util"
)

const blogYAML = `
name: blog
tables:
  - name: authors
    columns:
      - {name: id, type: integer, not_null: true}
    primary_key: {columns: [id]}
  - name: posts
    columns:
      - {name: author_id, type: integer}
    foreign_keys:
      - {name: fk_posts_author, columns: [author_id], references: {table: authors, columns: [id]}}
`

func resetFlags() {
	file, platformName, platformVersion, output = "", "postgres", "", ""
	drop, multiFile = false, false
}

func runDumpCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	fs := afero.NewMemMapFs()
	if err := afero.WriteFile(fs, "/schemas/blog.yaml", []byte(blogYAML), 0644); err != nil {
		t.Fatal(err)
	}
	previous := util.AppFs
	util.AppFs = fs
	t.Cleanup(func() {
		util.AppFs = previous
		resetFlags()
	})

	var stdout bytes.Buffer
	DumpCmd.SetOut(&stdout)
	DumpCmd.SetErr(&bytes.Buffer{})
	DumpCmd.SetArgs(append([]string{"--file", "/schemas/blog.yaml"}, args...))
	err := DumpCmd.Execute()
	return stdout.String(), err
}

func TestDumpCommand(t *testing.T) {
	if DumpCmd.Use != "dump" {
		t.Errorf("Expected Use to be 'dump', got '%s'", DumpCmd.Use)
	}
	if DumpCmd.Short == "" || DumpCmd.Long == "" {
		t.Error("Expected Short and Long descriptions to be set")
	}

	flags := DumpCmd.Flags()
	for _, name := range []string{"file", "platform", "platform-version", "drop", "output", "multi-file"} {
		if flags.Lookup(name) == nil {
			t.Errorf("Expected --%s flag to be defined", name)
		}
	}
	if flags.Lookup("platform").DefValue != "postgres" {
		t.Errorf("Expected default platform to be 'postgres', got '%s'", flags.Lookup("platform").DefValue)
	}
}

func TestDumpCreate(t *testing.T) {
	out, err := runDumpCommand(t, "--platform", "mysql")
	if err != nil {
		t.Fatalf("dump command failed: %v", err)
	}

	for _, part := range []string{"-- Schema: blog", "-- Platform: mysql", "-- Name: authors; Type: TABLE", "-- Name: fk_posts_author; Type: FOREIGN KEY; Table: posts"} {
		if !strings.Contains(out, part) {
			t.Errorf("expected output to contain %q, got:\n%s", part, out)
		}
	}
	authors := strings.Index(out, "CREATE TABLE authors")
	posts := strings.Index(out, "CREATE TABLE posts")
	fk := strings.Index(out, "ADD CONSTRAINT fk_posts_author")
	if authors < 0 || posts < authors || fk < posts {
		t.Errorf("expected tables before foreign keys, got:\n%s", out)
	}
}

func TestDumpDrop(t *testing.T) {
	out, err := runDumpCommand(t, "--platform", "postgres", "--drop")
	if err != nil {
		t.Fatalf("dump command failed: %v", err)
	}
	fk := strings.Index(out, "DROP CONSTRAINT fk_posts_author")
	table := strings.Index(out, "DROP TABLE authors")
	if fk < 0 || table < fk {
		t.Errorf("expected foreign keys dropped before tables, got:\n%s", out)
	}
}

func TestDumpMultiFile(t *testing.T) {
	out, err := runDumpCommand(t, "--platform", "postgres", "--multi-file", "--output", "/dump/schema.sql")
	if err != nil {
		t.Fatalf("dump command failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected nothing on stdout, got %q", out)
	}

	for _, path := range []string{"/dump/schema.sql", "/dump/tables/authors.sql", "/dump/tables/posts.sql", "/dump/foreign_keys/posts.sql"} {
		if ok, _ := afero.Exists(util.AppFs, path); !ok {
			t.Errorf("expected %s to be written", path)
		}
	}
}

func TestDumpUnknownPlatform(t *testing.T) {
	_, err := runDumpCommand(t, "--platform", "oracle")
	if err == nil || !strings.Contains(err.Error(), `unknown platform "oracle"`) {
		t.Errorf("expected unknown platform error, got %v", err)
	}
}
