package dump

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/afero"

	"github.com/schemadiff/schemadiff/internal/sqlcollector"
	"github.com/schemadiff/schemadiff/internal/version"
)

var testSteps = []sqlcollector.Step{
	{SQL: "CREATE TABLE authors (\n    id INT NOT NULL\n)", ObjectType: sqlcollector.ObjectTable, ObjectPath: "authors"},
	{SQL: "CREATE INDEX idx_authors_id ON authors (id)", ObjectType: sqlcollector.ObjectTable, ObjectPath: "authors"},
	{SQL: "CREATE TABLE posts (\n    author_id INT\n)", ObjectType: sqlcollector.ObjectTable, ObjectPath: "posts"},
	{SQL: "ALTER TABLE posts ADD CONSTRAINT fk_posts_author FOREIGN KEY (author_id) REFERENCES authors (id)", ObjectType: sqlcollector.ObjectForeignKey, ObjectPath: "posts.fk_posts_author"},
	{SQL: "CREATE VIEW Author Posts AS SELECT 1", ObjectType: sqlcollector.ObjectView, ObjectPath: "Author Posts"},
}

func expectedHeader(platform string) string {
	return "--\n-- schemadiff dump\n--\n\n-- Schema: blog\n-- Platform: " + platform +
		"\n-- Dumped by schemadiff version " + version.Version() + "\n\n\n"
}

func TestFormatSingleFile(t *testing.T) {
	formatter := NewDumpFormatter("postgres", "blog")

	expected := expectedHeader("postgres") + `--
-- Name: authors; Type: TABLE
--

CREATE TABLE authors (
    id INT NOT NULL
);
CREATE INDEX idx_authors_id ON authors (id);

--
-- Name: posts; Type: TABLE
--

CREATE TABLE posts (
    author_id INT
);

--
-- Name: fk_posts_author; Type: FOREIGN KEY; Table: posts
--

ALTER TABLE posts ADD CONSTRAINT fk_posts_author FOREIGN KEY (author_id) REFERENCES authors (id);

--
-- Name: Author Posts; Type: VIEW
--

CREATE VIEW Author Posts AS SELECT 1;
`
	if diff := cmp.Diff(expected, formatter.FormatSingleFile(testSteps)); diff != "" {
		t.Errorf("FormatSingleFile() mismatch (-want +got):\n%s", diff)
	}
}

func TestFormatMultiFile(t *testing.T) {
	tests := []struct {
		platform string
		includes []string
	}{
		{
			platform: "postgres",
			includes: []string{`\i tables/authors.sql`, `\i tables/posts.sql`, `\i foreign_keys/posts.sql`, `\i views/author_posts.sql`},
		},
		{
			platform: "mysql",
			includes: []string{"SOURCE tables/authors.sql;", "SOURCE tables/posts.sql;", "SOURCE foreign_keys/posts.sql;", "SOURCE views/author_posts.sql;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.platform, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			formatter := NewDumpFormatter(tt.platform, "blog")
			if err := formatter.FormatMultiFile(fs, testSteps, "/out/schema.sql"); err != nil {
				t.Fatalf("FormatMultiFile() error = %v", err)
			}

			mainFile, err := afero.ReadFile(fs, "/out/schema.sql")
			if err != nil {
				t.Fatal(err)
			}
			expected := expectedHeader(tt.platform) + strings.Join(tt.includes, "\n") + "\n"
			if diff := cmp.Diff(expected, string(mainFile)); diff != "" {
				t.Errorf("main file mismatch (-want +got):\n%s", diff)
			}

			authors, err := afero.ReadFile(fs, "/out/tables/authors.sql")
			if err != nil {
				t.Fatal(err)
			}
			if !strings.HasSuffix(string(authors), "CREATE INDEX idx_authors_id ON authors (id);\n") {
				t.Errorf("expected the index in the table file, got:\n%s", authors)
			}
			if strings.Contains(string(authors), "schemadiff dump") {
				t.Error("object files should not carry the dump header")
			}
		})
	}
}

func TestSanitizeFileName(t *testing.T) {
	formatter := NewDumpFormatter("mysql", "")
	tests := map[string]string{
		"users":        "users",
		"Order Items":  "order_items",
		"_tmp$table_":  "tmp_table",
		"audit-log.v2": "audit-log_v2",
	}
	for input, expected := range tests {
		if got := formatter.sanitizeFileName(input); got != expected {
			t.Errorf("sanitizeFileName(%q) = %q, want %q", input, got, expected)
		}
	}
}
