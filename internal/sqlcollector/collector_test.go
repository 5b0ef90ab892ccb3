package sqlcollector

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/schemadiff/schemadiff/internal/comparator"
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/internal/platform"
	"github.com/schemadiff/schemadiff/ir"
)

func mustParse(t *testing.T, doc string) *ir.Schema {
	t.Helper()
	schema, err := ir.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("failed to parse schema: %v", err)
	}
	return schema
}

func mustTable(t *testing.T, schema *ir.Schema, name string) *ir.Table {
	t.Helper()
	table, err := schema.GetTable(name)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

const teamsSchema = `
name: app
tables:
  - name: orders
    columns:
      - {name: id, type: integer, not_null: true}
      - {name: customer_id, type: integer}
    foreign_keys:
      - name: fk_orders_customer
        columns: [customer_id]
        references: {table: customers, columns: [id]}
  - name: customers
    columns:
      - {name: id, type: integer, not_null: true}
    primary_key: {columns: [id]}
`

func TestCreateTableCollectorDefersForeignKeys(t *testing.T) {
	schema := mustParse(t, teamsSchema)
	c := NewCreateTableSQLCollector(platform.NewPostgreSQL(nil))

	for _, table := range schema.Tables() {
		if err := c.Collect(table); err != nil {
			t.Fatalf("Collect(%s) error = %v", table.Name(), err)
		}
	}

	expectedTables := []string{
		"CREATE TABLE orders (\n    id INTEGER NOT NULL,\n    customer_id INTEGER\n)",
		"CREATE TABLE customers (\n    id INTEGER NOT NULL,\n    CONSTRAINT pk_customers_id PRIMARY KEY (id)\n)",
	}
	if diff := cmp.Diff(expectedTables, c.CreateTableQueries()); diff != "" {
		t.Errorf("CreateTableQueries() mismatch (-want +got):\n%s", diff)
	}

	expectedForeignKeys := []string{
		"ALTER TABLE orders ADD CONSTRAINT fk_orders_customer FOREIGN KEY (customer_id) REFERENCES customers (id) ON DELETE RESTRICT ON UPDATE RESTRICT",
	}
	if diff := cmp.Diff(expectedForeignKeys, c.CreateForeignKeyQueries()); diff != "" {
		t.Errorf("CreateForeignKeyQueries() mismatch (-want +got):\n%s", diff)
	}

	if diff := cmp.Diff(append(expectedTables, expectedForeignKeys...), c.Queries()); diff != "" {
		t.Errorf("Queries() mismatch (-want +got):\n%s", diff)
	}

	c.Init()
	if got := c.Queries(); len(got) != 0 {
		t.Errorf("Queries() after Init() = %v, want none", got)
	}
}

func TestDropTableCollectorDropsForeignKeysFirst(t *testing.T) {
	schema := mustParse(t, teamsSchema)
	c := NewDropTableSQLCollector(platform.NewMySQL(nil))

	for _, table := range schema.Tables() {
		if err := c.Collect(table); err != nil {
			t.Fatal(err)
		}
	}

	expected := []string{
		"ALTER TABLE orders DROP FOREIGN KEY fk_orders_customer",
		"DROP TABLE orders",
		"DROP TABLE customers",
	}
	if diff := cmp.Diff(expected, c.Queries()); diff != "" {
		t.Errorf("Queries() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(expected[1:], c.DropTableQueries()); diff != "" {
		t.Errorf("DropTableQueries() mismatch (-want +got):\n%s", diff)
	}
}

const usersV1 = `
name: app
tables:
  - name: teams
    columns:
      - {name: id, type: integer, not_null: true}
    primary_key: {columns: [id]}
  - name: users
    columns:
      - {name: id, type: integer, not_null: true}
      - {name: email, type: string, length: 100}
      - {name: name, type: string}
      - {name: legacy, type: integer}
    primary_key: {columns: [id]}
    indexes:
      - {name: idx_users_name, columns: [name]}
    checks:
      - {name: chk_users_id, expression: id > 0}
`

const membersV2 = `
name: app
tables:
  - name: teams
    columns:
      - {name: id, type: integer, not_null: true}
    primary_key: {columns: [id]}
  - name: members
    columns:
      - {name: id, type: integer, not_null: true}
      - {name: email, type: string, length: 200, not_null: true}
      - {name: name, type: string}
      - {name: team_id, type: integer}
    primary_key: {columns: [id]}
    indexes:
      - {columns: [email], unique: true}
    foreign_keys:
      - name: fk_members_team
        columns: [team_id]
        references: {table: teams, columns: [id]}
        on_delete: set null
    checks:
      - {name: chk_members_id, expression: id > 0}
`

func usersToMembers(t *testing.T) *diff.TableDiff {
	t.Helper()
	users := mustTable(t, mustParse(t, usersV1), "users")
	members := mustTable(t, mustParse(t, membersV2), "members")
	return comparator.NewTableComparator().Compare(users, members)
}

func TestAlterTableCollector(t *testing.T) {
	c := NewAlterTableSQLCollector(platform.NewPostgreSQL(nil))
	if err := c.Collect(usersToMembers(t)); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	expected := []string{
		"ALTER TABLE users RENAME TO members",
		"ALTER TABLE members DROP CONSTRAINT chk_users_id",
		"DROP INDEX idx_users_name",
		"ALTER TABLE members DROP CONSTRAINT pk_users_id",
		"ALTER TABLE members DROP COLUMN legacy",
		"ALTER TABLE members ALTER COLUMN email TYPE VARCHAR(200)",
		"ALTER TABLE members ALTER COLUMN email SET NOT NULL",
		"ALTER TABLE members ADD COLUMN team_id INTEGER",
		"ALTER TABLE members ADD CONSTRAINT pk_members_id PRIMARY KEY (id)",
		"CREATE UNIQUE INDEX uniq_members_email ON members (email)",
		"ALTER TABLE members ADD CONSTRAINT fk_members_team FOREIGN KEY (team_id) REFERENCES teams (id) ON DELETE SET NULL ON UPDATE RESTRICT",
		"ALTER TABLE members ADD CONSTRAINT chk_members_id CHECK (id > 0)",
	}
	if diff := cmp.Diff(expected, c.Queries()); diff != "" {
		t.Errorf("Queries() mismatch (-want +got):\n%s", diff)
	}
	if err := platform.Validate(platform.NewPostgreSQL(nil), c.Queries()); err != nil {
		t.Errorf("generated SQL does not parse: %v", err)
	}

	getters := map[string]func() []string{
		"RenameTableQueries":      c.RenameTableQueries,
		"DropCheckQueries":        c.DropCheckQueries,
		"DropIndexQueries":        c.DropIndexQueries,
		"DropForeignKeyQueries":   c.DropForeignKeyQueries,
		"DropPrimaryKeyQueries":   c.DropPrimaryKeyQueries,
		"DropColumnQueries":       c.DropColumnQueries,
		"AlterColumnQueries":      c.AlterColumnQueries,
		"CreateColumnQueries":     c.CreateColumnQueries,
		"CreatePrimaryKeyQueries": c.CreatePrimaryKeyQueries,
		"CreateIndexQueries":      c.CreateIndexQueries,
		"CreateForeignKeyQueries": c.CreateForeignKeyQueries,
		"CreateCheckQueries":      c.CreateCheckQueries,
	}
	counts := map[string]int{
		"RenameTableQueries":      1,
		"DropCheckQueries":        1,
		"DropIndexQueries":        1,
		"DropForeignKeyQueries":   0,
		"DropPrimaryKeyQueries":   1,
		"DropColumnQueries":       1,
		"AlterColumnQueries":      2,
		"CreateColumnQueries":     1,
		"CreatePrimaryKeyQueries": 1,
		"CreateIndexQueries":      1,
		"CreateForeignKeyQueries": 1,
		"CreateCheckQueries":      1,
	}
	for name, getter := range getters {
		if got := len(getter()); got != counts[name] {
			t.Errorf("%s() returned %d queries, want %d", name, got, counts[name])
		}
	}
}

func TestAlterTableCollectorRenamesColumns(t *testing.T) {
	table, _ := ir.NewTable("people")
	oldColumn, _ := ir.NewColumn("name", ir.TypeString, map[string]any{"length": 80})
	newColumn, _ := ir.NewColumn("full_name", ir.TypeString, map[string]any{"length": 80})
	renamed, _ := ir.NewColumn("nick", ir.TypeString, nil)
	altered, _ := ir.NewColumn("nickname", ir.TypeText, nil)

	tableDiff := diff.NewTableDiff(table, table)
	tableDiff.AlteredColumns = []*diff.ColumnDiff{
		diff.NewColumnDiff(oldColumn, newColumn, nil),
		diff.NewColumnDiff(renamed, altered, []diff.ColumnProperty{diff.PropertyType}),
	}

	c := NewAlterTableSQLCollector(platform.NewPostgreSQL(nil))
	if err := c.Collect(tableDiff); err != nil {
		t.Fatal(err)
	}

	expected := []Step{
		{
			SQL:        "ALTER TABLE people RENAME COLUMN name TO full_name",
			Phase:      PhaseAlterColumn,
			ObjectType: ObjectColumn,
			Operation:  OperationRename,
			ObjectPath: "people.name",
		},
		{
			SQL:        "ALTER TABLE people RENAME COLUMN nick TO nickname",
			Phase:      PhaseAlterColumn,
			ObjectType: ObjectColumn,
			Operation:  OperationAlter,
			ObjectPath: "people.nickname",
		},
		{
			SQL:        "ALTER TABLE people ALTER COLUMN nickname TYPE TEXT",
			Phase:      PhaseAlterColumn,
			ObjectType: ObjectColumn,
			Operation:  OperationAlter,
			ObjectPath: "people.nickname",
		},
	}
	if diff := cmp.Diff(expected, c.Steps()); diff != "" {
		t.Errorf("Steps() mismatch (-want +got):\n%s", diff)
	}

	mysql := NewAlterTableSQLCollector(platform.NewMySQL(nil))
	if err := mysql.Collect(tableDiff); err != nil {
		t.Fatal(err)
	}
	expectedMySQL := []string{
		"ALTER TABLE people CHANGE COLUMN name full_name VARCHAR(80)",
		"ALTER TABLE people CHANGE COLUMN nick nickname TEXT",
	}
	if diff := cmp.Diff(expectedMySQL, mysql.Queries()); diff != "" {
		t.Errorf("MySQL Queries() mismatch (-want +got):\n%s", diff)
	}
}

// fullDiff returns a schema diff that puts at least one statement in every
// phase on PostgreSQL.
func fullDiff(t *testing.T) *diff.SchemaDiff {
	t.Helper()
	oldSchema := mustParse(t, usersV1+`
  - name: audit
    columns:
      - {name: id, type: integer}
      - {name: user_id, type: integer}
    foreign_keys:
      - {name: fk_audit_user, columns: [user_id], references: {table: users, columns: [id]}}
sequences:
  - {name: old_seq}
views:
  - {name: old_view, sql: SELECT 1}
`)
	newSchema := mustParse(t, membersV2+`
  - name: invites
    columns:
      - {name: id, type: integer}
      - {name: member_id, type: integer}
    foreign_keys:
      - {name: fk_invites_member, columns: [member_id], references: {table: members, columns: [id]}}
sequences:
  - {name: new_seq, initial_value: 5}
views:
  - {name: new_view, sql: SELECT 2}
`)
	newSchema.SetName("shop")

	schemaDiff := comparator.NewSchemaComparator(nil).Compare(oldSchema, newSchema)

	// users becomes members with structural changes, which rename detection
	// reports as a drop and a create.
	schemaDiff.CreatedTables = slices.DeleteFunc(schemaDiff.CreatedTables, func(table *ir.Table) bool {
		return table.Name() == "members"
	})
	schemaDiff.DroppedTables = slices.DeleteFunc(schemaDiff.DroppedTables, func(table *ir.Table) bool {
		return table.Name() == "users"
	})
	schemaDiff.AlteredTables = append(schemaDiff.AlteredTables, comparator.NewTableComparator().Compare(
		mustTable(t, oldSchema, "users"), mustTable(t, newSchema, "members")))
	return schemaDiff
}

func TestAlterSchemaCollectorPhaseOrder(t *testing.T) {
	schemaDiff := fullDiff(t)
	c := NewAlterSchemaSQLCollector(platform.NewPostgreSQL(nil))
	if err := c.Collect(schemaDiff); err != nil {
		t.Fatalf("Collect() error = %v", err)
	}

	steps := c.Steps()
	seen := map[Phase]bool{}
	last := -1
	for _, step := range steps {
		position := slices.Index(SchemaPhases, step.Phase)
		if position < last {
			t.Errorf("step %q in phase %s comes after phase %s", step.SQL, step.Phase, SchemaPhases[last])
		}
		last = position
		seen[step.Phase] = true
	}
	for _, phase := range SchemaPhases {
		if !seen[phase] {
			t.Errorf("no statement collected for phase %s", phase)
		}
	}

	if diff := cmp.Diff(queries(steps), c.Queries()); diff != "" {
		t.Errorf("Queries() does not match Steps() (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"ALTER DATABASE app RENAME TO shop"}, c.RenameSchemaQueries()); diff != "" {
		t.Errorf("RenameSchemaQueries() mismatch (-want +got):\n%s", diff)
	}
	if got := c.Queries(); got[len(got)-1] != "ALTER DATABASE app RENAME TO shop" {
		t.Errorf("schema rename is not the last statement: %q", got[len(got)-1])
	}
	if err := platform.Validate(platform.NewPostgreSQL(nil), c.Queries()); err != nil {
		t.Errorf("generated SQL does not parse: %v", err)
	}
}

func TestAlterSchemaCollectorForeignKeySources(t *testing.T) {
	c := NewAlterSchemaSQLCollector(platform.NewPostgreSQL(nil))
	if err := c.Collect(fullDiff(t)); err != nil {
		t.Fatal(err)
	}

	// Dropped tables first, then altered tables.
	expectedDrops := []string{
		"ALTER TABLE audit DROP CONSTRAINT fk_audit_user",
	}
	if diff := cmp.Diff(expectedDrops, c.DropForeignKeyQueries()); diff != "" {
		t.Errorf("DropForeignKeyQueries() mismatch (-want +got):\n%s", diff)
	}

	// Created tables first, then altered tables.
	expectedCreates := []string{
		"ALTER TABLE invites ADD CONSTRAINT fk_invites_member FOREIGN KEY (member_id) REFERENCES members (id) ON DELETE RESTRICT ON UPDATE RESTRICT",
		"ALTER TABLE members ADD CONSTRAINT fk_members_team FOREIGN KEY (team_id) REFERENCES teams (id) ON DELETE SET NULL ON UPDATE RESTRICT",
	}
	if diff := cmp.Diff(expectedCreates, c.CreateForeignKeyQueries()); diff != "" {
		t.Errorf("CreateForeignKeyQueries() mismatch (-want +got):\n%s", diff)
	}
}

func TestAlterSchemaCollectorDropsSequencesBeforeCreatingTables(t *testing.T) {
	oldSchema := mustParse(t, `
name: app
sequences:
  - {name: s1}
`)
	newSchema := mustParse(t, `
name: app
tables:
  - name: t1
    columns:
      - {name: id, type: integer}
`)
	schemaDiff := comparator.NewSchemaComparator(nil).Compare(oldSchema, newSchema)

	c := NewAlterSchemaSQLCollector(platform.NewPostgreSQL(nil))
	if err := c.Collect(schemaDiff); err != nil {
		t.Fatal(err)
	}

	expected := []string{
		"DROP SEQUENCE s1",
		"CREATE TABLE t1 (\n    id INTEGER\n)",
	}
	if diff := cmp.Diff(expected, c.Queries()); diff != "" {
		t.Errorf("Queries() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(expected[:1], c.DropSequenceQueries()); diff != "" {
		t.Errorf("DropSequenceQueries() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(expected[1:], c.CreateTableQueries()); diff != "" {
		t.Errorf("CreateTableQueries() mismatch (-want +got):\n%s", diff)
	}
}

func TestAlterSchemaCollectorDefersCrossTableForeignKeys(t *testing.T) {
	oldSchema := ir.NewSchema("app")
	newSchema := mustParse(t, `
name: app
tables:
  - name: b
    columns:
      - {name: a_id, type: integer}
    foreign_keys:
      - {name: fk_b_a, columns: [a_id], references: {table: a, columns: [id]}}
  - name: a
    columns:
      - {name: id, type: integer, not_null: true}
    primary_key: {columns: [id]}
`)
	c := NewAlterSchemaSQLCollector(platform.NewMySQL(nil))
	if err := c.Collect(comparator.NewSchemaComparator(nil).Compare(oldSchema, newSchema)); err != nil {
		t.Fatal(err)
	}

	queries := c.Queries()
	fkAt := slices.Index(queries, "ALTER TABLE b ADD CONSTRAINT fk_b_a FOREIGN KEY (a_id) REFERENCES a (id) ON DELETE RESTRICT ON UPDATE RESTRICT")
	if fkAt < 0 {
		t.Fatalf("foreign key statement missing from %q", queries)
	}
	creates := c.CreateTableQueries()
	if len(creates) != 2 {
		t.Fatalf("CreateTableQueries() = %q, want two tables", creates)
	}
	for _, create := range creates {
		if strings.Contains(create, "FOREIGN KEY") {
			t.Errorf("CREATE TABLE carries a foreign key: %s", create)
		}
		if at := slices.Index(queries, create); at > fkAt {
			t.Errorf("%q comes after the foreign key", create)
		}
	}
}

func TestAlterSchemaCollectorIsIdempotent(t *testing.T) {
	schemaDiff := fullDiff(t)
	p := platform.NewPostgreSQL(nil)

	first := NewAlterSchemaSQLCollector(p)
	first.Init()
	if err := first.Collect(schemaDiff); err != nil {
		t.Fatal(err)
	}
	second := NewAlterSchemaSQLCollector(p)
	second.Init()
	if err := second.Collect(schemaDiff); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(first.Steps(), second.Steps()); diff != "" {
		t.Errorf("two collectors disagree (-first +second):\n%s", diff)
	}

	want := first.Queries()
	first.Init()
	if err := first.Collect(schemaDiff); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(want, first.Queries()); diff != "" {
		t.Errorf("collecting again after Init() changed the output (-want +got):\n%s", diff)
	}
}

func TestAlterSchemaCollectorUnsupported(t *testing.T) {
	oldSchema := ir.NewSchema("app")
	newSchema := mustParse(t, `
name: app
tables:
  - name: t1
    columns:
      - {name: id, type: integer}
sequences:
  - {name: s1}
`)
	schemaDiff := comparator.NewSchemaComparator(nil).Compare(oldSchema, newSchema)

	c := NewAlterSchemaSQLCollector(platform.NewMySQL(nil))
	err := c.Collect(schemaDiff)
	if !errors.Is(err, platform.ErrUnsupported) {
		t.Fatalf("Collect() error = %v, want ErrUnsupported", err)
	}
	if !strings.Contains(err.Error(), "failed to create sequence s1") {
		t.Errorf("error does not name the sequence: %v", err)
	}
	if got := c.Queries(); len(got) != 0 {
		t.Errorf("Queries() after a failed Collect() = %q, want none", got)
	}
}

// failingPlatform rejects every index creation
type failingPlatform struct {
	*platform.PostgreSQL
}

func (failingPlatform) CreateIndexSQL(*ir.Index, *ir.Table) (string, error) {
	return "", &platform.UnsupportedError{Platform: "failing", Feature: "indexes"}
}

func TestCollectIsAtomic(t *testing.T) {
	p := failingPlatform{platform.NewPostgreSQL(nil)}

	alter := NewAlterTableSQLCollector(p)
	err := alter.Collect(usersToMembers(t))
	var unsupportedErr *platform.UnsupportedError
	if !errors.As(err, &unsupportedErr) || unsupportedErr.Feature != "indexes" {
		t.Fatalf("Collect() error = %v, want unsupported indexes", err)
	}
	if got := alter.Queries(); len(got) != 0 {
		t.Errorf("Queries() = %q, want none", got)
	}

	schema := NewAlterSchemaSQLCollector(p)
	sequenceOnly := diff.NewSchemaDiff(ir.NewSchema("app"), ir.NewSchema("app"))
	sequence, _ := ir.NewSequence("s1", 1, 1)
	sequenceOnly.CreatedSequences = []*ir.Sequence{sequence}
	if err := schema.Collect(sequenceOnly); err != nil {
		t.Fatal(err)
	}
	if err := schema.Collect(fullDiff(t)); err == nil {
		t.Fatal("Collect() should fail on the index")
	}
	if diff := cmp.Diff([]string{"CREATE SEQUENCE s1 INCREMENT BY 1 START WITH 1"}, schema.Queries()); diff != "" {
		t.Errorf("failed Collect() changed the collector (-want +got):\n%s", diff)
	}
}
