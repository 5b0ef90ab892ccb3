package diff

import (
	"testing"

	"github.com/schemadiff/schemadiff/ir"
)

func mustColumn(t *testing.T, name string) *ir.Column {
	t.Helper()
	column, err := ir.NewColumn(name, ir.TypeString, nil)
	if err != nil {
		t.Fatal(err)
	}
	return column
}

func mustTable(t *testing.T, name string) *ir.Table {
	t.Helper()
	table, err := ir.NewTable(name)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestColumnDiffPredicates(t *testing.T) {
	foo, bar := mustColumn(t, "foo"), mustColumn(t, "bar")

	tests := []struct {
		name           string
		diff           *ColumnDiff
		wantDifference bool
		wantNameOnly   bool
	}{
		{"identical", NewColumnDiff(foo, foo, nil), false, false},
		{"renamed", NewColumnDiff(foo, bar, nil), true, true},
		{"altered", NewColumnDiff(foo, foo, []ColumnProperty{PropertyLength}), true, false},
		{"renamed and altered", NewColumnDiff(foo, bar, []ColumnProperty{PropertyNotNull}), true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.diff.HasDifference(); got != tt.wantDifference {
				t.Errorf("HasDifference() = %v, want %v", got, tt.wantDifference)
			}
			if got := tt.diff.HasNameDifferenceOnly(); got != tt.wantNameOnly {
				t.Errorf("HasNameDifferenceOnly() = %v, want %v", got, tt.wantNameOnly)
			}
		})
	}
}

func TestColumnDiffHasPropertyDifference(t *testing.T) {
	d := NewColumnDiff(mustColumn(t, "a"), mustColumn(t, "a"), []ColumnProperty{PropertyType, PropertyDefault})
	if !d.HasPropertyDifference(PropertyLength, PropertyDefault) {
		t.Error("HasPropertyDifference(length, default) = false, want true")
	}
	if d.HasPropertyDifference(PropertyComment) {
		t.Error("HasPropertyDifference(comment) = true, want false")
	}
}

func TestTableDiffPredicates(t *testing.T) {
	foo, bar := mustTable(t, "foo"), mustTable(t, "bar")

	renamed := NewTableDiff(foo, bar)
	if !renamed.HasDifference() || !renamed.HasNameDifferenceOnly() {
		t.Error("renamed table should report a name-only difference")
	}

	renamed.DroppedChecks = []*ir.Check{}
	if !renamed.HasNameDifferenceOnly() {
		t.Error("empty slices must not count as structural changes")
	}

	index, err := ir.NewIndex("idx", []string{"a"}, false)
	if err != nil {
		t.Fatal(err)
	}
	renamed.CreatedIndexes = []*ir.Index{index}
	if renamed.HasNameDifferenceOnly() {
		t.Error("renamed table with a new index is not a name-only difference")
	}

	unchanged := NewTableDiff(foo, foo)
	if unchanged.HasDifference() {
		t.Error("identical tables should have no difference")
	}
	unchanged.AlteredColumns = []*ColumnDiff{NewColumnDiff(mustColumn(t, "a"), mustColumn(t, "b"), nil)}
	if !unchanged.HasDifference() {
		t.Error("altered column should make the table differ")
	}
}

func TestSchemaDiffPredicates(t *testing.T) {
	app := ir.NewSchema("app")

	d := NewSchemaDiff(app, app)
	if d.HasDifference() {
		t.Error("empty schema diff should have no difference")
	}

	// An altered table entry without changes does not count.
	d.AlteredTables = []*TableDiff{NewTableDiff(mustTable(t, "t"), mustTable(t, "t"))}
	if d.HasDifference() {
		t.Error("unchanged altered table should not make the schema differ")
	}

	seq, err := ir.NewSequence("seq", 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	d.DroppedSequences = []*ir.Sequence{seq}
	if !d.HasDifference() {
		t.Error("dropped sequence should make the schema differ")
	}

	renamed := NewSchemaDiff(app, ir.NewSchema("app2"))
	if !renamed.HasNameDifferenceOnly() {
		t.Error("renamed schema should report a name-only difference")
	}
}
