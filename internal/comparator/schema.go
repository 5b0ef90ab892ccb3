package comparator

import (
	"slices"

	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/ir"
)

// SchemaComparator compares two versions of a schema
type SchemaComparator struct {
	tables *TableComparator
}

// NewSchemaComparator creates a schema comparator. A nil table comparator
// means one with default options.
func NewSchemaComparator(tables *TableComparator) *SchemaComparator {
	if tables == nil {
		tables = NewTableComparator()
	}
	return &SchemaComparator{tables: tables}
}

// Compare returns the diff between oldSchema and newSchema.
func (c *SchemaComparator) Compare(oldSchema, newSchema *ir.Schema) *diff.SchemaDiff {
	schemaDiff := diff.NewSchemaDiff(oldSchema, newSchema)

	for _, newTable := range newSchema.Tables() {
		oldTable, err := oldSchema.GetTable(newTable.Name())
		if err != nil {
			schemaDiff.CreatedTables = append(schemaDiff.CreatedTables, newTable)
			continue
		}
		if tableDiff := c.tables.Compare(oldTable, newTable); tableDiff.HasDifference() {
			schemaDiff.AlteredTables = append(schemaDiff.AlteredTables, tableDiff)
		}
	}

	for _, oldTable := range oldSchema.Tables() {
		if !newSchema.HasTable(oldTable.Name()) {
			schemaDiff.DroppedTables = append(schemaDiff.DroppedTables, oldTable)
		}
	}

	c.detectRenamedTables(schemaDiff)

	schemaDiff.CreatedSequences = missingFrom(newSchema.Sequences(), oldSchema.Sequences(), (*ir.Sequence).Equal)
	schemaDiff.DroppedSequences = missingFrom(oldSchema.Sequences(), newSchema.Sequences(), (*ir.Sequence).Equal)

	schemaDiff.CreatedViews = missingFrom(newSchema.Views(), oldSchema.Views(), (*ir.View).Equal)
	schemaDiff.DroppedViews = missingFrom(oldSchema.Views(), newSchema.Views(), (*ir.View).Equal)

	return schemaDiff
}

// detectRenamedTables pairs each created table, in order, with the first
// dropped table that differs from it only by name. The match is greedy: with
// several identical candidates the earliest dropped table wins.
func (c *SchemaComparator) detectRenamedTables(schemaDiff *diff.SchemaDiff) {
	var created []*ir.Table
	for _, createdTable := range schemaDiff.CreatedTables {
		matched := false
		for i, droppedTable := range schemaDiff.DroppedTables {
			tableDiff := c.tables.Compare(droppedTable, createdTable)
			if !tableDiff.HasNameDifferenceOnly() {
				continue
			}
			logger.Get().Debug("Detected table rename",
				"from", droppedTable.Name(),
				"to", createdTable.Name())
			schemaDiff.AlteredTables = append(schemaDiff.AlteredTables, tableDiff)
			schemaDiff.DroppedTables = slices.Delete(schemaDiff.DroppedTables, i, i+1)
			matched = true
			break
		}
		if !matched {
			created = append(created, createdTable)
		}
	}
	schemaDiff.CreatedTables = created
}
