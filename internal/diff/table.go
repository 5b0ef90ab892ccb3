package diff

import (
	"github.com/schemadiff/schemadiff/ir"
)

// TableDiff represents changes to a table. A changed primary key, foreign
// key, index or check always appears as a dropped and a created entry.
type TableDiff struct {
	AssetDiff[*ir.Table]

	CreatedColumns []*ir.Column
	AlteredColumns []*ColumnDiff
	DroppedColumns []*ir.Column

	CreatedPrimaryKey *ir.PrimaryKey
	DroppedPrimaryKey *ir.PrimaryKey

	CreatedForeignKeys []*ir.ForeignKey
	DroppedForeignKeys []*ir.ForeignKey

	CreatedIndexes []*ir.Index
	DroppedIndexes []*ir.Index

	CreatedChecks []*ir.Check
	DroppedChecks []*ir.Check
}

// NewTableDiff creates an empty table diff
func NewTableDiff(oldTable, newTable *ir.Table) *TableDiff {
	return &TableDiff{AssetDiff: AssetDiff[*ir.Table]{Old: oldTable, New: newTable}}
}

func (d *TableDiff) HasDifference() bool {
	return d.HasNameDifference() || d.hasStructuralDifference()
}

func (d *TableDiff) HasNameDifferenceOnly() bool {
	return d.HasNameDifference() && !d.hasStructuralDifference()
}

func (d *TableDiff) hasStructuralDifference() bool {
	return len(d.CreatedColumns) > 0 ||
		len(d.AlteredColumns) > 0 ||
		len(d.DroppedColumns) > 0 ||
		d.CreatedPrimaryKey != nil ||
		d.DroppedPrimaryKey != nil ||
		len(d.CreatedForeignKeys) > 0 ||
		len(d.DroppedForeignKeys) > 0 ||
		len(d.CreatedIndexes) > 0 ||
		len(d.DroppedIndexes) > 0 ||
		len(d.CreatedChecks) > 0 ||
		len(d.DroppedChecks) > 0
}
