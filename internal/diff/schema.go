package diff

import (
	"github.com/schemadiff/schemadiff/ir"
)

// SchemaDiff represents changes to a schema. Sequences and views have no
// diff of their own: a changed one is dropped and created again.
type SchemaDiff struct {
	AssetDiff[*ir.Schema]

	CreatedTables []*ir.Table
	AlteredTables []*TableDiff
	DroppedTables []*ir.Table

	CreatedSequences []*ir.Sequence
	DroppedSequences []*ir.Sequence

	CreatedViews []*ir.View
	DroppedViews []*ir.View
}

// NewSchemaDiff creates an empty schema diff
func NewSchemaDiff(oldSchema, newSchema *ir.Schema) *SchemaDiff {
	return &SchemaDiff{AssetDiff: AssetDiff[*ir.Schema]{Old: oldSchema, New: newSchema}}
}

func (d *SchemaDiff) HasDifference() bool {
	return d.HasNameDifference() || d.hasStructuralDifference()
}

func (d *SchemaDiff) HasNameDifferenceOnly() bool {
	return d.HasNameDifference() && !d.hasStructuralDifference()
}

func (d *SchemaDiff) hasStructuralDifference() bool {
	if len(d.CreatedTables) > 0 || len(d.DroppedTables) > 0 {
		return true
	}
	for _, tableDiff := range d.AlteredTables {
		if tableDiff.HasDifference() {
			return true
		}
	}
	return len(d.CreatedSequences) > 0 ||
		len(d.DroppedSequences) > 0 ||
		len(d.CreatedViews) > 0 ||
		len(d.DroppedViews) > 0
}
