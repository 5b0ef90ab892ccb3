package comparator

import (
	"slices"

	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/ir"
)

// TableOption configures a TableComparator
type TableOption func(*TableComparator)

// WithColumnRenameDetection turns a dropped column and a created column that
// differ only by name into a renamed column.
func WithColumnRenameDetection(enabled bool) TableOption {
	return func(c *TableComparator) {
		c.detectColumnRenames = enabled
	}
}

// TableComparator compares two versions of a table
type TableComparator struct {
	columns             *ColumnComparator
	detectColumnRenames bool
}

func NewTableComparator(options ...TableOption) *TableComparator {
	c := &TableComparator{columns: NewColumnComparator()}
	for _, option := range options {
		option(c)
	}
	return c
}

// Compare returns the diff between oldTable and newTable. Created and altered
// columns follow the column order of newTable, dropped columns the order of
// oldTable.
func (c *TableComparator) Compare(oldTable, newTable *ir.Table) *diff.TableDiff {
	tableDiff := diff.NewTableDiff(oldTable, newTable)

	c.compareColumns(tableDiff, oldTable, newTable)
	if c.detectColumnRenames {
		c.detectRenamedColumns(tableDiff)
	}

	oldPK, newPK := oldTable.PrimaryKey(), newTable.PrimaryKey()
	switch {
	case oldPK == nil && newPK != nil:
		tableDiff.CreatedPrimaryKey = newPK
	case oldPK != nil && newPK == nil:
		tableDiff.DroppedPrimaryKey = oldPK
	case oldPK != nil && !EqualPrimaryKeys(oldPK, newPK):
		tableDiff.CreatedPrimaryKey = newPK
		tableDiff.DroppedPrimaryKey = oldPK
	}

	tableDiff.CreatedForeignKeys = missingFrom(newTable.ForeignKeys(), oldTable.ForeignKeys(), EqualForeignKeys)
	tableDiff.DroppedForeignKeys = missingFrom(oldTable.ForeignKeys(), newTable.ForeignKeys(), EqualForeignKeys)

	tableDiff.CreatedIndexes = missingFrom(newTable.Indexes(), oldTable.Indexes(), EqualIndexes)
	tableDiff.DroppedIndexes = missingFrom(oldTable.Indexes(), newTable.Indexes(), EqualIndexes)

	tableDiff.CreatedChecks = missingFrom(newTable.Checks(), oldTable.Checks(), EqualChecks)
	tableDiff.DroppedChecks = missingFrom(oldTable.Checks(), newTable.Checks(), EqualChecks)

	return tableDiff
}

func (c *TableComparator) compareColumns(tableDiff *diff.TableDiff, oldTable, newTable *ir.Table) {
	for _, newColumn := range newTable.Columns() {
		oldColumn, err := oldTable.GetColumn(newColumn.Name())
		if err != nil {
			tableDiff.CreatedColumns = append(tableDiff.CreatedColumns, newColumn)
			continue
		}
		if columnDiff := c.columns.Compare(oldColumn, newColumn); columnDiff.HasDifference() {
			tableDiff.AlteredColumns = append(tableDiff.AlteredColumns, columnDiff)
		}
	}

	for _, oldColumn := range oldTable.Columns() {
		if !newTable.HasColumn(oldColumn.Name()) {
			tableDiff.DroppedColumns = append(tableDiff.DroppedColumns, oldColumn)
		}
	}
}

// detectRenamedColumns pairs each created column with the first dropped
// column that differs from it only by name.
func (c *TableComparator) detectRenamedColumns(tableDiff *diff.TableDiff) {
	var created []*ir.Column
	for _, createdColumn := range tableDiff.CreatedColumns {
		matched := false
		for i, droppedColumn := range tableDiff.DroppedColumns {
			columnDiff := c.columns.Compare(droppedColumn, createdColumn)
			if !columnDiff.HasNameDifferenceOnly() {
				continue
			}
			logger.Get().Debug("Detected column rename",
				"table", tableDiff.New.Name(),
				"from", droppedColumn.Name(),
				"to", createdColumn.Name())
			tableDiff.AlteredColumns = append(tableDiff.AlteredColumns, columnDiff)
			tableDiff.DroppedColumns = slices.Delete(tableDiff.DroppedColumns, i, i+1)
			matched = true
			break
		}
		if !matched {
			created = append(created, createdColumn)
		}
	}
	tableDiff.CreatedColumns = created
}

// missingFrom returns the assets of from that have no equal counterpart of
// the same name in other.
func missingFrom[T ir.Asset](from, other []T, equal func(a, b T) bool) []T {
	var result []T
	for _, asset := range from {
		i := slices.IndexFunc(other, func(o T) bool { return o.Name() == asset.Name() })
		if i < 0 || !equal(asset, other[i]) {
			result = append(result, asset)
		}
	}
	return result
}

// EqualPrimaryKeys reports whether both primary keys have the same name and
// column list.
func EqualPrimaryKeys(a, b *ir.PrimaryKey) bool {
	return a.Name() == b.Name() && slices.Equal(a.ColumnNames(), b.ColumnNames())
}

// EqualForeignKeys compares name, local and foreign columns, foreign table and
// referential actions. Column order matters.
func EqualForeignKeys(a, b *ir.ForeignKey) bool {
	return a.Name() == b.Name() &&
		slices.Equal(a.LocalColumnNames(), b.LocalColumnNames()) &&
		a.ForeignTableName() == b.ForeignTableName() &&
		slices.Equal(a.ForeignColumnNames(), b.ForeignColumnNames()) &&
		a.OnDelete() == b.OnDelete() &&
		a.OnUpdate() == b.OnUpdate()
}

// EqualIndexes compares name, columns and uniqueness.
func EqualIndexes(a, b *ir.Index) bool {
	return a.Name() == b.Name() &&
		slices.Equal(a.ColumnNames(), b.ColumnNames()) &&
		a.IsUnique() == b.IsUnique()
}

// EqualChecks compares name and definition.
func EqualChecks(a, b *ir.Check) bool {
	return a.Name() == b.Name() && a.Definition() == b.Definition()
}
