// Package comparator computes the structural difference between two schema
// graphs.
package comparator

import (
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/ir"
)

// ColumnComparator compares two versions of a column
type ColumnComparator struct{}

func NewColumnComparator() *ColumnComparator {
	return &ColumnComparator{}
}

// Compare returns the diff between oldColumn and newColumn. Changed
// properties are listed in diff.ColumnProperties order. Defaults are
// compared strictly: 1 and 1.0 differ.
func (c *ColumnComparator) Compare(oldColumn, newColumn *ir.Column) *diff.ColumnDiff {
	var properties []diff.ColumnProperty
	for _, property := range diff.ColumnProperties {
		if !propertyEqual(property, oldColumn, newColumn) {
			properties = append(properties, property)
		}
	}
	return diff.NewColumnDiff(oldColumn, newColumn, properties)
}

func propertyEqual(property diff.ColumnProperty, a, b *ir.Column) bool {
	switch property {
	case diff.PropertyType:
		return a.Type() == b.Type()
	case diff.PropertyLength:
		return intEqual(a.Length(), b.Length())
	case diff.PropertyPrecision:
		return intEqual(a.Precision(), b.Precision())
	case diff.PropertyScale:
		return intEqual(a.Scale(), b.Scale())
	case diff.PropertyUnsigned:
		return a.Unsigned() == b.Unsigned()
	case diff.PropertyFixed:
		return a.Fixed() == b.Fixed()
	case diff.PropertyNotNull:
		return a.NotNull() == b.NotNull()
	case diff.PropertyDefault:
		return a.Default() == b.Default()
	case diff.PropertyAutoIncrement:
		return a.AutoIncrement() == b.AutoIncrement()
	case diff.PropertyComment:
		return a.Comment() == b.Comment()
	}
	return true
}

func intEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
