package diff

import (
	"slices"

	"github.com/schemadiff/schemadiff/ir"
)

// ColumnProperty tags a column attribute that changed
type ColumnProperty string

const (
	PropertyType          ColumnProperty = "type"
	PropertyLength        ColumnProperty = "length"
	PropertyPrecision     ColumnProperty = "precision"
	PropertyScale         ColumnProperty = "scale"
	PropertyUnsigned      ColumnProperty = "unsigned"
	PropertyFixed         ColumnProperty = "fixed"
	PropertyNotNull       ColumnProperty = "not_null"
	PropertyDefault       ColumnProperty = "default"
	PropertyAutoIncrement ColumnProperty = "auto_increment"
	PropertyComment       ColumnProperty = "comment"
)

// ColumnProperties lists every property in comparison order.
var ColumnProperties = []ColumnProperty{
	PropertyType,
	PropertyLength,
	PropertyPrecision,
	PropertyScale,
	PropertyUnsigned,
	PropertyFixed,
	PropertyNotNull,
	PropertyDefault,
	PropertyAutoIncrement,
	PropertyComment,
}

// ColumnDiff represents changes to a column
type ColumnDiff struct {
	AssetDiff[*ir.Column]
	Properties []ColumnProperty
}

// NewColumnDiff creates a column diff with the given changed properties
func NewColumnDiff(oldColumn, newColumn *ir.Column, properties []ColumnProperty) *ColumnDiff {
	return &ColumnDiff{
		AssetDiff:  AssetDiff[*ir.Column]{Old: oldColumn, New: newColumn},
		Properties: properties,
	}
}

func (d *ColumnDiff) HasDifference() bool {
	return d.HasNameDifference() || len(d.Properties) > 0
}

func (d *ColumnDiff) HasNameDifferenceOnly() bool {
	return d.HasNameDifference() && len(d.Properties) == 0
}

// HasPropertyDifference reports whether any of the given properties changed
func (d *ColumnDiff) HasPropertyDifference(properties ...ColumnProperty) bool {
	for _, property := range properties {
		if slices.Contains(d.Properties, property) {
			return true
		}
	}
	return false
}
