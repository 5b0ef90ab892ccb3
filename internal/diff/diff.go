// Package diff holds the result of comparing two schema graphs. Diffs are
// produced by the comparator package and consumed by the SQL collectors.
package diff

import (
	"github.com/schemadiff/schemadiff/ir"
)

// AssetDiff holds the old and new version of a renamable asset
type AssetDiff[T ir.Asset] struct {
	Old T
	New T
}

// HasNameDifference reports whether the asset was renamed
func (d AssetDiff[T]) HasNameDifference() bool {
	return d.Old.Name() != d.New.Name()
}

// HasDifference reports whether the asset changed. Specialized diffs extend it
// with their structural changes.
func (d AssetDiff[T]) HasDifference() bool {
	return d.HasNameDifference()
}

// HasNameDifferenceOnly reports whether the name is the only change
func (d AssetDiff[T]) HasNameDifferenceOnly() bool {
	return d.HasNameDifference()
}
