package schemadiff

import (
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/internal/plan"
	"github.com/schemadiff/schemadiff/internal/platform"
	"github.com/schemadiff/schemadiff/internal/sqlcollector"
	"github.com/schemadiff/schemadiff/ir"
)

// Re-export important types for external consumption

// Schema represents a database schema with its tables, sequences and views.
type Schema = ir.Schema

// Table represents a table with its columns and constraints.
type Table = ir.Table

// Column represents a table column.
type Column = ir.Column

type (
	PrimaryKey = ir.PrimaryKey
	ForeignKey = ir.ForeignKey
	Index      = ir.Index
	Check      = ir.Check
	Sequence   = ir.Sequence
	View       = ir.View
)

// Document is the YAML/JSON form of a schema.
type Document = ir.Document

// SchemaDiff holds every change between two schema versions.
type SchemaDiff = diff.SchemaDiff

// TableDiff holds the changes of one table.
type TableDiff = diff.TableDiff

// ColumnDiff holds the changed properties of one column.
type ColumnDiff = diff.ColumnDiff

// Platform renders DDL for one database server.
type Platform = platform.Platform

// UnsupportedError is returned when a platform cannot express a change.
type UnsupportedError = platform.UnsupportedError

// Plan represents a migration plan that can be applied to a database.
type Plan = plan.Plan

// Step is a single statement of a plan.
type Step = sqlcollector.Step

// ErrUnsupported matches every UnsupportedError with errors.Is.
var ErrUnsupported = platform.ErrUnsupported
