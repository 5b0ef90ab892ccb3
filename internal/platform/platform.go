// Package platform renders dialect specific DDL for the SQL collectors and
// reports which features a dialect supports.
package platform

import (
	"errors"
	"fmt"

	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/ir"
)

// ErrUnsupported is matched by every UnsupportedError.
var ErrUnsupported = errors.New("unsupported by platform")

// UnsupportedError reports DDL the target dialect cannot express.
type UnsupportedError struct {
	Platform string
	Feature  string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("platform %s does not support %s", e.Platform, e.Feature)
}

func (e *UnsupportedError) Unwrap() error {
	return ErrUnsupported
}

func unsupported(p Platform, feature string) error {
	return &UnsupportedError{Platform: p.Name(), Feature: feature}
}

// CreateTableOptions controls what CreateTableSQL renders inline.
type CreateTableOptions struct {
	// ForeignKeys renders the table's foreign keys inside CREATE TABLE.
	// Collectors leave it off and add foreign keys once every table exists.
	ForeignKeys bool
}

// Platform generates SQL for one dialect. Methods return an UnsupportedError
// when the dialect cannot express the requested change. Statements carry no
// trailing semicolon.
type Platform interface {
	Name() string

	SupportsSequence() bool
	SupportsCheck() bool
	SupportsForeignKey() bool
	SupportsIndex() bool
	SupportsPrimaryKey() bool
	SupportsAutoIncrement() bool

	QuoteIdentifier(name string) string

	CreateTableSQL(table *ir.Table, options CreateTableOptions) ([]string, error)
	DropTableSQL(table *ir.Table) (string, error)
	RenameTableSQL(tableDiff *diff.TableDiff) (string, error)

	CreateColumnSQL(column *ir.Column, table *ir.Table) ([]string, error)
	AlterColumnSQL(columnDiff *diff.ColumnDiff, table *ir.Table) ([]string, error)
	RenameColumnSQL(columnDiff *diff.ColumnDiff, table *ir.Table) ([]string, error)
	DropColumnSQL(column *ir.Column, table *ir.Table) (string, error)

	CreatePrimaryKeySQL(pk *ir.PrimaryKey, table *ir.Table) (string, error)
	DropPrimaryKeySQL(pk *ir.PrimaryKey, table *ir.Table) (string, error)

	CreateForeignKeySQL(fk *ir.ForeignKey, table *ir.Table) (string, error)
	DropForeignKeySQL(fk *ir.ForeignKey, table *ir.Table) (string, error)

	CreateIndexSQL(index *ir.Index, table *ir.Table) (string, error)
	DropIndexSQL(index *ir.Index, table *ir.Table) (string, error)

	CreateCheckSQL(check *ir.Check, table *ir.Table) (string, error)
	DropCheckSQL(check *ir.Check, table *ir.Table) (string, error)

	CreateViewSQL(view *ir.View) (string, error)
	DropViewSQL(view *ir.View) (string, error)

	CreateSequenceSQL(sequence *ir.Sequence) (string, error)
	DropSequenceSQL(sequence *ir.Sequence) (string, error)

	RenameDatabaseSQL(schemaDiff *diff.SchemaDiff) ([]string, error)
}

// Validator is implemented by platforms that can check generated SQL
// without a database connection.
type Validator interface {
	ValidateSQL(statement string) error
}
