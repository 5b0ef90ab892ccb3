// Package schemadiff compares two versions of a relational schema and
// generates the DDL migrating one into the other for MySQL or PostgreSQL.
//
// A typical use loads both schema files, compares them and renders the diff
// for a platform:
//
//	oldSchema, _ := schemadiff.LoadSchema("current.yaml")
//	newSchema, _ := schemadiff.LoadSchema("desired.yaml")
//	p, _ := schemadiff.NewPlatform("postgres", "")
//	queries, err := schemadiff.Migrate(p, schemadiff.Compare(oldSchema, newSchema, schemadiff.CompareOptions{}))
package schemadiff

import (
	"fmt"

	"github.com/spf13/afero"

	"github.com/schemadiff/schemadiff/internal/comparator"
	"github.com/schemadiff/schemadiff/internal/include"
	"github.com/schemadiff/schemadiff/internal/plan"
	"github.com/schemadiff/schemadiff/internal/platform"
	"github.com/schemadiff/schemadiff/internal/sqlcollector"
	"github.com/schemadiff/schemadiff/ir"
)

// CompareOptions tunes schema comparison.
type CompareOptions struct {
	// DetectColumnRenames turns a dropped and a created column that differ
	// only by name into a rename.
	DetectColumnRenames bool
}

// LoadSchema reads a YAML or JSON schema file from disk, merging the files
// listed under its include key.
func LoadSchema(path string) (*Schema, error) {
	return include.NewProcessor(afero.NewOsFs()).Load(path)
}

// ParseSchema builds a schema from a YAML or JSON document.
func ParseSchema(data []byte) (*Schema, error) {
	return ir.Parse(data)
}

// NewPlatform returns the platform registered under name (mysql, mariadb,
// postgres and their aliases). An empty serverVersion selects the platform
// default.
func NewPlatform(name, serverVersion string) (Platform, error) {
	return platform.New(name, serverVersion)
}

// Compare returns the changes turning oldSchema into newSchema.
func Compare(oldSchema, newSchema *Schema, opts CompareOptions) *SchemaDiff {
	tables := comparator.NewTableComparator(comparator.WithColumnRenameDetection(opts.DetectColumnRenames))
	return comparator.NewSchemaComparator(tables).Compare(oldSchema, newSchema)
}

// Migrate returns the ordered DDL applying schemaDiff on the platform.
func Migrate(p Platform, schemaDiff *SchemaDiff) ([]string, error) {
	collector := sqlcollector.NewAlterSchemaSQLCollector(p)
	if err := collector.Collect(schemaDiff); err != nil {
		return nil, err
	}
	return collector.Queries(), nil
}

// NewPlan returns the migration plan of schemaDiff on the platform.
func NewPlan(p Platform, schemaDiff *SchemaDiff) (*Plan, error) {
	return plan.NewPlan(p, schemaDiff)
}

// CreateSQL returns the DDL creating the whole schema: tables first, then
// foreign keys between them, sequences and views.
func CreateSQL(p Platform, schema *Schema) ([]string, error) {
	steps, err := CreateSteps(p, schema)
	if err != nil {
		return nil, err
	}
	return queries(steps), nil
}

// CreateSteps is CreateSQL keeping the object each statement creates.
func CreateSteps(p Platform, schema *Schema) ([]Step, error) {
	tables := sqlcollector.NewCreateTableSQLCollector(p)
	for _, table := range schema.Tables() {
		if err := tables.Collect(table); err != nil {
			return nil, err
		}
	}
	steps := tables.Steps()

	for _, sequence := range schema.Sequences() {
		stmt, err := p.CreateSequenceSQL(sequence)
		if err != nil {
			return nil, fmt.Errorf("failed to create sequence %s: %w", sequence.Name(), err)
		}
		steps = append(steps, schemaStep(stmt, sqlcollector.PhaseCreateSequence, sqlcollector.ObjectSequence, sqlcollector.OperationCreate, sequence.Name()))
	}
	for _, view := range schema.Views() {
		stmt, err := p.CreateViewSQL(view)
		if err != nil {
			return nil, fmt.Errorf("failed to create view %s: %w", view.Name(), err)
		}
		steps = append(steps, schemaStep(stmt, sqlcollector.PhaseCreateView, sqlcollector.ObjectView, sqlcollector.OperationCreate, view.Name()))
	}
	return steps, nil
}

// DropSQL returns the DDL dropping the whole schema in reverse order of
// CreateSQL.
func DropSQL(p Platform, schema *Schema) ([]string, error) {
	steps, err := DropSteps(p, schema)
	if err != nil {
		return nil, err
	}
	return queries(steps), nil
}

// DropSteps is DropSQL keeping the object each statement drops.
func DropSteps(p Platform, schema *Schema) ([]Step, error) {
	var steps []Step
	for _, view := range schema.Views() {
		stmt, err := p.DropViewSQL(view)
		if err != nil {
			return nil, fmt.Errorf("failed to drop view %s: %w", view.Name(), err)
		}
		steps = append(steps, schemaStep(stmt, sqlcollector.PhaseDropView, sqlcollector.ObjectView, sqlcollector.OperationDrop, view.Name()))
	}

	tables := sqlcollector.NewDropTableSQLCollector(p)
	for _, table := range schema.Tables() {
		if err := tables.Collect(table); err != nil {
			return nil, err
		}
	}
	steps = append(steps, tables.Steps()...)

	for _, sequence := range schema.Sequences() {
		stmt, err := p.DropSequenceSQL(sequence)
		if err != nil {
			return nil, fmt.Errorf("failed to drop sequence %s: %w", sequence.Name(), err)
		}
		steps = append(steps, schemaStep(stmt, sqlcollector.PhaseDropSequence, sqlcollector.ObjectSequence, sqlcollector.OperationDrop, sequence.Name()))
	}
	return steps, nil
}

func schemaStep(stmt string, phase sqlcollector.Phase, objectType, operation, path string) Step {
	return Step{SQL: stmt, Phase: phase, ObjectType: objectType, Operation: operation, ObjectPath: path}
}

func queries(steps []Step) []string {
	result := make([]string, len(steps))
	for i, step := range steps {
		result[i] = step.SQL
	}
	return result
}
