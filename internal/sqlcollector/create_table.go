package sqlcollector

import (
	"github.com/schemadiff/schemadiff/internal/platform"
	"github.com/schemadiff/schemadiff/ir"
)

var createTablePhases = []Phase{PhaseCreateTable, PhaseCreateForeignKey}

// CreateTableSQLCollector collects the DDL creating whole tables. Foreign
// keys are kept apart from CREATE TABLE so that every table of a batch exists
// before any foreign key between them is added.
type CreateTableSQLCollector struct {
	platform platform.Platform
	acc      accumulator
}

// NewCreateTableSQLCollector creates an empty collector for the platform
func NewCreateTableSQLCollector(p platform.Platform) *CreateTableSQLCollector {
	c := &CreateTableSQLCollector{platform: p}
	c.Init()
	return c
}

// Init discards everything collected so far
func (c *CreateTableSQLCollector) Init() {
	c.acc.reset()
}

// Collect adds the statements creating the table. Nothing is recorded when
// the platform rejects any of them.
func (c *CreateTableSQLCollector) Collect(table *ir.Table) error {
	var pending accumulator

	context := sqlContext{objectType: ObjectTable, operation: OperationCreate, objectPath: table.Name()}
	statements, err := c.platform.CreateTableSQL(table, platform.CreateTableOptions{ForeignKeys: false})
	if err != nil {
		return rejected(c.platform, context, err)
	}
	pending.add(PhaseCreateTable, context, statements...)

	for _, fk := range table.ForeignKeys() {
		context := sqlContext{objectType: ObjectForeignKey, operation: OperationCreate, objectPath: objectPath(table.Name(), fk.Name())}
		stmt, err := c.platform.CreateForeignKeySQL(fk, table)
		if err != nil {
			return rejected(c.platform, context, err)
		}
		pending.add(PhaseCreateForeignKey, context, stmt)
	}

	c.acc.merge(&pending)
	return nil
}

func (c *CreateTableSQLCollector) CreateTableQueries() []string {
	return c.acc.queries(PhaseCreateTable)
}

func (c *CreateTableSQLCollector) CreateForeignKeyQueries() []string {
	return c.acc.queries(PhaseCreateForeignKey)
}

// Steps returns every table before any foreign key
func (c *CreateTableSQLCollector) Steps() []Step {
	return flatten(createTablePhases, &c.acc)
}

func (c *CreateTableSQLCollector) Queries() []string {
	return queries(c.Steps())
}
