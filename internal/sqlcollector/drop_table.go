package sqlcollector

import (
	"github.com/schemadiff/schemadiff/internal/platform"
	"github.com/schemadiff/schemadiff/ir"
)

var dropTablePhases = []Phase{PhaseDropForeignKey, PhaseDropTable}

// DropTableSQLCollector collects the DDL dropping whole tables. The foreign
// keys of every collected table are dropped before the first table.
type DropTableSQLCollector struct {
	platform platform.Platform
	acc      accumulator
}

func NewDropTableSQLCollector(p platform.Platform) *DropTableSQLCollector {
	c := &DropTableSQLCollector{platform: p}
	c.Init()
	return c
}

func (c *DropTableSQLCollector) Init() {
	c.acc.reset()
}

// Collect adds the statements dropping the table and its foreign keys
func (c *DropTableSQLCollector) Collect(table *ir.Table) error {
	var pending accumulator

	for _, fk := range table.ForeignKeys() {
		context := sqlContext{objectType: ObjectForeignKey, operation: OperationDrop, objectPath: objectPath(table.Name(), fk.Name())}
		stmt, err := c.platform.DropForeignKeySQL(fk, table)
		if err != nil {
			return rejected(c.platform, context, err)
		}
		pending.add(PhaseDropForeignKey, context, stmt)
	}

	context := sqlContext{objectType: ObjectTable, operation: OperationDrop, objectPath: table.Name()}
	stmt, err := c.platform.DropTableSQL(table)
	if err != nil {
		return rejected(c.platform, context, err)
	}
	pending.add(PhaseDropTable, context, stmt)

	c.acc.merge(&pending)
	return nil
}

func (c *DropTableSQLCollector) DropForeignKeyQueries() []string {
	return c.acc.queries(PhaseDropForeignKey)
}

func (c *DropTableSQLCollector) DropTableQueries() []string {
	return c.acc.queries(PhaseDropTable)
}

func (c *DropTableSQLCollector) Steps() []Step {
	return flatten(dropTablePhases, &c.acc)
}

func (c *DropTableSQLCollector) Queries() []string {
	return queries(c.Steps())
}
