package sqlcollector

import (
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/internal/platform"
)

// AlterSchemaSQLCollector collects the DDL of a whole schema diff. Created,
// dropped and altered tables go through their own collectors; sequences,
// views and the schema rename are collected here.
//
// A collector is not safe for concurrent use. Use one collector per
// goroutine.
type AlterSchemaSQLCollector struct {
	platform platform.Platform

	createTables *CreateTableSQLCollector
	dropTables   *DropTableSQLCollector
	alterTables  *AlterTableSQLCollector

	acc accumulator
}

func NewAlterSchemaSQLCollector(p platform.Platform) *AlterSchemaSQLCollector {
	return &AlterSchemaSQLCollector{
		platform:     p,
		createTables: NewCreateTableSQLCollector(p),
		dropTables:   NewDropTableSQLCollector(p),
		alterTables:  NewAlterTableSQLCollector(p),
		acc:          accumulator{steps: map[Phase][]Step{}},
	}
}

// Init resets the collector and the table collectors it owns
func (c *AlterSchemaSQLCollector) Init() {
	c.createTables.Init()
	c.dropTables.Init()
	c.alterTables.Init()
	c.acc.reset()
}

// Collect adds the statements of the schema diff. When the platform rejects
// a statement the error is returned and the collector is left unchanged.
func (c *AlterSchemaSQLCollector) Collect(schemaDiff *diff.SchemaDiff) error {
	pending := NewAlterSchemaSQLCollector(c.platform)
	if err := pending.collect(schemaDiff); err != nil {
		return err
	}

	c.createTables.acc.merge(&pending.createTables.acc)
	c.dropTables.acc.merge(&pending.dropTables.acc)
	c.alterTables.acc.merge(&pending.alterTables.acc)
	c.acc.merge(&pending.acc)

	logger.Get().Debug("Collected schema diff",
		"platform", c.platform.Name(),
		"schema", schemaDiff.New.Name(),
		"statements", len(pending.Steps()))
	return nil
}

func (c *AlterSchemaSQLCollector) collect(schemaDiff *diff.SchemaDiff) error {
	if schemaDiff.HasNameDifference() {
		context := sqlContext{objectType: ObjectSchema, operation: OperationRename, objectPath: schemaDiff.Old.Name()}
		statements, err := c.platform.RenameDatabaseSQL(schemaDiff)
		if err != nil {
			return rejected(c.platform, context, err)
		}
		c.acc.add(PhaseRenameSchema, context, statements...)
	}

	for _, table := range schemaDiff.CreatedTables {
		if err := c.createTables.Collect(table); err != nil {
			return err
		}
	}
	for _, table := range schemaDiff.DroppedTables {
		if err := c.dropTables.Collect(table); err != nil {
			return err
		}
	}
	for _, tableDiff := range schemaDiff.AlteredTables {
		if err := c.alterTables.Collect(tableDiff); err != nil {
			return err
		}
	}

	for _, sequence := range schemaDiff.CreatedSequences {
		context := sqlContext{objectType: ObjectSequence, operation: OperationCreate, objectPath: sequence.Name()}
		stmt, err := c.platform.CreateSequenceSQL(sequence)
		if err != nil {
			return rejected(c.platform, context, err)
		}
		c.acc.add(PhaseCreateSequence, context, stmt)
	}
	for _, sequence := range schemaDiff.DroppedSequences {
		context := sqlContext{objectType: ObjectSequence, operation: OperationDrop, objectPath: sequence.Name()}
		stmt, err := c.platform.DropSequenceSQL(sequence)
		if err != nil {
			return rejected(c.platform, context, err)
		}
		c.acc.add(PhaseDropSequence, context, stmt)
	}

	for _, view := range schemaDiff.CreatedViews {
		context := sqlContext{objectType: ObjectView, operation: OperationCreate, objectPath: view.Name()}
		stmt, err := c.platform.CreateViewSQL(view)
		if err != nil {
			return rejected(c.platform, context, err)
		}
		c.acc.add(PhaseCreateView, context, stmt)
	}
	for _, view := range schemaDiff.DroppedViews {
		context := sqlContext{objectType: ObjectView, operation: OperationDrop, objectPath: view.Name()}
		stmt, err := c.platform.DropViewSQL(view)
		if err != nil {
			return rejected(c.platform, context, err)
		}
		c.acc.add(PhaseDropView, context, stmt)
	}
	return nil
}

// sources lists the accumulators in the order their steps are emitted within
// a phase. Foreign keys of dropped tables go before those dropped by an
// alteration; foreign keys of created tables go before those added by an
// alteration.
func (c *AlterSchemaSQLCollector) sources() []*accumulator {
	return []*accumulator{&c.acc, &c.dropTables.acc, &c.createTables.acc, &c.alterTables.acc}
}

// PhaseSteps returns the steps of a single phase in emission order.
func (c *AlterSchemaSQLCollector) PhaseSteps(phase Phase) []Step {
	return flatten([]Phase{phase}, c.sources()...)
}

func (c *AlterSchemaSQLCollector) phaseQueries(phase Phase) []string {
	return queries(c.PhaseSteps(phase))
}

func (c *AlterSchemaSQLCollector) DropSequenceQueries() []string     { return c.phaseQueries(PhaseDropSequence) }
func (c *AlterSchemaSQLCollector) DropViewQueries() []string         { return c.phaseQueries(PhaseDropView) }
func (c *AlterSchemaSQLCollector) RenameTableQueries() []string      { return c.phaseQueries(PhaseRenameTable) }
func (c *AlterSchemaSQLCollector) DropCheckQueries() []string        { return c.phaseQueries(PhaseDropCheck) }
func (c *AlterSchemaSQLCollector) DropForeignKeyQueries() []string   { return c.phaseQueries(PhaseDropForeignKey) }
func (c *AlterSchemaSQLCollector) DropIndexQueries() []string        { return c.phaseQueries(PhaseDropIndex) }
func (c *AlterSchemaSQLCollector) DropPrimaryKeyQueries() []string   { return c.phaseQueries(PhaseDropPrimaryKey) }
func (c *AlterSchemaSQLCollector) DropTableQueries() []string        { return c.phaseQueries(PhaseDropTable) }
func (c *AlterSchemaSQLCollector) DropColumnQueries() []string       { return c.phaseQueries(PhaseDropColumn) }
func (c *AlterSchemaSQLCollector) AlterColumnQueries() []string      { return c.phaseQueries(PhaseAlterColumn) }
func (c *AlterSchemaSQLCollector) CreateColumnQueries() []string     { return c.phaseQueries(PhaseCreateColumn) }
func (c *AlterSchemaSQLCollector) CreateTableQueries() []string      { return c.phaseQueries(PhaseCreateTable) }
func (c *AlterSchemaSQLCollector) CreatePrimaryKeyQueries() []string { return c.phaseQueries(PhaseCreatePrimaryKey) }
func (c *AlterSchemaSQLCollector) CreateIndexQueries() []string      { return c.phaseQueries(PhaseCreateIndex) }
func (c *AlterSchemaSQLCollector) CreateForeignKeyQueries() []string { return c.phaseQueries(PhaseCreateForeignKey) }
func (c *AlterSchemaSQLCollector) CreateCheckQueries() []string      { return c.phaseQueries(PhaseCreateCheck) }
func (c *AlterSchemaSQLCollector) CreateViewQueries() []string       { return c.phaseQueries(PhaseCreateView) }
func (c *AlterSchemaSQLCollector) CreateSequenceQueries() []string   { return c.phaseQueries(PhaseCreateSequence) }
func (c *AlterSchemaSQLCollector) RenameSchemaQueries() []string     { return c.phaseQueries(PhaseRenameSchema) }

// Steps returns every collected statement in SchemaPhases order
func (c *AlterSchemaSQLCollector) Steps() []Step {
	return flatten(SchemaPhases, c.sources()...)
}

// Queries returns the SQL of Steps
func (c *AlterSchemaSQLCollector) Queries() []string {
	return queries(c.Steps())
}
