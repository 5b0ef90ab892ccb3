package sqlcollector

import (
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/internal/platform"
	"github.com/schemadiff/schemadiff/ir"
)

// AlterTableSQLCollector collects the DDL turning the old version of tables
// into the new one. A renamed table is renamed first, every later statement
// addresses it by its new name.
type AlterTableSQLCollector struct {
	platform platform.Platform
	acc      accumulator
}

func NewAlterTableSQLCollector(p platform.Platform) *AlterTableSQLCollector {
	c := &AlterTableSQLCollector{platform: p}
	c.Init()
	return c
}

func (c *AlterTableSQLCollector) Init() {
	c.acc.reset()
}

// Collect adds the statements for one table diff. Nothing is recorded when
// the platform rejects any of them.
func (c *AlterTableSQLCollector) Collect(tableDiff *diff.TableDiff) error {
	b := tableBuilder{platform: c.platform, table: tableDiff.New}

	if tableDiff.HasNameDifference() {
		context := sqlContext{objectType: ObjectTable, operation: OperationRename, objectPath: tableDiff.Old.Name()}
		stmt, err := c.platform.RenameTableSQL(tableDiff)
		if err != nil {
			return rejected(c.platform, context, err)
		}
		b.acc.add(PhaseRenameTable, context, stmt)
	}

	if err := b.columns(tableDiff); err != nil {
		return err
	}
	if err := b.primaryKey(tableDiff); err != nil {
		return err
	}
	if err := b.foreignKeys(tableDiff); err != nil {
		return err
	}
	if err := b.indexes(tableDiff); err != nil {
		return err
	}
	if err := b.checks(tableDiff); err != nil {
		return err
	}

	c.acc.merge(&b.acc)
	return nil
}

func (c *AlterTableSQLCollector) phaseQueries(phase Phase) []string { return c.acc.queries(phase) }

func (c *AlterTableSQLCollector) RenameTableQueries() []string      { return c.phaseQueries(PhaseRenameTable) }
func (c *AlterTableSQLCollector) DropCheckQueries() []string        { return c.phaseQueries(PhaseDropCheck) }
func (c *AlterTableSQLCollector) DropIndexQueries() []string        { return c.phaseQueries(PhaseDropIndex) }
func (c *AlterTableSQLCollector) DropForeignKeyQueries() []string   { return c.phaseQueries(PhaseDropForeignKey) }
func (c *AlterTableSQLCollector) DropPrimaryKeyQueries() []string   { return c.phaseQueries(PhaseDropPrimaryKey) }
func (c *AlterTableSQLCollector) DropColumnQueries() []string       { return c.phaseQueries(PhaseDropColumn) }
func (c *AlterTableSQLCollector) AlterColumnQueries() []string      { return c.phaseQueries(PhaseAlterColumn) }
func (c *AlterTableSQLCollector) CreateColumnQueries() []string     { return c.phaseQueries(PhaseCreateColumn) }
func (c *AlterTableSQLCollector) CreatePrimaryKeyQueries() []string { return c.phaseQueries(PhaseCreatePrimaryKey) }
func (c *AlterTableSQLCollector) CreateIndexQueries() []string      { return c.phaseQueries(PhaseCreateIndex) }
func (c *AlterTableSQLCollector) CreateForeignKeyQueries() []string { return c.phaseQueries(PhaseCreateForeignKey) }
func (c *AlterTableSQLCollector) CreateCheckQueries() []string      { return c.phaseQueries(PhaseCreateCheck) }

// Steps returns the collected statements in TablePhases order
func (c *AlterTableSQLCollector) Steps() []Step {
	return flatten(TablePhases, &c.acc)
}

func (c *AlterTableSQLCollector) Queries() []string {
	return queries(c.Steps())
}

// tableBuilder gathers the statements of a single table diff until all of
// them were generated.
type tableBuilder struct {
	platform platform.Platform
	table    *ir.Table
	acc      accumulator
}

func (b *tableBuilder) context(objectType, operation, name string) sqlContext {
	return sqlContext{objectType: objectType, operation: operation, objectPath: objectPath(b.table.Name(), name)}
}

// one records the statement of a single-statement generator
func (b *tableBuilder) one(phase Phase, context sqlContext, generate func() (string, error)) error {
	stmt, err := generate()
	if err != nil {
		return rejected(b.platform, context, err)
	}
	b.acc.add(phase, context, stmt)
	return nil
}

// many records the statements of a multi-statement generator
func (b *tableBuilder) many(phase Phase, context sqlContext, generate func() ([]string, error)) error {
	statements, err := generate()
	if err != nil {
		return rejected(b.platform, context, err)
	}
	b.acc.add(phase, context, statements...)
	return nil
}

func (b *tableBuilder) columns(tableDiff *diff.TableDiff) error {
	for _, column := range tableDiff.CreatedColumns {
		err := b.many(PhaseCreateColumn, b.context(ObjectColumn, OperationCreate, column.Name()), func() ([]string, error) {
			return b.platform.CreateColumnSQL(column, b.table)
		})
		if err != nil {
			return err
		}
	}

	for _, columnDiff := range tableDiff.AlteredColumns {
		var err error
		if columnDiff.HasNameDifferenceOnly() {
			err = b.many(PhaseAlterColumn, b.context(ObjectColumn, OperationRename, columnDiff.Old.Name()), func() ([]string, error) {
				return b.platform.RenameColumnSQL(columnDiff, b.table)
			})
		} else {
			err = b.many(PhaseAlterColumn, b.context(ObjectColumn, OperationAlter, columnDiff.New.Name()), func() ([]string, error) {
				return b.platform.AlterColumnSQL(columnDiff, b.table)
			})
		}
		if err != nil {
			return err
		}
	}

	for _, column := range tableDiff.DroppedColumns {
		err := b.one(PhaseDropColumn, b.context(ObjectColumn, OperationDrop, column.Name()), func() (string, error) {
			return b.platform.DropColumnSQL(column, b.table)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *tableBuilder) primaryKey(tableDiff *diff.TableDiff) error {
	if pk := tableDiff.CreatedPrimaryKey; pk != nil {
		err := b.one(PhaseCreatePrimaryKey, b.context(ObjectPrimaryKey, OperationCreate, pk.Name()), func() (string, error) {
			return b.platform.CreatePrimaryKeySQL(pk, b.table)
		})
		if err != nil {
			return err
		}
	}
	if pk := tableDiff.DroppedPrimaryKey; pk != nil {
		return b.one(PhaseDropPrimaryKey, b.context(ObjectPrimaryKey, OperationDrop, pk.Name()), func() (string, error) {
			return b.platform.DropPrimaryKeySQL(pk, b.table)
		})
	}
	return nil
}

func (b *tableBuilder) foreignKeys(tableDiff *diff.TableDiff) error {
	for _, fk := range tableDiff.CreatedForeignKeys {
		err := b.one(PhaseCreateForeignKey, b.context(ObjectForeignKey, OperationCreate, fk.Name()), func() (string, error) {
			return b.platform.CreateForeignKeySQL(fk, b.table)
		})
		if err != nil {
			return err
		}
	}
	for _, fk := range tableDiff.DroppedForeignKeys {
		err := b.one(PhaseDropForeignKey, b.context(ObjectForeignKey, OperationDrop, fk.Name()), func() (string, error) {
			return b.platform.DropForeignKeySQL(fk, b.table)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *tableBuilder) indexes(tableDiff *diff.TableDiff) error {
	for _, index := range tableDiff.CreatedIndexes {
		err := b.one(PhaseCreateIndex, b.context(ObjectIndex, OperationCreate, index.Name()), func() (string, error) {
			return b.platform.CreateIndexSQL(index, b.table)
		})
		if err != nil {
			return err
		}
	}
	for _, index := range tableDiff.DroppedIndexes {
		err := b.one(PhaseDropIndex, b.context(ObjectIndex, OperationDrop, index.Name()), func() (string, error) {
			return b.platform.DropIndexSQL(index, b.table)
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (b *tableBuilder) checks(tableDiff *diff.TableDiff) error {
	for _, check := range tableDiff.CreatedChecks {
		err := b.one(PhaseCreateCheck, b.context(ObjectCheck, OperationCreate, check.Name()), func() (string, error) {
			return b.platform.CreateCheckSQL(check, b.table)
		})
		if err != nil {
			return err
		}
	}
	for _, check := range tableDiff.DroppedChecks {
		err := b.one(PhaseDropCheck, b.context(ObjectCheck, OperationDrop, check.Name()), func() (string, error) {
			return b.platform.DropCheckSQL(check, b.table)
		})
		if err != nil {
			return err
		}
	}
	return nil
}
