// Package sqlcollector turns schema definitions and diffs into ordered DDL.
//
// Every statement is recorded as a Step in a Phase and the collectors return
// statements phase by phase. Constraints are dropped before the columns and
// tables they depend on and created after them.
package sqlcollector

import (
	"strings"
)

// Phase groups statements that run at the same point of a migration
type Phase string

const (
	PhaseDropSequence     Phase = "drop_sequence"
	PhaseDropView         Phase = "drop_view"
	PhaseRenameTable      Phase = "rename_table"
	PhaseDropCheck        Phase = "drop_check"
	PhaseDropForeignKey   Phase = "drop_foreign_key"
	PhaseDropIndex        Phase = "drop_index"
	PhaseDropPrimaryKey   Phase = "drop_primary_key"
	PhaseDropTable        Phase = "drop_table"
	PhaseDropColumn       Phase = "drop_column"
	PhaseAlterColumn      Phase = "alter_column"
	PhaseCreateColumn     Phase = "create_column"
	PhaseCreateTable      Phase = "create_table"
	PhaseCreatePrimaryKey Phase = "create_primary_key"
	PhaseCreateIndex      Phase = "create_index"
	PhaseCreateForeignKey Phase = "create_foreign_key"
	PhaseCreateCheck      Phase = "create_check"
	PhaseCreateView       Phase = "create_view"
	PhaseCreateSequence   Phase = "create_sequence"
	PhaseRenameSchema     Phase = "rename_schema"
)

// SchemaPhases is the order in which AlterSchemaSQLCollector emits phases.
var SchemaPhases = []Phase{
	PhaseDropSequence,
	PhaseDropView,
	PhaseRenameTable,
	PhaseDropCheck,
	PhaseDropForeignKey,
	PhaseDropIndex,
	PhaseDropPrimaryKey,
	PhaseDropTable,
	PhaseDropColumn,
	PhaseAlterColumn,
	PhaseCreateColumn,
	PhaseCreateTable,
	PhaseCreatePrimaryKey,
	PhaseCreateIndex,
	PhaseCreateForeignKey,
	PhaseCreateCheck,
	PhaseCreateView,
	PhaseCreateSequence,
	PhaseRenameSchema,
}

// TablePhases is the order in which AlterTableSQLCollector emits phases.
var TablePhases = []Phase{
	PhaseRenameTable,
	PhaseDropCheck,
	PhaseDropIndex,
	PhaseDropForeignKey,
	PhaseDropPrimaryKey,
	PhaseDropColumn,
	PhaseAlterColumn,
	PhaseCreateColumn,
	PhaseCreatePrimaryKey,
	PhaseCreateIndex,
	PhaseCreateForeignKey,
	PhaseCreateCheck,
}

// Object types and operations recorded on steps
const (
	ObjectSchema     = "schema"
	ObjectTable      = "table"
	ObjectColumn     = "column"
	ObjectPrimaryKey = "primary_key"
	ObjectForeignKey = "foreign_key"
	ObjectIndex      = "index"
	ObjectCheck      = "check"
	ObjectSequence   = "sequence"
	ObjectView       = "view"

	OperationCreate = "create"
	OperationAlter  = "alter"
	OperationDrop   = "drop"
	OperationRename = "rename"
)

// Step represents a single SQL statement with the change that produced it
type Step struct {
	SQL        string `json:"sql"`
	Phase      Phase  `json:"phase"`
	ObjectType string `json:"object_type"`
	Operation  string `json:"operation"` // create, alter, drop, rename
	ObjectPath string `json:"object_path"`
}

// sqlContext describes the object a statement applies to
type sqlContext struct {
	objectType string
	operation  string
	objectPath string
}

func objectPath(parts ...string) string {
	return strings.Join(parts, ".")
}

// accumulator keeps the steps of each phase in collection order.
type accumulator struct {
	steps map[Phase][]Step
}

func (a *accumulator) reset() {
	a.steps = map[Phase][]Step{}
}

func (a *accumulator) add(phase Phase, context sqlContext, statements ...string) {
	if a.steps == nil {
		a.reset()
	}
	for _, stmt := range statements {
		a.steps[phase] = append(a.steps[phase], Step{
			SQL:        strings.TrimSpace(stmt),
			Phase:      phase,
			ObjectType: context.objectType,
			Operation:  context.operation,
			ObjectPath: context.objectPath,
		})
	}
}

// merge appends the steps of other after the steps already collected.
func (a *accumulator) merge(other *accumulator) {
	for phase, steps := range other.steps {
		if a.steps == nil {
			a.reset()
		}
		a.steps[phase] = append(a.steps[phase], steps...)
	}
}

func (a *accumulator) queries(phase Phase) []string {
	return queries(a.steps[phase])
}

// flatten walks the phases in order and, within a phase, the sources in the
// order given.
func flatten(order []Phase, sources ...*accumulator) []Step {
	steps := []Step{}
	for _, phase := range order {
		for _, source := range sources {
			steps = append(steps, source.steps[phase]...)
		}
	}
	return steps
}

func queries(steps []Step) []string {
	result := make([]string, 0, len(steps))
	for _, step := range steps {
		result = append(result, step.SQL)
	}
	return result
}
