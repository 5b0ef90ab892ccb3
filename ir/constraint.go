package ir

import (
	"fmt"
	"hash/crc32"
	"slices"
	"strings"
)

// maxIdentifierLength is the shortest identifier limit among supported platforms (PostgreSQL).
const maxIdentifierLength = 63

// PrimaryKey represents the primary key of a table
type PrimaryKey struct {
	name        string
	columnNames []string
}

// NewPrimaryKey creates a primary key over the given columns.
func NewPrimaryKey(name string, columnNames []string) (*PrimaryKey, error) {
	if len(columnNames) == 0 {
		return nil, invalid("primary key", name, "columns", "must not be empty")
	}
	return &PrimaryKey{name: name, columnNames: slices.Clone(columnNames)}, nil
}

func (pk *PrimaryKey) Name() string          { return pk.name }
func (pk *PrimaryKey) ColumnNames() []string { return slices.Clone(pk.columnNames) }

// Clone returns a copy of the primary key.
func (pk *PrimaryKey) Clone() *PrimaryKey {
	return &PrimaryKey{name: pk.name, columnNames: slices.Clone(pk.columnNames)}
}

// ForeignKey represents a foreign key owned by a table
type ForeignKey struct {
	name               string
	localColumnNames   []string
	foreignTableName   string
	foreignColumnNames []string
	onDelete           ForeignKeyAction
	onUpdate           ForeignKeyAction
}

// NewForeignKey creates a foreign key with RESTRICT actions.
func NewForeignKey(name string, localColumnNames []string, foreignTableName string, foreignColumnNames []string) (*ForeignKey, error) {
	if len(localColumnNames) == 0 {
		return nil, invalid("foreign key", name, "local_columns", "must not be empty")
	}
	if strings.TrimSpace(foreignTableName) == "" {
		return nil, invalid("foreign key", name, "foreign_table", "must not be empty")
	}
	if len(foreignColumnNames) != len(localColumnNames) {
		return nil, invalid("foreign key", name, "foreign_columns",
			fmt.Sprintf("must list %d columns, got %d", len(localColumnNames), len(foreignColumnNames)))
	}
	return &ForeignKey{
		name:               name,
		localColumnNames:   slices.Clone(localColumnNames),
		foreignTableName:   foreignTableName,
		foreignColumnNames: slices.Clone(foreignColumnNames),
		onDelete:           ActionRestrict,
		onUpdate:           ActionRestrict,
	}, nil
}

func (fk *ForeignKey) Name() string                 { return fk.name }
func (fk *ForeignKey) LocalColumnNames() []string   { return slices.Clone(fk.localColumnNames) }
func (fk *ForeignKey) ForeignTableName() string     { return fk.foreignTableName }
func (fk *ForeignKey) ForeignColumnNames() []string { return slices.Clone(fk.foreignColumnNames) }
func (fk *ForeignKey) OnDelete() ForeignKeyAction   { return fk.onDelete }
func (fk *ForeignKey) OnUpdate() ForeignKeyAction   { return fk.onUpdate }

func (fk *ForeignKey) SetOnDelete(action ForeignKeyAction) error {
	parsed, ok := ParseForeignKeyAction(string(action))
	if !ok {
		return invalid("foreign key", fk.name, "on_delete", fmt.Sprintf("has unknown action %q", action))
	}
	fk.onDelete = parsed
	return nil
}

func (fk *ForeignKey) SetOnUpdate(action ForeignKeyAction) error {
	parsed, ok := ParseForeignKeyAction(string(action))
	if !ok {
		return invalid("foreign key", fk.name, "on_update", fmt.Sprintf("has unknown action %q", action))
	}
	fk.onUpdate = parsed
	return nil
}

// Clone returns a copy of the foreign key.
func (fk *ForeignKey) Clone() *ForeignKey {
	clone := *fk
	clone.localColumnNames = slices.Clone(fk.localColumnNames)
	clone.foreignColumnNames = slices.Clone(fk.foreignColumnNames)
	return &clone
}

// Index represents a table index
type Index struct {
	name        string
	columnNames []string
	unique      bool
}

// NewIndex creates an index over the given columns.
func NewIndex(name string, columnNames []string, unique bool) (*Index, error) {
	if len(columnNames) == 0 {
		return nil, invalid("index", name, "columns", "must not be empty")
	}
	return &Index{name: name, columnNames: slices.Clone(columnNames), unique: unique}, nil
}

func (i *Index) Name() string          { return i.name }
func (i *Index) ColumnNames() []string { return slices.Clone(i.columnNames) }
func (i *Index) IsUnique() bool        { return i.unique }

// Clone returns a copy of the index.
func (i *Index) Clone() *Index {
	return &Index{name: i.name, columnNames: slices.Clone(i.columnNames), unique: i.unique}
}

// Check represents a CHECK constraint
type Check struct {
	name       string
	definition string
}

// NewCheck creates a check constraint; definition is the boolean SQL expression.
func NewCheck(name, definition string) (*Check, error) {
	if strings.TrimSpace(definition) == "" {
		return nil, invalid("check", name, "definition", "must not be empty")
	}
	return &Check{name: name, definition: definition}, nil
}

func (c *Check) Name() string       { return c.name }
func (c *Check) Definition() string { return c.definition }

// Clone returns a copy of the check.
func (c *Check) Clone() *Check {
	clone := *c
	return &clone
}

// generateIdentifierName builds a deterministic name for an unnamed constraint
// or index, e.g. idx_users_email.
func generateIdentifierName(prefix, table string, columns []string) string {
	parts := append([]string{prefix, table}, columns...)
	name := strings.ToLower(strings.Join(parts, "_"))
	if len(name) <= maxIdentifierLength {
		return name
	}
	suffix := fmt.Sprintf("_%08x", crc32.ChecksumIEEE([]byte(name)))
	return name[:maxIdentifierLength-len(suffix)] + suffix
}
