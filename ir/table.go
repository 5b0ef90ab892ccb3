package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Table represents a database table
type Table struct {
	name        string
	columns     []*Column
	primaryKey  *PrimaryKey
	foreignKeys []*ForeignKey
	indexes     []*Index
	checks      []*Check
}

// NewTable creates an empty table.
func NewTable(name string) (*Table, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("table", name, "name", "must not be empty")
	}
	return &Table{name: name}, nil
}

func (t *Table) Name() string { return t.name }

// SetName renames the table. Tables owned by a schema are renamed through Schema.RenameTable.
func (t *Table) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("table", t.name, "name", "must not be empty")
	}
	t.name = name
	return nil
}

func (t *Table) container() string {
	return fmt.Sprintf("table %q", t.name)
}

// ========== COLUMNS ==========

// Columns returns the columns in declaration order.
func (t *Table) Columns() []*Column { return slices.Clone(t.columns) }

func (t *Table) HasColumn(name string) bool {
	return indexByName(t.columns, name) >= 0
}

func (t *Table) GetColumn(name string) (*Column, error) {
	if i := indexByName(t.columns, name); i >= 0 {
		return t.columns[i], nil
	}
	return nil, missing(t.container(), "column", name)
}

// CreateColumn creates a column and appends it to the table.
func (t *Table) CreateColumn(name string, typ ColumnType, options map[string]any) (*Column, error) {
	if t.HasColumn(name) {
		return nil, duplicate(t.container(), "column", name)
	}
	column, err := NewColumn(name, typ, options)
	if err != nil {
		return nil, err
	}
	t.columns = append(t.columns, column)
	return column, nil
}

// AddColumn appends an existing column to the table.
func (t *Table) AddColumn(column *Column) error {
	if t.HasColumn(column.Name()) {
		return duplicate(t.container(), "column", column.Name())
	}
	t.columns = append(t.columns, column)
	return nil
}

// RenameColumn renames a column and every reference to it held by the table's
// primary key, foreign keys and indexes.
func (t *Table) RenameColumn(oldName, newName string) error {
	column, err := t.GetColumn(oldName)
	if err != nil {
		return err
	}
	if oldName != newName && t.HasColumn(newName) {
		return duplicate(t.container(), "column", newName)
	}
	if err := column.SetName(newName); err != nil {
		return err
	}
	if t.primaryKey != nil {
		renameIn(t.primaryKey.columnNames, oldName, newName)
	}
	for _, fk := range t.foreignKeys {
		renameIn(fk.localColumnNames, oldName, newName)
	}
	for _, index := range t.indexes {
		renameIn(index.columnNames, oldName, newName)
	}
	return nil
}

// DropColumn removes a column. It fails when a key or index still references it.
func (t *Table) DropColumn(name string) error {
	i := indexByName(t.columns, name)
	if i < 0 {
		return missing(t.container(), "column", name)
	}
	if t.primaryKey != nil && slices.Contains(t.primaryKey.columnNames, name) {
		return invalid("table", t.name, "columns", fmt.Sprintf("column %q is used by primary key %q", name, t.primaryKey.name))
	}
	for _, fk := range t.foreignKeys {
		if slices.Contains(fk.localColumnNames, name) {
			return invalid("table", t.name, "columns", fmt.Sprintf("column %q is used by foreign key %q", name, fk.name))
		}
	}
	for _, index := range t.indexes {
		if slices.Contains(index.columnNames, name) {
			return invalid("table", t.name, "columns", fmt.Sprintf("column %q is used by index %q", name, index.name))
		}
	}
	t.columns = slices.Delete(t.columns, i, i+1)
	return nil
}

// ========== PRIMARY KEY ==========

func (t *Table) PrimaryKey() *PrimaryKey { return t.primaryKey }
func (t *Table) HasPrimaryKey() bool     { return t.primaryKey != nil }

// SetPrimaryKey replaces the primary key. An empty name is generated from the
// table and column names.
func (t *Table) SetPrimaryKey(columnNames []string, name string) (*PrimaryKey, error) {
	if err := t.checkColumnsExist(columnNames); err != nil {
		return nil, err
	}
	if name == "" {
		name = generateIdentifierName("pk", t.name, columnNames)
	}
	pk, err := NewPrimaryKey(name, columnNames)
	if err != nil {
		return nil, err
	}
	t.primaryKey = pk
	return pk, nil
}

func (t *Table) DropPrimaryKey() error {
	if t.primaryKey == nil {
		return missing(t.container(), "primary key", "")
	}
	t.primaryKey = nil
	return nil
}

// ========== FOREIGN KEYS ==========

func (t *Table) ForeignKeys() []*ForeignKey { return slices.Clone(t.foreignKeys) }

func (t *Table) HasForeignKey(name string) bool {
	return indexByName(t.foreignKeys, name) >= 0
}

func (t *Table) GetForeignKey(name string) (*ForeignKey, error) {
	if i := indexByName(t.foreignKeys, name); i >= 0 {
		return t.foreignKeys[i], nil
	}
	return nil, missing(t.container(), "foreign key", name)
}

// CreateForeignKey creates a foreign key with RESTRICT actions.
func (t *Table) CreateForeignKey(name string, localColumnNames []string, foreignTableName string, foreignColumnNames []string) (*ForeignKey, error) {
	if name == "" {
		name = generateIdentifierName("fk", t.name, localColumnNames)
	}
	fk, err := NewForeignKey(name, localColumnNames, foreignTableName, foreignColumnNames)
	if err != nil {
		return nil, err
	}
	if err := t.AddForeignKey(fk); err != nil {
		return nil, err
	}
	return fk, nil
}

// AddForeignKey attaches an existing foreign key; its local columns must exist.
func (t *Table) AddForeignKey(fk *ForeignKey) error {
	if fk.name == "" {
		fk.name = generateIdentifierName("fk", t.name, fk.localColumnNames)
	}
	if t.HasForeignKey(fk.name) {
		return duplicate(t.container(), "foreign key", fk.name)
	}
	if err := t.checkColumnsExist(fk.localColumnNames); err != nil {
		return err
	}
	t.foreignKeys = append(t.foreignKeys, fk)
	return nil
}

func (t *Table) DropForeignKey(name string) error {
	i := indexByName(t.foreignKeys, name)
	if i < 0 {
		return missing(t.container(), "foreign key", name)
	}
	t.foreignKeys = slices.Delete(t.foreignKeys, i, i+1)
	return nil
}

// ========== INDEXES ==========

func (t *Table) Indexes() []*Index { return slices.Clone(t.indexes) }

func (t *Table) HasIndex(name string) bool {
	return indexByName(t.indexes, name) >= 0
}

func (t *Table) GetIndex(name string) (*Index, error) {
	if i := indexByName(t.indexes, name); i >= 0 {
		return t.indexes[i], nil
	}
	return nil, missing(t.container(), "index", name)
}

// CreateIndex creates an index. An empty name is generated with an idx_ or
// uniq_ prefix.
func (t *Table) CreateIndex(name string, columnNames []string, unique bool) (*Index, error) {
	if name == "" {
		prefix := "idx"
		if unique {
			prefix = "uniq"
		}
		name = generateIdentifierName(prefix, t.name, columnNames)
	}
	if t.HasIndex(name) {
		return nil, duplicate(t.container(), "index", name)
	}
	if err := t.checkColumnsExist(columnNames); err != nil {
		return nil, err
	}
	index, err := NewIndex(name, columnNames, unique)
	if err != nil {
		return nil, err
	}
	t.indexes = append(t.indexes, index)
	return index, nil
}

func (t *Table) DropIndex(name string) error {
	i := indexByName(t.indexes, name)
	if i < 0 {
		return missing(t.container(), "index", name)
	}
	t.indexes = slices.Delete(t.indexes, i, i+1)
	return nil
}

// ========== CHECKS ==========

func (t *Table) Checks() []*Check { return slices.Clone(t.checks) }

func (t *Table) HasCheck(name string) bool {
	return indexByName(t.checks, name) >= 0
}

func (t *Table) GetCheck(name string) (*Check, error) {
	if i := indexByName(t.checks, name); i >= 0 {
		return t.checks[i], nil
	}
	return nil, missing(t.container(), "check", name)
}

// CreateCheck creates a check constraint. An empty name is generated from the
// table name and the constraint position.
func (t *Table) CreateCheck(name, definition string) (*Check, error) {
	if name == "" {
		name = generateIdentifierName("chk", t.name, []string{fmt.Sprint(len(t.checks) + 1)})
	}
	if t.HasCheck(name) {
		return nil, duplicate(t.container(), "check", name)
	}
	check, err := NewCheck(name, definition)
	if err != nil {
		return nil, err
	}
	t.checks = append(t.checks, check)
	return check, nil
}

func (t *Table) DropCheck(name string) error {
	i := indexByName(t.checks, name)
	if i < 0 {
		return missing(t.container(), "check", name)
	}
	t.checks = slices.Delete(t.checks, i, i+1)
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	clone := &Table{name: t.name}
	for _, column := range t.columns {
		clone.columns = append(clone.columns, column.Clone())
	}
	if t.primaryKey != nil {
		clone.primaryKey = t.primaryKey.Clone()
	}
	for _, fk := range t.foreignKeys {
		clone.foreignKeys = append(clone.foreignKeys, fk.Clone())
	}
	for _, index := range t.indexes {
		clone.indexes = append(clone.indexes, index.Clone())
	}
	for _, check := range t.checks {
		clone.checks = append(clone.checks, check.Clone())
	}
	return clone
}

func (t *Table) checkColumnsExist(names []string) error {
	for _, name := range names {
		if !t.HasColumn(name) {
			return missing(t.container(), "column", name)
		}
	}
	return nil
}

func indexByName[T Asset](assets []T, name string) int {
	return slices.IndexFunc(assets, func(a T) bool { return a.Name() == name })
}

func renameIn(names []string, oldName, newName string) {
	for i, name := range names {
		if name == oldName {
			names[i] = newName
		}
	}
}
