package ir

import (
	"fmt"
	"slices"
	"strings"
)

// Asset is any named schema object.
type Asset interface {
	Name() string
}

// Schema represents a database schema: its tables, sequences and views.
type Schema struct {
	name      string
	tables    []*Table
	sequences []*Sequence
	views     []*View
}

// NewSchema creates an empty schema.
func NewSchema(name string) *Schema {
	return &Schema{name: name}
}

func (s *Schema) Name() string { return s.name }

func (s *Schema) SetName(name string) { s.name = name }

func (s *Schema) container() string {
	return fmt.Sprintf("schema %q", s.name)
}

// ========== TABLES ==========

// Tables returns the tables in creation order.
func (s *Schema) Tables() []*Table { return slices.Clone(s.tables) }

func (s *Schema) HasTable(name string) bool {
	return indexByName(s.tables, name) >= 0
}

func (s *Schema) GetTable(name string) (*Table, error) {
	if i := indexByName(s.tables, name); i >= 0 {
		return s.tables[i], nil
	}
	return nil, missing(s.container(), "table", name)
}

func (s *Schema) CreateTable(name string) (*Table, error) {
	if s.HasTable(name) {
		return nil, duplicate(s.container(), "table", name)
	}
	table, err := NewTable(name)
	if err != nil {
		return nil, err
	}
	s.tables = append(s.tables, table)
	return table, nil
}

func (s *Schema) AddTable(table *Table) error {
	if s.HasTable(table.Name()) {
		return duplicate(s.container(), "table", table.Name())
	}
	s.tables = append(s.tables, table)
	return nil
}

// RenameTable renames a table and the foreign keys of other tables referencing it.
func (s *Schema) RenameTable(oldName, newName string) error {
	table, err := s.GetTable(oldName)
	if err != nil {
		return err
	}
	if oldName != newName && s.HasTable(newName) {
		return duplicate(s.container(), "table", newName)
	}
	if err := table.SetName(newName); err != nil {
		return err
	}
	for _, other := range s.tables {
		for _, fk := range other.foreignKeys {
			if fk.foreignTableName == oldName {
				fk.foreignTableName = newName
			}
		}
	}
	return nil
}

func (s *Schema) DropTable(name string) error {
	i := indexByName(s.tables, name)
	if i < 0 {
		return missing(s.container(), "table", name)
	}
	s.tables = slices.Delete(s.tables, i, i+1)
	return nil
}

// ========== SEQUENCES ==========

func (s *Schema) Sequences() []*Sequence { return slices.Clone(s.sequences) }

func (s *Schema) HasSequence(name string) bool {
	return indexByName(s.sequences, name) >= 0
}

func (s *Schema) GetSequence(name string) (*Sequence, error) {
	if i := indexByName(s.sequences, name); i >= 0 {
		return s.sequences[i], nil
	}
	return nil, missing(s.container(), "sequence", name)
}

func (s *Schema) CreateSequence(name string, initialValue, incrementSize int) (*Sequence, error) {
	if s.HasSequence(name) {
		return nil, duplicate(s.container(), "sequence", name)
	}
	sequence, err := NewSequence(name, initialValue, incrementSize)
	if err != nil {
		return nil, err
	}
	s.sequences = append(s.sequences, sequence)
	return sequence, nil
}

func (s *Schema) DropSequence(name string) error {
	i := indexByName(s.sequences, name)
	if i < 0 {
		return missing(s.container(), "sequence", name)
	}
	s.sequences = slices.Delete(s.sequences, i, i+1)
	return nil
}

// ========== VIEWS ==========

func (s *Schema) Views() []*View { return slices.Clone(s.views) }

func (s *Schema) HasView(name string) bool {
	return indexByName(s.views, name) >= 0
}

func (s *Schema) GetView(name string) (*View, error) {
	if i := indexByName(s.views, name); i >= 0 {
		return s.views[i], nil
	}
	return nil, missing(s.container(), "view", name)
}

func (s *Schema) CreateView(name, sql string) (*View, error) {
	if s.HasView(name) {
		return nil, duplicate(s.container(), "view", name)
	}
	view, err := NewView(name, sql)
	if err != nil {
		return nil, err
	}
	s.views = append(s.views, view)
	return view, nil
}

func (s *Schema) DropView(name string) error {
	i := indexByName(s.views, name)
	if i < 0 {
		return missing(s.container(), "view", name)
	}
	s.views = slices.Delete(s.views, i, i+1)
	return nil
}

// Clone returns a deep copy of the schema.
func (s *Schema) Clone() *Schema {
	clone := NewSchema(s.name)
	for _, table := range s.tables {
		clone.tables = append(clone.tables, table.Clone())
	}
	for _, sequence := range s.sequences {
		copied := *sequence
		clone.sequences = append(clone.sequences, &copied)
	}
	for _, view := range s.views {
		copied := *view
		clone.views = append(clone.views, &copied)
	}
	return clone
}

// Sequence represents a database sequence
type Sequence struct {
	name          string
	initialValue  int
	incrementSize int
}

// NewSequence creates a sequence; both values must be positive.
func NewSequence(name string, initialValue, incrementSize int) (*Sequence, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("sequence", name, "name", "must not be empty")
	}
	if initialValue < 1 {
		return nil, invalid("sequence", name, "initial_value", fmt.Sprintf("must be a positive integer, got %d", initialValue))
	}
	if incrementSize < 1 {
		return nil, invalid("sequence", name, "increment_size", fmt.Sprintf("must be a positive integer, got %d", incrementSize))
	}
	return &Sequence{name: name, initialValue: initialValue, incrementSize: incrementSize}, nil
}

func (s *Sequence) Name() string       { return s.name }
func (s *Sequence) InitialValue() int  { return s.initialValue }
func (s *Sequence) IncrementSize() int { return s.incrementSize }

// Equal reports whether both sequences carry the same name and attributes.
func (s *Sequence) Equal(other *Sequence) bool {
	return other != nil && *s == *other
}

// View represents a database view
type View struct {
	name string
	sql  string
}

// NewView creates a view from its SELECT statement.
func NewView(name, sql string) (*View, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("view", name, "name", "must not be empty")
	}
	if strings.TrimSpace(sql) == "" {
		return nil, invalid("view", name, "sql", "must not be empty")
	}
	return &View{name: name, sql: sql}, nil
}

func (v *View) Name() string { return v.name }
func (v *View) SQL() string  { return v.sql }

// Equal reports whether both views carry the same name and definition.
func (v *View) Equal(other *View) bool {
	return other != nil && *v == *other
}
