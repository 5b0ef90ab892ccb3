package ir

import (
	"fmt"
)

// Document is the serialized form of a Schema, as read from YAML schema files.
// Include lists further documents merged in by the include processor; Build
// does not resolve it.
type Document struct {
	Name      string             `yaml:"name" json:"name"`
	Include   []string           `yaml:"include,omitempty" json:"include,omitempty"`
	Tables    []TableDocument    `yaml:"tables,omitempty" json:"tables,omitempty"`
	Sequences []SequenceDocument `yaml:"sequences,omitempty" json:"sequences,omitempty"`
	Views     []ViewDocument     `yaml:"views,omitempty" json:"views,omitempty"`
}

type TableDocument struct {
	Name        string               `yaml:"name" json:"name"`
	Columns     []ColumnDocument     `yaml:"columns" json:"columns"`
	PrimaryKey  *PrimaryKeyDocument  `yaml:"primary_key,omitempty" json:"primary_key,omitempty"`
	ForeignKeys []ForeignKeyDocument `yaml:"foreign_keys,omitempty" json:"foreign_keys,omitempty"`
	Indexes     []IndexDocument      `yaml:"indexes,omitempty" json:"indexes,omitempty"`
	Checks      []CheckDocument      `yaml:"checks,omitempty" json:"checks,omitempty"`
}

// ColumnDocument carries the column options (length, not_null, default, ...)
// inline next to the name and type.
type ColumnDocument struct {
	Name    string         `yaml:"name" json:"name"`
	Type    string         `yaml:"type" json:"type"`
	Options map[string]any `yaml:",inline" json:"options,omitempty"`
}

type PrimaryKeyDocument struct {
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Columns []string `yaml:"columns" json:"columns"`
}

type ForeignKeyDocument struct {
	Name       string            `yaml:"name,omitempty" json:"name,omitempty"`
	Columns    []string          `yaml:"columns" json:"columns"`
	References ReferenceDocument `yaml:"references" json:"references"`
	OnDelete   string            `yaml:"on_delete,omitempty" json:"on_delete,omitempty"`
	OnUpdate   string            `yaml:"on_update,omitempty" json:"on_update,omitempty"`
}

type ReferenceDocument struct {
	Table   string   `yaml:"table" json:"table"`
	Columns []string `yaml:"columns" json:"columns"`
}

type IndexDocument struct {
	Name    string   `yaml:"name,omitempty" json:"name,omitempty"`
	Columns []string `yaml:"columns" json:"columns"`
	Unique  bool     `yaml:"unique,omitempty" json:"unique,omitempty"`
}

type CheckDocument struct {
	Name       string `yaml:"name,omitempty" json:"name,omitempty"`
	Expression string `yaml:"expression" json:"expression"`
}

type SequenceDocument struct {
	Name          string `yaml:"name" json:"name"`
	InitialValue  int    `yaml:"initial_value,omitempty" json:"initial_value,omitempty"`
	IncrementSize int    `yaml:"increment_size,omitempty" json:"increment_size,omitempty"`
}

type ViewDocument struct {
	Name string `yaml:"name" json:"name"`
	SQL  string `yaml:"sql" json:"sql"`
}

// Build constructs a Schema from the document, validating every asset.
// Sequence values left at zero default to 1.
func (d *Document) Build() (*Schema, error) {
	schema := NewSchema(d.Name)

	for _, td := range d.Tables {
		if err := td.build(schema); err != nil {
			return nil, err
		}
	}

	for _, sd := range d.Sequences {
		initial, increment := sd.InitialValue, sd.IncrementSize
		if initial == 0 {
			initial = 1
		}
		if increment == 0 {
			increment = 1
		}
		if _, err := schema.CreateSequence(sd.Name, initial, increment); err != nil {
			return nil, err
		}
	}

	for _, vd := range d.Views {
		if _, err := schema.CreateView(vd.Name, vd.SQL); err != nil {
			return nil, err
		}
	}

	return schema, nil
}

func (td *TableDocument) build(schema *Schema) error {
	table, err := schema.CreateTable(td.Name)
	if err != nil {
		return err
	}

	for _, cd := range td.Columns {
		typ, ok := ParseColumnType(cd.Type)
		if !ok {
			return invalid("column", cd.Name, "type", fmt.Sprintf("has unknown value %q", cd.Type))
		}
		if _, err := table.CreateColumn(cd.Name, typ, cd.Options); err != nil {
			return fmt.Errorf("table %q: %w", td.Name, err)
		}
	}

	if td.PrimaryKey != nil {
		if _, err := table.SetPrimaryKey(td.PrimaryKey.Columns, td.PrimaryKey.Name); err != nil {
			return err
		}
	}

	for _, fd := range td.ForeignKeys {
		fk, err := table.CreateForeignKey(fd.Name, fd.Columns, fd.References.Table, fd.References.Columns)
		if err != nil {
			return err
		}
		if err := fk.SetOnDelete(ForeignKeyAction(fd.OnDelete)); err != nil {
			return err
		}
		if err := fk.SetOnUpdate(ForeignKeyAction(fd.OnUpdate)); err != nil {
			return err
		}
	}

	for _, id := range td.Indexes {
		if _, err := table.CreateIndex(id.Name, id.Columns, id.Unique); err != nil {
			return err
		}
	}

	for _, cd := range td.Checks {
		if _, err := table.CreateCheck(cd.Name, cd.Expression); err != nil {
			return err
		}
	}

	return nil
}

// FromSchema serializes a Schema back into a document. Generated names are
// written out explicitly.
func FromSchema(schema *Schema) *Document {
	doc := &Document{Name: schema.Name()}

	for _, table := range schema.Tables() {
		td := TableDocument{Name: table.Name()}
		for _, column := range table.Columns() {
			cd := ColumnDocument{Name: column.Name(), Type: string(column.Type())}
			if options := column.Options(); len(options) > 0 {
				cd.Options = options
			}
			td.Columns = append(td.Columns, cd)
		}
		if pk := table.PrimaryKey(); pk != nil {
			td.PrimaryKey = &PrimaryKeyDocument{Name: pk.Name(), Columns: pk.ColumnNames()}
		}
		for _, fk := range table.ForeignKeys() {
			td.ForeignKeys = append(td.ForeignKeys, ForeignKeyDocument{
				Name:    fk.Name(),
				Columns: fk.LocalColumnNames(),
				References: ReferenceDocument{
					Table:   fk.ForeignTableName(),
					Columns: fk.ForeignColumnNames(),
				},
				OnDelete: string(fk.OnDelete()),
				OnUpdate: string(fk.OnUpdate()),
			})
		}
		for _, index := range table.Indexes() {
			td.Indexes = append(td.Indexes, IndexDocument{Name: index.Name(), Columns: index.ColumnNames(), Unique: index.IsUnique()})
		}
		for _, check := range table.Checks() {
			td.Checks = append(td.Checks, CheckDocument{Name: check.Name(), Expression: check.Definition()})
		}
		doc.Tables = append(doc.Tables, td)
	}

	for _, sequence := range schema.Sequences() {
		doc.Sequences = append(doc.Sequences, SequenceDocument{
			Name:          sequence.Name(),
			InitialValue:  sequence.InitialValue(),
			IncrementSize: sequence.IncrementSize(),
		})
	}

	for _, view := range schema.Views() {
		doc.Views = append(doc.Views, ViewDocument{Name: view.Name(), SQL: view.SQL()})
	}

	return doc
}
