package platform

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/lib/pq"
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/ir"
)

var (
	postgresDefaultVersion = version.Must(version.NewVersion("16"))

	// Identity columns replace SERIAL from PostgreSQL 10 on.
	postgresIdentityVersion = version.Must(version.NewVersion("10"))
)

// PostgreSQL renders DDL for PostgreSQL. Indexes and column comments are
// separate statements.
type PostgreSQL struct {
	version *version.Version
}

// NewPostgreSQL creates a PostgreSQL platform. A nil version means 16.
func NewPostgreSQL(v *version.Version) *PostgreSQL {
	if v == nil {
		v = postgresDefaultVersion
	}
	return &PostgreSQL{version: v}
}

func (p *PostgreSQL) Name() string              { return "postgres" }
func (p *PostgreSQL) Version() *version.Version { return p.version }
func (p *PostgreSQL) SupportsSequence() bool    { return true }
func (p *PostgreSQL) SupportsCheck() bool       { return true }
func (p *PostgreSQL) SupportsForeignKey() bool  { return true }
func (p *PostgreSQL) SupportsIndex() bool       { return true }
func (p *PostgreSQL) SupportsPrimaryKey() bool  { return true }
func (p *PostgreSQL) SupportsAutoIncrement() bool {
	return p.version.GreaterThanOrEqual(postgresIdentityVersion)
}

func (p *PostgreSQL) QuoteIdentifier(name string) string {
	if !needsQuoting(name, postgresReservedWords, true) {
		return name
	}
	return pq.QuoteIdentifier(name)
}

// pq prefixes escape strings with a space.
func postgresQuoteLiteral(s string) string {
	return strings.TrimSpace(pq.QuoteLiteral(s))
}

var postgresLiterals = literalFormatter{
	quoteString: postgresQuoteLiteral,
	trueValue:   "TRUE",
	falseValue:  "FALSE",
}

func (p *PostgreSQL) columnType(column *ir.Column) string {
	switch column.Type() {
	case ir.TypeInteger:
		return "INTEGER"
	case ir.TypeBigInt:
		return "BIGINT"
	case ir.TypeSmallInt:
		return "SMALLINT"
	case ir.TypeBoolean:
		return "BOOLEAN"
	case ir.TypeString:
		if column.Fixed() {
			return sizedType("CHAR", valueOr(column.Length(), 255))
		}
		return sizedType("VARCHAR", valueOr(column.Length(), 255))
	case ir.TypeText:
		return "TEXT"
	case ir.TypeDecimal:
		return sizedType("NUMERIC", valueOr(column.Precision(), 10), valueOr(column.Scale(), 0))
	case ir.TypeFloat:
		return "DOUBLE PRECISION"
	case ir.TypeDate:
		return "DATE"
	case ir.TypeTime:
		return "TIME"
	case ir.TypeDateTime:
		return "TIMESTAMP"
	case ir.TypeBlob:
		return "BYTEA"
	case ir.TypeJSON:
		return "JSON"
	}
	return strings.ToUpper(string(column.Type()))
}

func (p *PostgreSQL) columnDefinition(column *ir.Column) (string, error) {
	parts := []string{p.QuoteIdentifier(column.Name()), p.columnType(column)}
	if column.AutoIncrement() {
		if !p.SupportsAutoIncrement() {
			return "", unsupported(p, "identity columns")
		}
		parts = append(parts, "GENERATED BY DEFAULT AS IDENTITY")
	}
	if column.NotNull() {
		parts = append(parts, "NOT NULL")
	}
	if column.Default() != nil {
		parts = append(parts, "DEFAULT "+postgresLiterals.format(column.Default()))
	}
	return strings.Join(parts, " "), nil
}

func (p *PostgreSQL) commentSQL(column *ir.Column, table *ir.Table) string {
	comment := "NULL"
	if column.Comment() != "" {
		comment = postgresQuoteLiteral(column.Comment())
	}
	return fmt.Sprintf("COMMENT ON COLUMN %s.%s IS %s",
		p.QuoteIdentifier(table.Name()), p.QuoteIdentifier(column.Name()), comment)
}

func (p *PostgreSQL) CreateTableSQL(table *ir.Table, options CreateTableOptions) ([]string, error) {
	var definitions []string
	for _, column := range table.Columns() {
		definition, err := p.columnDefinition(column)
		if err != nil {
			return nil, err
		}
		definitions = append(definitions, definition)
	}
	if pk := table.PrimaryKey(); pk != nil {
		definitions = append(definitions, fmt.Sprintf("CONSTRAINT %s PRIMARY KEY (%s)",
			p.QuoteIdentifier(pk.Name()), quoteColumns(p, pk.ColumnNames())))
	}
	for _, check := range table.Checks() {
		definitions = append(definitions, checkClause(p, check))
	}
	if options.ForeignKeys {
		for _, fk := range table.ForeignKeys() {
			definitions = append(definitions, foreignKeyClause(p, fk))
		}
	}

	queries := []string{createTableStatement(p, table, definitions, "")}
	for _, index := range table.Indexes() {
		queries = append(queries, createIndexStatement(p, index, table))
	}
	for _, column := range table.Columns() {
		if column.Comment() != "" {
			queries = append(queries, p.commentSQL(column, table))
		}
	}
	return queries, nil
}

func (p *PostgreSQL) DropTableSQL(table *ir.Table) (string, error) {
	return "DROP TABLE " + p.QuoteIdentifier(table.Name()), nil
}

func (p *PostgreSQL) RenameTableSQL(tableDiff *diff.TableDiff) (string, error) {
	return alterTable(p, tableDiff.Old, "RENAME TO %s", p.QuoteIdentifier(tableDiff.New.Name())), nil
}

func (p *PostgreSQL) CreateColumnSQL(column *ir.Column, table *ir.Table) ([]string, error) {
	definition, err := p.columnDefinition(column)
	if err != nil {
		return nil, err
	}
	queries := []string{alterTable(p, table, "ADD COLUMN %s", definition)}
	if column.Comment() != "" {
		queries = append(queries, p.commentSQL(column, table))
	}
	return queries, nil
}

// AlterColumnSQL emits one statement per changed property group, after the
// rename when the column name changed.
func (p *PostgreSQL) AlterColumnSQL(columnDiff *diff.ColumnDiff, table *ir.Table) ([]string, error) {
	var queries []string
	if columnDiff.HasNameDifference() {
		renames, err := p.RenameColumnSQL(columnDiff, table)
		if err != nil {
			return nil, err
		}
		queries = append(queries, renames...)
	}

	column := columnDiff.New
	name := p.QuoteIdentifier(column.Name())

	if columnDiff.HasPropertyDifference(diff.PropertyType, diff.PropertyLength, diff.PropertyPrecision, diff.PropertyScale, diff.PropertyFixed) {
		queries = append(queries, alterTable(p, table, "ALTER COLUMN %s TYPE %s", name, p.columnType(column)))
	}
	if columnDiff.HasPropertyDifference(diff.PropertyNotNull) {
		if column.NotNull() {
			queries = append(queries, alterTable(p, table, "ALTER COLUMN %s SET NOT NULL", name))
		} else {
			queries = append(queries, alterTable(p, table, "ALTER COLUMN %s DROP NOT NULL", name))
		}
	}
	if columnDiff.HasPropertyDifference(diff.PropertyDefault) {
		if column.Default() != nil {
			queries = append(queries, alterTable(p, table, "ALTER COLUMN %s SET DEFAULT %s", name, postgresLiterals.format(column.Default())))
		} else {
			queries = append(queries, alterTable(p, table, "ALTER COLUMN %s DROP DEFAULT", name))
		}
	}
	if columnDiff.HasPropertyDifference(diff.PropertyAutoIncrement) {
		if column.AutoIncrement() {
			if !p.SupportsAutoIncrement() {
				return nil, unsupported(p, "identity columns")
			}
			queries = append(queries, alterTable(p, table, "ALTER COLUMN %s ADD GENERATED BY DEFAULT AS IDENTITY", name))
		} else {
			queries = append(queries, alterTable(p, table, "ALTER COLUMN %s DROP IDENTITY IF EXISTS", name))
		}
	}
	if columnDiff.HasPropertyDifference(diff.PropertyComment) {
		queries = append(queries, p.commentSQL(column, table))
	}
	return queries, nil
}

func (p *PostgreSQL) RenameColumnSQL(columnDiff *diff.ColumnDiff, table *ir.Table) ([]string, error) {
	return []string{alterTable(p, table, "RENAME COLUMN %s TO %s",
		p.QuoteIdentifier(columnDiff.Old.Name()), p.QuoteIdentifier(columnDiff.New.Name()))}, nil
}

func (p *PostgreSQL) DropColumnSQL(column *ir.Column, table *ir.Table) (string, error) {
	return alterTable(p, table, "DROP COLUMN %s", p.QuoteIdentifier(column.Name())), nil
}

func (p *PostgreSQL) CreatePrimaryKeySQL(pk *ir.PrimaryKey, table *ir.Table) (string, error) {
	return alterTable(p, table, "ADD CONSTRAINT %s PRIMARY KEY (%s)",
		p.QuoteIdentifier(pk.Name()), quoteColumns(p, pk.ColumnNames())), nil
}

func (p *PostgreSQL) DropPrimaryKeySQL(pk *ir.PrimaryKey, table *ir.Table) (string, error) {
	return alterTable(p, table, "DROP CONSTRAINT %s", p.QuoteIdentifier(pk.Name())), nil
}

func (p *PostgreSQL) CreateForeignKeySQL(fk *ir.ForeignKey, table *ir.Table) (string, error) {
	return alterTable(p, table, "ADD %s", foreignKeyClause(p, fk)), nil
}

func (p *PostgreSQL) DropForeignKeySQL(fk *ir.ForeignKey, table *ir.Table) (string, error) {
	return alterTable(p, table, "DROP CONSTRAINT %s", p.QuoteIdentifier(fk.Name())), nil
}

func (p *PostgreSQL) CreateIndexSQL(index *ir.Index, table *ir.Table) (string, error) {
	return createIndexStatement(p, index, table), nil
}

func (p *PostgreSQL) DropIndexSQL(index *ir.Index, _ *ir.Table) (string, error) {
	return "DROP INDEX " + p.QuoteIdentifier(index.Name()), nil
}

func (p *PostgreSQL) CreateCheckSQL(check *ir.Check, table *ir.Table) (string, error) {
	return alterTable(p, table, "ADD %s", checkClause(p, check)), nil
}

func (p *PostgreSQL) DropCheckSQL(check *ir.Check, table *ir.Table) (string, error) {
	return alterTable(p, table, "DROP CONSTRAINT %s", p.QuoteIdentifier(check.Name())), nil
}

func (p *PostgreSQL) CreateViewSQL(view *ir.View) (string, error) {
	return createViewStatement(p, view), nil
}

func (p *PostgreSQL) DropViewSQL(view *ir.View) (string, error) {
	return "DROP VIEW " + p.QuoteIdentifier(view.Name()), nil
}

func (p *PostgreSQL) CreateSequenceSQL(sequence *ir.Sequence) (string, error) {
	return fmt.Sprintf("CREATE SEQUENCE %s INCREMENT BY %d START WITH %d",
		p.QuoteIdentifier(sequence.Name()), sequence.IncrementSize(), sequence.InitialValue()), nil
}

func (p *PostgreSQL) DropSequenceSQL(sequence *ir.Sequence) (string, error) {
	return "DROP SEQUENCE " + p.QuoteIdentifier(sequence.Name()), nil
}

func (p *PostgreSQL) RenameDatabaseSQL(schemaDiff *diff.SchemaDiff) ([]string, error) {
	return []string{fmt.Sprintf("ALTER DATABASE %s RENAME TO %s",
		p.QuoteIdentifier(schemaDiff.Old.Name()), p.QuoteIdentifier(schemaDiff.New.Name()))}, nil
}
