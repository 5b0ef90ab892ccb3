package platform

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-version"
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/ir"
)

var (
	mysqlDefaultVersion = version.Must(version.NewVersion("5.7"))

	// CHECK constraints are parsed but ignored before 8.0.16.
	mysqlCheckVersion = version.Must(version.NewVersion("8.0.16"))
)

// MySQL renders DDL for MySQL and MariaDB. Primary keys are unnamed and
// sequences do not exist.
type MySQL struct {
	name    string
	version *version.Version
}

// NewMySQL creates a MySQL platform. A nil version means 5.7.
func NewMySQL(v *version.Version) *MySQL {
	if v == nil {
		v = mysqlDefaultVersion
	}
	return &MySQL{name: "mysql", version: v}
}

func (p *MySQL) Name() string                { return p.name }
func (p *MySQL) Version() *version.Version   { return p.version }
func (p *MySQL) SupportsSequence() bool      { return false }
func (p *MySQL) SupportsCheck() bool         { return p.version.GreaterThanOrEqual(mysqlCheckVersion) }
func (p *MySQL) SupportsForeignKey() bool    { return true }
func (p *MySQL) SupportsIndex() bool         { return true }
func (p *MySQL) SupportsPrimaryKey() bool    { return true }
func (p *MySQL) SupportsAutoIncrement() bool { return true }

func (p *MySQL) QuoteIdentifier(name string) string {
	if !needsQuoting(name, mysqlReservedWords, false) {
		return name
	}
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

var mysqlLiterals = literalFormatter{
	quoteString: mysqlQuoteLiteral,
	trueValue:   "1",
	falseValue:  "0",
}

func mysqlQuoteLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func (p *MySQL) columnType(column *ir.Column) string {
	var sqlType string
	switch column.Type() {
	case ir.TypeInteger:
		sqlType = "INT"
	case ir.TypeBigInt:
		sqlType = "BIGINT"
	case ir.TypeSmallInt:
		sqlType = "SMALLINT"
	case ir.TypeBoolean:
		return "TINYINT(1)"
	case ir.TypeString:
		if column.Fixed() {
			return sizedType("CHAR", valueOr(column.Length(), 255))
		}
		return sizedType("VARCHAR", valueOr(column.Length(), 255))
	case ir.TypeText:
		return "TEXT"
	case ir.TypeDecimal:
		sqlType = sizedType("NUMERIC", valueOr(column.Precision(), 10), valueOr(column.Scale(), 0))
	case ir.TypeFloat:
		sqlType = "DOUBLE PRECISION"
	case ir.TypeDate:
		return "DATE"
	case ir.TypeTime:
		return "TIME"
	case ir.TypeDateTime:
		return "DATETIME"
	case ir.TypeBlob:
		return "BLOB"
	case ir.TypeJSON:
		return "JSON"
	default:
		return strings.ToUpper(string(column.Type()))
	}
	if column.Unsigned() {
		sqlType += " UNSIGNED"
	}
	return sqlType
}

func (p *MySQL) columnDefinition(column *ir.Column) string {
	parts := []string{p.QuoteIdentifier(column.Name()), p.columnType(column)}
	if column.NotNull() {
		parts = append(parts, "NOT NULL")
	}
	if column.Default() != nil {
		parts = append(parts, "DEFAULT "+mysqlLiterals.format(column.Default()))
	}
	if column.AutoIncrement() {
		parts = append(parts, "AUTO_INCREMENT")
	}
	if column.Comment() != "" {
		parts = append(parts, "COMMENT "+mysqlQuoteLiteral(column.Comment()))
	}
	return strings.Join(parts, " ")
}

func (p *MySQL) indexDefinition(index *ir.Index) string {
	kind := "INDEX"
	if index.IsUnique() {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("%s %s (%s)", kind, p.QuoteIdentifier(index.Name()), quoteColumns(p, index.ColumnNames()))
}

func (p *MySQL) CreateTableSQL(table *ir.Table, options CreateTableOptions) ([]string, error) {
	var definitions []string
	for _, column := range table.Columns() {
		definitions = append(definitions, p.columnDefinition(column))
	}
	if pk := table.PrimaryKey(); pk != nil {
		definitions = append(definitions, fmt.Sprintf("PRIMARY KEY (%s)", quoteColumns(p, pk.ColumnNames())))
	}
	for _, index := range table.Indexes() {
		definitions = append(definitions, p.indexDefinition(index))
	}
	if checks := table.Checks(); len(checks) > 0 {
		if !p.SupportsCheck() {
			return nil, unsupported(p, "check constraints")
		}
		for _, check := range checks {
			definitions = append(definitions, checkClause(p, check))
		}
	}
	if options.ForeignKeys {
		for _, fk := range table.ForeignKeys() {
			definitions = append(definitions, foreignKeyClause(p, fk))
		}
	}
	return []string{createTableStatement(p, table, definitions, " ENGINE = InnoDB")}, nil
}

func (p *MySQL) DropTableSQL(table *ir.Table) (string, error) {
	return "DROP TABLE " + p.QuoteIdentifier(table.Name()), nil
}

func (p *MySQL) RenameTableSQL(tableDiff *diff.TableDiff) (string, error) {
	return alterTable(p, tableDiff.Old, "RENAME TO %s", p.QuoteIdentifier(tableDiff.New.Name())), nil
}

func (p *MySQL) CreateColumnSQL(column *ir.Column, table *ir.Table) ([]string, error) {
	return []string{alterTable(p, table, "ADD COLUMN %s", p.columnDefinition(column))}, nil
}

// AlterColumnSQL rewrites the whole column definition, renaming it on the way.
func (p *MySQL) AlterColumnSQL(columnDiff *diff.ColumnDiff, table *ir.Table) ([]string, error) {
	return []string{alterTable(p, table, "CHANGE COLUMN %s %s",
		p.QuoteIdentifier(columnDiff.Old.Name()), p.columnDefinition(columnDiff.New))}, nil
}

func (p *MySQL) RenameColumnSQL(columnDiff *diff.ColumnDiff, table *ir.Table) ([]string, error) {
	return p.AlterColumnSQL(columnDiff, table)
}

func (p *MySQL) DropColumnSQL(column *ir.Column, table *ir.Table) (string, error) {
	return alterTable(p, table, "DROP COLUMN %s", p.QuoteIdentifier(column.Name())), nil
}

func (p *MySQL) CreatePrimaryKeySQL(pk *ir.PrimaryKey, table *ir.Table) (string, error) {
	return alterTable(p, table, "ADD PRIMARY KEY (%s)", quoteColumns(p, pk.ColumnNames())), nil
}

func (p *MySQL) DropPrimaryKeySQL(_ *ir.PrimaryKey, table *ir.Table) (string, error) {
	return alterTable(p, table, "DROP PRIMARY KEY"), nil
}

func (p *MySQL) CreateForeignKeySQL(fk *ir.ForeignKey, table *ir.Table) (string, error) {
	return alterTable(p, table, "ADD %s", foreignKeyClause(p, fk)), nil
}

func (p *MySQL) DropForeignKeySQL(fk *ir.ForeignKey, table *ir.Table) (string, error) {
	return alterTable(p, table, "DROP FOREIGN KEY %s", p.QuoteIdentifier(fk.Name())), nil
}

func (p *MySQL) CreateIndexSQL(index *ir.Index, table *ir.Table) (string, error) {
	return createIndexStatement(p, index, table), nil
}

func (p *MySQL) DropIndexSQL(index *ir.Index, table *ir.Table) (string, error) {
	return fmt.Sprintf("DROP INDEX %s ON %s", p.QuoteIdentifier(index.Name()), p.QuoteIdentifier(table.Name())), nil
}

func (p *MySQL) CreateCheckSQL(check *ir.Check, table *ir.Table) (string, error) {
	if !p.SupportsCheck() {
		return "", unsupported(p, "check constraints")
	}
	return alterTable(p, table, "ADD %s", checkClause(p, check)), nil
}

func (p *MySQL) DropCheckSQL(check *ir.Check, table *ir.Table) (string, error) {
	if !p.SupportsCheck() {
		return "", unsupported(p, "check constraints")
	}
	return alterTable(p, table, "DROP CHECK %s", p.QuoteIdentifier(check.Name())), nil
}

func (p *MySQL) CreateViewSQL(view *ir.View) (string, error) {
	return createViewStatement(p, view), nil
}

func (p *MySQL) DropViewSQL(view *ir.View) (string, error) {
	return "DROP VIEW " + p.QuoteIdentifier(view.Name()), nil
}

func (p *MySQL) CreateSequenceSQL(*ir.Sequence) (string, error) {
	return "", unsupported(p, "sequences")
}

func (p *MySQL) DropSequenceSQL(*ir.Sequence) (string, error) {
	return "", unsupported(p, "sequences")
}

// RenameDatabaseSQL moves every table into a new database; MySQL has no
// RENAME DATABASE.
func (p *MySQL) RenameDatabaseSQL(schemaDiff *diff.SchemaDiff) ([]string, error) {
	oldName := p.QuoteIdentifier(schemaDiff.Old.Name())
	newName := p.QuoteIdentifier(schemaDiff.New.Name())

	queries := []string{"CREATE DATABASE " + newName}
	for _, table := range schemaDiff.New.Tables() {
		tableName := p.QuoteIdentifier(table.Name())
		queries = append(queries, fmt.Sprintf("RENAME TABLE %s.%s TO %s.%s", oldName, tableName, newName, tableName))
	}
	queries = append(queries, "DROP DATABASE "+oldName)
	return queries, nil
}
