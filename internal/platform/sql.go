package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schemadiff/schemadiff/ir"
)

const indent = "    "

// literalFormatter renders the dialect specific parts of a default value.
type literalFormatter struct {
	quoteString func(string) string
	trueValue   string
	falseValue  string
}

func (f literalFormatter) format(value any) string {
	switch v := value.(type) {
	case nil:
		return "NULL"
	case string:
		return f.quoteString(v)
	case bool:
		if v {
			return f.trueValue
		}
		return f.falseValue
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return f.quoteString(fmt.Sprint(value))
}

// sizedType renders NAME(size) or NAME(precision, scale).
func sizedType(name string, sizes ...int) string {
	parts := make([]string, len(sizes))
	for i, size := range sizes {
		parts[i] = strconv.Itoa(size)
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}

func valueOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

func foreignKeyClause(p Platform, fk *ir.ForeignKey) string {
	return fmt.Sprintf("CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s",
		p.QuoteIdentifier(fk.Name()),
		quoteColumns(p, fk.LocalColumnNames()),
		p.QuoteIdentifier(fk.ForeignTableName()),
		quoteColumns(p, fk.ForeignColumnNames()),
		fk.OnDelete(),
		fk.OnUpdate())
}

func checkClause(p Platform, check *ir.Check) string {
	return fmt.Sprintf("CONSTRAINT %s CHECK (%s)", p.QuoteIdentifier(check.Name()), check.Definition())
}

// createTableStatement lays out CREATE TABLE with one definition per line.
func createTableStatement(p Platform, table *ir.Table, definitions []string, suffix string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", p.QuoteIdentifier(table.Name()))
	for i, definition := range definitions {
		b.WriteString(indent)
		b.WriteString(definition)
		if i < len(definitions)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(")")
	b.WriteString(suffix)
	return b.String()
}

func createIndexStatement(p Platform, index *ir.Index, table *ir.Table) string {
	unique := ""
	if index.IsUnique() {
		unique = "UNIQUE "
	}
	return fmt.Sprintf("CREATE %sINDEX %s ON %s (%s)",
		unique,
		p.QuoteIdentifier(index.Name()),
		p.QuoteIdentifier(table.Name()),
		quoteColumns(p, index.ColumnNames()))
}

func createViewStatement(p Platform, view *ir.View) string {
	return fmt.Sprintf("CREATE VIEW %s AS %s", p.QuoteIdentifier(view.Name()), strings.TrimSpace(view.SQL()))
}

func alterTable(p Platform, table *ir.Table, action string, args ...any) string {
	return fmt.Sprintf("ALTER TABLE %s %s", p.QuoteIdentifier(table.Name()), fmt.Sprintf(action, args...))
}
