package ir

import (
	"sort"
	"strings"
)

// ColumnType is the portable type of a column. Platforms map it to a SQL declaration.
type ColumnType string

const (
	TypeBigInt   ColumnType = "bigint"
	TypeBlob     ColumnType = "blob"
	TypeBoolean  ColumnType = "boolean"
	TypeDate     ColumnType = "date"
	TypeDateTime ColumnType = "datetime"
	TypeDecimal  ColumnType = "decimal"
	TypeFloat    ColumnType = "float"
	TypeInteger  ColumnType = "integer"
	TypeJSON     ColumnType = "json"
	TypeSmallInt ColumnType = "smallint"
	TypeString   ColumnType = "string"
	TypeText     ColumnType = "text"
	TypeTime     ColumnType = "time"
)

var columnTypes = map[ColumnType]bool{
	TypeBigInt:   true,
	TypeBlob:     true,
	TypeBoolean:  true,
	TypeDate:     true,
	TypeDateTime: true,
	TypeDecimal:  true,
	TypeFloat:    true,
	TypeInteger:  true,
	TypeJSON:     true,
	TypeSmallInt: true,
	TypeString:   true,
	TypeText:     true,
	TypeTime:     true,
}

// ParseColumnType resolves a type name case-insensitively.
func ParseColumnType(name string) (ColumnType, bool) {
	t := ColumnType(strings.ToLower(strings.TrimSpace(name)))
	return t, columnTypes[t]
}

// ColumnTypes returns every supported type name, sorted.
func ColumnTypes() []string {
	names := make([]string, 0, len(columnTypes))
	for t := range columnTypes {
		names = append(names, string(t))
	}
	sort.Strings(names)
	return names
}

// IsInteger reports whether the type can carry an auto-increment flag.
func (t ColumnType) IsInteger() bool {
	return t == TypeInteger || t == TypeBigInt || t == TypeSmallInt
}

// ForeignKeyAction is the referential action taken on delete or update.
type ForeignKeyAction string

const (
	ActionRestrict ForeignKeyAction = "RESTRICT"
	ActionNoAction ForeignKeyAction = "NO ACTION"
	ActionCascade  ForeignKeyAction = "CASCADE"
	ActionSetNull  ForeignKeyAction = "SET NULL"
)

// ParseForeignKeyAction accepts the action names case-insensitively; an
// empty string yields RESTRICT.
func ParseForeignKeyAction(name string) (ForeignKeyAction, bool) {
	normalized := strings.ToUpper(strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), " "))
	switch ForeignKeyAction(normalized) {
	case "":
		return ActionRestrict, true
	case ActionRestrict, ActionNoAction, ActionCascade, ActionSetNull:
		return ForeignKeyAction(normalized), true
	}
	return "", false
}
