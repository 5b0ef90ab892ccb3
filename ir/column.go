package ir

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// Column option keys accepted by NewColumn and Column.SetOptions.
const (
	OptionLength        = "length"
	OptionPrecision     = "precision"
	OptionScale         = "scale"
	OptionUnsigned      = "unsigned"
	OptionFixed         = "fixed"
	OptionNotNull       = "not_null"
	OptionDefault       = "default"
	OptionAutoIncrement = "auto_increment"
	OptionComment       = "comment"
)

// Column represents a table column
type Column struct {
	name          string
	typ           ColumnType
	length        *int
	precision     *int
	scale         *int
	unsigned      bool
	fixed         bool
	notNull       bool
	defaultValue  any
	autoIncrement bool
	comment       string
}

// NewColumn creates a column and applies the given options.
func NewColumn(name string, typ ColumnType, options map[string]any) (*Column, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid("column", name, "name", "must not be empty")
	}
	column := &Column{name: name}
	if err := column.SetType(typ); err != nil {
		return nil, err
	}
	if err := column.SetOptions(options); err != nil {
		return nil, err
	}
	if column.autoIncrement && !column.typ.IsInteger() {
		return nil, invalid("column", name, OptionAutoIncrement, fmt.Sprintf("requires an integer type, got %q", typ))
	}
	return column, nil
}

func (c *Column) Name() string        { return c.name }
func (c *Column) Type() ColumnType    { return c.typ }
func (c *Column) Length() *int        { return cloneInt(c.length) }
func (c *Column) Precision() *int     { return cloneInt(c.precision) }
func (c *Column) Scale() *int         { return cloneInt(c.scale) }
func (c *Column) Unsigned() bool      { return c.unsigned }
func (c *Column) Fixed() bool         { return c.fixed }
func (c *Column) NotNull() bool       { return c.notNull }
func (c *Column) Default() any        { return c.defaultValue }
func (c *Column) AutoIncrement() bool { return c.autoIncrement }
func (c *Column) Comment() string     { return c.comment }

// SetName renames the column. Renaming a column owned by a table must go
// through Table.RenameColumn so the table index stays consistent.
func (c *Column) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("column", c.name, "name", "must not be empty")
	}
	c.name = name
	return nil
}

func (c *Column) SetType(typ ColumnType) error {
	if !columnTypes[typ] {
		return invalid("column", c.name, "type", fmt.Sprintf("has unknown value %q", typ))
	}
	c.typ = typ
	return nil
}

func (c *Column) SetLength(length *int) error {
	if err := c.checkSize(OptionLength, length); err != nil {
		return err
	}
	c.length = cloneInt(length)
	return nil
}

func (c *Column) SetPrecision(precision *int) error {
	if err := c.checkSize(OptionPrecision, precision); err != nil {
		return err
	}
	c.precision = cloneInt(precision)
	return nil
}

func (c *Column) SetScale(scale *int) error {
	if err := c.checkSize(OptionScale, scale); err != nil {
		return err
	}
	c.scale = cloneInt(scale)
	return nil
}

func (c *Column) SetUnsigned(unsigned bool)           { c.unsigned = unsigned }
func (c *Column) SetFixed(fixed bool)                 { c.fixed = fixed }
func (c *Column) SetNotNull(notNull bool)             { c.notNull = notNull }
func (c *Column) SetAutoIncrement(autoIncrement bool) { c.autoIncrement = autoIncrement }
func (c *Column) SetComment(comment string)           { c.comment = comment }

// SetDefault accepts nil, a string, a boolean, an integer or a float.
func (c *Column) SetDefault(value any) error {
	switch v := value.(type) {
	case nil, string, bool, int, float64:
		c.defaultValue = v
	case int8:
		c.defaultValue = int(v)
	case int16:
		c.defaultValue = int(v)
	case int32:
		c.defaultValue = int(v)
	case int64:
		c.defaultValue = int(v)
	case uint:
		c.defaultValue = int(v)
	case uint8:
		c.defaultValue = int(v)
	case uint16:
		c.defaultValue = int(v)
	case uint32:
		c.defaultValue = int(v)
	case float32:
		c.defaultValue = float64(v)
	default:
		return invalid("column", c.name, OptionDefault, fmt.Sprintf("has unsupported value of type %T", value))
	}
	return nil
}

// SetOptions applies a set of options keyed by their snake_case names.
// Keys are applied in sorted order so the first error reported is stable.
func (c *Column) SetOptions(options map[string]any) error {
	keys := make([]string, 0, len(options))
	for key := range options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := options[key]
		var err error
		switch key {
		case OptionLength, OptionPrecision, OptionScale:
			var size *int
			if size, err = c.sizeOption(key, value); err != nil {
				return err
			}
			switch key {
			case OptionLength:
				err = c.SetLength(size)
			case OptionPrecision:
				err = c.SetPrecision(size)
			default:
				err = c.SetScale(size)
			}
		case OptionUnsigned, OptionFixed, OptionNotNull, OptionAutoIncrement:
			flag, ok := value.(bool)
			if !ok {
				return invalid("column", c.name, key, "must be a boolean")
			}
			switch key {
			case OptionUnsigned:
				c.SetUnsigned(flag)
			case OptionFixed:
				c.SetFixed(flag)
			case OptionNotNull:
				c.SetNotNull(flag)
			default:
				c.SetAutoIncrement(flag)
			}
		case OptionDefault:
			err = c.SetDefault(value)
		case OptionComment:
			comment, ok := value.(string)
			if !ok && value != nil {
				return invalid("column", c.name, key, "must be a string")
			}
			c.SetComment(comment)
		default:
			return invalid("column", c.name, key, "is not a known column option")
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Options returns the non-zero options of the column, the inverse of SetOptions.
func (c *Column) Options() map[string]any {
	options := map[string]any{}
	if c.length != nil {
		options[OptionLength] = *c.length
	}
	if c.precision != nil {
		options[OptionPrecision] = *c.precision
	}
	if c.scale != nil {
		options[OptionScale] = *c.scale
	}
	if c.unsigned {
		options[OptionUnsigned] = true
	}
	if c.fixed {
		options[OptionFixed] = true
	}
	if c.notNull {
		options[OptionNotNull] = true
	}
	if c.defaultValue != nil {
		options[OptionDefault] = c.defaultValue
	}
	if c.autoIncrement {
		options[OptionAutoIncrement] = true
	}
	if c.comment != "" {
		options[OptionComment] = c.comment
	}
	return options
}

// Clone returns a deep copy of the column.
func (c *Column) Clone() *Column {
	clone := *c
	clone.length = cloneInt(c.length)
	clone.precision = cloneInt(c.precision)
	clone.scale = cloneInt(c.scale)
	return &clone
}

func (c *Column) checkSize(property string, size *int) error {
	if size != nil && *size < 0 {
		return invalid("column", c.name, property, fmt.Sprintf("must be a non-negative integer, got %d", *size))
	}
	return nil
}

// sizeOption converts decoded option values (YAML and JSON produce int and
// float64 respectively) into a nullable integer.
func (c *Column) sizeOption(property string, value any) (*int, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int:
		return Int(v), nil
	case int64:
		return Int(int(v)), nil
	case uint64:
		return Int(int(v)), nil
	case float64:
		if v != math.Trunc(v) {
			return nil, invalid("column", c.name, property, "must be an integer")
		}
		return Int(int(v)), nil
	}
	return nil, invalid("column", c.name, property, "must be an integer")
}

// Int returns a pointer to v, for nullable integer attributes.
func Int(v int) *int {
	return &v
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	return Int(*v)
}
