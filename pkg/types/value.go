// pkg/types/value.go
package types

import "fmt"

// ValueType is the tag of a Value or the declared kind of a ColumnType.
type ValueType int

const (
	TypeNull ValueType = iota
	TypeInt
	TypeText
)

func (t ValueType) String() string {
	switch t {
	case TypeNull:
		return "NULL"
	case TypeInt:
		return "INT"
	case TypeText:
		return "VARCHAR"
	default:
		return "UNKNOWN"
	}
}

// Value is a tagged scalar: a 32-bit signed integer, bounded text, or null.
// Null is a distinct inhabitant, never a sentinel integer or empty string.
type Value struct {
	typ     ValueType
	intVal  int32
	textVal string
}

func NewNull() Value { return Value{typ: TypeNull} }

func NewInt(i int32) Value { return Value{typ: TypeInt, intVal: i} }

func NewText(s string) Value { return Value{typ: TypeText, textVal: s} }

func (v Value) Type() ValueType { return v.typ }
func (v Value) IsNull() bool    { return v.typ == TypeNull }
func (v Value) Int() int32      { return v.intVal }
func (v Value) Text() string    { return v.textVal }

// String renders the value the way query results render it: NULL for
// null, the bare digits for an integer, the bare (unquoted) text for text.
func (v Value) String() string {
	switch v.typ {
	case TypeNull:
		return "NULL"
	case TypeInt:
		return fmt.Sprintf("%d", v.intVal)
	case TypeText:
		return v.textVal
	default:
		return "?"
	}
}

// ColumnType is a column's declared type: INT or VARCHAR(n).
type ColumnType struct {
	Kind   ValueType // TypeInt or TypeText
	Length int       // VARCHAR cap; advisory/ignored for INT
}

func IntType() ColumnType { return ColumnType{Kind: TypeInt} }

func VarcharType(n int) ColumnType { return ColumnType{Kind: TypeText, Length: n} }

func (c ColumnType) String() string {
	switch c.Kind {
	case TypeInt:
		return "INT"
	case TypeText:
		return fmt.Sprintf("VARCHAR(%d)", c.Length)
	default:
		return "UNKNOWN"
	}
}
