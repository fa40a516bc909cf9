// pkg/types/value_test.go
package types

import "testing"

func TestValueNull(t *testing.T) {
	v := NewNull()
	if v.Type() != TypeNull {
		t.Errorf("expected TypeNull, got %v", v.Type())
	}
	if !v.IsNull() {
		t.Error("expected IsNull to return true")
	}
}

func TestValueInt(t *testing.T) {
	v := NewInt(42)
	if v.Type() != TypeInt {
		t.Errorf("expected TypeInt, got %v", v.Type())
	}
	if v.Int() != 42 {
		t.Errorf("expected 42, got %d", v.Int())
	}
}

func TestValueText(t *testing.T) {
	v := NewText("hello")
	if v.Type() != TypeText {
		t.Errorf("expected TypeText, got %v", v.Type())
	}
	if v.Text() != "hello" {
		t.Errorf("expected 'hello', got %s", v.Text())
	}
}

func TestValueString(t *testing.T) {
	cases := []struct {
		v    Value
		want string
	}{
		{NewNull(), "NULL"},
		{NewInt(-7), "-7"},
		{NewText("ok"), "ok"},
	}
	for _, c := range cases {
		if got := c.v.String(); got != c.want {
			t.Errorf("String() = %q, want %q", got, c.want)
		}
	}
}

func TestColumnTypeString(t *testing.T) {
	if IntType().String() != "INT" {
		t.Errorf("expected INT, got %s", IntType().String())
	}
	if VarcharType(10).String() != "VARCHAR(10)" {
		t.Errorf("expected VARCHAR(10), got %s", VarcharType(10).String())
	}
}
