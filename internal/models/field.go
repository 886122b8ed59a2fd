package models

import (
	"encoding/json"
	"fmt"
)

// Field holds a best-effort typed cell value: the parsed value when the cell
// matched its expected shape, otherwise the raw text.
type Field[T any] struct {
	Value *T
	Raw   string
}

// Parsed wraps a successfully parsed value.
func Parsed[T any](v T) Field[T] {
	return Field[T]{Value: &v}
}

// Unparsed keeps text that did not match the expected shape.
func Unparsed[T any](raw string) Field[T] {
	return Field[T]{Raw: raw}
}

// Ok reports whether the field holds a parsed value.
func (f Field[T]) Ok() bool {
	return f.Value != nil
}

// IsZero reports whether the cell was absent.
func (f Field[T]) IsZero() bool {
	return f.Value == nil && f.Raw == ""
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if f.Value != nil {
		return json.Marshal(*f.Value)
	}
	if f.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(f.Raw)
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	*f = Field[T]{}
	if string(data) == "null" {
		return nil
	}

	var v T
	if err := json.Unmarshal(data, &v); err == nil {
		f.Value = &v
		return nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("field is neither a typed value nor a string: %s", string(data))
	}
	f.Raw = raw
	return nil
}
