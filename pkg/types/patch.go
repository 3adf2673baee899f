package types

import (
	"bytes"
	"encoding/json"
)

// Field - поле PATCH-запроса с тремя состояниями:
// не передано (Set=false), передано как null (Set=true, Value=nil), передано значение.
type Field[T any] struct {
	Set   bool
	Value *T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	f.Value = &v
	return nil
}

// IsNull - поле передано явно как null.
func (f Field[T]) IsNull() bool {
	return f.Set && f.Value == nil
}

// Apply записывает значение в dst, если поле было передано.
func (f Field[T]) Apply(dst **T) bool {
	if !f.Set {
		return false
	}
	*dst = f.Value
	return true
}

func SetTo[T any](v T) Field[T] {
	return Field[T]{Set: true, Value: &v}
}

func Null[T any]() Field[T] {
	return Field[T]{Set: true}
}
