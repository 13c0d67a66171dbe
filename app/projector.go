package app

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// Column declares one output column and how to read its cell from a record.
//
// Value returns nil for an absent value, otherwise one of int32, int64,
// float32, string, bool, or []any (one entry per child field) for struct
// columns.
type Column[T any] struct {
	Field arrow.Field
	Value func(rec T) any
}

// ColumnSchema is a fixed Arrow schema plus the extractors that fill it.
type ColumnSchema[T any] struct {
	schema  *arrow.Schema
	columns []Column[T]
}

func NewColumnSchema[T any](cols ...Column[T]) *ColumnSchema[T] {
	fields := make([]arrow.Field, len(cols))
	for i, c := range cols {
		fields[i] = c.Field
	}
	return &ColumnSchema[T]{schema: arrow.NewSchema(fields, nil), columns: cols}
}

func (s *ColumnSchema[T]) Schema() *arrow.Schema { return s.schema }

// Project builds one record batch with a row per input record, in order.
// The batch is all-or-nothing: the first missing required value or type
// mismatch fails the whole call with ErrSchemaProjection.
func Project[T any](mem memory.Allocator, records []T, cs *ColumnSchema[T]) (arrow.Record, error) {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	b := array.NewRecordBuilder(mem, cs.schema)
	defer b.Release()

	for row, rec := range records {
		for i, col := range cs.columns {
			if err := appendCell(b.Field(i), col.Field, col.Value(rec), col.Field.Name); err != nil {
				return nil, fmt.Errorf("%w: row %d: %w", ErrSchemaProjection, row, err)
			}
		}
	}
	return b.NewRecord(), nil
}

func appendCell(bld array.Builder, f arrow.Field, v any, path string) error {
	if v == nil {
		if !f.Nullable {
			return fmt.Errorf("required column %q is missing", path)
		}
		bld.AppendNull()
		return nil
	}

	switch bb := bld.(type) {
	case *array.Int32Builder:
		x, ok := v.(int32)
		if !ok {
			return typeMismatch(path, f, v)
		}
		bb.Append(x)
	case *array.Int64Builder:
		x, ok := v.(int64)
		if !ok {
			return typeMismatch(path, f, v)
		}
		bb.Append(x)
	case *array.Float32Builder:
		x, ok := v.(float32)
		if !ok {
			return typeMismatch(path, f, v)
		}
		bb.Append(x)
	case *array.StringBuilder:
		x, ok := v.(string)
		if !ok {
			return typeMismatch(path, f, v)
		}
		bb.Append(x)
	case *array.BooleanBuilder:
		x, ok := v.(bool)
		if !ok {
			return typeMismatch(path, f, v)
		}
		bb.Append(x)
	case *array.StructBuilder:
		st, ok := f.Type.(*arrow.StructType)
		if !ok {
			return typeMismatch(path, f, v)
		}
		children, ok := v.([]any)
		if !ok || len(children) != st.NumFields() {
			return typeMismatch(path, f, v)
		}
		bb.Append(true)
		for i, cf := range st.Fields() {
			if err := appendCell(bb.FieldBuilder(i), cf, children[i], path+"."+cf.Name); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("column %q: unsupported arrow type %s", path, f.Type)
	}
	return nil
}

func typeMismatch(path string, f arrow.Field, v any) error {
	return fmt.Errorf("column %q: cannot store %T in %s", path, v, f.Type)
}

// Cell helpers turn optional payload fields into untyped nil when absent.

func optString(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

func optInt32(p *int32) any {
	if p == nil {
		return nil
	}
	return *p
}

func optInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}

func optFloat32(p *float32) any {
	if p == nil {
		return nil
	}
	return *p
}

func optBool(p *bool) any {
	if p == nil {
		return nil
	}
	return *p
}
