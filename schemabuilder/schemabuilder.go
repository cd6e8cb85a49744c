// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package schemabuilder derives a default Avro schema from a
// type-descriptor value, the inverse direction of the codec builder's
// compilation.
package schemabuilder

import (
	"fmt"
	"reflect"

	"github.com/linkedin/avrogo/schema"
	"github.com/linkedin/avrogo/typedesc"
)

// TemporalBehavior selects how a Temporal type descriptor is rendered:
// as an ISO-8601 string, or as an epoch-offset integer with a logical-type
// overlay.
type TemporalBehavior int

const (
	// ISO8601 is the default rendering: instants, time-of-day, and
	// durations become plain String schemas carrying their ISO-8601 text
	// forms (RFC 3339 date-times, PnDTnHnMnS durations), which the codec
	// builder binds against time.Time/time.Duration. Dates stay Int+Date.
	ISO8601 TemporalBehavior = iota
	// EpochMillis renders instants as Long+TimestampMillis, dates as
	// Int+Date, and time-of-day as Int+TimeMillis.
	EpochMillis
	// EpochMicros renders instants as Long+TimestampMicros and
	// time-of-day as Long+TimeMicros.
	EpochMicros
)

// Builder derives schemas from Go types. The zero value is not usable;
// construct one with New.
type Builder struct {
	temporal        TemporalBehavior
	nullableRefs    bool
	enumsAsIntegers bool
	precision       int
	scale           int
	fieldTag        string
}

// Option configures a Builder.
type Option func(*Builder)

// WithTemporalBehavior selects how Temporal descriptors are rendered.
// Default: ISO8601.
func WithTemporalBehavior(b TemporalBehavior) Option {
	return func(o *Builder) { o.temporal = b }
}

// WithNullableReferences causes every reference-typed (record/array/map/
// string/bytes) field or element to become Union(null, T) rather than a
// bare T.
func WithNullableReferences(v bool) Option {
	return func(o *Builder) { o.nullableRefs = v }
}

// WithEnumsAsIntegers renders Enum descriptors without an explicit
// underlying type as an Int schema carrying the symbol's ordinal, instead
// of the default Enum schema.
func WithEnumsAsIntegers(v bool) Option {
	return func(o *Builder) { o.enumsAsIntegers = v }
}

// WithDecimalPrecisionScale sets the (precision, scale) pair used for
// BigDecimal descriptors, which carry no fixed precision/scale of their
// own. The 29/14 default is wide enough for any 128-bit decimal.
func WithDecimalPrecisionScale(precision, scale int) Option {
	return func(o *Builder) { o.precision, o.scale = precision, scale }
}

// WithFieldTag sets the struct tag read for per-field overrides (name,
// default), matching typedesc.Of's tag parameter.
func WithFieldTag(tag string) Option {
	return func(o *Builder) { o.fieldTag = tag }
}

// New returns a Builder configured by opts. Unset options default to
// ISO8601 temporal rendering, non-nullable references, enum-as-Enum, and
// 29/14 decimal precision/scale.
func New(opts ...Option) *Builder {
	b := &Builder{temporal: ISO8601, precision: 29, scale: 14}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// SchemaOf reflects t into a typedesc.TypeDescriptor and renders it into a
// canonical schema.Schema. Named schemas (records) are
// memoized by Go type so a recursive struct produces a schema graph with a
// genuine cycle via schema.RefSchema, rather than an infinite tree.
func (b *Builder) SchemaOf(t reflect.Type) (schema.Schema, error) {
	td, err := typedesc.Of(t, b.fieldTag)
	if err != nil {
		return nil, err
	}
	named := map[reflect.Type]schema.Schema{}
	return b.schemaOfDescriptor(td, named)
}

func (b *Builder) schemaOfDescriptor(td typedesc.TypeDescriptor, named map[reflect.Type]schema.Schema) (schema.Schema, error) {
	switch d := td.(type) {
	case typedesc.Primitive:
		return b.primitiveSchema(d)
	case typedesc.Temporal:
		return b.temporalSchema(d)
	case typedesc.BigDecimal:
		return schema.NewBytes(&schema.LogicalSchema{Type: schema.Decimal, Precision: b.precision, Scale: b.scale}), nil
	case typedesc.Enum:
		return b.enumSchema(d)
	case typedesc.Record:
		return b.recordSchema(d, named)
	case typedesc.Array:
		items, err := b.schemaOfDescriptor(d.Element, named)
		if err != nil {
			return nil, err
		}
		return schema.NewArray(b.maybeNullable(d.Element, items)), nil
	case typedesc.Map:
		values, err := b.schemaOfDescriptor(d.Value, named)
		if err != nil {
			return nil, err
		}
		return schema.NewMap(b.maybeNullable(d.Value, values)), nil
	case typedesc.Option:
		inner, err := b.schemaOfDescriptor(d.Inner, named)
		if err != nil {
			return nil, err
		}
		if inner.Kind() == schema.Union {
			return nil, fmt.Errorf("schemabuilder: nested option-of-option has no Avro representation")
		}
		return &schema.UnionSchema{Branches: []schema.Schema{schema.NewNull(), inner}}, nil
	case typedesc.Dynamic:
		return nil, fmt.Errorf("schemabuilder: dynamic (interface{}) fields have no single default schema; supply one explicitly")
	default:
		return nil, fmt.Errorf("schemabuilder: unrecognized type descriptor %T", td)
	}
}

// maybeNullable wraps elem in Union(null, elem) for reference-typed
// descriptors when WithNullableReferences is set.
func (b *Builder) maybeNullable(d typedesc.TypeDescriptor, s schema.Schema) schema.Schema {
	if !b.nullableRefs || s.Kind() == schema.Union {
		return s
	}
	if isReferenceDescriptor(d) {
		return &schema.UnionSchema{Branches: []schema.Schema{schema.NewNull(), s}}
	}
	return s
}

func isReferenceDescriptor(d typedesc.TypeDescriptor) bool {
	switch d.Kind() {
	case typedesc.KindRecord, typedesc.KindArray, typedesc.KindMap:
		return true
	case typedesc.KindPrimitive:
		p := d.(typedesc.Primitive)
		return p.Which == typedesc.PString || p.Which == typedesc.PBytes
	default:
		return false
	}
}

func (b *Builder) primitiveSchema(p typedesc.Primitive) (schema.Schema, error) {
	switch p.Which {
	case typedesc.Bool:
		return schema.NewBoolean(), nil
	case typedesc.I8, typedesc.I16, typedesc.I32, typedesc.U8, typedesc.U16:
		return schema.NewInt(nil), nil
	case typedesc.I64, typedesc.U32, typedesc.U64:
		return schema.NewLong(nil), nil
	case typedesc.F32:
		return schema.NewFloat(), nil
	case typedesc.F64:
		return schema.NewDouble(), nil
	case typedesc.PString:
		return schema.NewString(nil), nil
	case typedesc.PBytes:
		return schema.NewBytes(nil), nil
	case typedesc.PUuid:
		return schema.NewString(&schema.LogicalSchema{Type: schema.Uuid}), nil
	default:
		return nil, fmt.Errorf("schemabuilder: unrecognized primitive kind %v", p.Which)
	}
}

func (b *Builder) temporalSchema(t typedesc.Temporal) (schema.Schema, error) {
	switch t.Which {
	case typedesc.DateOnly:
		return schema.NewInt(&schema.LogicalSchema{Type: schema.Date}), nil
	case typedesc.TimeOfDay:
		switch b.temporal {
		case ISO8601:
			return schema.NewString(nil), nil
		case EpochMicros:
			return schema.NewLong(&schema.LogicalSchema{Type: schema.TimeMicros}), nil
		default:
			return schema.NewInt(&schema.LogicalSchema{Type: schema.TimeMillis}), nil
		}
	case typedesc.InstantWithOffset, typedesc.InstantWithoutOffset:
		if b.temporal == ISO8601 {
			return schema.NewString(nil), nil
		}
		lt := schema.TimestampMillis
		if b.temporal == EpochMicros {
			lt = schema.TimestampMicros
		}
		return schema.NewLong(&schema.LogicalSchema{Type: lt}), nil
	case typedesc.DurationKind:
		if b.temporal == ISO8601 {
			return schema.NewString(nil), nil
		}
		return schema.NewFixed(schema.Name{Name: "Duration"}, 12, &schema.LogicalSchema{Type: schema.DurationLogical}), nil
	default:
		return nil, fmt.Errorf("schemabuilder: unrecognized temporal kind %v", t.Which)
	}
}

func (b *Builder) enumSchema(e typedesc.Enum) (schema.Schema, error) {
	if b.enumsAsIntegers && e.Underlying == nil {
		return schema.NewInt(nil), nil
	}
	return schema.NewEnum(schema.Name{Name: e.GoType().Name()}, append([]string{}, e.Symbols...), ""), nil
}

func (b *Builder) recordSchema(r typedesc.Record, named map[reflect.Type]schema.Schema) (schema.Schema, error) {
	if existing, ok := named[r.GoType()]; ok {
		return schema.NewRef(r.FullName, existing), nil
	}
	rs := schema.NewRecord(nameFromFullName(r.FullName))
	named[r.GoType()] = rs
	fields := make([]*schema.Field, 0, len(r.Fields))
	for _, fd := range r.Fields {
		fs, err := b.schemaOfDescriptor(fd.Type, named)
		if err != nil {
			return nil, fmt.Errorf("schemabuilder: field %q: %w", fd.Name, err)
		}
		fs = b.maybeNullable(fd.Type, fs)
		field := &schema.Field{Name: fd.Name, Type: fs}
		if fd.HasDefault {
			field.HasDefault = true
			field.Default = fd.Default
		}
		fields = append(fields, field)
	}
	rs.Fields = fields
	return rs, nil
}

func nameFromFullName(full string) schema.Name {
	// struct full names are "pkgpath.Name"; Avro full names use the last
	// path segment as the short name and the rest (dot-joined) as the
	// namespace, mirroring Java/Avro package-qualified naming.
	lastDot := -1
	for i := len(full) - 1; i >= 0; i-- {
		if full[i] == '.' {
			lastDot = i
			break
		}
	}
	if lastDot < 0 {
		return schema.Name{Name: full}
	}
	return schema.Name{Name: full[lastDot+1:], Namespace: full[:lastDot]}
}
