// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package schema implements the Avro abstract schema model: a tree of typed
// nodes with logical-type overlays and a named-type graph that may contain
// cycles.
package schema

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// Kind identifies the variant of a Schema node.
type Kind int

const (
	Null Kind = iota
	Boolean
	Int
	Long
	Float
	Double
	Bytes
	String
	Fixed
	Enum
	Array
	Map
	Record
	Union
	Ref
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case Boolean:
		return "boolean"
	case Int:
		return "int"
	case Long:
		return "long"
	case Float:
		return "float"
	case Double:
		return "double"
	case Bytes:
		return "bytes"
	case String:
		return "string"
	case Fixed:
		return "fixed"
	case Enum:
		return "enum"
	case Array:
		return "array"
	case Map:
		return "map"
	case Record:
		return "record"
	case Union:
		return "union"
	case Ref:
		return "ref"
	default:
		return "unknown"
	}
}

// Schema is a single node of the abstract schema tree. Every concrete
// implementation is comparable by pointer identity, which the codec builder
// relies on when publishing forward references for recursive named schemas
// (see Component E §4.2.2 of the design).
type Schema interface {
	Kind() Kind
	Logical() *LogicalSchema
	String() string
}

// Name is the full name (namespace-qualified) of a named schema, plus the
// aliases it may also be addressed by.
type Name struct {
	Name      string // short name, e.g. "Node"
	Namespace string // e.g. "com.example"
	Aliases   []string
}

// FullName returns "namespace.name", or just "name" when there is no
// namespace.
func (n Name) FullName() string {
	if n.Namespace == "" {
		return n.Name
	}
	return n.Namespace + "." + n.Name
}

func (n Name) String() string { return n.FullName() }

// LogicalType names one of the overlays permitted on specific underlying
// primitive or fixed schemas.
type LogicalType int

const (
	NoLogicalType LogicalType = iota
	Decimal
	Date
	TimeMillis
	TimeMicros
	TimestampMillis
	TimestampMicros
	TimestampNanos
	DurationLogical
	Uuid
)

func (l LogicalType) String() string {
	switch l {
	case Decimal:
		return "decimal"
	case Date:
		return "date"
	case TimeMillis:
		return "time-millis"
	case TimeMicros:
		return "time-micros"
	case TimestampMillis:
		return "timestamp-millis"
	case TimestampMicros:
		return "timestamp-micros"
	case TimestampNanos:
		return "timestamp-nanos"
	case DurationLogical:
		return "duration"
	case Uuid:
		return "uuid"
	default:
		return ""
	}
}

// LogicalSchema is the overlay attached to a primitive or Fixed schema.
// Precision/Scale are only meaningful for Decimal.
type LogicalSchema struct {
	Type      LogicalType
	Precision int
	Scale     int
}

func (l *LogicalSchema) logical() *LogicalSchema { return l }

// baseLogical is embedded by every concrete schema type to provide the
// Logical() accessor without repeating the field everywhere.
type baseLogical struct {
	LogicalSchema *LogicalSchema
}

func (b *baseLogical) Logical() *LogicalSchema { return b.LogicalSchema }

// --- primitive schemas -------------------------------------------------

type NullSchema struct{ baseLogical }

func (*NullSchema) Kind() Kind    { return Null }
func (*NullSchema) String() string { return `"null"` }

type BooleanSchema struct{ baseLogical }

func (*BooleanSchema) Kind() Kind    { return Boolean }
func (*BooleanSchema) String() string { return `"boolean"` }

type IntSchema struct{ baseLogical }

func (*IntSchema) Kind() Kind    { return Int }
func (s *IntSchema) String() string {
	if s.LogicalSchema != nil {
		return fmt.Sprintf(`{"type":"int","logicalType":%q}`, s.LogicalSchema.Type)
	}
	return `"int"`
}

type LongSchema struct{ baseLogical }

func (*LongSchema) Kind() Kind    { return Long }
func (s *LongSchema) String() string {
	if s.LogicalSchema != nil {
		return fmt.Sprintf(`{"type":"long","logicalType":%q}`, s.LogicalSchema.Type)
	}
	return `"long"`
}

type FloatSchema struct{ baseLogical }

func (*FloatSchema) Kind() Kind    { return Float }
func (*FloatSchema) String() string { return `"float"` }

type DoubleSchema struct{ baseLogical }

func (*DoubleSchema) Kind() Kind    { return Double }
func (*DoubleSchema) String() string { return `"double"` }

type BytesSchema struct{ baseLogical }

func (*BytesSchema) Kind() Kind { return Bytes }
func (s *BytesSchema) String() string {
	if s.LogicalSchema != nil && s.LogicalSchema.Type == Decimal {
		return fmt.Sprintf(`{"type":"bytes","logicalType":"decimal","precision":%d,"scale":%d}`, s.LogicalSchema.Precision, s.LogicalSchema.Scale)
	}
	return `"bytes"`
}

type StringSchema struct{ baseLogical }

func (*StringSchema) Kind() Kind { return String }
func (s *StringSchema) String() string {
	if s.LogicalSchema != nil {
		return fmt.Sprintf(`{"type":"string","logicalType":%q}`, s.LogicalSchema.Type)
	}
	return `"string"`
}

// --- named schemas -------------------------------------------------------

type FixedSchema struct {
	baseLogical
	Name Name
	Size int
}

func (*FixedSchema) Kind() Kind { return Fixed }
func (s *FixedSchema) String() string {
	return fmt.Sprintf(`{"type":"fixed","name":%q,"size":%d}`, s.Name.FullName(), s.Size)
}

type EnumSchema struct {
	baseLogical
	Name    Name
	Symbols []string
	Default string // "" means no default
	HasDefault bool
}

func (*EnumSchema) Kind() Kind { return Enum }
func (s *EnumSchema) String() string {
	return fmt.Sprintf(`{"type":"enum","name":%q,"symbols":%v}`, s.Name.FullName(), s.Symbols)
}

// IndexOf returns the ordinal of symbol, or -1 if it is not a member.
func (s *EnumSchema) IndexOf(symbol string) int {
	return slices.Index(s.Symbols, symbol)
}

type ArraySchema struct {
	baseLogical
	Items Schema
}

func (*ArraySchema) Kind() Kind { return Array }
func (s *ArraySchema) String() string {
	return fmt.Sprintf(`{"type":"array","items":%s}`, s.Items.String())
}

type MapSchema struct {
	baseLogical
	Values Schema
}

func (*MapSchema) Kind() Kind { return Map }
func (s *MapSchema) String() string {
	return fmt.Sprintf(`{"type":"map","values":%s}`, s.Values.String())
}

// Field is one member of a Record schema.
type Field struct {
	Name       string
	Aliases    []string
	Type       Schema
	Default    interface{} // decoded JSON default value, nil if HasDefault is false
	HasDefault bool
}

type RecordSchema struct {
	baseLogical
	Name   Name
	Fields []*Field
}

func (*RecordSchema) Kind() Kind { return Record }
func (s *RecordSchema) String() string {
	return fmt.Sprintf(`{"type":"record","name":%q,"fields":[...%d fields]}`, s.Name.FullName(), len(s.Fields))
}

// FieldByName returns the field with the given name (case-sensitive), or
// nil. Case-insensitive matching is a codec-builder concern, not a
// schema-model concern.
func (s *RecordSchema) FieldByName(name string) *Field {
	i := slices.IndexFunc(s.Fields, func(f *Field) bool { return f.Name == name })
	if i < 0 {
		return nil
	}
	return s.Fields[i]
}

type UnionSchema struct {
	Branches []Schema
}

func (*UnionSchema) Kind() Kind              { return Union }
func (*UnionSchema) Logical() *LogicalSchema { return nil } // unions never carry a logical overlay
func (s *UnionSchema) String() string {
	out := "["
	for i, b := range s.Branches {
		if i > 0 {
			out += ","
		}
		out += b.String()
	}
	return out + "]"
}

// NullIndex returns the branch index of the null schema, or -1.
func (s *UnionSchema) NullIndex() int {
	for i, b := range s.Branches {
		if b.Kind() == Null {
			return i
		}
	}
	return -1
}

// IsNullable reports whether this is the common Union(null, T) shape with
// exactly two branches, one of them null.
func (s *UnionSchema) IsNullable() (other Schema, ok bool) {
	if len(s.Branches) != 2 {
		return nil, false
	}
	if s.Branches[0].Kind() == Null {
		return s.Branches[1], true
	}
	if s.Branches[1].Kind() == Null {
		return s.Branches[0], true
	}
	return nil, false
}

// RefSchema is a back-reference to a named schema already seen elsewhere in
// the same closure, used to realize cyclic schema graphs.
type RefSchema struct {
	name   string
	target Schema
}

func NewRef(name string, target Schema) *RefSchema { return &RefSchema{name: name, target: target} }

func (*RefSchema) Kind() Kind              { return Ref }
func (*RefSchema) Logical() *LogicalSchema { return nil }
func (r *RefSchema) String() string        { return fmt.Sprintf("%q", r.name) }

// Schema resolves the reference to the schema it points at. It is always
// non-nil once the closure has finished construction.
func (r *RefSchema) Schema() Schema { return r.target }

// Resolve unwraps any number of RefSchema layers, returning the first
// non-Ref schema reached. Named schemas may legitimately point to
// themselves (direct recursion), so callers that walk the graph must use
// identity-keyed visited sets, not naive recursion, to avoid infinite loops.
func Resolve(s Schema) Schema {
	for {
		r, ok := s.(*RefSchema)
		if !ok {
			return s
		}
		s = r.target
	}
}

// --- exported constructors -------------------------------------------------
//
// baseLogical's field is unexported so package schema remains the only
// place a schema node's identity is minted, but callers outside the
// package (schemabuilder deriving schemas from Go types; examplecase
// rewriting a record's field names) still need to build nodes, logical
// overlay included. These constructors are that seam.

// NewNull returns a Null schema.
func NewNull() *NullSchema { return &NullSchema{} }

// NewBoolean returns a Boolean schema.
func NewBoolean() *BooleanSchema { return &BooleanSchema{} }

// NewInt returns an Int schema, optionally carrying a logical overlay
// (Date; nil for none).
func NewInt(logical *LogicalSchema) *IntSchema { return &IntSchema{baseLogical{logical}} }

// NewLong returns a Long schema, optionally carrying a logical overlay
// (TimeMicros/TimestampMillis/TimestampMicros/TimestampNanos; nil for none).
func NewLong(logical *LogicalSchema) *LongSchema { return &LongSchema{baseLogical{logical}} }

// NewFloat returns a Float schema.
func NewFloat() *FloatSchema { return &FloatSchema{} }

// NewDouble returns a Double schema.
func NewDouble() *DoubleSchema { return &DoubleSchema{} }

// NewBytes returns a Bytes schema, optionally carrying a Decimal overlay.
func NewBytes(logical *LogicalSchema) *BytesSchema { return &BytesSchema{baseLogical{logical}} }

// NewString returns a String schema, optionally carrying a Uuid overlay.
func NewString(logical *LogicalSchema) *StringSchema { return &StringSchema{baseLogical{logical}} }

// NewFixed returns a Fixed schema of size, optionally carrying a Decimal
// or Duration overlay.
func NewFixed(name Name, size int, logical *LogicalSchema) *FixedSchema {
	return &FixedSchema{baseLogical{logical}, name, size}
}

// NewEnum returns an Enum schema. defaultSymbol == "" means no default.
func NewEnum(name Name, symbols []string, defaultSymbol string) *EnumSchema {
	return &EnumSchema{baseLogical{}, name, symbols, defaultSymbol, defaultSymbol != ""}
}

// NewArray returns an Array schema over items.
func NewArray(items Schema) *ArraySchema { return &ArraySchema{baseLogical{}, items} }

// NewMap returns a Map schema over values.
func NewMap(values Schema) *MapSchema { return &MapSchema{baseLogical{}, values} }

// NewRecord returns an empty Record schema; set Fields directly afterward
// (a record's fields routinely need to reference the record itself, so
// there is no single-expression constructor that takes fields too).
func NewRecord(name Name) *RecordSchema { return &RecordSchema{baseLogical{}, name, nil} }
