// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package typedesc normalizes a host-language type into a type-descriptor
// model: records, enums, arrays, maps, unions-of-nullable, primitives,
// decimals, durations, and instants, independent of any one host
// language's vocabulary. For this repository the one host language is Go,
// so the reflection probe producing descriptors lives here too.
package typedesc

import (
	"encoding"
	"reflect"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/exp/maps"
)

// PrimitiveKind enumerates the Primitive descriptor's "which of" attribute.
type PrimitiveKind int

const (
	Bool PrimitiveKind = iota
	I8
	I16
	I32
	I64
	U8
	U16
	U32
	U64
	F32
	F64
	PString
	PBytes
	PUuid
)

// TemporalKind enumerates the Temporal descriptor's shape.
type TemporalKind int

const (
	InstantWithOffset TemporalKind = iota
	InstantWithoutOffset
	DateOnly
	TimeOfDay
	DurationKind
)

// ShapeHint names the concrete collection shape a host Array/Map
// descriptor was reflected from.
type ShapeHint int

const (
	ShapeSlice ShapeHint = iota
	ShapeArray           // fixed-size Go array
	ShapeMap
)

// Kind identifies the variant of a TypeDescriptor.
type Kind int

const (
	KindPrimitive Kind = iota
	KindTemporal
	KindBigDecimal
	KindEnum
	KindRecord
	KindArray
	KindMap
	KindOption
	KindDynamic
)

// TypeDescriptor describes a host-language type without committing to that
// language's own vocabulary.
type TypeDescriptor interface {
	Kind() Kind
	GoType() reflect.Type
}

type base struct{ t reflect.Type }

func (b base) GoType() reflect.Type { return b.t }

// Primitive is a bool/integer/float/string/bytes/uuid leaf descriptor.
type Primitive struct {
	base
	Which PrimitiveKind
}

func (Primitive) Kind() Kind { return KindPrimitive }

// Temporal is an instant/date/time-of-day/duration leaf descriptor.
type Temporal struct {
	base
	Which TemporalKind
}

func (Temporal) Kind() Kind { return KindTemporal }

// BigDecimal carries no fixed precision/scale; the runtime value supplies
// its own scale.
type BigDecimal struct{ base }

func (BigDecimal) Kind() Kind { return KindBigDecimal }

// Enum is an enumeration descriptor: its symbols, in ordinal order.
type Enum struct {
	base
	Symbols    []string
	Underlying reflect.Type // non-nil when the enum has an explicit integral representation
	Nullable   bool         // true when the Go type is a pointer/reference to the enum
}

func (Enum) Kind() Kind { return KindEnum }

// FieldDescriptor describes one member of a Record descriptor.
type FieldDescriptor struct {
	Name           string
	Type           TypeDescriptor
	IsWritable     bool
	HasDefault     bool
	Default        interface{}
	StructField    reflect.StructField
}

// Record is a struct descriptor: an ordered list of field descriptors.
type Record struct {
	base
	FullName string
	Fields   []FieldDescriptor
}

func (Record) Kind() Kind { return KindRecord }

// Array is a finite-sequence descriptor (slice, fixed-size array).
type Array struct {
	base
	Element TypeDescriptor
	Shape   ShapeHint
}

func (Array) Kind() Kind { return KindArray }

// Map is a keyed-by-string-convertible-key descriptor.
type Map struct {
	base
	KeyType TypeDescriptor
	Value   TypeDescriptor
	Shape   ShapeHint
}

func (Map) Kind() Kind { return KindMap }

// Option represents a value-or-absent type (Go pointer or the zero value of
// a type whose "absent" representation is unambiguous).
type Option struct {
	base
	Inner TypeDescriptor
}

func (Option) Kind() Kind { return KindOption }

// Dynamic is a late-bound descriptor: the host accepts/produces values of
// arbitrary shape (Go's interface{}/any).
type Dynamic struct{ base }

func (Dynamic) Kind() Kind { return KindDynamic }

var (
	timeType       = reflect.TypeOf(time.Time{})
	durationType   = reflect.TypeOf(time.Duration(0))
	bigDecimalType = reflect.TypeOf(decimal.Decimal{})
	uuidType       = reflect.TypeOf(uuid.UUID{})
	byteSliceType  = reflect.TypeOf([]byte(nil))
	emptyIfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
)

// Of reflects t into a TypeDescriptor. tag names the struct tag read for
// per-field overrides on Record descriptors (empty means no tag support,
// field names are used verbatim).
func Of(t reflect.Type, tag string) (TypeDescriptor, error) {
	return ofType(t, tag, map[reflect.Type]bool{})
}

func ofType(t reflect.Type, tag string, seen map[reflect.Type]bool) (TypeDescriptor, error) {
	switch {
	case t == timeType:
		return Temporal{base{t}, InstantWithOffset}, nil
	case t == durationType:
		return Temporal{base{t}, DurationKind}, nil
	case t == bigDecimalType:
		return BigDecimal{base{t}}, nil
	case t == uuidType:
		return Primitive{base{t}, PUuid}, nil
	case t == byteSliceType:
		return Primitive{base{t}, PBytes}, nil
	case t == emptyIfaceType:
		return Dynamic{base{t}}, nil
	}

	switch t.Kind() {
	case reflect.Bool:
		return Primitive{base{t}, Bool}, nil
	case reflect.Int8:
		return Primitive{base{t}, I8}, nil
	case reflect.Int16:
		return Primitive{base{t}, I16}, nil
	case reflect.Int, reflect.Int32:
		return Primitive{base{t}, I32}, nil
	case reflect.Int64:
		return Primitive{base{t}, I64}, nil
	case reflect.Uint8:
		return Primitive{base{t}, U8}, nil
	case reflect.Uint16:
		return Primitive{base{t}, U16}, nil
	case reflect.Uint, reflect.Uint32:
		return Primitive{base{t}, U32}, nil
	case reflect.Uint64:
		return Primitive{base{t}, U64}, nil
	case reflect.Float32:
		return Primitive{base{t}, F32}, nil
	case reflect.Float64:
		return Primitive{base{t}, F64}, nil
	case reflect.String:
		if isEnumLike(t) {
			return enumOf(t, false), nil
		}
		return Primitive{base{t}, PString}, nil
	case reflect.Ptr:
		inner, err := ofType(t.Elem(), tag, seen)
		if err != nil {
			return nil, err
		}
		if inner.Kind() == KindEnum {
			e := inner.(Enum)
			e.Nullable = true
			return e, nil
		}
		return Option{base{t}, inner}, nil
	case reflect.Slice:
		if seen[t] {
			return nil, errRecursiveWithoutRecord(t)
		}
		elem, err := ofType(t.Elem(), tag, markSeen(seen, t))
		if err != nil {
			return nil, err
		}
		return Array{base{t}, elem, ShapeSlice}, nil
	case reflect.Array:
		elem, err := ofType(t.Elem(), tag, seen)
		if err != nil {
			return nil, err
		}
		return Array{base{t}, elem, ShapeArray}, nil
	case reflect.Map:
		if !isStringConvertibleKey(t.Key()) {
			return nil, errUnsupportedKey(t)
		}
		if seen[t] {
			return nil, errRecursiveWithoutRecord(t)
		}
		marked := markSeen(seen, t)
		key, err := ofType(t.Key(), tag, marked)
		if err != nil {
			return nil, err
		}
		val, err := ofType(t.Elem(), tag, marked)
		if err != nil {
			return nil, err
		}
		return Map{base{t}, key, val, ShapeMap}, nil
	case reflect.Interface:
		return Dynamic{base{t}}, nil
	case reflect.Struct:
		return recordOf(t, tag, seen)
	default:
		return nil, errUnsupportedGoKind(t)
	}
}

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// isStringConvertibleKey mirrors the codec builder's map-key coercion rule:
// a key type is usable when its string form parses back losslessly: a
// string kind, an integer kind, or a TextMarshaler/TextUnmarshaler pair.
func isStringConvertibleKey(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	marshals := t.Implements(textMarshalerType) || reflect.PointerTo(t).Implements(textMarshalerType)
	return marshals && reflect.PointerTo(t).Implements(textUnmarshalerType)
}

func isEnumLike(t reflect.Type) bool {
	_, ok := reflect.PointerTo(t).MethodByName("EnumSymbols")
	return ok
}

func enumOf(t reflect.Type, nullable bool) Enum {
	var symbols []string
	zero := reflect.New(t).Interface()
	if lister, ok := zero.(interface{ EnumSymbols() []string }); ok {
		symbols = lister.EnumSymbols()
	}
	return Enum{base{t}, symbols, nil, nullable}
}

// recordOf reflects t's fields. When t is already an ancestor in seen (a
// record reached again through a pointer/slice/map cycle), it returns a
// fieldless stub carrying only t's identity: schemabuilder recognizes the
// repeated GoType and emits a schema.RefSchema instead of re-expanding it,
// which is what breaks the cycle.
func recordOf(t reflect.Type, tag string, seen map[reflect.Type]bool) (TypeDescriptor, error) {
	if seen[t] {
		return Record{base{t}, recordFullName(t), nil}, nil
	}
	seen = markSeen(seen, t)

	fields := make([]FieldDescriptor, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		name, opts := fieldNameAndOptions(sf, tag)
		if opts.skip {
			continue
		}
		fd, err := ofType(sf.Type, tag, seen)
		if err != nil {
			return nil, err
		}
		fields = append(fields, FieldDescriptor{
			Name:        name,
			Type:        fd,
			IsWritable:  true,
			HasDefault:  opts.hasDefault,
			Default:     opts.def,
			StructField: sf,
		})
	}
	return Record{base{t}, recordFullName(t), fields}, nil
}

func recordFullName(t reflect.Type) string {
	if t.PkgPath() == "" {
		return t.Name()
	}
	return t.PkgPath() + "." + t.Name()
}

func copySeen(seen map[reflect.Type]bool) map[reflect.Type]bool {
	if seen == nil {
		return map[reflect.Type]bool{}
	}
	return maps.Clone(seen)
}

func markSeen(seen map[reflect.Type]bool, t reflect.Type) map[reflect.Type]bool {
	seen = copySeen(seen)
	seen[t] = true
	return seen
}
