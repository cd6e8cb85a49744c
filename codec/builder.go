// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package codec compiles an Avro schema against a Go type into a pair of
// specialized encode/decode functions, for both the Avro binary and Avro
// JSON encodings. Compilation walks an ordered, user-extensible chain of
// builder cases; the first case that accepts the (schema node, Go type)
// pair emits the codec for that node and recursively requests sub-codecs.
package codec

import (
	"errors"
	"fmt"
	"reflect"

	"golang.org/x/exp/slices"

	"github.com/linkedin/avrogo/schema"
)

// Builder holds the ordered sequence of builder Cases used to compile a
// schema against a host type. The zero value is not usable; construct one
// with NewBuilder.
type Builder struct {
	cases []Case

	// FieldNameEqual decides whether a record field name and a host
	// struct field name refer to the same field. Defaults to
	// case-insensitive comparison.
	FieldNameEqual func(schemaField, hostField string) bool

	// FieldTag is the struct tag read for per-field name/default/alias
	// overrides (see typedesc.Of). Empty disables tag support.
	FieldTag string

	// Tombstone selects the null-bypass policy: when active, a nil host
	// value encodes to an empty payload and an empty payload decodes to
	// the zero value, without running the compiled codec. The zero value,
	// TombstoneNone, disables it.
	Tombstone TombstonePolicy
}

// TombstonePolicy controls whether nil values bypass the codec entirely,
// for wire framings that treat an absent payload as "delete this key".
type TombstonePolicy int

const (
	// TombstoneNone: the codec always runs normally; there is no special
	// handling of a nil value.
	TombstoneNone TombstonePolicy = iota
	// TombstonePermissive: a nil Go value short-circuits the codec
	// entirely, for any component (key or value).
	TombstonePermissive
	// TombstoneStrict: intended for the value component only; keys must
	// always be non-nil. Schemas whose top level can already represent
	// null are rejected at build time, since an empty payload would be
	// ambiguous with an encoded null.
	TombstoneStrict
)

// NewBuilder returns a Builder pre-loaded with the standard case chain, in
// order. Any case may be overridden for a particular build by calling
// Prepend with a case that returns non-nil (Built) for the schema/type
// pairs it wants to claim and nil (Skipped) otherwise.
func NewBuilder() *Builder {
	b := &Builder{
		FieldNameEqual: func(a, bb string) bool { return equalFold(a, bb) },
	}
	b.cases = []Case{
		CaseFunc{"null", caseNull},
		CaseFunc{"boolean", caseBoolean},
		CaseFunc{"int-long", caseIntLong},
		CaseFunc{"float-double", caseFloatDouble},
		CaseFunc{"bytes", caseBytes},
		CaseFunc{"fixed", caseFixed},
		CaseFunc{"string", caseString},
		CaseFunc{"enum", caseEnum},
		CaseFunc{"array", caseArray},
		CaseFunc{"map", caseMap},
		CaseFunc{"record", caseRecord},
		CaseFunc{"decimal", caseDecimal},
		CaseFunc{"temporal", caseTemporal},
		CaseFunc{"union", caseUnion},
		CaseFunc{"dynamic", caseDynamic},
	}
	return b
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if 'A' <= ca && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if 'A' <= cb && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Prepend inserts c at the head of the case chain, so it is tried before
// every default case and can override the mapping for the schema/type
// pairs it claims.
func (b *Builder) Prepend(c Case) { b.cases = slices.Insert(b.cases, 0, c) }

// build is the shared recursive entrypoint used both by the public
// BuildXxx[T] functions and, via BuildContext.Build, by cases that need to
// compile a sub-schema. Before descending into a Record/Enum/Fixed schema
// it publishes a forward reference keyed by (schema identity, T); a deeper
// occurrence of the same key returns the same (still-being-filled-in)
// *ValueCodec, which is how recursive schemas compile in finite time.
func (b *Builder) build(state *buildState, s schema.Schema, t reflect.Type, path string) (*ValueCodec, error) {
	resolved := schema.Resolve(s)

	if isNamedKind(resolved.Kind()) {
		key := forwardKey{resolved, t}
		if existing, ok := state.forwardRefs[key]; ok {
			return existing, nil
		}
		placeholder := &ValueCodec{Schema: resolved}
		state.forwardRefs[key] = placeholder
		built, err := b.dispatch(state, resolved, t, path)
		if err != nil {
			delete(state.forwardRefs, key)
			return nil, err
		}
		*placeholder = *built
		return placeholder, nil
	}

	return b.dispatch(state, resolved, t, path)
}

// dispatch walks the ordered case chain once: the first Built wins,
// Skipped advances to the next case, and a Failure halts the chain and is
// surfaced to the caller. The one exception is an interface-kinded type:
// an UnsupportedType failure raised for this very node is passed over, so
// that caseDynamic, last in the chain, can still bind it.
func (b *Builder) dispatch(state *buildState, s schema.Schema, t reflect.Type, path string) (*ValueCodec, error) {
	ctx := &BuildContext{Builder: b, Schema: s, Type: t, Path: path, state: state}
	for _, c := range b.cases {
		vc, err := c.Attempt(ctx)
		if err != nil {
			var be *BuildError
			if t.Kind() == reflect.Interface && errors.As(err, &be) && be.Kind == UnsupportedType && be.Type == t && be.Path == path {
				continue
			}
			return nil, err
		}
		if vc != nil {
			return vc, nil
		}
	}
	return nil, newBuildError(UnsupportedType, ctx, "no builder case matched schema kind %s for type %s", s.Kind(), typeName(t))
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}

// Compile parses schemaJSON and returns a schema.Schema ready for the
// generic BuildXxx[T] functions below.
func (b *Builder) Compile(schemaJSON string) (schema.Schema, error) {
	return schema.ReadJSON(schemaJSON)
}

// --- generic, typed entrypoints ---------------------------------------------

func typeOf[T any]() reflect.Type {
	var zero T
	t := reflect.TypeOf(zero)
	if t != nil {
		return t
	}
	// zero value of an interface or pointer type reflects to a nil
	// reflect.Type; recover it via a typed nil pointer instead.
	return reflect.TypeOf((*T)(nil)).Elem()
}

// BuildBinaryEncoder compiles s against T and returns a function that
// appends the Avro binary encoding of a T onto dst. Build-time failures
// are UnsupportedSchema/UnsupportedType; the returned function fails at
// run time with InvalidData or Overflow when a host value does not fit the
// schema (e.g. an int64 outside the int range, an unknown enum symbol, a
// decimal that exceeds its precision).
func BuildBinaryEncoder[T any](b *Builder, s schema.Schema) (func(dst []byte, v T) ([]byte, error), error) {
	t := typeOf[T]()
	if err := b.checkTombstonePolicy(s, t); err != nil {
		return nil, err
	}
	vc, err := b.build(newBuildState(), s, t, "")
	if err != nil {
		return nil, err
	}
	if vc.EncodeBinary == nil {
		return nil, fmt.Errorf("avrogo: internal error: case matched schema %s/type %s but left EncodeBinary nil", s.Kind(), t)
	}
	tombstone := b.Tombstone
	return func(dst []byte, v T) ([]byte, error) {
		rv := reflect.ValueOf(v)
		if tombstone != TombstoneNone && isTombstoneValue(rv) {
			return dst, nil
		}
		w := NewBinaryWriter(dst)
		if err := vc.EncodeBinary(w, rv); err != nil {
			return nil, err
		}
		return w.Bytes(), nil
	}, nil
}

// BuildBinaryDecoder compiles s against T and returns a function that
// reads a T from the head of buf, returning the unread tail.
func BuildBinaryDecoder[T any](b *Builder, s schema.Schema) (func(buf []byte) (T, []byte, error), error) {
	t := typeOf[T]()
	if err := b.checkTombstonePolicy(s, t); err != nil {
		return nil, err
	}
	vc, err := b.build(newBuildState(), s, t, "")
	if err != nil {
		return nil, err
	}
	if vc.DecodeBinary == nil {
		return nil, fmt.Errorf("avrogo: internal error: case matched schema %s/type %s but left DecodeBinary nil", s.Kind(), t)
	}
	tombstone := b.Tombstone
	return func(buf []byte) (T, []byte, error) {
		var zero T
		if tombstone != TombstoneNone && len(buf) == 0 {
			return zero, nil, nil
		}
		r := NewBinaryReader(buf)
		val, err := vc.DecodeBinary(r)
		if err != nil {
			return zero, r.Remaining(), err
		}
		out, ok := asT[T](val)
		if !ok {
			return zero, r.Remaining(), fmt.Errorf("avrogo: decoded value %s not assignable to %T", val.Type(), zero)
		}
		return out, r.Remaining(), nil
	}, nil
}

// BuildTextEncoder compiles s against T for the Avro JSON encoding.
func BuildTextEncoder[T any](b *Builder, s schema.Schema) (func(dst []byte, v T) ([]byte, error), error) {
	t := typeOf[T]()
	if err := b.checkTombstonePolicy(s, t); err != nil {
		return nil, err
	}
	vc, err := b.build(newBuildState(), s, t, "")
	if err != nil {
		return nil, err
	}
	if vc.EncodeText == nil {
		return nil, fmt.Errorf("avrogo: internal error: case matched schema %s/type %s but left EncodeText nil", s.Kind(), t)
	}
	tombstone := b.Tombstone
	return func(dst []byte, v T) ([]byte, error) {
		rv := reflect.ValueOf(v)
		if tombstone != TombstoneNone && isTombstoneValue(rv) {
			return dst, nil
		}
		w := NewTextWriter(dst)
		if err := vc.EncodeText(w, rv); err != nil {
			return nil, err
		}
		return w.Bytes(), nil
	}, nil
}

// BuildTextDecoder compiles s against T for the Avro JSON encoding.
func BuildTextDecoder[T any](b *Builder, s schema.Schema) (func(buf []byte) (T, []byte, error), error) {
	t := typeOf[T]()
	if err := b.checkTombstonePolicy(s, t); err != nil {
		return nil, err
	}
	vc, err := b.build(newBuildState(), s, t, "")
	if err != nil {
		return nil, err
	}
	if vc.DecodeText == nil {
		return nil, fmt.Errorf("avrogo: internal error: case matched schema %s/type %s but left DecodeText nil", s.Kind(), t)
	}
	tombstone := b.Tombstone
	return func(buf []byte) (T, []byte, error) {
		var zero T
		if tombstone != TombstoneNone && len(buf) == 0 {
			return zero, nil, nil
		}
		r := NewTextReader(buf)
		val, err := vc.DecodeText(r)
		if err != nil {
			return zero, r.Remaining(), err
		}
		out, ok := asT[T](val)
		if !ok {
			return zero, r.Remaining(), fmt.Errorf("avrogo: decoded value %s not assignable to %T", val.Type(), zero)
		}
		return out, r.Remaining(), nil
	}, nil
}

func asT[T any](val reflect.Value) (T, bool) {
	var zero T
	if !val.IsValid() {
		return zero, reflect.TypeOf(zero) == nil
	}
	iv := val.Interface()
	if iv == nil {
		// a valid interface-kinded Value holding nil, e.g. a decoded null
		return zero, reflect.TypeOf(zero) == nil
	}
	out, ok := iv.(T)
	return out, ok
}
