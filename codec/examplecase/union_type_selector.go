// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

// Package examplecase collects worked examples of the codec builder's
// extensibility point: Cases a caller Prepends ahead of the
// default chain to override how particular schema/type pairs compile.
// Neither type here is wired into NewBuilder's default chain; a caller
// opts in explicitly with Builder.Prepend.
package examplecase

import (
	"fmt"
	"reflect"

	"github.com/linkedin/avrogo/codec"
	"github.com/linkedin/avrogo/schema"
)

// UnionTypeSelector binds each non-null branch of a union schema to a
// concrete Go type chosen by Select, dispatching on the dynamic type
// stored in the interface{} host value rather than the default chain's
// generic map[string]interface{} tagging: a concrete Go struct is chosen
// per named branch instead of the builtin dynamic representation.
// Select returning nil for any branch causes
// Attempt to skip entirely, leaving the schema to the default chain, where
// caseDynamic binds it.
type UnionTypeSelector struct {
	Select func(branch schema.Schema) reflect.Type
}

func (s UnionTypeSelector) Name() string { return "examplecase.UnionTypeSelector" }

type unionBranchBinding struct {
	index  int
	schema schema.Schema
	typ    reflect.Type
	codec  *codec.ValueCodec
}

func (s UnionTypeSelector) Attempt(ctx *codec.BuildContext) (*codec.ValueCodec, error) {
	us, ok := ctx.Schema.(*schema.UnionSchema)
	if !ok {
		return nil, nil
	}
	if ctx.Type.Kind() != reflect.Interface {
		return nil, nil
	}

	nullIdx := us.NullIndex()
	bindings := make([]unionBranchBinding, 0, len(us.Branches))
	for i, b := range us.Branches {
		if b.Kind() == schema.Null {
			continue
		}
		t := s.Select(b)
		if t == nil {
			return nil, nil
		}
		vc, err := ctx.Build(b, t, "")
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, unionBranchBinding{index: i, schema: b, typ: t, codec: vc})
	}

	findByGoType := func(t reflect.Type) *unionBranchBinding {
		for i := range bindings {
			if bindings[i].typ == t {
				return &bindings[i]
			}
		}
		return nil
	}
	findByIndex := func(idx int) *unionBranchBinding {
		for i := range bindings {
			if bindings[i].index == idx {
				return &bindings[i]
			}
		}
		return nil
	}
	findByKey := func(key string) *unionBranchBinding {
		for i := range bindings {
			if branchKey(bindings[i].schema) == key {
				return &bindings[i]
			}
		}
		return nil
	}
	// concreteOf returns the value stored in v: v is interface-kinded when
	// the union sits in a struct field or container, and is already the
	// stored value when it comes straight from a top-level encoder.
	concreteOf := func(v reflect.Value) reflect.Value {
		if v.IsValid() && v.Kind() == reflect.Interface {
			return v.Elem()
		}
		return v
	}

	return &codec.ValueCodec{
		Schema: us,
		EncodeBinary: func(w *codec.BinaryWriter, v reflect.Value) error {
			concrete := concreteOf(v)
			if !concrete.IsValid() {
				if nullIdx < 0 {
					return fmt.Errorf("avrogo: union has no null branch")
				}
				codec.EncodeLongBinary(w, int64(nullIdx))
				return nil
			}
			b := findByGoType(concrete.Type())
			if b == nil {
				return fmt.Errorf("avrogo: no union branch registered for type %s", concrete.Type())
			}
			codec.EncodeLongBinary(w, int64(b.index))
			return b.codec.EncodeBinary(w, concrete)
		},
		DecodeBinary: func(r *codec.BinaryReader) (reflect.Value, error) {
			idx, err := codec.DecodeLongBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if int(idx) == nullIdx {
				return reflect.Zero(ctx.Type), nil
			}
			b := findByIndex(int(idx))
			if b == nil {
				return reflect.Value{}, fmt.Errorf("avrogo: union branch index %d has no registered type", idx)
			}
			val, err := b.codec.DecodeBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(ctx.Type).Elem()
			out.Set(val)
			return out, nil
		},
		SkipBinary: func(r *codec.BinaryReader) error {
			idx, err := codec.DecodeLongBinary(r)
			if err != nil {
				return err
			}
			if int(idx) == nullIdx {
				return nil
			}
			b := findByIndex(int(idx))
			if b == nil {
				return fmt.Errorf("avrogo: union branch index %d has no registered type", idx)
			}
			return b.codec.SkipBinary(r)
		},
		EncodeText: func(w *codec.TextWriter, v reflect.Value) error {
			concrete := concreteOf(v)
			if !concrete.IsValid() {
				codec.EncodeNullText(w)
				return nil
			}
			b := findByGoType(concrete.Type())
			if b == nil {
				return fmt.Errorf("avrogo: no union branch registered for type %s", concrete.Type())
			}
			return codec.EncodeTaggedUnionText(w, branchKey(b.schema), func(w *codec.TextWriter) error {
				return b.codec.EncodeText(w, concrete)
			})
		},
		DecodeText: func(r *codec.TextReader) (reflect.Value, error) {
			isNull, err := r.PeekIsNull()
			if err != nil {
				return reflect.Value{}, err
			}
			if isNull {
				return reflect.Zero(ctx.Type), nil
			}
			key, err := r.TaggedUnionKey()
			if err != nil {
				return reflect.Value{}, err
			}
			b := findByKey(key)
			if b == nil {
				return reflect.Value{}, fmt.Errorf("avrogo: %q does not name a registered union branch", key)
			}
			val, err := b.codec.DecodeText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if err := r.ExpectObjectEnd(); err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(ctx.Type).Elem()
			out.Set(val)
			return out, nil
		},
		SkipText: func(r *codec.TextReader) error { return r.SkipValue() },
	}, nil
}

// branchKey is the tag naming a union branch in the Avro JSON encoding:
// the full name for named schemas, the kind's name otherwise.
func branchKey(s schema.Schema) string {
	switch t := schema.Resolve(s).(type) {
	case *schema.RecordSchema:
		return t.Name.FullName()
	case *schema.EnumSchema:
		return t.Name.FullName()
	case *schema.FixedSchema:
		return t.Name.FullName()
	default:
		return s.Kind().String()
	}
}
