// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package codec

import (
	"reflect"
	"strings"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/linkedin/avrogo/schema"
)

var emptyInterfaceType = reflect.TypeOf((*interface{})(nil)).Elem()

// recordFieldPlan is the compiled binding of one schema field to either a
// matching struct field or, absent one, to the field's declared default
// value.
type recordFieldPlan struct {
	schemaField *schema.Field
	structField reflect.StructField
	hasStruct   bool
	codec       *ValueCodec
	defaultVal  reflect.Value

	// missingVal is the field default decoded into the struct field's
	// type, set on object keys absent from JSON input. Materialized
	// lazily because a recursive field's codec is still a forward
	// reference while its record is being compiled.
	defaultOnce sync.Once
	missingVal  reflect.Value
	missingErr  error
}

// missing returns the field's declared default as a value of the bound
// struct field's type, by rendering the default to its Avro JSON form and
// decoding it back through the field's own compiled codec.
func (p *recordFieldPlan) missing() (reflect.Value, error) {
	p.defaultOnce.Do(func() {
		w := NewTextWriter(nil)
		if err := dynEncodeText(w, p.schemaField.Type, p.schemaField.Default); err != nil {
			p.missingErr = newInvalidData("record field %q default does not conform to its schema: %v", p.schemaField.Name, err)
			return
		}
		r := NewTextReader(w.Bytes())
		val, err := p.codec.DecodeText(r)
		if err != nil {
			p.missingErr = newInvalidData("record field %q default is not decodable as the bound host type: %v", p.schemaField.Name, err)
			return
		}
		p.missingVal = val
	})
	return p.missingVal, p.missingErr
}

// caseRecord implements standard case 11: Record schema binds to a struct,
// matching schema fields to struct fields by name (via Builder.FieldTag
// and Builder.FieldNameEqual, case-insensitive by default) or by declared
// alias. A schema field with no struct counterpart must carry a default,
// which is what gets encoded/skipped in its place; one with neither is an
// UnsupportedSchema build failure, since there would be nothing to write.
// Decoding an object key absent from the schema silently discards it.
func caseRecord(ctx *BuildContext) (*ValueCodec, error) {
	rs, ok := ctx.Schema.(*schema.RecordSchema)
	if !ok {
		return nil, nil
	}
	if ctx.Type.Kind() == reflect.Ptr {
		return recordAsPointer(ctx, rs)
	}
	if ctx.Type.Kind() != reflect.Struct {
		return nil, newBuildError(UnsupportedType, ctx, "record schema requires a struct type; got %s", typeName(ctx.Type))
	}
	return buildRecordStruct(ctx, rs)
}

func recordAsPointer(ctx *BuildContext, rs *schema.RecordSchema) (*ValueCodec, error) {
	elemType := ctx.Type.Elem()
	inner, err := ctx.Build(rs, elemType, "")
	if err != nil {
		return nil, err
	}
	return &ValueCodec{
		Schema: rs,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			if v.IsNil() {
				return newInvalidData("record pointer must not be nil")
			}
			return inner.EncodeBinary(w, v.Elem())
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			val, err := inner.DecodeBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(elemType)
			ptr.Elem().Set(val)
			return ptr, nil
		},
		SkipBinary: inner.SkipBinary,
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			if v.IsNil() {
				return newInvalidData("record pointer must not be nil")
			}
			return inner.EncodeText(w, v.Elem())
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			val, err := inner.DecodeText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(elemType)
			ptr.Elem().Set(val)
			return ptr, nil
		},
		SkipText: inner.SkipText,
	}, nil
}

func buildRecordStruct(ctx *BuildContext, rs *schema.RecordSchema) (*ValueCodec, error) {
	t := ctx.Type
	plans := make([]*recordFieldPlan, 0, len(rs.Fields))
	for _, f := range rs.Fields {
		sf, found := findStructField(t, f, ctx.Builder)
		plan := &recordFieldPlan{schemaField: f}
		if found {
			codec, err := ctx.Build(f.Type, sf.Type, f.Name)
			if err != nil {
				return nil, err
			}
			plan.structField = sf
			plan.hasStruct = true
			plan.codec = codec
		} else {
			if !f.HasDefault {
				return nil, newBuildError(UnsupportedSchema, ctx, "record field %q has no matching struct field and no default", f.Name)
			}
			codec, err := ctx.Build(f.Type, emptyInterfaceType, f.Name)
			if err != nil {
				return nil, err
			}
			plan.codec = codec
			plan.defaultVal = dynWrap(f.Default)
		}
		plans = append(plans, plan)
	}

	return &ValueCodec{
		Schema: rs,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			for _, p := range plans {
				if err := p.codec.EncodeBinary(w, fieldValue(v, p)); err != nil {
					return err
				}
			}
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			out := reflect.New(t).Elem()
			for _, p := range plans {
				val, err := p.codec.DecodeBinary(r)
				if err != nil {
					return reflect.Value{}, err
				}
				if p.hasStruct {
					out.FieldByIndex(p.structField.Index).Set(val)
				}
			}
			return out, nil
		},
		SkipBinary: func(r *BinaryReader) error {
			for _, p := range plans {
				if err := p.codec.SkipBinary(r); err != nil {
					return err
				}
			}
			return nil
		},
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			w.byte('{')
			for i, p := range plans {
				if i > 0 {
					w.byte(',')
				}
				if err := EncodeStringText(w, p.schemaField.Name); err != nil {
					return err
				}
				w.byte(':')
				if err := p.codec.EncodeText(w, fieldValue(v, p)); err != nil {
					return err
				}
			}
			w.byte('}')
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			if err := r.ExpectObjectStart(); err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			set := make(map[string]bool, len(plans))
			for r.MoreObjectFields() {
				k, err := r.NextObjectKey()
				if err != nil {
					return reflect.Value{}, err
				}
				p := findPlanByName(plans, k)
				if p == nil {
					if err := r.SkipValue(); err != nil {
						return reflect.Value{}, err
					}
					continue
				}
				val, err := p.codec.DecodeText(r)
				if err != nil {
					return reflect.Value{}, err
				}
				if p.hasStruct {
					out.FieldByIndex(p.structField.Index).Set(val)
				}
				set[k] = true
			}
			if err := r.ExpectObjectEnd(); err != nil {
				return reflect.Value{}, err
			}
			for _, p := range plans {
				if !p.hasStruct || set[p.schemaField.Name] {
					continue
				}
				if !p.schemaField.HasDefault {
					return reflect.Value{}, &BuildError{
						Kind:   DefaultMissing,
						Schema: rs,
						Type:   t,
						Msg:    "input is missing record field " + p.schemaField.Name + ", which declares no default",
					}
				}
				val, err := p.missing()
				if err != nil {
					return reflect.Value{}, err
				}
				out.FieldByIndex(p.structField.Index).Set(val)
			}
			return out, nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func fieldValue(v reflect.Value, p *recordFieldPlan) reflect.Value {
	if p.hasStruct {
		return v.FieldByIndex(p.structField.Index)
	}
	return p.defaultVal
}

func findPlanByName(plans []*recordFieldPlan, name string) *recordFieldPlan {
	i := slices.IndexFunc(plans, func(p *recordFieldPlan) bool { return p.schemaField.Name == name })
	if i < 0 {
		return nil
	}
	return plans[i]
}

func findStructField(t reflect.Type, f *schema.Field, b *Builder) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.PkgPath != "" { // unexported
			continue
		}
		name := sf.Name
		if b.FieldTag != "" {
			if tag, ok := sf.Tag.Lookup(b.FieldTag); ok {
				if tag == "-" {
					continue
				}
				if comma := strings.IndexByte(tag, ','); comma >= 0 {
					if comma > 0 {
						name = tag[:comma]
					}
				} else if tag != "" {
					name = tag
				}
			}
		}
		if b.FieldNameEqual(f.Name, name) {
			return sf, true
		}
		if slices.ContainsFunc(f.Aliases, func(alias string) bool { return b.FieldNameEqual(alias, name) }) {
			return sf, true
		}
	}
	return reflect.StructField{}, false
}
