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

	"github.com/linkedin/avrogo/schema"
)

// caseUnion implements standard case 14: the common Union(null, T) shape
// binds to a Go pointer, nil standing for the null branch. A union with
// more than two branches, or two branches neither of which is null, only
// binds to interface{} and is left to caseDynamic, which carries the
// general tagged-map union representation.
func caseUnion(ctx *BuildContext) (*ValueCodec, error) {
	us, ok := ctx.Schema.(*schema.UnionSchema)
	if !ok {
		return nil, nil
	}
	if ctx.Type.Kind() != reflect.Ptr {
		return nil, nil
	}
	other, ok := us.IsNullable()
	if !ok {
		return nil, newBuildError(UnsupportedSchema, ctx, "a pointer type only binds to a two-branch union of null and one other schema")
	}

	elemType := ctx.Type.Elem()
	inner, err := ctx.Build(other, elemType, "?")
	if err != nil {
		return nil, err
	}
	nullIdx := us.NullIndex()
	valueIdx := 0
	if valueIdx == nullIdx {
		valueIdx = 1
	}
	branchKey := dynBranchKey(other)

	return &ValueCodec{
		Schema: us,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			if v.IsNil() {
				EncodeLongBinary(w, int64(nullIdx))
				return nil
			}
			EncodeLongBinary(w, int64(valueIdx))
			return inner.EncodeBinary(w, v.Elem())
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			idx, err := DecodeLongBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			switch int(idx) {
			case nullIdx:
				return reflect.Zero(ctx.Type), nil
			case valueIdx:
				val, err := inner.DecodeBinary(r)
				if err != nil {
					return reflect.Value{}, err
				}
				ptr := reflect.New(elemType)
				ptr.Elem().Set(val)
				return ptr, nil
			default:
				return reflect.Value{}, newInvalidData("union branch index %d out of range for 2-branch union", idx)
			}
		},
		SkipBinary: func(r *BinaryReader) error {
			idx, err := DecodeLongBinary(r)
			if err != nil {
				return err
			}
			if int(idx) == valueIdx {
				return inner.SkipBinary(r)
			}
			return nil
		},
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			if v.IsNil() {
				EncodeNullText(w)
				return nil
			}
			w.byte('{')
			if err := EncodeStringText(w, branchKey); err != nil {
				return err
			}
			w.byte(':')
			if err := inner.EncodeText(w, v.Elem()); err != nil {
				return err
			}
			w.byte('}')
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			isNull, err := r.PeekIsNull()
			if err != nil {
				return reflect.Value{}, err
			}
			if isNull {
				return reflect.Zero(ctx.Type), nil
			}
			if err := r.ExpectObjectStart(); err != nil {
				return reflect.Value{}, err
			}
			k, err := r.NextObjectKey()
			if err != nil {
				return reflect.Value{}, err
			}
			if k != branchKey {
				return reflect.Value{}, newInvalidData("%q does not name this union's non-null branch %q", k, branchKey)
			}
			val, err := inner.DecodeText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if err := r.ExpectObjectEnd(); err != nil {
				return reflect.Value{}, err
			}
			ptr := reflect.New(elemType)
			ptr.Elem().Set(val)
			return ptr, nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}
