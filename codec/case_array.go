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

// caseArray implements standard case 9: Array schema binds to a slice or
// fixed-size array of the item codec's host type.
// Binary encoding emits a single positive-count block; decoding accepts
// the general multi-block, negative-count form via ReadBlockCount.
func caseArray(ctx *BuildContext) (*ValueCodec, error) {
	as, ok := ctx.Schema.(*schema.ArraySchema)
	if !ok {
		return nil, nil
	}

	var elemType reflect.Type
	switch ctx.Type.Kind() {
	case reflect.Slice, reflect.Array:
		elemType = ctx.Type.Elem()
	default:
		return nil, newBuildError(UnsupportedType, ctx, "array schema requires a slice or array type; got %s", typeName(ctx.Type))
	}

	itemCodec, err := ctx.Build(as.Items, elemType, "[]")
	if err != nil {
		return nil, err
	}

	t := ctx.Type
	isArray := ctx.Type.Kind() == reflect.Array
	return &ValueCodec{
		Schema: as,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			n := v.Len()
			if n > 0 {
				WriteBlockCount(w, int64(n))
				for i := 0; i < n; i++ {
					if err := itemCodec.EncodeBinary(w, v.Index(i)); err != nil {
						return err
					}
				}
			}
			WriteBlockEnd(w)
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, 0)
			for {
				count, err := ReadBlockCount(r)
				if err != nil {
					return reflect.Value{}, err
				}
				if count == 0 {
					break
				}
				for i := int64(0); i < count; i++ {
					item, err := itemCodec.DecodeBinary(r)
					if err != nil {
						return reflect.Value{}, err
					}
					out = reflect.Append(out, item)
				}
			}
			if isArray {
				fixed := reflect.New(t).Elem()
				reflect.Copy(fixed, out)
				return fixed, nil
			}
			return out, nil
		},
		SkipBinary: func(r *BinaryReader) error {
			return SkipBlocks(r, itemCodec.SkipBinary)
		},
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			w.byte('[')
			n := v.Len()
			for i := 0; i < n; i++ {
				if i > 0 {
					w.byte(',')
				}
				if err := itemCodec.EncodeText(w, v.Index(i)); err != nil {
					return err
				}
			}
			w.byte(']')
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			if err := r.ExpectArrayStart(); err != nil {
				return reflect.Value{}, err
			}
			out := reflect.MakeSlice(reflect.SliceOf(elemType), 0, 0)
			for r.MoreArrayItems() {
				item, err := itemCodec.DecodeText(r)
				if err != nil {
					return reflect.Value{}, err
				}
				out = reflect.Append(out, item)
			}
			if err := r.ExpectArrayEnd(); err != nil {
				return reflect.Value{}, err
			}
			if isArray {
				fixed := reflect.New(t).Elem()
				reflect.Copy(fixed, out)
				return fixed, nil
			}
			return out, nil
		},
		SkipText: func(r *TextReader) error {
			return r.SkipValue()
		},
	}, nil
}
