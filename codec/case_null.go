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

// caseNull implements standard case 1: Null schema binds
// to any type whose "absent" representation is unambiguous: a nilable Go
// kind (pointer, interface, map, slice, chan, func) or the empty struct. The
// value carried is never inspected; null is zero bytes on the wire.
func caseNull(ctx *BuildContext) (*ValueCodec, error) {
	if ctx.Schema.Kind() != schema.Null {
		return nil, nil
	}
	if !isNullable(ctx.Type) {
		return nil, newBuildError(UnsupportedType, ctx, "null schema requires a nilable type or empty struct; got %s", typeName(ctx.Type))
	}
	t := ctx.Type
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error { return nil },
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) { return reflect.Zero(t), nil },
		SkipBinary:   func(r *BinaryReader) error { return nil },
		EncodeText:   func(w *TextWriter, v reflect.Value) error { EncodeNullText(w); return nil },
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			isNull, err := r.PeekIsNull()
			if err != nil {
				return reflect.Value{}, err
			}
			if !isNull {
				return reflect.Value{}, r.invalid("expected null")
			}
			return reflect.Zero(t), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func isNullable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func:
		return true
	case reflect.Struct:
		return t.NumField() == 0
	default:
		return false
	}
}
