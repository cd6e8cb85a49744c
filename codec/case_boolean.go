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

// caseBoolean implements standard case 2: Boolean schema binds to bool.
func caseBoolean(ctx *BuildContext) (*ValueCodec, error) {
	if ctx.Schema.Kind() != schema.Boolean {
		return nil, nil
	}
	if ctx.Type.Kind() != reflect.Bool {
		return nil, newBuildError(UnsupportedType, ctx, "boolean schema requires a bool-kinded type; got %s", typeName(ctx.Type))
	}
	t := ctx.Type
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			EncodeBooleanBinary(w, v.Bool())
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			b, err := DecodeBooleanBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(t), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := r.readByte(); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			EncodeBooleanText(w, v.Bool())
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			b, err := DecodeBooleanText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(t), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}
