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

// caseFloatDouble implements standard case 4: Float/Double schema binds to
// any floating-point-kinded Go type, with silent int-to-float widening
// permitted on encode.
func caseFloatDouble(ctx *BuildContext) (*ValueCodec, error) {
	isDouble := false
	switch ctx.Schema.Kind() {
	case schema.Float:
		isDouble = false
	case schema.Double:
		isDouble = true
	default:
		return nil, nil
	}
	k := ctx.Type.Kind()
	if k != reflect.Float32 && k != reflect.Float64 && !isIntegerKind(k) {
		return nil, newBuildError(UnsupportedType, ctx, "%s schema requires a numeric type; got %s", ctx.Schema.Kind(), typeName(ctx.Type))
	}
	t := ctx.Type
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			f, err := float64FromValue(v)
			if err != nil {
				return err
			}
			if isDouble {
				EncodeDoubleBinary(w, f)
			} else {
				EncodeFloatBinary(w, float32(f))
			}
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			var f float64
			var err error
			if isDouble {
				f, err = DecodeDoubleBinary(r)
			} else {
				var f32 float32
				f32, err = DecodeFloatBinary(r)
				f = float64(f32)
			}
			if err != nil {
				return reflect.Value{}, err
			}
			return floatToValue(t, f)
		},
		SkipBinary: func(r *BinaryReader) error {
			n := 4
			if isDouble {
				n = 8
			}
			_, err := r.readN(n)
			return err
		},
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			f, err := float64FromValue(v)
			if err != nil {
				return err
			}
			EncodeDoubleText(w, f)
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			f, err := DecodeDoubleText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return floatToValue(t, f)
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func floatToValue(t reflect.Type, f float64) (reflect.Value, error) {
	switch t.Kind() {
	case reflect.Float64:
		return reflect.ValueOf(f).Convert(t), nil
	case reflect.Float32:
		return reflect.ValueOf(float32(f)).Convert(t), nil
	default:
		// widening into an integer host type is not part of the standard
		// mapping; only accept when the float has no fractional part.
		if f != float64(int64(f)) {
			return reflect.Value{}, newOverflow("value %v would lose precision converting to %s", f, t)
		}
		return int64ToValue(t, int64(f))
	}
}
