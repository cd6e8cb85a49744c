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

// caseIntLong implements standard case 3: Int/Long schema binds to any
// integer-kinded Go type. On decode the value is widened to int64 then
// narrowed to the host width, raising Overflow if it does not fit.
//
// Logical overlays (Date/TimeMillis on Int, TimeMicros/TimestampXxx on
// Long) belong to caseTemporal, which runs later in the chain. To give it
// a chance, this case skips whenever the schema carries any LogicalType;
// the temporal case is solely responsible for those.
func caseIntLong(ctx *BuildContext) (*ValueCodec, error) {
	var width int // 32 or 64
	switch ctx.Schema.Kind() {
	case schema.Int:
		width = 32
	case schema.Long:
		width = 64
	default:
		return nil, nil
	}
	if ls := ctx.Schema.Logical(); ls != nil {
		return nil, nil // defer to caseTemporal
	}
	if !isIntegerKind(ctx.Type.Kind()) {
		return nil, newBuildError(UnsupportedType, ctx, "%s schema requires an integer-kinded type; got %s", ctx.Schema.Kind(), typeName(ctx.Type))
	}
	t := ctx.Type
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			val, err := int64FromValue(v)
			if err != nil {
				return err
			}
			if width == 32 && (val < -1<<31 || val > 1<<31-1) {
				return newOverflow("value %d does not fit in a 32-bit Avro int", val)
			}
			EncodeLongBinary(w, val)
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			val, err := DecodeLongBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return int64ToValue(t, val)
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeLongBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			val, err := int64FromValue(v)
			if err != nil {
				return err
			}
			EncodeLongText(w, val)
			return nil
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			val, err := DecodeLongText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return int64ToValue(t, val)
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}
