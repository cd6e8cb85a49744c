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

// caseFixed implements standard case 6: Fixed schema binds like Bytes but
// with a length check on decode (InvalidData on mismatch). Duration
// overlays (Fixed(size=12)) are handled by caseTemporal.
func caseFixed(ctx *BuildContext) (*ValueCodec, error) {
	fs, ok := ctx.Schema.(*schema.FixedSchema)
	if !ok {
		return nil, nil
	}
	if ls := fs.Logical(); ls != nil && ls.Type == schema.DurationLogical {
		return nil, nil // defer to caseTemporal
	}
	if ls := fs.Logical(); ls != nil && ls.Type == schema.Decimal {
		return nil, nil // defer to caseDecimal
	}

	size := fs.Size
	switch {
	case isByteSliceType(ctx.Type):
		return fixedAsByteSlice(ctx, fs, size)
	case ctx.Type.Kind() == reflect.Array && ctx.Type.Elem().Kind() == reflect.Uint8:
		if ctx.Type.Len() != size {
			return nil, newBuildError(UnsupportedType, ctx, "fixed(%d) requires a [%d]byte array; got %s", size, size, typeName(ctx.Type))
		}
		return fixedAsByteArray(ctx, fs, size)
	default:
		return nil, newBuildError(UnsupportedType, ctx, "fixed(%d) requires a []byte or [%d]byte type; got %s", size, size, typeName(ctx.Type))
	}
}

func fixedAsByteSlice(ctx *BuildContext, fs *schema.FixedSchema, size int) (*ValueCodec, error) {
	t := ctx.Type
	return &ValueCodec{
		Schema: fs,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			b := v.Bytes()
			if len(b) != size {
				return newInvalidData("fixed(%d): value has length %d", size, len(b))
			}
			EncodeFixedBinary(w, b)
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			b, err := DecodeFixedBinary(r, size)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(t), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := r.readN(size); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			return EncodeBytesText(w, v.Bytes())
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			b, err := DecodeBytesText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if len(b) != size {
				return reflect.Value{}, newInvalidData("fixed(%d): value has length %d", size, len(b))
			}
			return reflect.ValueOf(b).Convert(t), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func fixedAsByteArray(ctx *BuildContext, fs *schema.FixedSchema, size int) (*ValueCodec, error) {
	t := ctx.Type
	return &ValueCodec{
		Schema: fs,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			b := make([]byte, size)
			reflect.Copy(reflect.ValueOf(b), v)
			EncodeFixedBinary(w, b)
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			b, err := DecodeFixedBinary(r, size)
			if err != nil {
				return reflect.Value{}, err
			}
			out := reflect.New(t).Elem()
			reflect.Copy(out, reflect.ValueOf(b))
			return out, nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := r.readN(size); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			b := make([]byte, size)
			reflect.Copy(reflect.ValueOf(b), v)
			return EncodeBytesText(w, b)
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			b, err := DecodeBytesText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if len(b) != size {
				return reflect.Value{}, newInvalidData("fixed(%d): value has length %d", size, len(b))
			}
			out := reflect.New(t).Elem()
			reflect.Copy(out, reflect.ValueOf(b))
			return out, nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}
