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

	"github.com/google/uuid"
	"github.com/linkedin/avrogo/schema"
)

var uuidGoType = reflect.TypeOf(uuid.UUID{})

func isByteSliceType(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

// caseBytes implements standard case 5: Bytes schema binds to a byte
// sequence, or to a 16-byte UUID type. Decimal
// overlays are handled by caseDecimal, which runs later and sees only
// what this case skips.
func caseBytes(ctx *BuildContext) (*ValueCodec, error) {
	if ctx.Schema.Kind() != schema.Bytes {
		return nil, nil
	}
	if ls := ctx.Schema.Logical(); ls != nil && ls.Type == schema.Decimal {
		return nil, nil // defer to caseDecimal
	}

	if ctx.Type == uuidGoType {
		return &ValueCodec{
			Schema: ctx.Schema,
			EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
				id := v.Interface().(uuid.UUID)
				EncodeBytesBinary(w, id[:])
				return nil
			},
			DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
				b, err := DecodeBytesBinary(r)
				if err != nil {
					return reflect.Value{}, err
				}
				if len(b) != 16 {
					return reflect.Value{}, newInvalidData("uuid bytes length ought to be 16; read: %d", len(b))
				}
				var id uuid.UUID
				copy(id[:], b)
				return reflect.ValueOf(id), nil
			},
			SkipBinary: func(r *BinaryReader) error { _, err := DecodeBytesBinary(r); return err },
			EncodeText: func(w *TextWriter, v reflect.Value) error {
				id := v.Interface().(uuid.UUID)
				return EncodeBytesText(w, id[:])
			},
			DecodeText: func(r *TextReader) (reflect.Value, error) {
				b, err := DecodeBytesText(r)
				if err != nil {
					return reflect.Value{}, err
				}
				if len(b) != 16 {
					return reflect.Value{}, newInvalidData("uuid bytes length ought to be 16; read: %d", len(b))
				}
				var id uuid.UUID
				copy(id[:], b)
				return reflect.ValueOf(id), nil
			},
			SkipText: func(r *TextReader) error { return r.SkipValue() },
		}, nil
	}

	if !isByteSliceType(ctx.Type) {
		return nil, newBuildError(UnsupportedType, ctx, "bytes schema requires a []byte or uuid.UUID type; got %s", typeName(ctx.Type))
	}
	t := ctx.Type
	return &ValueCodec{
		Schema: ctx.Schema,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			EncodeBytesBinary(w, v.Bytes())
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			b, err := DecodeBytesBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(t), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeBytesBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			return EncodeBytesText(w, v.Bytes())
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			b, err := DecodeBytesText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			return reflect.ValueOf(b).Convert(t), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}
