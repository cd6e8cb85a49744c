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
	"encoding"
	"reflect"
	"sort"
	"strconv"

	"github.com/linkedin/avrogo/schema"
)

var (
	textMarshalerType   = reflect.TypeOf((*encoding.TextMarshaler)(nil)).Elem()
	textUnmarshalerType = reflect.TypeOf((*encoding.TextUnmarshaler)(nil)).Elem()
)

// caseMap implements standard case 10: Map schema binds to a Go map whose
// key is string-convertible: a string kind, an integer kind rendered in
// base 10, or a type implementing encoding.TextMarshaler/TextUnmarshaler.
// A key type that is none of those is UnsupportedType. Key order is
// unspecified by Avro; this builder sorts the stringified keys on encode
// so binary and JSON output are deterministic, which matters for schema
// fingerprinting and for tests that compare encoded bytes.
func caseMap(ctx *BuildContext) (*ValueCodec, error) {
	ms, ok := ctx.Schema.(*schema.MapSchema)
	if !ok {
		return nil, nil
	}
	if ctx.Type.Kind() != reflect.Map {
		return nil, newBuildError(UnsupportedType, ctx, "map schema requires a map type; got %s", typeName(ctx.Type))
	}
	keyType := ctx.Type.Key()
	encodeKey, decodeKey, err := mapKeyCoercion(ctx, keyType)
	if err != nil {
		return nil, err
	}

	valueType := ctx.Type.Elem()
	valueCodec, err := ctx.Build(ms.Values, valueType, "{}")
	if err != nil {
		return nil, err
	}

	t := ctx.Type
	return &ValueCodec{
		Schema: ms,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			keys, err := sortedMapKeys(v, encodeKey)
			if err != nil {
				return err
			}
			if len(keys) > 0 {
				WriteBlockCount(w, int64(len(keys)))
				for _, k := range keys {
					EncodeStringBinary(w, k.str)
					if err := valueCodec.EncodeBinary(w, v.MapIndex(k.val)); err != nil {
						return err
					}
				}
			}
			WriteBlockEnd(w)
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			out := reflect.MakeMap(t)
			for {
				count, err := ReadBlockCount(r)
				if err != nil {
					return reflect.Value{}, err
				}
				if count == 0 {
					break
				}
				for i := int64(0); i < count; i++ {
					k, err := DecodeStringBinary(r)
					if err != nil {
						return reflect.Value{}, err
					}
					key, err := decodeKey(k)
					if err != nil {
						return reflect.Value{}, err
					}
					val, err := valueCodec.DecodeBinary(r)
					if err != nil {
						return reflect.Value{}, err
					}
					out.SetMapIndex(key, val)
				}
			}
			return out, nil
		},
		SkipBinary: func(r *BinaryReader) error {
			return SkipBlocks(r, func(r *BinaryReader) error {
				if _, err := DecodeStringBinary(r); err != nil {
					return err
				}
				return valueCodec.SkipBinary(r)
			})
		},
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			w.byte('{')
			keys, err := sortedMapKeys(v, encodeKey)
			if err != nil {
				return err
			}
			for i, k := range keys {
				if i > 0 {
					w.byte(',')
				}
				if err := EncodeStringText(w, k.str); err != nil {
					return err
				}
				w.byte(':')
				if err := valueCodec.EncodeText(w, v.MapIndex(k.val)); err != nil {
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
			out := reflect.MakeMap(t)
			for r.MoreObjectFields() {
				k, err := r.NextObjectKey()
				if err != nil {
					return reflect.Value{}, err
				}
				key, err := decodeKey(k)
				if err != nil {
					return reflect.Value{}, err
				}
				val, err := valueCodec.DecodeText(r)
				if err != nil {
					return reflect.Value{}, err
				}
				out.SetMapIndex(key, val)
			}
			if err := r.ExpectObjectEnd(); err != nil {
				return reflect.Value{}, err
			}
			return out, nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

// mapKeyCoercion builds the string round trip for a map key type: identity
// for string kinds, base-10 for integer kinds, and the TextMarshaler/
// TextUnmarshaler pair for types carrying one. Anything else cannot be
// parsed back from its string form and is UnsupportedType.
func mapKeyCoercion(ctx *BuildContext, keyType reflect.Type) (func(reflect.Value) (string, error), func(string) (reflect.Value, error), error) {
	switch {
	case keyType.Kind() == reflect.String:
		return func(k reflect.Value) (string, error) {
				return k.String(), nil
			}, func(s string) (reflect.Value, error) {
				return reflect.ValueOf(s).Convert(keyType), nil
			}, nil

	case keyType.Implements(textMarshalerType) || reflect.PtrTo(keyType).Implements(textMarshalerType):
		if !reflect.PtrTo(keyType).Implements(textUnmarshalerType) {
			return nil, nil, newBuildError(UnsupportedType, ctx, "map key type %s marshals to text but does not implement encoding.TextUnmarshaler to parse back", typeName(keyType))
		}
		return func(k reflect.Value) (string, error) {
				// Map keys are not addressable; a pointer-receiver
				// MarshalText needs a copy.
				kp := reflect.New(keyType)
				kp.Elem().Set(k)
				b, err := kp.Interface().(encoding.TextMarshaler).MarshalText()
				if err != nil {
					return "", newInvalidData("marshaling map key: %s", err)
				}
				return string(b), nil
			}, func(s string) (reflect.Value, error) {
				kp := reflect.New(keyType)
				if err := kp.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(s)); err != nil {
					return reflect.Value{}, newInvalidData("unmarshaling map key %q: %s", s, err)
				}
				return kp.Elem(), nil
			}, nil

	case isIntegerKind(keyType.Kind()):
		return func(k reflect.Value) (string, error) {
				n, err := int64FromValue(k)
				if err != nil {
					return "", err
				}
				return strconv.FormatInt(n, 10), nil
			}, func(s string) (reflect.Value, error) {
				n, err := strconv.ParseInt(s, 10, 64)
				if err != nil {
					return reflect.Value{}, newInvalidData("map key %q is not an integer: %s", s, err)
				}
				return int64ToValue(keyType, n)
			}, nil

	default:
		return nil, nil, newBuildError(UnsupportedType, ctx, "map key type %s is not string-convertible", typeName(keyType))
	}
}

type coercedKey struct {
	str string
	val reflect.Value
}

func sortedMapKeys(m reflect.Value, encodeKey func(reflect.Value) (string, error)) ([]coercedKey, error) {
	mk := m.MapKeys()
	out := make([]coercedKey, len(mk))
	for i, k := range mk {
		s, err := encodeKey(k)
		if err != nil {
			return nil, err
		}
		out[i] = coercedKey{str: s, val: k}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].str < out[j].str })
	return out, nil
}
