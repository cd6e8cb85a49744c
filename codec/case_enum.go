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

// caseEnum implements standard case 8: Enum schema binds to a string-kinded
// or integer-kinded Go type. A string value is matched against the
// schema's symbol list; an unknown symbol on decode falls back to the
// schema's default symbol if one was declared, else InvalidData.
// Integer-kinded host types bind to the symbol's ordinal position:
// encoding an ordinal outside the symbol list is InvalidData, and a decoded
// ordinal or symbol that is not in the list falls back to the declared
// default the same way, else InvalidData.
func caseEnum(ctx *BuildContext) (*ValueCodec, error) {
	es, ok := ctx.Schema.(*schema.EnumSchema)
	if !ok {
		return nil, nil
	}

	switch {
	case ctx.Type.Kind() == reflect.String:
		return enumAsString(ctx, es)
	case isIntegerKind(ctx.Type.Kind()):
		return enumAsOrdinal(ctx, es)
	default:
		return nil, newBuildError(UnsupportedType, ctx, "enum schema requires a string- or integer-kinded type; got %s", typeName(ctx.Type))
	}
}

func enumAsString(ctx *BuildContext, es *schema.EnumSchema) (*ValueCodec, error) {
	t := ctx.Type
	resolveSymbol := func(idx int) (string, error) {
		if idx >= 0 && idx < len(es.Symbols) {
			return es.Symbols[idx], nil
		}
		return "", newInvalidData("enum ordinal %d out of range for %d symbols", idx, len(es.Symbols))
	}
	return &ValueCodec{
		Schema: es,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			sym := v.String()
			idx := es.IndexOf(sym)
			if idx < 0 {
				return newInvalidData("value %q is not a symbol of enum %s", sym, es.Name.FullName())
			}
			EncodeEnumBinary(w, idx)
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			idx, err := DecodeEnumBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			sym, err := resolveSymbol(idx)
			if err != nil {
				if es.HasDefault {
					sym = es.Default
				} else {
					return reflect.Value{}, err
				}
			}
			return reflect.ValueOf(sym).Convert(t), nil
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeEnumBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			sym := v.String()
			if es.IndexOf(sym) < 0 {
				return newInvalidData("value %q is not a symbol of enum %s", sym, es.Name.FullName())
			}
			return EncodeEnumText(w, sym)
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			sym, err := DecodeEnumText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			if es.IndexOf(sym) < 0 {
				if es.HasDefault {
					sym = es.Default
				} else {
					return reflect.Value{}, newInvalidData("%q is not a symbol of enum %s", sym, es.Name.FullName())
				}
			}
			return reflect.ValueOf(sym).Convert(t), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func enumAsOrdinal(ctx *BuildContext, es *schema.EnumSchema) (*ValueCodec, error) {
	t := ctx.Type
	// resolveOrdinal applies the same unknown-symbol fallback as the
	// string-bound shape: an out-of-range ordinal resolves to the enum's
	// declared default, else InvalidData.
	resolveOrdinal := func(idx int) (int, error) {
		if idx >= 0 && idx < len(es.Symbols) {
			return idx, nil
		}
		if es.HasDefault {
			return es.IndexOf(es.Default), nil
		}
		return 0, newInvalidData("enum ordinal %d out of range for %d symbols", idx, len(es.Symbols))
	}
	return &ValueCodec{
		Schema: es,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			idx, err := int64FromValue(v)
			if err != nil {
				return err
			}
			if idx < 0 || int(idx) >= len(es.Symbols) {
				return newInvalidData("ordinal %d out of range for %d symbols", idx, len(es.Symbols))
			}
			EncodeEnumBinary(w, int(idx))
			return nil
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			idx, err := DecodeEnumBinary(r)
			if err != nil {
				return reflect.Value{}, err
			}
			idx, err = resolveOrdinal(idx)
			if err != nil {
				return reflect.Value{}, err
			}
			return int64ToValue(t, int64(idx))
		},
		SkipBinary: func(r *BinaryReader) error { _, err := DecodeEnumBinary(r); return err },
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			idx, err := int64FromValue(v)
			if err != nil {
				return err
			}
			if idx < 0 || int(idx) >= len(es.Symbols) {
				return newInvalidData("ordinal %d out of range for %d symbols", idx, len(es.Symbols))
			}
			return EncodeEnumText(w, es.Symbols[idx])
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			sym, err := DecodeEnumText(r)
			if err != nil {
				return reflect.Value{}, err
			}
			idx := es.IndexOf(sym)
			if idx < 0 {
				if !es.HasDefault {
					return reflect.Value{}, newInvalidData("%q is not a symbol of enum %s", sym, es.Name.FullName())
				}
				idx = es.IndexOf(es.Default)
			}
			return int64ToValue(t, int64(idx))
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}
