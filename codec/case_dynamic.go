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
	"sort"

	"github.com/linkedin/avrogo/schema"
)

// caseDynamic implements standard case 15, the last case in the default
// chain: an interface{}-kinded host type binds to any schema at all, using
// the natural Go representation for each Avro kind (bool, int64, float64,
// string, []byte, []interface{}, map[string]interface{}), the same shape
// encoding/json would produce for the equivalent JSON document. This is
// also how caseRecord fills in a schema field that has no matching struct
// field: it compiles the field against interface{} and encodes the
// schema's declared default every time.
func caseDynamic(ctx *BuildContext) (*ValueCodec, error) {
	if ctx.Type.Kind() != reflect.Interface {
		return nil, nil
	}
	s := ctx.Schema
	return &ValueCodec{
		Schema: s,
		EncodeBinary: func(w *BinaryWriter, v reflect.Value) error {
			return dynEncodeBinary(w, s, dynUnwrap(v))
		},
		DecodeBinary: func(r *BinaryReader) (reflect.Value, error) {
			iv, err := dynDecodeBinary(r, s)
			if err != nil {
				return reflect.Value{}, err
			}
			return dynWrap(iv), nil
		},
		SkipBinary: func(r *BinaryReader) error {
			_, err := dynDecodeBinary(r, s)
			return err
		},
		EncodeText: func(w *TextWriter, v reflect.Value) error {
			return dynEncodeText(w, s, dynUnwrap(v))
		},
		DecodeText: func(r *TextReader) (reflect.Value, error) {
			iv, err := dynDecodeText(r, s)
			if err != nil {
				return reflect.Value{}, err
			}
			return dynWrap(iv), nil
		},
		SkipText: func(r *TextReader) error { return r.SkipValue() },
	}, nil
}

func dynUnwrap(v reflect.Value) interface{} {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}

// dynWrap guarantees a reflect.Value of interface kind that is valid even
// when iv is nil, so callers can always invoke Convert/Interface on it.
func dynWrap(iv interface{}) reflect.Value {
	box := new(interface{})
	*box = iv
	return reflect.ValueOf(box).Elem()
}

func dynEncodeBinary(w *BinaryWriter, s schema.Schema, iv interface{}) error {
	resolved := schema.Resolve(s)
	switch resolved.Kind() {
	case schema.Null:
		if iv != nil {
			return newInvalidData("expected nil for null schema, got %T", iv)
		}
		return nil
	case schema.Boolean:
		b, ok := iv.(bool)
		if !ok {
			return newInvalidData("expected bool, got %T", iv)
		}
		EncodeBooleanBinary(w, b)
		return nil
	case schema.Int, schema.Long:
		n, err := dynToInt64(iv)
		if err != nil {
			return err
		}
		EncodeLongBinary(w, n)
		return nil
	case schema.Float, schema.Double:
		f, err := dynToFloat64(iv)
		if err != nil {
			return err
		}
		if resolved.Kind() == schema.Float {
			EncodeFloatBinary(w, float32(f))
		} else {
			EncodeDoubleBinary(w, f)
		}
		return nil
	case schema.Bytes:
		b, err := dynToBytes(iv)
		if err != nil {
			return err
		}
		EncodeBytesBinary(w, b)
		return nil
	case schema.String:
		str, ok := iv.(string)
		if !ok {
			return newInvalidData("expected string, got %T", iv)
		}
		EncodeStringBinary(w, str)
		return nil
	case schema.Fixed:
		fs := resolved.(*schema.FixedSchema)
		b, err := dynToBytes(iv)
		if err != nil {
			return err
		}
		if len(b) != fs.Size {
			return newInvalidData("fixed(%d): value has length %d", fs.Size, len(b))
		}
		EncodeFixedBinary(w, b)
		return nil
	case schema.Enum:
		es := resolved.(*schema.EnumSchema)
		sym, ok := iv.(string)
		if !ok {
			return newInvalidData("expected enum symbol string, got %T", iv)
		}
		idx := es.IndexOf(sym)
		if idx < 0 {
			return newInvalidData("%q is not a symbol of enum %s", sym, es.Name.FullName())
		}
		EncodeEnumBinary(w, idx)
		return nil
	case schema.Array:
		as := resolved.(*schema.ArraySchema)
		items, ok := iv.([]interface{})
		if !ok {
			return newInvalidData("expected []interface{}, got %T", iv)
		}
		if len(items) > 0 {
			WriteBlockCount(w, int64(len(items)))
			for _, it := range items {
				if err := dynEncodeBinary(w, as.Items, it); err != nil {
					return err
				}
			}
		}
		WriteBlockEnd(w)
		return nil
	case schema.Map:
		ms := resolved.(*schema.MapSchema)
		m, ok := iv.(map[string]interface{})
		if !ok {
			return newInvalidData("expected map[string]interface{}, got %T", iv)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if len(keys) > 0 {
			WriteBlockCount(w, int64(len(keys)))
			for _, k := range keys {
				EncodeStringBinary(w, k)
				if err := dynEncodeBinary(w, ms.Values, m[k]); err != nil {
					return err
				}
			}
		}
		WriteBlockEnd(w)
		return nil
	case schema.Record:
		rs := resolved.(*schema.RecordSchema)
		m, ok := iv.(map[string]interface{})
		if !ok {
			return newInvalidData("expected map[string]interface{} for record %s, got %T", rs.Name.FullName(), iv)
		}
		for _, f := range rs.Fields {
			fv, present := m[f.Name]
			if !present {
				fv = f.Default
			}
			if err := dynEncodeBinary(w, f.Type, fv); err != nil {
				return err
			}
		}
		return nil
	case schema.Union:
		us := resolved.(*schema.UnionSchema)
		idx, branchVal, err := dynResolveUnionBranch(us, iv)
		if err != nil {
			return err
		}
		EncodeLongBinary(w, int64(idx))
		return dynEncodeBinary(w, us.Branches[idx], branchVal)
	default:
		return newInvalidData("dynamic codec does not support schema kind %s", resolved.Kind())
	}
}

func dynDecodeBinary(r *BinaryReader, s schema.Schema) (interface{}, error) {
	resolved := schema.Resolve(s)
	switch resolved.Kind() {
	case schema.Null:
		return nil, nil
	case schema.Boolean:
		return DecodeBooleanBinary(r)
	case schema.Int, schema.Long:
		return DecodeLongBinary(r)
	case schema.Float:
		f, err := DecodeFloatBinary(r)
		return float64(f), err
	case schema.Double:
		return DecodeDoubleBinary(r)
	case schema.Bytes:
		return DecodeBytesBinary(r)
	case schema.String:
		return DecodeStringBinary(r)
	case schema.Fixed:
		fs := resolved.(*schema.FixedSchema)
		return DecodeFixedBinary(r, fs.Size)
	case schema.Enum:
		es := resolved.(*schema.EnumSchema)
		idx, err := DecodeEnumBinary(r)
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(es.Symbols) {
			return nil, newInvalidData("enum ordinal %d out of range", idx)
		}
		return es.Symbols[idx], nil
	case schema.Array:
		as := resolved.(*schema.ArraySchema)
		out := []interface{}{}
		for {
			count, err := ReadBlockCount(r)
			if err != nil {
				return nil, err
			}
			if count == 0 {
				break
			}
			for i := int64(0); i < count; i++ {
				item, err := dynDecodeBinary(r, as.Items)
				if err != nil {
					return nil, err
				}
				out = append(out, item)
			}
		}
		return out, nil
	case schema.Map:
		ms := resolved.(*schema.MapSchema)
		out := map[string]interface{}{}
		for {
			count, err := ReadBlockCount(r)
			if err != nil {
				return nil, err
			}
			if count == 0 {
				break
			}
			for i := int64(0); i < count; i++ {
				k, err := DecodeStringBinary(r)
				if err != nil {
					return nil, err
				}
				v, err := dynDecodeBinary(r, ms.Values)
				if err != nil {
					return nil, err
				}
				out[k] = v
			}
		}
		return out, nil
	case schema.Record:
		rs := resolved.(*schema.RecordSchema)
		out := make(map[string]interface{}, len(rs.Fields))
		for _, f := range rs.Fields {
			v, err := dynDecodeBinary(r, f.Type)
			if err != nil {
				return nil, err
			}
			out[f.Name] = v
		}
		return out, nil
	case schema.Union:
		us := resolved.(*schema.UnionSchema)
		idx, err := DecodeLongBinary(r)
		if err != nil {
			return nil, err
		}
		if idx < 0 || int(idx) >= len(us.Branches) {
			return nil, newInvalidData("union branch index %d out of range", idx)
		}
		branch := us.Branches[idx]
		v, err := dynDecodeBinary(r, branch)
		if err != nil {
			return nil, err
		}
		if branch.Kind() == schema.Null {
			return nil, nil
		}
		return map[string]interface{}{dynBranchKey(branch): v}, nil
	default:
		return nil, newInvalidData("dynamic codec does not support schema kind %s", resolved.Kind())
	}
}

func dynEncodeText(w *TextWriter, s schema.Schema, iv interface{}) error {
	resolved := schema.Resolve(s)
	switch resolved.Kind() {
	case schema.Null:
		EncodeNullText(w)
		return nil
	case schema.Boolean:
		b, ok := iv.(bool)
		if !ok {
			return newInvalidData("expected bool, got %T", iv)
		}
		EncodeBooleanText(w, b)
		return nil
	case schema.Int, schema.Long:
		n, err := dynToInt64(iv)
		if err != nil {
			return err
		}
		EncodeLongText(w, n)
		return nil
	case schema.Float, schema.Double:
		f, err := dynToFloat64(iv)
		if err != nil {
			return err
		}
		EncodeDoubleText(w, f)
		return nil
	case schema.Bytes, schema.Fixed:
		b, err := dynToBytes(iv)
		if err != nil {
			return err
		}
		return EncodeBytesText(w, b)
	case schema.String:
		str, ok := iv.(string)
		if !ok {
			return newInvalidData("expected string, got %T", iv)
		}
		return EncodeStringText(w, str)
	case schema.Enum:
		sym, ok := iv.(string)
		if !ok {
			return newInvalidData("expected enum symbol string, got %T", iv)
		}
		return EncodeEnumText(w, sym)
	case schema.Array:
		as := resolved.(*schema.ArraySchema)
		items, ok := iv.([]interface{})
		if !ok {
			return newInvalidData("expected []interface{}, got %T", iv)
		}
		w.byte('[')
		for i, it := range items {
			if i > 0 {
				w.byte(',')
			}
			if err := dynEncodeText(w, as.Items, it); err != nil {
				return err
			}
		}
		w.byte(']')
		return nil
	case schema.Map:
		ms := resolved.(*schema.MapSchema)
		m, ok := iv.(map[string]interface{})
		if !ok {
			return newInvalidData("expected map[string]interface{}, got %T", iv)
		}
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		w.byte('{')
		for i, k := range keys {
			if i > 0 {
				w.byte(',')
			}
			if err := EncodeStringText(w, k); err != nil {
				return err
			}
			w.byte(':')
			if err := dynEncodeText(w, ms.Values, m[k]); err != nil {
				return err
			}
		}
		w.byte('}')
		return nil
	case schema.Record:
		rs := resolved.(*schema.RecordSchema)
		m, ok := iv.(map[string]interface{})
		if !ok {
			return newInvalidData("expected map[string]interface{} for record %s, got %T", rs.Name.FullName(), iv)
		}
		w.byte('{')
		for i, f := range rs.Fields {
			if i > 0 {
				w.byte(',')
			}
			if err := EncodeStringText(w, f.Name); err != nil {
				return err
			}
			w.byte(':')
			fv, present := m[f.Name]
			if !present {
				fv = f.Default
			}
			if err := dynEncodeText(w, f.Type, fv); err != nil {
				return err
			}
		}
		w.byte('}')
		return nil
	case schema.Union:
		us := resolved.(*schema.UnionSchema)
		idx, branchVal, err := dynResolveUnionBranch(us, iv)
		if err != nil {
			return err
		}
		branch := us.Branches[idx]
		if branch.Kind() == schema.Null {
			EncodeNullText(w)
			return nil
		}
		w.byte('{')
		if err := EncodeStringText(w, dynBranchKey(branch)); err != nil {
			return err
		}
		w.byte(':')
		if err := dynEncodeText(w, branch, branchVal); err != nil {
			return err
		}
		w.byte('}')
		return nil
	default:
		return newInvalidData("dynamic codec does not support schema kind %s", resolved.Kind())
	}
}

func dynDecodeText(r *TextReader, s schema.Schema) (interface{}, error) {
	resolved := schema.Resolve(s)
	switch resolved.Kind() {
	case schema.Null:
		if _, err := r.PeekIsNull(); err != nil {
			return nil, err
		}
		return nil, nil
	case schema.Boolean:
		return DecodeBooleanText(r)
	case schema.Int, schema.Long:
		return DecodeLongText(r)
	case schema.Float, schema.Double:
		return DecodeDoubleText(r)
	case schema.Bytes, schema.Fixed:
		return DecodeBytesText(r)
	case schema.String:
		return DecodeStringText(r)
	case schema.Enum:
		return DecodeEnumText(r)
	case schema.Array:
		as := resolved.(*schema.ArraySchema)
		if err := r.ExpectArrayStart(); err != nil {
			return nil, err
		}
		out := []interface{}{}
		for r.MoreArrayItems() {
			v, err := dynDecodeText(r, as.Items)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		if err := r.ExpectArrayEnd(); err != nil {
			return nil, err
		}
		return out, nil
	case schema.Map:
		ms := resolved.(*schema.MapSchema)
		if err := r.ExpectObjectStart(); err != nil {
			return nil, err
		}
		out := map[string]interface{}{}
		for r.MoreObjectFields() {
			k, err := r.NextObjectKey()
			if err != nil {
				return nil, err
			}
			v, err := dynDecodeText(r, ms.Values)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		if err := r.ExpectObjectEnd(); err != nil {
			return nil, err
		}
		return out, nil
	case schema.Record:
		rs := resolved.(*schema.RecordSchema)
		if err := r.ExpectObjectStart(); err != nil {
			return nil, err
		}
		out := make(map[string]interface{}, len(rs.Fields))
		for r.MoreObjectFields() {
			k, err := r.NextObjectKey()
			if err != nil {
				return nil, err
			}
			f := rs.FieldByName(k)
			if f == nil {
				if err := r.SkipValue(); err != nil {
					return nil, err
				}
				continue
			}
			v, err := dynDecodeText(r, f.Type)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		if err := r.ExpectObjectEnd(); err != nil {
			return nil, err
		}
		for _, f := range rs.Fields {
			if _, ok := out[f.Name]; !ok && f.HasDefault {
				out[f.Name] = f.Default
			}
		}
		return out, nil
	case schema.Union:
		us := resolved.(*schema.UnionSchema)
		if isNull, err := r.PeekIsNull(); err != nil {
			return nil, err
		} else if isNull {
			if us.NullIndex() < 0 {
				return nil, newInvalidData("union has no null branch")
			}
			return nil, nil
		}
		if err := r.ExpectObjectStart(); err != nil {
			return nil, err
		}
		k, err := r.NextObjectKey()
		if err != nil {
			return nil, err
		}
		branch := dynFindBranchByKey(us, k)
		if branch == nil {
			return nil, newInvalidData("%q does not name a branch of this union", k)
		}
		v, err := dynDecodeText(r, branch)
		if err != nil {
			return nil, err
		}
		if err := r.ExpectObjectEnd(); err != nil {
			return nil, err
		}
		return map[string]interface{}{k: v}, nil
	default:
		return nil, newInvalidData("dynamic codec does not support schema kind %s", resolved.Kind())
	}
}

func dynToInt64(iv interface{}) (int64, error) {
	switch v := iv.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	default:
		return 0, newInvalidData("expected an integer, got %T", iv)
	}
}

func dynToFloat64(iv interface{}) (float64, error) {
	switch v := iv.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case int:
		return float64(v), nil
	default:
		return 0, newInvalidData("expected a number, got %T", iv)
	}
}

func dynToBytes(iv interface{}) ([]byte, error) {
	switch v := iv.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, newInvalidData("expected bytes, got %T", iv)
	}
}

// dynBranchKey names the tag used for a non-null union branch in the
// generic map[string]interface{} representation: the named schema's full
// name, or the primitive kind's name otherwise.
func dynBranchKey(s schema.Schema) string {
	switch t := schema.Resolve(s).(type) {
	case *schema.RecordSchema:
		return t.Name.FullName()
	case *schema.EnumSchema:
		return t.Name.FullName()
	case *schema.FixedSchema:
		return t.Name.FullName()
	default:
		return s.Kind().String()
	}
}

func dynFindBranchByKey(us *schema.UnionSchema, key string) schema.Schema {
	for _, b := range us.Branches {
		if dynBranchKey(b) == key {
			return b
		}
	}
	return nil
}

// dynResolveUnionBranch maps a dynamic Go value onto one union branch
// index, accepting either the tagged map[string]interface{}{branch: val}
// shape or a bare native value matched by its natural Go type.
func dynResolveUnionBranch(us *schema.UnionSchema, iv interface{}) (int, interface{}, error) {
	if iv == nil {
		idx := us.NullIndex()
		if idx < 0 {
			return 0, nil, newInvalidData("union has no null branch")
		}
		return idx, nil, nil
	}
	if m, ok := iv.(map[string]interface{}); ok && len(m) == 1 {
		for k, v := range m {
			branch := dynFindBranchByKey(us, k)
			if branch == nil {
				return 0, nil, newInvalidData("%q does not name a branch of this union", k)
			}
			for i, b := range us.Branches {
				if b == branch {
					return i, v, nil
				}
			}
		}
	}
	for i, b := range us.Branches {
		if dynValueMatchesBranch(b, iv) {
			return i, iv, nil
		}
	}
	return 0, nil, newInvalidData("value of type %T does not match any branch of this union", iv)
}

func dynValueMatchesBranch(s schema.Schema, iv interface{}) bool {
	switch schema.Resolve(s).Kind() {
	case schema.Boolean:
		_, ok := iv.(bool)
		return ok
	case schema.Int, schema.Long:
		_, err := dynToInt64(iv)
		return err == nil
	case schema.Float, schema.Double:
		_, err := dynToFloat64(iv)
		return err == nil
	case schema.Bytes, schema.Fixed:
		_, err := dynToBytes(iv)
		return err == nil
	case schema.String, schema.Enum:
		_, ok := iv.(string)
		return ok
	case schema.Array:
		_, ok := iv.([]interface{})
		return ok
	case schema.Map, schema.Record:
		_, ok := iv.(map[string]interface{})
		return ok
	default:
		return false
	}
}
