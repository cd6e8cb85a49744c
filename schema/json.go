// Copyright [2019] LinkedIn Corp. Licensed under the Apache License, Version
// 2.0 (the "License"); you may not use this file except in compliance with the
// License.  You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.

package schema

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ReadJSON parses an Avro schema document, accepting the shorthand forms
// ("int" vs {"type":"int"}) and preserving aliases, named-type qualified
// names, and record-field defaults.
func ReadJSON(doc string) (Schema, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(doc), &raw); err != nil {
		return nil, fmt.Errorf("cannot parse schema: %s", err)
	}
	named := map[string]Schema{}
	return parseNode(raw, "", named)
}

func parseNode(raw interface{}, enclosingNamespace string, named map[string]Schema) (Schema, error) {
	switch v := raw.(type) {
	case string:
		return parsePrimitiveOrRef(v, named)
	case []interface{}:
		return parseUnion(v, enclosingNamespace, named)
	case map[string]interface{}:
		return parseComplex(v, enclosingNamespace, named)
	default:
		return nil, fmt.Errorf("schema node ought to be string, array, or object; received: %T", raw)
	}
}

func parsePrimitiveOrRef(name string, named map[string]Schema) (Schema, error) {
	if s, ok := primitiveByName(name, nil); ok {
		return s, nil
	}
	if target, ok := named[name]; ok {
		return NewRef(name, target), nil
	}
	return nil, fmt.Errorf("unknown type name: %q", name)
}

func primitiveByName(name string, logical *LogicalSchema) (Schema, bool) {
	switch name {
	case "null":
		return &NullSchema{baseLogical{logical}}, true
	case "boolean":
		return &BooleanSchema{baseLogical{logical}}, true
	case "int":
		return &IntSchema{baseLogical{logical}}, true
	case "long":
		return &LongSchema{baseLogical{logical}}, true
	case "float":
		return &FloatSchema{baseLogical{logical}}, true
	case "double":
		return &DoubleSchema{baseLogical{logical}}, true
	case "bytes":
		return &BytesSchema{baseLogical{logical}}, true
	case "string":
		return &StringSchema{baseLogical{logical}}, true
	default:
		return nil, false
	}
}

func parseUnion(arr []interface{}, enclosingNamespace string, named map[string]Schema) (Schema, error) {
	branches := make([]Schema, len(arr))
	seenKind := map[Kind]bool{}
	seenName := map[string]bool{}
	for i, item := range arr {
		b, err := parseNode(item, enclosingNamespace, named)
		if err != nil {
			return nil, fmt.Errorf("union item %d ought to be valid Avro type: %s", i+1, err)
		}
		if b.Kind() == Union {
			return nil, fmt.Errorf("union item %d: nested union not permitted", i+1)
		}
		resolved := Resolve(b)
		switch resolved.Kind() {
		case Record, Enum, Fixed:
			fn := namedFullName(resolved)
			if seenName[fn] {
				return nil, fmt.Errorf("union item %d ought to be unique type: %s", i+1, fn)
			}
			seenName[fn] = true
		default:
			if seenKind[resolved.Kind()] {
				return nil, fmt.Errorf("union item %d ought to be unique type: %s", i+1, resolved.Kind())
			}
			seenKind[resolved.Kind()] = true
		}
		branches[i] = b
	}
	return &UnionSchema{Branches: branches}, nil
}

func namedFullName(s Schema) string {
	switch t := s.(type) {
	case *RecordSchema:
		return t.Name.FullName()
	case *EnumSchema:
		return t.Name.FullName()
	case *FixedSchema:
		return t.Name.FullName()
	default:
		return ""
	}
}

func parseComplex(m map[string]interface{}, enclosingNamespace string, named map[string]Schema) (Schema, error) {
	typ, _ := m["type"].(string)
	logical := parseLogical(m)

	switch typ {
	case "null", "boolean", "int", "long", "float", "double", "bytes", "string":
		if s, ok := primitiveByName(typ, logical); ok {
			if typ == "bytes" && logical != nil && logical.Type == Decimal {
				if p, ok := m["precision"].(float64); ok {
					logical.Precision = int(p)
				}
				if sc, ok := m["scale"].(float64); ok {
					logical.Scale = int(sc)
				}
				return &BytesSchema{baseLogical{logical}}, nil
			}
			return s, nil
		}
		return nil, fmt.Errorf("unknown primitive type: %q", typ)
	case "fixed":
		name, ns := parseName(m, enclosingNamespace)
		size, _ := m["size"].(float64)
		if size < 0 {
			return nil, fmt.Errorf("fixed %q: size ought to be >= 0", name.FullName())
		}
		if logical != nil && logical.Type == Decimal {
			if p, ok := m["precision"].(float64); ok {
				logical.Precision = int(p)
			}
			if sc, ok := m["scale"].(float64); ok {
				logical.Scale = int(sc)
			}
		}
		fs := &FixedSchema{baseLogical{logical}, name, int(size)}
		registerNamed(named, name, fs)
		_ = ns
		return fs, nil
	case "enum":
		name, ns := parseName(m, enclosingNamespace)
		symRaw, _ := m["symbols"].([]interface{})
		symbols := make([]string, len(symRaw))
		seen := map[string]bool{}
		for i, s := range symRaw {
			str, _ := s.(string)
			if seen[str] {
				return nil, fmt.Errorf("enum %q: duplicate symbol %q", name.FullName(), str)
			}
			seen[str] = true
			symbols[i] = str
		}
		es := &EnumSchema{Name: name, Symbols: symbols}
		if def, ok := m["default"].(string); ok {
			if es.IndexOf(def) < 0 {
				return nil, fmt.Errorf("enum %q: default %q is not a member of symbols", name.FullName(), def)
			}
			es.Default = def
			es.HasDefault = true
		}
		registerNamed(named, name, es)
		_ = ns
		return es, nil
	case "array":
		items, err := parseNode(m["items"], enclosingNamespace, named)
		if err != nil {
			return nil, fmt.Errorf("array: %s", err)
		}
		return &ArraySchema{baseLogical{logical}, items}, nil
	case "map":
		values, err := parseNode(m["values"], enclosingNamespace, named)
		if err != nil {
			return nil, fmt.Errorf("map: %s", err)
		}
		return &MapSchema{baseLogical{logical}, values}, nil
	case "record", "error":
		name, ns := parseName(m, enclosingNamespace)
		rs := &RecordSchema{Name: name}
		registerNamed(named, name, rs) // publish before parsing fields so recursive refs resolve
		fieldsRaw, _ := m["fields"].([]interface{})
		fields := make([]*Field, 0, len(fieldsRaw))
		for _, fr := range fieldsRaw {
			fm, _ := fr.(map[string]interface{})
			fname, _ := fm["name"].(string)
			ftype, err := parseNode(fm["type"], ns, named)
			if err != nil {
				return nil, fmt.Errorf("record %q field %q: %s", name.FullName(), fname, err)
			}
			field := &Field{Name: fname, Type: ftype}
			if def, ok := fm["default"]; ok {
				field.Default = def
				field.HasDefault = true
			}
			if aliases, ok := fm["aliases"].([]interface{}); ok {
				for _, a := range aliases {
					if s, ok := a.(string); ok {
						field.Aliases = append(field.Aliases, s)
					}
				}
			}
			fields = append(fields, field)
		}
		rs.Fields = fields
		return rs, nil
	default:
		// {"type": <node>} shorthand wrapper, e.g. {"type":"int"} or
		// {"type":{"type":"array","items":"int"}}
		if inner, ok := m["type"]; ok {
			switch inner.(type) {
			case string, map[string]interface{}, []interface{}:
				return parseNode(inner, enclosingNamespace, named)
			}
		}
		return nil, fmt.Errorf("unrecognized schema object: %v", m)
	}
}

func parseLogical(m map[string]interface{}) *LogicalSchema {
	lt, ok := m["logicalType"].(string)
	if !ok {
		return nil
	}
	switch lt {
	case "decimal":
		return &LogicalSchema{Type: Decimal}
	case "date":
		return &LogicalSchema{Type: Date}
	case "time-millis":
		return &LogicalSchema{Type: TimeMillis}
	case "time-micros":
		return &LogicalSchema{Type: TimeMicros}
	case "timestamp-millis":
		return &LogicalSchema{Type: TimestampMillis}
	case "timestamp-micros":
		return &LogicalSchema{Type: TimestampMicros}
	case "timestamp-nanos":
		return &LogicalSchema{Type: TimestampNanos}
	case "duration":
		return &LogicalSchema{Type: DurationLogical}
	case "uuid":
		return &LogicalSchema{Type: Uuid}
	default:
		return nil // unknown logical type: treat schema as its underlying type, per Avro spec
	}
}

func parseName(m map[string]interface{}, enclosingNamespace string) (Name, string) {
	name, _ := m["name"].(string)
	ns, hasNS := m["namespace"].(string)
	if !hasNS {
		ns = enclosingNamespace
	}
	var aliases []string
	if raw, ok := m["aliases"].([]interface{}); ok {
		for _, a := range raw {
			if s, ok := a.(string); ok {
				aliases = append(aliases, s)
			}
		}
	}
	return Name{Name: name, Namespace: ns, Aliases: aliases}, ns
}

func registerNamed(named map[string]Schema, name Name, s Schema) {
	named[name.FullName()] = s
	for _, a := range nameAliases(s) {
		named[a] = s
	}
}

func nameAliases(s Schema) []string {
	switch t := s.(type) {
	case *RecordSchema:
		return t.Name.Aliases
	case *EnumSchema:
		return t.Name.Aliases
	case *FixedSchema:
		return t.Name.Aliases
	default:
		return nil
	}
}

// WriteJSON emits the canonical JSON form of s: a fixed function of the
// abstract schema with stable field order (name, aliases, type, default,
// ...). Re-reading the output with ReadJSON produces an equivalent schema.
func WriteJSON(s Schema) (string, error) {
	w := &jsonSchemaWriter{seen: map[string]bool{}}
	v, err := w.node(s)
	if err != nil {
		return "", err
	}
	out, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

type jsonSchemaWriter struct {
	seen map[string]bool
}

func (w *jsonSchemaWriter) node(s Schema) (interface{}, error) {
	switch t := s.(type) {
	case *NullSchema:
		return "null", nil
	case *BooleanSchema:
		return "boolean", nil
	case *IntSchema:
		return w.maybeLogical("int", t.LogicalSchema), nil
	case *LongSchema:
		return w.maybeLogical("long", t.LogicalSchema), nil
	case *FloatSchema:
		return "float", nil
	case *DoubleSchema:
		return "double", nil
	case *BytesSchema:
		return w.bytesLike("bytes", t.LogicalSchema), nil
	case *StringSchema:
		return w.maybeLogical("string", t.LogicalSchema), nil
	case *FixedSchema:
		return w.fixedNode(t)
	case *EnumSchema:
		return w.enumNode(t)
	case *ArraySchema:
		items, err := w.node(t.Items)
		if err != nil {
			return nil, err
		}
		return orderedMap{"type": "array", "items": items}, nil
	case *MapSchema:
		values, err := w.node(t.Values)
		if err != nil {
			return nil, err
		}
		return orderedMap{"type": "map", "values": values}, nil
	case *RecordSchema:
		return w.recordNode(t)
	case *UnionSchema:
		out := make([]interface{}, len(t.Branches))
		for i, b := range t.Branches {
			v, err := w.node(b)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case *RefSchema:
		return t.name, nil
	default:
		return nil, fmt.Errorf("cannot write schema node of type %T", s)
	}
}

func (w *jsonSchemaWriter) maybeLogical(base string, ls *LogicalSchema) interface{} {
	if ls == nil {
		return base
	}
	return orderedMap{"type": base, "logicalType": ls.Type.String()}
}

func (w *jsonSchemaWriter) bytesLike(base string, ls *LogicalSchema) interface{} {
	if ls == nil {
		return base
	}
	if ls.Type == Decimal {
		return orderedMap{"type": base, "logicalType": "decimal", "precision": ls.Precision, "scale": ls.Scale}
	}
	return orderedMap{"type": base, "logicalType": ls.Type.String()}
}

func (w *jsonSchemaWriter) fixedNode(t *FixedSchema) (interface{}, error) {
	m := orderedMap{"type": "fixed", "name": t.Name.FullName(), "size": t.Size}
	if t.LogicalSchema != nil {
		if t.LogicalSchema.Type == Decimal {
			m["logicalType"] = "decimal"
			m["precision"] = t.LogicalSchema.Precision
			m["scale"] = t.LogicalSchema.Scale
		} else {
			m["logicalType"] = t.LogicalSchema.Type.String()
		}
	}
	return m, nil
}

func (w *jsonSchemaWriter) enumNode(t *EnumSchema) (interface{}, error) {
	m := orderedMap{"type": "enum", "name": t.Name.FullName(), "symbols": t.Symbols}
	if t.HasDefault {
		m["default"] = t.Default
	}
	return m, nil
}

func (w *jsonSchemaWriter) recordNode(t *RecordSchema) (interface{}, error) {
	fields := make([]interface{}, len(t.Fields))
	for i, f := range t.Fields {
		ftype, err := w.node(f.Type)
		if err != nil {
			return nil, err
		}
		fm := orderedMap{"name": f.Name, "type": ftype}
		if len(f.Aliases) > 0 {
			fm["aliases"] = f.Aliases
		}
		if f.HasDefault {
			fm["default"] = f.Default
		}
		fields[i] = fm
	}
	return orderedMap{"type": "record", "name": t.Name.FullName(), "fields": fields}, nil
}

// orderedMap preserves the canonical key order (name, aliases, type,
// default, ...) on marshal, so the writer's output has a stable, fixed
// field order.
type orderedMap map[string]interface{}

var fieldOrder = []string{"name", "namespace", "aliases", "type", "size", "symbols", "default", "items", "values", "fields", "logicalType", "precision", "scale"}

func (o orderedMap) MarshalJSON() ([]byte, error) {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fieldOrderIndex(keys[i]) < fieldOrderIndex(keys[j])
	})
	buf := []byte("{")
	for i, k := range keys {
		if i > 0 {
			buf = append(buf, ',')
		}
		kb, _ := json.Marshal(k)
		buf = append(buf, kb...)
		buf = append(buf, ':')
		vb, err := json.Marshal(o[k])
		if err != nil {
			return nil, err
		}
		buf = append(buf, vb...)
	}
	buf = append(buf, '}')
	return buf, nil
}

func fieldOrderIndex(key string) int {
	for i, k := range fieldOrder {
		if k == key {
			return i
		}
	}
	return len(fieldOrder)
}
