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
	"testing"
)

func mustReadJSON(t *testing.T, doc string) Schema {
	t.Helper()
	s, err := ReadJSON(doc)
	if err != nil {
		t.Fatalf("ReadJSON(%s): %v", doc, err)
	}
	return s
}

func TestReadJSONPrimitiveShorthand(t *testing.T) {
	s := mustReadJSON(t, `"long"`)
	if s.Kind() != Long {
		t.Errorf("GOT: %s; WANT: long", s.Kind())
	}
}

func TestReadJSONRecordWithDefaults(t *testing.T) {
	doc := `{
		"type": "record",
		"name": "Widget",
		"namespace": "com.example",
		"fields": [
			{"name": "id", "type": "long"},
			{"name": "label", "type": "string", "default": "unnamed", "aliases": ["name"]}
		]
	}`
	s := mustReadJSON(t, doc)
	rs, ok := s.(*RecordSchema)
	if !ok {
		t.Fatalf("GOT: %T; WANT: *RecordSchema", s)
	}
	if rs.Name.FullName() != "com.example.Widget" {
		t.Errorf("GOT: %s; WANT: com.example.Widget", rs.Name.FullName())
	}
	label := rs.FieldByName("label")
	if label == nil || !label.HasDefault || label.Default != "unnamed" {
		t.Errorf("GOT: %+v; WANT a default of \"unnamed\"", label)
	}
	if len(label.Aliases) != 1 || label.Aliases[0] != "name" {
		t.Errorf("GOT aliases: %v", label.Aliases)
	}
}

func TestReadJSONSelfReferencingRecord(t *testing.T) {
	doc := `{
		"type": "record",
		"name": "Node",
		"fields": [
			{"name": "value", "type": "int"},
			{"name": "next", "type": ["null", "Node"]}
		]
	}`
	s := mustReadJSON(t, doc)
	rs := s.(*RecordSchema)
	next := rs.FieldByName("next").Type.(*UnionSchema)
	other, ok := next.IsNullable()
	if !ok {
		t.Fatalf("expected a nullable union")
	}
	ref, ok := other.(*RefSchema)
	if !ok {
		t.Fatalf("GOT: %T; WANT: *RefSchema", other)
	}
	if Resolve(ref) != rs {
		t.Errorf("self-reference does not resolve back to the enclosing record")
	}
}

func TestReadJSONDecimalLogical(t *testing.T) {
	doc := `{"type":"bytes","logicalType":"decimal","precision":12,"scale":3}`
	s := mustReadJSON(t, doc)
	bs := s.(*BytesSchema)
	ls := bs.Logical()
	if ls == nil || ls.Type != Decimal || ls.Precision != 12 || ls.Scale != 3 {
		t.Errorf("GOT: %+v", ls)
	}
}

func TestReadJSONEnumDefault(t *testing.T) {
	doc := `{"type":"enum","name":"Suit","symbols":["SPADES","HEARTS"],"default":"SPADES"}`
	s := mustReadJSON(t, doc)
	es := s.(*EnumSchema)
	if !es.HasDefault || es.Default != "SPADES" {
		t.Errorf("GOT: %+v", es)
	}
}

func TestReadJSONEnumDuplicateSymbolFails(t *testing.T) {
	doc := `{"type":"enum","name":"Suit","symbols":["SPADES","SPADES"]}`
	if _, err := ReadJSON(doc); err == nil {
		t.Fatal("expected an error for a duplicate enum symbol")
	}
}

func TestWriteJSONRoundTrip(t *testing.T) {
	doc := `{"type":"array","items":"int"}`
	s := mustReadJSON(t, doc)
	out, err := WriteJSON(s)
	if err != nil {
		t.Fatal(err)
	}
	reparsed, err := ReadJSON(out)
	if err != nil {
		t.Fatalf("re-parsing written schema: %v", err)
	}
	if reparsed.Kind() != Array {
		t.Errorf("GOT: %s; WANT: array", reparsed.Kind())
	}
}

func TestFingerprintStableAcrossEquivalentDocuments(t *testing.T) {
	a := mustReadJSON(t, `"int"`)
	b := mustReadJSON(t, `{"type":"int"}`)
	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatal(err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatal(err)
	}
	if fa != fb {
		t.Errorf("GOT: %d != %d; WANT equal fingerprints for the shorthand/long forms of int", fa, fb)
	}
}
